// Package audio inspects uploaded clips: detecting the container so the
// right extension and MIME get stored, and pulling embedded tags when the
// uploader left the form fields empty.
package audio

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// ClipInfo describes an uploaded audio clip.
type ClipInfo struct {
	MIME   string
	Ext    string // includes the dot
	Title  string
	Artist string
}

// Probe inspects a clip's bytes and filename. Tagged containers (mp3, flac,
// ogg, m4a) are identified from the bytes; MediaRecorder output (webm) has
// no tags, so we fall back to the extension and finally to the declared
// content type. The reader is rewound before returning.
func Probe(r io.ReadSeeker, filename, declaredMime string) ClipInfo {
	info := ClipInfo{}

	if m, err := tag.ReadFrom(r); err == nil {
		info.MIME, info.Ext = byFileType(m.FileType())
		info.Title = strings.TrimSpace(m.Title())
		info.Artist = strings.TrimSpace(m.Artist())
	}
	r.Seek(0, io.SeekStart)

	if info.MIME == "" {
		info.MIME, info.Ext = byExtension(filepath.Ext(filename))
	}
	if info.MIME == "" && strings.HasPrefix(declaredMime, "audio/") {
		info.MIME = declaredMime
		info.Ext = extForMime(declaredMime)
	}
	if info.MIME == "" {
		// MediaRecorder default in every browser we care about.
		info.MIME = "audio/webm"
		info.Ext = ".webm"
	}
	return info
}

// TitleFromFilename derives a display title from an upload's filename when
// neither the form nor the embedded tags carry one.
func TitleFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}

func byFileType(t tag.FileType) (string, string) {
	switch t {
	case tag.MP3:
		return "audio/mpeg", ".mp3"
	case tag.FLAC:
		return "audio/flac", ".flac"
	case tag.OGG:
		return "audio/ogg", ".ogg"
	case tag.M4A, tag.M4B, tag.M4P:
		return "audio/mp4", ".m4a"
	default:
		return "", ""
	}
}

func byExtension(ext string) (string, string) {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "audio/mpeg", ".mp3"
	case ".flac":
		return "audio/flac", ".flac"
	case ".ogg", ".oga":
		return "audio/ogg", ".ogg"
	case ".webm":
		return "audio/webm", ".webm"
	case ".wav":
		return "audio/wav", ".wav"
	case ".m4a", ".mp4":
		return "audio/mp4", ".m4a"
	default:
		return "", ""
	}
}

func extForMime(mime string) string {
	switch mime {
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav":
		return ".wav"
	case "audio/mp4":
		return ".m4a"
	case "audio/flac":
		return ".flac"
	default:
		return ".webm"
	}
}
