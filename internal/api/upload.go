package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"

	"github.com/Nix177/audio-geo-notes/internal/audio"
	"github.com/Nix177/audio-geo-notes/internal/storage"
)

// probeUpload inspects a multipart part without consuming it.
func probeUpload(fh *multipart.FileHeader) (audio.ClipInfo, error) {
	src, err := fh.Open()
	if err != nil {
		return audio.ClipInfo{}, err
	}
	defer src.Close()
	return audio.Probe(src, fh.Filename, fh.Header.Get("Content-Type")), nil
}

// saveUpload lands a multipart audio part in the upload area and returns its
// key and detected MIME. The clip goes through a temp file first so mp3s can
// be tagged and flacs validated before the bytes become visible.
func (s *Server) saveUpload(fh *multipart.FileHeader, kind, title, author string) (string, string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	info := audio.Probe(src, fh.Filename, fh.Header.Get("Content-Type"))

	tempFile, err := os.CreateTemp("", "notes-upload-*"+info.Ext)
	if err != nil {
		return "", "", fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := io.Copy(tempFile, src); err != nil {
		tempFile.Close()
		return "", "", fmt.Errorf("buffer upload: %w", err)
	}
	tempFile.Close() // Close to allow tagging

	switch info.Ext {
	case ".mp3":
		if err := audio.StampMP3(tempFile.Name(), title, author); err != nil {
			return "", "", fmt.Errorf("tag mp3: %w", err)
		}
	case ".flac":
		if err := audio.ValidateFLAC(tempFile.Name()); err != nil {
			return "", "", err
		}
	}

	final, err := os.Open(tempFile.Name())
	if err != nil {
		return "", "", fmt.Errorf("reopen upload: %w", err)
	}
	defer final.Close()

	key := storage.NewClipKey(kind, info.Ext)
	if err := s.uploads.SaveClip(key, final, info.MIME); err != nil {
		return "", "", fmt.Errorf("store clip: %w", err)
	}

	return key, info.MIME, nil
}
