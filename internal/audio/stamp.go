package audio

import (
	"fmt"
	"os"

	"github.com/bogem/id3v2"
	"github.com/go-flac/go-flac"
)

// StampMP3 writes the note title and author into the clip's ID3 tags so a
// downloaded capsule stays attributable outside the app.
func StampMP3(path, title, artist string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	if title != "" {
		tag.SetTitle(title)
	}
	if artist != "" {
		tag.SetArtist(artist)
	}

	return tag.Save()
}

// ValidateFLAC rejects uploads that claim to be FLAC but don't parse.
func ValidateFLAC(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := flac.ParseBytes(f); err != nil {
		return fmt.Errorf("not a valid flac stream: %w", err)
	}
	return nil
}
