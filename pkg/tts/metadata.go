package tts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// applyID3 writes the metadata as ID3v2 tags. Only mp3 files are
// tagged; other flat formats are returned untouched.
func applyID3(path string, meta Metadata) error {
	if strings.ToLower(filepath.Ext(path)) != ".mp3" {
		return nil
	}
	if meta == (Metadata{}) {
		return nil
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("opening %q for tagging: %w", path, err)
	}
	defer tag.Close()

	if meta.Title != "" {
		tag.SetTitle(meta.Title)
	}
	if meta.Artist != "" {
		tag.SetArtist(meta.Artist)
	}
	if meta.Album != "" {
		tag.SetAlbum(meta.Album)
	}
	if meta.Genre != "" {
		tag.SetGenre(meta.Genre)
	}
	if meta.Date != "" {
		tag.SetYear(meta.Date)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("saving tags for %q: %w", path, err)
	}
	return nil
}
