package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/pkg/models"
)

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces = regexp.MustCompile(`\s+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// Slugify turns a video title into the name fragment of its translation file
func Slugify(title string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(title), "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

// TranslationFile returns the name of the translation file for a video
func TranslationFile(v models.Video) string {
	return v.ID + "-" + Slugify(v.Title)
}

// ApplyTranslations replaces the words of each video's deck with the
// contents of <dir>/<videoId>-<slug> (or the same name with a .json
// extension) when such a file exists. Unreadable files are logged and
// leave the deck untouched. It returns the number of decks replaced.
func (c *Catalog) ApplyTranslations(dir string, log *logger.Logger) int {
	if log == nil {
		log = logger.Nop()
	}
	applied := 0
	for _, v := range c.videos {
		deck, ok := c.decks[v.DeckID]
		if !ok {
			continue
		}
		words, file, err := readTranslations(dir, TranslationFile(v))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Error("Failed to read translations", "file", file, "error", err)
			}
			continue
		}
		deck.Words = withOrder(words)
		c.decks[deck.ID] = deck
		applied++
		log.Info("Loaded translations", "file", file, "deck_id", deck.ID, "words", len(words))
	}
	return applied
}

func readTranslations(dir, name string) ([]models.Word, string, error) {
	var lastErr error
	for _, candidate := range []string{name, name + ".json"} {
		file := filepath.Join(dir, candidate)
		data, err := os.ReadFile(file)
		if err != nil {
			lastErr = err
			continue
		}
		var words []models.Word
		if err := json.Unmarshal(data, &words); err != nil {
			return nil, file, err
		}
		return words, file, nil
	}
	return nil, filepath.Join(dir, name), lastErr
}
