package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/example/langflix/pkg/models"
)

//go:embed data/videos.json data/decks/*.json
var defaultData embed.FS

// ErrNotFound is returned when a video or deck id is unknown
var ErrNotFound = errors.New("not found")

// Catalog holds the videos and vocabulary decks the app can serve.
// It is read-only once loaded.
type Catalog struct {
	videos []models.Video
	decks  map[string]models.Deck
}

// Default returns the catalog bundled with the binary
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads a catalog from dir when it contains a videos.json, and
// falls back to the bundled catalog otherwise
func LoadDir(dir string) (*Catalog, error) {
	if _, err := os.Stat(filepath.Join(dir, "videos.json")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default()
		}
		return nil, fmt.Errorf("failed to stat catalog: %w", err)
	}
	return Load(os.DirFS(dir))
}

// Load reads videos.json and every decks/*.json file of fsys
func Load(fsys fs.FS) (*Catalog, error) {
	data, err := fs.ReadFile(fsys, "videos.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read videos: %w", err)
	}
	var videos []models.Video
	if err := json.Unmarshal(data, &videos); err != nil {
		return nil, fmt.Errorf("failed to parse videos: %w", err)
	}

	entries, err := fs.ReadDir(fsys, "decks")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}

	decks := make(map[string]models.Deck, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := fs.ReadFile(fsys, "decks/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read deck %s: %w", entry.Name(), err)
		}
		var deck models.Deck
		if err := json.Unmarshal(data, &deck); err != nil {
			return nil, fmt.Errorf("failed to parse deck %s: %w", entry.Name(), err)
		}
		if deck.ID == "" {
			return nil, fmt.Errorf("deck %s has no id", entry.Name())
		}
		deck.Words = withOrder(deck.Words)
		decks[deck.ID] = deck
	}

	return &Catalog{videos: videos, decks: decks}, nil
}

// withOrder numbers words from 1 in list order when the source left order unset
func withOrder(words []models.Word) []models.Word {
	for _, w := range words {
		if w.Order != 0 {
			return words
		}
	}
	out := make([]models.Word, len(words))
	for i, w := range words {
		w.Order = i + 1
		out[i] = w
	}
	return out
}

// Videos returns every video in catalog order
func (c *Catalog) Videos() []models.Video {
	out := make([]models.Video, len(c.videos))
	copy(out, c.videos)
	return out
}

// Video looks a video up by id
func (c *Catalog) Video(id string) (models.Video, error) {
	for _, v := range c.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Video{}, fmt.Errorf("video %s: %w", id, ErrNotFound)
}

// Deck looks a deck up by id
func (c *Catalog) Deck(id string) (models.Deck, error) {
	deck, ok := c.decks[id]
	if !ok {
		return models.Deck{}, fmt.Errorf("deck %s: %w", id, ErrNotFound)
	}
	return deck, nil
}

// Decks returns every deck sorted by id
func (c *Catalog) Decks() []models.Deck {
	out := make([]models.Deck, 0, len(c.decks))
	for _, d := range c.decks {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}
