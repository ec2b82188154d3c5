package subtitles

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/pkg/models"
)

// Cache reads subtitle tracks stored as <dir>/<youtubeId>.json. Tracks
// that load successfully are kept in memory.
type Cache struct {
	dir string
	log *logger.Logger

	mu     sync.RWMutex
	tracks map[string][]models.Subtitle
}

// NewCache creates a cache rooted at dir
func NewCache(dir string, log *logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		dir:    dir,
		log:    log.With("component", "subtitles"),
		tracks: make(map[string][]models.Subtitle),
	}
}

// Path returns the cache file for a YouTube id
func (c *Cache) Path(youtubeID string) string {
	return filepath.Join(c.dir, youtubeID+".json")
}

// Load returns the cached subtitles of a video. An unrecognized URL, a
// missing file or an unreadable file all yield an empty track.
func (c *Cache) Load(videoURL string) []models.Subtitle {
	id, ok := ExtractVideoID(videoURL)
	if !ok {
		c.log.Warn("Could not extract video id", "url", videoURL)
		return []models.Subtitle{}
	}

	c.mu.RLock()
	subs, ok := c.tracks[id]
	c.mu.RUnlock()
	if ok {
		return subs
	}

	subs, err := ReadFile(c.Path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.log.Debug("No cached subtitles", "video_id", id)
		} else {
			c.log.Error("Failed to read cached subtitles", "video_id", id, "error", err)
		}
		return []models.Subtitle{}
	}

	c.mu.Lock()
	c.tracks[id] = subs
	c.mu.Unlock()
	return subs
}

// Store writes a subtitle track to the cache
func (c *Cache) Store(youtubeID string, subs []models.Subtitle) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.Path(youtubeID), data, 0o644); err != nil {
		return err
	}

	c.mu.Lock()
	c.tracks[youtubeID] = subs
	c.mu.Unlock()
	return nil
}

// Has reports whether a track for youtubeID is already cached on disk
func (c *Cache) Has(youtubeID string) bool {
	_, err := os.Stat(c.Path(youtubeID))
	return err == nil
}

// ReadFile decodes a subtitle track from a JSON file
func ReadFile(path string) ([]models.Subtitle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var subs []models.Subtitle
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, err
	}
	if subs == nil {
		subs = []models.Subtitle{}
	}
	return subs, nil
}
