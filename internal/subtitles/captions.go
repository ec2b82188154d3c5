package subtitles

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/langflix/pkg/models"
)

// Caption is one line of a YouTube caption export. Start and duration are
// seconds, written as strings by the export.
type Caption struct {
	Start string `json:"start"`
	Dur   string `json:"dur"`
	Text  string `json:"text"`
}

// FromCaptions converts an export to subtitles ending at start+dur
func FromCaptions(captions []Caption) ([]models.Subtitle, error) {
	subs := make([]models.Subtitle, 0, len(captions))
	for i, c := range captions {
		start, err := strconv.ParseFloat(strings.TrimSpace(c.Start), 64)
		if err != nil {
			return nil, fmt.Errorf("caption %d: invalid start %q", i+1, c.Start)
		}
		dur, err := strconv.ParseFloat(strings.TrimSpace(c.Dur), 64)
		if err != nil || dur < 0 {
			return nil, fmt.Errorf("caption %d: invalid duration %q", i+1, c.Dur)
		}
		subs = append(subs, models.Subtitle{StartTime: start, EndTime: start + dur, Text: c.Text})
	}
	return subs, nil
}

// ReadCaptions decodes a caption export file
func ReadCaptions(path string) ([]models.Subtitle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var captions []Caption
	if err := json.Unmarshal(data, &captions); err != nil {
		return nil, err
	}
	return FromCaptions(captions)
}

// Import caches the subtitles of an export under the video's YouTube id and
// returns that id. An existing track is kept unless overwrite is set.
func (c *Cache) Import(videoURL, exportPath string, overwrite bool) (string, int, error) {
	id, ok := ExtractVideoID(videoURL)
	if !ok {
		return "", 0, fmt.Errorf("could not extract a YouTube video id from %q", videoURL)
	}
	if !overwrite && c.Has(id) {
		return id, 0, fmt.Errorf("subtitles for %s already exist at %s", id, c.Path(id))
	}
	subs, err := ReadCaptions(exportPath)
	if err != nil {
		return id, 0, fmt.Errorf("read %s: %w", exportPath, err)
	}
	if err := c.Store(id, subs); err != nil {
		return id, 0, err
	}
	c.log.Info("Imported subtitles", "video_id", id, "segments", len(subs))
	return id, len(subs), nil
}
