package subtitles

import "github.com/example/langflix/pkg/models"

// ActiveLine returns the caption to show at playback time t. When several
// subtitles cover t the one that started last wins, and among equal start
// times the earlier entry in the list. An empty string means no caption.
func ActiveLine(subs []models.Subtitle, t float64) string {
	best := -1
	for i, s := range subs {
		if t < s.StartTime || t > s.EndTime {
			continue
		}
		if best < 0 || s.StartTime > subs[best].StartTime {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return subs[best].Text
}
