package subtitles

import (
	"strings"

	"github.com/example/langflix/pkg/models"
)

// WordCount summarizes the vocabulary of a subtitle track
type WordCount struct {
	Total    int `json:"total"`
	Unique   int `json:"unique"`
	Segments int `json:"segments"`
}

const punctuation = ".,!?;:()[]{}\"“”'‘’"

// CountWords counts total and distinct lowercase words across all captions
func CountWords(subs []models.Subtitle) WordCount {
	texts := make([]string, len(subs))
	for i, s := range subs {
		texts[i] = s.Text
	}
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, strings.ToLower(strings.Join(texts, " ")))

	words := strings.Fields(cleaned)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	return WordCount{Total: len(words), Unique: len(unique), Segments: len(subs)}
}
