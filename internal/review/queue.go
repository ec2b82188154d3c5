package review

import (
	"sort"

	"github.com/example/langflix/pkg/models"
)

// QueueState describes what an empty or non-empty queue means for a deck
type QueueState string

const (
	// StateEmpty means the deck has no words at all
	StateEmpty QueueState = "empty"
	// StateLearned means every word of the deck has been learned
	StateLearned QueueState = "learned"
	// StatePending means there are words left to practice
	StatePending QueueState = "pending"
)

// BuildQueue returns the words still to practice, annotated with their
// confidence. Learned words are dropped; the rest are ordered by ascending
// confidence, then by their position in the deck. Words without any
// translation cannot be keyed and are skipped.
func BuildQueue(words []models.Word, progress models.DeckProgressMap) []models.Word {
	queue := make([]models.Word, 0, len(words))
	for _, w := range words {
		key := w.Key()
		if key == "" {
			continue
		}
		confidence := progress.Confidence(key)
		if confidence == models.LearnedConfidence {
			continue
		}
		queue = append(queue, w.WithConfidence(confidence))
	}

	sort.SliceStable(queue, func(i, j int) bool {
		ci, cj := *queue[i].Confidence, *queue[j].Confidence
		if ci != cj {
			return ci < cj
		}
		return queue[i].Order < queue[j].Order
	})

	return queue
}

// State classifies a deck given its full word list and its built queue
func State(words []models.Word, queue []models.Word) QueueState {
	switch {
	case len(queue) > 0:
		return StatePending
	case len(words) == 0:
		return StateEmpty
	default:
		return StateLearned
	}
}
