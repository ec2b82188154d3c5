package quiz

import (
	"context"
	"fmt"

	"github.com/example/langflix/internal/review"
	"github.com/example/langflix/pkg/models"
)

// QueueSource produces a fresh review queue for a user's deck
type QueueSource interface {
	Queue(ctx context.Context, userID, deckID string) ([]models.Word, error)
}

// Updater records the outcome of one answer
type Updater interface {
	Update(ctx context.Context, userID, deckID, wordKey string, wasCorrect bool) (models.WordProgress, error)
}

// DeckFinder looks decks up by id
type DeckFinder interface {
	Deck(id string) (models.Deck, error)
}

// ProgressReader returns the stored progress of a user's deck
type ProgressReader interface {
	Get(ctx context.Context, userID, deckID string) models.DeckProgressMap
}

type deckQueue struct {
	decks    DeckFinder
	progress ProgressReader
}

// NewQueueSource builds queues from a deck catalog and the confidence store
func NewQueueSource(decks DeckFinder, progress ProgressReader) QueueSource {
	return &deckQueue{decks: decks, progress: progress}
}

func (q *deckQueue) Queue(ctx context.Context, userID, deckID string) ([]models.Word, error) {
	deck, err := q.decks.Deck(deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deck %s: %w", deckID, err)
	}
	return review.BuildQueue(deck.Words, q.progress.Get(ctx, userID, deckID)), nil
}
