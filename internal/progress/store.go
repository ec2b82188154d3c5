package progress

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/pkg/models"
)

// Backend persists the whole progress document. Save must replace the stored
// document atomically: a failed Save leaves the previous document intact.
type Backend interface {
	Load(ctx context.Context) (models.UserProgressStore, error)
	Save(ctx context.Context, store models.UserProgressStore) error
}

// Store is the confidence store. Every mutation is a full load-modify-save
// cycle under a single lock, so completed updates are never lost.
type Store struct {
	mu      sync.Mutex
	backend Backend
	log     *logger.Logger
	now     func() time.Time
}

// NewStore creates a store on top of the given backend
func NewStore(backend Backend, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		backend: backend,
		log:     log.With("component", "progress.Store"),
		now:     time.Now,
	}
}

// NextConfidence applies the confidence rule: a correct answer marks the word
// learned, a wrong one adds a point but never promotes the word to learned.
func NextConfidence(current int, wasCorrect bool) int {
	if wasCorrect {
		return models.LearnedConfidence
	}
	if current < models.UnseenConfidence {
		current = models.UnseenConfidence
	}
	next := current + 1
	if next >= models.LearnedConfidence {
		next = models.LearnedConfidence - 1
	}
	return next
}

// Get returns the progress recorded for (user, deck). It never fails: read
// errors are logged and reported as an empty map.
func (s *Store) Get(ctx context.Context, userID, deckID string) models.DeckProgressMap {
	all, err := s.backend.Load(ctx)
	if err != nil {
		s.log.Warn("Progress read failed, serving empty progress", "user_id", userID, "deck_id", deckID, "error", err)
		return models.DeckProgressMap{}
	}
	deck := all.Deck(userID, deckID)
	if deck == nil {
		return models.DeckProgressMap{}
	}
	return deck.Clone()
}

// Update records one answer for wordKey and persists the result
func (s *Store) Update(ctx context.Context, userID, deckID, wordKey string, wasCorrect bool) (models.WordProgress, error) {
	if userID == "" || deckID == "" || wordKey == "" {
		return models.WordProgress{}, fmt.Errorf("%w: user, deck and word are required", ErrMalformedInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return models.WordProgress{}, err
	}

	deck := all.EnsureDeck(userID, deckID)
	previous := deck.Confidence(wordKey)
	updated := models.WordProgress{
		Confidence: NextConfidence(previous, wasCorrect),
		LastSeen:   s.now().UTC(),
	}
	deck[wordKey] = updated

	if err := s.backend.Save(ctx, all); err != nil {
		return models.WordProgress{}, fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
	}

	s.log.Debug("Updated word confidence",
		"user_id", userID,
		"deck_id", deckID,
		"word", wordKey,
		"from", previous,
		"to", updated.Confidence,
		"correct", wasCorrect,
	)
	return updated, nil
}

// Reset zeroes every recorded word of (user, deck). Entries are kept.
func (s *Store) Reset(ctx context.Context, userID, deckID string) error {
	if userID == "" || deckID == "" {
		return fmt.Errorf("%w: user and deck are required", ErrMalformedInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}

	deck := all.Deck(userID, deckID)
	if len(deck) == 0 {
		s.log.Debug("No progress to reset", "user_id", userID, "deck_id", deckID)
		return nil
	}

	now := s.now().UTC()
	for key := range deck {
		deck[key] = models.WordProgress{Confidence: models.UnseenConfidence, LastSeen: now}
	}

	if err := s.backend.Save(ctx, all); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
	}

	s.log.Info("Reset deck progress", "user_id", userID, "deck_id", deckID, "words", len(deck))
	return nil
}

// DeckStats loads the user's progress on deck and summarizes it over the
// deck's own words
func (s *Store) DeckStats(ctx context.Context, userID string, deck models.Deck) models.DeckStats {
	return DeckStatsFor(s.Get(ctx, userID, deck.ID), deck.Words)
}

// Snapshot returns the whole document, for background jobs that scan all users
func (s *Store) Snapshot(ctx context.Context) (models.UserProgressStore, error) {
	return s.load(ctx)
}

// load never substitutes an empty document for a broken one, so a mutation
// cannot overwrite progress it failed to read.
func (s *Store) load(ctx context.Context) (models.UserProgressStore, error) {
	all, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceRead, err)
	}
	if all == nil {
		all = models.UserProgressStore{}
	}
	return all, nil
}
