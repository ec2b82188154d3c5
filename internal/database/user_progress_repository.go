package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/langflix/pkg/models"
)

// UserProgressRepository persists the progress document as one row per word.
// It satisfies progress.Backend.
type UserProgressRepository struct {
	db *sqlx.DB
}

// NewUserProgressRepository creates a new repository instance
func NewUserProgressRepository(db *sqlx.DB) *UserProgressRepository {
	return &UserProgressRepository{db: db}
}

type progressRow struct {
	UserID     string    `db:"user_id"`
	DeckID     string    `db:"deck_id"`
	WordKey    string    `db:"word_key"`
	Confidence int       `db:"confidence"`
	LastSeen   time.Time `db:"last_seen"`
}

// Load reads every stored row into a document
func (r *UserProgressRepository) Load(ctx context.Context) (models.UserProgressStore, error) {
	var rows []progressRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT user_id, deck_id, word_key, confidence, last_seen
		FROM word_progress
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}

	store := models.UserProgressStore{}
	for _, row := range rows {
		store.EnsureDeck(row.UserID, row.DeckID)[row.WordKey] = models.WordProgress{
			Confidence: row.Confidence,
			LastSeen:   row.LastSeen.UTC(),
		}
	}
	return store, nil
}

// Save replaces every row with the contents of store inside one transaction
func (r *UserProgressRepository) Save(ctx context.Context, store models.UserProgressStore) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM word_progress"); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear user progress: %w", err)
	}

	insert := tx.Rebind(`
		INSERT INTO word_progress (user_id, deck_id, word_key, confidence, last_seen, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`)
	for userID, decks := range store {
		for deckID, words := range decks {
			for key, p := range words {
				if _, err := tx.ExecContext(ctx, insert, userID, deckID, key, p.Confidence, p.LastSeen.UTC()); err != nil {
					tx.Rollback()
					return fmt.Errorf("failed to save progress for %s/%s: %w", deckID, key, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
