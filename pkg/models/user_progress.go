package models

import "time"

// Confidence bounds. A word at LearnedConfidence is considered mastered.
const (
	UnseenConfidence  = 0
	LearnedConfidence = 100
)

// WordProgress tracks one user's confidence for a single word of a deck
type WordProgress struct {
	Confidence int       `json:"confidence" db:"confidence"`
	LastSeen   time.Time `json:"lastSeen" db:"last_seen"`
}

// IsLearned reports whether the word has been mastered
func (p WordProgress) IsLearned() bool {
	return p.Confidence == LearnedConfidence
}

// DeckProgressMap maps a word key (its canonical translation) to its progress
type DeckProgressMap map[string]WordProgress

// Confidence returns the stored confidence for key, defaulting to UnseenConfidence
func (m DeckProgressMap) Confidence(key string) int {
	if p, ok := m[key]; ok {
		return p.Confidence
	}
	return UnseenConfidence
}

// Clone returns an independent copy of the map
func (m DeckProgressMap) Clone() DeckProgressMap {
	out := make(DeckProgressMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UserProgressStore is the whole persisted progress document: user -> deck -> words
type UserProgressStore map[string]map[string]DeckProgressMap

// Deck returns the progress map for one (user, deck) pair, or nil if none is recorded
func (s UserProgressStore) Deck(userID, deckID string) DeckProgressMap {
	decks, ok := s[userID]
	if !ok {
		return nil
	}
	return decks[deckID]
}

// EnsureDeck returns the progress map for (user, deck), creating it when missing
func (s UserProgressStore) EnsureDeck(userID, deckID string) DeckProgressMap {
	decks, ok := s[userID]
	if !ok {
		decks = make(map[string]DeckProgressMap)
		s[userID] = decks
	}
	deck, ok := decks[deckID]
	if !ok {
		deck = make(DeckProgressMap)
		decks[deckID] = deck
	}
	return deck
}
