package server

import (
	"sync"
	"time"
)

// SessionTTL is how long an idle session keeps its saved decks
const SessionTTL = 24 * time.Hour

type session struct {
	savedDeckIDs []string
	expiresAt    time.Time
}

// SessionStore keeps the decks each browser session has saved. It lives
// in memory only; progress is what gets persisted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Touch extends the session's lifetime, creating it if needed
func (s *SessionStore) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(id)
	if sess == nil {
		sess = &session{}
		s.sessions[id] = sess
	}
	sess.expiresAt = s.now().Add(SessionTTL)
}

// SavedDecks returns the deck ids saved by a session, in the order they were saved
func (s *SessionStore) SavedDecks(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.live(id)
	if sess == nil {
		return []string{}
	}
	out := make([]string, len(sess.savedDeckIDs))
	copy(out, sess.savedDeckIDs)
	return out
}

// SaveDeck adds a deck to the session's list unless it is already there
func (s *SessionStore) SaveDeck(id, deckID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.live(id)
	if sess == nil {
		sess = &session{}
		s.sessions[id] = sess
	}
	sess.expiresAt = s.now().Add(SessionTTL)

	found := false
	for _, saved := range sess.savedDeckIDs {
		if saved == deckID {
			found = true
			break
		}
	}
	if !found {
		sess.savedDeckIDs = append(sess.savedDeckIDs, deckID)
	}

	out := make([]string, len(sess.savedDeckIDs))
	copy(out, sess.savedDeckIDs)
	return out
}

// Sweep drops expired sessions and returns how many were removed
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	now := s.now()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// live must be called with mu held
func (s *SessionStore) live(id string) *session {
	sess, ok := s.sessions[id]
	if !ok || s.now().After(sess.expiresAt) {
		return nil
	}
	return sess
}
