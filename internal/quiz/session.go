package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/example/langflix/internal/grading"
	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/pkg/models"
)

// State is the phase a practice session is in
type State string

const (
	// StateActive waits for an answer to the current word
	StateActive State = "active"
	// StateShowingFeedback shows the result of the last answer
	StateShowingFeedback State = "showing_feedback"
	// StateComplete means every queued word has been answered
	StateComplete State = "complete"
)

// ErrInvalidTransition is returned when an operation is not allowed in the current state
var ErrInvalidTransition = errors.New("invalid quiz transition")

const updateTimeout = 10 * time.Second

// Answer is one graded attempt
type Answer struct {
	Word    models.Word `json:"word"`
	Given   string      `json:"given"`
	Correct bool        `json:"correct"`
}

// Summary is the final report of a completed session
type Summary struct {
	Correct int      `json:"correct"`
	Total   int      `json:"total"`
	Percent int      `json:"percent"`
	Items   []Answer `json:"items"`
}

// Session walks one user through a deck's review queue
type Session struct {
	mu      sync.Mutex
	userID  string
	deckID  string
	queue   []models.Word
	index   int
	state   State
	answers []Answer

	source  QueueSource
	updater Updater
	log     *logger.Logger
	pending sync.WaitGroup
}

// NewSession fetches the deck's queue and starts a session. An empty
// queue yields a session that is already complete.
func NewSession(ctx context.Context, userID, deckID string, source QueueSource, updater Updater, log *logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &Session{
		userID:  userID,
		deckID:  deckID,
		source:  source,
		updater: updater,
		log:     log.With("component", "quiz", "user_id", userID, "deck_id", deckID),
	}
	if err := s.Restart(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Restart discards all answers and fetches a fresh queue
func (s *Session) Restart(ctx context.Context) error {
	queue, err := s.source.Queue(ctx, s.userID, s.deckID)
	if err != nil {
		return fmt.Errorf("failed to load review queue: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = queue
	s.index = 0
	s.answers = nil
	s.state = StateActive
	if len(queue) == 0 {
		s.state = StateComplete
	}
	return nil
}

// State returns the current phase
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the word being asked, false once the session is complete
func (s *Session) Current() (models.Word, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateComplete {
		return models.Word{}, false
	}
	return s.queue[s.index], true
}

// Progress returns the 1-based position of the current word and the queue length
func (s *Session) Progress() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index + 1, len(s.queue)
}

// Submit grades an answer to the current word and records it in the
// background. The session moves on to showing feedback regardless of
// whether the update succeeds.
func (s *Session) Submit(answer string) (grading.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return grading.Result{}, fmt.Errorf("submit in state %s: %w", s.state, ErrInvalidTransition)
	}

	word := s.queue[s.index]
	result := grading.Grade(answer, word)
	s.answers = append(s.answers, Answer{Word: word, Given: answer, Correct: result.Correct})
	s.state = StateShowingFeedback

	s.pending.Add(1)
	go s.record(result.Key, result.Correct)

	return result, nil
}

func (s *Session) record(key string, correct bool) {
	defer s.pending.Done()
	ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
	defer cancel()
	if _, err := s.updater.Update(ctx, s.userID, s.deckID, key, correct); err != nil {
		s.log.Warn("Failed to record answer", "word", key, "error", err)
	}
}

// Continue advances past the feedback to the next word, completing the
// session after the last one
func (s *Session) Continue() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateShowingFeedback {
		return s.state, fmt.Errorf("continue in state %s: %w", s.state, ErrInvalidTransition)
	}
	if s.index+1 < len(s.queue) {
		s.index++
		s.state = StateActive
	} else {
		s.state = StateComplete
	}
	return s.state, nil
}

// Summary reports the results of a completed session
func (s *Session) Summary() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateComplete {
		return Summary{}, fmt.Errorf("summary in state %s: %w", s.state, ErrInvalidTransition)
	}

	sum := Summary{Total: len(s.answers), Items: make([]Answer, len(s.answers))}
	copy(sum.Items, s.answers)
	for _, a := range s.answers {
		if a.Correct {
			sum.Correct++
		}
	}
	if sum.Total > 0 {
		sum.Percent = int(math.Round(float64(sum.Correct) / float64(sum.Total) * 100))
	}
	return sum, nil
}

// Wait blocks until every background update has finished
func (s *Session) Wait() {
	s.pending.Wait()
}
