package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/internal/review"
	"github.com/example/langflix/pkg/models"
)

// DeckReminder is one deck a user still has words to practice in
type DeckReminder struct {
	Deck    models.Deck
	Pending int
}

// Notifier interface for sending notifications
type Notifier interface {
	// CanNotify reports whether the notifier knows how to reach userID
	CanNotify(userID string) bool
	SendReminder(userID string, decks []DeckReminder) error
}

// ProgressSource exposes the full progress document
type ProgressSource interface {
	Snapshot(ctx context.Context) (models.UserProgressStore, error)
}

// DeckFinder looks decks up by id
type DeckFinder interface {
	Deck(id string) (models.Deck, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	progress  ProgressSource
	decks     DeckFinder
	startHour int
	endHour   int
	now       func() time.Time
	log       *logger.Logger
}

// New creates a scheduler that sends reminders between startHour and
// endHour (inclusive, local time)
func New(notifier Notifier, progress ProgressSource, decks DeckFinder, startHour, endHour int, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		notifier:  notifier,
		progress:  progress,
		decks:     decks,
		startHour: startHour,
		endHour:   endHour,
		now:       time.Now,
		log:       log.With("component", "scheduler"),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	// Schedule hourly check for users who need notifications
	if _, err := s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders: %v", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) checkAndSendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	s.CheckReminders(ctx)
}

// CheckReminders notifies every reachable user who has started a deck and
// still has words left in it. It does nothing outside the reminder hours
// and returns the number of users notified.
func (s *Scheduler) CheckReminders(ctx context.Context) int {
	currentHour := s.now().Hour()
	if currentHour < s.startHour || currentHour > s.endHour {
		s.log.Debug("Outside reminder hours, skipping", "hour", currentHour, "start", s.startHour, "end", s.endHour)
		return 0
	}

	doc, err := s.progress.Snapshot(ctx)
	if err != nil {
		s.log.Error("Failed to read progress for reminders", "error", err)
		return 0
	}

	userIDs := make([]string, 0, len(doc))
	for userID := range doc {
		userIDs = append(userIDs, userID)
	}
	sort.Strings(userIDs)

	sent := 0
	for _, userID := range userIDs {
		if !s.notifier.CanNotify(userID) {
			continue
		}
		reminders := s.pendingDecks(doc[userID])
		if len(reminders) == 0 {
			continue
		}
		if err := s.notifier.SendReminder(userID, reminders); err != nil {
			s.log.Warn("Failed to send reminder", "user_id", userID, "error", err)
			continue
		}
		sent++
	}
	s.log.Info("Reminders sent", "count", sent)
	return sent
}

// RunManualCheck forces a check for a specific user, ignoring reminder hours
func (s *Scheduler) RunManualCheck(ctx context.Context, userID string) ([]DeckReminder, error) {
	doc, err := s.progress.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	reminders := s.pendingDecks(doc[userID])
	if len(reminders) == 0 || !s.notifier.CanNotify(userID) {
		return reminders, nil
	}
	return reminders, s.notifier.SendReminder(userID, reminders)
}

func (s *Scheduler) pendingDecks(decks map[string]models.DeckProgressMap) []DeckReminder {
	deckIDs := make([]string, 0, len(decks))
	for deckID := range decks {
		deckIDs = append(deckIDs, deckID)
	}
	sort.Strings(deckIDs)

	var out []DeckReminder
	for _, deckID := range deckIDs {
		deck, err := s.decks.Deck(deckID)
		if err != nil {
			continue
		}
		if pending := len(review.BuildQueue(deck.Words, decks[deckID])); pending > 0 {
			out = append(out, DeckReminder{Deck: deck, Pending: pending})
		}
	}
	return out
}
