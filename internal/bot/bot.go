package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/internal/quiz"
	"github.com/example/langflix/internal/scheduler"
	"github.com/example/langflix/pkg/models"
)

const userIDPrefix = "tg:"

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot talks through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Catalog lists the decks users can practice
type Catalog interface {
	Decks() []models.Deck
	Deck(id string) (models.Deck, error)
}

// ProgressStore is the confidence store as used by the bot
type ProgressStore interface {
	quiz.Updater
	Get(ctx context.Context, userID, deckID string) models.DeckProgressMap
	Reset(ctx context.Context, userID, deckID string) error
	DeckStats(ctx context.Context, userID string, deck models.Deck) models.DeckStats
}

// Reminders triggers an immediate reminder check for one user
type Reminders interface {
	RunManualCheck(ctx context.Context, userID string) ([]scheduler.DeckReminder, error)
}

type practice struct {
	session  *quiz.Session
	deckID   string
	lastSeen time.Time
}

// Bot represents the Telegram bot application
type Bot struct {
	api     sender
	botAPI  *tgbotapi.BotAPI
	token   string
	catalog Catalog
	store   ProgressStore
	source  quiz.QueueSource
	remind  Reminders
	config  *BotConfig
	log     *logger.Logger

	mu       sync.Mutex
	sessions map[int64]*practice
	now      func() time.Time
}

// New creates a new bot instance
func New(token string, catalog Catalog, store ProgressStore, log *logger.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	b := newBot(nil, catalog, store, log)
	b.token = token
	return b, nil
}

func newBot(api sender, catalog Catalog, store ProgressStore, log *logger.Logger) *Bot {
	if log == nil {
		log = logger.Nop()
	}
	return &Bot{
		api:      api,
		catalog:  catalog,
		store:    store,
		source:   quiz.NewQueueSource(catalog, store),
		config:   DefaultConfig(),
		log:      log.With("component", "bot"),
		sessions: make(map[int64]*practice),
		now:      time.Now,
	}
}

// SetReminders enables the /remind command
func (b *Bot) SetReminders(r Reminders) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remind = r
}

func (b *Bot) reminders() Reminders {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remind
}

// client returns the Telegram API, nil until Start has connected
func (b *Bot) client() sender {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.api
}

// UserID is the progress identity of a Telegram chat
func UserID(chatID int64) string {
	return userIDPrefix + strconv.FormatInt(chatID, 10)
}

// ChatID recovers the chat of a progress identity created by UserID
func ChatID(userID string) (int64, bool) {
	if !strings.HasPrefix(userID, userIDPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(userID, userIDPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Start connects to Telegram and handles updates until ctx is canceled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %v", err)
	}
	b.mu.Lock()
	b.botAPI = botAPI
	b.api = botAPI
	b.mu.Unlock()
	b.log.Info("Authorized on account", "account", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sweep.C:
			b.dropIdleSessions()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	b.mu.Lock()
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	sessions := make([]*practice, 0, len(b.sessions))
	for _, p := range b.sessions {
		sessions = append(sessions, p)
	}
	b.mu.Unlock()
	for _, p := range sessions {
		p.session.Wait()
	}
	b.log.Info("Bot stopped")
}

// CanNotify implements scheduler.Notifier
func (b *Bot) CanNotify(userID string) bool {
	_, ok := ChatID(userID)
	return ok && b.client() != nil
}

// SendReminder implements scheduler.Notifier
func (b *Bot) SendReminder(userID string, decks []scheduler.DeckReminder) error {
	chatID, ok := ChatID(userID)
	if !ok {
		return fmt.Errorf("%s is not a telegram user", userID)
	}

	var sb strings.Builder
	sb.WriteString("Time to practice! You still have:\n")
	buttons := make([][]MenuButton, 0, len(decks))
	for _, d := range decks {
		sb.WriteString(fmt.Sprintf("• %s: %d %s\n", d.Deck.Name, d.Pending, plural(d.Pending, "word", "words")))
		buttons = append(buttons, []MenuButton{{Text: "🎯 " + d.Deck.Name, CallbackData: "practice:" + d.Deck.ID}})
	}

	api := b.client()
	if api == nil {
		return fmt.Errorf("bot is not connected")
	}
	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ReplyMarkup = createKeyboard(buttons)
	if _, err := api.Send(msg); err != nil {
		b.log.Warn("Error sending reminder", "chat_id", chatID, "error", err)
		return err
	}
	return nil
}

func (b *Bot) send(chatID int64, text string, buttons [][]MenuButton) {
	api := b.client()
	if api == nil {
		b.log.Warn("Dropping message, bot is not connected", "chat_id", chatID)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	if _, err := api.Send(msg); err != nil {
		b.log.Warn("Error sending message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) practiceFor(chatID int64) *practice {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.sessions[chatID]
	if !ok {
		return nil
	}
	p.lastSeen = b.now()
	return p
}

func (b *Bot) setPractice(chatID int64, p *practice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p.lastSeen = b.now()
	b.sessions[chatID] = p
}

func (b *Bot) dropIdleSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff := b.now().Add(-b.config.SessionIdleTimeout)
	for chatID, p := range b.sessions {
		if p.lastSeen.Before(cutoff) {
			delete(b.sessions, chatID)
		}
	}
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "📚 Decks", CallbackData: "decks"},
			{Text: "❓ Help", CallbackData: "help"},
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
