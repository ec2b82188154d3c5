package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/langflix/internal/catalog"
	"github.com/example/langflix/internal/quiz"
)

const helpText = `Welcome to Langflix! 🎬

Available commands:
/decks - List vocabulary decks
/practice <deck> - Practice a deck
/next - Go to the next word
/progress <deck> - Show what you have learned
/reset <deck> - Start a deck over
/remind - Check which decks still need practice

While practicing, just type the Spanish translation.`

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !message.IsCommand() {
		b.handleAnswer(chatID, message.Text)
		return
	}

	arg := strings.TrimSpace(message.CommandArguments())
	switch message.Command() {
	case "start", "help", "menu":
		b.send(chatID, helpText, b.MainMenuButtons())
	case "decks":
		b.handleDecks(ctx, chatID)
	case "practice":
		b.handlePractice(ctx, chatID, arg)
	case "next":
		b.handleNext(chatID)
	case "progress":
		b.handleProgress(ctx, chatID, arg)
	case "reset":
		b.handleReset(ctx, chatID, arg)
	case "remind":
		b.handleRemind(ctx, chatID)
	default:
		b.send(chatID, "Unknown command. Use /help to see what I can do.", b.MainMenuButtons())
	}
}

// handleCallbackQuery handles callback queries from buttons
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	if api := b.client(); api != nil {
		if _, err := api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
			b.log.Debug("Error answering callback", "error", err)
		}
	}

	data := callback.Data
	switch {
	case data == "decks":
		b.handleDecks(ctx, chatID)
	case data == "help":
		b.send(chatID, helpText, b.MainMenuButtons())
	case data == "next":
		b.handleNext(chatID)
	case strings.HasPrefix(data, "practice:"):
		b.handlePractice(ctx, chatID, strings.TrimPrefix(data, "practice:"))
	case strings.HasPrefix(data, "reset:"):
		b.handleReset(ctx, chatID, strings.TrimPrefix(data, "reset:"))
	}
}

func (b *Bot) handleDecks(ctx context.Context, chatID int64) {
	decks := b.catalog.Decks()
	if len(decks) == 0 {
		b.send(chatID, "There are no decks yet.", nil)
		return
	}

	userID := UserID(chatID)
	var sb strings.Builder
	sb.WriteString("📚 Decks:\n")
	buttons := make([][]MenuButton, 0, len(decks))
	for _, deck := range decks {
		stats := b.store.DeckStats(ctx, userID, deck)
		sb.WriteString(fmt.Sprintf("• %s (%s): %d/%d learned\n", deck.Name, deck.ID, stats.LearnedCount, stats.TotalCount))
		buttons = append(buttons, []MenuButton{{Text: "🎯 " + deck.Name, CallbackData: "practice:" + deck.ID}})
	}
	b.send(chatID, sb.String(), buttons)
}

func (b *Bot) handlePractice(ctx context.Context, chatID int64, deckID string) {
	if deckID == "" {
		b.send(chatID, "Which deck? Use /practice <deck>, for example /practice deck-1.", nil)
		return
	}

	session, err := quiz.NewSession(ctx, UserID(chatID), deckID, b.source, b.store, b.log)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			b.send(chatID, fmt.Sprintf("I don't know the deck %q. Use /decks to list them.", deckID), nil)
			return
		}
		b.log.Error("Failed to start practice", "chat_id", chatID, "deck_id", deckID, "error", err)
		b.send(chatID, "Something went wrong, please try again later.", nil)
		return
	}

	b.setPractice(chatID, &practice{session: session, deckID: deckID})
	if session.State() == quiz.StateComplete {
		b.send(chatID, "🎉 You have learned every word in this deck!", [][]MenuButton{
			{{Text: "🔄 Start over", CallbackData: "reset:" + deckID}},
		})
		return
	}
	b.askCurrent(chatID, session)
}

func (b *Bot) askCurrent(chatID int64, session *quiz.Session) {
	word, ok := session.Current()
	if !ok {
		return
	}
	pos, total := session.Progress()
	b.send(chatID, fmt.Sprintf("(%d/%d) Translate to Spanish: %s", pos, total, word.English), nil)
}

func (b *Bot) handleAnswer(chatID int64, text string) {
	p := b.practiceFor(chatID)
	if p == nil {
		b.send(chatID, "I don't understand. Use /decks to start practicing.", b.MainMenuButtons())
		return
	}

	result, err := p.session.Submit(text)
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidTransition) {
			b.send(chatID, "Use /next to continue.", [][]MenuButton{{{Text: "Next ▶", CallbackData: "next"}}})
			return
		}
		b.log.Error("Failed to grade answer", "chat_id", chatID, "error", err)
		return
	}

	reply := "✅ Correct!"
	if !result.Correct {
		reply = fmt.Sprintf("❌ Not quite. The answer is: %s", result.Expected)
	}
	b.send(chatID, reply, [][]MenuButton{{{Text: "Next ▶", CallbackData: "next"}}})
}

func (b *Bot) handleNext(chatID int64) {
	p := b.practiceFor(chatID)
	if p == nil {
		b.send(chatID, "You are not practicing right now. Use /decks to pick a deck.", nil)
		return
	}

	state, err := p.session.Continue()
	if err != nil {
		if state == quiz.StateActive {
			b.askCurrent(chatID, p.session)
		}
		return
	}
	if state == quiz.StateActive {
		b.askCurrent(chatID, p.session)
		return
	}

	summary, err := p.session.Summary()
	if err != nil {
		b.log.Error("Failed to summarize practice", "chat_id", chatID, "error", err)
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 Done! You got %d/%d right (%d%%).\n", summary.Correct, summary.Total, summary.Percent))
	for _, item := range summary.Items {
		mark := "✅"
		if !item.Correct {
			mark = "❌"
		}
		sb.WriteString(fmt.Sprintf("%s %s → %s\n", mark, item.Word.English, item.Word.Key()))
	}
	b.send(chatID, sb.String(), [][]MenuButton{
		{{Text: "🔁 Practice again", CallbackData: "practice:" + p.deckID}},
		{{Text: "📚 Decks", CallbackData: "decks"}},
	})
}

func (b *Bot) handleProgress(ctx context.Context, chatID int64, deckID string) {
	deck, err := b.catalog.Deck(deckID)
	if err != nil {
		b.send(chatID, "Use /progress <deck>, for example /progress deck-1.", nil)
		return
	}
	stats := b.store.DeckStats(ctx, UserID(chatID), deck)
	b.send(chatID, fmt.Sprintf("📊 %s: %d of %d words learned (%d%%)", deck.Name, stats.LearnedCount, stats.TotalCount, stats.PercentLearned), nil)
}

func (b *Bot) handleReset(ctx context.Context, chatID int64, deckID string) {
	deck, err := b.catalog.Deck(deckID)
	if err != nil {
		b.send(chatID, "Use /reset <deck>, for example /reset deck-1.", nil)
		return
	}
	if err := b.store.Reset(ctx, UserID(chatID), deck.ID); err != nil {
		b.log.Error("Failed to reset progress", "chat_id", chatID, "deck_id", deck.ID, "error", err)
		b.send(chatID, "Could not reset your progress, please try again later.", nil)
		return
	}
	b.send(chatID, fmt.Sprintf("🔄 %s has been reset.", deck.Name), [][]MenuButton{
		{{Text: "🎯 Practice", CallbackData: "practice:" + deck.ID}},
	})
}

func (b *Bot) handleRemind(ctx context.Context, chatID int64) {
	r := b.reminders()
	if r == nil {
		b.send(chatID, "Reminders are not enabled.", nil)
		return
	}
	pending, err := r.RunManualCheck(ctx, UserID(chatID))
	if err != nil {
		b.log.Error("Manual reminder check failed", "chat_id", chatID, "error", err)
		b.send(chatID, "Could not check your decks, please try again later.", nil)
		return
	}
	if len(pending) == 0 {
		b.send(chatID, "Nothing left to practice. 🎉", b.MainMenuButtons())
	}
}
