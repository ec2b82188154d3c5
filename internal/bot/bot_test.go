package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/langflix/internal/catalog"
	"github.com/example/langflix/internal/progress"
	"github.com/example/langflix/internal/scheduler"
	"github.com/example/langflix/pkg/models"
)

type fakeAPI struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	requests int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(_ tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("no message sent")
	}
	return f.messages[len(f.messages)-1]
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI, *progress.Store) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	store := progress.NewStore(progress.NewFileBackend(filepath.Join(t.TempDir(), "progress.json")), nil)
	api := &fakeAPI{}
	return newBot(api, cat, store, nil), api, store
}

func command(chatID int64, text string) *tgbotapi.Message {
	cmd := strings.SplitN(text, " ", 2)[0]
	return &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func text(chatID int64, s string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: s}
}

// answer submits one answer and waits for the confidence update to land
func answer(b *Bot, chatID int64, s string) {
	b.handleMessage(context.Background(), text(chatID, s))
	if p := b.practiceFor(chatID); p != nil {
		p.session.Wait()
	}
}

func TestUserIDRoundTrip(t *testing.T) {
	if got := UserID(42); got != "tg:42" {
		t.Fatalf("UserID = %q", got)
	}
	if id, ok := ChatID("tg:42"); !ok || id != 42 {
		t.Fatalf("ChatID = %d, %v", id, ok)
	}
	for _, bad := range []string{"42", "tg:", "tg:abc", "session-1"} {
		if _, ok := ChatID(bad); ok {
			t.Errorf("ChatID(%q) should fail", bad)
		}
	}
}

func TestPracticeFlow(t *testing.T) {
	b, api, store := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, command(1, "/practice deck-1"))
	if got := api.last(t).Text; !strings.Contains(got, "(1/5)") || !strings.Contains(got, "coffee") {
		t.Fatalf("first prompt = %q", got)
	}

	answer(b, 1, "Cafe")
	if got := api.last(t).Text; !strings.HasPrefix(got, "✅") {
		t.Fatalf("feedback = %q", got)
	}
	b.handleMessage(ctx, command(1, "/next"))
	if got := api.last(t).Text; !strings.Contains(got, "table") {
		t.Fatalf("second prompt = %q", got)
	}

	answer(b, 1, "silla")
	if got := api.last(t).Text; !strings.Contains(got, "mesa") {
		t.Fatalf("feedback = %q", got)
	}

	answer(b, 1, "again")
	if got := api.last(t).Text; !strings.Contains(got, "/next") {
		t.Fatalf("double answer reply = %q", got)
	}

	for _, a := range []string{"silla", "menú", "agua"} {
		b.handleMessage(ctx, command(1, "/next"))
		answer(b, 1, a)
	}
	b.handleMessage(ctx, command(1, "/next"))
	if got := api.last(t).Text; !strings.Contains(got, "4/5") || !strings.Contains(got, "80%") {
		t.Fatalf("summary = %q", got)
	}

	dp := store.Get(ctx, "tg:1", "deck-1")
	if dp.Confidence("café") != 100 || dp.Confidence("mesa") != 1 {
		t.Fatalf("progress = %+v", dp)
	}

	b.handleMessage(ctx, command(1, "/progress deck-1"))
	if got := api.last(t).Text; !strings.Contains(got, "4 of 5") {
		t.Fatalf("progress reply = %q", got)
	}

	// the practice again button restarts with only the missed word
	b.handleCallbackQuery(ctx, &tgbotapi.CallbackQuery{ID: "cb", Data: "practice:deck-1", Message: text(1, "")})
	if got := api.last(t).Text; !strings.Contains(got, "(1/1)") || !strings.Contains(got, "table") {
		t.Fatalf("restart prompt = %q", got)
	}
	if api.requests != 1 {
		t.Fatalf("callback answered %d times", api.requests)
	}
}

func TestPracticeLearnedDeckAndReset(t *testing.T) {
	b, api, store := newTestBot(t)
	ctx := context.Background()
	for _, w := range []string{"manzana", "naranja", "precio", "dinero", "bolsa"} {
		if _, err := store.Update(ctx, "tg:5", "deck-2", w, true); err != nil {
			t.Fatal(err)
		}
	}

	b.handleMessage(ctx, command(5, "/practice deck-2"))
	if got := api.last(t).Text; !strings.Contains(got, "learned every word") {
		t.Fatalf("reply = %q", got)
	}

	b.handleMessage(ctx, command(5, "/reset deck-2"))
	if got := api.last(t).Text; !strings.Contains(got, "reset") {
		t.Fatalf("reply = %q", got)
	}
	deck, _ := b.catalog.Deck("deck-2")
	if st := store.DeckStats(ctx, "tg:5", deck); st.LearnedCount != 0 {
		t.Fatalf("stats after reset = %+v", st)
	}
}

func TestUnknownInput(t *testing.T) {
	b, api, _ := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, command(3, "/practice deck-9"))
	if got := api.last(t).Text; !strings.Contains(got, "deck-9") {
		t.Fatalf("reply = %q", got)
	}
	b.handleMessage(ctx, command(3, "/practice"))
	if got := api.last(t).Text; !strings.Contains(got, "Which deck") {
		t.Fatalf("reply = %q", got)
	}
	b.handleMessage(ctx, text(3, "hola"))
	if got := api.last(t).Text; !strings.Contains(got, "/decks") {
		t.Fatalf("reply = %q", got)
	}
	b.handleMessage(ctx, command(3, "/dance"))
	if got := api.last(t).Text; !strings.HasPrefix(got, "Unknown command") {
		t.Fatalf("reply = %q", got)
	}
}

func TestDecksListing(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.handleMessage(context.Background(), command(2, "/decks"))
	msg := api.last(t)
	if !strings.Contains(msg.Text, "Coffee Shop Vocabulary (deck-1): 0/5 learned") {
		t.Fatalf("decks = %q", msg.Text)
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 3 {
		t.Fatalf("keyboard = %#v", msg.ReplyMarkup)
	}
}

func TestSendReminder(t *testing.T) {
	b, api, _ := newTestBot(t)
	if !b.CanNotify("tg:8") || b.CanNotify("browser") {
		t.Fatal("CanNotify must accept only telegram users")
	}

	deck := models.Deck{ID: "deck-1", Name: "Coffee Shop Vocabulary"}
	if err := b.SendReminder("tg:8", []scheduler.DeckReminder{{Deck: deck, Pending: 1}}); err != nil {
		t.Fatalf("SendReminder: %v", err)
	}
	msg := api.last(t)
	if msg.ChatID != 8 || !strings.Contains(msg.Text, "Coffee Shop Vocabulary: 1 word") {
		t.Fatalf("reminder = %+v", msg)
	}
	if err := b.SendReminder("browser", nil); err == nil {
		t.Fatal("expected error for non telegram user")
	}
}

func TestDropIdleSessions(t *testing.T) {
	b, _, _ := newTestBot(t)
	b.handleMessage(context.Background(), command(4, "/practice deck-1"))
	if b.practiceFor(4) == nil {
		t.Fatal("expected a practice session")
	}
	later := b.now().Add(b.config.SessionIdleTimeout + 1)
	b.now = func() time.Time { return later }
	b.dropIdleSessions()
	if b.practiceFor(4) != nil {
		t.Fatal("idle session was kept")
	}
}

func TestRemindCommand(t *testing.T) {
	b, api, store := newTestBot(t)
	ctx := context.Background()

	b.handleMessage(ctx, command(6, "/remind"))
	if got := api.last(t).Text; !strings.Contains(got, "not enabled") {
		t.Fatalf("reply = %q", got)
	}

	b.SetReminders(scheduler.New(b, store, b.catalog, 9, 10, nil))
	b.handleMessage(ctx, command(6, "/remind"))
	if got := api.last(t).Text; !strings.Contains(got, "Nothing left") {
		t.Fatalf("reply = %q", got)
	}

	if _, err := store.Update(ctx, "tg:6", "deck-1", "mesa", false); err != nil {
		t.Fatal(err)
	}
	b.handleMessage(ctx, command(6, "/remind"))
	msg := api.last(t)
	if msg.ChatID != 6 || !strings.Contains(msg.Text, "Coffee Shop Vocabulary: 5 words") {
		t.Fatalf("reminder = %q", msg.Text)
	}
}

func TestSendBeforeConnect(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	b := newBot(nil, cat, nil, nil)
	if b.CanNotify("tg:1") {
		t.Fatal("CanNotify must be false before connecting")
	}
	if err := b.SendReminder("tg:1", nil); err == nil {
		t.Fatal("expected error before connecting")
	}
	b.send(1, "dropped", nil)
}

func TestReminderRacesConnect(t *testing.T) {
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	b := newBot(nil, cat, nil, nil)
	api := &fakeAPI{}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.mu.Lock()
		b.api = api
		b.mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = b.SendReminder("tg:1", nil)
			b.send(1, "hi", nil)
		}
	}()
	wg.Wait()

	if err := b.SendReminder("tg:1", nil); err != nil {
		t.Fatalf("SendReminder after connect: %v", err)
	}
}
