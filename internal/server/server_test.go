package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/langflix/internal/catalog"
	"github.com/example/langflix/internal/progress"
	"github.com/example/langflix/pkg/models"
)

type memBackend struct {
	doc     models.UserProgressStore
	saveErr error
}

func (b *memBackend) Load(_ context.Context) (models.UserProgressStore, error) {
	out := make(models.UserProgressStore)
	for u, decks := range b.doc {
		for d, words := range decks {
			target := out.EnsureDeck(u, d)
			for k, v := range words {
				target[k] = v
			}
		}
	}
	return out, nil
}

func (b *memBackend) Save(_ context.Context, doc models.UserProgressStore) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.doc = doc
	return nil
}

type staticSubtitles map[string][]models.Subtitle

func (s staticSubtitles) Load(videoURL string) []models.Subtitle {
	if subs, ok := s[videoURL]; ok {
		return subs
	}
	return []models.Subtitle{}
}

type testServer struct {
	router  *gin.Engine
	backend *memBackend
	cookie  *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	backend := &memBackend{}
	store := progress.NewStore(backend, nil)
	subs := staticSubtitles{
		"https://www.youtube.com/embed/WMQW9MgEZws": {
			{StartTime: 0, EndTime: 5, Text: "A"},
			{StartTime: 3, EndTime: 8, Text: "B"},
		},
	}
	sessions := NewSessionStore()
	h := NewHandler(cat, store, subs, sessions, nil)
	router := NewRouter(RouterConfig{
		Handler:        h,
		Sessions:       sessions,
		AllowedOrigins: []string{"http://localhost:5173"},
	})
	return &testServer{router: router, backend: backend}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			s.cookie = c
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", rec.Code, want, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/health", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string]string](t, rec)["status"]; got != "ok" {
		t.Fatalf("status = %q", got)
	}
}

func TestSessionCookieIsMintedAndKept(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/videos", "")
	if s.cookie == nil || s.cookie.Value == "" {
		t.Fatal("expected a session cookie")
	}
	first := s.cookie.Value
	s.do(t, http.MethodGet, "/api/videos", "")
	if s.cookie.Value != first {
		t.Fatalf("session changed from %s to %s", first, s.cookie.Value)
	}
}

func TestVideos(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/videos", "")
	expectStatus(t, rec, http.StatusOK)
	if videos := decode[[]models.Video](t, rec); len(videos) != 3 {
		t.Fatalf("videos = %d, want 3", len(videos))
	}

	rec = s.do(t, http.MethodGet, "/api/videos/video-3", "")
	expectStatus(t, rec, http.StatusOK)
	detail := decode[videoDetail](t, rec)
	if detail.Deck == nil || detail.Deck.ID != "deck-3" || len(detail.Subtitles) != 2 {
		t.Fatalf("detail = %+v", detail)
	}

	rec = s.do(t, http.MethodGet, "/api/videos/video-1", "")
	expectStatus(t, rec, http.StatusOK)
	if detail := decode[videoDetail](t, rec); detail.Subtitles == nil {
		t.Fatal("subtitles must be an empty list, not null")
	}

	rec = s.do(t, http.MethodGet, "/api/videos/nope", "")
	expectStatus(t, rec, http.StatusNotFound)
	if code := decode[ErrorEnvelope](t, rec).Error.Code; code != "not_found" {
		t.Fatalf("code = %q", code)
	}
}

func TestCaption(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		t    string
		want string
	}{
		{"4", "B"},
		{"1", "A"},
		{"9", ""},
	}
	for _, tt := range tests {
		rec := s.do(t, http.MethodGet, "/api/videos/video-3/caption?t="+tt.t, "")
		expectStatus(t, rec, http.StatusOK)
		if got := decode[map[string]string](t, rec)["text"]; got != tt.want {
			t.Errorf("caption at %s = %q, want %q", tt.t, got, tt.want)
		}
	}

	rec := s.do(t, http.MethodGet, "/api/videos/video-3/caption?t=soon", "")
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestDeckQueueFollowsProgress(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/decks/deck-1", "")
	expectStatus(t, rec, http.StatusOK)
	deck := decode[deckResponse](t, rec)
	if len(deck.Words) != 5 || deck.State != "pending" || deck.Words[0].Confidence == nil {
		t.Fatalf("deck = %+v", deck)
	}

	rec = s.do(t, http.MethodPost, "/api/vocab/deck-1/progress", `{"spanish":"café","wasCorrect":true}`)
	expectStatus(t, rec, http.StatusOK)
	resp := decode[progressResponse](t, rec)
	if resp.Progress.Confidence != 100 || resp.Stats.LearnedCount != 1 || resp.Stats.PercentLearned != 20 {
		t.Fatalf("progress = %+v", resp)
	}

	for i := 0; i < 3; i++ {
		rec = s.do(t, http.MethodPost, "/api/vocab/deck-1/progress", `{"spanish":"mesa","wasCorrect":false}`)
		expectStatus(t, rec, http.StatusOK)
	}

	rec = s.do(t, http.MethodGet, "/api/decks/deck-1", "")
	deck = decode[deckResponse](t, rec)
	var order []string
	for _, w := range deck.Words {
		order = append(order, w.Key())
	}
	if strings.Join(order, ",") != "silla,menú,agua,mesa" {
		t.Fatalf("queue = %v", order)
	}
	if *deck.Words[3].Confidence != 3 || deck.Stats.PercentLearned != 20 {
		t.Fatalf("deck = %+v", deck)
	}

	rec = s.do(t, http.MethodDelete, "/api/vocab/deck-1/progress", "")
	expectStatus(t, rec, http.StatusOK)
	deck = decode[deckResponse](t, s.do(t, http.MethodGet, "/api/decks/deck-1", ""))
	if len(deck.Words) != 5 || deck.Stats.LearnedCount != 0 {
		t.Fatalf("after reset = %+v", deck)
	}
}

func TestDeckFullyLearned(t *testing.T) {
	s := newTestServer(t)
	for _, w := range []string{"manzana", "naranja", "precio", "dinero", "bolsa"} {
		expectStatus(t, s.do(t, http.MethodPost, "/api/vocab/deck-2/progress", `{"spanish":"`+w+`","wasCorrect":true}`), http.StatusOK)
	}
	deck := decode[deckResponse](t, s.do(t, http.MethodGet, "/api/decks/deck-2", ""))
	if len(deck.Words) != 0 || deck.State != "learned" || deck.Stats.PercentLearned != 100 {
		t.Fatalf("deck = %+v", deck)
	}
}

func TestProgressIsScopedBySession(t *testing.T) {
	a := newTestServer(t)
	expectStatus(t, a.do(t, http.MethodPost, "/api/vocab/deck-1/progress", `{"spanish":"café","wasCorrect":true}`), http.StatusOK)

	b := &testServer{router: a.router, backend: a.backend}
	deck := decode[deckResponse](t, b.do(t, http.MethodGet, "/api/decks/deck-1", ""))
	if len(deck.Words) != 5 {
		t.Fatalf("other session sees %d words, want 5", len(deck.Words))
	}
}

func TestUpdateProgressRejectsMalformedInput(t *testing.T) {
	s := newTestServer(t)
	bodies := []string{
		`{"wasCorrect":true}`,
		`{"spanish":"café"}`,
		`{"spanish":"café","wasCorrect":"yes"}`,
		`{"spanish":"","wasCorrect":true}`,
		`not json`,
	}
	for _, body := range bodies {
		rec := s.do(t, http.MethodPost, "/api/vocab/deck-1/progress", body)
		expectStatus(t, rec, http.StatusBadRequest)
		if code := decode[ErrorEnvelope](t, rec).Error.Code; code != "malformed_input" {
			t.Fatalf("body %s: code = %q", body, code)
		}
	}
	if len(s.backend.doc) != 0 {
		t.Fatalf("store touched: %+v", s.backend.doc)
	}
}

func TestUpdateProgressUnknownDeck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/vocab/deck-9/progress", `{"spanish":"café","wasCorrect":true}`)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestUpdateProgressUnknownWord(t *testing.T) {
	s := newTestServer(t)
	for _, w := range []string{"notaword", "Café", "perdón"} {
		rec := s.do(t, http.MethodPost, "/api/vocab/deck-1/progress", `{"spanish":"`+w+`","wasCorrect":true}`)
		expectStatus(t, rec, http.StatusNotFound)
		if code := decode[ErrorEnvelope](t, rec).Error.Code; code != "not_found" {
			t.Fatalf("%s: code = %q", w, code)
		}
	}
	if len(s.backend.doc) != 0 {
		t.Fatalf("store touched: %+v", s.backend.doc)
	}
}

func TestUpdateProgressStoresVariantUnderCanonicalKey(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/vocab/deck-3/progress", `{"spanish":"perdón","wasCorrect":true}`)
	expectStatus(t, rec, http.StatusOK)
	if resp := decode[progressResponse](t, rec); resp.Spanish != "lo siento" || resp.Stats.LearnedCount != 1 {
		t.Fatalf("progress = %+v", resp)
	}

	for _, words := range s.backend.doc {
		dp := words["deck-3"]
		if _, ok := dp["perdón"]; ok || dp["lo siento"].Confidence != 100 {
			t.Fatalf("deck-3 progress = %+v", dp)
		}
	}
}

func TestDeckStatsStayWithinDeck(t *testing.T) {
	s := newTestServer(t)
	expectStatus(t, s.do(t, http.MethodPost, "/api/vocab/deck-1/progress", `{"spanish":"café","wasCorrect":true}`), http.StatusOK)

	// entries left behind by words that are no longer part of the deck
	for _, words := range s.backend.doc {
		for i, key := range []string{"viejo", "antiguo", "otro", "más", "menos", "taza", "vaso"} {
			words["deck-1"][key] = models.WordProgress{Confidence: 100, LastSeen: time.Unix(int64(i), 0)}
		}
	}

	deck := decode[deckResponse](t, s.do(t, http.MethodGet, "/api/decks/deck-1", ""))
	want := models.DeckStats{LearnedCount: 1, TotalCount: 5, PercentLearned: 20}
	if deck.Stats != want || deck.State != "pending" || len(deck.Words) != 4 {
		t.Fatalf("deck = %+v", deck)
	}

	expectStatus(t, s.do(t, http.MethodPost, "/api/vocab/deck-1", ""), http.StatusOK)
	saved := decode[[]models.DeckSummary](t, s.do(t, http.MethodGet, "/api/vocab", ""))
	if len(saved) != 1 || saved[0].DeckStats != want {
		t.Fatalf("saved = %+v", saved)
	}

	rec := s.do(t, http.MethodPost, "/api/vocab/deck-1/progress", `{"spanish":"mesa","wasCorrect":true}`)
	expectStatus(t, rec, http.StatusOK)
	stats := decode[progressResponse](t, rec).Stats
	if stats.LearnedCount > stats.TotalCount || stats.PercentLearned < 0 || stats.PercentLearned > 100 {
		t.Fatalf("stats out of range: %+v", stats)
	}
	if stats.LearnedCount != 2 || stats.PercentLearned != 40 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestUpdateProgressWriteFailure(t *testing.T) {
	s := newTestServer(t)
	s.backend.saveErr = errors.New("disk full")
	rec := s.do(t, http.MethodPost, "/api/vocab/deck-1/progress", `{"spanish":"café","wasCorrect":true}`)
	expectStatus(t, rec, http.StatusInternalServerError)
	if code := decode[ErrorEnvelope](t, rec).Error.Code; code != "persistence_write_failed" {
		t.Fatalf("code = %q", code)
	}
}

func TestSavedDecks(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/vocab", "")
	expectStatus(t, rec, http.StatusOK)
	if saved := decode[[]models.DeckSummary](t, rec); len(saved) != 0 {
		t.Fatalf("saved = %+v", saved)
	}

	expectStatus(t, s.do(t, http.MethodPost, "/api/vocab/deck-3", ""), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodPost, "/api/vocab/deck-3", ""), http.StatusOK)
	expectStatus(t, s.do(t, http.MethodPost, "/api/vocab/deck-9", ""), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodPost, "/api/vocab/deck-3/progress", `{"spanish":"mono","wasCorrect":true}`), http.StatusOK)

	saved := decode[[]models.DeckSummary](t, s.do(t, http.MethodGet, "/api/vocab", ""))
	if len(saved) != 1 || saved[0].ID != "deck-3" {
		t.Fatalf("saved = %+v", saved)
	}
	if saved[0].LearnedCount != 1 || saved[0].TotalCount != 7 || saved[0].PercentLearned != 14 {
		t.Fatalf("stats = %+v", saved[0].DeckStats)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/vocab/deck-1/progress", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin = %q", got)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.SaveDeck("s1", "deck-1")
	store.SaveDeck("s1", "deck-2")
	store.SaveDeck("s1", "deck-1")
	if got := store.SavedDecks("s1"); len(got) != 2 || got[0] != "deck-1" || got[1] != "deck-2" {
		t.Fatalf("saved = %v", got)
	}

	now = now.Add(SessionTTL + time.Minute)
	if got := store.SavedDecks("s1"); len(got) != 0 {
		t.Fatalf("expired session still has %v", got)
	}
	if n := store.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
}
