package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/langflix/internal/catalog"
	"github.com/example/langflix/internal/logger"
	"github.com/example/langflix/internal/progress"
	"github.com/example/langflix/internal/review"
	"github.com/example/langflix/internal/subtitles"
	"github.com/example/langflix/pkg/models"
)

// Catalog is the read-only source of videos and decks
type Catalog interface {
	Videos() []models.Video
	Video(id string) (models.Video, error)
	Deck(id string) (models.Deck, error)
}

// ProgressStore is the confidence store as seen by the handlers
type ProgressStore interface {
	Get(ctx context.Context, userID, deckID string) models.DeckProgressMap
	Update(ctx context.Context, userID, deckID, wordKey string, wasCorrect bool) (models.WordProgress, error)
	Reset(ctx context.Context, userID, deckID string) error
	DeckStats(ctx context.Context, userID string, deck models.Deck) models.DeckStats
}

// SubtitleSource returns the subtitle track of a video URL
type SubtitleSource interface {
	Load(videoURL string) []models.Subtitle
}

type Handler struct {
	catalog   Catalog
	store     ProgressStore
	subtitles SubtitleSource
	sessions  *SessionStore
	log       *logger.Logger
}

func NewHandler(catalog Catalog, store ProgressStore, subs SubtitleSource, sessions *SessionStore, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		catalog:   catalog,
		store:     store,
		subtitles: subs,
		sessions:  sessions,
		log:       log.With("component", "server.Handler"),
	}
}

type videoDetail struct {
	models.Video
	Deck      *models.Deck      `json:"deck"`
	Subtitles []models.Subtitle `json:"subtitles"`
}

type deckResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Words      []models.Word     `json:"words"`
	State      review.QueueState `json:"state"`
	TotalWords int               `json:"totalWords"`
	Stats      models.DeckStats  `json:"stats"`
}

type progressRequest struct {
	Spanish    string `json:"spanish" binding:"required"`
	WasCorrect *bool  `json:"wasCorrect" binding:"required"`
}

type progressResponse struct {
	Spanish  string              `json:"spanish"`
	Progress models.WordProgress `json:"progress"`
	Stats    models.DeckStats    `json:"stats"`
}

// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}

// GET /api/videos
func (h *Handler) ListVideos(c *gin.Context) {
	RespondOK(c, h.catalog.Videos())
}

// GET /api/videos/:id
func (h *Handler) GetVideo(c *gin.Context) {
	video, err := h.catalog.Video(c.Param("id"))
	if err != nil {
		RespondErr(c, err)
		return
	}

	detail := videoDetail{Video: video, Subtitles: h.subtitles.Load(video.VideoURL)}
	if deck, err := h.catalog.Deck(video.DeckID); err == nil {
		detail.Deck = &deck
	} else {
		h.log.Warn("Video references unknown deck", "video_id", video.ID, "deck_id", video.DeckID)
	}
	RespondOK(c, detail)
}

// GET /api/videos/:id/caption?t=<seconds>
func (h *Handler) GetCaption(c *gin.Context) {
	video, err := h.catalog.Video(c.Param("id"))
	if err != nil {
		RespondErr(c, err)
		return
	}
	t, err := strconv.ParseFloat(c.Query("t"), 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", fmt.Errorf("t must be a number of seconds"))
		return
	}
	RespondOK(c, gin.H{"text": subtitles.ActiveLine(h.subtitles.Load(video.VideoURL), t)})
}

// GET /api/decks/:id
func (h *Handler) GetDeck(c *gin.Context) {
	deck, err := h.catalog.Deck(c.Param("id"))
	if err != nil {
		RespondErr(c, err)
		return
	}

	deckProgress := h.store.Get(c.Request.Context(), SessionID(c), deck.ID)
	queue := review.BuildQueue(deck.Words, deckProgress)
	RespondOK(c, deckResponse{
		ID:         deck.ID,
		Name:       deck.Name,
		Words:      queue,
		State:      review.State(deck.Words, queue),
		TotalWords: len(deck.Words),
		Stats:      progress.DeckStatsFor(deckProgress, deck.Words),
	})
}

// GET /api/vocab
func (h *Handler) ListVocab(c *gin.Context) {
	userID := SessionID(c)
	saved := h.sessions.SavedDecks(userID)
	out := make([]models.DeckSummary, 0, len(saved))
	for _, id := range saved {
		deck, err := h.catalog.Deck(id)
		if err != nil {
			continue
		}
		out = append(out, models.DeckSummary{
			Deck:      deck,
			DeckStats: h.store.DeckStats(c.Request.Context(), userID, deck),
		})
	}
	RespondOK(c, out)
}

// POST /api/vocab/:deckId
func (h *Handler) SaveDeck(c *gin.Context) {
	deck, err := h.catalog.Deck(c.Param("deckId"))
	if err != nil {
		RespondErr(c, err)
		return
	}
	saved := h.sessions.SaveDeck(SessionID(c), deck.ID)
	RespondOK(c, gin.H{
		"success":      true,
		"deck":         deck,
		"savedDeckIds": saved,
	})
}

// POST /api/vocab/:deckId/progress
func (h *Handler) UpdateProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_input", fmt.Errorf("body must contain spanish and a boolean wasCorrect"))
		return
	}
	deck, err := h.catalog.Deck(c.Param("deckId"))
	if err != nil {
		RespondErr(c, err)
		return
	}
	// Variants are stored under the canonical translation
	word, ok := deck.FindWord(req.Spanish)
	if !ok {
		RespondErr(c, fmt.Errorf("word %q in deck %s: %w", req.Spanish, deck.ID, catalog.ErrNotFound))
		return
	}

	ctx := c.Request.Context()
	userID := SessionID(c)
	wp, err := h.store.Update(ctx, userID, deck.ID, word.Key(), *req.WasCorrect)
	if err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, progressResponse{
		Spanish:  word.Key(),
		Progress: wp,
		Stats:    h.store.DeckStats(ctx, userID, deck),
	})
}

// DELETE /api/vocab/:deckId/progress
func (h *Handler) ResetProgress(c *gin.Context) {
	deck, err := h.catalog.Deck(c.Param("deckId"))
	if err != nil {
		RespondErr(c, err)
		return
	}
	if err := h.store.Reset(c.Request.Context(), SessionID(c), deck.ID); err != nil {
		RespondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
