package server

import (
	"github.com/gin-gonic/gin"

	"github.com/example/langflix/internal/logger"
)

type RouterConfig struct {
	Handler        *Handler
	Sessions       *SessionStore
	Logger         *logger.Logger
	AllowedOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(cfg.Logger))
	r.Use(CORS(cfg.AllowedOrigins))

	api := r.Group("/api")
	api.GET("/health", cfg.Handler.Health)

	api.Use(Session(cfg.Sessions))
	{
		api.GET("/videos", cfg.Handler.ListVideos)
		api.GET("/videos/:id", cfg.Handler.GetVideo)
		api.GET("/videos/:id/caption", cfg.Handler.GetCaption)

		api.GET("/decks/:id", cfg.Handler.GetDeck)

		api.GET("/vocab", cfg.Handler.ListVocab)
		api.POST("/vocab/:deckId", cfg.Handler.SaveDeck)
		api.POST("/vocab/:deckId/progress", cfg.Handler.UpdateProgress)
		api.DELETE("/vocab/:deckId/progress", cfg.Handler.ResetProgress)
	}

	return r
}
