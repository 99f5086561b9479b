package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/auth"
	"github.com/Second-Book/textbook-marketplace-backend/internal/chat"
	"github.com/Second-Book/textbook-marketplace-backend/internal/config"
	"github.com/Second-Book/textbook-marketplace-backend/internal/service/blocks"
	"github.com/Second-Book/textbook-marketplace-backend/internal/service/textbooks"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

// NewServer builds the HTTP server: REST API plus the chat websocket endpoint.
func NewServer(registry chat.Registry, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(logger))

	apiHandlers := NewAPIHandlers(authService, st, logger)
	textbookHandlers := NewTextbookHandlers(textbooks.New(st, st), logger)
	blockHandlers := NewBlockHandlers(blocks.New(st, st), logger)
	messageHandlers := NewMessageHandlers(st, logger)
	wsHandler := NewWSHandler(registry, authService, st, logger)

	r.GET("/health", healthHandler)

	api := r.Group("/api")
	{
		api.POST("/signup", apiHandlers.Signup)
		api.POST("/login", apiHandlers.Login)
		api.GET("/textbooks", textbookHandlers.List)
		api.GET("/textbooks/:id", textbookHandlers.Get)

		authorized := api.Group("")
		authorized.Use(AuthMiddleware(authService, logger))
		{
			authorized.GET("/users/me", apiHandlers.Me)
			authorized.POST("/textbooks", textbookHandlers.Create)
			authorized.POST("/users/:username/block", blockHandlers.Block)
			authorized.DELETE("/users/:username/block", blockHandlers.Unblock)
			authorized.GET("/messages", messageHandlers.List)
		}
	}

	r.GET("/ws/chat/:room", wsHandler.Serve)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	fmt.Fprint(c.Writer, "ok")
}
