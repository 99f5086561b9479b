package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/auth"
	"github.com/Second-Book/textbook-marketplace-backend/internal/chat"
	"github.com/Second-Book/textbook-marketplace-backend/internal/config"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store/sqlite"
	transporthttp "github.com/Second-Book/textbook-marketplace-backend/internal/transport/http"
)

// App wires together the chat registry, stores, and the transport layer.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	store           store.Store
	rdb             *redis.Client
	cancelRegistry  context.CancelFunc
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	// A single process runs on the in-memory hub alone; setting redis_addr
	// bridges room broadcasts across processes.
	hub := chat.NewHub()
	var registry chat.Registry = hub
	var rdb *redis.Client
	registryCtx, cancelRegistry := context.WithCancel(context.Background())
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		registry = chat.NewRedisRegistry(registryCtx, rdb, hub, *logger)
		logger.Info().Str("redis_addr", cfg.RedisAddr).Msg("redis registry enabled")
	}

	server := transporthttp.NewServer(registry, authService, st, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		store:           st,
		rdb:             rdb,
		cancelRegistry:  cancelRegistry,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	a.cancelRegistry()

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close redis client")
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
