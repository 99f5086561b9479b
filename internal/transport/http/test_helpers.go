package http

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Second-Book/textbook-marketplace-backend/internal/auth"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(sqlite.Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// createTestAuthService creates an auth service for testing.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	return auth.NewService(st, jwtConfig)
}

func testLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}
