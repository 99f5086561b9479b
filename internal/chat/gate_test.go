package chat

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store/sqlite"
)

func newGateStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec(sqlite.Schema)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func gateUser(t *testing.T, s store.Store, username string) *store.User {
	t.Helper()

	user, err := s.CreateUser(context.Background(), username, username+"@example.com", "hash")
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func TestGateAuthorizesWhenNoBlock(t *testing.T) {
	s := newGateStore(t)
	alice := gateUser(t, s, "alice")
	gateUser(t, s, "bob")

	gate := NewGate(s, s, BlockEitherDirection)

	recipient, err := gate.Authorize(context.Background(), alice, "bob")
	if err != nil {
		t.Fatalf("expected authorization, got %v", err)
	}
	if recipient.Username != "bob" {
		t.Fatalf("unexpected recipient: %+v", recipient)
	}
}

func TestGateRecipientNotFound(t *testing.T) {
	s := newGateStore(t)
	alice := gateUser(t, s, "alice")

	gate := NewGate(s, s, BlockEitherDirection)

	if _, err := gate.Authorize(context.Background(), alice, "nobody"); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}
}

func TestGateDeniesEitherDirection(t *testing.T) {
	s := newGateStore(t)
	ctx := context.Background()

	blocker := gateUser(t, s, "blocker")
	blocked := gateUser(t, s, "blocked")
	if _, err := s.CreateBlock(ctx, blocker.ID, blocked.ID); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}

	gate := NewGate(s, s, BlockEitherDirection)

	if _, err := gate.Authorize(ctx, blocked, "blocker"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked for blocked->blocker, got %v", err)
	}
	if _, err := gate.Authorize(ctx, blocker, "blocked"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked for blocker->blocked, got %v", err)
	}
}

func TestGateInitiatorOnlyPolicy(t *testing.T) {
	s := newGateStore(t)
	ctx := context.Background()

	blocker := gateUser(t, s, "blocker")
	blocked := gateUser(t, s, "blocked")
	if _, err := s.CreateBlock(ctx, blocker.ID, blocked.ID); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}

	gate := NewGate(s, s, BlockInitiatorOnly)

	// The blocked user cannot message the blocker.
	if _, err := gate.Authorize(ctx, blocked, "blocker"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}

	// The blocker still may message the user they blocked.
	if _, err := gate.Authorize(ctx, blocker, "blocked"); err != nil {
		t.Fatalf("expected authorization under initiator-only policy, got %v", err)
	}
}

func TestGateIgnoresUnrelatedBlocks(t *testing.T) {
	s := newGateStore(t)
	ctx := context.Background()

	alice := gateUser(t, s, "alice")
	gateUser(t, s, "bob")
	carol := gateUser(t, s, "carol")

	// Alice blocked carol; that must not affect alice -> bob.
	if _, err := s.CreateBlock(ctx, alice.ID, carol.ID); err != nil {
		t.Fatalf("CreateBlock: %v", err)
	}

	gate := NewGate(s, s, BlockEitherDirection)

	if _, err := gate.Authorize(ctx, alice, "bob"); err != nil {
		t.Fatalf("unrelated block must not deny, got %v", err)
	}
}
