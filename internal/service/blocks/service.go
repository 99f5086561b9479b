package blocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

// Common errors for block operations.
var (
	ErrCannotBlockSelf = errors.New("cannot block yourself")
	ErrAlreadyBlocked  = errors.New("user is already blocked")
	ErrNotBlocked      = errors.New("user is not blocked")
	ErrUserNotFound    = errors.New("user not found")
)

// Service provides block management business logic. The chat gate only reads
// block relations; this service is the write side behind the REST endpoints.
type Service struct {
	users  store.UserStore
	blocks store.BlockStore
}

// New creates a new block service.
func New(users store.UserStore, blockStore store.BlockStore) *Service {
	return &Service{
		users:  users,
		blocks: blockStore,
	}
}

// Block records that the initiator blocked the named user.
func (s *Service) Block(ctx context.Context, initiatorID int64, username string) (*store.User, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if target.ID == initiatorID {
		return nil, ErrCannotBlockSelf
	}

	exists, err := s.blocks.HasBlock(ctx, initiatorID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("check block: %w", err)
	}
	if exists {
		return target, ErrAlreadyBlocked
	}

	if _, err := s.blocks.CreateBlock(ctx, initiatorID, target.ID); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}

	return target, nil
}

// Unblock removes the initiator's block on the named user.
func (s *Service) Unblock(ctx context.Context, initiatorID int64, username string) (*store.User, error) {
	target, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrUserNotFound
	}

	removed, err := s.blocks.DeleteBlock(ctx, initiatorID, target.ID)
	if err != nil {
		return nil, fmt.Errorf("delete block: %w", err)
	}
	if removed == 0 {
		return target, ErrNotBlocked
	}

	return target, nil
}
