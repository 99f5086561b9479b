package textbooks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

// Common errors for textbook operations.
var (
	ErrInvalidListing = errors.New("invalid listing")
	ErrSellerNotFound = errors.New("seller not found")
)

// Service provides textbook listing business logic.
type Service struct {
	users     store.UserStore
	textbooks store.TextbookStore
}

// New creates a new textbook service.
func New(users store.UserStore, textbookStore store.TextbookStore) *Service {
	return &Service{
		users:     users,
		textbooks: textbookStore,
	}
}

// Create validates and persists a new listing owned by the seller.
func (s *Service) Create(ctx context.Context, sellerID int64, tb *store.Textbook) (*store.Textbook, error) {
	tb.Title = strings.TrimSpace(tb.Title)
	tb.Author = strings.TrimSpace(tb.Author)
	if tb.Title == "" || tb.Author == "" || tb.PriceCents < 0 {
		return nil, ErrInvalidListing
	}
	if tb.Condition == "" {
		tb.Condition = store.ConditionUsedGood
	}
	tb.SellerID = sellerID

	created, err := s.textbooks.CreateTextbook(ctx, tb)
	if err != nil {
		return nil, fmt.Errorf("create textbook: %w", err)
	}
	return created, nil
}

// Get retrieves one listing.
func (s *Service) Get(ctx context.Context, id int64) (*store.Textbook, error) {
	return s.textbooks.GetTextbookByID(ctx, id)
}

// List returns listings, optionally narrowed to one seller's username.
func (s *Service) List(ctx context.Context, sellerUsername string) ([]*store.Textbook, error) {
	var sellerID *int64
	if sellerUsername != "" {
		seller, err := s.users.GetUserByUsername(ctx, sellerUsername)
		if err != nil {
			return nil, ErrSellerNotFound
		}
		sellerID = &seller.ID
	}

	return s.textbooks.ListTextbooks(ctx, sellerID)
}
