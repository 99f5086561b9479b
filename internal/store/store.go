package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// User represents a marketplace account.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Telephone    string
	IsSeller     bool
	CreatedAt    time.Time
}

// TextbookCondition describes the physical state of a listed book.
type TextbookCondition string

const (
	ConditionNew           TextbookCondition = "New"
	ConditionUsedExcellent TextbookCondition = "Used - Excellent"
	ConditionUsedGood      TextbookCondition = "Used - Good"
	ConditionUsedFair      TextbookCondition = "Used - Fair"
)

// Textbook represents a listing on the marketplace.
type Textbook struct {
	ID          int64
	Title       string
	Author      string
	SchoolClass string
	Publisher   string
	Subject     string
	PriceCents  int64
	Condition   TextbookCondition
	Description string
	SellerID    int64
	CreatedAt   time.Time
}

// Block is an asymmetric relation: initiator has blocked the other user.
// Unique per ordered (initiator, blocked) pair.
type Block struct {
	ID            int64
	InitiatorID   int64
	BlockedUserID int64
	CreatedAt     time.Time
}

// Message is a persisted chat message. Insert-only; never updated or deleted.
type Message struct {
	ID          int64
	SenderID    int64
	RecipientID int64
	Room        string
	Text        string
	SentAt      time.Time
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// TextbookStore handles textbook listing persistence.
type TextbookStore interface {
	// CreateTextbook persists a new listing and returns it with ID assigned.
	CreateTextbook(ctx context.Context, tb *Textbook) (*Textbook, error)

	// GetTextbookByID retrieves a listing by ID.
	GetTextbookByID(ctx context.Context, id int64) (*Textbook, error)

	// ListTextbooks lists all listings, newest first. When sellerID is non-nil
	// only that seller's listings are returned.
	ListTextbooks(ctx context.Context, sellerID *int64) ([]*Textbook, error)
}

// BlockStore handles block relation persistence.
type BlockStore interface {
	// CreateBlock records that initiator blocked the other user.
	CreateBlock(ctx context.Context, initiatorID, blockedUserID int64) (*Block, error)

	// DeleteBlock removes the (initiator, blocked) relation. Returns the number
	// of rows removed so callers can distinguish "was not blocked".
	DeleteBlock(ctx context.Context, initiatorID, blockedUserID int64) (int64, error)

	// HasBlock reports whether the exact ordered (initiator, blocked) pair exists.
	HasBlock(ctx context.Context, initiatorID, blockedUserID int64) (bool, error)

	// ListBlocksInvolving returns every block where the user is initiator or target.
	ListBlocksInvolving(ctx context.Context, userID int64) ([]*Block, error)
}

// MessageStore handles chat message persistence.
type MessageStore interface {
	// CreateMessage persists a message and returns it with ID assigned.
	CreateMessage(ctx context.Context, msg *Message) (*Message, error)

	// ListMessagesForUser returns all messages where the user is sender or
	// recipient, oldest first.
	ListMessagesForUser(ctx context.Context, userID int64) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	TextbookStore
	BlockStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
