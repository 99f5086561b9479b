package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a schema without touching the filesystem.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, passwordHash string) (*store.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, username, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, username, COALESCE(email, ''), password_hash, COALESCE(telephone, ''), is_seller, created_at
		FROM users
		WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername retrieves a user by username.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT id, username, COALESCE(email, ''), password_hash, COALESCE(telephone, ''), is_seller, created_at
		FROM users
		WHERE username = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*store.User, error) {
	var user store.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Telephone,
		&user.IsSeller,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// ==== TextbookStore implementation ====

// CreateTextbook persists a new listing and returns it with ID assigned.
func (s *SQLiteStore) CreateTextbook(ctx context.Context, tb *store.Textbook) (*store.Textbook, error) {
	query := `
		INSERT INTO textbooks (title, author, school_class, publisher, subject, price_cents, condition, description, seller_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		tb.Title, tb.Author, tb.SchoolClass, tb.Publisher, tb.Subject,
		tb.PriceCents, tb.Condition, tb.Description, tb.SellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert textbook: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetTextbookByID(ctx, id)
}

// GetTextbookByID retrieves a listing by ID.
func (s *SQLiteStore) GetTextbookByID(ctx context.Context, id int64) (*store.Textbook, error) {
	query := `
		SELECT id, title, author, school_class, publisher, subject, price_cents, condition, description, seller_id, created_at
		FROM textbooks
		WHERE id = ?
	`
	var tb store.Textbook
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&tb.ID,
		&tb.Title,
		&tb.Author,
		&tb.SchoolClass,
		&tb.Publisher,
		&tb.Subject,
		&tb.PriceCents,
		&tb.Condition,
		&tb.Description,
		&tb.SellerID,
		&tb.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("textbook: %w", store.ErrNotFound)
		}
		return nil, fmt.Errorf("query textbook: %w", err)
	}
	return &tb, nil
}

// ListTextbooks lists all listings, newest first, optionally scoped to one seller.
func (s *SQLiteStore) ListTextbooks(ctx context.Context, sellerID *int64) ([]*store.Textbook, error) {
	query := `
		SELECT id, title, author, school_class, publisher, subject, price_cents, condition, description, seller_id, created_at
		FROM textbooks
	`
	args := []any{}
	if sellerID != nil {
		query += ` WHERE seller_id = ?`
		args = append(args, *sellerID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query textbooks: %w", err)
	}
	defer rows.Close()

	textbooks := make([]*store.Textbook, 0)
	for rows.Next() {
		var tb store.Textbook
		if err := rows.Scan(
			&tb.ID,
			&tb.Title,
			&tb.Author,
			&tb.SchoolClass,
			&tb.Publisher,
			&tb.Subject,
			&tb.PriceCents,
			&tb.Condition,
			&tb.Description,
			&tb.SellerID,
			&tb.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan textbook: %w", err)
		}
		textbooks = append(textbooks, &tb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate textbooks: %w", err)
	}

	return textbooks, nil
}

// ==== BlockStore implementation ====

// CreateBlock records that initiator blocked the other user.
func (s *SQLiteStore) CreateBlock(ctx context.Context, initiatorID, blockedUserID int64) (*store.Block, error) {
	query := `
		INSERT INTO blocks (initiator_id, blocked_user_id)
		VALUES (?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, initiatorID, blockedUserID)
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	var block store.Block
	row := s.db.QueryRowContext(ctx,
		`SELECT id, initiator_id, blocked_user_id, created_at FROM blocks WHERE id = ?`, id)
	if err := row.Scan(&block.ID, &block.InitiatorID, &block.BlockedUserID, &block.CreatedAt); err != nil {
		return nil, fmt.Errorf("query block: %w", err)
	}
	return &block, nil
}

// DeleteBlock removes the (initiator, blocked) relation.
func (s *SQLiteStore) DeleteBlock(ctx context.Context, initiatorID, blockedUserID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM blocks WHERE initiator_id = ? AND blocked_user_id = ?`,
		initiatorID, blockedUserID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete block: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// HasBlock reports whether the exact ordered (initiator, blocked) pair exists.
func (s *SQLiteStore) HasBlock(ctx context.Context, initiatorID, blockedUserID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM blocks WHERE initiator_id = ? AND blocked_user_id = ?`,
		initiatorID, blockedUserID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query block: %w", err)
	}
	return count > 0, nil
}

// ListBlocksInvolving returns every block where the user is initiator or target.
func (s *SQLiteStore) ListBlocksInvolving(ctx context.Context, userID int64) ([]*store.Block, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, initiator_id, blocked_user_id, created_at
		FROM blocks
		WHERE initiator_id = ? OR blocked_user_id = ?
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	blocks := make([]*store.Block, 0)
	for rows.Next() {
		var block store.Block
		if err := rows.Scan(&block.ID, &block.InitiatorID, &block.BlockedUserID, &block.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, &block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}

	return blocks, nil
}

// ==== MessageStore implementation ====

// CreateMessage persists a message and returns it with ID assigned.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) (*store.Message, error) {
	query := `
		INSERT INTO messages (sender_id, recipient_id, room, text, sent_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		msg.SenderID, msg.RecipientID, msg.Room, msg.Text, msg.SentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	saved := *msg
	saved.ID = id
	return &saved, nil
}

// ListMessagesForUser returns all messages where the user is sender or recipient.
func (s *SQLiteStore) ListMessagesForUser(ctx context.Context, userID int64) ([]*store.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, recipient_id, room, text, sent_at
		FROM messages
		WHERE sender_id = ? OR recipient_id = ?
		ORDER BY sent_at ASC, id ASC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0)
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Room, &msg.Text, &msg.SentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}
