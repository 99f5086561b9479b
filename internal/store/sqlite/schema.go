package sqlite

// Schema is the full database schema. Applied on startup; every statement is
// idempotent so re-running against an existing database is safe.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT,
	password_hash TEXT NOT NULL,
	telephone     TEXT,
	is_seller     BOOLEAN NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS textbooks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL,
	author       TEXT NOT NULL,
	school_class TEXT NOT NULL DEFAULT '',
	publisher    TEXT NOT NULL DEFAULT '',
	subject      TEXT NOT NULL DEFAULT '',
	price_cents  INTEGER NOT NULL DEFAULT 0,
	condition    TEXT NOT NULL DEFAULT 'Used - Good',
	description  TEXT NOT NULL DEFAULT '',
	seller_id    INTEGER NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (seller_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS blocks (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	initiator_id    INTEGER NOT NULL,
	blocked_user_id INTEGER NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (initiator_id, blocked_user_id),
	FOREIGN KEY (initiator_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY (blocked_user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id    INTEGER NOT NULL,
	recipient_id INTEGER NOT NULL,
	room         TEXT NOT NULL,
	text         TEXT NOT NULL,
	sent_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sender_id) REFERENCES users(id) ON DELETE CASCADE,
	FOREIGN KEY (recipient_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_textbooks_seller ON textbooks(seller_id);
CREATE INDEX IF NOT EXISTS idx_blocks_initiator ON blocks(initiator_id);
CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks(blocked_user_id);
CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id, sent_at);
CREATE INDEX IF NOT EXISTS idx_messages_recipient ON messages(recipient_id, sent_at);
`
