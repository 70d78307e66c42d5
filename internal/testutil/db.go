// Package testutil provides shared test fixtures.  Tests run against
// SQLite so the suite needs no MySQL server; the repository SQL sticks
// to the portable subset both engines accept.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// Mirrors schema.sql.  AUTOINCREMENT keeps row ids unique across deletes,
// matching MySQL AUTO_INCREMENT semantics closely enough for tests.
const testSchema = `
CREATE TABLE users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL,
    is_active     INTEGER NOT NULL DEFAULT 1,
    created_at    DATETIME NOT NULL,
    updated_at    DATETIME NOT NULL
);
CREATE TABLE refresh_tokens (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    token_hash TEXT NOT NULL UNIQUE,
    expires_at DATETIME NOT NULL,
    revoked_at DATETIME,
    created_at DATETIME NOT NULL
);
CREATE TABLE books (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    author      TEXT NOT NULL DEFAULT '',
    count       INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);
CREATE TABLE categories (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL,
    updated_at  DATETIME NOT NULL
);
CREATE TABLE book_categories (
    book_id     INTEGER NOT NULL REFERENCES books (id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL REFERENCES categories (id) ON DELETE CASCADE,
    PRIMARY KEY (book_id, category_id)
);
CREATE TABLE borrow_records (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id     INTEGER NOT NULL REFERENCES users (id),
    book_id     INTEGER NOT NULL REFERENCES books (id),
    borrowed_at DATETIME NOT NULL,
    returned_at DATETIME,
    action      TEXT NOT NULL
);
CREATE INDEX idx_borrow_records_user_book ON borrow_records (user_id, book_id, returned_at);
CREATE TABLE ratings (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL REFERENCES users (id),
    book_id    INTEGER NOT NULL REFERENCES books (id),
    value      INTEGER NOT NULL CHECK (value BETWEEN 1 AND 5),
    created_at DATETIME NOT NULL
);
`

// OpenTestDB opens a file-backed SQLite database seeded with the app
// schema.  _txlock=immediate makes BEGIN take the write lock up front
// so concurrent borrow transactions serialize instead of deadlocking,
// which mirrors the row locking the production database provides.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "library.db")
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=10000&_txlock=immediate&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}
