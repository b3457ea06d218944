// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite — a pure Go translation of SQLite, so the
// binary cross-compiles without CGo. The database is a single file (or
// ":memory:" in tests), which keeps deployments to one process with no
// external database server.
//
// Schema notes:
//   - users carries the identity record: credentials plus profile attributes.
//     Username and email both have UNIQUE constraints; violation is surfaced
//     as apperror.Conflict.
//   - friendships holds one row per edge, keyed by the unordered pair
//     (user_lo < user_hi enforced by CHECK). A single row per edge makes the
//     symmetry, no-self-edge, and no-duplicate-edge invariants properties of
//     the schema: there is no second write that could be lost halfway.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/friendcircle/internal/apperror"

	sqlite3 "modernc.org/sqlite"
)

// SQLite extended result codes for UNIQUE and PRIMARY KEY constraint
// violations. modernc.org/sqlite reports these through sqlite3.Error.
const (
	codeConstraintUnique     = 2067
	codeConstraintPrimaryKey = 1555
)

// DB wraps the sql.DB pool and implements repository.UserRepository and
// repository.FriendshipRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection; pin the pool to one so
	// every query sees the same database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress; without it
	// SQLite locks the whole file per write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default; friendships references users(id).
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Always defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			date_of_birth DATETIME NOT NULL,
			gender        TEXT NOT NULL,
			location      TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			hobbies       TEXT NOT NULL DEFAULT '[]',
			profession    TEXT NOT NULL DEFAULT '',
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// user_lo < user_hi rules out self-edges and gives every unordered pair
	// exactly one possible row; the primary key rules out duplicates.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS friendships (
			user_lo    TEXT NOT NULL REFERENCES users(id),
			user_hi    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_lo, user_hi),
			CHECK (user_lo < user_hi)
		);
		CREATE INDEX IF NOT EXISTS idx_friendships_hi ON friendships(user_hi);
	`)
	if err != nil {
		return fmt.Errorf("creating friendships table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure from the driver.
func isUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	if !errors.As(err, &serr) {
		return false
	}
	code := serr.Code()
	return code == codeConstraintUnique || code == codeConstraintPrimaryKey
}

// mapErr translates context expiry into the retryable Unavailable category;
// every other error passes through for the caller to wrap.
func mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.Unavailable("store operation timed out")
	}
	return err
}
