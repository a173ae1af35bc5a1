package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to
	// another user.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("already exists")
	// ErrLocked is returned when mutating a completed accomplishment (or its
	// tasks), or adding to a completed goal.
	ErrLocked = errors.New("already completed (locked)")
	// ErrAlreadyCompleted is returned when completing something twice.
	ErrAlreadyCompleted = errors.New("already completed")
	// ErrNotReady is returned when a completion gate is not satisfied.
	ErrNotReady = errors.New("not all tasks completed yet")
)

// DefaultBusyTimeoutMS is how long a writer waits for the database lock.
const DefaultBusyTimeoutMS = 5000

// Store provides access to the trophy database.
type Store struct {
	db *sql.DB
}

// querier is satisfied by *sql.DB and *sql.Conn so helpers can run inside
// or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (or creates) the SQLite database at the given path.
func New(dbPath string) (*Store, error) {
	return Open(dbPath, DefaultBusyTimeoutMS)
}

// Open is New with an explicit busy timeout.
func Open(dbPath string, busyTimeoutMS int) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = DefaultBusyTimeoutMS
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_time_format=sqlite",
		dbPath, busyTimeoutMS)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		username       TEXT PRIMARY KEY,
		password_hash  TEXT NOT NULL DEFAULT '',
		created_at     DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token_hash  TEXT PRIMARY KEY,
		username    TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
		created_at  DATETIME NOT NULL,
		expires_at  DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS goals (
		goal_id      INTEGER PRIMARY KEY AUTOINCREMENT,
		username     TEXT NOT NULL REFERENCES users(username) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		description  TEXT DEFAULT '',
		created_at   DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS accomplishments (
		accomplishment_id  INTEGER PRIMARY KEY AUTOINCREMENT,
		goal_id            INTEGER NOT NULL REFERENCES goals(goal_id) ON DELETE CASCADE,
		title              TEXT NOT NULL,
		description        TEXT DEFAULT '',
		created_at         DATETIME NOT NULL,
		is_completed       INTEGER NOT NULL DEFAULT 0,
		completed_at       DATETIME
	);

	CREATE TABLE IF NOT EXISTS tasks (
		task_id            INTEGER PRIMARY KEY AUTOINCREMENT,
		accomplishment_id  INTEGER NOT NULL REFERENCES accomplishments(accomplishment_id) ON DELETE CASCADE,
		title              TEXT NOT NULL,
		repeat_type        TEXT NOT NULL,
		target_count       INTEGER NOT NULL DEFAULT 1,
		total_required     INTEGER NOT NULL,
		start_date         TEXT NOT NULL,
		end_date           TEXT,
		created_at         DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS task_completions (
		completion_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id         INTEGER NOT NULL REFERENCES tasks(task_id) ON DELETE CASCADE,
		completed_date  TEXT NOT NULL,
		completed_at    DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_completions_task_date ON task_completions(task_id, completed_date);
	CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before goals could be completed.
	if err := s.addColumnIfMissing("goals", "is_completed", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}
	if err := s.addColumnIfMissing("goals", "completed_at", "DATETIME"); err != nil {
		return err
	}

	return nil
}

// addColumnIfMissing adds a column to a table if it doesn't exist yet.
func (s *Store) addColumnIfMissing(table, column, colDef string) error {
	rows, err := s.db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue *string
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	rows.Close()

	if _, err := s.db.Exec("ALTER TABLE " + table + " ADD COLUMN " + column + " " + colDef); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// withImmediate runs fn inside a BEGIN IMMEDIATE transaction on a dedicated
// connection. IMMEDIATE takes the write lock up front, so a read-check-insert
// sequence in fn cannot interleave with another writer.
func (s *Store) withImmediate(ctx context.Context, fn func(q querier) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin immediate transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(conn); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// nullTimePtr converts a nullable DATETIME column.
func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
