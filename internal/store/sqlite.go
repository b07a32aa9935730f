package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	timeLayout              = time.RFC3339
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db, path: dbPath, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func newID() string {
	return ulid.Make().String()
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS plans (
		id            TEXT PRIMARY KEY,
		title         TEXT NOT NULL,
		translation   TEXT NOT NULL,
		follow_up_url TEXT,
		theme_hint    TEXT,
		created_at    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plan_items (
		id               TEXT PRIMARY KEY,
		plan_id          TEXT NOT NULL REFERENCES plans(id),
		seq              INTEGER NOT NULL,
		refs             TEXT NOT NULL,
		translation      TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'pending',
		published_at     TEXT,
		lease_owner      TEXT,
		lease_expires_at TEXT,
		created_at       TEXT NOT NULL,
		UNIQUE (plan_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_plan_items_status ON plan_items(plan_id, status);

	CREATE TABLE IF NOT EXISTS lessons (
		id                  TEXT PRIMARY KEY,
		canonical_reference TEXT NOT NULL,
		translation         TEXT NOT NULL,
		passage_text        TEXT NOT NULL,
		content             TEXT NOT NULL,
		story               TEXT NOT NULL,
		audio               TEXT,
		share_id            TEXT NOT NULL UNIQUE,
		published_at        TEXT NOT NULL,
		created_at          TEXT NOT NULL,
		deleted_at          TEXT
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_lessons_canonical
		ON lessons(canonical_reference, translation) WHERE deleted_at IS NULL;
	CREATE INDEX IF NOT EXISTS idx_lessons_created ON lessons(created_at DESC);

	CREATE TABLE IF NOT EXISTS lesson_mappings (
		item_id    TEXT PRIMARY KEY REFERENCES plan_items(id),
		lesson_id  TEXT NOT NULL REFERENCES lessons(id),
		outcome    TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mappings_lesson ON lesson_mappings(lesson_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// isUniqueViolation reports a UNIQUE or PRIMARY KEY failure naming column.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return column == "" || strings.Contains(msg, column)
}

// retryOnBusy reruns op while SQLite reports the database as locked.
func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// inTx runs fn in a transaction, retrying the whole transaction on SQLITE_BUSY.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var err error
		res, err = s.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

type scanner interface {
	Scan(dest ...any) error
}

func nullableString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(timeLayout, v)
	return t
}

func parseNullTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t := parseTime(v.String)
	return &t
}
