// Package sqlite provides the SQLite-backed objective journal.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/traitorops/internal/platform/id"
	sqlitemigrate "github.com/louisbranch/traitorops/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/traitorops/internal/services/traitor/storage"
	"github.com/louisbranch/traitorops/internal/services/traitor/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists journal entries in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite journal store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// In-memory databases are per connection.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendEntry stores one journal entry. A missing ID is generated and a zero
// RecordedAt is stamped with the current time.
func (s *Store) AppendEntry(ctx context.Context, entry storage.JournalEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	entry.SessionID = strings.TrimSpace(entry.SessionID)
	entry.ObjectiveID = strings.TrimSpace(entry.ObjectiveID)
	entry.TraitorID = strings.TrimSpace(entry.TraitorID)
	if entry.SessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if entry.ObjectiveID == "" {
		return fmt.Errorf("objective id is required")
	}
	if entry.TraitorID == "" {
		return fmt.Errorf("traitor id is required")
	}
	if !entry.Kind.Valid() {
		return fmt.Errorf("entry kind %q is invalid", entry.Kind)
	}
	if entry.GoalIndex < storage.NoGoal {
		return fmt.Errorf("goal index %d is invalid", entry.GoalIndex)
	}
	if strings.TrimSpace(entry.ID) == "" {
		generated, err := id.NewID()
		if err != nil {
			return fmt.Errorf("generate entry id: %w", err)
		}
		entry.ID = generated
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = s.now()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO objective_journal (
		   id,
		   session_id,
		   objective_id,
		   traitor_id,
		   kind,
		   goal_index,
		   outcome,
		   detail,
		   recorded_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SessionID,
		entry.ObjectiveID,
		entry.TraitorID,
		string(entry.Kind),
		entry.GoalIndex,
		entry.Outcome,
		entry.Detail,
		toMillis(entry.RecordedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// GetEntry returns one entry by ID.
func (s *Store) GetEntry(ctx context.Context, entryID string) (storage.JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return storage.JournalEntry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.JournalEntry{}, fmt.Errorf("storage is not configured")
	}
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return storage.JournalEntry{}, fmt.Errorf("entry id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, entryID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.JournalEntry{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.JournalEntry{}, fmt.Errorf("get journal entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns a session's entries in append order.
func (s *Store) ListEntries(ctx context.Context, sessionID string) ([]storage.JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, selectEntry+` WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]storage.JournalEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

const selectEntry = `SELECT
	id,
	session_id,
	objective_id,
	traitor_id,
	kind,
	goal_index,
	outcome,
	detail,
	recorded_at
FROM objective_journal`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (storage.JournalEntry, error) {
	var (
		entry      storage.JournalEntry
		kind       string
		recordedAt int64
	)
	if err := row.Scan(
		&entry.ID,
		&entry.SessionID,
		&entry.ObjectiveID,
		&entry.TraitorID,
		&kind,
		&entry.GoalIndex,
		&entry.Outcome,
		&entry.Detail,
		&recordedAt,
	); err != nil {
		return storage.JournalEntry{}, err
	}
	entry.Kind = storage.EntryKind(kind)
	entry.RecordedAt = fromMillis(recordedAt)
	return entry, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "objective_journal.id")
}

var _ storage.JournalStore = (*Store)(nil)
