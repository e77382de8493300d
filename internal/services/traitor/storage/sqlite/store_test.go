package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/louisbranch/traitorops/internal/platform/errors"
	"github.com/louisbranch/traitorops/internal/services/traitor/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenInMemory(t *testing.T) {
	t.Parallel()

	store, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	defer store.Close()

	if err := store.AppendEntry(context.Background(), entry("s1", storage.EntryStarted)); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestAppendAndGetEntryRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	recordedAt := time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)
	input := storage.JournalEntry{
		ID:          "entry-1",
		SessionID:   "session-1",
		ObjectiveID: "obj-1",
		TraitorID:   "vera",
		Kind:        storage.EntryGoalCompleted,
		GoalIndex:   2,
		Detail:      "Captain Ahn has been eliminated.",
		RecordedAt:  recordedAt,
	}
	if err := store.AppendEntry(context.Background(), input); err != nil {
		t.Fatalf("append entry: %v", err)
	}

	got, err := store.GetEntry(context.Background(), "entry-1")
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	if !got.RecordedAt.Equal(recordedAt) {
		t.Fatalf("recorded_at = %s, want %s", got.RecordedAt, recordedAt)
	}
	got.RecordedAt = input.RecordedAt
	if got != input {
		t.Fatalf("entry = %+v, want %+v", got, input)
	}
}

func TestAppendEntryFillsDefaults(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	fixed := time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	if err := store.AppendEntry(context.Background(), entry("session-1", storage.EntryStarted)); err != nil {
		t.Fatalf("append entry: %v", err)
	}
	entries, err := store.ListEntries(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if len(entries[0].ID) != 26 {
		t.Fatalf("generated id = %q, want 26 chars", entries[0].ID)
	}
	if !entries[0].RecordedAt.Equal(fixed) {
		t.Fatalf("recorded_at = %s, want %s", entries[0].RecordedAt, fixed)
	}
	if entries[0].GoalIndex != storage.NoGoal {
		t.Fatalf("goal index = %d, want %d", entries[0].GoalIndex, storage.NoGoal)
	}
}

func TestAppendEntryValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	tests := []struct {
		name   string
		mutate func(*storage.JournalEntry)
	}{
		{name: "missing session", mutate: func(e *storage.JournalEntry) { e.SessionID = " " }},
		{name: "missing objective", mutate: func(e *storage.JournalEntry) { e.ObjectiveID = "" }},
		{name: "missing traitor", mutate: func(e *storage.JournalEntry) { e.TraitorID = "" }},
		{name: "unknown kind", mutate: func(e *storage.JournalEntry) { e.Kind = "exploded" }},
		{name: "bad goal index", mutate: func(e *storage.JournalEntry) { e.GoalIndex = -2 }},
	}
	for _, tc := range tests {
		input := entry("session-1", storage.EntryStarted)
		tc.mutate(&input)
		if err := store.AppendEntry(context.Background(), input); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestAppendEntryDuplicateID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	input := entry("session-1", storage.EntryStarted)
	input.ID = "dup"
	if err := store.AppendEntry(context.Background(), input); err != nil {
		t.Fatalf("append entry: %v", err)
	}
	err := store.AppendEntry(context.Background(), input)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate append error = %v, want %v", err, storage.ErrAlreadyExists)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetEntry(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
	if apperrors.GetCode(err) != apperrors.CodeNotFound {
		t.Fatalf("code = %q, want %q", apperrors.GetCode(err), apperrors.CodeNotFound)
	}
}

func TestListEntriesKeepsAppendOrderPerSession(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	kinds := []storage.EntryKind{
		storage.EntryStartDeclined,
		storage.EntryStarted,
		storage.EntryGoalCompleted,
		storage.EntryEnded,
	}
	base := time.Date(2026, time.October, 15, 11, 0, 0, 0, time.UTC)
	for i, kind := range kinds {
		e := entry("session-a", kind)
		// Same timestamp for all entries; order must come from insertion.
		e.RecordedAt = base
		if err := store.AppendEntry(context.Background(), e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if err := store.AppendEntry(context.Background(), entry("session-b", kind)); err != nil {
			t.Fatalf("append other session %d: %v", i, err)
		}
	}

	entries, err := store.ListEntries(context.Background(), "session-a")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != len(kinds) {
		t.Fatalf("entries = %d, want %d", len(entries), len(kinds))
	}
	for i, got := range entries {
		if got.Kind != kinds[i] {
			t.Fatalf("entry %d kind = %q, want %q", i, got.Kind, kinds[i])
		}
		if got.SessionID != "session-a" {
			t.Fatalf("entry %d session = %q", i, got.SessionID)
		}
	}

	empty, err := store.ListEntries(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("entries = %d, want 0", len(empty))
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.AppendEntry(ctx, entry("s", storage.EntryStarted)); !errors.Is(err, context.Canceled) {
		t.Fatalf("append error = %v, want context.Canceled", err)
	}
	if _, err := store.ListEntries(ctx, "s"); !errors.Is(err, context.Canceled) {
		t.Fatalf("list error = %v, want context.Canceled", err)
	}
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if err := store.AppendEntry(context.Background(), entry("s", storage.EntryStarted)); err == nil {
		t.Fatal("expected unconfigured store error")
	}
}

func entry(sessionID string, kind storage.EntryKind) storage.JournalEntry {
	return storage.JournalEntry{
		SessionID:   sessionID,
		ObjectiveID: "obj-1",
		TraitorID:   "vera",
		Kind:        kind,
		GoalIndex:   storage.NoGoal,
	}
}

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
