// Package storage defines persistence contracts for the traitor objective
// journal.
//
// The runtime appends one entry per lifecycle step so a session can be
// replayed or summarized after it ends.
package storage

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/louisbranch/traitorops/internal/platform/errors"
)

var (
	// ErrNotFound indicates a requested journal entry is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "journal entry not found")
	// ErrAlreadyExists indicates an entry with the same ID was already stored.
	ErrAlreadyExists = errors.New("journal entry already exists")
)

// EntryKind names one objective lifecycle step.
type EntryKind string

const (
	EntryStarted       EntryKind = "started"
	EntryStartDeclined EntryKind = "start_declined"
	EntryGoalCompleted EntryKind = "goal_completed"
	EntryEnded         EntryKind = "ended"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryStarted, EntryStartDeclined, EntryGoalCompleted, EntryEnded:
		return true
	}
	return false
}

// NoGoal is the GoalIndex of entries that are not about a single goal.
const NoGoal = -1

// JournalEntry records one lifecycle step of one objective.
type JournalEntry struct {
	ID          string
	SessionID   string
	ObjectiveID string
	TraitorID   string
	Kind        EntryKind
	// GoalIndex is the goal's position in the objective, or NoGoal.
	GoalIndex int
	// Outcome is set on ended entries, e.g. "success" or "failure_dead".
	Outcome    string
	Detail     string
	RecordedAt time.Time
}

// JournalStore persists objective journal entries.
type JournalStore interface {
	AppendEntry(ctx context.Context, entry JournalEntry) error
	GetEntry(ctx context.Context, id string) (JournalEntry, error)
	// ListEntries returns a session's entries in append order.
	ListEntries(ctx context.Context, sessionID string) ([]JournalEntry, error)
}
