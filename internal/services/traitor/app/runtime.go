// Package app hosts traitor objectives: it assigns candidates to traitors,
// drives them from a tick loop, journals every lifecycle step, and exposes
// gRPC health while the session runs.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	apperrors "github.com/louisbranch/traitorops/internal/platform/errors"
	platformotel "github.com/louisbranch/traitorops/internal/platform/otel"
	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
	"github.com/louisbranch/traitorops/internal/services/traitor/scenario"
	"github.com/louisbranch/traitorops/internal/services/traitor/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OutcomeNoObjective marks an assignment whose candidates all declined.
const OutcomeNoObjective = "no_objective"

// OutcomeInterrupted marks an objective ended by the tick cap.
const OutcomeInterrupted = "interrupted"

// JournalWriter appends journal entries.
type JournalWriter interface {
	AppendEntry(ctx context.Context, entry storage.JournalEntry) error
}

// RuntimeConfig configures a Runtime.
type RuntimeConfig struct {
	// SessionID groups this run's journal entries.
	SessionID string
	// Journal may be nil to skip persistence.
	Journal JournalWriter
	// Tracer defaults to the process tracer.
	Tracer trace.Tracer
}

// AssignmentStatus is a snapshot of one traitor's progress.
type AssignmentStatus struct {
	TraitorID      string
	ObjectiveID    string
	Finished       bool
	Outcome        string
	CompletedGoals int
	TotalGoals     int
}

type assignmentState struct {
	assignment scenario.Assignment
	next       int
	active     *scenario.Candidate
	seen       int
	finished   bool
	outcome    string
}

// Runtime drives a scenario session. All methods are safe for concurrent use.
type Runtime struct {
	mu          sync.Mutex
	cfg         RuntimeConfig
	session     *scenario.Session
	assignments []*assignmentState
	started     bool
	ticks       int
}

// NewRuntime creates a runtime over session.
func NewRuntime(session *scenario.Session, cfg RuntimeConfig) *Runtime {
	if cfg.Tracer == nil {
		cfg.Tracer = platformotel.Tracer()
	}
	rt := &Runtime{cfg: cfg, session: session}
	for _, a := range session.Assignments {
		rt.assignments = append(rt.assignments, &assignmentState{assignment: a})
	}
	return rt
}

// Start gives every traitor its first accepting candidate. It is a no-op
// once called.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}
	r.started = true
	for _, state := range r.assignments {
		if err := r.assignNext(ctx, state); err != nil {
			return err
		}
	}
	return nil
}

// Tick advances the world clock by delta, updates active objectives, and
// ends the ones that are settled.
func (r *Runtime) Tick(ctx context.Context, delta time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return errors.New("runtime not started")
	}

	ctx, span := r.cfg.Tracer.Start(ctx, "traitor.tick")
	defer span.End()
	r.ticks++
	applied := r.session.World.Advance(delta)
	span.SetAttributes(
		attribute.Int("traitor.tick", r.ticks),
		attribute.Int("traitor.events_applied", len(applied)),
	)

	for _, state := range r.assignments {
		if state.finished || state.active == nil {
			continue
		}
		if err := r.tickAssignment(ctx, state, delta); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return nil
}

// Done reports whether every assignment has finished.
func (r *Runtime) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && r.doneLocked()
}

// Ticks returns the number of ticks processed.
func (r *Runtime) Ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Status returns a snapshot of every assignment.
func (r *Runtime) Status() []AssignmentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AssignmentStatus, 0, len(r.assignments))
	for _, state := range r.assignments {
		out = append(out, state.status())
	}
	return out
}

// Assignment returns the snapshot for one traitor.
func (r *Runtime) Assignment(traitorID string) (AssignmentStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, state := range r.assignments {
		if state.assignment.Traitor.ActorID() == traitorID {
			return state.status(), nil
		}
	}
	return AssignmentStatus{}, apperrors.WithMetadata(apperrors.CodeNotFound,
		fmt.Sprintf("no assignment for traitor %q", traitorID),
		map[string]string{"Traitor": traitorID})
}

func (s *assignmentState) status() AssignmentStatus {
	status := AssignmentStatus{
		TraitorID: s.assignment.Traitor.ActorID(),
		Finished:  s.finished,
		Outcome:   s.outcome,
	}
	if s.active != nil {
		status.ObjectiveID = s.active.ID
		status.CompletedGoals = len(s.active.Objective.CompletedGoals())
		status.TotalGoals = len(s.active.Objective.AllGoals())
	}
	return status
}

// Run starts the runtime and ticks it every interval until every assignment
// finishes, maxTicks is reached, or ctx is canceled. A non-positive maxTicks
// means no cap.
func (r *Runtime) Run(ctx context.Context, interval time.Duration, maxTicks int) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}
	if err := r.Start(ctx); err != nil {
		return err
	}
	if r.Done() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("traitor runtime stopped after %d ticks", r.Ticks())
			return nil
		case <-ticker.C:
		}
		if err := r.Tick(ctx, interval); err != nil {
			return err
		}
		if r.Done() {
			log.Printf("traitor session finished after %d ticks", r.Ticks())
			return nil
		}
		if maxTicks > 0 && r.Ticks() >= maxTicks {
			log.Printf("traitor session reached tick cap %d", maxTicks)
			return r.interrupt(ctx)
		}
	}
}

func (r *Runtime) interrupt(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, state := range r.assignments {
		if state.finished || state.active == nil {
			continue
		}
		if err := r.end(ctx, state, OutcomeInterrupted); err != nil {
			return err
		}
		state.finished = true
	}
	return nil
}

func (r *Runtime) doneLocked() bool {
	for _, state := range r.assignments {
		if !state.finished {
			return false
		}
	}
	return true
}

func (r *Runtime) tickAssignment(ctx context.Context, state *assignmentState, delta time.Duration) error {
	obj := state.active.Objective
	obj.Update(delta)

	completed := obj.CompletedGoals()
	all := obj.AllGoals()
	for _, goal := range completed[state.seen:] {
		if err := r.journal(ctx, state, storage.EntryGoalCompleted, slices.Index(all, goal), "", goal.CompletedText()); err != nil {
			return err
		}
	}
	state.seen = len(completed)

	traitor := state.assignment.Traitor
	switch {
	case obj.IsCompleted():
		if err := r.end(ctx, state, string(obj.Outcome())); err != nil {
			return err
		}
		if traitor.IsDead() || !traitor.IsPresent() {
			state.finished = true
			return nil
		}
		return r.assignNext(ctx, state)
	case !obj.CanBeCompleted(), traitor.IsDead(), !traitor.IsPresent():
		if err := r.end(ctx, state, string(obj.Outcome())); err != nil {
			return err
		}
		state.finished = true
	}
	return nil
}

// assignNext starts the next accepting candidate, journaling the ones that
// decline. The assignment finishes when none remain.
func (r *Runtime) assignNext(ctx context.Context, state *assignmentState) error {
	traitor := state.assignment.Traitor
	prev := state.active
	for state.next < len(state.assignment.Candidates) {
		candidate := &state.assignment.Candidates[state.next]
		state.next++

		_, span := r.cfg.Tracer.Start(ctx, "traitor.objective.start", trace.WithAttributes(
			attribute.String("traitor.id", traitor.ActorID()),
			attribute.String("traitor.objective_id", candidate.ID),
		))
		started, err := candidate.Objective.Start(traitor)
		span.SetAttributes(attribute.Bool("traitor.objective_started", started))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return fmt.Errorf("start objective %s: %w", candidate.ID, err)
		}
		span.End()

		state.active = candidate
		if !started {
			log.Printf("objective %s declined for %s", candidate.ID, traitor.ActorID())
			if err := r.journal(ctx, state, storage.EntryStartDeclined, storage.NoGoal, "", ""); err != nil {
				return err
			}
			state.active = prev
			continue
		}
		log.Printf("objective %s started for %s", candidate.ID, traitor.ActorID())
		state.seen = len(candidate.Objective.CompletedGoals())
		state.outcome = ""
		return r.journal(ctx, state, storage.EntryStarted, storage.NoGoal, "", candidate.Objective.InfoText())
	}
	state.finished = true
	if state.outcome == "" {
		state.outcome = OutcomeNoObjective
	}
	return nil
}

func (r *Runtime) end(ctx context.Context, state *assignmentState, outcome string) error {
	candidate := state.active
	_, span := r.cfg.Tracer.Start(ctx, "traitor.objective.end", trace.WithAttributes(
		attribute.String("traitor.id", state.assignment.Traitor.ActorID()),
		attribute.String("traitor.objective_id", candidate.ID),
		attribute.String("traitor.outcome", outcome),
	))
	defer span.End()

	if err := candidate.Objective.End(true); err != nil {
		span.RecordError(err)
		return fmt.Errorf("end objective %s: %w", candidate.ID, err)
	}
	state.outcome = outcome
	log.Printf("objective %s ended for %s: %s", candidate.ID, state.assignment.Traitor.ActorID(), outcome)
	return r.journal(ctx, state, storage.EntryEnded, storage.NoGoal, outcome, "")
}

func (r *Runtime) journal(ctx context.Context, state *assignmentState, kind storage.EntryKind, goalIndex int, outcome, detail string) error {
	if r.cfg.Journal == nil {
		return nil
	}
	err := r.cfg.Journal.AppendEntry(ctx, storage.JournalEntry{
		SessionID:   r.cfg.SessionID,
		ObjectiveID: state.active.ID,
		TraitorID:   state.assignment.Traitor.ActorID(),
		Kind:        kind,
		GoalIndex:   goalIndex,
		Outcome:     outcome,
		Detail:      detail,
	})
	if err != nil {
		return fmt.Errorf("journal %s for %s: %w", kind, state.active.ID, err)
	}
	return nil
}

var _ objective.Assignee = (*scenario.Character)(nil)
