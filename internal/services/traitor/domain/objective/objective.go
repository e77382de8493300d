package objective

import (
	"slices"
	"time"

	apperrors "github.com/louisbranch/traitorops/internal/platform/errors"
)

var (
	// ErrAssigneeRequired indicates Start was called without an assignee.
	ErrAssigneeRequired = apperrors.New(apperrors.CodeObjectiveAssigneeRequired, "objective assignee is required")
	// ErrAlreadyStarted indicates Start was called on a started objective.
	ErrAlreadyStarted = apperrors.New(apperrors.CodeObjectiveAlreadyStarted, "objective already started")
	// ErrNotStarted indicates an operation that needs a started objective.
	ErrNotStarted = apperrors.New(apperrors.CodeObjectiveNotStarted, "objective not started")
)

// Objective is one secret mission: a fixed list of goals assigned to a
// single traitor.
//
// Invariant: every goal in the construction list is in exactly one of
// pending or completed, and a goal never leaves completed.
type Objective struct {
	cfg      Config
	infoText string

	all       []Goal
	pending   []Goal
	completed []Goal

	started  bool
	assignee Assignee
}

// New creates an objective over goals, all initially pending.
// An objective with no goals can never be started.
func New(cfg Config, infoText string, goals ...Goal) *Objective {
	return &Objective{
		cfg:       cfg.withDefaults(),
		infoText:  infoText,
		all:       slices.Clone(goals),
		pending:   slices.Clone(goals),
		completed: make([]Goal, 0, len(goals)),
	}
}

// InfoText returns the description supplied at construction.
func (o *Objective) InfoText() string {
	return o.infoText
}

// Assignee returns the bound traitor, or nil before Start.
func (o *Objective) Assignee() Assignee {
	return o.assignee
}

// IsStarted reports whether Start succeeded.
func (o *Objective) IsStarted() bool {
	return o.started
}

// AllGoals returns the goals in construction order.
func (o *Objective) AllGoals() []Goal {
	return slices.Clone(o.all)
}

// PendingGoals returns the goals still in progress, in construction order.
func (o *Objective) PendingGoals() []Goal {
	return slices.Clone(o.pending)
}

// CompletedGoals returns finished goals in the order they finished.
func (o *Objective) CompletedGoals() []Goal {
	return slices.Clone(o.completed)
}

// IsCompleted reports whether no goal is pending.
func (o *Objective) IsCompleted() bool {
	return len(o.pending) == 0
}

// IsPartiallyCompleted reports whether at least one goal has completed.
func (o *Objective) IsPartiallyCompleted() bool {
	return len(o.completed) > 0
}

// CanBeCompleted reports whether every pending goal is still achievable.
// An objective that has not started is always considered achievable.
func (o *Objective) CanBeCompleted() bool {
	if !o.started {
		return true
	}
	for _, goal := range o.pending {
		if !goal.CanBeCompleted() {
			return false
		}
	}
	return true
}

// IsEnemy reports whether actor works against any pending goal.
func (o *Objective) IsEnemy(actor Actor) bool {
	for _, goal := range o.pending {
		if goal.IsEnemyOf(actor) {
			return true
		}
	}
	return false
}

// GoalInfos returns the status summary of every goal.
func (o *Objective) GoalInfos() Summary {
	return summarize(o.cfg.Templates.GoalInfoFormat, o.all)
}

// Start binds assignee and activates the pending goals. Goals that decline
// to start are moved to completed. It returns false, without side effects,
// when no goal is left pending; the caller should pick another objective.
func (o *Objective) Start(assignee Assignee) (bool, error) {
	if assignee == nil {
		return false, ErrAssigneeRequired
	}
	if o.started {
		return false, ErrAlreadyStarted
	}
	o.assignee = assignee

	o.sweep(func(goal Goal) bool {
		return !goal.Start(assignee)
	}, nil)
	if len(o.pending) == 0 {
		return false, nil
	}
	o.started = true

	if o.notifying() {
		assignee.SendChatMessageBox(o.StartMessageText())
		assignee.UpdateCurrentObjective(o.GoalInfos())
	}
	return true, nil
}

// Update ticks every pending goal once and retires the ones that complete.
// It does nothing before a successful Start.
func (o *Objective) Update(delta time.Duration) {
	if !o.started {
		return
	}
	o.sweep(func(goal Goal) bool {
		goal.Update(delta)
		return goal.IsCompleted()
	}, o.goalCompleted)
}

// End reports the outcome to the assignee when displayMessage is set. It
// does not change objective state, so pending goals are simply abandoned.
func (o *Objective) End(displayMessage bool) error {
	if !o.started {
		return ErrNotStarted
	}
	if displayMessage && o.notifying() {
		o.assignee.SendChatMessageBox(o.EndMessageText())
	}
	return nil
}

// StartMessage re-sends the briefing as a transient message.
func (o *Objective) StartMessage() error {
	if !o.started {
		return ErrNotStarted
	}
	if o.notifying() {
		o.assignee.SendChatMessage(o.StartMessageText())
	}
	return nil
}

// EndMessage sends the end-of-objective text as a transient message.
func (o *Objective) EndMessage() error {
	if !o.started {
		return ErrNotStarted
	}
	if o.notifying() {
		o.assignee.SendChatMessage(o.EndMessageText())
	}
	return nil
}

// sweep visits pending goals in order. Each goal for which done reports true
// moves to completed before onDone runs, so observers see a consistent
// partition.
func (o *Objective) sweep(done func(Goal) bool, onDone func(Goal)) {
	for i := 0; i < len(o.pending); {
		goal := o.pending[i]
		if !done(goal) {
			i++
			continue
		}
		o.pending = slices.Delete(o.pending, i, i+1)
		o.completed = append(o.completed, goal)
		if onDone != nil {
			onDone(goal)
		}
	}
}

func (o *Objective) goalCompleted(goal Goal) {
	if !o.notifying() {
		return
	}
	text := goal.CompletedText()
	o.assignee.SendChatMessage(text)
	// The goal that finishes the objective is announced by the end message.
	if len(o.pending) > 0 {
		o.assignee.SendChatMessageBox(text)
	}
	o.assignee.UpdateCurrentObjective(o.GoalInfos())
}

func (o *Objective) notifying() bool {
	return !o.cfg.Replica && o.assignee != nil
}
