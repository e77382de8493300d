package goal

import (
	"time"

	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
)

// ConditionFuncs are the predicates behind a Condition goal. Done is
// required; a nil Moot never declines and a nil Possible is always true.
type ConditionFuncs struct {
	Done     func() bool
	Moot     func(assignee objective.Assignee) bool
	Possible func() bool
	Enemy    func(actor objective.Actor) bool
}

// Condition is a goal over arbitrary world state. Done is sampled on each
// Update, so completion is only observed on a tick.
type Condition struct {
	status    string
	completed string
	funcs     ConditionFuncs

	done bool
}

// NewCondition creates a goal with pre-rendered status and completion text.
func NewCondition(status, completed string, funcs ConditionFuncs) *Condition {
	return &Condition{status: status, completed: completed, funcs: funcs}
}

func (g *Condition) CanBeCompleted() bool {
	if g.done || g.funcs.Possible == nil {
		return true
	}
	return g.funcs.Possible()
}

func (g *Condition) IsCompleted() bool {
	return g.done
}

func (g *Condition) IsEnemyOf(actor objective.Actor) bool {
	return g.funcs.Enemy != nil && g.funcs.Enemy(actor)
}

func (g *Condition) StatusText() string {
	return g.status
}

func (g *Condition) CompletedText() string {
	return g.completed
}

func (g *Condition) Start(assignee objective.Assignee) bool {
	return g.funcs.Moot == nil || !g.funcs.Moot(assignee)
}

func (g *Condition) Update(time.Duration) {
	if !g.done && g.funcs.Done != nil && g.funcs.Done() {
		g.done = true
	}
}
