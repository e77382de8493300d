package goal

import (
	"time"

	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
)

// Eliminate completes when its target dies.
//
// The goal is moot when the target is already dead or is the assignee, and
// becomes impossible if the target leaves the session alive.
type Eliminate struct {
	renderer objective.Renderer
	target   Target

	started bool
	done    bool
}

// NewEliminate creates an elimination goal aimed at target.
func NewEliminate(renderer objective.Renderer, target Target) *Eliminate {
	return &Eliminate{renderer: renderer, target: target}
}

// Target returns the character to eliminate.
func (g *Eliminate) Target() Target {
	return g.target
}

func (g *Eliminate) CanBeCompleted() bool {
	return g.done || g.target.IsDead() || g.target.IsPresent()
}

func (g *Eliminate) IsCompleted() bool {
	return g.done
}

func (g *Eliminate) IsEnemyOf(actor objective.Actor) bool {
	return actor != nil && actor.ActorID() == g.target.ActorID()
}

func (g *Eliminate) StatusText() string {
	return render(g.renderer, EliminateStatusTemplate, []string{KeyTarget}, []any{g.target.Name()})
}

func (g *Eliminate) CompletedText() string {
	return render(g.renderer, EliminateCompletedTemplate, []string{KeyTarget}, []any{g.target.Name()})
}

func (g *Eliminate) Start(assignee objective.Assignee) bool {
	if g.target.IsDead() || g.target.ActorID() == assignee.ActorID() {
		return false
	}
	g.started = true
	return true
}

func (g *Eliminate) Update(time.Duration) {
	if g.started && g.target.IsDead() {
		g.done = true
	}
}
