package goal

import (
	"time"

	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
)

// Survive completes once the assignee has stayed alive for Duration of
// ticked time.
type Survive struct {
	renderer objective.Renderer
	duration time.Duration

	assignee objective.Assignee
	elapsed  time.Duration
}

// NewSurvive creates a survival goal.
func NewSurvive(renderer objective.Renderer, duration time.Duration) *Survive {
	return &Survive{renderer: renderer, duration: duration}
}

// Elapsed returns the time survived so far.
func (g *Survive) Elapsed() time.Duration {
	return g.elapsed
}

func (g *Survive) CanBeCompleted() bool {
	return g.assignee == nil || !g.assignee.IsDead()
}

func (g *Survive) IsCompleted() bool {
	return g.assignee != nil && !g.assignee.IsDead() && g.elapsed >= g.duration
}

func (g *Survive) IsEnemyOf(objective.Actor) bool {
	return false
}

func (g *Survive) StatusText() string {
	return render(g.renderer, SurviveStatusTemplate, []string{KeyDuration}, []any{FormatDuration(g.duration)})
}

func (g *Survive) CompletedText() string {
	return render(g.renderer, SurviveCompletedTemplate, nil, nil)
}

func (g *Survive) Start(assignee objective.Assignee) bool {
	g.assignee = assignee
	g.elapsed = 0
	return !assignee.IsDead()
}

func (g *Survive) Update(delta time.Duration) {
	if g.assignee == nil || g.assignee.IsDead() {
		return
	}
	g.elapsed += delta
}
