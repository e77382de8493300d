package scenario

import (
	"log"

	"github.com/louisbranch/traitorops/internal/services/traitor/domain/goal"
	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
)

// Candidate is one objective a traitor may be given.
type Candidate struct {
	ID        string
	Objective *objective.Objective
}

// Assignment pairs a traitor with candidate objectives in preference order.
type Assignment struct {
	Traitor    *Character
	Candidates []Candidate
}

// Session is a built scenario ready to run.
type Session struct {
	Name        string
	World       *World
	Assignments []Assignment
}

// Options configures Build.
type Options struct {
	Renderer objective.Renderer
	// Replica builds objectives that track state without notifying.
	Replica  bool
	Logger   *log.Logger
}

// Build validates doc and constructs its world and objectives.
func Build(doc Document, opts Options) (*Session, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	world := newWorld(doc, opts.Logger)
	session := &Session{Name: doc.Name, World: world}
	cfg := objective.Config{Renderer: opts.Renderer, Replica: opts.Replica}

	for _, spec := range doc.Assignments {
		traitor, _ := world.Character(spec.Traitor)
		assignment := Assignment{Traitor: traitor}
		for _, o := range spec.Objectives {
			goals := make([]objective.Goal, 0, len(o.Goals))
			for _, g := range o.Goals {
				goals = append(goals, buildGoal(world, g, opts.Renderer))
			}
			assignment.Candidates = append(assignment.Candidates, Candidate{
				ID:        o.ID,
				Objective: objective.New(cfg, o.Info, goals...),
			})
		}
		session.Assignments = append(session.Assignments, assignment)
	}
	return session, nil
}

// buildGoal assumes g passed validation.
func buildGoal(world *World, g GoalSpec, renderer objective.Renderer) objective.Goal {
	switch g.Kind {
	case GoalSurvive:
		return goal.NewSurvive(renderer, g.Duration)
	case GoalEliminate:
		target, _ := world.Character(g.Target)
		return goal.NewEliminate(renderer, target)
	default:
		return conditionGoal(world, g)
	}
}

func conditionGoal(world *World, g GoalSpec) *goal.Condition {
	subject, _ := world.Character(g.Character)
	completed := g.Completed
	if completed == "" {
		completed = g.Status
	}
	return goal.NewCondition(g.Status, completed, goal.ConditionFuncs{
		Done: func() bool { return subject.inState(g.State) },
		Moot: func(objective.Assignee) bool { return subject.inState(g.State) },
		Possible: func() bool {
			return g.State == StateAbsent || subject.IsPresent() || subject.inState(g.State)
		},
		Enemy: func(actor objective.Actor) bool {
			return actor != nil && g.State != StateAbsent && actor.ActorID() == subject.ActorID()
		},
	})
}
