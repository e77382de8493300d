// Package goal provides the stock objective goals: surviving for a while,
// eliminating a target, and arbitrary world-state conditions.
package goal

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
)

// Substitution keys used by the goal templates.
const (
	KeyDuration = "[duration]"
	KeyTarget   = "[target]"
)

// Template IDs for goal copy.
const (
	SurviveStatusTemplate      = "traitor.goal.survive.status"
	SurviveCompletedTemplate   = "traitor.goal.survive.completed"
	EliminateStatusTemplate    = "traitor.goal.eliminate.status"
	EliminateCompletedTemplate = "traitor.goal.eliminate.completed"
)

// Target is a character another goal is aimed at.
type Target interface {
	objective.Actor
	Name() string
	IsDead() bool
	// IsPresent reports whether the character is still in the session.
	IsPresent() bool
}

func render(r objective.Renderer, templateID string, keys []string, values []any) string {
	if r == nil {
		return templateID
	}
	return r.Render(objective.RenderRequest{
		TemplateID: templateID,
		Keys:       keys,
		Values:     values,
		Gender:     objective.GenderNeutral,
	})
}

// FormatDuration renders d as compact hours, minutes and seconds ("1h30m",
// "45s"), dropping zero components.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	var b strings.Builder
	if h > 0 {
		fmt.Fprintf(&b, "%dh", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dm", m)
	}
	if s > 0 {
		fmt.Fprintf(&b, "%ds", s)
	}
	return b.String()
}
