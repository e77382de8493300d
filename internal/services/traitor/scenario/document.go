// Package scenario loads YAML traitor scenarios and builds the simulated
// world and candidate objectives they describe.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	apperrors "github.com/louisbranch/traitorops/internal/platform/errors"
	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
	"gopkg.in/yaml.v3"
)

// Goal kinds understood by Build.
const (
	GoalSurvive   = "survive"
	GoalEliminate = "eliminate"
	GoalCondition = "condition"
)

// Event kinds applied to the world clock.
const (
	EventDie     = "die"
	EventDetain  = "detain"
	EventRelease = "release"
	EventLeave   = "leave"
)

// Character states a condition goal can wait for.
const (
	StateDead     = "dead"
	StateDetained = "detained"
	StateAbsent   = "absent"
)

// Document is the decoded scenario file.
type Document struct {
	Name        string           `yaml:"name"`
	Characters  []CharacterSpec  `yaml:"characters"`
	Assignments []AssignmentSpec `yaml:"assignments"`
	Events      []EventSpec      `yaml:"events"`
}

// CharacterSpec declares one crew member.
type CharacterSpec struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Gender string `yaml:"gender"`
}

// AssignmentSpec gives a traitor an ordered list of candidate objectives.
type AssignmentSpec struct {
	Traitor    string          `yaml:"traitor"`
	Objectives []ObjectiveSpec `yaml:"objectives"`
}

// ObjectiveSpec declares one candidate objective.
type ObjectiveSpec struct {
	ID    string     `yaml:"id"`
	Info  string     `yaml:"info"`
	Goals []GoalSpec `yaml:"goals"`
}

// GoalSpec declares one goal. Which fields apply depends on Kind.
type GoalSpec struct {
	Kind     string        `yaml:"kind"`
	Duration time.Duration `yaml:"duration"`
	Target   string        `yaml:"target"`
	// Condition goals wait for Character to reach State.
	Character string `yaml:"character"`
	State     string `yaml:"state"`
	Status    string `yaml:"status"`
	Completed string `yaml:"completed"`
}

// EventSpec changes a character's state once the world clock reaches At.
type EventSpec struct {
	At        time.Duration `yaml:"at"`
	Kind      string        `yaml:"kind"`
	Character string        `yaml:"character"`
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, invalid("scenario payload is empty")
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, apperrors.Wrap(apperrors.CodeScenarioInvalid, "decode scenario", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Load reads a scenario from r.
func Load(r io.Reader) (Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(content)
}

// LoadFile reads a scenario from path.
func LoadFile(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read scenario %s: %w", path, err)
	}
	doc, err := Parse(content)
	if err != nil {
		return Document{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	return doc, nil
}

// Validate checks references and per-kind fields.
func (d Document) Validate() error {
	if len(d.Characters) == 0 {
		return invalid("at least one character is required")
	}
	known := make(map[string]bool, len(d.Characters))
	for _, c := range d.Characters {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return invalid("character id is required")
		}
		if known[id] {
			return invalid(fmt.Sprintf("duplicate character %q", id))
		}
		switch objective.Gender(c.Gender) {
		case "", objective.GenderNeutral, objective.GenderMale, objective.GenderFemale:
		default:
			return invalid(fmt.Sprintf("character %q has unknown gender %q", id, c.Gender))
		}
		known[id] = true
	}

	traitors := make(map[string]bool, len(d.Assignments))
	objectiveIDs := make(map[string]bool)
	for _, a := range d.Assignments {
		if !known[a.Traitor] {
			return unknownCharacter(a.Traitor)
		}
		if traitors[a.Traitor] {
			return invalid(fmt.Sprintf("traitor %q is assigned twice", a.Traitor))
		}
		traitors[a.Traitor] = true
		if len(a.Objectives) == 0 {
			return invalid(fmt.Sprintf("traitor %q has no objectives", a.Traitor))
		}
		for _, o := range a.Objectives {
			if strings.TrimSpace(o.ID) == "" {
				return invalid("objective id is required")
			}
			if objectiveIDs[o.ID] {
				return invalid(fmt.Sprintf("duplicate objective %q", o.ID))
			}
			objectiveIDs[o.ID] = true
			for _, g := range o.Goals {
				if err := g.validate(known); err != nil {
					return err
				}
			}
		}
	}

	for _, e := range d.Events {
		if !slices.Contains([]string{EventDie, EventDetain, EventRelease, EventLeave}, e.Kind) {
			return invalid(fmt.Sprintf("unknown event kind %q", e.Kind))
		}
		if !known[e.Character] {
			return unknownCharacter(e.Character)
		}
		if e.At < 0 {
			return invalid("event time must not be negative")
		}
	}
	return nil
}

func (g GoalSpec) validate(known map[string]bool) error {
	switch g.Kind {
	case GoalSurvive:
		if g.Duration <= 0 {
			return invalid("survive goal needs a positive duration")
		}
	case GoalEliminate:
		if !known[g.Target] {
			return unknownCharacter(g.Target)
		}
	case GoalCondition:
		if !known[g.Character] {
			return unknownCharacter(g.Character)
		}
		if !slices.Contains([]string{StateDead, StateDetained, StateAbsent}, g.State) {
			return invalid(fmt.Sprintf("unknown condition state %q", g.State))
		}
		if strings.TrimSpace(g.Status) == "" {
			return invalid("condition goal needs status text")
		}
	default:
		return apperrors.WithMetadata(apperrors.CodeScenarioUnknownGoalKind,
			fmt.Sprintf("unknown goal kind %q", g.Kind),
			map[string]string{"Kind": g.Kind})
	}
	return nil
}

func invalid(reason string) error {
	return apperrors.WithMetadata(apperrors.CodeScenarioInvalid, "invalid scenario: "+reason,
		map[string]string{"Reason": reason})
}

func unknownCharacter(id string) error {
	return apperrors.WithMetadata(apperrors.CodeScenarioUnknownCharacter,
		fmt.Sprintf("unknown character %q", id),
		map[string]string{"Character": id})
}
