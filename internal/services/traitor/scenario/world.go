package scenario

import (
	"log"
	"slices"
	"sync"
	"time"

	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
)

// MessageKind tells how a message reached a character.
type MessageKind string

const (
	MessageChat      MessageKind = "chat"
	MessageBox       MessageKind = "box"
	MessageObjective MessageKind = "objective"
)

// Message is one notification received by a character.
type Message struct {
	Kind    MessageKind
	Text    string
	Summary objective.Summary
}

// Character is a simulated crew member. It satisfies objective.Assignee and
// goal.Target and records every notification it receives.
type Character struct {
	id     string
	name   string
	gender objective.Gender
	logger *log.Logger

	mu       sync.Mutex
	dead     bool
	detained bool
	absent   bool
	messages []Message
	current  objective.Summary
}

func newCharacter(spec CharacterSpec, logger *log.Logger) *Character {
	gender := objective.Gender(spec.Gender)
	if gender == "" {
		gender = objective.GenderNeutral
	}
	name := spec.Name
	if name == "" {
		name = spec.ID
	}
	return &Character{id: spec.ID, name: name, gender: gender, logger: logger}
}

func (c *Character) ActorID() string { return c.id }
func (c *Character) Name() string { return c.name }
func (c *Character) Gender() objective.Gender { return c.gender }

func (c *Character) IsDead() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dead
}

func (c *Character) IsDetained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.detained
}

// IsPresent reports whether the character is still in the session.
func (c *Character) IsPresent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.absent
}

func (c *Character) SendChatMessage(text string) {
	c.record(Message{Kind: MessageChat, Text: text})
}

func (c *Character) SendChatMessageBox(text string) {
	c.record(Message{Kind: MessageBox, Text: text})
}

func (c *Character) UpdateCurrentObjective(summary objective.Summary) {
	c.mu.Lock()
	c.current = summary
	c.mu.Unlock()
	c.record(Message{Kind: MessageObjective, Summary: summary})
}

// Messages returns the notifications received so far.
func (c *Character) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// CurrentObjective returns the last objective view pushed to the character.
func (c *Character) CurrentObjective() objective.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Character) record(msg Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	if c.logger == nil {
		return
	}
	switch msg.Kind {
	case MessageObjective:
		c.logger.Printf("%s objective view updated (%d goals)", c.id, msg.Summary.Len())
	default:
		c.logger.Printf("%s %s: %s", c.id, msg.Kind, msg.Text)
	}
}

func (c *Character) apply(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case EventDie:
		c.dead = true
	case EventDetain:
		c.detained = true
	case EventRelease:
		c.detained = false
	case EventLeave:
		c.absent = true
	}
}

func (c *Character) inState(state string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch state {
	case StateDead:
		return c.dead
	case StateDetained:
		return c.detained
	case StateAbsent:
		return c.absent
	}
	return false
}

// World is the simulated session: its characters and a clock that fires
// scripted events.
type World struct {
	characters []*Character
	byID       map[string]*Character
	events     []EventSpec
	next       int
	clock      time.Duration
	logger     *log.Logger
}

func newWorld(doc Document, logger *log.Logger) *World {
	w := &World{
		byID:   make(map[string]*Character, len(doc.Characters)),
		events: slices.Clone(doc.Events),
		logger: logger,
	}
	for _, spec := range doc.Characters {
		c := newCharacter(spec, logger)
		w.characters = append(w.characters, c)
		w.byID[c.id] = c
	}
	slices.SortStableFunc(w.events, func(a, b EventSpec) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		}
		return 0
	})
	return w
}

// Character looks up a character by ID.
func (w *World) Character(id string) (*Character, bool) {
	c, ok := w.byID[id]
	return c, ok
}

// Characters returns every character in declaration order.
func (w *World) Characters() []*Character {
	return slices.Clone(w.characters)
}

// Clock returns the simulated time elapsed so far.
func (w *World) Clock() time.Duration {
	return w.clock
}

// Pending reports whether scripted events remain.
func (w *World) Pending() bool {
	return w.next < len(w.events)
}

// Advance moves the clock forward and applies every event now due, in
// schedule order. It returns the applied events.
func (w *World) Advance(delta time.Duration) []EventSpec {
	w.clock += delta
	var applied []EventSpec
	for w.next < len(w.events) && w.events[w.next].At <= w.clock {
		event := w.events[w.next]
		w.next++
		if c, ok := w.byID[event.Character]; ok {
			c.apply(event.Kind)
			applied = append(applied, event)
			if w.logger != nil {
				w.logger.Printf("t=%s %s: %s", w.clock, event.Character, event.Kind)
			}
		}
	}
	return applied
}
