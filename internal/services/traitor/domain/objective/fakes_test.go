package objective

import (
	"strings"
	"time"
)

// fakeGoal completes after completeAfter updates; completeAfter < 0 never completes.
type fakeGoal struct {
	name          string
	declines      bool
	completeAfter int
	impossible    bool
	enemies       map[string]bool

	started bool
	updates int
	deltas  []time.Duration
}

func (g *fakeGoal) CanBeCompleted() bool { return !g.impossible }

func (g *fakeGoal) IsCompleted() bool {
	return g.completeAfter >= 0 && g.updates >= g.completeAfter
}

func (g *fakeGoal) IsEnemyOf(actor Actor) bool { return g.enemies[actor.ActorID()] }

func (g *fakeGoal) StatusText() string { return g.name + " status" }

func (g *fakeGoal) CompletedText() string { return g.name + " done" }

func (g *fakeGoal) Start(Assignee) bool {
	g.started = true
	return !g.declines
}

func (g *fakeGoal) Update(delta time.Duration) {
	g.updates++
	g.deltas = append(g.deltas, delta)
}

type actorID string

func (a actorID) ActorID() string { return string(a) }

type fakeAssignee struct {
	id       string
	name     string
	gender   Gender
	dead     bool
	detained bool

	chat      []string
	boxes     []string
	summaries []Summary
}

func newAssignee(name string) *fakeAssignee {
	return &fakeAssignee{id: strings.ToLower(name), name: name, gender: GenderFemale}
}

func (a *fakeAssignee) ActorID() string { return a.id }
func (a *fakeAssignee) Name() string { return a.name }
func (a *fakeAssignee) Gender() Gender { return a.gender }
func (a *fakeAssignee) IsDead() bool { return a.dead }
func (a *fakeAssignee) IsDetained() bool { return a.detained }
func (a *fakeAssignee) SendChatMessage(text string) { a.chat = append(a.chat, text) }
func (a *fakeAssignee) SendChatMessageBox(text string) { a.boxes = append(a.boxes, text) }
func (a *fakeAssignee) UpdateCurrentObjective(s Summary) { a.summaries = append(a.summaries, s) }

func (a *fakeAssignee) messageCount() int {
	return len(a.chat) + len(a.boxes) + len(a.summaries)
}

type recordingRenderer struct {
	requests []RenderRequest
}

func (r *recordingRenderer) Render(req RenderRequest) string {
	r.requests = append(r.requests, req)
	return req.TemplateID
}

func (r *recordingRenderer) last() RenderRequest {
	return r.requests[len(r.requests)-1]
}
