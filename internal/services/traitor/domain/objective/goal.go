package objective

import "time"

// Gender is the pronoun hint forwarded to the renderer.
type Gender string

const (
	GenderNeutral Gender = "neutral"
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// Actor identifies a character in the session.
type Actor interface {
	ActorID() string
}

// Assignee is the traitor an Objective is bound to. It is both the subject of
// the end-of-mission checks and the sink for every notification.
type Assignee interface {
	Actor
	Name() string
	Gender() Gender
	IsDead() bool
	// IsDetained reports whether the assignee is restrained or otherwise
	// incapacitated by other players.
	IsDetained() bool

	// SendChatMessage delivers a transient, log-style message.
	SendChatMessage(text string)
	// SendChatMessageBox delivers a modal message that demands attention.
	SendChatMessageBox(text string)
	// UpdateCurrentObjective replaces the assignee's persistent objective view.
	UpdateCurrentObjective(summary Summary)
}

// Goal is one independently trackable sub-task of an Objective.
type Goal interface {
	// CanBeCompleted reports whether the goal is still achievable.
	CanBeCompleted() bool
	IsCompleted() bool
	// IsEnemyOf reports whether actor works against this goal.
	IsEnemyOf(actor Actor) bool
	StatusText() string
	// CompletedText is sent once, on the tick the goal completes.
	CompletedText() string
	// Start activates the goal. False means the goal is moot for this
	// assignee; the Objective then treats it as already completed.
	Start(assignee Assignee) bool
	Update(delta time.Duration)
}
