package objective

// StartMessageText renders the briefing shown to the assignee.
func (o *Objective) StartMessageText() string {
	keys, values := o.startSubstitutions()
	return o.render(o.cfg.Templates.Start, keys, values)
}

// StartMessageServerText renders the briefing variant for server operators,
// which also names the traitor.
func (o *Objective) StartMessageServerText() string {
	keys, values := o.startSubstitutions()
	keys = append(keys, KeyTraitorName)
	values = append(values, o.assigneeName())
	return o.render(o.cfg.Templates.StartServer, keys, values)
}

// EndMessageText renders the end-of-objective message for the current
// Outcome.
func (o *Objective) EndMessageText() string {
	keys := []string{KeyTraitorName, KeyGoalInfos}
	values := []any{o.assigneeName(), o.GoalInfos()}
	return o.render(o.endTemplateID(), keys, values)
}

// Outcome classifies how an objective ended for its assignee.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeSuccessDead     Outcome = "success_dead"
	OutcomeSuccessDetained Outcome = "success_detained"
	OutcomeFailure         Outcome = "failure"
	OutcomeFailureDead     Outcome = "failure_dead"
	OutcomeFailureDetained Outcome = "failure_detained"
)

// Outcome reports the current end classification: completion first, then
// death, then detention.
func (o *Objective) Outcome() Outcome {
	dead, detained := false, false
	if o.assignee != nil {
		dead = o.assignee.IsDead()
		detained = o.assignee.IsDetained()
	}
	if o.IsCompleted() {
		switch {
		case dead:
			return OutcomeSuccessDead
		case detained:
			return OutcomeSuccessDetained
		default:
			return OutcomeSuccess
		}
	}
	switch {
	case dead:
		return OutcomeFailureDead
	case detained:
		return OutcomeFailureDetained
	default:
		return OutcomeFailure
	}
}

func (o *Objective) endTemplateID() string {
	t := o.cfg.Templates
	switch o.Outcome() {
	case OutcomeSuccess:
		return t.EndSuccess
	case OutcomeSuccessDead:
		return t.EndSuccessDead
	case OutcomeSuccessDetained:
		return t.EndSuccessDetained
	case OutcomeFailureDead:
		return t.EndFailureDead
	case OutcomeFailureDetained:
		return t.EndFailureDetained
	default:
		return t.EndFailure
	}
}

func (o *Objective) startSubstitutions() ([]string, []any) {
	return []string{KeyGoalInfos}, []any{o.GoalInfos()}
}

func (o *Objective) render(templateID string, keys []string, values []any) string {
	return o.cfg.Renderer.Render(RenderRequest{
		TemplateID: templateID,
		Keys:       keys,
		Values:     values,
		Gender:     o.assigneeGender(),
	})
}

func (o *Objective) assigneeName() any {
	if o.assignee == nil {
		return UnknownName{}
	}
	return o.assignee.Name()
}

func (o *Objective) assigneeGender() Gender {
	if o.assignee == nil {
		return GenderNeutral
	}
	return o.assignee.Gender()
}
