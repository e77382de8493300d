package objective

// Substitution keys understood by the renderer.
const (
	KeyGoalInfos   = "[traitorgoalinfos]"
	KeyTraitorName = "[traitorname]"
	KeyStatusText  = "[statustext]"
)

// UnknownAssigneeName is the English text of UnknownName.
const UnknownAssigneeName = "(unknown)"

// UnknownName is the [traitorname] value before an assignee is bound.
// Localizing renderers translate it; String gives the English text.
type UnknownName struct{}

func (UnknownName) String() string { return UnknownAssigneeName }

// Templates names the message templates an Objective renders. Objective
// kinds customise their copy by overriding fields of DefaultTemplates.
type Templates struct {
	GoalInfoFormat     string
	Start              string
	StartServer        string
	EndSuccess         string
	EndSuccessDead     string
	EndSuccessDetained string
	EndFailure         string
	EndFailureDead     string
	EndFailureDetained string
}

// DefaultTemplates returns the stock traitor objective templates.
func DefaultTemplates() Templates {
	return Templates{
		GoalInfoFormat:     "traitor.objective.goal_info_format",
		Start:              "traitor.objective.start",
		StartServer:        "traitor.objective.start_server",
		EndSuccess:         "traitor.objective.end.success",
		EndSuccessDead:     "traitor.objective.end.success_dead",
		EndSuccessDetained: "traitor.objective.end.success_detained",
		EndFailure:         "traitor.objective.end.failure",
		EndFailureDead:     "traitor.objective.end.failure_dead",
		EndFailureDetained: "traitor.objective.end.failure_detained",
	}
}

func (t Templates) withDefaults() Templates {
	d := DefaultTemplates()
	fill := func(field *string, fallback string) {
		if *field == "" {
			*field = fallback
		}
	}
	fill(&t.GoalInfoFormat, d.GoalInfoFormat)
	fill(&t.Start, d.Start)
	fill(&t.StartServer, d.StartServer)
	fill(&t.EndSuccess, d.EndSuccess)
	fill(&t.EndSuccessDead, d.EndSuccessDead)
	fill(&t.EndSuccessDetained, d.EndSuccessDetained)
	fill(&t.EndFailure, d.EndFailure)
	fill(&t.EndFailureDead, d.EndFailureDead)
	fill(&t.EndFailureDetained, d.EndFailureDetained)
	return t
}

// RenderRequest asks a Renderer for one message. Keys and Values pair up by
// position; a value is a string, a Summary or an UnknownName.
type RenderRequest struct {
	TemplateID string
	Keys       []string
	Values     []any
	Gender     Gender
}

// Renderer turns a template ID and substitution data into final text.
type Renderer interface {
	Render(req RenderRequest) string
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(req RenderRequest) string

// Render calls f(req).
func (f RendererFunc) Render(req RenderRequest) string {
	return f(req)
}

// Config supplies an Objective's collaborators.
type Config struct {
	// Templates overrides message templates; empty fields use the defaults.
	Templates Templates
	// Renderer produces message text. Nil renders the bare template ID.
	Renderer Renderer
	// Replica marks a non-authoritative copy of the objective: state still
	// advances but no notification or objective-view update is sent.
	Replica bool
}

func (c Config) withDefaults() Config {
	c.Templates = c.Templates.withDefaults()
	if c.Renderer == nil {
		c.Renderer = RendererFunc(func(req RenderRequest) string { return req.TemplateID })
	}
	return c
}
