// Package render turns objective template IDs into localized text using the
// embedded catalog registered with x/text/message.
package render

import (
	"strings"

	"github.com/louisbranch/traitorops/internal/platform/i18n"
	"github.com/louisbranch/traitorops/internal/platform/i18n/catalog"
	"github.com/louisbranch/traitorops/internal/services/traitor/domain/objective"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// UnknownNameID is the catalog entry for objective.UnknownName.
const UnknownNameID = "core.unknown_name"

// Pronoun tokens substituted after the template keys.
const (
	TokenPronoun           = "[pronoun]"
	TokenPronounPossessive = "[pronounpossessive]"
	TokenPronounReflexive  = "[pronounreflexive]"
)

var pronounForms = []struct {
	token string
	form  string
}{
	{token: TokenPronoun, form: "subject"},
	{token: TokenPronounPossessive, form: "possessive"},
	{token: TokenPronounReflexive, form: "reflexive"},
}

// Renderer renders objective messages for one locale.
type Renderer struct {
	tag     language.Tag
	printer *message.Printer
}

var _ objective.Renderer = (*Renderer)(nil)

// New returns a renderer for locale. Unsupported locales fall back to the
// default catalog locale.
func New(locale string) *Renderer {
	// Ensure the embedded catalog is registered before printing.
	_ = catalog.Default()
	tag, _ := i18n.ParseTag(locale)
	return &Renderer{tag: tag, printer: message.NewPrinter(tag)}
}

// Locale returns the resolved language tag.
func (r *Renderer) Locale() language.Tag {
	return r.tag
}

// Render resolves req.TemplateID, substitutes req.Keys in order, then fills
// pronoun tokens for req.Gender. An unknown template renders as its ID.
func (r *Renderer) Render(req objective.RenderRequest) string {
	text := r.lookup(req.TemplateID)
	for i, key := range req.Keys {
		if i >= len(req.Values) {
			break
		}
		text = strings.ReplaceAll(text, key, r.value(req.Values[i]))
	}
	return r.pronouns(text, req.Gender)
}

// Summary renders each goal entry through the summary format, one per line.
func (r *Renderer) Summary(summary objective.Summary) string {
	format := r.lookup(summary.FormatID)
	lines := make([]string, 0, summary.Len())
	for _, goal := range summary.Goals {
		lines = append(lines, strings.ReplaceAll(format, objective.KeyStatusText, goal.StatusText))
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) value(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case objective.Summary:
		return r.Summary(v)
	case objective.UnknownName:
		return r.lookup(UnknownNameID)
	case interface{ String() string }:
		return v.String()
	default:
		return ""
	}
}

func (r *Renderer) pronouns(text string, gender objective.Gender) string {
	if !strings.Contains(text, "[pronoun") {
		return text
	}
	switch gender {
	case objective.GenderMale, objective.GenderFemale:
	default:
		gender = objective.GenderNeutral
	}
	for _, p := range pronounForms {
		if !strings.Contains(text, p.token) {
			continue
		}
		word := r.lookup("core.pronoun." + string(gender) + "." + p.form)
		text = strings.ReplaceAll(text, p.token, word)
	}
	return text
}

// lookup prints id through the catalog. Template IDs carry no format verbs,
// so a missing entry comes back unchanged.
func (r *Renderer) lookup(id string) string {
	if id == "" {
		return ""
	}
	return r.printer.Sprintf(id)
}
