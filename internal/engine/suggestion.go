package engine

import (
	"sort"
	"time"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/ident"
)

// Suggestion is an applicable template not yet committed to a due date.
type Suggestion struct {
	ID          string           `json:"id"`
	TemplateID  string           `json:"template_id"`
	Title       string           `json:"title"`
	Category    catalog.Category `json:"category"`
	Priority    catalog.Priority `json:"priority"`
	Description string           `json:"description,omitempty"`
}

// Suggestions lists the templates applicable to c at ref, by priority rank
// then title.
func (e *Engine) Suggestions(c child.Child, ref time.Time) []Suggestion {
	var out []Suggestion
	for _, t := range e.Applicable(c, ref) {
		out = append(out, Suggestion{
			ID:          ident.SuggestionID(c.ID, t.ID),
			TemplateID:  t.ID,
			Title:       t.Title,
			Category:    t.Category,
			Priority:    t.Priority,
			Description: t.Description,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank(); ri != rj {
			return ri < rj
		}
		return out[i].Title < out[j].Title
	})
	return out
}
