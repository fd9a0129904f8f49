package engine

import (
	"time"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
)

// Overdue returns the past occurrences of required, scheduled templates,
// oldest first with ties broken by title.
func (e *Engine) Overdue(c child.Child, ref time.Time) []Occurrence {
	var out []Occurrence
	for _, o := range e.All(c, ref) {
		if o.Priority != catalog.PriorityRequired {
			continue
		}
		if o.DueDate.Before(ref) {
			out = append(out, o)
		}
	}
	sortByDueDate(out)
	return out
}
