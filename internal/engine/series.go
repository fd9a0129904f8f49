package engine

import (
	"time"

	"github.com/notexe/parentime/internal/child"
)

// NextOccurrencePerSeries keeps one occurrence per series (or per template
// when a template has no series): the first one due at or after ref. When
// every date of a group is past, includeOverdue selects the latest past one
// instead; otherwise the group is dropped. maxMonths bounds the dates from
// above only, so past doses stay visible to the group.
func (e *Engine) NextOccurrencePerSeries(c child.Child, ref time.Time, maxMonths *int, includeOverdue bool) []Occurrence {
	all := e.Occurrences(c, ref, Window{MaxMonths: maxMonths})

	var order []string
	groups := make(map[string][]Occurrence)
	for _, o := range all {
		key := o.GroupKey()
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], o)
	}

	var out []Occurrence
	for _, key := range order {
		group := groups[key]
		sortByDueDate(group)

		if next, ok := firstDue(group, ref); ok {
			out = append(out, next)
			continue
		}
		if includeOverdue && len(group) > 0 {
			out = append(out, group[len(group)-1])
		}
	}

	SortCanonical(out)
	return out
}

func firstDue(group []Occurrence, ref time.Time) (Occurrence, bool) {
	for _, o := range group {
		if !o.DueDate.Before(ref) {
			return o, true
		}
	}
	return Occurrence{}, false
}
