package engine

import (
	"sort"
	"time"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/ident"
)

// Occurrence is one dated instance of a scheduled template for a child.
// It is computed on demand and never stored.
type Occurrence struct {
	ID          string           `json:"id"`
	TemplateID  string           `json:"template_id"`
	SeriesID    string           `json:"series_id,omitempty"`
	Title       string           `json:"title"`
	Category    catalog.Category `json:"category"`
	Priority    catalog.Priority `json:"priority"`
	DueDate     time.Time        `json:"due_date"`
	Description string           `json:"description,omitempty"`
}

// GroupKey is the series id, or the template id for standalone templates.
func (o Occurrence) GroupKey() string {
	if o.SeriesID != "" {
		return o.SeriesID
	}
	return o.TemplateID
}

// Window selects which generated dates are kept. FutureOnly drops dates
// before the reference; MaxMonths, when set, drops dates after
// reference + MaxMonths months (inclusive bound).
type Window struct {
	FutureOnly bool
	MaxMonths  *int
}

// Months is a helper for building a bounded Window.
func Months(n int) *int {
	return &n
}

// Occurrences expands every scheduled template in the catalog for c,
// keeps the dates inside w and returns them in canonical order.
// Eligibility is not consulted: the schedule alone decides the dates.
func (e *Engine) Occurrences(c child.Child, ref time.Time, w Window) []Occurrence {
	if c.BirthDate.IsZero() {
		return nil
	}

	var upper time.Time
	if w.MaxMonths != nil {
		upper = child.AddMonths(ref, *w.MaxMonths, e.loc)
	}

	var out []Occurrence
	for _, t := range e.catalog.Templates() {
		seen := make(map[string]bool)
		for _, due := range e.dueDates(t, c.BirthDate) {
			if w.FutureOnly && due.Before(ref) {
				continue
			}
			if w.MaxMonths != nil && due.After(upper) {
				continue
			}

			o := newOccurrence(t, due)
			if seen[o.ID] {
				continue
			}
			seen[o.ID] = true
			out = append(out, o)
		}
	}

	SortCanonical(out)
	return out
}

// Upcoming returns occurrences due at or after ref, optionally bounded by a
// horizon in months.
func (e *Engine) Upcoming(c child.Child, ref time.Time, maxMonths *int) []Occurrence {
	return e.Occurrences(c, ref, Window{FutureOnly: true, MaxMonths: maxMonths})
}

// All returns every occurrence, past or future.
func (e *Engine) All(c child.Child, ref time.Time) []Occurrence {
	return e.Occurrences(c, ref, Window{})
}

// dueDates lists the schedule's dates for a birth date. Targets win over a
// range; a range contributes its midpoint month, rounded down.
func (e *Engine) dueDates(t catalog.Template, birth time.Time) []time.Time {
	s := t.Schedule
	if s.Empty() {
		return nil
	}

	if len(s.DueAgeMonths) > 0 {
		dates := make([]time.Time, 0, len(s.DueAgeMonths))
		for _, m := range s.DueAgeMonths {
			dates = append(dates, child.AddMonths(birth, m, e.loc))
		}
		return dates
	}

	r := s.DueAgeMonthsRange
	mid := r.Min + r.Max
	if mid < 0 && mid%2 != 0 {
		mid--
	}
	return []time.Time{child.AddMonths(birth, mid/2, e.loc)}
}

func newOccurrence(t catalog.Template, due time.Time) Occurrence {
	return Occurrence{
		ID:          ident.OccurrenceID(t.ID, due),
		TemplateID:  t.ID,
		SeriesID:    t.SeriesID,
		Title:       t.Title,
		Category:    t.Category,
		Priority:    t.Priority,
		DueDate:     due,
		Description: t.Description,
	}
}

// SortCanonical orders occurrences by priority rank, then due date, then
// title. Every list the engine returns uses this order unless documented
// otherwise.
func SortCanonical(occ []Occurrence) {
	sort.SliceStable(occ, func(i, j int) bool {
		a, b := occ[i], occ[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra < rb
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.Title < b.Title
	})
}

// sortByDueDate orders by due date, then title.
func sortByDueDate(occ []Occurrence) {
	sort.SliceStable(occ, func(i, j int) bool {
		a, b := occ[i], occ[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.Title < b.Title
	})
}
