package engine

import (
	"time"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
)

// monthTolerance widens every month target and range by one month on each
// side.
const monthTolerance = 1

// IsApplicable reports whether t applies to c at ref. Templates with a
// schedule are judged on age in months only; the others on age in years
// and birth-date bounds.
func IsApplicable(t catalog.Template, c child.Child, ref time.Time, loc *time.Location) bool {
	if t.HasSchedule() {
		return scheduleApplies(t.Schedule, c, ref, loc)
	}
	return conditionsApply(t.Conditions, c, ref, loc)
}

func scheduleApplies(s *catalog.Schedule, c child.Child, ref time.Time, loc *time.Location) bool {
	if c.BirthDate.IsZero() || c.BirthDate.After(ref) {
		return false
	}
	months, ok := c.AgeInMonths(ref, loc)
	if !ok {
		return false
	}

	if len(s.DueAgeMonths) > 0 {
		for _, target := range s.DueAgeMonths {
			if abs(months-target) <= monthTolerance {
				return true
			}
		}
		return false
	}

	if r := s.DueAgeMonthsRange; r != nil {
		return months >= r.Min-monthTolerance && months <= r.Max+monthTolerance
	}

	// Neither targets nor a range.
	return false
}

func conditionsApply(cond catalog.Conditions, c child.Child, ref time.Time, loc *time.Location) bool {
	if cond.MinAge != nil || cond.MaxAge != nil {
		age, ok := c.AgeInYears(ref, loc)
		if !ok {
			return false
		}
		if cond.MinAge != nil && age < *cond.MinAge {
			return false
		}
		if cond.MaxAge != nil && age > *cond.MaxAge {
			return false
		}
	}

	if cond.MinBirthDate == "" && cond.MaxBirthDate == "" {
		return true
	}
	if c.BirthDate.IsZero() {
		return false
	}
	birth := child.StartOfDay(c.BirthDate, loc)

	if lo, ok := parseBound(cond.MinBirthDate, loc); ok && birth.Before(lo) {
		return false
	}
	// Inclusive, like the lower bound.
	if hi, ok := parseBound(cond.MaxBirthDate, loc); ok && birth.After(hi) {
		return false
	}
	return true
}

// parseBound reads a "YYYY-MM-DD" bound; a missing or unparsable bound is
// ignored.
func parseBound(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := child.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Applicable returns the catalog templates that apply to c at ref, in
// catalog order.
func (e *Engine) Applicable(c child.Child, ref time.Time) []catalog.Template {
	var out []catalog.Template
	for _, t := range e.catalog.Templates() {
		if IsApplicable(t, c, ref, e.loc) {
			out = append(out, t)
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
