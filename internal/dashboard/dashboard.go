// Package dashboard splits suggestions and reminders into what needs
// attention now and what comes next.
package dashboard

import (
	"sort"
	"time"

	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/engine"
	"github.com/notexe/parentime/internal/reminder"
)

// nowWindowDays is how far ahead a reminder still counts as "now".
const nowWindowDays = 7

// Kind tags the payload an Item carries.
type Kind int

const (
	KindSuggestion Kind = iota
	KindReminder
)

func (k Kind) String() string {
	if k == KindSuggestion {
		return "suggestion"
	}
	return "reminder"
}

// Item is either a suggestion or a reminder; Kind says which payload is
// set.
type Item struct {
	Kind       Kind                        `json:"kind"`
	Suggestion *engine.Suggestion          `json:"suggestion,omitempty"`
	Reminder   *reminder.ScheduledReminder `json:"reminder,omitempty"`
}

// FromSuggestion wraps a suggestion.
func FromSuggestion(s engine.Suggestion) Item {
	return Item{Kind: KindSuggestion, Suggestion: &s}
}

// FromReminder wraps a reminder.
func FromReminder(r reminder.ScheduledReminder) Item {
	return Item{Kind: KindReminder, Reminder: &r}
}

// Title is the display title of either variant.
func (i Item) Title() string {
	switch i.Kind {
	case KindSuggestion:
		return i.Suggestion.Title
	default:
		return i.Reminder.Title
	}
}

// Options caps the size of each bucket.
type Options struct {
	MaxNow      int
	MaxUpcoming int
}

// DefaultOptions keeps three items per bucket.
func DefaultOptions() Options {
	return Options{MaxNow: 3, MaxUpcoming: 3}
}

// Result is the prioritized dashboard.
type Result struct {
	Now      []Item `json:"now"`
	Upcoming []Item `json:"upcoming"`
}

// Prioritize puts reminders due within seven calendar days of ref (inclusive)
// into Now, followed by every suggestion, and later reminders into
// Upcoming. Reminders are ordered by due date in both buckets.
func Prioritize(items []Item, opts Options, ref time.Time) Result {
	loc := ref.Location()
	// First instant that no longer counts as "now".
	cutoff := child.StartOfDay(child.AddDays(ref, nowWindowDays+1, loc), loc)

	var soon, later []reminder.ScheduledReminder
	var suggestions []Item
	for _, item := range items {
		switch item.Kind {
		case KindSuggestion:
			suggestions = append(suggestions, item)
		case KindReminder:
			if item.Reminder.DueDate.Before(cutoff) {
				soon = append(soon, *item.Reminder)
			} else {
				later = append(later, *item.Reminder)
			}
		}
	}

	sortReminders(soon)
	sortReminders(later)

	now := make([]Item, 0, len(soon)+len(suggestions))
	for _, r := range soon {
		now = append(now, FromReminder(r))
	}
	now = append(now, suggestions...)

	upcoming := make([]Item, 0, len(later))
	for _, r := range later {
		upcoming = append(upcoming, FromReminder(r))
	}

	return Result{
		Now:      truncate(now, opts.MaxNow),
		Upcoming: truncate(upcoming, opts.MaxUpcoming),
	}
}

func sortReminders(rs []reminder.ScheduledReminder) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].DueDate.Before(rs[j].DueDate)
	})
}

func truncate(items []Item, limit int) []Item {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
