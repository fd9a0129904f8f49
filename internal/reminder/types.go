package reminder

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/engine"
	"github.com/notexe/parentime/internal/ident"
)

var (
	ErrNotFound          = errors.New("reminder not found")
	ErrPermissionDenied  = errors.New("notification permission denied")
	ErrInvalidTransition = errors.New("invalid reminder transition")
	ErrInvalidReminder   = errors.New("invalid reminder")
)

// Status values derived from the lifecycle flags.
const (
	StatusInactive  = "inactive"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// ScheduledReminder is a persisted reminder for one child. TemplateID is
// nil for reminders the user created by hand.
type ScheduledReminder struct {
	ID          string           `json:"id"`
	ChildID     string           `json:"child_id"`
	TemplateID  *string          `json:"template_id,omitempty"`
	Title       string           `json:"title"`
	Category    catalog.Category `json:"category"`
	Priority    catalog.Priority `json:"priority"`
	DueDate     time.Time        `json:"due_date"`
	Description string           `json:"description,omitempty"`
	IsActivated bool             `json:"is_activated"`
	IsCompleted bool             `json:"is_completed"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// FromOccurrence promotes an occurrence into an inactive reminder.
func FromOccurrence(o engine.Occurrence, childID string) ScheduledReminder {
	templateID := o.TemplateID
	return ScheduledReminder{
		ID:          uuid.NewString(),
		ChildID:     childID,
		TemplateID:  &templateID,
		Title:       o.Title,
		Category:    o.Category,
		Priority:    o.Priority,
		DueDate:     o.DueDate,
		Description: o.Description,
	}
}

// Draft is the user input for a hand-made reminder.
type Draft struct {
	ChildID     string
	Title       string
	Category    catalog.Category
	Priority    catalog.Priority
	DueDate     time.Time
	Description string
}

func (d Draft) validate() error {
	if d.ChildID == "" {
		return fmt.Errorf("%w: child id is required", ErrInvalidReminder)
	}
	if d.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidReminder)
	}
	if d.DueDate.IsZero() {
		return fmt.Errorf("%w: due date is required", ErrInvalidReminder)
	}
	return nil
}

// IsManual reports whether the reminder was created by hand.
func (r ScheduledReminder) IsManual() bool {
	return r.TemplateID == nil
}

// TemplateKey is the template id, or the reminder's own id for manual
// reminders. It keys the reminder's notification.
func (r ScheduledReminder) TemplateKey() string {
	if r.TemplateID != nil {
		return *r.TemplateID
	}
	return r.ID
}

// NotificationID is the stable key of the reminder's notification.
func (r ScheduledReminder) NotificationID() string {
	return ident.NotificationID(r.ChildID, r.TemplateKey(), r.DueDate)
}

// Status names the lifecycle state.
func (r ScheduledReminder) Status() string {
	switch {
	case r.IsCompleted:
		return StatusCompleted
	case r.IsActivated:
		return StatusActive
	default:
		return StatusInactive
	}
}

// IsOverdue reports whether the reminder is due before at and still open.
func (r ScheduledReminder) IsOverdue(at time.Time) bool {
	return !r.IsCompleted && r.DueDate.Before(at)
}

// LateSince is how long an overdue reminder has been late. Months is set
// when at least one whole month elapsed, otherwise Days when at least one
// whole day elapsed. Both zero means "overdue" without a duration.
type LateSince struct {
	Months int
	Days   int
}

// String renders the lateness for display.
func (l LateSince) String() string {
	switch {
	case l.Months == 1:
		return "Overdue for 1 month"
	case l.Months > 1:
		return fmt.Sprintf("Overdue for %d months", l.Months)
	case l.Days == 1:
		return "Overdue for 1 day"
	case l.Days > 1:
		return fmt.Sprintf("Overdue for %d days", l.Days)
	default:
		return "Overdue"
	}
}

// LateSince measures lateness at at in loc. ok is false when the reminder
// is not overdue.
func (r ScheduledReminder) LateSince(at time.Time, loc *time.Location) (LateSince, bool) {
	if !r.IsOverdue(at) {
		return LateSince{}, false
	}
	if months, _ := child.MonthsBetween(r.DueDate, at, loc); months >= 1 {
		return LateSince{Months: months}, true
	}
	if days := child.DaysBetween(r.DueDate, at, loc); days >= 1 {
		return LateSince{Days: days}, true
	}
	return LateSince{}, true
}

// LateSinceText is LateSince rendered, or "" when not overdue.
func (r ScheduledReminder) LateSinceText(at time.Time, loc *time.Location) string {
	l, ok := r.LateSince(at, loc)
	if !ok {
		return ""
	}
	return l.String()
}

// FilterByActivation keeps the occurrences whose template has an open
// reminder that is activated. When several open reminders share a
// template, the earliest-due one decides.
func FilterByActivation(occurrences []engine.Occurrence, reminders []ScheduledReminder) []engine.Occurrence {
	open := make([]ScheduledReminder, 0, len(reminders))
	for _, r := range reminders {
		if !r.IsCompleted && r.TemplateID != nil {
			open = append(open, r)
		}
	}
	SortByDueDate(open)

	activated := make(map[string]bool)
	for _, r := range open {
		if _, seen := activated[*r.TemplateID]; !seen {
			activated[*r.TemplateID] = r.IsActivated
		}
	}

	var out []engine.Occurrence
	for _, o := range occurrences {
		if activated[o.TemplateID] {
			out = append(out, o)
		}
	}
	return out
}

// FilterByCategory keeps reminders in cat, sorted by due date.
func FilterByCategory(reminders []ScheduledReminder, cat catalog.Category) []ScheduledReminder {
	var out []ScheduledReminder
	for _, r := range reminders {
		if r.Category == cat {
			out = append(out, r)
		}
	}
	SortByDueDate(out)
	return out
}

// SortByDueDate orders reminders by due date, then title.
func SortByDueDate(reminders []ScheduledReminder) {
	sort.SliceStable(reminders, func(i, j int) bool {
		a, b := reminders[i], reminders[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.Title < b.Title
	})
}
