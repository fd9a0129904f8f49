package tracker

import (
	"context"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/dashboard"
	"github.com/notexe/parentime/internal/export"
	"github.com/notexe/parentime/internal/notify"
	"github.com/notexe/parentime/internal/reminder"
)

// Reminders lists a child's reminders, or everyone's when childID is
// empty, sorted by due date. A non-empty category narrows the list.
func (t *Tracker) Reminders(ctx context.Context, childID string, category catalog.Category) ([]reminder.ScheduledReminder, error) {
	var (
		list []reminder.ScheduledReminder
		err  error
	)
	if childID == "" {
		list, err = t.reminders.ListAll(ctx)
	} else {
		if _, err := t.getChild(ctx, childID); err != nil {
			return nil, err
		}
		list, err = t.reminders.ListForChild(ctx, childID)
	}
	if err != nil {
		return nil, err
	}

	if category != "" {
		return reminder.FilterByCategory(list, category), nil
	}
	reminder.SortByDueDate(list)
	return list, nil
}

// OverdueReminders lists every open reminder past its due date, oldest
// first.
func (t *Tracker) OverdueReminders(ctx context.Context) ([]reminder.ScheduledReminder, error) {
	all, err := t.reminders.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := t.Now()
	var out []reminder.ScheduledReminder
	for _, r := range all {
		if r.IsOverdue(now) {
			out = append(out, r)
		}
	}
	reminder.SortByDueDate(out)
	return out, nil
}

// AddReminder stores a hand-made inactive reminder.
func (t *Tracker) AddReminder(ctx context.Context, d reminder.Draft) (reminder.ScheduledReminder, error) {
	if d.Category == "" {
		d.Category = catalog.CategoryCustom
	}
	if d.Priority == "" {
		d.Priority = catalog.PriorityInfo
	}
	return t.lifecycle.Create(ctx, d)
}

func (t *Tracker) ActivateReminder(ctx context.Context, id string) (reminder.ScheduledReminder, error) {
	return t.lifecycle.Activate(ctx, id)
}

func (t *Tracker) DeactivateReminder(ctx context.Context, id string) (reminder.ScheduledReminder, error) {
	return t.lifecycle.Deactivate(ctx, id)
}

func (t *Tracker) CompleteReminder(ctx context.Context, id string) (reminder.ScheduledReminder, error) {
	return t.lifecycle.Complete(ctx, id)
}

func (t *Tracker) DeleteReminder(ctx context.Context, id string) error {
	return t.lifecycle.Delete(ctx, id)
}

// Dashboard prioritizes the child's visible suggestions and open
// reminders.
func (t *Tracker) Dashboard(ctx context.Context, childID string) (dashboard.Result, error) {
	suggestions, err := t.Suggestions(ctx, childID)
	if err != nil {
		return dashboard.Result{}, err
	}
	reminders, err := t.reminders.ListForChild(ctx, childID)
	if err != nil {
		return dashboard.Result{}, err
	}

	items := make([]dashboard.Item, 0, len(suggestions)+len(reminders))
	for _, r := range reminders {
		if !r.IsCompleted {
			items = append(items, dashboard.FromReminder(r))
		}
	}
	for _, s := range suggestions {
		items = append(items, dashboard.FromSuggestion(s))
	}
	return dashboard.Prioritize(items, t.opts.Dashboard, t.Now()), nil
}

// Notifications lists the outbox, pending and sent.
func (t *Tracker) Notifications(ctx context.Context) ([]notify.Entry, error) {
	return t.outbox.List(ctx)
}

// NotificationStatus reports the current delivery authorization.
func (t *Tracker) NotificationStatus(ctx context.Context) (notify.AuthorizationStatus, error) {
	return t.outbox.AuthorizationStatus(ctx)
}

// Export gathers every child and reminder for a workbook export.
func (t *Tracker) Export(ctx context.Context) (export.Schedule, error) {
	children, err := t.ListChildren(ctx)
	if err != nil {
		return export.Schedule{}, err
	}
	reminders, err := t.Reminders(ctx, "", "")
	if err != nil {
		return export.Schedule{}, err
	}
	return export.Schedule{
		Children:  children,
		Reminders: reminders,
		At:        t.Now(),
		Location:  t.Location(),
	}, nil
}
