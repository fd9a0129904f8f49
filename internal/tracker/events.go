package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/notexe/parentime/internal/engine"
	"github.com/notexe/parentime/internal/ident"
	"github.com/notexe/parentime/internal/reminder"
)

// Suggestions lists the templates applicable to the child today, minus the
// ones the user ignored or already activated.
func (t *Tracker) Suggestions(ctx context.Context, childID string) ([]engine.Suggestion, error) {
	c, err := t.getChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	states, err := t.suggestions.ForChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	var out []engine.Suggestion
	for _, s := range t.engine.Suggestions(c, t.Now()) {
		if _, handled := states[s.TemplateID]; handled {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// IgnoreSuggestion hides a template's suggestion for the child.
func (t *Tracker) IgnoreSuggestion(ctx context.Context, childID, templateID string) error {
	if _, err := t.getChild(ctx, childID); err != nil {
		return err
	}
	if _, err := t.requireTemplate(templateID); err != nil {
		return err
	}
	return t.suggestions.Set(ctx, childID, templateID, reminder.SuggestionIgnored)
}

// RestoreSuggestion makes an ignored or activated suggestion visible again.
func (t *Tracker) RestoreSuggestion(ctx context.Context, childID, templateID string) error {
	if _, err := t.getChild(ctx, childID); err != nil {
		return err
	}
	return t.suggestions.Clear(ctx, childID, templateID)
}

// ActivateSuggestion commits a suggestion to its next occurrence within the
// activation horizon: the occurrence is promoted to a reminder, the
// reminder is activated and the suggestion is marked activated. When
// notifications are not authorized the promoted reminder stays inactive
// and reminder.ErrPermissionDenied is returned with it.
func (t *Tracker) ActivateSuggestion(ctx context.Context, childID, templateID string) (reminder.ScheduledReminder, error) {
	c, err := t.getChild(ctx, childID)
	if err != nil {
		return reminder.ScheduledReminder{}, err
	}
	if _, err := t.requireTemplate(templateID); err != nil {
		return reminder.ScheduledReminder{}, err
	}

	next := t.engine.NextOccurrencePerSeries(c, t.Now(), engine.Months(t.opts.ActivationHorizonMonths), false)
	var (
		occ   engine.Occurrence
		found bool
	)
	for _, o := range next {
		if o.TemplateID == templateID {
			occ, found = o, true
			break
		}
	}
	if !found {
		return reminder.ScheduledReminder{}, fmt.Errorf("%w for %s within %d months", ErrNoOccurrence, templateID, t.opts.ActivationHorizonMonths)
	}

	r, err := t.lifecycle.Promote(ctx, occ, c.ID)
	if err != nil {
		return reminder.ScheduledReminder{}, err
	}

	r, err = t.lifecycle.Activate(ctx, r.ID)
	if err != nil {
		return r, err
	}

	if err := t.suggestions.Set(ctx, c.ID, templateID, reminder.SuggestionActivated); err != nil {
		return r, err
	}
	log.Printf("[tracker] Activated %s for child %s (due %s)", templateID, c.ID, ident.Day(r.DueDate))
	return r, nil
}

// UpcomingEvents returns the next occurrence of each series or standalone
// template within the configured horizon. With onlyActivated, events whose
// template has no active reminder are dropped.
func (t *Tracker) UpcomingEvents(ctx context.Context, childID string, onlyActivated bool) ([]engine.Occurrence, error) {
	c, err := t.getChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	events := t.engine.NextOccurrencePerSeries(c, t.Now(), engine.Months(t.opts.HorizonMonths), false)
	if !onlyActivated {
		return events, nil
	}

	reminders, err := t.reminders.ListForChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	return reminder.FilterByActivation(events, reminders), nil
}

// OverdueEvents returns the past-due required occurrences that have not
// been completed as a reminder on the same day.
func (t *Tracker) OverdueEvents(ctx context.Context, childID string) ([]engine.Occurrence, error) {
	c, err := t.getChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	reminders, err := t.reminders.ListForChild(ctx, childID)
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool)
	for _, r := range reminders {
		if r.IsCompleted && !r.IsManual() {
			done[ident.OccurrenceID(*r.TemplateID, r.DueDate)] = true
		}
	}

	var out []engine.Occurrence
	for _, o := range t.engine.Overdue(c, t.Now()) {
		if !done[o.ID] {
			out = append(out, o)
		}
	}
	return out, nil
}

// IsPermissionDenied reports whether err is a refused notification
// authorization, which callers present as a recoverable state.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, reminder.ErrPermissionDenied)
}
