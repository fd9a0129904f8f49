package tracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/notexe/parentime/internal/child"
)

// ListChildren returns every child, ordered by the store.
func (t *Tracker) ListChildren(ctx context.Context) ([]child.Child, error) {
	return t.children.List(ctx)
}

// Child loads one child.
func (t *Tracker) Child(ctx context.Context, id string) (child.Child, error) {
	return t.getChild(ctx, id)
}

// AddChild registers a new child with a generated id.
func (t *Tracker) AddChild(ctx context.Context, firstName, lastName string, birthDate time.Time) (child.Child, error) {
	c := child.New(firstName, lastName, birthDate)
	if err := t.children.Add(ctx, c); err != nil {
		return child.Child{}, err
	}
	log.Printf("[tracker] Added child %s (%s)", c.ID, c.FullName())
	return c, nil
}

// UpdateChild replaces a child's names and birth date.
func (t *Tracker) UpdateChild(ctx context.Context, c child.Child) error {
	return t.children.Update(ctx, c)
}

// DeleteChild removes a child together with its reminders, their pending
// notifications and its suggestion states.
func (t *Tracker) DeleteChild(ctx context.Context, id string) error {
	if _, err := t.getChild(ctx, id); err != nil {
		return err
	}

	reminders, err := t.reminders.ListForChild(ctx, id)
	if err != nil {
		return err
	}
	for _, r := range reminders {
		if err := t.lifecycle.Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("failed to delete reminder %s: %w", r.ID, err)
		}
	}

	if err := t.suggestions.ClearChild(ctx, id); err != nil {
		return err
	}
	if err := t.children.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[tracker] Deleted child %s and %d reminders", id, len(reminders))
	return nil
}
