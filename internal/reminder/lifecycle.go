package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/engine"
	"github.com/notexe/parentime/internal/ident"
	"github.com/notexe/parentime/internal/notify"
)

// ChildLookup resolves the child a reminder belongs to.
type ChildLookup interface {
	Get(ctx context.Context, id string) (child.Child, error)
}

// Options tune the lifecycle.
type Options struct {
	// NotificationHour and NotificationMinute set the time of day a
	// notification fires on the due date.
	NotificationHour   int
	NotificationMinute int
	// CancelOnComplete also cancels the pending notification when a
	// reminder is completed.
	CancelOnComplete bool
	Location         *time.Location
	Now              func() time.Time
}

// DefaultOptions fire at 09:00 local time and keep notifications on
// completion.
func DefaultOptions() Options {
	return Options{
		NotificationHour: 9,
		Location:         time.Local,
		Now:              time.Now,
	}
}

// Lifecycle drives the reminder state machine:
// inactive <-> active, and either of them -> completed (terminal).
// Mutations of one child's reminders are serialized.
type Lifecycle struct {
	repo     Repository
	auth     notify.Authority
	children ChildLookup
	opts     Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLifecycle wires the lifecycle to its collaborators.
func NewLifecycle(repo Repository, auth notify.Authority, children ChildLookup, opts Options) *Lifecycle {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Lifecycle{
		repo:     repo,
		auth:     auth,
		children: children,
		opts:     opts,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (l *Lifecycle) lock(childID string) func() {
	l.mu.Lock()
	m, ok := l.locks[childID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[childID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Promote stores an occurrence as an inactive reminder. When an open
// reminder already exists for the same child, template and calendar day,
// that one is returned instead.
func (l *Lifecycle) Promote(ctx context.Context, o engine.Occurrence, childID string) (ScheduledReminder, error) {
	defer l.lock(childID)()

	existing, err := l.repo.ListForChild(ctx, childID)
	if err != nil {
		return ScheduledReminder{}, err
	}
	for _, r := range existing {
		if r.IsCompleted || r.TemplateID == nil {
			continue
		}
		if *r.TemplateID == o.TemplateID && ident.SameDay(r.DueDate, o.DueDate) {
			return r, nil
		}
	}

	r := FromOccurrence(o, childID)
	r.CreatedAt = l.opts.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	if err := l.repo.Save(ctx, r); err != nil {
		return ScheduledReminder{}, err
	}
	log.Printf("[lifecycle] Promoted %s for child %s (due %s)", o.TemplateID, childID, ident.Day(o.DueDate))
	return r, nil
}

// Create stores a hand-made inactive reminder.
func (l *Lifecycle) Create(ctx context.Context, d Draft) (ScheduledReminder, error) {
	if err := d.validate(); err != nil {
		return ScheduledReminder{}, err
	}
	if _, err := l.children.Get(ctx, d.ChildID); err != nil {
		return ScheduledReminder{}, err
	}

	defer l.lock(d.ChildID)()

	now := l.opts.Now().UTC()
	r := ScheduledReminder{
		ID:          uuid.NewString(),
		ChildID:     d.ChildID,
		Title:       d.Title,
		Category:    d.Category,
		Priority:    d.Priority,
		DueDate:     d.DueDate,
		Description: d.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.repo.Save(ctx, r); err != nil {
		return ScheduledReminder{}, err
	}
	return r, nil
}

// Activate schedules the reminder's notification and marks it active.
// Authorization is checked first and requested when undetermined; a
// refusal leaves the reminder inactive and reports ErrPermissionDenied.
// Activating an active reminder reschedules the same notification.
func (l *Lifecycle) Activate(ctx context.Context, id string) (ScheduledReminder, error) {
	r, unlock, err := l.getLocked(ctx, id)
	if err != nil {
		return ScheduledReminder{}, err
	}
	defer unlock()

	if r.IsCompleted {
		return r, fmt.Errorf("cannot activate completed reminder %s: %w", id, ErrInvalidTransition)
	}

	if err := l.ensureAuthorized(ctx); err != nil {
		return r, err
	}

	c, err := l.children.Get(ctx, r.ChildID)
	if err != nil {
		return r, err
	}

	fireAt := l.fireTime(r.DueDate)
	if fireAt.After(l.opts.Now()) {
		n := notify.Notification{
			ID:     r.NotificationID(),
			Title:  r.Title,
			Body:   notificationBody(r, c),
			FireAt: fireAt,
		}
		if err := l.auth.Schedule(ctx, n); err != nil {
			return r, fmt.Errorf("failed to schedule notification: %w", err)
		}
	} else {
		log.Printf("[lifecycle] Not scheduling %s: fire time %s has passed", r.NotificationID(), fireAt.Format(time.RFC3339))
	}

	if err := l.repo.SetActivated(ctx, id, true); err != nil {
		return r, err
	}
	r.IsActivated = true
	return r, nil
}

func (l *Lifecycle) ensureAuthorized(ctx context.Context) error {
	status, err := l.auth.AuthorizationStatus(ctx)
	if err != nil {
		return err
	}

	switch status {
	case notify.StatusAuthorized, notify.StatusProvisional:
		return nil
	case notify.StatusNotDetermined:
		granted, err := l.auth.RequestAuthorization(ctx)
		if err != nil {
			return err
		}
		if !granted {
			return ErrPermissionDenied
		}
		return nil
	default:
		return ErrPermissionDenied
	}
}

// Deactivate cancels the reminder's notification and marks it inactive.
func (l *Lifecycle) Deactivate(ctx context.Context, id string) (ScheduledReminder, error) {
	r, unlock, err := l.getLocked(ctx, id)
	if err != nil {
		return ScheduledReminder{}, err
	}
	defer unlock()

	if err := l.auth.Cancel(ctx, r.NotificationID()); err != nil {
		return r, fmt.Errorf("failed to cancel notification: %w", err)
	}
	if !r.IsActivated {
		return r, nil
	}
	if err := l.repo.SetActivated(ctx, id, false); err != nil {
		return r, err
	}
	r.IsActivated = false
	return r, nil
}

// Complete marks the reminder done. Completing again keeps the first
// completion time.
func (l *Lifecycle) Complete(ctx context.Context, id string) (ScheduledReminder, error) {
	r, unlock, err := l.getLocked(ctx, id)
	if err != nil {
		return ScheduledReminder{}, err
	}
	defer unlock()

	if r.IsCompleted {
		return r, nil
	}

	at := l.opts.Now()
	if err := l.repo.SetCompleted(ctx, id, at); err != nil {
		return r, err
	}
	r.IsCompleted = true
	r.CompletedAt = &at

	if l.opts.CancelOnComplete {
		if err := l.auth.Cancel(ctx, r.NotificationID()); err != nil {
			return r, fmt.Errorf("failed to cancel notification: %w", err)
		}
	}
	return r, nil
}

// Delete cancels the reminder's notification and removes it.
func (l *Lifecycle) Delete(ctx context.Context, id string) error {
	r, unlock, err := l.getLocked(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := l.auth.Cancel(ctx, r.NotificationID()); err != nil {
		return fmt.Errorf("failed to cancel notification: %w", err)
	}
	return l.repo.Delete(ctx, id)
}

// getLocked loads a reminder, locks its child and reloads it under the
// lock.
func (l *Lifecycle) getLocked(ctx context.Context, id string) (ScheduledReminder, func(), error) {
	r, err := l.repo.Get(ctx, id)
	if err != nil {
		return ScheduledReminder{}, nil, err
	}

	unlock := l.lock(r.ChildID)
	r, err = l.repo.Get(ctx, id)
	if err != nil {
		unlock()
		return ScheduledReminder{}, nil, err
	}
	return r, unlock, nil
}

// fireTime is the due date's calendar day at the configured time of day.
func (l *Lifecycle) fireTime(due time.Time) time.Time {
	y, m, d := due.Date()
	return time.Date(y, m, d, l.opts.NotificationHour, l.opts.NotificationMinute, 0, 0, l.opts.Location)
}

func notificationBody(r ScheduledReminder, c child.Child) string {
	if r.IsManual() {
		return "Reminder for " + c.FirstName
	}
	return fmt.Sprintf("Don't forget to book an appointment for %s. Category: %s", c.FirstName, r.Category.Label())
}
