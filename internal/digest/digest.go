// Package digest sends a daily summary of overdue reminders.
package digest

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/reminder"
)

// Source provides the reminders and children the digest reports on.
type Source interface {
	OverdueReminders(ctx context.Context) ([]reminder.ScheduledReminder, error)
	ListChildren(ctx context.Context) ([]child.Child, error)
	Location() *time.Location
	Now() time.Time
}

// TextSender delivers a preformatted HTML message.
type TextSender interface {
	SendMessage(ctx context.Context, text string) error
}

// Digest composes and sends the overdue summary once a day at a fixed
// local time.
type Digest struct {
	source Source
	sender TextSender
	at     string
}

// New creates a digest sent every day at at ("HH:MM").
func New(source Source, sender TextSender, at string) *Digest {
	return &Digest{source: source, sender: sender, at: at}
}

// Run schedules the digest and blocks until ctx is cancelled.
func (d *Digest) Run(ctx context.Context) error {
	s := gocron.NewScheduler(d.source.Location())
	_, err := s.Every(1).Day().At(d.at).Do(func() {
		if err := d.Send(ctx); err != nil {
			log.Printf("[digest] Error: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule digest at %q: %w", d.at, err)
	}

	log.Printf("[digest] Started. Daily at %s", d.at)
	s.StartAsync()

	<-ctx.Done()
	log.Println("[digest] Shutting down...")
	s.Stop()
	return nil
}

// Send composes the digest and delivers it. Nothing is sent when no
// reminder is overdue.
func (d *Digest) Send(ctx context.Context) error {
	text, err := d.Compose(ctx)
	if err != nil {
		return err
	}
	if text == "" {
		log.Println("[digest] Nothing overdue")
		return nil
	}
	if err := d.sender.SendMessage(ctx, text); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	log.Println("[digest] Sent")
	return nil
}

// Compose renders the overdue reminders grouped by child, oldest first.
// It returns "" when nothing is overdue.
func (d *Digest) Compose(ctx context.Context) (string, error) {
	overdue, err := d.source.OverdueReminders(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load overdue reminders: %w", err)
	}
	if len(overdue) == 0 {
		return "", nil
	}

	children, err := d.source.ListChildren(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load children: %w", err)
	}
	names := make(map[string]string, len(children))
	for _, c := range children {
		names[c.ID] = c.FirstName
	}

	byChild := make(map[string][]reminder.ScheduledReminder)
	var order []string
	for _, r := range overdue {
		if _, ok := byChild[r.ChildID]; !ok {
			order = append(order, r.ChildID)
		}
		byChild[r.ChildID] = append(byChild[r.ChildID], r)
	}

	now := d.source.Now()
	loc := d.source.Location()

	var b strings.Builder
	fmt.Fprintf(&b, "<b>Overdue reminders (%d)</b>\n", len(overdue))
	for _, id := range order {
		name := names[id]
		if name == "" {
			name = id
		}
		fmt.Fprintf(&b, "\n<b>%s</b>\n", html.EscapeString(name))
		for _, r := range byChild[id] {
			fmt.Fprintf(&b, "• %s (%s) - %s\n",
				html.EscapeString(r.Title),
				r.DueDate.In(loc).Format(child.DateLayout),
				r.LateSinceText(now, loc))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
