package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/reminder"
)

var now = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

type fakeSource struct {
	overdue  []reminder.ScheduledReminder
	children []child.Child
	err      error
}

func (f fakeSource) OverdueReminders(context.Context) ([]reminder.ScheduledReminder, error) {
	return f.overdue, f.err
}

func (f fakeSource) ListChildren(context.Context) ([]child.Child, error) {
	return f.children, nil
}

func (f fakeSource) Location() *time.Location { return time.UTC }
func (f fakeSource) Now() time.Time           { return now }

type fakeSender struct {
	messages []string
}

func (f *fakeSender) SendMessage(_ context.Context, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

func TestComposeGroupsByChild(t *testing.T) {
	src := fakeSource{
		overdue: []reminder.ScheduledReminder{
			{ChildID: "c1", Title: "DTP dose 1", DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ChildID: "c2", Title: "Dentist <6y>", DueDate: time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)},
			{ChildID: "c1", Title: "DTP dose 2", DueDate: time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)},
		},
		children: []child.Child{{ID: "c1", FirstName: "Lea"}, {ID: "c2", FirstName: "Tom"}},
	}

	text, err := New(src, &fakeSender{}, "08:00").Compose(context.Background())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	for _, want := range []string{
		"<b>Overdue reminders (3)</b>",
		"<b>Lea</b>",
		"• DTP dose 1 (2026-03-01) - Overdue for 3 months",
		"• DTP dose 2 (2026-05-31) - Overdue for 1 day",
		"• Dentist &lt;6y&gt; (2026-05-20) - Overdue for 12 days",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("digest missing %q:\n%s", want, text)
		}
	}
	if strings.Index(text, "<b>Lea</b>") > strings.Index(text, "<b>Tom</b>") {
		t.Fatalf("expected children in order of their oldest reminder:\n%s", text)
	}
}

func TestSendSkipsEmptyDigest(t *testing.T) {
	sender := &fakeSender{}
	if err := New(fakeSource{}, sender, "08:00").Send(context.Background()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Fatalf("expected nothing sent, got %v", sender.messages)
	}
}

func TestSendDelivers(t *testing.T) {
	sender := &fakeSender{}
	src := fakeSource{
		overdue: []reminder.ScheduledReminder{
			{ChildID: "c1", Title: "Checkup", DueDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		},
		children: []child.Child{{ID: "c1", FirstName: "Lea"}},
	}
	if err := New(src, sender, "08:00").Send(context.Background()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.messages))
	}
}

func TestComposeReportsSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(fakeSource{err: boom}, &fakeSender{}, "08:00").Compose(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}
