package dashboard

import (
	"testing"
	"time"

	"github.com/notexe/parentime/internal/engine"
	"github.com/notexe/parentime/internal/reminder"
)

var ref = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func due(days int) reminder.ScheduledReminder {
	d := ref.AddDate(0, 0, days)
	return reminder.ScheduledReminder{ID: d.Format("0102"), Title: d.Format("Jan 2"), DueDate: d}
}

func TestSevenDayBoundary(t *testing.T) {
	res := Prioritize([]Item{FromReminder(due(8)), FromReminder(due(7))}, DefaultOptions(), ref)

	if len(res.Now) != 1 || !res.Now[0].Reminder.DueDate.Equal(ref.AddDate(0, 0, 7)) {
		t.Fatalf("expected the 7 day reminder in now, got %+v", res.Now)
	}
	if len(res.Upcoming) != 1 || !res.Upcoming[0].Reminder.DueDate.Equal(ref.AddDate(0, 0, 8)) {
		t.Fatalf("expected the 8 day reminder in upcoming, got %+v", res.Upcoming)
	}
}

func TestSuggestionsFollowRemindersInNow(t *testing.T) {
	items := []Item{
		FromSuggestion(engine.Suggestion{Title: "HPV"}),
		FromReminder(due(5)),
		FromReminder(due(-3)),
		FromSuggestion(engine.Suggestion{Title: "Dentist"}),
	}
	res := Prioritize(items, Options{MaxNow: 10, MaxUpcoming: 10}, ref)

	want := []string{due(-3).Title, due(5).Title, "HPV", "Dentist"}
	if len(res.Now) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(res.Now))
	}
	for i, title := range want {
		if res.Now[i].Title() != title {
			t.Fatalf("position %d: got %q, want %q", i, res.Now[i].Title(), title)
		}
	}
	if len(res.Upcoming) != 0 {
		t.Fatalf("suggestions must never be upcoming, got %+v", res.Upcoming)
	}
}

func TestTruncation(t *testing.T) {
	var items []Item
	for _, d := range []int{30, 1, 20, 2, 10, 3, 40, 4} {
		items = append(items, FromReminder(due(d)))
	}
	items = append(items, FromSuggestion(engine.Suggestion{Title: "S"}))

	res := Prioritize(items, DefaultOptions(), ref)
	if len(res.Now) != 3 || len(res.Upcoming) != 3 {
		t.Fatalf("expected 3/3, got %d/%d", len(res.Now), len(res.Upcoming))
	}
	if !res.Now[0].Reminder.DueDate.Equal(ref.AddDate(0, 0, 1)) {
		t.Fatalf("expected earliest first, got %s", res.Now[0].Reminder.DueDate)
	}
	if !res.Upcoming[2].Reminder.DueDate.Equal(ref.AddDate(0, 0, 30)) {
		t.Fatalf("expected 10, 20, 30 in upcoming, got %s last", res.Upcoming[2].Reminder.DueDate)
	}

	seen := make(map[string]bool)
	for _, it := range append(res.Now, res.Upcoming...) {
		if it.Kind == KindReminder {
			if seen[it.Reminder.ID] {
				t.Fatalf("reminder %s in both buckets", it.Reminder.ID)
			}
			seen[it.Reminder.ID] = true
		}
	}
}

func TestBoundaryUsesCalendarDays(t *testing.T) {
	lateOnDaySeven := reminder.ScheduledReminder{ID: "late", DueDate: time.Date(2026, 6, 8, 23, 30, 0, 0, time.UTC)}
	earlyOnDayEight := reminder.ScheduledReminder{ID: "early", DueDate: time.Date(2026, 6, 9, 0, 0, 0, 0, time.UTC)}

	res := Prioritize([]Item{FromReminder(lateOnDaySeven), FromReminder(earlyOnDayEight)}, DefaultOptions(), ref)
	if len(res.Now) != 1 || res.Now[0].Reminder.ID != "late" {
		t.Fatalf("expected day 7 in now regardless of time, got %+v", res.Now)
	}
	if len(res.Upcoming) != 1 || res.Upcoming[0].Reminder.ID != "early" {
		t.Fatalf("expected day 8 in upcoming, got %+v", res.Upcoming)
	}
}
