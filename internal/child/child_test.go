package child

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/notexe/parentime/internal/storage"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"plain", date(2026, 1, 15), 1, date(2026, 2, 15)},
		{"clamp non-leap", date(2026, 1, 31), 1, date(2026, 2, 28)},
		{"clamp leap", date(2028, 1, 31), 1, date(2028, 2, 29)},
		{"year rollover", date(2025, 11, 30), 3, date(2026, 2, 28)},
		{"negative", date(2026, 3, 31), -1, date(2026, 2, 28)},
		{"zero", date(2026, 5, 5), 0, date(2026, 5, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddMonths(tt.start, tt.n, time.UTC)
			if !got.Equal(tt.want) {
				t.Fatalf("AddMonths(%s, %d) = %s, want %s", tt.start.Format(DateLayout), tt.n, got.Format(DateLayout), tt.want.Format(DateLayout))
			}
		})
	}
}

func TestAgeInMonths(t *testing.T) {
	c := Child{ID: "c1", FirstName: "Lea", BirthDate: date(2026, 1, 1)}

	tests := []struct {
		ref  time.Time
		want int
	}{
		{date(2026, 1, 1), 0},
		{date(2026, 1, 31), 0},
		{date(2026, 2, 1), 1},
		{date(2026, 6, 1), 5},
		{date(2026, 5, 31), 4},
		{date(2027, 1, 1), 12},
		{date(2025, 6, 1), 0},
	}

	for _, tt := range tests {
		got, ok := c.AgeInMonths(tt.ref, time.UTC)
		if !ok {
			t.Fatalf("expected age to be computable at %s", tt.ref.Format(DateLayout))
		}
		if got != tt.want {
			t.Fatalf("AgeInMonths at %s = %d, want %d", tt.ref.Format(DateLayout), got, tt.want)
		}
	}
}

func TestAgeInMonthsEndOfMonthBirth(t *testing.T) {
	c := Child{BirthDate: date(2026, 1, 31)}
	if got, _ := c.AgeInMonths(date(2026, 2, 28), time.UTC); got != 1 {
		t.Fatalf("expected 1 month on Feb 28, got %d", got)
	}
	if got, _ := c.AgeInMonths(date(2026, 2, 27), time.UTC); got != 0 {
		t.Fatalf("expected 0 months on Feb 27, got %d", got)
	}
}

func TestAgeInYears(t *testing.T) {
	c := Child{BirthDate: date(2014, 3, 10)}
	if got, _ := c.AgeInYears(date(2026, 3, 9), time.UTC); got != 11 {
		t.Fatalf("expected 11 the day before the birthday, got %d", got)
	}
	if got, _ := c.AgeInYears(date(2026, 3, 10), time.UTC); got != 12 {
		t.Fatalf("expected 12 on the birthday, got %d", got)
	}

	if _, ok := (Child{}).AgeInYears(date(2026, 1, 1), time.UTC); ok {
		t.Fatal("expected zero birth date to be reported as not computable")
	}
}

func TestDaysBetween(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// Spans the March DST switch.
	from := time.Date(2026, 3, 25, 9, 0, 0, 0, paris)
	to := time.Date(2026, 4, 1, 8, 0, 0, 0, paris)
	if got := DaysBetween(from, to, paris); got != 7 {
		t.Fatalf("expected 7 days, got %d", got)
	}
	if got := DaysBetween(to, from, paris); got != -7 {
		t.Fatalf("expected -7 days, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	now := date(2026, 6, 1)
	valid := New("Lea", "Martin", date(2026, 1, 1))
	if err := valid.Validate(now); err != nil {
		t.Fatalf("expected valid child, got %v", err)
	}

	future := New("Tom", "", date(2026, 7, 1))
	if err := future.Validate(now); !errors.Is(err, ErrInvalidChild) {
		t.Fatalf("expected ErrInvalidChild for future birth, got %v", err)
	}

	noName := New("  ", "Martin", date(2026, 1, 1))
	if err := noName.Validate(now); !errors.Is(err, ErrInvalidChild) {
		t.Fatalf("expected ErrInvalidChild for empty name, got %v", err)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "children.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(db, time.UTC)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	lea := New("Lea", "Martin", date(2026, 1, 1))
	if err := s.Add(ctx, lea); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, lea); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate id, got %v", err)
	}

	got, err := s.Get(ctx, lea.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FirstName != "Lea" || !got.BirthDate.Equal(lea.BirthDate) {
		t.Fatalf("unexpected child: %+v", got)
	}

	lea.FirstName = "Léa"
	if err := s.Update(ctx, lea); err != nil {
		t.Fatalf("Update: %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].FirstName != "Léa" {
		t.Fatalf("unexpected list: %+v", list)
	}

	if err := s.Delete(ctx, lea.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, lea.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStoreMissingIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ghost := New("Ghost", "", date(2020, 1, 1))
	if err := s.Update(ctx, ghost); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
	if err := s.Delete(ctx, ghost.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
}
