package child

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date format used for birth dates on every
// boundary (storage, MCP arguments, shell input).
const DateLayout = "2006-01-02"

var (
	ErrNotFound     = errors.New("child not found")
	ErrConflict     = errors.New("child already exists")
	ErrInvalidChild = errors.New("invalid child")
)

// Child is a tracked child. BirthDate is a calendar date; its clock time is
// carried along but only the date matters to age computations.
type Child struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthDate time.Time `json:"birth_date"`
}

// New creates a child with a fresh identifier.
func New(firstName, lastName string, birthDate time.Time) Child {
	return Child{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		BirthDate: birthDate,
	}
}

// FullName joins first and last name.
func (c Child) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Validate enforces the input-boundary rules: an id, a first name and a
// birth date that is not in the future.
func (c Child) Validate(now time.Time) error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidChild)
	}
	if strings.TrimSpace(c.FirstName) == "" {
		return fmt.Errorf("%w: first name is required", ErrInvalidChild)
	}
	if c.BirthDate.IsZero() {
		return fmt.Errorf("%w: birth date is required", ErrInvalidChild)
	}
	if c.BirthDate.After(now) {
		return fmt.Errorf("%w: birth date %s is in the future", ErrInvalidChild, c.BirthDate.Format(DateLayout))
	}
	return nil
}

// AgeInMonths returns the number of whole months completed between the
// birth date and ref, in loc. The second result is false when the birth
// date is unset.
func (c Child) AgeInMonths(ref time.Time, loc *time.Location) (int, bool) {
	return MonthsBetween(c.BirthDate, ref, loc)
}

// AgeInYears returns the number of whole years completed at ref.
func (c Child) AgeInYears(ref time.Time, loc *time.Location) (int, bool) {
	months, ok := MonthsBetween(c.BirthDate, ref, loc)
	if !ok {
		return 0, false
	}
	return months / 12, true
}

// ParseDate parses a "YYYY-MM-DD" calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}
