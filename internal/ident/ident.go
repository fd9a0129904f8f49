// Package ident derives deterministic identifiers from template, child and
// calendar-day inputs. Regenerating an identifier from the same inputs
// always yields the same string, which keeps notification scheduling
// idempotent.
package ident

import (
	"time"

	"github.com/google/uuid"
)

const dayLayout = "2006-01-02"

// Day formats the calendar date of t in t's own location.
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

// OccurrenceID is "{templateID}_{YYYY-MM-DD}".
func OccurrenceID(templateID string, due time.Time) string {
	return templateID + "_" + Day(due)
}

// NotificationID is "reminder_{childID}_{templateID}_{YYYY-MM-DD}". Manual
// reminders pass their own id as templateID.
func NotificationID(childID, templateID string, due time.Time) string {
	return "reminder_" + childID + "_" + templateID + "_" + Day(due)
}

// SameDay reports whether a and b fall on the same calendar date, each read
// in its own location.
func SameDay(a, b time.Time) bool {
	return Day(a) == Day(b)
}

// SuggestionID is a name-based UUID for a (child, template) pair.
func SuggestionID(childID, templateID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(childID+"/"+templateID)).String()
}
