package child

import "time"

// AddMonths adds n calendar months to t in loc. When the target month is
// shorter than t's day, the result is clamped to the month's last day
// (Jan 31 + 1 month = Feb 28 or 29). Clock time is preserved.
func AddMonths(t time.Time, n int, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	t = t.In(loc)

	y, m, d := t.Date()
	total := int(m) - 1 + n
	y += floorDiv(total, 12)
	month := time.Month(total - floorDiv(total, 12)*12 + 1)

	if last := daysIn(y, month, loc); d > last {
		d = last
	}
	return time.Date(y, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// AddDays adds n calendar days in loc, independent of DST shifts.
func AddDays(t time.Time, n int, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// MonthsBetween returns the largest n >= 0 such that from + n months does
// not pass to. Returns false if from is the zero time.
func MonthsBetween(from, to time.Time, loc *time.Location) (int, bool) {
	if from.IsZero() {
		return 0, false
	}
	if loc == nil {
		loc = time.Local
	}
	from, to = from.In(loc), to.In(loc)
	if to.Before(from) {
		return 0, true
	}

	fy, fm, _ := from.Date()
	ty, tm, _ := to.Date()
	n := (ty-fy)*12 + int(tm) - int(fm)
	for n > 0 && AddMonths(from, n, loc).After(to) {
		n--
	}
	return n, true
}

// DaysBetween counts calendar days from from's date to to's date in loc.
// Negative when to falls on an earlier date.
func DaysBetween(from, to time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// StartOfDay returns midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
