package catalog

// Category groups templates and reminders by care domain.
type Category string

const (
	CategoryVaccines     Category = "vaccines"
	CategoryAppointments Category = "appointments"
	CategoryMedications  Category = "medications"
	CategoryCustom       Category = "custom"
)

// ParseCategory maps a raw category to a known value. Unknown values fall
// back to CategoryCustom.
func ParseCategory(s string) Category {
	switch c := Category(s); c {
	case CategoryVaccines, CategoryAppointments, CategoryMedications, CategoryCustom:
		return c
	default:
		return CategoryCustom
	}
}

// Label is the human-readable category name.
func (c Category) Label() string {
	switch c {
	case CategoryVaccines:
		return "Vaccines"
	case CategoryAppointments:
		return "Appointments"
	case CategoryMedications:
		return "Medications"
	default:
		return "Other"
	}
}

// Priority ranks how strongly a reminder should be acted upon.
type Priority string

const (
	PriorityRequired    Priority = "required"
	PriorityRecommended Priority = "recommended"
	PriorityInfo        Priority = "info"
)

// ParsePriority maps a raw priority to a known value. Unknown values fall
// back to PriorityInfo.
func ParsePriority(s string) Priority {
	switch p := Priority(s); p {
	case PriorityRequired, PriorityRecommended, PriorityInfo:
		return p
	default:
		return PriorityInfo
	}
}

// Rank orders priorities: required first, unknown values last.
func (p Priority) Rank() int {
	switch p {
	case PriorityRequired:
		return 0
	case PriorityRecommended:
		return 1
	case PriorityInfo:
		return 2
	default:
		return 3
	}
}

// Conditions are the year and birth-date bounds used by templates that
// have no month-based schedule. Birth dates are "YYYY-MM-DD" strings.
type Conditions struct {
	MinAge       *int   `json:"minAge,omitempty"`
	MaxAge       *int   `json:"maxAge,omitempty"`
	MinBirthDate string `json:"minBirthDate,omitempty"`
	MaxBirthDate string `json:"maxBirthDate,omitempty"`
}

// MonthRange is an inclusive [Min, Max] window of ages in months.
type MonthRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Schedule lists target ages in months, or a single month range.
// DueAgeMonths wins when both are set.
type Schedule struct {
	DueAgeMonths      []int       `json:"dueAgeMonths,omitempty"`
	DueAgeMonthsRange *MonthRange `json:"dueAgeMonthsRange,omitempty"`
}

// Empty reports whether the schedule carries neither targets nor a range.
func (s *Schedule) Empty() bool {
	return s == nil || (len(s.DueAgeMonths) == 0 && s.DueAgeMonthsRange == nil)
}

// Template is an immutable catalog rule describing when a reminder should
// be suggested for a child.
type Template struct {
	ID                      string     `json:"id"`
	Title                   string     `json:"title"`
	Category                Category   `json:"category"`
	Priority                Priority   `json:"priority"`
	Description             string     `json:"description,omitempty"`
	SeriesID                string     `json:"seriesId,omitempty"`
	Conditions              Conditions `json:"conditions"`
	DefaultNotificationTime string     `json:"defaultNotificationTime,omitempty"`
	Schedule                *Schedule  `json:"schedule,omitempty"`
}

// HasSchedule reports whether the template is evaluated on the month path.
func (t Template) HasSchedule() bool {
	return t.Schedule != nil
}
