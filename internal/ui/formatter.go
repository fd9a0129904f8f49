package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/dashboard"
	"github.com/notexe/parentime/internal/engine"
	"github.com/notexe/parentime/internal/notify"
	"github.com/notexe/parentime/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Yellow
			Bold(true)

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)
)

// priorityStyles color a line by template priority.
var priorityStyles = map[catalog.Priority]lipgloss.Style{
	catalog.PriorityRequired:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	catalog.PriorityRecommended: lipgloss.NewStyle().Foreground(lipgloss.Color("222")),
	catalog.PriorityInfo:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

type Formatter struct {
	colored bool
	loc     *time.Location
}

func NewFormatter(colored bool, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{colored: colored, loc: loc}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) date(t time.Time) string {
	return t.In(f.loc).Format(child.DateLayout)
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSystem(msg string) string {
	return f.render(SystemStyle, msg)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, msg)
}

func (f *Formatter) FormatWarning(msg string) string {
	return f.render(WarningStyle, msg)
}

func (f *Formatter) FormatWelcome(children int, status notify.AuthorizationStatus) string {
	title := f.render(HeaderStyle, "ParenTime")
	lines := []string{
		title + f.render(DimStyle, " • health reminders for your children"),
		f.render(DimStyle, "Children: ") + fmt.Sprint(children),
		f.render(DimStyle, "Notifications: ") + string(status),
		"",
		f.render(DimStyle, "Type /help for commands"),
	}
	content := strings.Join(lines, "\n")
	if f.colored {
		return "\n" + BoxStyle.Render(content) + "\n\n"
	}
	return "\n" + content + "\n\n"
}

// FormatPrompt shows the selected child's first name, if any.
func (f *Formatter) FormatPrompt(childName string) string {
	name := "parentime"
	if childName != "" {
		name = strings.ToLower(childName)
	}
	return f.render(lipgloss.NewStyle().Foreground(lipgloss.Color("62")), name) +
		f.render(lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true), " > ")
}

// FormatHelp renders the markdown help through glamour, falling back to
// the raw markdown when rendering fails or colors are off.
func (f *Formatter) FormatHelp(markdown string) string {
	if !f.colored {
		return markdown
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		return HeaderStyle.Render(title) + "\n" + BoxStyle.Render(content)
	}
	return title + "\n" + content
}

func (f *Formatter) FormatChildren(children []child.Child, ref time.Time, selectedID string) string {
	if len(children) == 0 {
		return f.FormatInfo("No children yet. Add one with /add-child <first> [last] <YYYY-MM-DD>.")
	}

	var b strings.Builder
	for i, c := range children {
		marker := "  "
		if c.ID == selectedID {
			marker = f.render(SuccessStyle, "* ")
		}
		age := ""
		if months, ok := c.AgeInMonths(ref, f.loc); ok {
			age = formatAge(months)
		}
		fmt.Fprintf(&b, "%s%d. %s %s %s\n", marker, i+1, c.FullName(),
			f.render(DimStyle, "born "+f.date(c.BirthDate)),
			f.render(AccentStyle, age))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatAge(months int) string {
	switch {
	case months < 24:
		return fmt.Sprintf("(%d months)", months)
	default:
		return fmt.Sprintf("(%d years)", months/12)
	}
}

func (f *Formatter) priority(p catalog.Priority, s string) string {
	style, ok := priorityStyles[p]
	if !ok {
		style = DimStyle
	}
	return f.render(style, s)
}

func (f *Formatter) FormatSuggestions(suggestions []engine.Suggestion) string {
	if len(suggestions) == 0 {
		return f.FormatInfo("No suggestions right now.")
	}

	var b strings.Builder
	for _, s := range suggestions {
		fmt.Fprintf(&b, "%s %s %s\n",
			f.priority(s.Priority, fmt.Sprintf("[%s]", s.Priority)),
			s.Title,
			f.render(DimStyle, fmt.Sprintf("(%s · %s)", s.Category.Label(), s.TemplateID)))
		if s.Description != "" {
			fmt.Fprintf(&b, "    %s\n", f.render(DimStyle, s.Description))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *Formatter) FormatEvents(events []engine.Occurrence, empty string) string {
	if len(events) == 0 {
		return f.FormatInfo(empty)
	}

	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "%s  %s %s %s\n",
			f.render(AccentStyle, f.date(e.DueDate)),
			f.priority(e.Priority, fmt.Sprintf("[%s]", e.Priority)),
			e.Title,
			f.render(DimStyle, "("+e.TemplateID+")"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatReminders numbers the reminders from 1 so commands can refer to
// them by position.
func (f *Formatter) FormatReminders(reminders []reminder.ScheduledReminder, ref time.Time) string {
	if len(reminders) == 0 {
		return f.FormatInfo("No reminders.")
	}

	var b strings.Builder
	for i, r := range reminders {
		b.WriteString(f.reminderLine(i+1, r, ref))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *Formatter) reminderLine(n int, r reminder.ScheduledReminder, ref time.Time) string {
	status := r.Status()
	switch status {
	case reminder.StatusActive:
		status = f.render(SuccessStyle, status)
	case reminder.StatusCompleted:
		status = f.render(DimStyle, status)
	}

	line := fmt.Sprintf("%2d. %s  %s %s [%s] %s",
		n,
		f.render(AccentStyle, f.date(r.DueDate)),
		f.priority(r.Priority, r.Title),
		f.render(DimStyle, r.Category.Label()),
		status,
		f.render(DimStyle, r.ID[:min(8, len(r.ID))]))
	if late := r.LateSinceText(ref, f.loc); late != "" {
		line += " " + f.render(WarningStyle, late)
	}
	return line
}

func (f *Formatter) FormatDashboard(res dashboard.Result, ref time.Time) string {
	section := func(title string, items []dashboard.Item) string {
		var b strings.Builder
		b.WriteString(f.render(HeaderStyle, title))
		b.WriteString("\n")
		if len(items) == 0 {
			b.WriteString(f.render(DimStyle, "  nothing"))
			b.WriteString("\n")
		}
		for _, it := range items {
			switch it.Kind {
			case dashboard.KindSuggestion:
				fmt.Fprintf(&b, "  %s %s\n", f.render(InfoStyle, "suggestion"), it.Suggestion.Title)
			case dashboard.KindReminder:
				r := it.Reminder
				line := fmt.Sprintf("  %s %s", f.render(AccentStyle, f.date(r.DueDate)), r.Title)
				if late := r.LateSinceText(ref, f.loc); late != "" {
					line += " " + f.render(WarningStyle, late)
				}
				b.WriteString(line + "\n")
			}
		}
		return b.String()
	}

	return strings.TrimRight(section("Now", res.Now)+"\n"+section("Upcoming", res.Upcoming), "\n")
}

func (f *Formatter) FormatNotifications(entries []notify.Entry, status notify.AuthorizationStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", f.render(DimStyle, "Authorization:"), status)
	if len(entries) == 0 {
		b.WriteString(f.render(DimStyle, "No notifications scheduled."))
		return b.String()
	}
	for _, e := range entries {
		state := f.render(InfoStyle, "pending")
		if e.SentAt != nil {
			state = f.render(DimStyle, "sent "+e.SentAt.In(f.loc).Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(&b, "%s  %s [%s]\n", f.render(AccentStyle, e.FireAt.In(f.loc).Format("2006-01-02 15:04")), e.Title, state)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f *Formatter) FormatTemplates(templates []catalog.Template) string {
	if len(templates) == 0 {
		return f.FormatInfo("The catalog is empty.")
	}

	var b strings.Builder
	for _, t := range templates {
		when := "conditions"
		if t.Schedule != nil {
			switch {
			case len(t.Schedule.DueAgeMonths) > 0:
				parts := make([]string, len(t.Schedule.DueAgeMonths))
				for i, m := range t.Schedule.DueAgeMonths {
					parts[i] = fmt.Sprint(m)
				}
				when = strings.Join(parts, ", ") + " months"
			case t.Schedule.DueAgeMonthsRange != nil:
				when = fmt.Sprintf("%d-%d months", t.Schedule.DueAgeMonthsRange.Min, t.Schedule.DueAgeMonthsRange.Max)
			}
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			f.priority(t.Priority, t.ID),
			t.Title,
			f.render(DimStyle, "("+when+")"))
	}
	return strings.TrimRight(b.String(), "\n")
}
