package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/export"
	"github.com/notexe/parentime/internal/reminder"
	"github.com/notexe/parentime/internal/tracker"
	"github.com/notexe/parentime/internal/ui"
)

func childID(c child.Child) string   { return c.ID }
func childName(c child.Child) string { return c.FirstName }

func reminderID(r reminder.ScheduledReminder) string { return r.ID }

// requireChild returns the selected child, asking the user to pick one
// when none is selected yet.
func (r *REPL) requireChild(ctx context.Context) (child.Child, error) {
	if r.current != nil {
		return *r.current, nil
	}
	if err := r.cmdSelectChild(ctx, ""); err != nil {
		return child.Child{}, err
	}
	if r.current == nil {
		return child.Child{}, fmt.Errorf("select a child first with /child")
	}
	return *r.current, nil
}

func (r *REPL) cmdChildren(ctx context.Context) error {
	children, err := r.tracker.ListChildren(ctx)
	if err != nil {
		return err
	}
	selected := ""
	if r.current != nil {
		selected = r.current.ID
	}
	r.displayText(r.formatter.FormatChildren(children, r.tracker.Now(), selected))
	return nil
}

func (r *REPL) cmdAddChild(ctx context.Context, args string) error {
	first, last, birth, err := parseChildArgs(args, r.tracker.Location())
	if err != nil {
		return err
	}

	c, err := r.tracker.AddChild(ctx, first, last, birth)
	if err != nil {
		return err
	}
	r.current = &c
	r.displaySuccess(fmt.Sprintf("Added %s. Try /suggestions to see what applies.", c.FullName()))
	return nil
}

func (r *REPL) cmdSelectChild(ctx context.Context, args string) error {
	children, err := r.tracker.ListChildren(ctx)
	if err != nil {
		return err
	}
	if len(children) == 0 {
		return fmt.Errorf("no children yet, add one with /add-child")
	}

	var picked child.Child
	if args != "" {
		picked, err = resolve(args, children, childID, childName)
		if err != nil {
			return err
		}
	} else {
		options := make([]ui.SelectorOption, len(children))
		initial := 0
		for i, c := range children {
			options[i] = ui.SelectorOption{Label: c.FullName(), Description: c.BirthDate.In(r.tracker.Location()).Format(child.DateLayout)}
			if r.current != nil && c.ID == r.current.ID {
				initial = i
			}
		}
		idx, err := r.runSelector(ui.NewSelector("Which child?", options, initial, r.config.UI.ColoredOutput))
		if err != nil {
			return err
		}
		picked = children[idx]
	}

	r.current = &picked
	r.listed = nil
	r.displaySystem(fmt.Sprintf("Now managing %s.", picked.FullName()))
	return nil
}

// runSelector releases the terminal from readline while the selector owns
// it in raw mode.
func (r *REPL) runSelector(s *ui.Selector) (int, error) {
	r.rl.Close()
	defer func() {
		if rl, err := setupReadline(historyFile(r.config)); err == nil {
			r.rl = rl
		}
	}()
	return s.Run()
}

func (r *REPL) cmdRenameChild(ctx context.Context, args string) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return fmt.Errorf("usage: /rename-child <first> [last]")
	}

	c.FirstName = fields[0]
	c.LastName = strings.Join(fields[1:], " ")
	if err := r.tracker.UpdateChild(ctx, c); err != nil {
		return err
	}
	r.current = &c
	r.displaySuccess(fmt.Sprintf("Renamed to %s.", c.FullName()))
	return nil
}

func (r *REPL) cmdDeleteChild(ctx context.Context, args string) error {
	children, err := r.tracker.ListChildren(ctx)
	if err != nil {
		return err
	}
	c, err := resolve(args, children, childID, childName)
	if err != nil {
		return err
	}

	if err := r.tracker.DeleteChild(ctx, c.ID); err != nil {
		return err
	}
	if r.current != nil && r.current.ID == c.ID {
		r.current = nil
		r.listed = nil
	}
	r.displaySuccess(fmt.Sprintf("Deleted %s and their reminders.", c.FullName()))
	return nil
}

func (r *REPL) cmdSuggestions(ctx context.Context) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	suggestions, err := r.tracker.Suggestions(ctx, c.ID)
	if err != nil {
		return err
	}
	r.displayText(r.formatter.FormatSuggestions(suggestions))
	return nil
}

func (r *REPL) cmdIgnore(ctx context.Context, args string) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	if args == "" {
		return fmt.Errorf("usage: /ignore <template>")
	}
	if err := r.tracker.IgnoreSuggestion(ctx, c.ID, args); err != nil {
		return err
	}
	r.displaySystem(fmt.Sprintf("Suggestion %s hidden. /restore %s brings it back.", args, args))
	return nil
}

func (r *REPL) cmdRestore(ctx context.Context, args string) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	if args == "" {
		return fmt.Errorf("usage: /restore <template>")
	}
	if err := r.tracker.RestoreSuggestion(ctx, c.ID, args); err != nil {
		return err
	}
	r.displaySystem(fmt.Sprintf("Suggestion %s restored.", args))
	return nil
}

func (r *REPL) cmdActivateSuggestion(ctx context.Context, args string) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	if args == "" {
		return fmt.Errorf("usage: /activate-suggestion <template>")
	}

	rem, err := r.tracker.ActivateSuggestion(ctx, c.ID, args)
	if err != nil {
		if tracker.IsPermissionDenied(err) {
			r.displayWarning("Notifications are not allowed. Configure the Telegram bot to receive reminders.")
		}
		return err
	}
	r.displaySuccess(fmt.Sprintf("%s scheduled for %s.", rem.Title, rem.DueDate.In(r.tracker.Location()).Format(child.DateLayout)))
	return nil
}

func (r *REPL) cmdUpcoming(ctx context.Context, args string) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	onlyActive := strings.EqualFold(strings.TrimSpace(args), "active")

	events, err := r.tracker.UpcomingEvents(ctx, c.ID, onlyActive)
	if err != nil {
		return err
	}
	r.displayText(r.formatter.FormatEvents(events, "Nothing coming up."))
	return nil
}

func (r *REPL) cmdOverdue(ctx context.Context) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	events, err := r.tracker.OverdueEvents(ctx, c.ID)
	if err != nil {
		return err
	}
	r.displayText(r.formatter.FormatEvents(events, "Nothing overdue."))
	return nil
}

func (r *REPL) cmdReminders(ctx context.Context, args string) error {
	arg := strings.ToLower(strings.TrimSpace(args))

	forChild := ""
	if arg != "all" {
		c, err := r.requireChild(ctx)
		if err != nil {
			return err
		}
		forChild = c.ID
	}

	var category catalog.Category
	if arg != "" && arg != "all" {
		category = catalog.ParseCategory(arg)
	}

	list, err := r.tracker.Reminders(ctx, forChild, category)
	if err != nil {
		return err
	}
	r.listed = list
	r.displayText(r.formatter.FormatReminders(list, r.tracker.Now()))
	return nil
}

func (r *REPL) cmdAddReminder(ctx context.Context, args string) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	due, title, err := parseReminderArgs(args, r.tracker.Location())
	if err != nil {
		return err
	}

	rem, err := r.tracker.AddReminder(ctx, reminder.Draft{
		ChildID: c.ID,
		Title:   title,
		DueDate: due,
	})
	if err != nil {
		return err
	}
	r.displaySuccess(fmt.Sprintf("Added %q. Use /activate to get notified.", rem.Title))
	return nil
}

// pickReminder resolves a position in the last listed reminders or an id
// prefix.
func (r *REPL) pickReminder(ctx context.Context, args string) (reminder.ScheduledReminder, error) {
	list := r.listed
	if len(list) == 0 {
		var err error
		if list, err = r.tracker.Reminders(ctx, "", ""); err != nil {
			return reminder.ScheduledReminder{}, err
		}
	}
	return resolve(args, list, reminderID, nil)
}

func (r *REPL) cmdTransition(ctx context.Context, args, verb string, apply func(context.Context, string) (reminder.ScheduledReminder, error)) error {
	picked, err := r.pickReminder(ctx, args)
	if err != nil {
		return err
	}

	updated, err := apply(ctx, picked.ID)
	if err != nil {
		if tracker.IsPermissionDenied(err) {
			r.displayWarning("Notifications are not allowed. Configure the Telegram bot to receive reminders.")
		}
		return err
	}
	r.replaceListed(updated)
	r.displaySuccess(fmt.Sprintf("%s %s.", updated.Title, verb))
	return nil
}

func (r *REPL) cmdDeleteReminder(ctx context.Context, args string) error {
	picked, err := r.pickReminder(ctx, args)
	if err != nil {
		return err
	}
	if err := r.tracker.DeleteReminder(ctx, picked.ID); err != nil {
		return err
	}

	for i, rem := range r.listed {
		if rem.ID == picked.ID {
			r.listed = append(r.listed[:i], r.listed[i+1:]...)
			break
		}
	}
	r.displaySuccess(fmt.Sprintf("%s deleted.", picked.Title))
	return nil
}

func (r *REPL) replaceListed(updated reminder.ScheduledReminder) {
	for i := range r.listed {
		if r.listed[i].ID == updated.ID {
			r.listed[i] = updated
			return
		}
	}
}

func (r *REPL) cmdDashboard(ctx context.Context) error {
	c, err := r.requireChild(ctx)
	if err != nil {
		return err
	}
	res, err := r.tracker.Dashboard(ctx, c.ID)
	if err != nil {
		return err
	}
	r.displayText(r.formatter.FormatBox(c.FullName(), r.formatter.FormatDashboard(res, r.tracker.Now())))
	return nil
}

func (r *REPL) cmdNotifications(ctx context.Context) error {
	status, err := r.tracker.NotificationStatus(ctx)
	if err != nil {
		return err
	}
	entries, err := r.tracker.Notifications(ctx)
	if err != nil {
		return err
	}
	r.displayText(r.formatter.FormatNotifications(entries, status))
	return nil
}

func (r *REPL) cmdExport(ctx context.Context, args string) error {
	path := strings.TrimSpace(args)
	if path == "" {
		return fmt.Errorf("usage: /export <file.xlsx>")
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}

	schedule, err := r.tracker.Export(ctx)
	if err != nil {
		return err
	}
	if err := export.Save(path, schedule); err != nil {
		return err
	}
	r.displaySuccess(fmt.Sprintf("Exported %d children and %d reminders to %s.", len(schedule.Children), len(schedule.Reminders), path))
	return nil
}
