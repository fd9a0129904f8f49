package repl

import (
	"context"
	"fmt"

	"github.com/chzyer/readline"

	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/config"
	"github.com/notexe/parentime/internal/reminder"
	"github.com/notexe/parentime/internal/tracker"
	"github.com/notexe/parentime/internal/ui"
)

type REPL struct {
	tracker   *tracker.Tracker
	config    *config.Config
	rl        *readline.Instance
	formatter *ui.Formatter

	// current is the selected child; commands that need a child use it.
	current *child.Child
	// listed is the last reminder list shown, so /complete 2 refers to the
	// second line on screen.
	listed []reminder.ScheduledReminder
}

func NewREPL(t *tracker.Tracker, cfg *config.Config) (*REPL, error) {
	rl, err := setupReadline(historyFile(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	return &REPL{
		tracker:   t,
		config:    cfg,
		rl:        rl,
		formatter: ui.NewFormatter(cfg.UI.ColoredOutput, t.Location()),
	}, nil
}

func (r *REPL) Start(ctx context.Context) error {
	defer func() { r.rl.Close() }()

	r.selectDefaultChild(ctx)
	r.displayWelcome(ctx)

	for {
		r.rl.SetPrompt(r.prompt())

		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		isCommand, command, args := parseCommand(input)
		if !isCommand {
			r.displayInfo("Commands start with /. Type /help for the list.")
			continue
		}

		if command == "/quit" || command == "/exit" || command == "/q" {
			fmt.Println("\nGoodbye!")
			return nil
		}

		if err := r.handleCommand(ctx, command, args); err != nil {
			r.displayError(err)
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

func (r *REPL) prompt() string {
	if r.current == nil {
		return r.formatter.FormatPrompt("")
	}
	return r.formatter.FormatPrompt(r.current.FirstName)
}

// selectDefaultChild picks the only child when there is exactly one.
func (r *REPL) selectDefaultChild(ctx context.Context) {
	children, err := r.tracker.ListChildren(ctx)
	if err != nil || len(children) != 1 {
		return
	}
	r.current = &children[0]
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "/help", "/h":
		r.displayHelp()
		return nil

	case "/children", "/ls":
		return r.cmdChildren(ctx)
	case "/add-child":
		return r.cmdAddChild(ctx, args)
	case "/child":
		return r.cmdSelectChild(ctx, args)
	case "/rename-child":
		return r.cmdRenameChild(ctx, args)
	case "/delete-child":
		return r.cmdDeleteChild(ctx, args)

	case "/templates":
		r.displayText(r.formatter.FormatTemplates(r.tracker.Templates()))
		return nil
	case "/suggestions", "/s":
		return r.cmdSuggestions(ctx)
	case "/ignore":
		return r.cmdIgnore(ctx, args)
	case "/restore":
		return r.cmdRestore(ctx, args)
	case "/activate-suggestion", "/as":
		return r.cmdActivateSuggestion(ctx, args)

	case "/upcoming", "/u":
		return r.cmdUpcoming(ctx, args)
	case "/overdue", "/o":
		return r.cmdOverdue(ctx)

	case "/reminders", "/r":
		return r.cmdReminders(ctx, args)
	case "/add-reminder":
		return r.cmdAddReminder(ctx, args)
	case "/activate":
		return r.cmdTransition(ctx, args, "activated", r.tracker.ActivateReminder)
	case "/deactivate":
		return r.cmdTransition(ctx, args, "deactivated", r.tracker.DeactivateReminder)
	case "/complete", "/done":
		return r.cmdTransition(ctx, args, "completed", r.tracker.CompleteReminder)
	case "/delete":
		return r.cmdDeleteReminder(ctx, args)

	case "/dashboard", "/d":
		return r.cmdDashboard(ctx)
	case "/notifications":
		return r.cmdNotifications(ctx)
	case "/export":
		return r.cmdExport(ctx, args)

	default:
		return fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
}
