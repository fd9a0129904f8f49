package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/config"
)

func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func parseCommand(input string) (bool, string, string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	command := strings.ToLower(parts[0])

	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	return true, command, args
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("/help"),
	readline.PcItem("/children"),
	readline.PcItem("/add-child"),
	readline.PcItem("/child"),
	readline.PcItem("/rename-child"),
	readline.PcItem("/delete-child"),
	readline.PcItem("/templates"),
	readline.PcItem("/suggestions"),
	readline.PcItem("/ignore"),
	readline.PcItem("/restore"),
	readline.PcItem("/activate-suggestion"),
	readline.PcItem("/upcoming", readline.PcItem("active")),
	readline.PcItem("/overdue"),
	readline.PcItem("/reminders",
		readline.PcItem("all"),
		readline.PcItem("vaccines"),
		readline.PcItem("appointments"),
		readline.PcItem("medications"),
		readline.PcItem("custom"),
	),
	readline.PcItem("/add-reminder"),
	readline.PcItem("/activate"),
	readline.PcItem("/deactivate"),
	readline.PcItem("/complete"),
	readline.PcItem("/delete"),
	readline.PcItem("/dashboard"),
	readline.PcItem("/notifications"),
	readline.PcItem("/export"),
	readline.PcItem("/quit"),
)

func setupReadline(history string) (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "> ",
		HistoryFile:         history,
		AutoComplete:        completer,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})

	return rl, err
}

// historyFile keeps the shell history next to the database.
func historyFile(cfg *config.Config) string {
	dir := filepath.Dir(cfg.Database.Path)
	if _, err := os.Stat(dir); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return err == io.EOF || err == readline.ErrInterrupt
}

var errDateMissing = errors.New("a date in YYYY-MM-DD form is required")

// parseChildArgs reads "<first> [last...] <YYYY-MM-DD>".
func parseChildArgs(args string, loc *time.Location) (first, last string, birth time.Time, err error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", time.Time{}, fmt.Errorf("usage: /add-child <first> [last] <YYYY-MM-DD>")
	}

	birth, err = child.ParseDate(fields[len(fields)-1], loc)
	if err != nil {
		return "", "", time.Time{}, errDateMissing
	}
	return fields[0], strings.Join(fields[1:len(fields)-1], " "), birth, nil
}

// parseReminderArgs reads "<YYYY-MM-DD> <title...>".
func parseReminderArgs(args string, loc *time.Location) (time.Time, string, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return time.Time{}, "", fmt.Errorf("usage: /add-reminder <YYYY-MM-DD> <title>")
	}

	due, err := child.ParseDate(fields[0], loc)
	if err != nil {
		return time.Time{}, "", errDateMissing
	}
	return due, strings.Join(fields[1:], " "), nil
}

// resolve finds an item by its 1-based position, a unique id prefix, or a
// case-insensitive name.
func resolve[T any](ref string, items []T, id func(T) string, name func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("a number or id is required")
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return zero, fmt.Errorf("no entry #%d (list has %d)", n, len(items))
		}
		return items[n-1], nil
	}

	var matches []T
	for _, it := range items {
		if strings.HasPrefix(id(it), ref) || (name != nil && strings.EqualFold(name(it), ref)) {
			matches = append(matches, it)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("nothing matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return zero, fmt.Errorf("%q is ambiguous (%d matches)", ref, len(matches))
	}
}
