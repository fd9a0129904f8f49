package ui

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// SelectorOption represents a single option in the selector
type SelectorOption struct {
	Label       string
	Description string
}

// ErrCancelled is returned when the user leaves the selector with Ctrl+C.
var ErrCancelled = errors.New("cancelled")

// Selector is an arrow-key navigable single-choice menu, used to pick the
// current child.
type Selector struct {
	question string
	options  []SelectorOption
	selected int
	colored  bool

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

// NewSelector creates a new interactive selector. initial is the option
// highlighted first.
func NewSelector(question string, options []SelectorOption, initial int, colored bool) *Selector {
	if initial < 0 || initial >= len(options) {
		initial = 0
	}
	return &Selector{
		question: question,
		options:  options,
		selected: initial,
		colored:  colored,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dimStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// Run displays the selector and returns the index of the chosen option.
func (s *Selector) Run() (int, error) {
	if len(s.options) == 0 {
		return -1, errors.New("nothing to select")
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return s.runSimple()
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple()
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Print("\033[?25h") // Show cursor
	}()

	// Hide cursor
	fmt.Print("\033[?25l")

	totalLines := len(s.options) + 3
	s.printMenu()

	reader := bufio.NewReader(os.Stdin)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return -1, err
		}

		switch b {
		case 13, 10, ' ': // Enter, Space
			s.clearMenu(totalLines)
			return s.selected, nil
		case 3: // Ctrl+C
			s.clearMenu(totalLines)
			return -1, ErrCancelled
		case 'j':
			s.move(1)
		case 'k':
			s.move(-1)
		case 27: // Escape sequence
			b2, _ := reader.ReadByte()
			if b2 == '[' {
				b3, _ := reader.ReadByte()
				switch b3 {
				case 'A': // Up
					s.move(-1)
				case 'B': // Down
					s.move(1)
				}
			}
		default:
			if b >= '1' && b <= '9' {
				if idx := int(b - '1'); idx < len(s.options) {
					s.clearMenu(totalLines)
					return idx, nil
				}
			}
		}

		s.clearMenu(totalLines)
		s.printMenu()
	}
}

func (s *Selector) render(style lipgloss.Style, text string) string {
	if s.colored {
		return style.Render(text)
	}
	return text
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	sb.WriteString(s.render(s.questionStyle, s.question))
	sb.WriteString("\r\n")
	sb.WriteString(s.render(s.hintStyle, "[j/k or arrows] move  [enter] select  [1-9] jump"))
	sb.WriteString("\r\n\r\n")

	for i, opt := range s.options {
		label := opt.Label
		if opt.Description != "" {
			label += " - " + opt.Description
		}

		if i == s.selected {
			sb.WriteString(s.render(s.cursorStyle, "> "))
			sb.WriteString(s.render(s.selectedStyle, label))
		} else {
			sb.WriteString(s.render(s.dimStyle, "  "))
			sb.WriteString(s.render(s.optionStyle, label))
		}
		sb.WriteString("\r\n")
	}

	fmt.Print(sb.String())
	os.Stdout.Sync()
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Print("\033[A\033[2K\r")
	}
	os.Stdout.Sync()
}

// runSimple is the fallback when stdin is not a terminal.
func (s *Selector) runSimple() (int, error) {
	fmt.Println(s.question)
	for i, opt := range s.options {
		label := opt.Label
		if opt.Description != "" {
			label += " - " + opt.Description
		}
		fmt.Printf("  [%d] %s\n", i+1, label)
	}
	fmt.Print("Enter number: ")

	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')

	var idx int
	if _, err := fmt.Sscanf(strings.TrimSpace(input), "%d", &idx); err == nil && idx >= 1 && idx <= len(s.options) {
		return idx - 1, nil
	}
	return s.selected, nil
}

func (s *Selector) move(delta int) {
	n := len(s.options)
	s.selected = ((s.selected+delta)%n + n) % n
}
