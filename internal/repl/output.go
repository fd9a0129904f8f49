package repl

import (
	"context"
	"fmt"
	"os"
)

func (r *REPL) displayWelcome(ctx context.Context) {
	children, err := r.tracker.ListChildren(ctx)
	if err != nil {
		r.displayError(err)
	}
	status, err := r.tracker.NotificationStatus(ctx)
	if err != nil {
		r.displayError(err)
	}
	fmt.Print(r.formatter.FormatWelcome(len(children), status))
}

func (r *REPL) displayHelp() {
	fmt.Println(r.formatter.FormatHelp(helpText))
}

func (r *REPL) displayText(text string) {
	fmt.Println()
	fmt.Println(text)
	fmt.Println()
}

func (r *REPL) displayError(err error) {
	fmt.Fprintln(os.Stderr, r.formatter.FormatError(err))
}

func (r *REPL) displayInfo(info string) {
	fmt.Println(r.formatter.FormatInfo(info))
}

func (r *REPL) displaySystem(msg string) {
	fmt.Println(r.formatter.FormatSystem(msg))
}

func (r *REPL) displaySuccess(msg string) {
	fmt.Println(r.formatter.FormatSuccess(msg))
}

func (r *REPL) displayWarning(msg string) {
	fmt.Println(r.formatter.FormatWarning(msg))
}
