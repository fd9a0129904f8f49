package repl

import (
	"testing"
	"time"

	"github.com/notexe/parentime/internal/child"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input     string
		isCommand bool
		command   string
		args      string
	}{
		{"/help", true, "/help", ""},
		{"/Add-Child Lea Martin 2024-01-01", true, "/add-child", "Lea Martin 2024-01-01"},
		{"/export   out.xlsx  ", true, "/export", "out.xlsx"},
		{"hello", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			isCommand, command, args := parseCommand(tt.input)
			if isCommand != tt.isCommand || command != tt.command || args != tt.args {
				t.Fatalf("parseCommand(%q) = %v %q %q", tt.input, isCommand, command, args)
			}
		})
	}
}

func TestParseChildArgs(t *testing.T) {
	first, last, birth, err := parseChildArgs("Lea Anne Martin 2024-01-15", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != "Lea" || last != "Anne Martin" {
		t.Fatalf("unexpected names %q %q", first, last)
	}
	if !birth.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected birth date %v", birth)
	}

	first, last, _, err = parseChildArgs("Tom 2023-05-01", time.UTC)
	if err != nil || first != "Tom" || last != "" {
		t.Fatalf("expected a first name only, got %q %q %v", first, last, err)
	}

	if _, _, _, err := parseChildArgs("Tom", time.UTC); err == nil {
		t.Fatal("expected a usage error")
	}
	if _, _, _, err := parseChildArgs("Tom Martin", time.UTC); err != errDateMissing {
		t.Fatalf("expected errDateMissing, got %v", err)
	}
}

func TestParseReminderArgs(t *testing.T) {
	due, title, err := parseReminderArgs("2024-07-01 Pick up drops", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Pick up drops" || due.Format(child.DateLayout) != "2024-07-01" {
		t.Fatalf("unexpected reminder %q %v", title, due)
	}

	if _, _, err := parseReminderArgs("Pick up drops", time.UTC); err != errDateMissing {
		t.Fatalf("expected errDateMissing, got %v", err)
	}
	if _, _, err := parseReminderArgs("2024-07-01", time.UTC); err == nil {
		t.Fatal("expected a usage error")
	}
}

func TestResolve(t *testing.T) {
	children := []child.Child{
		{ID: "a1b2", FirstName: "Lea"},
		{ID: "a1c3", FirstName: "Tom"},
		{ID: "d4e5", FirstName: "Zoe"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"2", "Tom", false},
		{"d4", "Zoe", false},
		{"lea", "Lea", false},
		{"a1", "", true},
		{"4", "", true},
		{"0", "", true},
		{"zz", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolve(tt.ref, children, childID, childName)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.FirstName != tt.want {
				t.Fatalf("resolve(%q) = %s, want %s", tt.ref, got.FirstName, tt.want)
			}
		})
	}
}
