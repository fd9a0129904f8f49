package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/parentime/internal/config"
	"github.com/notexe/parentime/internal/tracker"
)

const testCatalog = `[
  {"id": "checkup_6m", "title": "Checkup 6 months", "category": "appointments", "priority": "recommended", "schedule": {"dueAgeMonths": [6]}},
  {"id": "vitamin_d", "title": "Vitamin D", "category": "medications", "priority": "info", "conditions": {"maxAge": 1}}
]`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "templates.json")
	if err := os.WriteFile(catalogPath, []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Database.Path = filepath.Join(dir, "parentime.db")
	cfg.Catalog.Path = catalogPath
	cfg.Calendar.Timezone = "UTC"
	cfg.Telegram.BotToken = "token"
	cfg.Telegram.ChatID = "chat"

	tr, err := tracker.Open(cfg)
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	t.Cleanup(func() { tr.Close() })

	return NewServer(tr)
}

func call(t *testing.T, handler server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func decode(t *testing.T, text string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
}

func TestChildAndReminderFlow(t *testing.T) {
	s := newTestServer(t)
	birth := time.Now().UTC().AddDate(0, -5, -3).Format("2006-01-02")

	text, isErr := call(t, s.handleAddChild, map[string]any{"first_name": "Lea", "last_name": "Martin", "birth_date": birth})
	if isErr {
		t.Fatalf("add_child failed: %s", text)
	}
	var added struct {
		ID        string `json:"id"`
		AgeMonths int    `json:"age_months"`
	}
	decode(t, text, &added)
	if added.ID == "" || added.AgeMonths != 5 {
		t.Fatalf("unexpected child %s", text)
	}

	text, _ = call(t, s.handleListChildren, nil)
	if !strings.Contains(text, "Lea") {
		t.Fatalf("list_children missing child: %s", text)
	}

	text, _ = call(t, s.handleListSuggestions, map[string]any{"child_id": added.ID})
	if !strings.Contains(text, "checkup_6m") || !strings.Contains(text, "vitamin_d") {
		t.Fatalf("unexpected suggestions: %s", text)
	}

	text, isErr = call(t, s.handleActivateSuggestion, map[string]any{"child_id": added.ID, "template_id": "checkup_6m"})
	if isErr {
		t.Fatalf("activate_suggestion failed: %s", text)
	}
	var activated struct {
		ID          string `json:"id"`
		IsActivated bool   `json:"is_activated"`
	}
	decode(t, text, &activated)
	if !activated.IsActivated {
		t.Fatalf("expected an active reminder: %s", text)
	}

	text, _ = call(t, s.handleUpcomingEvents, map[string]any{"child_id": added.ID, "only_activated": true})
	if !strings.Contains(text, "checkup_6m") {
		t.Fatalf("expected the activated event: %s", text)
	}

	text, isErr = call(t, s.handleCompleteReminder, map[string]any{"id": activated.ID})
	if isErr || !strings.Contains(text, `"status": "completed"`) {
		t.Fatalf("complete_reminder: %s", text)
	}

	text, isErr = call(t, s.handleAddReminder, map[string]any{"child_id": added.ID, "title": "Pharmacy", "due_date": "2020-13-01"})
	if !isErr || !strings.Contains(text, "YYYY-MM-DD") {
		t.Fatalf("expected a date error, got %s", text)
	}

	text, isErr = call(t, s.handleAddReminder, map[string]any{"child_id": added.ID, "title": "Pharmacy", "due_date": "2020-01-01", "category": "medications"})
	if isErr || !strings.Contains(text, `"late_since"`) || !strings.Contains(text, `"category": "medications"`) {
		t.Fatalf("add_reminder: %s", text)
	}

	text, _ = call(t, s.handleListReminders, map[string]any{"child_id": added.ID, "category": "medications"})
	var listed []map[string]any
	decode(t, text, &listed)
	if len(listed) != 1 || listed[0]["title"] != "Pharmacy" {
		t.Fatalf("unexpected filtered reminders: %s", text)
	}

	text, _ = call(t, s.handleDashboard, map[string]any{"child_id": added.ID})
	var dash struct {
		Now      []json.RawMessage `json:"now"`
		Upcoming []json.RawMessage `json:"upcoming"`
	}
	decode(t, text, &dash)
	if len(dash.Now) == 0 {
		t.Fatalf("expected items now: %s", text)
	}

	out := filepath.Join(t.TempDir(), "schedule.xlsx")
	text, isErr = call(t, s.handleExportSchedule, map[string]any{"path": out})
	if isErr {
		t.Fatalf("export_schedule: %s", text)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected workbook at %s: %v", out, err)
	}

	text, isErr = call(t, s.handleDeleteChild, map[string]any{"id": added.ID})
	if isErr {
		t.Fatalf("delete_child: %s", text)
	}
	text, _ = call(t, s.handleListReminders, nil)
	if text != "No reminders found." {
		t.Fatalf("expected reminders removed with the child, got %s", text)
	}
}

func TestArgumentErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		handler server.ToolHandlerFunc
		args    map[string]any
		want    string
	}{
		{"missing birth date", s.handleAddChild, map[string]any{"first_name": "Tom"}, "birth_date is required"},
		{"future birth date", s.handleAddChild, map[string]any{"first_name": "Tom", "birth_date": "2999-01-01"}, "future"},
		{"unknown child", s.handleListSuggestions, map[string]any{"child_id": "nobody"}, "not found"},
		{"unknown reminder", s.handleDeleteReminder, map[string]any{"id": "nothing"}, "not found"},
		{"missing id", s.handleActivateReminder, nil, "id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := call(t, tt.handler, tt.args)
			if !isErr || !strings.Contains(text, tt.want) {
				t.Fatalf("expected error containing %q, got %q (error=%v)", tt.want, text, isErr)
			}
		})
	}
}

func TestListTemplatesFiltersByCategory(t *testing.T) {
	s := newTestServer(t)

	text, _ := call(t, s.handleListTemplates, map[string]any{"category": "medications"})
	if !strings.Contains(text, "vitamin_d") || strings.Contains(text, "checkup_6m") {
		t.Fatalf("unexpected templates: %s", text)
	}
}
