// Package server exposes the tracker as MCP tools.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/export"
	"github.com/notexe/parentime/internal/reminder"
	"github.com/notexe/parentime/internal/tracker"
)

const (
	serverName    = "parentime"
	serverVersion = "1.0.0"
)

// Server is the MCP server for children's health reminders.
type Server struct {
	mcpServer *server.MCPServer
	tracker   *tracker.Tracker
}

// NewServer creates a new MCP server backed by the given tracker.
func NewServer(t *tracker.Tracker) *Server {
	s := &Server{
		tracker: t,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerChildTools()
	s.registerSuggestionTools()
	s.registerReminderTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerChildTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_children",
			mcp.WithDescription("List all children with their age in months"),
		),
		s.handleListChildren,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_child",
			mcp.WithDescription("Register a child"),
			mcp.WithString("first_name", mcp.Required(), mcp.Description("First name")),
			mcp.WithString("last_name", mcp.Description("Last name")),
			mcp.WithString("birth_date", mcp.Required(), mcp.Description("Birth date as YYYY-MM-DD")),
		),
		s.handleAddChild,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_child",
			mcp.WithDescription("Update a child's names or birth date"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Child ID")),
			mcp.WithString("first_name", mcp.Description("New first name")),
			mcp.WithString("last_name", mcp.Description("New last name")),
			mcp.WithString("birth_date", mcp.Description("New birth date as YYYY-MM-DD")),
		),
		s.handleUpdateChild,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_child",
			mcp.WithDescription("Delete a child with all of its reminders"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Child ID")),
		),
		s.handleDeleteChild,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_templates",
			mcp.WithDescription("List the reminder template catalog"),
			mcp.WithString("category", mcp.Description("Filter by category: vaccines, appointments, medications, custom")),
		),
		s.handleListTemplates,
	)
}

func (s *Server) registerSuggestionTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_suggestions",
			mcp.WithDescription("List the templates that apply to a child today, excluding ignored and activated ones"),
			mcp.WithString("child_id", mcp.Required(), mcp.Description("Child ID")),
		),
		s.handleListSuggestions,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("ignore_suggestion",
			mcp.WithDescription("Hide a suggestion for a child"),
			mcp.WithString("child_id", mcp.Required(), mcp.Description("Child ID")),
			mcp.WithString("template_id", mcp.Required(), mcp.Description("Template ID")),
		),
		s.handleIgnoreSuggestion,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("activate_suggestion",
			mcp.WithDescription("Turn a suggestion into an active reminder with a notification on its next due date"),
			mcp.WithString("child_id", mcp.Required(), mcp.Description("Child ID")),
			mcp.WithString("template_id", mcp.Required(), mcp.Description("Template ID")),
		),
		s.handleActivateSuggestion,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("upcoming_events",
			mcp.WithDescription("Next scheduled event of each vaccine series or template within the horizon"),
			mcp.WithString("child_id", mcp.Required(), mcp.Description("Child ID")),
			mcp.WithBoolean("only_activated", mcp.Description("Only events with an active reminder")),
		),
		s.handleUpcomingEvents,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("overdue_events",
			mcp.WithDescription("Required events whose due date has passed"),
			mcp.WithString("child_id", mcp.Required(), mcp.Description("Child ID")),
		),
		s.handleOverdueEvents,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("dashboard",
			mcp.WithDescription("What needs attention now and what comes next for a child"),
			mcp.WithString("child_id", mcp.Required(), mcp.Description("Child ID")),
		),
		s.handleDashboard,
	)
}

func (s *Server) registerReminderTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List reminders, optionally for one child and one category"),
			mcp.WithString("child_id", mcp.Description("Child ID, or empty for all children")),
			mcp.WithString("category", mcp.Description("Filter by category: vaccines, appointments, medications, custom")),
		),
		s.handleListReminders,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a custom reminder for a child"),
			mcp.WithString("child_id", mcp.Required(), mcp.Description("Child ID")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Reminder title")),
			mcp.WithString("due_date", mcp.Required(), mcp.Description("Due date as YYYY-MM-DD")),
			mcp.WithString("category", mcp.Description("vaccines, appointments, medications, custom (default: custom)")),
			mcp.WithString("priority", mcp.Description("required, recommended, info (default: info)")),
			mcp.WithString("description", mcp.Description("Optional description")),
		),
		s.handleAddReminder,
	)

	for _, tool := range []struct {
		name, description string
		handler           server.ToolHandlerFunc
	}{
		{"activate_reminder", "Activate a reminder and schedule its notification", s.handleActivateReminder},
		{"deactivate_reminder", "Deactivate a reminder and cancel its notification", s.handleDeactivateReminder},
		{"complete_reminder", "Mark a reminder as completed", s.handleCompleteReminder},
		{"delete_reminder", "Delete a reminder permanently", s.handleDeleteReminder},
	} {
		s.mcpServer.AddTool(
			mcp.NewTool(tool.name,
				mcp.WithDescription(tool.description),
				mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			),
			tool.handler,
		)
	}

	s.mcpServer.AddTool(
		mcp.NewTool("export_schedule",
			mcp.WithDescription("Write all children and reminders to an Excel workbook"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Destination .xlsx path")),
		),
		s.handleExportSchedule,
	)
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(output))
}

func errorResult(action string, err error) *mcp.CallToolResult {
	switch {
	case tracker.IsPermissionDenied(err):
		return mcp.NewToolResultError("Notifications are not authorized: configure Telegram delivery to activate reminders.")
	case errors.Is(err, child.ErrNotFound), errors.Is(err, reminder.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %v", err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
	}
}

func requireArg(req mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v := strings.TrimSpace(req.GetString(name, ""))
	if v == "" {
		return "", mcp.NewToolResultError(name + " is required")
	}
	return v, nil
}

func invalidDate(name, value string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("invalid %s %q: use YYYY-MM-DD", name, value))
}

type childView struct {
	child.Child
	AgeMonths *int `json:"age_months,omitempty"`
}

func (s *Server) viewChild(c child.Child) childView {
	v := childView{Child: c}
	if months, ok := c.AgeInMonths(s.tracker.Now(), s.tracker.Location()); ok {
		v.AgeMonths = &months
	}
	return v
}

func (s *Server) handleListChildren(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	children, err := s.tracker.ListChildren(ctx)
	if err != nil {
		return errorResult("list children", err), nil
	}
	if len(children) == 0 {
		return mcp.NewToolResultText("No children registered."), nil
	}

	views := make([]childView, 0, len(children))
	for _, c := range children {
		views = append(views, s.viewChild(c))
	}
	return jsonResult(views), nil
}

func (s *Server) handleAddChild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	firstName, res := requireArg(req, "first_name")
	if res != nil {
		return res, nil
	}
	birthStr, res := requireArg(req, "birth_date")
	if res != nil {
		return res, nil
	}
	birth, err := child.ParseDate(birthStr, s.tracker.Location())
	if err != nil {
		return invalidDate("birth_date", birthStr), nil
	}

	c, err := s.tracker.AddChild(ctx, firstName, strings.TrimSpace(req.GetString("last_name", "")), birth)
	if err != nil {
		return errorResult("add child", err), nil
	}
	return jsonResult(s.viewChild(c)), nil
}

func (s *Server) handleUpdateChild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "id")
	if res != nil {
		return res, nil
	}

	c, err := s.tracker.Child(ctx, id)
	if err != nil {
		return errorResult("update child", err), nil
	}

	if v := strings.TrimSpace(req.GetString("first_name", "")); v != "" {
		c.FirstName = v
	}
	if v := strings.TrimSpace(req.GetString("last_name", "")); v != "" {
		c.LastName = v
	}
	if v := strings.TrimSpace(req.GetString("birth_date", "")); v != "" {
		birth, err := child.ParseDate(v, s.tracker.Location())
		if err != nil {
			return invalidDate("birth_date", v), nil
		}
		c.BirthDate = birth
	}

	if err := s.tracker.UpdateChild(ctx, c); err != nil {
		return errorResult("update child", err), nil
	}
	return jsonResult(s.viewChild(c)), nil
}

func (s *Server) handleDeleteChild(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "id")
	if res != nil {
		return res, nil
	}
	if err := s.tracker.DeleteChild(ctx, id); err != nil {
		return errorResult("delete child", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Child %s deleted.", id)), nil
}

func (s *Server) handleListTemplates(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")

	var out []catalog.Template
	for _, t := range s.tracker.Templates() {
		if category == "" || string(t.Category) == category {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return mcp.NewToolResultText("No templates found."), nil
	}
	return jsonResult(out), nil
}

func (s *Server) handleListSuggestions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID, res := requireArg(req, "child_id")
	if res != nil {
		return res, nil
	}
	suggestions, err := s.tracker.Suggestions(ctx, childID)
	if err != nil {
		return errorResult("list suggestions", err), nil
	}
	if len(suggestions) == 0 {
		return mcp.NewToolResultText("No suggestions."), nil
	}
	return jsonResult(suggestions), nil
}

func (s *Server) handleIgnoreSuggestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID, res := requireArg(req, "child_id")
	if res != nil {
		return res, nil
	}
	templateID, res := requireArg(req, "template_id")
	if res != nil {
		return res, nil
	}
	if err := s.tracker.IgnoreSuggestion(ctx, childID, templateID); err != nil {
		return errorResult("ignore suggestion", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Suggestion %s ignored.", templateID)), nil
}

func (s *Server) handleActivateSuggestion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID, res := requireArg(req, "child_id")
	if res != nil {
		return res, nil
	}
	templateID, res := requireArg(req, "template_id")
	if res != nil {
		return res, nil
	}
	r, err := s.tracker.ActivateSuggestion(ctx, childID, templateID)
	if err != nil {
		return errorResult("activate suggestion", err), nil
	}
	return jsonResult(r), nil
}

func (s *Server) handleUpcomingEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID, res := requireArg(req, "child_id")
	if res != nil {
		return res, nil
	}
	events, err := s.tracker.UpcomingEvents(ctx, childID, req.GetBool("only_activated", false))
	if err != nil {
		return errorResult("list upcoming events", err), nil
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("No upcoming events."), nil
	}
	return jsonResult(events), nil
}

func (s *Server) handleOverdueEvents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID, res := requireArg(req, "child_id")
	if res != nil {
		return res, nil
	}
	events, err := s.tracker.OverdueEvents(ctx, childID)
	if err != nil {
		return errorResult("list overdue events", err), nil
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("Nothing overdue."), nil
	}
	return jsonResult(events), nil
}

func (s *Server) handleDashboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID, res := requireArg(req, "child_id")
	if res != nil {
		return res, nil
	}
	result, err := s.tracker.Dashboard(ctx, childID)
	if err != nil {
		return errorResult("build dashboard", err), nil
	}
	return jsonResult(result), nil
}

type reminderView struct {
	reminder.ScheduledReminder
	Status    string `json:"status"`
	LateSince string `json:"late_since,omitempty"`
}

func (s *Server) viewReminder(r reminder.ScheduledReminder) reminderView {
	return reminderView{
		ScheduledReminder: r,
		Status:            r.Status(),
		LateSince:         r.LateSinceText(s.tracker.Now(), s.tracker.Location()),
	}
}

func (s *Server) handleListReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category := req.GetString("category", "")
	if category != "" {
		category = string(catalog.ParseCategory(category))
	}

	reminders, err := s.tracker.Reminders(ctx, req.GetString("child_id", ""), catalog.Category(category))
	if err != nil {
		return errorResult("list reminders", err), nil
	}
	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	views := make([]reminderView, 0, len(reminders))
	for _, r := range reminders {
		views = append(views, s.viewReminder(r))
	}
	return jsonResult(views), nil
}

func (s *Server) handleAddReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	childID, res := requireArg(req, "child_id")
	if res != nil {
		return res, nil
	}
	title, res := requireArg(req, "title")
	if res != nil {
		return res, nil
	}
	dueStr, res := requireArg(req, "due_date")
	if res != nil {
		return res, nil
	}
	due, err := child.ParseDate(dueStr, s.tracker.Location())
	if err != nil {
		return invalidDate("due_date", dueStr), nil
	}

	d := reminder.Draft{
		ChildID:     childID,
		Title:       title,
		DueDate:     due,
		Description: req.GetString("description", ""),
	}
	if v := req.GetString("category", ""); v != "" {
		d.Category = catalog.ParseCategory(v)
	}
	if v := req.GetString("priority", ""); v != "" {
		d.Priority = catalog.ParsePriority(v)
	}

	r, err := s.tracker.AddReminder(ctx, d)
	if err != nil {
		return errorResult("add reminder", err), nil
	}
	return jsonResult(s.viewReminder(r)), nil
}

func (s *Server) handleActivateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.transition(ctx, req, "activate reminder", s.tracker.ActivateReminder)
}

func (s *Server) handleDeactivateReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.transition(ctx, req, "deactivate reminder", s.tracker.DeactivateReminder)
}

func (s *Server) handleCompleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.transition(ctx, req, "complete reminder", s.tracker.CompleteReminder)
}

func (s *Server) transition(ctx context.Context, req mcp.CallToolRequest, action string, fn func(context.Context, string) (reminder.ScheduledReminder, error)) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "id")
	if res != nil {
		return res, nil
	}
	r, err := fn(ctx, id)
	if err != nil {
		return errorResult(action, err), nil
	}
	return jsonResult(s.viewReminder(r)), nil
}

func (s *Server) handleDeleteReminder(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, res := requireArg(req, "id")
	if res != nil {
		return res, nil
	}
	if err := s.tracker.DeleteReminder(ctx, id); err != nil {
		return errorResult("delete reminder", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleExportSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, res := requireArg(req, "path")
	if res != nil {
		return res, nil
	}

	schedule, err := s.tracker.Export(ctx)
	if err != nil {
		return errorResult("export schedule", err), nil
	}
	if err := export.Save(path, schedule); err != nil {
		return errorResult("export schedule", err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Exported %d reminders for %d children to %s.",
		len(schedule.Reminders), len(schedule.Children), path)), nil
}
