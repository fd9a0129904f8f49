// Command mcp-parentime provides an MCP server for children's health
// reminders.
//
// It exposes children, catalog suggestions, computed events and scheduled
// reminders stored in a SQLite database.
//
// Usage:
//
//	./mcp-parentime          # Start MCP server (stdio)
//	./mcp-parentime --help   # Show help
//
// Environment:
//
//	PARENTIME_DATABASE_PATH  Path to SQLite database (default: ~/.parentime/parentime.db)
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/parentime/internal/config"
	ptserver "github.com/notexe/parentime/internal/server"
	"github.com/notexe/parentime/internal/tracker"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	_ = godotenv.Load()

	cfg, err := config.Load(config.GetDefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	t, err := tracker.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer t.Close()

	s := ptserver.NewServer(t)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP ParenTime Server - Children's health reminders via MCP protocol

USAGE:
    mcp-parentime          Start MCP server (communicates via stdio)
    mcp-parentime --help   Show this help

ENVIRONMENT:
    PARENTIME_DATABASE_PATH    Path to SQLite database file
                               Default: ~/.parentime/parentime.db
    PARENTIME_CATALOG_PATH     JSON or YAML template catalog (default: built-in)
    PARENTIME_CALENDAR_TIMEZONE  IANA time zone for due dates
    TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID
                               Enable notification delivery

TOOLS:
    list_children, add_child, update_child, delete_child
    list_templates, list_suggestions, ignore_suggestion, activate_suggestion
    upcoming_events, overdue_events, dashboard
    list_reminders, add_reminder, activate_reminder, deactivate_reminder,
    complete_reminder, delete_reminder
    export_schedule    Write every child and reminder to an .xlsx workbook

CONFIGURATION:
    Register in your MCP client:
    {
      "mcpServers": {
        "parentime": {
          "command": "/path/to/mcp-parentime",
          "args": []
        }
      }
    }`)
}
