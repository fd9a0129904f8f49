// Package tracker is the application layer shared by the shell, the MCP
// server and the notifier. It joins the template engine with the child,
// reminder and notification stores.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/config"
	"github.com/notexe/parentime/internal/dashboard"
	"github.com/notexe/parentime/internal/engine"
	"github.com/notexe/parentime/internal/notify"
	"github.com/notexe/parentime/internal/reminder"
	"github.com/notexe/parentime/internal/storage"
)

var (
	ErrUnknownTemplate = errors.New("unknown template")
	ErrNoOccurrence    = errors.New("no upcoming occurrence")
)

// Options tune the tracker's horizons and clock.
type Options struct {
	HorizonMonths           int
	ActivationHorizonMonths int
	Dashboard               dashboard.Options
	Location                *time.Location
	Now                     func() time.Time
}

// DefaultOptions look one year ahead for events and two years ahead when
// activating a suggestion.
func DefaultOptions() Options {
	return Options{
		HorizonMonths:           12,
		ActivationHorizonMonths: 24,
		Dashboard:               dashboard.DefaultOptions(),
		Location:                time.Local,
		Now:                     time.Now,
	}
}

// Deps are the collaborators a Tracker is built from.
type Deps struct {
	Engine      *engine.Engine
	Children    child.Repository
	Reminders   reminder.Repository
	Suggestions *reminder.SuggestionStore
	Lifecycle   *reminder.Lifecycle
	Outbox      *notify.Outbox
}

type Tracker struct {
	engine      *engine.Engine
	children    child.Repository
	reminders   reminder.Repository
	suggestions *reminder.SuggestionStore
	lifecycle   *reminder.Lifecycle
	outbox      *notify.Outbox
	opts        Options

	db *sqlx.DB
}

// New assembles a tracker from already constructed collaborators.
func New(deps Deps, opts Options) *Tracker {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		engine:      deps.Engine,
		children:    deps.Children,
		reminders:   deps.Reminders,
		suggestions: deps.Suggestions,
		lifecycle:   deps.Lifecycle,
		outbox:      deps.Outbox,
		opts:        opts,
	}
}

// Open builds the full stack described by cfg on its SQLite database.
func Open(cfg *config.Config) (*Tracker, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	t, err := openOn(db, cfg, loc)
	if err != nil {
		db.Close()
		return nil, err
	}
	t.db = db
	return t, nil
}

func openOn(db *sqlx.DB, cfg *config.Config, loc *time.Location) (*Tracker, error) {
	children, err := child.NewStore(db, loc)
	if err != nil {
		return nil, err
	}
	reminders, err := reminder.NewStore(db)
	if err != nil {
		return nil, err
	}
	suggestions, err := reminder.NewSuggestionStore(db)
	if err != nil {
		return nil, err
	}
	outbox, err := notify.NewOutbox(db, cfg.TelegramConfigured())
	if err != nil {
		return nil, err
	}

	lifecycle := reminder.NewLifecycle(reminders, outbox, children, reminder.Options{
		NotificationHour:   cfg.Notifications.Hour,
		NotificationMinute: cfg.Notifications.Minute,
		CancelOnComplete:   cfg.Notifications.CancelOnComplete,
		Location:           loc,
		Now:                time.Now,
	})

	return New(Deps{
		Engine:      engine.New(loadCatalog(cfg.Catalog.Path), loc),
		Children:    children,
		Reminders:   reminders,
		Suggestions: suggestions,
		Lifecycle:   lifecycle,
		Outbox:      outbox,
	}, Options{
		HorizonMonths:           cfg.Engine.HorizonMonths,
		ActivationHorizonMonths: cfg.Engine.ActivationHorizonMonths,
		Dashboard: dashboard.Options{
			MaxNow:      cfg.Dashboard.MaxNow,
			MaxUpcoming: cfg.Dashboard.MaxUpcoming,
		},
		Location: loc,
		Now:      time.Now,
	}), nil
}

func loadCatalog(path string) *catalog.Catalog {
	if path == "" {
		return catalog.Default()
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		log.Printf("[tracker] Warning: %v, using an empty catalog", err)
		return catalog.Empty()
	}
	log.Printf("[tracker] Loaded %d templates from %s", cat.Len(), path)
	return cat
}

// Close releases the database opened by Open.
func (t *Tracker) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}

// Outbox exposes the notification outbox for the dispatcher.
func (t *Tracker) Outbox() *notify.Outbox {
	return t.outbox
}

// Location is the calendar convention of every date the tracker computes.
func (t *Tracker) Location() *time.Location {
	return t.opts.Location
}

// Now is the tracker's clock in its location.
func (t *Tracker) Now() time.Time {
	return t.opts.Now().In(t.opts.Location)
}

// Templates lists the catalog in document order.
func (t *Tracker) Templates() []catalog.Template {
	return t.engine.Catalog().Templates()
}

func (t *Tracker) getChild(ctx context.Context, id string) (child.Child, error) {
	c, err := t.children.Get(ctx, id)
	if err != nil {
		return child.Child{}, fmt.Errorf("failed to load child %s: %w", id, err)
	}
	return c, nil
}

func (t *Tracker) requireTemplate(id string) (catalog.Template, error) {
	tpl, ok := t.engine.Catalog().Get(id)
	if !ok {
		return catalog.Template{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	return tpl, nil
}
