package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/notexe/parentime/internal/storage"
)

const authorizationKey = "authorization"

// Outbox is a SQLite-backed Authority. Scheduled notifications are queued
// in a table keyed by notification id and delivered later by a Dispatcher.
// Authorization can only be granted when a delivery channel is configured.
type Outbox struct {
	db         *sqlx.DB
	canDeliver bool
	now        func() time.Time
}

var _ Authority = (*Outbox)(nil)

// Entry is a queued notification.
type Entry struct {
	Notification
	SentAt *time.Time `json:"sent_at,omitempty"`
}

type entryRow struct {
	ID     string         `db:"id"`
	Title  string         `db:"title"`
	Body   string         `db:"body"`
	FireAt string         `db:"fire_at"`
	SentAt sql.NullString `db:"sent_at"`
}

// NewOutbox ensures the outbox tables exist. canDeliver tells whether a
// Sender is available to the dispatcher.
func NewOutbox(db *sqlx.DB, canDeliver bool) (*Outbox, error) {
	err := storage.Migrate(db, `
		CREATE TABLE IF NOT EXISTS notifications (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			body        TEXT NOT NULL DEFAULT '',
			fire_at     TEXT NOT NULL,
			sent_at     TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)
	`, `
		CREATE INDEX IF NOT EXISTS idx_notifications_pending ON notifications (sent_at, fire_at)
	`, `
		CREATE TABLE IF NOT EXISTS notification_settings (
			key    TEXT PRIMARY KEY,
			value  TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, err
	}
	return &Outbox{db: db, canDeliver: canDeliver, now: time.Now}, nil
}

// AuthorizationStatus returns the persisted status. A recorded grant is
// downgraded to not determined when no delivery channel is configured
// anymore, so the next activation asks again.
func (o *Outbox) AuthorizationStatus(ctx context.Context) (AuthorizationStatus, error) {
	var value string
	err := o.db.GetContext(ctx, &value, `SELECT value FROM notification_settings WHERE key = ?`, authorizationKey)
	if errors.Is(err, sql.ErrNoRows) {
		return StatusNotDetermined, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read authorization status: %w", err)
	}

	status := AuthorizationStatus(value)
	if status.Granted() && !o.canDeliver {
		return StatusNotDetermined, nil
	}
	return status, nil
}

// RequestAuthorization grants when a delivery channel exists and records
// the outcome.
func (o *Outbox) RequestAuthorization(ctx context.Context) (bool, error) {
	status := StatusDenied
	if o.canDeliver {
		status = StatusAuthorized
	}
	if err := o.SetAuthorization(ctx, status); err != nil {
		return false, err
	}
	log.Printf("[outbox] Authorization requested: %s", status)
	return status.Granted(), nil
}

// SetAuthorization overrides the persisted status.
func (o *Outbox) SetAuthorization(ctx context.Context, status AuthorizationStatus) error {
	_, err := o.db.ExecContext(ctx, `
		INSERT INTO notification_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, authorizationKey, string(status))
	if err != nil {
		return fmt.Errorf("failed to store authorization status: %w", err)
	}
	return nil
}

// Schedule queues n, replacing any entry with the same id. A replaced
// entry becomes pending again.
func (o *Outbox) Schedule(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return fmt.Errorf("notification id is required")
	}

	now := storage.FormatInstant(o.now())
	_, err := o.db.ExecContext(ctx, `
		INSERT INTO notifications (id, title, body, fire_at, sent_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, NULL, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			fire_at = excluded.fire_at,
			sent_at = NULL,
			updated_at = excluded.updated_at
	`, n.ID, n.Title, n.Body, storage.FormatInstant(n.FireAt), now, now)
	if err != nil {
		return fmt.Errorf("failed to schedule notification: %w", err)
	}
	return nil
}

// Cancel drops a queued notification. Unknown ids are ignored.
func (o *Outbox) Cancel(ctx context.Context, id string) error {
	if _, err := o.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to cancel notification: %w", err)
	}
	return nil
}

// Due returns pending entries whose fire time is at or before at, oldest
// first.
func (o *Outbox) Due(ctx context.Context, at time.Time) ([]Notification, error) {
	var rows []entryRow
	err := o.db.SelectContext(ctx, &rows, `
		SELECT id, title, body, fire_at, sent_at
		FROM notifications
		WHERE sent_at IS NULL AND fire_at <= ?
		ORDER BY fire_at ASC, id ASC
	`, storage.FormatInstant(at))
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}

	out := make([]Notification, 0, len(rows))
	for _, r := range rows {
		e, err := r.toEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, e.Notification)
	}
	return out, nil
}

// MarkSent records delivery of a notification.
func (o *Outbox) MarkSent(ctx context.Context, id string, at time.Time) error {
	result, err := o.db.ExecContext(ctx, `
		UPDATE notifications SET sent_at = ?, updated_at = ? WHERE id = ?
	`, storage.FormatInstant(at), storage.FormatInstant(o.now()), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}

// List returns every entry, pending first, ordered by fire time.
func (o *Outbox) List(ctx context.Context) ([]Entry, error) {
	var rows []entryRow
	err := o.db.SelectContext(ctx, &rows, `
		SELECT id, title, body, fire_at, sent_at
		FROM notifications
		ORDER BY sent_at IS NOT NULL, fire_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.toEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r entryRow) toEntry() (Entry, error) {
	fireAt, err := storage.ParseTime(r.FireAt)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Notification: Notification{ID: r.ID, Title: r.Title, Body: r.Body, FireAt: fireAt}}
	if r.SentAt.Valid {
		sentAt, err := storage.ParseTime(r.SentAt.String)
		if err != nil {
			return Entry{}, err
		}
		e.SentAt = &sentAt
	}
	return e, nil
}
