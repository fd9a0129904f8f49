package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/storage"
)

// Repository is the persistence contract for reminders. Operations on a
// missing id report ErrNotFound.
type Repository interface {
	ListForChild(ctx context.Context, childID string) ([]ScheduledReminder, error)
	ListAll(ctx context.Context) ([]ScheduledReminder, error)
	Get(ctx context.Context, id string) (ScheduledReminder, error)
	Save(ctx context.Context, r ScheduledReminder) error
	Delete(ctx context.Context, id string) error
	SetActivated(ctx context.Context, id string, activated bool) error
	SetCompleted(ctx context.Context, id string, at time.Time) error
}

// Store provides SQLite-backed storage for reminders.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Repository = (*Store)(nil)

const selectColumns = `
	SELECT id, child_id, template_id, title, category, priority, due_date, description,
	       is_activated, is_completed, completed_at, created_at, updated_at
	FROM reminders`

type reminderRow struct {
	ID          string         `db:"id"`
	ChildID     string         `db:"child_id"`
	TemplateID  sql.NullString `db:"template_id"`
	Title       string         `db:"title"`
	Category    string         `db:"category"`
	Priority    string         `db:"priority"`
	DueDate     string         `db:"due_date"`
	Description string         `db:"description"`
	IsActivated bool           `db:"is_activated"`
	IsCompleted bool           `db:"is_completed"`
	CompletedAt sql.NullString `db:"completed_at"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   string         `db:"updated_at"`
}

// NewStore ensures the reminders table exists.
func NewStore(db *sqlx.DB) (*Store, error) {
	err := storage.Migrate(db, `
		CREATE TABLE IF NOT EXISTS reminders (
			id            TEXT    PRIMARY KEY,
			child_id      TEXT    NOT NULL,
			template_id   TEXT,
			title         TEXT    NOT NULL,
			category      TEXT    NOT NULL DEFAULT 'custom',
			priority      TEXT    NOT NULL DEFAULT 'info',
			due_date      TEXT    NOT NULL,
			description   TEXT    NOT NULL DEFAULT '',
			is_activated  INTEGER NOT NULL DEFAULT 0,
			is_completed  INTEGER NOT NULL DEFAULT 0,
			completed_at  TEXT,
			created_at    TEXT    NOT NULL,
			updated_at    TEXT    NOT NULL
		)
	`, `
		CREATE INDEX IF NOT EXISTS idx_reminders_child ON reminders (child_id)
	`)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

// ListForChild returns a child's reminders ordered by due date.
func (s *Store) ListForChild(ctx context.Context, childID string) ([]ScheduledReminder, error) {
	var rows []reminderRow
	if err := s.db.SelectContext(ctx, &rows, selectColumns+` WHERE child_id = ?`, childID); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return fromRows(rows)
}

// ListAll returns every reminder ordered by due date.
func (s *Store) ListAll(ctx context.Context) ([]ScheduledReminder, error) {
	var rows []reminderRow
	if err := s.db.SelectContext(ctx, &rows, selectColumns); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return fromRows(rows)
}

// Get returns a single reminder by id.
func (s *Store) Get(ctx context.Context, id string) (ScheduledReminder, error) {
	var row reminderRow
	err := s.db.GetContext(ctx, &row, selectColumns+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ScheduledReminder{}, fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ScheduledReminder{}, fmt.Errorf("failed to get reminder: %w", err)
	}
	return row.toReminder()
}

// Save inserts r or replaces the stored record with the same id. The
// original creation time is kept on replace.
func (s *Store) Save(ctx context.Context, r ScheduledReminder) error {
	now := s.now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}

	var templateID, completedAt sql.NullString
	if r.TemplateID != nil {
		templateID = sql.NullString{String: *r.TemplateID, Valid: true}
	}
	if r.CompletedAt != nil {
		completedAt = sql.NullString{String: storage.FormatTime(*r.CompletedAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, child_id, template_id, title, category, priority, due_date,
			description, is_activated, is_completed, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			child_id = excluded.child_id,
			template_id = excluded.template_id,
			title = excluded.title,
			category = excluded.category,
			priority = excluded.priority,
			due_date = excluded.due_date,
			description = excluded.description,
			is_activated = excluded.is_activated,
			is_completed = excluded.is_completed,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
	`, r.ID, r.ChildID, templateID, r.Title, string(r.Category), string(r.Priority),
		storage.FormatTime(r.DueDate), r.Description, r.IsActivated, r.IsCompleted, completedAt,
		storage.FormatTime(r.CreatedAt), storage.FormatTime(now))
	if err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return nil
}

// Delete removes a reminder by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return requireRow(result, id)
}

// SetActivated toggles the activation flag.
func (s *Store) SetActivated(ctx context.Context, id string, activated bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET is_activated = ?, updated_at = ? WHERE id = ?
	`, activated, storage.FormatTime(s.now().UTC()), id)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return requireRow(result, id)
}

// SetCompleted marks a reminder completed at at. A reminder that is
// already completed keeps its first completion time.
func (s *Store) SetCompleted(ctx context.Context, id string, at time.Time) error {
	return storage.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var completed bool
		err := tx.GetContext(ctx, &completed, `SELECT is_completed FROM reminders WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to read reminder: %w", err)
		}
		if completed {
			return nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE reminders SET is_completed = 1, completed_at = ?, updated_at = ? WHERE id = ?
		`, storage.FormatTime(at), storage.FormatTime(s.now().UTC()), id)
		if err != nil {
			return fmt.Errorf("failed to complete reminder: %w", err)
		}
		return nil
	})
}

// DeleteForChild removes every reminder of a child and returns how many
// were removed.
func (s *Store) DeleteForChild(ctx context.Context, childID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE child_id = ?`, childID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reminders: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func requireRow(result sql.Result, id string) error {
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("reminder %s: %w", id, ErrNotFound)
	}
	return nil
}

// fromRows converts rows and orders them by due date. Due dates keep their
// own offsets, so ordering happens here rather than in SQL.
func fromRows(rows []reminderRow) ([]ScheduledReminder, error) {
	out := make([]ScheduledReminder, 0, len(rows))
	for _, row := range rows {
		r, err := row.toReminder()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	SortByDueDate(out)
	return out, nil
}

func (row reminderRow) toReminder() (ScheduledReminder, error) {
	r := ScheduledReminder{
		ID:          row.ID,
		ChildID:     row.ChildID,
		Title:       row.Title,
		Category:    catalog.ParseCategory(row.Category),
		Priority:    catalog.ParsePriority(row.Priority),
		Description: row.Description,
		IsActivated: row.IsActivated,
		IsCompleted: row.IsCompleted,
	}
	if row.TemplateID.Valid {
		id := row.TemplateID.String
		r.TemplateID = &id
	}

	var err error
	if r.DueDate, err = storage.ParseTime(row.DueDate); err != nil {
		return ScheduledReminder{}, err
	}
	if r.CreatedAt, err = storage.ParseTime(row.CreatedAt); err != nil {
		return ScheduledReminder{}, err
	}
	if r.UpdatedAt, err = storage.ParseTime(row.UpdatedAt); err != nil {
		return ScheduledReminder{}, err
	}
	if row.CompletedAt.Valid {
		at, err := storage.ParseTime(row.CompletedAt.String)
		if err != nil {
			return ScheduledReminder{}, err
		}
		r.CompletedAt = &at
	}
	return r, nil
}
