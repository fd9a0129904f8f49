package child

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/notexe/parentime/internal/storage"
)

// Repository is the persistence contract for children.
type Repository interface {
	List(ctx context.Context) ([]Child, error)
	Get(ctx context.Context, id string) (Child, error)
	Add(ctx context.Context, c Child) error
	Update(ctx context.Context, c Child) error
	Delete(ctx context.Context, id string) error
}

// Store provides SQLite-backed storage for children.
type Store struct {
	db  *sqlx.DB
	loc *time.Location
	now func() time.Time
}

var _ Repository = (*Store)(nil)

// NewStore ensures the children table exists. Birth dates are stored as
// calendar dates and read back at midnight in loc.
func NewStore(db *sqlx.DB, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}
	err := storage.Migrate(db, `
		CREATE TABLE IF NOT EXISTS children (
			id          TEXT PRIMARY KEY,
			first_name  TEXT NOT NULL,
			last_name   TEXT NOT NULL DEFAULT '',
			birth_date  TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)
	`)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, loc: loc, now: time.Now}, nil
}

// List returns all children ordered by birth date, oldest first.
func (s *Store) List(ctx context.Context) ([]Child, error) {
	var rows []childRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, first_name, last_name, birth_date
		FROM children ORDER BY birth_date ASC, first_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}

	children := make([]Child, 0, len(rows))
	for _, r := range rows {
		c, err := r.toChild(s.loc)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return children, nil
}

// Get returns a single child by id.
func (s *Store) Get(ctx context.Context, id string) (Child, error) {
	var row childRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, first_name, last_name, birth_date
		FROM children WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Child{}, fmt.Errorf("child %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Child{}, fmt.Errorf("failed to get child: %w", err)
	}
	return row.toChild(s.loc)
}

// Add inserts a child. A duplicate id reports ErrConflict.
func (s *Store) Add(ctx context.Context, c Child) error {
	if err := c.Validate(s.now()); err != nil {
		return err
	}

	now := storage.FormatTime(s.now().UTC())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO children (id, first_name, last_name, birth_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.FirstName, c.LastName, c.BirthDate.In(s.loc).Format(DateLayout), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("child %s: %w", c.ID, ErrConflict)
		}
		return fmt.Errorf("failed to insert child: %w", err)
	}
	return nil
}

// Update replaces a child's names and birth date.
func (s *Store) Update(ctx context.Context, c Child) error {
	if err := c.Validate(s.now()); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE children SET first_name = ?, last_name = ?, birth_date = ?, updated_at = ?
		WHERE id = ?
	`, c.FirstName, c.LastName, c.BirthDate.In(s.loc).Format(DateLayout),
		storage.FormatTime(s.now().UTC()), c.ID)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("child %s: %w", c.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a child by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("child %s: %w", id, ErrNotFound)
	}
	return nil
}

type childRow struct {
	ID        string `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	BirthDate string `db:"birth_date"`
}

func (r childRow) toChild(loc *time.Location) (Child, error) {
	birth, err := ParseDate(r.BirthDate, loc)
	if err != nil {
		return Child{}, err
	}
	return Child{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, BirthDate: birth}, nil
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}
