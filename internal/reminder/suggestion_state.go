package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/notexe/parentime/internal/storage"
)

// SuggestionState marks a suggestion the user has dealt with.
type SuggestionState string

const (
	SuggestionIgnored   SuggestionState = "ignored"
	SuggestionActivated SuggestionState = "activated"
)

// SuggestionStore persists per (child, template) suggestion states.
type SuggestionStore struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSuggestionStore ensures the suggestion_states table exists.
func NewSuggestionStore(db *sqlx.DB) (*SuggestionStore, error) {
	err := storage.Migrate(db, `
		CREATE TABLE IF NOT EXISTS suggestion_states (
			child_id     TEXT NOT NULL,
			template_id  TEXT NOT NULL,
			state        TEXT NOT NULL,
			updated_at   TEXT NOT NULL,
			PRIMARY KEY (child_id, template_id)
		)
	`)
	if err != nil {
		return nil, err
	}
	return &SuggestionStore{db: db, now: time.Now}, nil
}

// Set records state for a (child, template) pair, replacing any previous
// state.
func (s *SuggestionStore) Set(ctx context.Context, childID, templateID string, state SuggestionState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestion_states (child_id, template_id, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(child_id, template_id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`, childID, templateID, string(state), storage.FormatTime(s.now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to store suggestion state: %w", err)
	}
	return nil
}

// Clear forgets the state of a pair so the suggestion shows again.
func (s *SuggestionStore) Clear(ctx context.Context, childID, templateID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM suggestion_states WHERE child_id = ? AND template_id = ?
	`, childID, templateID)
	if err != nil {
		return fmt.Errorf("failed to clear suggestion state: %w", err)
	}
	return nil
}

// ClearChild forgets every state of a child.
func (s *SuggestionStore) ClearChild(ctx context.Context, childID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM suggestion_states WHERE child_id = ?`, childID); err != nil {
		return fmt.Errorf("failed to clear suggestion states: %w", err)
	}
	return nil
}

// ForChild returns the recorded states of a child keyed by template id.
func (s *SuggestionStore) ForChild(ctx context.Context, childID string) (map[string]SuggestionState, error) {
	var rows []struct {
		TemplateID string `db:"template_id"`
		State      string `db:"state"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT template_id, state FROM suggestion_states WHERE child_id = ?
	`, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestion states: %w", err)
	}

	states := make(map[string]SuggestionState, len(rows))
	for _, r := range rows {
		states[r.TemplateID] = SuggestionState(r.State)
	}
	return states, nil
}
