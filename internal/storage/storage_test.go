package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

func openTest(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenEnablesWAL(t *testing.T) {
	db := openTest(t)

	var mode string
	if err := db.Get(&mode, "PRAGMA journal_mode"); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Fatalf("expected wal journal mode, got %q", mode)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	db := openTest(t)
	if err := Migrate(db, `CREATE TABLE IF NOT EXISTS items (id TEXT PRIMARY KEY)`); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	boom := errors.New("boom")
	err := WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items (id) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM items`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
}

func TestTimeRoundTripKeepsCalendarDate(t *testing.T) {
	paris := time.FixedZone("CET", 3600)
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, paris)

	got, err := ParseTime(FormatTime(due))
	if err != nil {
		t.Fatalf("ParseTime: %v", err)
	}
	if !got.Equal(due) || got.Day() != 1 {
		t.Fatalf("expected %s, got %s", due, got)
	}

	if FormatInstant(due) != "2026-02-28T23:00:00Z" {
		t.Fatalf("unexpected instant %s", FormatInstant(due))
	}
}
