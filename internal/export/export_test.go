package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/notexe/parentime/internal/catalog"
	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/reminder"
)

func sample() Schedule {
	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	completedAt := at
	return Schedule{
		Children: []child.Child{
			{ID: "c1", FirstName: "Lea", LastName: "Martin", BirthDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		Reminders: []reminder.ScheduledReminder{
			{ID: "r1", ChildID: "c1", Title: "DTP dose 1", Category: catalog.CategoryVaccines, Priority: catalog.PriorityRequired, DueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "r2", ChildID: "c1", Title: "Checkup", Category: catalog.CategoryAppointments, Priority: catalog.PriorityRecommended, DueDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), IsActivated: true},
			{ID: "r3", ChildID: "c1", Title: "Pharmacy", Category: catalog.CategoryCustom, Priority: catalog.PriorityInfo, DueDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), IsCompleted: true, CompletedAt: &completedAt},
		},
		At:       at,
		Location: time.UTC,
	}
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(RemindersSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Child" || rows[0][4] != "Due date" {
		t.Fatalf("unexpected header %v", rows[0])
	}

	first := rows[1]
	want := []string{"Lea Martin", "DTP dose 1", "Vaccines", "required", "2026-03-01", "inactive", "Overdue for 3 months"}
	for i, w := range want {
		if first[i] != w {
			t.Fatalf("column %d: got %q, want %q", i, first[i], w)
		}
	}
	if rows[2][5] != "active" || rows[3][5] != "completed" {
		t.Fatalf("unexpected statuses %q, %q", rows[2][5], rows[3][5])
	}

	children, err := f.GetRows(ChildrenSheet)
	if err != nil {
		t.Fatalf("GetRows children: %v", err)
	}
	if len(children) != 2 || children[1][1] != "Lea" || children[1][4] != "5" {
		t.Fatalf("unexpected children sheet %v", children)
	}
}

func TestSaveWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	if err := Save(path, sample()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != RemindersSheet || sheets[1] != ChildrenSheet {
		t.Fatalf("unexpected sheets %v", sheets)
	}
}
