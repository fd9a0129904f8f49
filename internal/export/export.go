// Package export writes children and their reminders to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/notexe/parentime/internal/child"
	"github.com/notexe/parentime/internal/reminder"
)

const (
	RemindersSheet = "Reminders"
	ChildrenSheet  = "Children"
)

var (
	reminderHeader = []string{"Child", "Title", "Category", "Priority", "Due date", "Status", "Late", "Description"}
	childHeader    = []string{"ID", "First name", "Last name", "Birth date", "Age (months)"}
)

// Schedule is the data set written to the workbook.
type Schedule struct {
	Children  []child.Child
	Reminders []reminder.ScheduledReminder
	At        time.Time
	Location  *time.Location
}

// Write renders s as an xlsx workbook to w.
func Write(w io.Writer, s Schedule) error {
	f, err := build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save renders s as an xlsx workbook at path.
func Save(path string, s Schedule) error {
	f, err := build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func build(s Schedule) (*excelize.File, error) {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", RemindersSheet)
	if _, err := f.NewSheet(ChildrenSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	names := make(map[string]string, len(s.Children))
	childRows := make([][]interface{}, 0, len(s.Children))
	for _, c := range s.Children {
		names[c.ID] = c.FullName()
		age := ""
		if months, ok := c.AgeInMonths(s.At, loc); ok {
			age = fmt.Sprint(months)
		}
		childRows = append(childRows, []interface{}{
			c.ID, c.FirstName, c.LastName, c.BirthDate.In(loc).Format(child.DateLayout), age,
		})
	}

	reminderRows := make([][]interface{}, 0, len(s.Reminders))
	for _, r := range s.Reminders {
		name := names[r.ChildID]
		if name == "" {
			name = r.ChildID
		}
		reminderRows = append(reminderRows, []interface{}{
			name,
			r.Title,
			r.Category.Label(),
			string(r.Priority),
			r.DueDate.In(loc).Format(child.DateLayout),
			r.Status(),
			r.LateSinceText(s.At, loc),
			r.Description,
		})
	}

	for _, sheet := range []struct {
		name   string
		header []string
		rows   [][]interface{}
		width  float64
	}{
		{RemindersSheet, reminderHeader, reminderRows, 22},
		{ChildrenSheet, childHeader, childRows, 18},
	} {
		if err := writeSheet(f, sheet.name, sheet.header, sheet.rows, bold, sheet.width); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle int, width float64) error {
	for col, title := range header {
		if err := setCell(f, sheet, col+1, 1, title); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		for col, value := range row {
			if err := setCell(f, sheet, col+1, i+2, value); err != nil {
				return err
			}
		}
	}

	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, width); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
	}
	return nil
}
