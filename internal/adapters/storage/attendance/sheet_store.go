package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"frontdesk/internal/adapters/sheets"
	domain "frontdesk/internal/domain/attendance"
)

const (
	colMemberID = iota
	colName
	colInTime
	colOutTime
	colDate
)

// ErrRowMismatch means the row addressed by an update no longer holds the same member.
var ErrRowMismatch = errors.New("attendance row changed since it was read")

// SheetStore implements Store on "Attendance YYYY-MM-DD" sheets.
type SheetStore struct {
	wb sheets.Workbook
}

// Compile-time check that *SheetStore satisfies Store.
var _ Store = (*SheetStore)(nil)

// NewSheetStore creates a new SheetStore.
// PRE: wb is non-nil
func NewSheetStore(wb sheets.Workbook) *SheetStore {
	return &SheetStore{wb: wb}
}

// EnsureDay creates the sheet for date with its header if absent.
func (s *SheetStore) EnsureDay(ctx context.Context, date string) error {
	return s.wb.EnsureSheet(ctx, domain.SheetName(date), Header)
}

// ListByDate returns the day's rows in sheet order with Row set.
// Date is taken from the sheet name, not the row's Date cell.
// PRE: date is YYYY-MM-DD
// POST: Returns an empty slice (and creates nothing) when the day has no sheet
func (s *SheetStore) ListByDate(ctx context.Context, date string) ([]domain.Record, error) {
	rows, err := s.wb.Rows(ctx, domain.SheetName(date))
	if sheets.IsNotFound(err) {
		return []domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list attendance %s: %w", date, err)
	}
	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row[colMemberID]) == "" {
			continue
		}
		records = append(records, domain.Record{
			Row:      i,
			MemberID: strings.ToUpper(strings.TrimSpace(row[colMemberID])),
			Name:     strings.TrimSpace(row[colName]),
			InTime:   sheets.TimeCell(row[colInTime]),
			OutTime:  sheets.TimeCell(row[colOutTime]),
			Date:     date,
		})
	}
	return records, nil
}

// Append adds a row to the sheet for value.Date.
// PRE: the day's sheet exists (EnsureDay)
// POST: the day's sheet grows by one row
func (s *SheetStore) Append(ctx context.Context, value domain.Record) error {
	if err := s.wb.AppendRow(ctx, domain.SheetName(value.Date), encode(value)); err != nil {
		return fmt.Errorf("append attendance %s %s: %w", value.Date, value.MemberID, err)
	}
	return nil
}

// Update rewrites the row at value.Row.
// PRE: value came from ListByDate
// POST: the row is rewritten in place, or ErrRowMismatch if it now belongs to another member
func (s *SheetStore) Update(ctx context.Context, value domain.Record) error {
	name := domain.SheetName(value.Date)
	rows, err := s.wb.Rows(ctx, name)
	if err != nil {
		return fmt.Errorf("update attendance %s: %w", value.Date, err)
	}
	if value.Row < 0 || value.Row >= len(rows) {
		return fmt.Errorf("update attendance %s: %w", value.Date, sheets.ErrRowOutOfRange)
	}
	if !strings.EqualFold(strings.TrimSpace(rows[value.Row][colMemberID]), value.MemberID) {
		return fmt.Errorf("%w: %s row %d", ErrRowMismatch, name, value.Row)
	}
	if err := s.wb.UpdateRow(ctx, name, value.Row, encode(value)); err != nil {
		return fmt.Errorf("update attendance %s %s: %w", value.Date, value.MemberID, err)
	}
	return nil
}

func encode(r domain.Record) []string {
	return []string{r.MemberID, r.Name, r.InTime, r.OutTime, r.Date}
}
