package member

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"frontdesk/internal/adapters/sheets"
	domain "frontdesk/internal/domain/member"
)

// Column positions within Header.
const (
	colID = iota
	colName
	colPhone
	colPlan
	colFees
	colStartDate
	colEndDate
)

// SheetStore implements Store on the Members sheet.
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

// EnsureSheet creates the Members sheet with its header if absent.
func (s *SheetStore) EnsureSheet(ctx context.Context) error {
	return s.wb.EnsureSheet(ctx, SheetName, Header)
}

// List returns every member in sheet order.
// PRE: none
// POST: Returns an empty slice when the sheet does not exist yet; rows without an ID are skipped
func (s *SheetStore) List(ctx context.Context) ([]domain.Member, error) {
	rows, err := s.wb.Rows(ctx, SheetName)
	if sheets.IsNotFound(err) {
		return []domain.Member{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	members := make([]domain.Member, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row[colID]) == "" {
			continue
		}
		members = append(members, decode(i, row))
	}
	return members, nil
}

// GetByID retrieves a member by ID, case-insensitively.
// PRE: id is non-empty
// POST: Returns the member or an error wrapping domain.ErrNotFound
func (s *SheetStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	members, err := s.List(ctx)
	if err != nil {
		return domain.Member{}, err
	}
	want := domain.NormalizeID(id)
	for _, m := range members {
		if domain.NormalizeID(m.ID) == want {
			return m, nil
		}
	}
	return domain.Member{}, fmt.Errorf("%w: %s", domain.ErrNotFound, want)
}

// Append adds a member row after the last one.
// PRE: value has been validated
// POST: sheet exists and its last row encodes value
func (s *SheetStore) Append(ctx context.Context, value domain.Member) error {
	if err := s.EnsureSheet(ctx); err != nil {
		return fmt.Errorf("append member: %w", err)
	}
	if err := s.wb.AppendRow(ctx, SheetName, encode(value)); err != nil {
		return fmt.Errorf("append member %s: %w", value.ID, err)
	}
	return nil
}

// Update overwrites the row whose ID matches value.ID.
// PRE: value has been validated
// POST: exactly one row rewritten, or an error wrapping domain.ErrNotFound
func (s *SheetStore) Update(ctx context.Context, value domain.Member) error {
	rows, err := s.wb.Rows(ctx, SheetName)
	if sheets.IsNotFound(err) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, value.ID)
	}
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	want := domain.NormalizeID(value.ID)
	for i, row := range rows {
		if domain.NormalizeID(row[colID]) != want {
			continue
		}
		if err := s.wb.UpdateRow(ctx, SheetName, i, encode(value)); err != nil {
			return fmt.Errorf("update member %s: %w", value.ID, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", domain.ErrNotFound, value.ID)
}

func encode(m domain.Member) []string {
	return []string{m.ID, m.Name, m.Phone, m.Plan, strconv.Itoa(m.Fees), m.StartDate, m.EndDate}
}

// decode reads a padded row. An unreadable fee is logged and read as zero
// so one hand-edited cell does not hide the whole registry.
func decode(index int, row []string) domain.Member {
	fees, err := sheets.ParseIntCell(row[colFees])
	if err != nil {
		slog.Warn("member_row_unreadable", "sheet", SheetName, "row", index, "column", Header[colFees], "error", err.Error())
	}
	return domain.Member{
		ID:        domain.NormalizeID(row[colID]),
		Name:      strings.TrimSpace(row[colName]),
		Phone:     strings.TrimSpace(row[colPhone]),
		Plan:      strings.TrimSpace(row[colPlan]),
		Fees:      fees,
		StartDate: sheets.DateCell(row[colStartDate]),
		EndDate:   sheets.DateCell(row[colEndDate]),
	}
}
