package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"frontdesk/internal/adapters/sheets"
	domain "frontdesk/internal/domain/payment"
)

const (
	colTransactionID = iota
	colMemberID
	colAmount
	colDate
	colType
	colNotes
)

// SheetStore implements Store on the Payments sheet.
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

// EnsureSheet creates the Payments sheet with its header if absent.
func (s *SheetStore) EnsureSheet(ctx context.Context) error {
	return s.wb.EnsureSheet(ctx, SheetName, Header)
}

// Append adds one ledger row.
// PRE: value has been validated
// POST: ledger grows by exactly one row; existing rows are untouched
func (s *SheetStore) Append(ctx context.Context, value domain.Payment) error {
	if err := s.EnsureSheet(ctx); err != nil {
		return fmt.Errorf("append payment: %w", err)
	}
	row := []string{value.TransactionID, value.MemberID, strconv.Itoa(value.Amount), value.Date, value.Type, value.Notes}
	if err := s.wb.AppendRow(ctx, SheetName, row); err != nil {
		return fmt.Errorf("append payment %s: %w", value.TransactionID, err)
	}
	return nil
}

// List returns the ledger in sheet (insertion) order.
// POST: Returns an empty slice when the sheet does not exist yet
func (s *SheetStore) List(ctx context.Context) ([]domain.Payment, error) {
	rows, err := s.wb.Rows(ctx, SheetName)
	if sheets.IsNotFound(err) {
		return []domain.Payment{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	payments := make([]domain.Payment, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row[colTransactionID]) == "" && strings.TrimSpace(row[colMemberID]) == "" {
			continue
		}
		amount, err := sheets.ParseIntCell(row[colAmount])
		if err != nil {
			slog.Warn("payment_row_unreadable", "sheet", SheetName, "row", i, "column", Header[colAmount], "error", err.Error())
		}
		payments = append(payments, domain.Payment{
			TransactionID: strings.TrimSpace(row[colTransactionID]),
			MemberID:      strings.ToUpper(strings.TrimSpace(row[colMemberID])),
			Amount:        amount,
			Date:          sheets.DateCell(row[colDate]),
			Type:          strings.TrimSpace(row[colType]),
			Notes:         row[colNotes],
		})
	}
	return payments, nil
}

// ListByMemberID returns the member's payments in ledger order.
func (s *SheetStore) ListByMemberID(ctx context.Context, memberID string) ([]domain.Payment, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	want := strings.ToUpper(strings.TrimSpace(memberID))
	var out []domain.Payment
	for _, p := range all {
		if p.MemberID == want {
			out = append(out, p)
		}
	}
	return out, nil
}
