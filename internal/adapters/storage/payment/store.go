package payment

import (
	"context"

	domain "frontdesk/internal/domain/payment"
)

// SheetName is the worksheet holding the payment ledger.
const SheetName = "Payments"

// Header is the exact first row of the Payments sheet.
var Header = []string{"Transaction ID", "Member ID", "Amount", "Date", "Type", "Notes"}

// Store persists the append-only payment ledger. There is no update or delete.
type Store interface {
	EnsureSheet(ctx context.Context) error
	Append(ctx context.Context, value domain.Payment) error
	List(ctx context.Context) ([]domain.Payment, error)
	ListByMemberID(ctx context.Context, memberID string) ([]domain.Payment, error)
}
