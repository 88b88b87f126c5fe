package member

import (
	"context"

	domain "frontdesk/internal/domain/member"
)

// SheetName is the worksheet holding the member registry.
const SheetName = "Members"

// Header is the exact first row of the Members sheet.
var Header = []string{"ID", "Name", "Phone", "Plan", "Fees", "Start Date", "End Date"}

// Store persists Member state.
type Store interface {
	EnsureSheet(ctx context.Context) error
	List(ctx context.Context) ([]domain.Member, error)
	GetByID(ctx context.Context, id string) (domain.Member, error)
	Append(ctx context.Context, value domain.Member) error
	Update(ctx context.Context, value domain.Member) error
}
