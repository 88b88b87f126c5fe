package attendance

import (
	"context"

	domain "frontdesk/internal/domain/attendance"
)

// Header is the exact first row of every per-day attendance sheet.
var Header = []string{"Member ID", "Name", "In Time", "Out Time", "Date"}

// Store persists attendance, one sheet per calendar day.
type Store interface {
	EnsureDay(ctx context.Context, date string) error
	ListByDate(ctx context.Context, date string) ([]domain.Record, error)
	Append(ctx context.Context, value domain.Record) error
	Update(ctx context.Context, value domain.Record) error
}
