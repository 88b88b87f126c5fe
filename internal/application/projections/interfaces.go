package projections

import (
	"context"
	"errors"

	domainAttendance "frontdesk/internal/domain/attendance"
	domainMember "frontdesk/internal/domain/member"
	domainPayment "frontdesk/internal/domain/payment"
)

// ErrInvalidDate is returned when a requested day is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

// MemberStore interface for member queries.
type MemberStore interface {
	List(ctx context.Context) ([]domainMember.Member, error)
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
}

// PaymentStore interface for ledger queries.
type PaymentStore interface {
	List(ctx context.Context) ([]domainPayment.Payment, error)
	ListByMemberID(ctx context.Context, memberID string) ([]domainPayment.Payment, error)
}

// AttendanceStore interface for attendance queries.
// ListByDate never creates a sheet.
type AttendanceStore interface {
	ListByDate(ctx context.Context, date string) ([]domainAttendance.Record, error)
}
