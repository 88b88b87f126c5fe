package orchestrators

import (
	"context"
	"strings"

	"frontdesk/internal/domain/attendance"
	"frontdesk/internal/domain/member"
	"frontdesk/internal/domain/payment"

	"github.com/google/uuid"
)

// MemberStore defines the interface for member persistence.
type MemberStore interface {
	List(ctx context.Context) ([]member.Member, error)
	GetByID(ctx context.Context, id string) (member.Member, error)
	Append(ctx context.Context, m member.Member) error
	Update(ctx context.Context, m member.Member) error
}

// PaymentStore defines the interface for the append-only ledger.
type PaymentStore interface {
	Append(ctx context.Context, p payment.Payment) error
}

// AttendanceStore defines the interface for per-day attendance sheets.
type AttendanceStore interface {
	EnsureDay(ctx context.Context, date string) error
	ListByDate(ctx context.Context, date string) ([]attendance.Record, error)
	Append(ctx context.Context, r attendance.Record) error
	Update(ctx context.Context, r attendance.Record) error
}

// QRIssuer writes a member's check-in QR and returns its path.
type QRIssuer interface {
	IssueMember(id string) (string, error)
}

// NewTransactionID returns "TXN-" followed by 8 upper-case hex characters.
func NewTransactionID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TXN-" + strings.ToUpper(hex[:8])
}
