package projections

import (
	"context"
	"slices"
	"time"

	"frontdesk/internal/domain/member"
	"frontdesk/internal/domain/payment"
)

// MemberDetailResult backs the renewal page.
type MemberDetailResult struct {
	Member        member.Member     `json:"member"`
	Status        string            `json:"status"`
	DaysRemaining int               `json:"days_remaining"`
	Payments      []payment.Payment `json:"payments"` // newest first
	TotalPaid     int               `json:"total_paid"`

	// SuggestedEndDate is one month past the later of today and the current end date.
	SuggestedEndDate string `json:"suggested_end_date"`
}

// GetMemberDetailDeps holds dependencies for GetMemberDetail.
type GetMemberDetailDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentStore
}

// QueryGetMemberDetail loads a member with their payment history.
// PRE: id is non-empty
// POST: Returns an error wrapping member.ErrNotFound for unknown IDs
func QueryGetMemberDetail(ctx context.Context, id string, deps GetMemberDetailDeps, now time.Time) (MemberDetailResult, error) {
	m, err := deps.MemberStore.GetByID(ctx, id)
	if err != nil {
		return MemberDetailResult{}, err
	}
	payments, err := deps.PaymentStore.ListByMemberID(ctx, m.ID)
	if err != nil {
		return MemberDetailResult{}, err
	}
	payments = slices.Clone(payments)
	slices.Reverse(payments)

	total := 0
	for _, p := range payments {
		total += p.Amount
	}

	base := now
	if end, err := time.ParseInLocation(member.DateLayout, m.EndDate, now.Location()); err == nil && end.After(now) {
		base = end
	}

	return MemberDetailResult{
		Member:           m,
		Status:           m.Status(now),
		DaysRemaining:    m.DaysRemaining(now),
		Payments:         payments,
		TotalPaid:        total,
		SuggestedEndDate: base.AddDate(0, 1, 0).Format(member.DateLayout),
	}, nil
}
