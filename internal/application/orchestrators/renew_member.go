package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"frontdesk/internal/domain/member"
	"frontdesk/internal/domain/payment"
)

// RenewMemberInput carries input for the renewal orchestrator.
type RenewMemberInput struct {
	MemberID   string
	NewEndDate string // YYYY-MM-DD
	Amount     int
	Plan       string // optional: empty keeps the current plan
}

// RenewMemberResult carries the renewed member and its new ledger row.
type RenewMemberResult struct {
	Member  member.Member
	Payment payment.Payment
}

// RenewMemberDeps holds dependencies for RenewMember.
type RenewMemberDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentStore
	Notify       *NotifyPaymentDeps // optional
	Now          func() time.Time   // injectable for testing
}

// ExecuteRenewMember extends a membership and records the renewal payment.
// PRE: MemberID refers to an existing member; NewEndDate parses; Amount >= 0
// POST: member EndDate == NewEndDate; exactly one Renewal payment appended
// INVARIANT: Prior payment rows are never modified
func ExecuteRenewMember(ctx context.Context, input RenewMemberInput, deps RenewMemberDeps) (RenewMemberResult, error) {
	now := nowOrDefault(deps.Now)

	id := member.NormalizeID(input.MemberID)
	if id == "" {
		return RenewMemberResult{}, invalid("member ID is required")
	}
	if input.Amount < 0 {
		return RenewMemberResult{}, invalid("amount cannot be negative")
	}
	newEnd := strings.TrimSpace(input.NewEndDate)
	if newEnd == "" {
		return RenewMemberResult{}, invalid("new end date is required")
	}

	m, err := deps.MemberStore.GetByID(ctx, id)
	if err != nil {
		return RenewMemberResult{}, err
	}
	if err := m.Renew(newEnd); err != nil {
		return RenewMemberResult{}, invalid("%s", err.Error())
	}
	if plan := strings.TrimSpace(input.Plan); plan != "" {
		m.Plan = plan
	}
	if err := m.Validate(); err != nil {
		return RenewMemberResult{}, invalid("%s", err.Error())
	}

	p := payment.Payment{
		TransactionID: NewTransactionID(),
		MemberID:      m.ID,
		Amount:        input.Amount,
		Date:          now.Format(payment.DateLayout),
		Type:          payment.TypeRenewal,
		Notes:         "Renewed until " + m.EndDate,
	}
	if err := p.Validate(); err != nil {
		return RenewMemberResult{}, invalid("%s", err.Error())
	}

	if err := deps.MemberStore.Update(ctx, m); err != nil {
		return RenewMemberResult{}, err
	}
	if err := deps.PaymentStore.Append(ctx, p); err != nil {
		slog.Error("renewal_partial_failure", "member_id", m.ID, "transaction_id", p.TransactionID, "error", err)
		return RenewMemberResult{Member: m}, fmt.Errorf("member %s renewed but payment failed: %w", m.ID, err)
	}

	slog.Info("member_event", "event", "member_renewed", "member_id", m.ID, "end_date", m.EndDate, "amount", p.Amount, "transaction_id", p.TransactionID)

	if deps.Notify != nil {
		ExecuteNotifyPayment(ctx, NotifyPaymentInput{Member: m, Payment: p}, *deps.Notify)
	}
	return RenewMemberResult{Member: m, Payment: p}, nil
}
