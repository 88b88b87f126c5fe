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

// RegisterMemberInput carries input for the orchestrator.
type RegisterMemberInput struct {
	Name      string
	Phone     string
	Plan      string
	Fees      int
	StartDate string // YYYY-MM-DD; empty means today
	EndDate   string // YYYY-MM-DD
}

// RegisterMemberResult carries what registration produced.
type RegisterMemberResult struct {
	Member  member.Member
	Payment payment.Payment
	QRPath  string // empty if QR generation failed
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentStore
	QRIssuer     QRIssuer           // optional: nil skips QR generation
	Notify       *NotifyPaymentDeps // optional: nil skips the receipt email
	Now          func() time.Time   // injectable for testing
}

// ExecuteRegisterMember coordinates member registration.
// PRE: Name, Phone, Plan non-empty; Fees >= 0; EndDate >= StartDate
// POST: One member row with the next sequential ID, one Join payment of Fees, QR issued
// INVARIANT: Member IDs are unique and increase monotonically
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (RegisterMemberResult, error) {
	now := nowOrDefault(deps.Now)
	today := now.Format(member.DateLayout)

	if strings.TrimSpace(input.Name) == "" {
		return RegisterMemberResult{}, invalid("name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return RegisterMemberResult{}, invalid("phone is required")
	}
	if strings.TrimSpace(input.Plan) == "" {
		return RegisterMemberResult{}, invalid("plan is required")
	}
	if strings.TrimSpace(input.EndDate) == "" {
		return RegisterMemberResult{}, invalid("end date is required")
	}
	start := strings.TrimSpace(input.StartDate)
	if start == "" {
		start = today
	}

	existing, err := deps.MemberStore.List(ctx)
	if err != nil {
		return RegisterMemberResult{}, fmt.Errorf("read members: %w", err)
	}
	ids := make([]string, len(existing))
	for i, m := range existing {
		ids[i] = m.ID
	}

	m := member.Member{
		ID:        member.NextID(ids),
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Plan:      strings.TrimSpace(input.Plan),
		Fees:      input.Fees,
		StartDate: start,
		EndDate:   strings.TrimSpace(input.EndDate),
	}
	if err := m.Validate(); err != nil {
		return RegisterMemberResult{}, invalid("%s", err.Error())
	}

	p := payment.Payment{
		TransactionID: NewTransactionID(),
		MemberID:      m.ID,
		Amount:        m.Fees,
		Date:          today,
		Type:          payment.TypeJoin,
		Notes:         "Plan: " + m.Plan,
	}
	if err := p.Validate(); err != nil {
		return RegisterMemberResult{}, invalid("%s", err.Error())
	}

	if err := deps.MemberStore.Append(ctx, m); err != nil {
		return RegisterMemberResult{}, err
	}
	if err := deps.PaymentStore.Append(ctx, p); err != nil {
		slog.Error("registration_partial_failure", "member_id", m.ID, "transaction_id", p.TransactionID, "error", err)
		return RegisterMemberResult{Member: m}, fmt.Errorf("member %s saved but join payment failed: %w", m.ID, err)
	}

	result := RegisterMemberResult{Member: m, Payment: p}
	if deps.QRIssuer != nil {
		path, err := deps.QRIssuer.IssueMember(m.ID)
		if err != nil {
			slog.Warn("qr_event", "event", "member_qr_failed", "member_id", m.ID, "error", err)
		}
		result.QRPath = path
	}

	slog.Info("member_event", "event", "member_registered", "member_id", m.ID, "plan", m.Plan, "end_date", m.EndDate, "transaction_id", p.TransactionID)

	if deps.Notify != nil {
		ExecuteNotifyPayment(ctx, NotifyPaymentInput{Member: m, Payment: p}, *deps.Notify)
	}
	return result, nil
}
