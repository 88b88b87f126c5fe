package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	emailAdapter "frontdesk/internal/adapters/email"
	"frontdesk/internal/domain/member"
	"frontdesk/internal/domain/payment"
)

var receiptTemplate = template.Must(template.New("receipt").Parse(`<p>{{.Payment.Type}} payment recorded.</p>
<table>
<tr><td>Transaction</td><td>{{.Payment.TransactionID}}</td></tr>
<tr><td>Member</td><td>{{.Member.ID}} {{.Member.Name}}</td></tr>
<tr><td>Plan</td><td>{{.Member.Plan}}</td></tr>
<tr><td>Amount</td><td>{{.Payment.Amount}}</td></tr>
<tr><td>Date</td><td>{{.Payment.Date}}</td></tr>
<tr><td>Valid until</td><td>{{.Member.EndDate}}</td></tr>
</table>
{{if .Payment.Notes}}<p>{{.Payment.Notes}}</p>{{end}}`))

// NotifyPaymentInput carries the payment just written to the ledger.
type NotifyPaymentInput struct {
	Member  member.Member
	Payment payment.Payment
}

// NotifyPaymentDeps holds dependencies for NotifyPayment.
type NotifyPaymentDeps struct {
	Sender emailAdapter.Sender
	To     []string // owner addresses; empty disables notification
}

// ExecuteNotifyPayment emails a receipt for a ledger entry to the gym owner.
// Best effort: failures are logged and never undo the payment.
// PRE: Payment has been appended to the ledger
// POST: At most one message sent
func ExecuteNotifyPayment(ctx context.Context, input NotifyPaymentInput, deps NotifyPaymentDeps) {
	if deps.Sender == nil || len(deps.To) == 0 {
		return
	}
	var body bytes.Buffer
	if err := receiptTemplate.Execute(&body, input); err != nil {
		slog.Error("payment_notify_failed", "transaction_id", input.Payment.TransactionID, "error", err)
		return
	}
	msg := emailAdapter.Message{
		To:      deps.To,
		Subject: fmt.Sprintf("%s payment: %s %s (%d)", input.Payment.Type, input.Member.ID, input.Member.Name, input.Payment.Amount),
		HTML:    body.String(),
		Text: fmt.Sprintf("%s payment %s for %s %s: %d on %s. Valid until %s.",
			input.Payment.Type, input.Payment.TransactionID, input.Member.ID, input.Member.Name,
			input.Payment.Amount, input.Payment.Date, input.Member.EndDate),
	}
	receipt, err := deps.Sender.Send(ctx, msg)
	if err != nil {
		slog.Error("payment_notify_failed", "transaction_id", input.Payment.TransactionID, "error", err)
		return
	}
	slog.Info("payment_event", "event", "payment_notified", "transaction_id", input.Payment.TransactionID, "message_id", receipt.MessageID)
}
