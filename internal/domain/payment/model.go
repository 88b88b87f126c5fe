package payment

import (
	"errors"
	"strings"
	"time"
)

// Payment types recorded in the ledger.
const (
	TypeJoin    = "Join"
	TypeRenewal = "Renewal"
)

// DateLayout is the on-sheet payment date format.
const DateLayout = "2006-01-02"

// MaxNotesLength bounds free-text notes.
const MaxNotesLength = 200

// Payment is one immutable ledger entry for a join or renewal.
type Payment struct {
	TransactionID string `json:"transaction_id"`
	MemberID      string `json:"member_id"`
	Amount        int    `json:"amount"`
	Date          string `json:"date"` // YYYY-MM-DD
	Type          string `json:"type"`
	Notes         string `json:"notes"`
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Type is Join or Renewal, Amount >= 0
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.TransactionID) == "" {
		return errors.New("transaction ID cannot be empty")
	}
	if strings.TrimSpace(p.MemberID) == "" {
		return errors.New("payment must reference a member")
	}
	if p.Amount < 0 {
		return errors.New("amount cannot be negative")
	}
	if _, err := time.Parse(DateLayout, p.Date); err != nil {
		return errors.New("payment date must be YYYY-MM-DD")
	}
	if p.Type != TypeJoin && p.Type != TypeRenewal {
		return errors.New("payment type must be 'Join' or 'Renewal'")
	}
	if len(p.Notes) > MaxNotesLength {
		return errors.New("notes cannot exceed 200 characters")
	}
	return nil
}

// InMonth reports whether the payment date falls in the given calendar month.
func (p Payment) InMonth(year int, month time.Month) bool {
	d, err := time.Parse(DateLayout, p.Date)
	if err != nil {
		return false
	}
	return d.Year() == year && d.Month() == month
}
