package payment

import (
	"testing"
	"time"
)

// TestPayment_Validate covers ledger row rules.
func TestPayment_Validate(t *testing.T) {
	base := Payment{TransactionID: "TXN-1", MemberID: "M001", Amount: 1000, Date: "2026-10-19", Type: TypeJoin}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid payment rejected: %v", err)
	}

	bad := []func(p *Payment){
		func(p *Payment) { p.TransactionID = "" },
		func(p *Payment) { p.MemberID = "" },
		func(p *Payment) { p.Amount = -5 },
		func(p *Payment) { p.Date = "yesterday" },
		func(p *Payment) { p.Type = "Refund" },
	}
	for i, mutate := range bad {
		p := base
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, p)
		}
	}
}

// TestPayment_InMonth matches on calendar month and year.
func TestPayment_InMonth(t *testing.T) {
	p := Payment{Date: "2026-01-31"}
	if !p.InMonth(2026, time.January) {
		t.Error("expected January 2026")
	}
	if p.InMonth(2025, time.January) || p.InMonth(2026, time.February) {
		t.Error("unexpected month match")
	}
	if (Payment{Date: "bad"}).InMonth(2026, time.January) {
		t.Error("unparseable date must not match")
	}
}
