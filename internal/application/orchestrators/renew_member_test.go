package orchestrators

import (
	"context"
	"errors"
	"testing"

	"frontdesk/internal/domain/member"
	"frontdesk/internal/domain/payment"
)

func renewFixture() (RenewMemberDeps, *memMemberStore, *memPaymentStore) {
	ms := &memMemberStore{members: []member.Member{
		{ID: "M001", Name: "Alice", Phone: "021", Plan: "Monthly", Fees: 1000, StartDate: "2026-09-19", EndDate: "2026-10-19"},
	}}
	ps := &memPaymentStore{payments: []payment.Payment{
		{TransactionID: "TXN-AAAAAAAA", MemberID: "M001", Amount: 1000, Date: "2026-09-19", Type: payment.TypeJoin, Notes: "Plan: Monthly"},
	}}
	return RenewMemberDeps{MemberStore: ms, PaymentStore: ps, Now: clockAt("2026-10-19 10:00")}, ms, ps
}

// TestRenewMember_ExtendsAndAppends updates the end date and adds exactly one payment.
func TestRenewMember_ExtendsAndAppends(t *testing.T) {
	deps, ms, ps := renewFixture()
	before := ps.payments[0]

	res, err := ExecuteRenewMember(context.Background(), RenewMemberInput{MemberID: "m001", NewEndDate: "2026-11-18", Amount: 900}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.members[0].EndDate != "2026-11-18" || res.Member.EndDate != "2026-11-18" {
		t.Errorf("end date = %s", ms.members[0].EndDate)
	}
	if ms.members[0].Plan != "Monthly" {
		t.Errorf("plan changed to %q", ms.members[0].Plan)
	}
	if len(ps.payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(ps.payments))
	}
	if ps.payments[0] != before {
		t.Error("prior payment row was modified")
	}
	p := ps.payments[1]
	if p.Type != payment.TypeRenewal || p.Amount != 900 || p.Notes != "Renewed until 2026-11-18" || p.Date != "2026-10-19" {
		t.Errorf("renewal payment = %+v", p)
	}
}

// TestRenewMember_ChangesPlan applies an optional new plan.
func TestRenewMember_ChangesPlan(t *testing.T) {
	deps, ms, _ := renewFixture()
	if _, err := ExecuteRenewMember(context.Background(), RenewMemberInput{MemberID: "M001", NewEndDate: "2027-10-19", Amount: 9000, Plan: "Yearly"}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.members[0].Plan != "Yearly" {
		t.Errorf("plan = %q, want Yearly", ms.members[0].Plan)
	}
}

// TestRenewMember_Errors covers unknown members and bad input without writes.
func TestRenewMember_Errors(t *testing.T) {
	cases := map[string]RenewMemberInput{
		"unknown":      {MemberID: "M404", NewEndDate: "2026-11-18", Amount: 100},
		"no id":        {MemberID: " ", NewEndDate: "2026-11-18", Amount: 100},
		"bad date":     {MemberID: "M001", NewEndDate: "next month", Amount: 100},
		"before start": {MemberID: "M001", NewEndDate: "2026-01-01", Amount: 100},
		"negative":     {MemberID: "M001", NewEndDate: "2026-11-18", Amount: -5},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			deps, ms, ps := renewFixture()
			_, err := ExecuteRenewMember(context.Background(), in, deps)
			if !IsValidation(err) {
				t.Errorf("err = %v, want validation error", err)
			}
			if len(ps.payments) != 1 || ms.members[0].EndDate != "2026-10-19" {
				t.Error("failed renewal must not write")
			}
		})
	}

	deps, _, _ := renewFixture()
	_, err := ExecuteRenewMember(context.Background(), RenewMemberInput{MemberID: "M404", NewEndDate: "2026-11-18"}, deps)
	if !errors.Is(err, member.ErrNotFound) {
		t.Errorf("err = %v, want member.ErrNotFound", err)
	}
}
