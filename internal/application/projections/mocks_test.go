package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainAttendance "frontdesk/internal/domain/attendance"
	domainMember "frontdesk/internal/domain/member"
	domainPayment "frontdesk/internal/domain/payment"
)

type mockMemberStore struct {
	members []domainMember.Member
}

// List returns all seeded members.
// POST: Returns the seeded slice
func (m *mockMemberStore) List(_ context.Context) ([]domainMember.Member, error) {
	return m.members, nil
}

// GetByID returns a seeded member by ID.
// PRE: id is non-empty
// POST: Returns the seeded member or an error wrapping ErrNotFound
func (m *mockMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	for _, mem := range m.members {
		if mem.ID == domainMember.NormalizeID(id) {
			return mem, nil
		}
	}
	return domainMember.Member{}, fmt.Errorf("%w: %s", domainMember.ErrNotFound, id)
}

type mockPaymentStore struct {
	payments []domainPayment.Payment
}

// List returns the seeded ledger.
// POST: Returns the seeded slice
func (m *mockPaymentStore) List(_ context.Context) ([]domainPayment.Payment, error) {
	return m.payments, nil
}

// ListByMemberID filters the seeded ledger.
// POST: Returns payments for memberID in ledger order
func (m *mockPaymentStore) ListByMemberID(_ context.Context, memberID string) ([]domainPayment.Payment, error) {
	var out []domainPayment.Payment
	for _, p := range m.payments {
		if strings.EqualFold(p.MemberID, memberID) {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockAttendanceStore struct {
	days      map[string][]domainAttendance.Record
	requested []string
}

// ListByDate returns the seeded rows for date.
// POST: Records the requested date
func (m *mockAttendanceStore) ListByDate(_ context.Context, date string) ([]domainAttendance.Record, error) {
	m.requested = append(m.requested, date)
	return m.days[date], nil
}

func mustTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func pay(id, memberID string, amount int, date, typ string) domainPayment.Payment {
	return domainPayment.Payment{TransactionID: id, MemberID: memberID, Amount: amount, Date: date, Type: typ}
}

func mem(id, name, end string) domainMember.Member {
	return domainMember.Member{ID: id, Name: name, Phone: "021" + id, Plan: "Monthly", Fees: 1000, StartDate: "2026-01-01", EndDate: end}
}
