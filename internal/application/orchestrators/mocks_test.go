package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	emailAdapter "frontdesk/internal/adapters/email"
	"frontdesk/internal/domain/attendance"
	"frontdesk/internal/domain/member"
	"frontdesk/internal/domain/payment"
)

// --- in-memory test doubles ---

type memMemberStore struct {
	members   []member.Member
	appendErr error
}

// List returns members in insertion order.
// POST: returns a copy of the stored slice
func (s *memMemberStore) List(_ context.Context) ([]member.Member, error) {
	return append([]member.Member(nil), s.members...), nil
}

// GetByID looks a member up by normalized ID.
// PRE: id is non-empty
// POST: returns member or an error wrapping member.ErrNotFound
func (s *memMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	for _, m := range s.members {
		if m.ID == member.NormalizeID(id) {
			return m, nil
		}
	}
	return member.Member{}, fmt.Errorf("%w: %s", member.ErrNotFound, id)
}

// Append stores a member at the end.
// POST: member appended unless appendErr is set
func (s *memMemberStore) Append(_ context.Context, m member.Member) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.members = append(s.members, m)
	return nil
}

// Update replaces the member with the same ID.
// POST: returns member.ErrNotFound if absent
func (s *memMemberStore) Update(_ context.Context, m member.Member) error {
	for i := range s.members {
		if s.members[i].ID == m.ID {
			s.members[i] = m
			return nil
		}
	}
	return member.ErrNotFound
}

type memPaymentStore struct {
	payments  []payment.Payment
	appendErr error
}

// Append adds a ledger entry.
// POST: payment appended unless appendErr is set
func (s *memPaymentStore) Append(_ context.Context, p payment.Payment) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.payments = append(s.payments, p)
	return nil
}

type memAttendanceStore struct {
	days map[string][]attendance.Record
}

func newMemAttendanceStore() *memAttendanceStore {
	return &memAttendanceStore{days: make(map[string][]attendance.Record)}
}

// EnsureDay creates an empty day.
// POST: the day exists
func (s *memAttendanceStore) EnsureDay(_ context.Context, date string) error {
	if _, ok := s.days[date]; !ok {
		s.days[date] = []attendance.Record{}
	}
	return nil
}

// ListByDate returns the day's rows with Row set.
// POST: empty slice for unknown days
func (s *memAttendanceStore) ListByDate(_ context.Context, date string) ([]attendance.Record, error) {
	return append([]attendance.Record(nil), s.days[date]...), nil
}

// Append adds a row to an existing day.
// PRE: EnsureDay was called
// POST: row stored with Row == its index
func (s *memAttendanceStore) Append(_ context.Context, r attendance.Record) error {
	rows, ok := s.days[r.Date]
	if !ok {
		return errors.New("sheet not found")
	}
	r.Row = len(rows)
	s.days[r.Date] = append(rows, r)
	return nil
}

// Update rewrites the row at r.Row.
// POST: error if the row does not exist
func (s *memAttendanceStore) Update(_ context.Context, r attendance.Record) error {
	rows := s.days[r.Date]
	if r.Row < 0 || r.Row >= len(rows) {
		return errors.New("row out of range")
	}
	rows[r.Row] = r
	return nil
}

type stubQRIssuer struct {
	issued []string
	err    error
}

// IssueMember records the ID.
// POST: returns a fake path or err
func (q *stubQRIssuer) IssueMember(id string) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.issued = append(q.issued, id)
	return "/tmp/qr/" + id + ".png", nil
}

type failingSender struct{}

// Send always fails.
func (failingSender) Send(context.Context, emailAdapter.Message) (emailAdapter.Receipt, error) {
	return emailAdapter.Receipt{}, errors.New("provider down")
}

// clockAt returns a fixed clock at the given local wall time.
func clockAt(s string) func() time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}
