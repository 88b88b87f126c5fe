package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"frontdesk/internal/domain/attendance"
	"frontdesk/internal/domain/member"
)

// CheckInMemberInput carries input for the check-in orchestrator.
// MemberID is free text from the scanner or the keypad.
type CheckInMemberInput struct {
	MemberID string
}

// CheckInResult describes what a scan did.
type CheckInResult struct {
	Action  string // attendance.ActionCheckedIn or attendance.ActionCheckedOut
	Member  member.Member
	Time    string // HH:MM recorded on the sheet
	Date    string // YYYY-MM-DD
	Expired bool   // the member's plan has lapsed; the desk should follow up
	Record  attendance.Record
}

// CheckInMemberDeps holds dependencies for CheckInMember.
type CheckInMemberDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
	Now             func() time.Time // injectable for testing
}

// ExecuteCheckInMember toggles a member in or out of the gym for today.
// PRE: MemberID is non-empty
// POST: If the member had an open row today, its Out Time is set; otherwise a new row is appended
// INVARIANT: At most one open attendance row per member per day
func ExecuteCheckInMember(ctx context.Context, input CheckInMemberInput, deps CheckInMemberDeps) (CheckInResult, error) {
	id := member.NormalizeID(input.MemberID)
	if id == "" {
		return CheckInResult{}, invalid("member ID is required")
	}

	m, err := deps.MemberStore.GetByID(ctx, id)
	if err != nil {
		return CheckInResult{}, err
	}

	now := nowOrDefault(deps.Now)
	date := now.Format(attendance.DateLayout)
	clock := now.Format(attendance.TimeLayout)

	if err := deps.AttendanceStore.EnsureDay(ctx, date); err != nil {
		return CheckInResult{}, fmt.Errorf("prepare attendance sheet: %w", err)
	}
	records, err := deps.AttendanceStore.ListByDate(ctx, date)
	if err != nil {
		return CheckInResult{}, err
	}

	result := CheckInResult{Member: m, Time: clock, Date: date, Expired: !m.IsActive(now)}

	if open, ok := openRecord(records, m.ID); ok {
		if err := open.CheckOut(clock); err != nil {
			return CheckInResult{}, err
		}
		if err := deps.AttendanceStore.Update(ctx, open); err != nil {
			return CheckInResult{}, err
		}
		result.Action = attendance.ActionCheckedOut
		result.Record = open
		slog.Info("checkin_event", "event", "member_checked_out", "member_id", m.ID, "name", m.Name, "in_time", open.InTime, "out_time", clock, "date", date)
		return result, nil
	}

	// No open row: first scan of the day, or a new session after an earlier in+out pair.
	rec := attendance.Record{Row: -1, MemberID: m.ID, Name: m.Name, InTime: clock, Date: date}
	if err := rec.Validate(); err != nil {
		return CheckInResult{}, err
	}
	if err := deps.AttendanceStore.Append(ctx, rec); err != nil {
		return CheckInResult{}, err
	}
	result.Action = attendance.ActionCheckedIn
	result.Record = rec
	slog.Info("checkin_event", "event", "member_checked_in", "member_id", m.ID, "name", m.Name, "in_time", clock, "date", date, "expired", result.Expired)
	return result, nil
}

// openRecord returns the member's most recent open row.
func openRecord(records []attendance.Record, memberID string) (attendance.Record, bool) {
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if r.MemberID == memberID && r.IsOpen() {
			return r, true
		}
	}
	return attendance.Record{}, false
}
