package attendance

import (
	"errors"
	"time"
)

// Layouts used on the per-day attendance sheets.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// SheetPrefix names every per-day sheet: "Attendance 2026-10-19".
const SheetPrefix = "Attendance "

// Scan outcomes.
const (
	ActionCheckedIn  = "checked_in"
	ActionCheckedOut = "checked_out"
)

// Domain errors
var (
	ErrAlreadyCheckedOut = errors.New("attendance row is already checked out")
)

// Record is one member's visit on one day.
type Record struct {
	Row      int    `json:"-"` // position among the day's data rows; -1 until stored
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	InTime   string `json:"in_time"`  // HH:MM
	OutTime  string `json:"out_time"` // HH:MM, empty while the member is inside
	Date     string `json:"date"`     // YYYY-MM-DD
}

// SheetName returns the sheet holding the attendance for date.
func SheetName(date string) string {
	return SheetPrefix + date
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: MemberID must not be empty, InTime must be set
func (r *Record) Validate() error {
	if r.MemberID == "" {
		return errors.New("attendance must be associated with a member")
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return errors.New("attendance date must be YYYY-MM-DD")
	}
	in, err := time.Parse(TimeLayout, r.InTime)
	if err != nil {
		return errors.New("in time must be HH:MM")
	}
	if r.OutTime != "" {
		out, err := time.Parse(TimeLayout, r.OutTime)
		if err != nil {
			return errors.New("out time must be HH:MM")
		}
		if out.Before(in) {
			return errors.New("out time cannot be before in time")
		}
	}
	return nil
}

// IsOpen returns true while the member is checked in and not yet out.
func (r Record) IsOpen() bool {
	return r.InTime != "" && r.OutTime == ""
}

// CheckOut stamps the exit time.
// PRE: record is open
// POST: OutTime == at
func (r *Record) CheckOut(at string) error {
	if !r.IsOpen() {
		return ErrAlreadyCheckedOut
	}
	r.OutTime = at
	return nil
}

// Duration returns the length of a closed visit.
// POST: ok is false while the record is open or times are unparseable
func (r Record) Duration() (time.Duration, bool) {
	if r.IsOpen() {
		return 0, false
	}
	in, err := time.Parse(TimeLayout, r.InTime)
	if err != nil {
		return 0, false
	}
	out, err := time.Parse(TimeLayout, r.OutTime)
	if err != nil {
		return 0, false
	}
	return out.Sub(in), true
}
