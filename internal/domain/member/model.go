package member

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxPhoneLength = 20
	MaxPlanLength  = 50
)

// DateLayout is the on-sheet date format for StartDate and EndDate.
const DateLayout = "2006-01-02"

// Derived status values.
const (
	StatusActive  = "active"
	StatusExpired = "expired"
)

// IDPrefix prefixes every member ID ("M001").
const IDPrefix = "M"

// Domain errors
var (
	ErrNotFound       = errors.New("member not found")
	ErrInvalidID      = errors.New("member ID must look like M001")
	ErrEndBeforeStart = errors.New("end date cannot be before start date")
)

// Member is a registered gym patron.
type Member struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Plan      string `json:"plan"`
	Fees      int    `json:"fees"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: EndDate >= StartDate, both in DateLayout
func (m *Member) Validate() error {
	if _, ok := ParseID(m.ID); !ok {
		return ErrInvalidID
	}
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("member name cannot be empty")
	}
	if len(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if strings.TrimSpace(m.Phone) == "" {
		return errors.New("phone cannot be empty")
	}
	if len(m.Phone) > MaxPhoneLength {
		return errors.New("phone cannot exceed 20 characters")
	}
	if strings.TrimSpace(m.Plan) == "" {
		return errors.New("plan cannot be empty")
	}
	if len(m.Plan) > MaxPlanLength {
		return errors.New("plan cannot exceed 50 characters")
	}
	if m.Fees < 0 {
		return errors.New("fees cannot be negative")
	}
	start, err := time.Parse(DateLayout, m.StartDate)
	if err != nil {
		return fmt.Errorf("start date must be YYYY-MM-DD: %q", m.StartDate)
	}
	end, err := time.Parse(DateLayout, m.EndDate)
	if err != nil {
		return fmt.Errorf("end date must be YYYY-MM-DD: %q", m.EndDate)
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// IsActive reports whether the plan covers the calendar day of now.
// INVARIANT: active iff EndDate >= today
func (m Member) IsActive(now time.Time) bool {
	return m.EndDate >= now.Format(DateLayout)
}

// Status returns StatusActive or StatusExpired for the day of now.
func (m Member) Status(now time.Time) string {
	if m.IsActive(now) {
		return StatusActive
	}
	return StatusExpired
}

// DaysRemaining returns whole days from today until EndDate (negative once expired).
func (m Member) DaysRemaining(now time.Time) int {
	end, err := time.ParseInLocation(DateLayout, m.EndDate, now.Location())
	if err != nil {
		return 0
	}
	today, _ := time.ParseInLocation(DateLayout, now.Format(DateLayout), now.Location())
	return int(math.Round(end.Sub(today).Hours() / 24))
}

// Renew moves EndDate to newEnd.
// PRE: newEnd is in DateLayout
// POST: EndDate == newEnd; no other field changes
func (m *Member) Renew(newEnd string) error {
	end, err := time.Parse(DateLayout, newEnd)
	if err != nil {
		return fmt.Errorf("end date must be YYYY-MM-DD: %q", newEnd)
	}
	if start, err := time.Parse(DateLayout, m.StartDate); err == nil && end.Before(start) {
		return ErrEndBeforeStart
	}
	m.EndDate = newEnd
	return nil
}

// NormalizeID upper-cases and trims a typed or scanned member ID.
func NormalizeID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// FormatID renders the n-th member ID, zero-padded to at least three digits.
func FormatID(n int) string {
	return fmt.Sprintf("%s%03d", IDPrefix, n)
}

// ParseID extracts the sequence number from an ID such as "M042".
func ParseID(id string) (int, bool) {
	id = NormalizeID(id)
	if !strings.HasPrefix(id, IDPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(IDPrefix):])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// NextID returns the ID following the highest sequence number in existing.
// Unparseable IDs are ignored, so a hand-edited sheet cannot cause a reuse.
// POST: returned ID is unique among existing and greater than all of them
func NextID(existing []string) string {
	highest := 0
	for _, id := range existing {
		if n, ok := ParseID(id); ok && n > highest {
			highest = n
		}
	}
	return FormatID(highest + 1)
}
