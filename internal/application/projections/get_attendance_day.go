package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	"frontdesk/internal/domain/attendance"
)

// GetAttendanceDayQuery carries the requested day.
type GetAttendanceDayQuery struct {
	Date string // YYYY-MM-DD; empty means today
}

// AttendanceRow is a sheet row with its visit length formatted.
type AttendanceRow struct {
	attendance.Record
	Duration string `json:"duration,omitempty"` // "1h45m"; empty while inside
}

// AttendanceDayResult carries one day's attendance sheet.
type AttendanceDayResult struct {
	Date     string          `json:"date"`
	PrevDate string          `json:"prev_date"`
	NextDate string          `json:"next_date,omitempty"` // empty when Date is today
	IsToday  bool            `json:"is_today"`
	Rows     []AttendanceRow `json:"rows"`
	Inside   int             `json:"inside"`
}

// GetAttendanceDayDeps holds dependencies for GetAttendanceDay.
type GetAttendanceDayDeps struct {
	AttendanceStore AttendanceStore
}

// QueryGetAttendanceDay reads the attendance sheet for one day.
// PRE: now carries the gym's timezone
// POST: Returns ErrInvalidDate for malformed or future dates; a day without a sheet yields no rows
func QueryGetAttendanceDay(ctx context.Context, query GetAttendanceDayQuery, deps GetAttendanceDayDeps, now time.Time) (AttendanceDayResult, error) {
	today := now.Format(attendance.DateLayout)
	date := strings.TrimSpace(query.Date)
	if date == "" {
		date = today
	}
	day, err := time.Parse(attendance.DateLayout, date)
	if err != nil || date > today {
		return AttendanceDayResult{}, fmt.Errorf("%w: %q", ErrInvalidDate, query.Date)
	}

	records, err := deps.AttendanceStore.ListByDate(ctx, date)
	if err != nil {
		return AttendanceDayResult{}, err
	}

	result := AttendanceDayResult{
		Date:     date,
		PrevDate: day.AddDate(0, 0, -1).Format(attendance.DateLayout),
		IsToday:  date == today,
		Rows:     make([]AttendanceRow, 0, len(records)),
		Inside:   openCount(records),
	}
	if !result.IsToday {
		result.NextDate = day.AddDate(0, 0, 1).Format(attendance.DateLayout)
	}
	for _, r := range records {
		row := AttendanceRow{Record: r}
		if d, ok := r.Duration(); ok {
			row.Duration = formatDuration(d)
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
