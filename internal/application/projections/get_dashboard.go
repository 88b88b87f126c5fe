package projections

import (
	"context"
	"math"
	"slices"
	"sort"
	"time"

	"frontdesk/internal/domain/attendance"
	"frontdesk/internal/domain/member"
	"frontdesk/internal/domain/payment"
)

// DefaultRecentPayments is how many ledger rows the dashboard shows.
const DefaultRecentPayments = 5

// ExpiringWithinDays is the look-ahead for the "expiring soon" panel.
const ExpiringWithinDays = 7

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	RecentLimit int // 0 means DefaultRecentPayments
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	MemberStore     MemberStore
	PaymentStore    PaymentStore
	AttendanceStore AttendanceStore // optional: nil skips today's visit counts
}

// RecentPayment is a ledger row with the member's name resolved.
type RecentPayment struct {
	payment.Payment
	MemberName string `json:"member_name"`
}

// ExpiringMember is an active member whose plan ends soon.
type ExpiringMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	EndDate  string `json:"end_date"`
	DaysLeft int    `json:"days_left"`
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Today     string `json:"today"`
	Month     string `json:"month"`      // "October 2026"
	PrevMonth string `json:"prev_month"` // "September 2026"

	RevenueThisMonth int `json:"revenue_this_month"`
	RevenueLastMonth int `json:"revenue_last_month"`

	// GrowthPercent is 0 with GrowthDefined=false when last month had no revenue.
	GrowthPercent float64 `json:"growth_percent"`
	GrowthDefined bool    `json:"growth_defined"`

	TotalMembers   int              `json:"total_members"`
	ActiveMembers  int              `json:"active_members"`
	ExpiredMembers int              `json:"expired_members"`
	ExpiringSoon   []ExpiringMember `json:"expiring_soon"`

	RecentPayments []RecentPayment `json:"recent_payments"`

	VisitsToday int `json:"visits_today"`
	InsideNow   int `json:"inside_now"`
}

// QueryGetDashboard recomputes every dashboard figure from the sheets.
// PRE: now carries the gym's timezone
// POST: Revenue sums cover the calendar month of now and the month before it
// INVARIANT: Growth never divides by zero
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps, now time.Time) (DashboardResult, error) {
	limit := query.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentPayments
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prev := firstOfMonth.AddDate(0, -1, 0)

	result := DashboardResult{
		Today:          now.Format(member.DateLayout),
		Month:          firstOfMonth.Format("January 2006"),
		PrevMonth:      prev.Format("January 2006"),
		ExpiringSoon:   []ExpiringMember{},
		RecentPayments: []RecentPayment{},
	}

	members, err := deps.MemberStore.List(ctx)
	if err != nil {
		return DashboardResult{}, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
		result.TotalMembers++
		if !m.IsActive(now) {
			result.ExpiredMembers++
			continue
		}
		result.ActiveMembers++
		if days := m.DaysRemaining(now); days <= ExpiringWithinDays {
			result.ExpiringSoon = append(result.ExpiringSoon, ExpiringMember{
				ID: m.ID, Name: m.Name, Phone: m.Phone, EndDate: m.EndDate, DaysLeft: days,
			})
		}
	}
	sort.SliceStable(result.ExpiringSoon, func(i, j int) bool {
		return result.ExpiringSoon[i].EndDate < result.ExpiringSoon[j].EndDate
	})

	payments, err := deps.PaymentStore.List(ctx)
	if err != nil {
		return DashboardResult{}, err
	}
	for _, p := range payments {
		switch {
		case p.InMonth(firstOfMonth.Year(), firstOfMonth.Month()):
			result.RevenueThisMonth += p.Amount
		case p.InMonth(prev.Year(), prev.Month()):
			result.RevenueLastMonth += p.Amount
		}
	}
	result.GrowthPercent, result.GrowthDefined = Growth(result.RevenueThisMonth, result.RevenueLastMonth)
	result.RecentPayments = recentPayments(payments, names, limit)

	if deps.AttendanceStore != nil {
		records, err := deps.AttendanceStore.ListByDate(ctx, result.Today)
		if err != nil {
			return DashboardResult{}, err
		}
		result.VisitsToday = len(records)
		result.InsideNow = openCount(records)
	}
	return result, nil
}

// Growth returns the percentage change from prev to cur rounded to one decimal.
// POST: defined is false (and pct 0) when prev is 0
func Growth(cur, prev int) (pct float64, defined bool) {
	if prev == 0 {
		return 0, false
	}
	raw := float64(cur-prev) / float64(prev) * 100
	return math.Round(raw*10) / 10, true
}

// recentPayments returns the newest limit payments, by date then ledger position.
func recentPayments(payments []payment.Payment, names map[string]string, limit int) []RecentPayment {
	ordered := slices.Clone(payments)
	slices.Reverse(ordered)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date > ordered[j].Date })
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	out := make([]RecentPayment, 0, len(ordered))
	for _, p := range ordered {
		out = append(out, RecentPayment{Payment: p, MemberName: names[p.MemberID]})
	}
	return out
}

// openCount counts rows still missing an out time.
func openCount(records []attendance.Record) int {
	n := 0
	for _, r := range records {
		if r.IsOpen() {
			n++
		}
	}
	return n
}
