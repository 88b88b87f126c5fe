package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	"frontdesk/internal/application/listutil"
	"frontdesk/internal/domain/member"
)

// Sort columns and filters accepted by the member list.
var (
	MemberListSortColumns = []string{"id", "name", "plan", "end_date"}
	MemberListFilterKeys  = []string{"status"}
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Params listutil.ListParams
}

// MemberRow is a member with its derived status.
type MemberRow struct {
	member.Member
	Status        string `json:"status"`
	DaysRemaining int    `json:"days_remaining"`
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members      []MemberRow         `json:"members"`
	Page         listutil.PageInfo   `json:"page"`
	Params       listutil.ListParams `json:"-"`
	ActiveCount  int                 `json:"active_count"`
	ExpiredCount int                 `json:"expired_count"`
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
}

// QueryGetMemberList searches, filters, sorts and pages the registry.
// PRE: Params came from listutil.Parse
// POST: Members holds one page; counts cover the whole registry
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps, now time.Time) (GetMemberListResult, error) {
	members, err := deps.MemberStore.List(ctx)
	if err != nil {
		return GetMemberListResult{}, err
	}

	p := query.Params
	status := p.Filters["status"]
	result := GetMemberListResult{Params: p}
	rows := make([]MemberRow, 0, len(members))
	for _, m := range members {
		row := MemberRow{Member: m, Status: m.Status(now), DaysRemaining: m.DaysRemaining(now)}
		if row.Status == member.StatusActive {
			result.ActiveCount++
		} else {
			result.ExpiredCount++
		}
		if status != "" && row.Status != status {
			continue
		}
		if !listutil.MatchesSearch(p.Search, m.ID, m.Name, m.Phone, m.Plan) {
			continue
		}
		rows = append(rows, row)
	}

	sortMembers(rows, p.Sort, p.Dir)
	result.Page = listutil.NewPageInfo(p.Page, p.PerPage, len(rows))
	result.Members = listutil.Paginate(rows, result.Page)
	return result, nil
}

func sortMembers(rows []MemberRow, col, dir string) {
	less := func(a, b MemberRow) bool {
		an, _ := member.ParseID(a.ID)
		bn, _ := member.ParseID(b.ID)
		return an < bn
	}
	switch col {
	case "name":
		less = func(a, b MemberRow) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "plan":
		less = func(a, b MemberRow) bool { return strings.ToLower(a.Plan) < strings.ToLower(b.Plan) }
	case "end_date":
		less = func(a, b MemberRow) bool { return a.EndDate < b.EndDate }
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if dir == "desc" {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}
