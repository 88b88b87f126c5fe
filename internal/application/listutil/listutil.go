// Package listutil parses list-view query parameters and pages in-memory rows.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 25

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{10, 25, 50, 100}

// ListParams carries everything a list view reads from its query string.
type ListParams struct {
	Page    int               // 1-indexed
	PerPage int               // one of PerPageOptions
	Sort    string            // allowed column or ""
	Dir     string            // "asc" or "desc"
	Search  string            // free-text query, trimmed
	Filters map[string]string // exact-match filters (e.g. status=active)
}

// Parse reads page, per_page, sort, dir, q and the named filters from q.
// PRE: allowedSort and filterKeys list the accepted names
// POST: returns params with defaults applied and unknown values dropped
func Parse(q url.Values, allowedSort, filterKeys []string) ListParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !slices.Contains(PerPageOptions, perPage) {
		perPage = DefaultPerPage
	}
	sort := q.Get("sort")
	if !slices.Contains(allowedSort, sort) {
		sort = ""
	}
	dir := q.Get("dir")
	if dir != "asc" && dir != "desc" {
		dir = "asc"
	}
	filters := make(map[string]string)
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			filters[key] = v
		}
	}
	return ListParams{
		Page:    page,
		PerPage: perPage,
		Sort:    sort,
		Dir:     dir,
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: filters,
	}
}

// Values encodes p back into query values, omitting defaults.
// Templates use it to build sort and page links that keep the other settings.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 1 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage != 0 && p.PerPage != DefaultPerPage {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
		v.Set("dir", p.Dir)
	}
	if p.Search != "" {
		v.Set("q", p.Search)
	}
	for k, f := range p.Filters {
		v.Set(k, f)
	}
	return v
}

// WithPage returns a copy of p on another page.
func (p ListParams) WithPage(page int) ListParams {
	p.Page = page
	return p
}

// WithSort returns a copy of p sorted by col, flipping the direction if col is already the sort column.
func (p ListParams) WithSort(col string) ListParams {
	if p.Sort == col && p.Dir == "asc" {
		p.Dir = "desc"
	} else {
		p.Dir = "asc"
	}
	p.Sort = col
	p.Page = 1
	return p
}

// MatchesSearch reports whether any field contains query, case-insensitively.
// An empty query matches everything.
func MatchesSearch(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage)
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: returns PageInfo with TotalPages >= 1 and Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	return PageInfo{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page, 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// PageNumbers returns at most 5 page numbers centered on the current page.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(p.Page-maxButtons/2, 1)
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-maxButtons+1, 1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination returns true if there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// Paginate returns the rows of items on the page described by info.
// PRE: info was built from len(items)
func Paginate[T any](items []T, info PageInfo) []T {
	start := min(info.Offset(), len(items))
	end := min(start+info.PerPage, len(items))
	return items[start:end]
}
