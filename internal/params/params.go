package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 15
	MaxLimit     = 50
	// MaxPage keeps Page*Limit within int.
	MaxPage = math.MaxInt / MaxLimit
)

// Pagination holds the requested page and, after Apply, the page metadata.
//
//	/v1/notes?page=2&limit=10 → Pagination{Limit:10, Page:2, Offset:10}
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination reads ?limit and ?page. Bad values fall back to defaults; keys are case sensitive.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{Limit: DefaultLimit, Page: 1}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			p.Limit = min(limit, MaxLimit)
		}
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			p.Page = min(page, MaxPage)
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// ComputeMeta fills the metadata for a result set of total items.
func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = p.Page*p.Limit < total
}

// Apply returns the page of items selected by p and records the metadata.
func Apply[T any](p *Pagination, items []T) []T {
	p.ComputeMeta(len(items))
	if p.Offset < 0 || p.Offset >= len(items) {
		return []T{}
	}
	end := min(p.Offset+p.Limit, len(items))
	return items[p.Offset:end]
}
