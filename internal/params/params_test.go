package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Limit: DefaultLimit, Page: 1}},
		{"limit=10&page=3", Pagination{Limit: 10, Page: 3, Offset: 20}},
		{"limit=500", Pagination{Limit: MaxLimit, Page: 1}},
		{"limit=-1&page=0", Pagination{Limit: DefaultLimit, Page: 1}},
		{"limit=abc&page=x", Pagination{Limit: DefaultLimit, Page: 1}},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		assert.Equal(t, tt.want, ParsePagination(q), tt.query)
	}
}

func TestApply(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	p := Pagination{Limit: 2, Page: 2, Offset: 2}
	assert.Equal(t, []int{3, 4}, Apply(&p, items))
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = Pagination{Limit: 2, Page: 3, Offset: 4}
	assert.Equal(t, []int{5}, Apply(&p, items))
	assert.False(t, p.HasNext)

	p = Pagination{Limit: 2, Page: 9, Offset: 16}
	assert.Empty(t, Apply(&p, items))
}

func TestHugePageStaysInRange(t *testing.T) {
	q, _ := url.ParseQuery("page=922337203685477581&limit=20")
	p := ParsePagination(q)
	assert.Equal(t, MaxPage, p.Page)
	assert.GreaterOrEqual(t, p.Offset, 0)

	items := []int{1, 2, 3}
	assert.NotPanics(t, func() {
		assert.Empty(t, Apply(&p, items))
	})
	assert.False(t, p.HasNext)

	p = Pagination{Limit: 2, Page: 1, Offset: -16}
	assert.Empty(t, Apply(&p, items))
}
