package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-admin/core/api"
)

func TestSortLocal(t *testing.T) {
	items := []quiz{{ID: "1", Title: "b"}, {ID: "2", Title: "a"}, {ID: "3", Title: "b"}}
	byTitle := func(a, b quiz) bool { return a.Title < b.Title }

	asc := SortLocal(items, byTitle, api.OrderAsc)
	assert.Equal(t, []string{"2", "1", "3"}, ids(asc))
	desc := SortLocal(items, byTitle, api.OrderDesc)
	assert.Equal(t, []string{"1", "3", "2"}, ids(desc))
	assert.Equal(t, []string{"1", "2", "3"}, ids(items), "input is left untouched")
}

func TestFilterLocal(t *testing.T) {
	items := []quiz{{ID: "1", Title: "Aljabar Linear"}, {ID: "2", Title: "Geometri"}}
	got := FilterLocal(items, func(q quiz) bool { return MatchText("aljabar", q.Title) })
	assert.Equal(t, []string{"1"}, ids(got))
	assert.Len(t, FilterLocal(items, func(q quiz) bool { return MatchText("  ", q.Title) }), 2)
}

func TestPaginateLocal(t *testing.T) {
	items := make([]quiz, 25)
	tests := []struct {
		name      string
		page      int
		wantLen   int
		wantNext  bool
		wantPrev  bool
		wantPages int
	}{
		{name: "first", page: 1, wantLen: 10, wantNext: true, wantPages: 3},
		{name: "middle", page: 2, wantLen: 10, wantNext: true, wantPrev: true, wantPages: 3},
		{name: "last", page: 3, wantLen: 5, wantPrev: true, wantPages: 3},
		{name: "past the end", page: 9, wantLen: 0, wantPrev: true, wantPages: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PaginateLocal(items, tt.page, 10)
			assert.Len(t, p.Items, tt.wantLen)
			assert.Equal(t, tt.wantNext, p.Pagination.HasNext)
			assert.Equal(t, tt.wantPrev, p.Pagination.HasPrev)
			assert.Equal(t, tt.wantPages, p.Pagination.TotalPages)
			assert.Equal(t, 25, p.Pagination.TotalItems)
		})
	}
}

func ids(items []quiz) []string {
	out := make([]string, len(items))
	for i, q := range items {
		out[i] = q.ID
	}
	return out
}
