package controller

import (
	"sort"
	"strings"

	"github.com/trezcool/masomo-admin/core/api"
)

// FilterLocal returns the items of the current page `keep` selects, in order.
func FilterLocal[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// SortLocal returns a sorted copy of the current page; equal items keep their server order.
func SortLocal[T any](items []T, less func(a, b T) bool, order string) []T {
	out := append([]T(nil), items...)
	desc := strings.EqualFold(order, api.OrderDesc)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

// MatchText reports whether any of `fields` contains `search`, ignoring case.
func MatchText(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

// PaginateLocal pages a list the backend returned whole (e.g. a leaderboard). Server paged lists
// always use the descriptor the server returned instead.
func PaginateLocal[T any](items []T, page, limit int) api.Page[T] {
	if limit <= 0 {
		limit = api.DefaultLimit
	}
	total := len(items)
	pages := (total + limit - 1) / limit
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return api.Page[T]{
		Items: append([]T{}, items[start:end]...),
		Pagination: api.Pagination{
			CurrentPage: page,
			TotalPages:  pages,
			TotalItems:  total,
			Limit:       limit,
			HasNext:     page < pages,
			HasPrev:     page > 1,
		},
	}
}
