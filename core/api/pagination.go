package api

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultLimit = 10
)

// Pagination is the descriptor every list endpoint returns alongside its page of items.
// The dashboard never derives any of these from the returned array.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	Limit       int  `json:"limit,omitempty"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// IsEmpty reports whether the page has nothing to show ("nothing found").
func (p Page[T]) IsEmpty() bool {
	return len(p.Items) == 0
}

// Query holds the list parameters: paging, search, ordering and resource specific filters.
type Query struct {
	Page    int
	Limit   int
	Search  string
	Sort    string
	Order   string
	Filters map[string]string
}

// WithFilter returns a copy of q with the filter `key` set (or removed when `value` is empty).
func (q Query) WithFilter(key, value string) Query {
	filters := make(map[string]string, len(q.Filters)+1)
	for k, v := range q.Filters {
		filters[k] = v
	}
	if value == "" {
		delete(filters, key)
	} else {
		filters[key] = value
	}
	q.Filters = filters
	return q
}

// Values encodes q as URL query values.
func (q Query) Values() url.Values {
	v := make(url.Values)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
		order := strings.ToLower(q.Order)
		if order != OrderAsc {
			order = OrderDesc
		}
		v.Set("order", order)
	}
	for key, val := range q.Filters {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v
}

// Key is a stable representation of q, used as the cache key of a list query.
func (q Query) Key() string {
	return q.Values().Encode()
}
