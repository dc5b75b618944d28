package echoapi

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-admin/core/api"
)

const maxLimit = 100

// ListParams are the paging, search and ordering parameters every list endpoint accepts.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Sort   string
	Desc   bool
}

func (lp *ListParams) Bind(ctx echo.Context) {
	lp.Page, _ = strconv.Atoi(ctx.QueryParam("page"))
	if lp.Page < 1 {
		lp.Page = 1
	}
	lp.Limit, _ = strconv.Atoi(ctx.QueryParam("limit"))
	if lp.Limit < 1 {
		lp.Limit = api.DefaultLimit
	}
	if lp.Limit > maxLimit {
		lp.Limit = maxLimit
	}
	lp.Search = strings.ToLower(strings.TrimSpace(ctx.QueryParam("search")))
	lp.Sort = ctx.QueryParam("sort")
	lp.Desc = strings.ToLower(ctx.QueryParam("order")) != api.OrderAsc
}

func bindList(ctx echo.Context) ListParams {
	var lp ListParams
	lp.Bind(ctx)
	return lp
}

// sortFuncs maps a sortable field to its "less" function.
type sortFuncs[T any] map[string]func(a, b T) bool

// apply sorts `items` in place by the requested field; unknown fields keep the current order.
func (sf sortFuncs[T]) apply(items []T, lp ListParams) {
	less, ok := sf[lp.Sort]
	if !ok {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if lp.Desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// paginate cuts the requested page out of `items` and describes it.
func paginate[T any](items []T, lp ListParams) ([]T, api.Pagination) {
	total := len(items)
	pages := (total + lp.Limit - 1) / lp.Limit
	p := api.Pagination{
		CurrentPage: lp.Page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       lp.Limit,
		HasNext:     lp.Page < pages,
		HasPrev:     lp.Page > 1,
	}
	start := (lp.Page - 1) * lp.Limit
	if start >= total {
		return []T{}, p
	}
	end := start + lp.Limit
	if end > total {
		end = total
	}
	return items[start:end], p
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// contains reports whether any of `fields` contains the lowered search term.
func contains(search string, fields ...string) bool {
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

// queryTime reads an RFC3339 query parameter; a malformed one is ignored.
func queryTime(ctx echo.Context, name string) time.Time {
	t, _ := time.Parse(time.RFC3339, ctx.QueryParam(name))
	return t
}

func byString[T any](get func(T) string) func(a, b T) bool {
	return func(a, b T) bool { return strings.ToLower(get(a)) < strings.ToLower(get(b)) }
}

func byInt[T any](get func(T) int) func(a, b T) bool {
	return func(a, b T) bool { return get(a) < get(b) }
}

func byTime[T any](get func(T) time.Time) func(a, b T) bool {
	return func(a, b T) bool { return get(a).Before(get(b)) }
}
