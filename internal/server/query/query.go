// Package query implements the filter, sort and paginate pipeline shared by
// every collection served by the mock.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/systemshift/minddump/internal/server/core"
)

// Order is the direction of a sort.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseOrder validates an order value. An empty value yields def.
func ParseOrder(v string, def Order) (Order, error) {
	switch Order(strings.ToLower(v)) {
	case "":
		return def, nil
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", core.Validation("INVALID_ORDER",
		fmt.Sprintf("Invalid order: %s. Use 'asc' or 'desc'", v),
		map[string]any{"order": v})
}

// Bounds are the paging limits of one resource.
type Bounds struct {
	DefaultLimit int
	MaxLimit     int
}

// Per-resource bounds.
var (
	NoteBounds    = Bounds{DefaultLimit: 20, MaxLimit: 100}
	FolderBounds  = Bounds{DefaultLimit: 20, MaxLimit: 100}
	ConceptBounds = Bounds{DefaultLimit: 50, MaxLimit: 200}
)

// Params selects one page. Zero values mean "use the default".
type Params struct {
	Page  int
	Limit int
}

// Resolve applies defaults and rejects out-of-range values.
func (b Bounds) Resolve(p Params) (Params, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = b.DefaultLimit
	}
	if p.Page < 1 {
		return Params{}, core.Validation("INVALID_PAGE",
			"page must be greater than or equal to 1",
			map[string]any{"page": p.Page})
	}
	if p.Limit < 1 || p.Limit > b.MaxLimit {
		return Params{}, core.Validation("INVALID_LIMIT",
			fmt.Sprintf("limit must be between 1 and %d", b.MaxLimit),
			map[string]any{"limit": p.Limit, "max": b.MaxLimit})
	}
	return p, nil
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

// Result is one page of items.
type Result[T any] struct {
	Items      []T
	Pagination Pagination
}

// Predicate selects items.
type Predicate[T any] func(T) bool

// Sort orders items with a three-way comparison.
type Sort[T any] struct {
	Compare func(a, b T) int
	Order   Order
}

// Query is one filter → sort → paginate request.
type Query[T any] struct {
	Filters []Predicate[T]
	Sort    *Sort[T]
	Params  Params
}

// Run executes q over items. Params are validated before any filtering.
// The input slice is not modified.
func Run[T any](items []T, q Query[T], b Bounds) (Result[T], error) {
	params, err := b.Resolve(q.Params)
	if err != nil {
		return Result[T]{}, err
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if matches(item, q.Filters) {
			matched = append(matched, item)
		}
	}

	if q.Sort != nil && q.Sort.Compare != nil {
		compare := q.Sort.Compare
		if q.Sort.Order == Desc {
			compare = func(a, b T) int { return q.Sort.Compare(b, a) }
		}
		// Stable, so ties keep collection order in both directions.
		slices.SortStableFunc(matched, compare)
	}

	return Paginate(matched, params), nil
}

// Paginate slices an already filtered and sorted set. params must be resolved.
func Paginate[T any](items []T, params Params) Result[T] {
	total := len(items)
	pages := max(1, (total+params.Limit-1)/params.Limit)

	// Compare page numbers before multiplying; huge pages would overflow.
	page := []T{}
	if params.Page <= pages && total > 0 {
		start := (params.Page - 1) * params.Limit
		end := min(start+params.Limit, total)
		page = items[start:end:end]
	}

	return Result[T]{
		Items: page,
		Pagination: Pagination{
			Total:   total,
			Page:    params.Page,
			Limit:   params.Limit,
			Pages:   pages,
			HasNext: params.Page < pages,
			HasPrev: params.Page > 1,
		},
	}
}

func matches[T any](item T, filters []Predicate[T]) bool {
	for _, f := range filters {
		if f != nil && !f(item) {
			return false
		}
	}
	return true
}
