package notes

import (
	"fmt"
	"strings"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/query"
	"github.com/systemshift/minddump/internal/server/store"
)

// SortKey is a note field usable for ordering.
type SortKey string

const (
	SortCreationDate SortKey = "creation_date"
	SortLastUpdate   SortKey = "last_update"
	SortPriority     SortKey = "priority"
	SortTitle        SortKey = "title"
)

// ParseSortKey validates a sort key. An empty value yields last_update.
func ParseSortKey(v string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(v)); k {
	case "":
		return SortLastUpdate, nil
	case SortCreationDate, SortLastUpdate, SortPriority, SortTitle:
		return k, nil
	}
	return "", core.Validation("INVALID_SORT",
		fmt.Sprintf("Invalid sort_by: %s. Use 'creation_date', 'last_update', 'priority', or 'title'", v),
		map[string]any{"sort_by": v})
}

func (k SortKey) compare() func(a, b *core.Note) int {
	switch k {
	case SortCreationDate:
		return func(a, b *core.Note) int { return a.Created.Compare(b.Created) }
	case SortPriority:
		return func(a, b *core.Note) int { return a.Priority - b.Priority }
	case SortTitle:
		return func(a, b *core.Note) int { return query.CompareFold(a.Title, b.Title) }
	default:
		return func(a, b *core.Note) int { return a.Modified.Compare(b.Modified) }
	}
}

// ListInput filters, sorts and pages notes. Zero values disable a filter.
type ListInput struct {
	Status      *core.Status
	PriorityMin *int
	PriorityMax *int
	Search      string
	SortBy      SortKey
	Order       query.Order
	query.Params
}

// List runs a note query.
func (m *Manager) List(in ListInput) (query.Result[core.Note], error) {
	if in.SortBy == "" {
		in.SortBy = SortLastUpdate
	}
	if in.Order == "" {
		in.Order = query.Desc
	}

	var filters []query.Predicate[*core.Note]
	if in.Status != nil {
		status := *in.Status
		filters = append(filters, func(n *core.Note) bool { return n.Status == status })
	}
	if in.PriorityMin != nil || in.PriorityMax != nil {
		filters = append(filters, func(n *core.Note) bool {
			return query.InRange(n.Priority, in.PriorityMin, in.PriorityMax)
		})
	}
	if in.Search != "" {
		filters = append(filters, func(n *core.Note) bool {
			return query.ContainsFold(in.Search, n.Title, n.OriginalText)
		})
	}

	var out query.Result[core.Note]
	err := m.store.View(func(tx *store.Tx) error {
		res, err := query.Run(tx.Notes(), query.Query[*core.Note]{
			Filters: filters,
			Sort:    &query.Sort[*core.Note]{Compare: in.SortBy.compare(), Order: in.Order},
			Params:  in.Params,
		}, query.NoteBounds)
		if err != nil {
			return err
		}

		out.Pagination = res.Pagination
		out.Items = make([]core.Note, 0, len(res.Items))
		for _, n := range res.Items {
			out.Items = append(out.Items, n.Clone())
		}
		return nil
	})
	return out, err
}
