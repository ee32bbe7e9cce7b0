// Package concepts serves the read-only concept catalog.
package concepts

import (
	"cmp"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/query"
	"github.com/systemshift/minddump/internal/server/store"
)

// MaxRelatedNotes caps the related notes returned with a single concept.
const MaxRelatedNotes = 10

// Lookup answers concept queries.
type Lookup struct {
	store *store.Store
}

// NewLookup creates a concept lookup.
func NewLookup(s *store.Store) *Lookup {
	return &Lookup{store: s}
}

// ListInput filters and pages concepts.
type ListInput struct {
	MinWeight *float64
	Search    string
	query.Params
}

// NoteRef identifies a note referencing a concept.
type NoteRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Detail is a concept with the notes that reference it.
type Detail struct {
	Concept      core.Concept
	RelatedNotes []NoteRef
}

// List returns concepts, heaviest first.
func (l *Lookup) List(in ListInput) (query.Result[core.Concept], error) {
	var filters []query.Predicate[*core.Concept]
	if in.MinWeight != nil {
		filters = append(filters, func(c *core.Concept) bool { return query.InRange(c.Weight, in.MinWeight, nil) })
	}
	if in.Search != "" {
		filters = append(filters, func(c *core.Concept) bool {
			return query.ContainsFold(in.Search, c.ConceptText, c.NormalizedName)
		})
	}

	var out query.Result[core.Concept]
	err := l.store.View(func(tx *store.Tx) error {
		res, err := query.Run(tx.Concepts(), query.Query[*core.Concept]{
			Filters: filters,
			Sort: &query.Sort[*core.Concept]{
				Compare: func(a, b *core.Concept) int { return cmp.Compare(a.Weight, b.Weight) },
				Order:   query.Desc,
			},
			Params: in.Params,
		}, query.ConceptBounds)
		if err != nil {
			return err
		}

		out.Pagination = res.Pagination
		out.Items = make([]core.Concept, 0, len(res.Items))
		for _, c := range res.Items {
			out.Items = append(out.Items, *c)
		}
		return nil
	})
	return out, err
}

// Get returns a concept and up to MaxRelatedNotes notes referencing it, in collection order.
func (l *Lookup) Get(id string) (Detail, error) {
	var out Detail
	err := l.store.View(func(tx *store.Tx) error {
		concept, ok := tx.Concept(id)
		if !ok {
			return core.ConceptNotFound(id)
		}

		out.Concept = *concept
		out.RelatedNotes = []NoteRef{}
		for _, n := range tx.Notes() {
			if len(out.RelatedNotes) == MaxRelatedNotes {
				break
			}
			if n.HasConcept(id) {
				out.RelatedNotes = append(out.RelatedNotes, NoteRef{ID: n.ID, Title: n.Title})
			}
		}
		return nil
	})
	return out, err
}
