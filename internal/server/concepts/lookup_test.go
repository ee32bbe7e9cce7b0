package concepts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/query"
	"github.com/systemshift/minddump/internal/server/store"
)

func newTestLookup(t *testing.T, notes []core.Note) *Lookup {
	t.Helper()

	s, err := store.New(store.Seed{
		Concepts: []core.Concept{
			{ID: "c-design", ConceptText: "Design", NormalizedName: "design", Weight: 0.75},
			{ID: "c-ai", ConceptText: "AI & Machine Learning", NormalizedName: "ai_ml", Weight: 0.88},
			{ID: "c-travel", ConceptText: "Travel", NormalizedName: "travel", Weight: 0.35},
			{ID: "c-dev", ConceptText: "Software Development", NormalizedName: "software_development", Weight: 0.92},
		},
		Notes: notes,
	})
	require.NoError(t, err)
	return NewLookup(s)
}

func texts(res query.Result[core.Concept]) []string {
	out := make([]string, 0, len(res.Items))
	for _, c := range res.Items {
		out = append(out, c.ConceptText)
	}
	return out
}

func TestList(t *testing.T) {
	l := newTestLookup(t, nil)

	res, err := l.List(ListInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Software Development", "AI & Machine Learning", "Design", "Travel"}, texts(res))
	assert.Equal(t, 50, res.Pagination.Limit)

	minWeight := 0.75
	res, err = l.List(ListInput{MinWeight: &minWeight})
	require.NoError(t, err)
	assert.Equal(t, []string{"Software Development", "AI & Machine Learning", "Design"}, texts(res))

	res, err = l.List(ListInput{Search: "ML"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AI & Machine Learning"}, texts(res))

	res, err = l.List(ListInput{Params: query.Params{Page: 2, Limit: 3}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Travel"}, texts(res))
	assert.True(t, res.Pagination.HasPrev)

	_, err = l.List(ListInput{Params: query.Params{Limit: 201}})
	assert.True(t, core.IsValidation(err))
}

func TestGetCapsRelatedNotes(t *testing.T) {
	var notes []core.Note
	for i := 0; i < 14; i++ {
		n := core.Note{ID: fmt.Sprintf("n%02d", i), Title: fmt.Sprintf("Note %d", i)}
		if i%7 != 3 {
			n.Concepts = []core.ConceptBrief{{ID: "c-ai"}}
		}
		notes = append(notes, n)
	}
	l := newTestLookup(t, notes)

	d, err := l.Get("c-ai")
	require.NoError(t, err)
	assert.Equal(t, "ai_ml", d.Concept.NormalizedName)
	require.Len(t, d.RelatedNotes, MaxRelatedNotes)
	assert.Equal(t, NoteRef{ID: "n00", Title: "Note 0"}, d.RelatedNotes[0])
	assert.Equal(t, "n04", d.RelatedNotes[3].ID, "n03 does not reference the concept")

	d, err = l.Get("c-travel")
	require.NoError(t, err)
	assert.NotNil(t, d.RelatedNotes)
	assert.Empty(t, d.RelatedNotes)

	_, err = l.Get("missing")
	require.ErrorIs(t, err, core.ErrNotFound)
	derr, _ := core.AsError(err)
	assert.Equal(t, "CONCEPT_NOT_FOUND", derr.Code)
	assert.Equal(t, "missing", derr.Details["concept_id"])
}
