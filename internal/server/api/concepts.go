package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/systemshift/minddump/internal/server/concepts"
)

// ListConcepts handles GET /api/v1/concepts
// Supports min_weight, search, page and limit.
func (s *Server) ListConcepts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params, err := pageParams(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	minWeight, err := queryFloat(q, "min_weight")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.concepts.List(concepts.ListInput{MinWeight: minWeight, Search: q.Get("search"), Params: params})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(res, toConcept))
}

// GetConcept handles GET /api/v1/concepts/{id}
func (s *Server) GetConcept(w http.ResponseWriter, r *http.Request) {
	detail, err := s.concepts.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toConceptDetail(detail))
}
