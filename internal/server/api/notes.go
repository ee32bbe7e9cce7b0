package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/notes"
	"github.com/systemshift/minddump/internal/server/query"
)

// ListNotes handles GET /api/v1/notes
// Supports status, priority_min, priority_max, search, sort_by, order, page and limit.
func (s *Server) ListNotes(w http.ResponseWriter, r *http.Request) {
	in, err := noteListInput(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.notes.List(in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(res, toNote))
}

func noteListInput(q url.Values) (notes.ListInput, error) {
	var in notes.ListInput
	var err error
	if in.Params, err = pageParams(q); err != nil {
		return in, err
	}
	if v := q.Get("status"); v != "" {
		status, err := core.ParseStatus(v)
		if err != nil {
			return in, err
		}
		in.Status = &status
	}
	if in.PriorityMin, err = queryInt(q, "priority_min"); err != nil {
		return in, err
	}
	if in.PriorityMax, err = queryInt(q, "priority_max"); err != nil {
		return in, err
	}
	if in.SortBy, err = notes.ParseSortKey(q.Get("sort_by")); err != nil {
		return in, err
	}
	if in.Order, err = query.ParseOrder(q.Get("order"), query.Desc); err != nil {
		return in, err
	}
	in.Search = q.Get("search")
	return in, nil
}

// PurposeRequest associates a purpose with a note.
type PurposeRequest struct {
	PurposeID string `json:"purpose_id"`
	Weight    int    `json:"weight"`
}

// CreateNoteRequest is the request body for creating a note
type CreateNoteRequest struct {
	Title        *string          `json:"title"`
	OriginalText *string          `json:"original_text"`
	Language     string           `json:"language"`
	Priority     int              `json:"priority"`
	StatusID     string           `json:"status_id"`
	ConceptIDs   []string         `json:"concept_ids"`
	PurposeIDs   []PurposeRequest `json:"purpose_ids"`
	FolderID     *string          `json:"folder_id"`
}

func (req CreateNoteRequest) input() (notes.CreateInput, error) {
	if req.Title == nil {
		return notes.CreateInput{}, invalidRequest("title is required", map[string]any{"field": "title"})
	}
	if req.OriginalText == nil {
		return notes.CreateInput{}, invalidRequest("original_text is required", map[string]any{"field": "original_text"})
	}

	in := notes.CreateInput{
		Title:        *req.Title,
		OriginalText: *req.OriginalText,
		Language:     req.Language,
		Priority:     req.Priority,
		ConceptIDs:   req.ConceptIDs,
		FolderID:     req.FolderID,
	}
	if req.StatusID != "" {
		status, err := core.ParseStatus(req.StatusID)
		if err != nil {
			return notes.CreateInput{}, err
		}
		in.Status = &status
	}
	for _, p := range req.PurposeIDs {
		in.Purposes = append(in.Purposes, notes.PurposeInput{PurposeID: p.PurposeID, Weight: p.Weight})
	}
	return in, nil
}

// CreateNote handles POST /api/v1/notes
func (s *Server) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	note, err := s.notes.Create(in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toNote(note))
}

// GetNote handles GET /api/v1/notes/{id}
// Reading a note records the access in last_open.
func (s *Server) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.notes.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNote(note))
}

// UpdateNoteRequest is the request body for a partial note update
type UpdateNoteRequest struct {
	Title        *string `json:"title"`
	OriginalText *string `json:"original_text"`
	Priority     *int    `json:"priority"`
	StatusID     *string `json:"status_id"`
	FolderID     *string `json:"folder_id"`
}

// UpdateNote handles PUT /api/v1/notes/{id}
func (s *Server) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	in := notes.UpdateInput{
		Title:        req.Title,
		OriginalText: req.OriginalText,
		Priority:     req.Priority,
		FolderID:     req.FolderID,
	}
	if req.StatusID != nil {
		status, err := core.ParseStatus(*req.StatusID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		in.Status = &status
	}

	note, err := s.notes.Update(chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toNote(note))
}

// DeleteNote handles DELETE /api/v1/notes/{id}
// The note is only marked deleted.
func (s *Server) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := s.notes.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PrioritizeRequest is the request body for changing a note's priority
type PrioritizeRequest struct {
	Action string `json:"action"`
	Value  *int   `json:"value"`
}

// PrioritizeNote handles POST /api/v1/notes/{id}/prioritize
func (s *Server) PrioritizeNote(w http.ResponseWriter, r *http.Request) {
	var req PrioritizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	value := 1
	if req.Value != nil {
		value = *req.Value
	}

	res, err := s.notes.Prioritize(chi.URLParam(r, "id"), notes.Action(req.Action), value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPrioritize(res))
}
