package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/systemshift/minddump/internal/server/folders"
)

// ListFolders handles GET /api/v1/folders
// parent_id selects the level; without it the root folders are listed.
func (s *Server) ListFolders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params, err := pageParams(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.folders.List(folders.ListInput{Parent: parentParam(q), Params: params})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(res, toFolder))
}

// CreateFolderRequest is the request body for creating a folder.
// The category level is derived from the parent and any value sent is ignored.
type CreateFolderRequest struct {
	ParentFolderID *string `json:"parent_folder_id"`
	ConceptID      string  `json:"concept_id"`
	CategoryLevel  int     `json:"category_level"`
}

// CreateFolder handles POST /api/v1/folders
func (s *Server) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ConceptID == "" {
		s.writeError(w, r, invalidRequest("concept_id is required", map[string]any{"field": "concept_id"}))
		return
	}

	folder, err := s.folders.Create(folders.CreateInput{ParentFolderID: req.ParentFolderID, ConceptID: req.ConceptID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFolder(folder))
}

// FolderTree handles GET /api/v1/folders/tree
func (s *Server) FolderTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.folders.Tree()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FolderTreeResponse{Folders: tree})
}

// GetFolder handles GET /api/v1/folders/{id}
func (s *Server) GetFolder(w http.ResponseWriter, r *http.Request) {
	detail, err := s.folders.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFolderDetail(detail))
}

// UpdateFolderRequest is the request body for a partial folder update.
// An empty parent_folder_id moves the folder to the root.
type UpdateFolderRequest struct {
	ParentFolderID *string  `json:"parent_folder_id"`
	ConceptID      *string  `json:"concept_id"`
	Percentage     *float64 `json:"percentage"`
}

// UpdateFolder handles PUT /api/v1/folders/{id}
func (s *Server) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	var req UpdateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	folder, err := s.folders.Update(chi.URLParam(r, "id"), folders.UpdateInput{
		ParentFolderID: req.ParentFolderID,
		ConceptID:      req.ConceptID,
		Percentage:     req.Percentage,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFolder(folder))
}

// DeleteFolder handles DELETE /api/v1/folders/{id}
func (s *Server) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	if err := s.folders.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
