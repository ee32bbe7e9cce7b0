package api

import (
	"net/http"

	"github.com/systemshift/minddump/internal/server/settings"
)

// SettingsRequest is the body of settings create and update calls.
type SettingsRequest struct {
	Language          *string `json:"language"`
	AutoStructureNote *bool   `json:"auto_structure_note"`
}

// GetSettings handles GET /api/v1/users/me/settings
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.Get()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettings(st))
}

// CreateSettings handles POST /api/v1/users/me/settings
func (s *Server) CreateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	st, err := s.settings.Create(settings.CreateInput{Language: req.Language, AutoStructureNote: req.AutoStructureNote})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettings(st))
}

// UpdateSettings handles PUT /api/v1/users/me/settings
func (s *Server) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	st, err := s.settings.Update(settings.UpdateInput{Language: req.Language, AutoStructureNote: req.AutoStructureNote})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettings(st))
}

// DeleteSettings handles DELETE /api/v1/users/me/settings
func (s *Server) DeleteSettings(w http.ResponseWriter, r *http.Request) {
	if err := s.settings.Delete(); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
