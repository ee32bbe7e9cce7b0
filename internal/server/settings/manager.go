// Package settings manages the user settings singleton.
package settings

import (
	"github.com/rs/zerolog"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/store"
)

// Manager implements the explicit create/update/delete lifecycle of the settings slot.
type Manager struct {
	store *store.Store
	log   zerolog.Logger
}

// NewManager creates a settings manager.
func NewManager(s *store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: s, log: log.With().Str("component", "settings").Logger()}
}

// CreateInput holds the initial values. Nil fields take the defaults.
type CreateInput struct {
	Language          *string
	AutoStructureNote *bool
}

// UpdateInput is a partial update.
type UpdateInput struct {
	Language          *string
	AutoStructureNote *bool
}

func notFound(hint string) *core.Error {
	return core.NotFound("SETTINGS_NOT_FOUND", "User settings not found"+hint, map[string]any{})
}

// Get returns the settings.
func (m *Manager) Get() (core.Settings, error) {
	var out core.Settings
	err := m.store.View(func(tx *store.Tx) error {
		s := tx.Settings()
		if s == nil {
			return notFound("")
		}
		out = *s
		return nil
	})
	return out, err
}

// Create fills the empty slot. It fails when settings already exist.
func (m *Manager) Create(in CreateInput) (core.Settings, error) {
	var out core.Settings
	err := m.store.Update(func(tx *store.Tx) error {
		if tx.Settings() != nil {
			return core.Conflict("SETTINGS_ALREADY_EXIST", "User settings already exist. Use PUT to update.", map[string]any{})
		}

		now := tx.Now()
		s := &core.Settings{
			ID:                tx.NewID(),
			UserID:            core.DefaultUserID,
			Language:          "en",
			AutoStructureNote: true,
			Created:           now,
			Modified:          now,
		}
		if in.Language != nil {
			s.Language = *in.Language
		}
		if in.AutoStructureNote != nil {
			s.AutoStructureNote = *in.AutoStructureNote
		}
		tx.SetSettings(s)

		out = *s
		return nil
	})
	if err != nil {
		return core.Settings{}, err
	}

	m.log.Debug().Str("settings_id", out.ID).Msg("settings created")
	return out, nil
}

// Update changes existing settings. It fails when the slot is empty.
func (m *Manager) Update(in UpdateInput) (core.Settings, error) {
	var out core.Settings
	err := m.store.Update(func(tx *store.Tx) error {
		s := tx.Settings()
		if s == nil {
			return notFound(". Use POST to create.")
		}
		if in.Language != nil {
			s.Language = *in.Language
		}
		if in.AutoStructureNote != nil {
			s.AutoStructureNote = *in.AutoStructureNote
		}
		s.Modified = tx.Now()

		out = *s
		return nil
	})
	return out, err
}

// Delete empties the slot.
func (m *Manager) Delete() error {
	err := m.store.Update(func(tx *store.Tx) error {
		if tx.Settings() == nil {
			return notFound("")
		}
		tx.SetSettings(nil)
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Debug().Msg("settings deleted")
	return nil
}
