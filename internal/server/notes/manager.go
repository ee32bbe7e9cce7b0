// Package notes implements the note lifecycle: creation, partial updates,
// soft deletion, read stamping and prioritization.
package notes

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/store"
)

// Manager implements the note operations on top of a store.
type Manager struct {
	store *store.Store
	log   zerolog.Logger
}

// NewManager creates a note manager.
func NewManager(s *store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: s, log: log.With().Str("component", "notes").Logger()}
}

// PurposeInput associates a purpose, by name or reference id, with a weight.
type PurposeInput struct {
	PurposeID string
	Weight    int
}

// CreateInput describes a new note.
type CreateInput struct {
	Title        string
	OriginalText string
	Language     string
	Priority     int
	Status       *core.Status
	ConceptIDs   []string
	Purposes     []PurposeInput
	FolderID     *string
}

// UpdateInput is a partial update; nil fields are left untouched.
// An empty FolderID removes the note from its folder.
type UpdateInput struct {
	Title        *string
	OriginalText *string
	Priority     *int
	Status       *core.Status
	FolderID     *string
}

// Action is a prioritization verb.
type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionSet      Action = "set"
)

// PrioritizeResult reports a priority change.
type PrioritizeResult struct {
	ID               string
	Priority         int
	PreviousPriority int
	LastUpdate       time.Time
}

// Create stores a new note at the front of the collection.
func (m *Manager) Create(in CreateInput) (core.Note, error) {
	status := core.StatusActive
	if in.Status != nil {
		if !in.Status.Valid() {
			return core.Note{}, core.Validation("INVALID_STATUS",
				fmt.Sprintf("Invalid status: %s", *in.Status), map[string]any{"status": string(*in.Status)})
		}
		status = *in.Status
	}
	purposes, err := resolvePurposes(in.Purposes)
	if err != nil {
		return core.Note{}, err
	}
	language := in.Language
	if language == "" {
		language = "en"
	}

	var out core.Note
	err = m.store.Update(func(tx *store.Tx) error {
		concepts, err := resolveConcepts(tx, in.ConceptIDs)
		if err != nil {
			return err
		}
		folderID, err := resolveFolder(tx, in.FolderID)
		if err != nil {
			return err
		}

		now := tx.Now()
		note := &core.Note{
			ID:           tx.NewID(),
			UserID:       core.DefaultUserID,
			Title:        in.Title,
			OriginalText: in.OriginalText,
			Created:      now,
			Modified:     now,
			Language:     language,
			Priority:     core.ClampPriority(in.Priority),
			Status:       status,
			WordCount:    core.WordCount(in.OriginalText),
			Concepts:     concepts,
			Purposes:     purposes,
			FolderID:     folderID,
		}
		tx.InsertNote(note)

		out = note.Clone()
		return nil
	})
	if err != nil {
		return core.Note{}, err
	}

	m.log.Debug().Str("note_id", out.ID).Int("words", out.WordCount).Msg("note created")
	return out, nil
}

func resolveConcepts(tx *store.Tx, ids []string) ([]core.ConceptBrief, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	briefs := make([]core.ConceptBrief, 0, len(ids))
	for _, id := range ids {
		concept, ok := tx.Concept(id)
		if !ok {
			return nil, core.ConceptNotFound(id)
		}
		briefs = append(briefs, concept.Brief())
	}
	return briefs, nil
}

func resolvePurposes(in []PurposeInput) ([]core.PurposeWeight, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]core.PurposeWeight, 0, len(in))
	for _, p := range in {
		purpose, err := core.ParsePurpose(p.PurposeID)
		if err != nil {
			return nil, err
		}
		out = append(out, core.PurposeWeight{Purpose: purpose, Weight: p.Weight})
	}
	return out, nil
}

// resolveFolder validates an optional folder reference. Empty means "no folder".
func resolveFolder(tx *store.Tx, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if _, ok := tx.Folder(*id); !ok {
		return nil, core.FolderNotFound(*id)
	}
	folderID := *id
	return &folderID, nil
}

// Get returns a note and stamps its last-open time.
func (m *Manager) Get(id string) (core.Note, error) {
	var out core.Note
	err := m.store.Update(func(tx *store.Tx) error {
		note, ok := tx.Note(id)
		if !ok {
			return core.NoteNotFound(id)
		}
		opened := tx.Now()
		note.LastOpen = &opened

		out = note.Clone()
		return nil
	})
	return out, err
}

// Update applies a partial update and refreshes the update timestamp.
func (m *Manager) Update(id string, in UpdateInput) (core.Note, error) {
	if in.Status != nil && !in.Status.Valid() {
		return core.Note{}, core.Validation("INVALID_STATUS",
			fmt.Sprintf("Invalid status: %s", *in.Status), map[string]any{"status": string(*in.Status)})
	}

	var out core.Note
	err := m.store.Update(func(tx *store.Tx) error {
		note, ok := tx.Note(id)
		if !ok {
			return core.NoteNotFound(id)
		}
		var folderID *string
		if in.FolderID != nil {
			var err error
			if folderID, err = resolveFolder(tx, in.FolderID); err != nil {
				return err
			}
		}

		if in.Title != nil {
			note.Title = *in.Title
		}
		if in.OriginalText != nil {
			note.OriginalText = *in.OriginalText
			note.WordCount = core.WordCount(*in.OriginalText)
		}
		if in.Priority != nil {
			note.Priority = core.ClampPriority(*in.Priority)
		}
		if in.Status != nil {
			note.Status = *in.Status
		}
		if in.FolderID != nil {
			note.FolderID = folderID
		}
		note.Modified = tx.Now()

		out = note.Clone()
		return nil
	})
	if err != nil {
		return core.Note{}, err
	}

	m.log.Debug().Str("note_id", id).Msg("note updated")
	return out, nil
}

// Delete soft-deletes a note. The record and its identifier stay in the store.
func (m *Manager) Delete(id string) error {
	err := m.store.Update(func(tx *store.Tx) error {
		note, ok := tx.Note(id)
		if !ok {
			return core.NoteNotFound(id)
		}
		note.Status = core.StatusDeleted
		note.Modified = tx.Now()
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Debug().Str("note_id", id).Msg("note soft-deleted")
	return nil
}

// Prioritize adjusts or sets the priority, clamped to the allowed range.
func (m *Manager) Prioritize(id string, action Action, value int) (PrioritizeResult, error) {
	// Any step wider than the range saturates; bounding it keeps the sum from overflowing.
	span := core.MaxPriority - core.MinPriority
	step := min(max(value, -span), span)

	var next func(prev int) int
	switch action {
	case ActionIncrease:
		next = func(prev int) int { return prev + step }
	case ActionDecrease:
		next = func(prev int) int { return prev - step }
	case ActionSet:
		next = func(int) int { return value }
	default:
		return PrioritizeResult{}, core.Validation("INVALID_ACTION",
			fmt.Sprintf("Invalid action: %s. Use 'increase', 'decrease', or 'set'", action),
			map[string]any{"action": string(action)})
	}

	var out PrioritizeResult
	err := m.store.Update(func(tx *store.Tx) error {
		note, ok := tx.Note(id)
		if !ok {
			return core.NoteNotFound(id)
		}

		prev := note.Priority
		note.Priority = core.ClampPriority(next(prev))
		note.Modified = tx.Now()

		out = PrioritizeResult{
			ID:               note.ID,
			Priority:         note.Priority,
			PreviousPriority: prev,
			LastUpdate:       note.Modified,
		}
		return nil
	})
	if err != nil {
		return PrioritizeResult{}, err
	}

	m.log.Debug().Str("note_id", id).Int("from", out.PreviousPriority).Int("to", out.Priority).Msg("note prioritized")
	return out, nil
}
