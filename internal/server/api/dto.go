package api

import (
	"time"

	"github.com/systemshift/minddump/internal/server/concepts"
	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/folders"
	"github.com/systemshift/minddump/internal/server/notes"
	"github.com/systemshift/minddump/internal/server/query"
)

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// Page is a paginated list response.
type Page[T any] struct {
	Items      []T              `json:"items"`
	Pagination query.Pagination `json:"pagination"`
}

func newPage[S, T any](res query.Result[S], convert func(S) T) Page[T] {
	items := make([]T, 0, len(res.Items))
	for _, item := range res.Items {
		items = append(items, convert(item))
	}
	return Page[T]{Items: items, Pagination: res.Pagination}
}

// StatusResponse is the wire form of a note status
type StatusResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PurposeResponse is one weighted purpose of a note
type PurposeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Weight      int    `json:"weight"`
}

// NoteResponse is the wire form of a note.
type NoteResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	Title         string              `json:"title"`
	CreationDate  string              `json:"creation_date"`
	LastUpdate    string              `json:"last_update"`
	LastOpen      *string             `json:"last_open"`
	OriginalText  string              `json:"original_text"`
	ProcessedData *core.ProcessedData `json:"processed_data"`
	Language      string              `json:"language"`
	Priority      int                 `json:"priority"`
	Status        StatusResponse      `json:"status"`
	WordCount     int                 `json:"word_count"`
	Concepts      []core.ConceptBrief `json:"concepts"`
	Purposes      []PurposeResponse   `json:"purposes"`
	FolderID      *string             `json:"folder_id"`
}

func toNote(n core.Note) NoteResponse {
	purposes := make([]PurposeResponse, 0, len(n.Purposes))
	for _, p := range n.Purposes {
		purposes = append(purposes, PurposeResponse{
			ID:          p.Purpose.ID(),
			Name:        string(p.Purpose),
			Description: p.Purpose.Description(),
			Weight:      p.Weight,
		})
	}
	briefs := n.Concepts
	if briefs == nil {
		briefs = []core.ConceptBrief{}
	}

	return NoteResponse{
		ID:            n.ID,
		UserID:        n.UserID,
		Title:         n.Title,
		CreationDate:  formatTime(n.Created),
		LastUpdate:    formatTime(n.Modified),
		LastOpen:      formatTimePtr(n.LastOpen),
		OriginalText:  n.OriginalText,
		ProcessedData: n.ProcessedData,
		Language:      n.Language,
		Priority:      n.Priority,
		Status:        StatusResponse{ID: n.Status.ID(), Name: string(n.Status)},
		WordCount:     n.WordCount,
		Concepts:      briefs,
		Purposes:      purposes,
		FolderID:      n.FolderID,
	}
}

// PrioritizeResponse is the response for a priority change
type PrioritizeResponse struct {
	ID               string `json:"id"`
	Priority         int    `json:"priority"`
	PreviousPriority int    `json:"previous_priority"`
	LastUpdate       string `json:"last_update"`
}

func toPrioritize(r notes.PrioritizeResult) PrioritizeResponse {
	return PrioritizeResponse{
		ID:               r.ID,
		Priority:         r.Priority,
		PreviousPriority: r.PreviousPriority,
		LastUpdate:       formatTime(r.LastUpdate),
	}
}

// FolderResponse is the wire form of a folder. Children and NotesCount are
// only filled by the single folder endpoint.
type FolderResponse struct {
	ID             string            `json:"id"`
	UserID         string            `json:"user_id"`
	ParentFolderID *string           `json:"parent_folder_id"`
	CategoryLevel  int               `json:"category_level"`
	Concept        core.ConceptBrief `json:"concept"`
	Percentage     float64           `json:"percentage"`
	CreationDate   string            `json:"creation_date"`
	LastUpdate     string            `json:"last_update"`
	ChildrenCount  int               `json:"children_count"`
	Children       []FolderResponse  `json:"children,omitempty"`
	NotesCount     *int              `json:"notes_count,omitempty"`
}

func toFolder(f core.Folder) FolderResponse {
	return FolderResponse{
		ID:             f.ID,
		UserID:         f.UserID,
		ParentFolderID: f.ParentFolderID,
		CategoryLevel:  f.CategoryLevel,
		Concept:        f.Concept,
		Percentage:     f.Percentage,
		CreationDate:   formatTime(f.Created),
		LastUpdate:     formatTime(f.Modified),
		ChildrenCount:  f.ChildrenCount,
	}
}

func toFolderDetail(d folders.Detail) FolderResponse {
	resp := toFolder(d.Folder)
	resp.Children = make([]FolderResponse, 0, len(d.Children))
	for _, c := range d.Children {
		resp.Children = append(resp.Children, toFolder(c))
	}
	count := d.NotesCount
	resp.NotesCount = &count
	return resp
}

// FolderTreeResponse is one node of the folder tree response
type FolderTreeResponse struct {
	Folders []folders.TreeNode `json:"folders"`
}

// ConceptResponse is the wire form of a concept.
type ConceptResponse struct {
	ID             string              `json:"id"`
	ConceptText    string              `json:"concept_text"`
	NormalizedName string              `json:"normalized_name"`
	Weight         float64             `json:"weight"`
	CreationDate   string              `json:"creation_date"`
	LastUpdate     string              `json:"last_update"`
	NotesCount     int                 `json:"notes_count"`
	RelatedNotes   *[]concepts.NoteRef `json:"related_notes,omitempty"`
}

func toConcept(c core.Concept) ConceptResponse {
	return ConceptResponse{
		ID:             c.ID,
		ConceptText:    c.ConceptText,
		NormalizedName: c.NormalizedName,
		Weight:         c.Weight,
		CreationDate:   formatTime(c.Created),
		LastUpdate:     formatTime(c.Modified),
		NotesCount:     c.NotesCount,
	}
}

func toConceptDetail(d concepts.Detail) ConceptResponse {
	resp := toConcept(d.Concept)
	related := d.RelatedNotes
	resp.RelatedNotes = &related
	return resp
}

// SettingsResponse is the response for the settings endpoints
type SettingsResponse struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	Language          string `json:"language"`
	AutoStructureNote bool   `json:"auto_structure_note"`
	CreationDate      string `json:"creation_date"`
	LastUpdate        string `json:"last_update"`
}

func toSettings(s core.Settings) SettingsResponse {
	return SettingsResponse{
		ID:                s.ID,
		UserID:            s.UserID,
		Language:          s.Language,
		AutoStructureNote: s.AutoStructureNote,
		CreationDate:      formatTime(s.Created),
		LastUpdate:        formatTime(s.Modified),
	}
}
