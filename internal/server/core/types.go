package core

import (
	"slices"
	"strings"
	"time"
)

// DefaultUserID owns every record served by the mock.
const DefaultUserID = "user-1"

// ConceptBrief is the snapshot of a concept embedded in notes and folders.
// It is copied at association time and does not follow later concept edits.
type ConceptBrief struct {
	ID          string  `json:"id" yaml:"id"`
	ConceptText string  `json:"concept_text" yaml:"concept_text"`
	Weight      float64 `json:"weight" yaml:"weight"`
}

// ProcessedData is opaque analysis output attached to a note by an external process.
type ProcessedData struct {
	Summary   *string  `json:"summary,omitempty" yaml:"summary,omitempty"`
	KeyPoints []string `json:"key_points,omitempty" yaml:"key_points,omitempty"`
	Sentiment *string  `json:"sentiment,omitempty" yaml:"sentiment,omitempty"`
}

// PurposeWeight associates a purpose with a note.
type PurposeWeight struct {
	Purpose Purpose
	Weight  int
}

// Note is a single captured thought.
type Note struct {
	ID            string
	UserID        string
	Title         string
	OriginalText  string
	Created       time.Time
	Modified      time.Time
	LastOpen      *time.Time
	ProcessedData *ProcessedData
	Language      string
	Priority      int
	Status        Status
	WordCount     int
	Concepts      []ConceptBrief
	Purposes      []PurposeWeight
	FolderID      *string
}

// Clone returns a deep copy so callers never share memory with the store.
func (n *Note) Clone() Note {
	c := *n
	if n.LastOpen != nil {
		t := *n.LastOpen
		c.LastOpen = &t
	}
	if n.ProcessedData != nil {
		pd := *n.ProcessedData
		pd.KeyPoints = slices.Clone(n.ProcessedData.KeyPoints)
		c.ProcessedData = &pd
	}
	if n.FolderID != nil {
		id := *n.FolderID
		c.FolderID = &id
	}
	c.Concepts = slices.Clone(n.Concepts)
	c.Purposes = slices.Clone(n.Purposes)
	return c
}

// HasConcept reports whether the note carries a snapshot of the given concept.
func (n *Note) HasConcept(conceptID string) bool {
	return slices.ContainsFunc(n.Concepts, func(c ConceptBrief) bool { return c.ID == conceptID })
}

// InFolder reports whether the note is filed under folderID.
func (n *Note) InFolder(folderID string) bool {
	return n.FolderID != nil && *n.FolderID == folderID
}

// Folder is a node of the user's category hierarchy.
type Folder struct {
	ID             string
	UserID         string
	ParentFolderID *string
	CategoryLevel  int
	Concept        ConceptBrief
	Percentage     float64
	Created        time.Time
	Modified       time.Time
	ChildrenCount  int
}

// Clone returns a deep copy of the folder.
func (f *Folder) Clone() Folder {
	c := *f
	if f.ParentFolderID != nil {
		p := *f.ParentFolderID
		c.ParentFolderID = &p
	}
	return c
}

// IsRoot reports whether the folder has no parent.
func (f *Folder) IsRoot() bool {
	return f.ParentFolderID == nil
}

// HasParent reports whether the folder's parent is parentID.
func (f *Folder) HasParent(parentID string) bool {
	return f.ParentFolderID != nil && *f.ParentFolderID == parentID
}

// Concept is a weighted topic extracted from notes.
type Concept struct {
	ID             string
	ConceptText    string
	NormalizedName string
	Weight         float64
	Created        time.Time
	Modified       time.Time
	NotesCount     int
}

// Brief returns the embeddable snapshot of the concept.
func (c *Concept) Brief() ConceptBrief {
	return ConceptBrief{ID: c.ID, ConceptText: c.ConceptText, Weight: c.Weight}
}

// Settings holds the per-user preferences singleton.
type Settings struct {
	ID                string
	UserID            string
	Language          string
	AutoStructureNote bool
	Created           time.Time
	Modified          time.Time
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ClampPriority bounds p to [MinPriority, MaxPriority].
func ClampPriority(p int) int {
	return min(max(p, MinPriority), MaxPriority)
}

// ClampPercentage bounds p to [0, 1].
func ClampPercentage(p float64) float64 {
	return min(max(p, 0), 1)
}

// Priority bounds for notes.
const (
	MinPriority = 0
	MaxPriority = 4
)
