// Package fixtures turns YAML sample data into a store seed.
//
// Records reference each other by key. Keys map to name-based uuids, so the
// same file always yields the same ids.
package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/store"
)

//go:embed sample.yaml
var sample []byte

// namespace scopes the name-based fixture ids.
var namespace = uuid.MustParse("6f1c2a0e-8f53-4c7e-9a4b-3d2e1f0a9b71")

// File is the decoded form of a fixture document.
type File struct {
	Concepts []ConceptEntry `yaml:"concepts"`
	Folders  []FolderEntry  `yaml:"folders"`
	Notes    []NoteEntry    `yaml:"notes"`
	Settings *SettingsEntry `yaml:"settings"`
}

// Age places a record in time relative to load.
type Age struct {
	CreatedDaysAgo int `yaml:"created_days_ago"`
	UpdatedDaysAgo int `yaml:"updated_days_ago"`
}

// ConceptEntry is a concept in the fixture file.
type ConceptEntry struct {
	Key         string  `yaml:"key"`
	ConceptText string  `yaml:"concept_text"`
	Weight      float64 `yaml:"weight"`
	NotesCount  int     `yaml:"notes_count"`
	Age         `yaml:",inline"`
}

// FolderEntry is a folder in the fixture file. Parent and Concept are keys.
type FolderEntry struct {
	Key        string   `yaml:"key"`
	Parent     string   `yaml:"parent"`
	Concept    string   `yaml:"concept"`
	Label      string   `yaml:"label"`
	Weight     *float64 `yaml:"weight"`
	Percentage float64  `yaml:"percentage"`
	Age        `yaml:",inline"`
}

// NoteConcept references a concept from a note.
type NoteConcept struct {
	Concept string  `yaml:"concept"`
	Weight  float64 `yaml:"weight"`
}

// NotePurpose is a purpose name with its weight.
type NotePurpose struct {
	Purpose string `yaml:"purpose"`
	Weight  int    `yaml:"weight"`
}

// NoteEntry is a note in the fixture file. Dates are relative to the seed time.
type NoteEntry struct {
	Key            string              `yaml:"key"`
	Title          string              `yaml:"title"`
	Content        string              `yaml:"content"`
	DaysAgo        int                 `yaml:"days_ago"`
	UpdatedDaysAgo *int                `yaml:"updated_days_ago"`
	OpenedDaysAgo  *int                `yaml:"opened_days_ago"`
	Priority       int                 `yaml:"priority"`
	Status         string              `yaml:"status"`
	Language       string              `yaml:"language"`
	Folder         string              `yaml:"folder"`
	Concepts       []NoteConcept       `yaml:"concepts"`
	Purposes       []NotePurpose       `yaml:"purposes"`
	ProcessedData  *core.ProcessedData `yaml:"processed_data"`
}

// SettingsEntry holds the seeded user settings.
type SettingsEntry struct {
	Language          string `yaml:"language"`
	AutoStructureNote *bool  `yaml:"auto_structure_note"`
	Age               `yaml:",inline"`
}

// Parse decodes a fixture document. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding fixtures: %w", err)
	}
	return &f, nil
}

// LoadEmbedded parses the built-in sample data.
func LoadEmbedded() (*File, error) {
	return Parse(sample)
}

// LoadFile parses the fixture document at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixtures: %w", err)
	}
	return Parse(data)
}

// Load reads path, or the embedded sample data when path is empty.
func Load(path string) (*File, error) {
	if path == "" {
		return LoadEmbedded()
	}
	return LoadFile(path)
}

// ID returns the record id a fixture key resolves to.
func ID(kind, key string) string {
	return uuid.NewSHA1(namespace, []byte(kind+"/"+key)).String()
}

// Seed resolves keys and dates against now.
// Notes are ordered most recent first; ties keep file order.
func (f *File) Seed(now time.Time) (store.Seed, error) {
	var (
		seed store.Seed
		errs []error
	)
	ago := func(days int) time.Time { return now.AddDate(0, 0, -days) }

	concepts := make(map[string]*core.Concept, len(f.Concepts))
	for _, e := range f.Concepts {
		if e.Key == "" {
			errs = append(errs, errors.New("concept without key"))
			continue
		}
		c := core.Concept{
			ID:             ID("concept", e.Key),
			ConceptText:    e.ConceptText,
			NormalizedName: normalize(e.Key),
			Weight:         e.Weight,
			Created:        ago(e.CreatedDaysAgo),
			Modified:       ago(e.UpdatedDaysAgo),
			NotesCount:     e.NotesCount,
		}
		concepts[e.Key] = &c
		seed.Concepts = append(seed.Concepts, c)
	}

	folderKeys := make(map[string]bool, len(f.Folders))
	for _, e := range f.Folders {
		folderKeys[e.Key] = true
	}
	for _, e := range f.Folders {
		concept, ok := concepts[e.Concept]
		if !ok {
			errs = append(errs, fmt.Errorf("folder %q: unknown concept %q", e.Key, e.Concept))
			continue
		}
		brief := concept.Brief()
		if e.Label != "" {
			brief.ConceptText = e.Label
		}
		if e.Weight != nil {
			brief.Weight = *e.Weight
		}

		folder := core.Folder{
			ID:         ID("folder", e.Key),
			UserID:     core.DefaultUserID,
			Concept:    brief,
			Percentage: core.ClampPercentage(e.Percentage),
			Created:    ago(e.CreatedDaysAgo),
			Modified:   ago(e.UpdatedDaysAgo),
		}
		if e.Parent != "" {
			if !folderKeys[e.Parent] {
				errs = append(errs, fmt.Errorf("folder %q: unknown parent %q", e.Key, e.Parent))
				continue
			}
			parent := ID("folder", e.Parent)
			folder.ParentFolderID = &parent
		}
		seed.Folders = append(seed.Folders, folder)
	}

	for _, e := range f.Notes {
		note, err := e.note(now, concepts, folderKeys)
		if err != nil {
			errs = append(errs, fmt.Errorf("note %q: %w", e.Key, err))
			continue
		}
		seed.Notes = append(seed.Notes, note)
	}
	slices.SortStableFunc(seed.Notes, func(a, b core.Note) int { return b.Created.Compare(a.Created) })

	if e := f.Settings; e != nil {
		s := core.Settings{
			ID:                ID("settings", core.DefaultUserID),
			UserID:            core.DefaultUserID,
			Language:          e.Language,
			AutoStructureNote: true,
			Created:           ago(e.CreatedDaysAgo),
			Modified:          ago(e.UpdatedDaysAgo),
		}
		if s.Language == "" {
			s.Language = "en"
		}
		if e.AutoStructureNote != nil {
			s.AutoStructureNote = *e.AutoStructureNote
		}
		seed.Settings = &s
	}

	if err := errors.Join(errs...); err != nil {
		return store.Seed{}, err
	}
	return seed, nil
}

func (e NoteEntry) note(now time.Time, concepts map[string]*core.Concept, folders map[string]bool) (core.Note, error) {
	if e.Key == "" {
		return core.Note{}, errors.New("missing key")
	}
	created := now.AddDate(0, 0, -e.DaysAgo)
	n := core.Note{
		ID:            ID("note", e.Key),
		UserID:        core.DefaultUserID,
		Title:         e.Title,
		OriginalText:  strings.TrimRight(e.Content, "\n"),
		Created:       created,
		Modified:      created,
		ProcessedData: e.ProcessedData,
		Language:      e.Language,
		Priority:      core.ClampPriority(e.Priority),
		Status:        core.StatusActive,
		Concepts:      []core.ConceptBrief{},
		Purposes:      []core.PurposeWeight{},
	}
	n.WordCount = core.WordCount(n.OriginalText)
	if n.Language == "" {
		n.Language = "en"
	}
	if e.UpdatedDaysAgo != nil {
		n.Modified = now.AddDate(0, 0, -*e.UpdatedDaysAgo)
	}
	if e.OpenedDaysAgo != nil {
		opened := now.AddDate(0, 0, -*e.OpenedDaysAgo)
		n.LastOpen = &opened
	}

	if e.Status != "" {
		status, err := core.ParseStatus(e.Status)
		if err != nil {
			return core.Note{}, err
		}
		n.Status = status
	}
	if e.Folder != "" {
		if !folders[e.Folder] {
			return core.Note{}, fmt.Errorf("unknown folder %q", e.Folder)
		}
		id := ID("folder", e.Folder)
		n.FolderID = &id
	}
	for _, nc := range e.Concepts {
		c, ok := concepts[nc.Concept]
		if !ok {
			return core.Note{}, fmt.Errorf("unknown concept %q", nc.Concept)
		}
		brief := c.Brief()
		brief.Weight = nc.Weight
		n.Concepts = append(n.Concepts, brief)
	}
	for _, np := range e.Purposes {
		p, err := core.ParsePurpose(np.Purpose)
		if err != nil {
			return core.Note{}, err
		}
		n.Purposes = append(n.Purposes, core.PurposeWeight{Purpose: p, Weight: np.Weight})
	}
	return n, nil
}

func normalize(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}
