// Package store owns every in-memory collection of the mock server.
//
// All access goes through View (shared) or Update (exclusive) so that a
// find → check → mutate → adjust sequence is atomic with respect to other
// writers. Records never leave the store by pointer; managers copy what they
// return.
package store

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/systemshift/minddump/internal/server/core"
)

// Seed is the initial content of a store.
type Seed struct {
	Concepts []core.Concept
	Folders  []core.Folder
	Notes    []core.Note // collection order, most recent first
	Settings *core.Settings
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store is the process-wide owner of notes, folders, concepts and settings.
type Store struct {
	mu    sync.RWMutex
	data  *collections
	now   func() time.Time
	newID func() string
}

// New creates a store holding seed.
func New(seed Seed, opts ...Option) (*Store, error) {
	s := &Store{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := build(seed)
	if err != nil {
		return nil, err
	}
	s.data = data
	return s, nil
}

// Reset atomically replaces the whole content. On error the current content is kept.
func (s *Store) Reset(seed Seed) error {
	data, err := build(seed)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// View runs fn with shared access. fn must not mutate records.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{c: s.data, now: s.now, newID: s.newID})
}

// Update runs fn with exclusive access.
// fn must validate before its first mutation so that a returned error leaves the store unchanged.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{c: s.data, now: s.now, newID: s.newID, writable: true})
}

// Counts summarizes the collections.
type Counts struct {
	Notes    int
	Folders  int
	Concepts int
	Settings bool
}

// Counts returns the current collection sizes.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Counts{
		Notes:    len(s.data.notes),
		Folders:  len(s.data.folders),
		Concepts: len(s.data.concepts),
		Settings: s.data.settings != nil,
	}
}

type collections struct {
	notes       []*core.Note
	noteByID    map[string]*core.Note
	folders     []*core.Folder
	folderByID  map[string]*core.Folder
	concepts    []*core.Concept
	conceptByID map[string]*core.Concept
	settings    *core.Settings
}

// build indexes a seed and derives the folder hierarchy counters.
func build(seed Seed) (*collections, error) {
	c := &collections{
		noteByID:    make(map[string]*core.Note, len(seed.Notes)),
		folderByID:  make(map[string]*core.Folder, len(seed.Folders)),
		conceptByID: make(map[string]*core.Concept, len(seed.Concepts)),
	}

	for i := range seed.Concepts {
		concept := seed.Concepts[i]
		if _, dup := c.conceptByID[concept.ID]; dup {
			return nil, fmt.Errorf("duplicate concept id %q", concept.ID)
		}
		c.concepts = append(c.concepts, &concept)
		c.conceptByID[concept.ID] = &concept
	}

	for i := range seed.Folders {
		folder := seed.Folders[i].Clone()
		if _, dup := c.folderByID[folder.ID]; dup {
			return nil, fmt.Errorf("duplicate folder id %q", folder.ID)
		}
		c.folders = append(c.folders, &folder)
		c.folderByID[folder.ID] = &folder
	}
	if err := c.rebuildHierarchy(); err != nil {
		return nil, err
	}

	for i := range seed.Notes {
		note := seed.Notes[i].Clone()
		if _, dup := c.noteByID[note.ID]; dup {
			return nil, fmt.Errorf("duplicate note id %q", note.ID)
		}
		if note.FolderID != nil {
			if _, ok := c.folderByID[*note.FolderID]; !ok {
				return nil, fmt.Errorf("note %q references unknown folder %q", note.ID, *note.FolderID)
			}
		}
		c.notes = append(c.notes, &note)
		c.noteByID[note.ID] = &note
	}

	if seed.Settings != nil {
		settings := *seed.Settings
		c.settings = &settings
	}
	return c, nil
}

// rebuildHierarchy recomputes children counts and category levels from parent references.
func (c *collections) rebuildHierarchy() error {
	children := make(map[string][]*core.Folder)
	for _, f := range c.folders {
		f.ChildrenCount = 0
		if f.ParentFolderID == nil {
			continue
		}
		if *f.ParentFolderID == f.ID {
			return fmt.Errorf("folder %q is its own parent", f.ID)
		}
		if _, ok := c.folderByID[*f.ParentFolderID]; !ok {
			return fmt.Errorf("folder %q references unknown parent %q", f.ID, *f.ParentFolderID)
		}
		children[*f.ParentFolderID] = append(children[*f.ParentFolderID], f)
	}

	visited := 0
	var walk func(f *core.Folder, level int)
	walk = func(f *core.Folder, level int) {
		visited++
		f.CategoryLevel = level
		f.ChildrenCount = len(children[f.ID])
		for _, child := range children[f.ID] {
			walk(child, level+1)
		}
	}
	for _, f := range c.folders {
		if f.ParentFolderID == nil {
			walk(f, 1)
		}
	}
	// Folders unreachable from a root sit on a cycle.
	if visited != len(c.folders) {
		return fmt.Errorf("folder hierarchy contains a cycle")
	}
	return nil
}

// Tx is the view of the collections handed to View and Update callbacks.
type Tx struct {
	c        *collections
	now      func() time.Time
	newID    func() string
	writable bool
}

// Now returns the store clock's current time.
func (tx *Tx) Now() time.Time { return tx.now() }

// NewID returns a fresh record identifier.
func (tx *Tx) NewID() string { return tx.newID() }

func (tx *Tx) mustWrite() {
	if !tx.writable {
		panic("store: mutation inside View")
	}
}

// Notes returns the notes in collection order. Callers must not retain the slice.
func (tx *Tx) Notes() []*core.Note { return tx.c.notes }

// Note looks up a note.
func (tx *Tx) Note(id string) (*core.Note, bool) {
	n, ok := tx.c.noteByID[id]
	return n, ok
}

// InsertNote puts n at the front of the collection.
func (tx *Tx) InsertNote(n *core.Note) {
	tx.mustWrite()
	tx.c.notes = slices.Insert(tx.c.notes, 0, n)
	tx.c.noteByID[n.ID] = n
}

// Folders returns the folders in insertion order. Callers must not retain the slice.
func (tx *Tx) Folders() []*core.Folder { return tx.c.folders }

// Folder looks up a folder.
func (tx *Tx) Folder(id string) (*core.Folder, bool) {
	f, ok := tx.c.folderByID[id]
	return f, ok
}

// AppendFolder adds f to the collection.
func (tx *Tx) AppendFolder(f *core.Folder) {
	tx.mustWrite()
	tx.c.folders = append(tx.c.folders, f)
	tx.c.folderByID[f.ID] = f
}

// RemoveFolder erases a folder record.
func (tx *Tx) RemoveFolder(id string) {
	tx.mustWrite()
	delete(tx.c.folderByID, id)
	tx.c.folders = slices.DeleteFunc(tx.c.folders, func(f *core.Folder) bool { return f.ID == id })
}

// ChildIndex maps parent folder ids to their direct children, in collection order.
// Root folders are indexed under the empty string.
func (tx *Tx) ChildIndex() map[string][]*core.Folder {
	idx := make(map[string][]*core.Folder, len(tx.c.folders))
	for _, f := range tx.c.folders {
		key := ""
		if f.ParentFolderID != nil {
			key = *f.ParentFolderID
		}
		idx[key] = append(idx[key], f)
	}
	return idx
}

// Concepts returns the concepts in collection order. Callers must not retain the slice.
func (tx *Tx) Concepts() []*core.Concept { return tx.c.concepts }

// Concept looks up a concept.
func (tx *Tx) Concept(id string) (*core.Concept, bool) {
	c, ok := tx.c.conceptByID[id]
	return c, ok
}

// Settings returns the singleton, or nil when absent.
func (tx *Tx) Settings() *core.Settings { return tx.c.settings }

// SetSettings fills or clears the singleton slot.
func (tx *Tx) SetSettings(s *core.Settings) {
	tx.mustWrite()
	tx.c.settings = s
}
