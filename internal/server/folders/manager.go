// Package folders maintains the folder hierarchy: parent references, child
// counts, category levels and the assembled tree.
package folders

import (
	"github.com/rs/zerolog"

	"github.com/systemshift/minddump/internal/server/core"
	"github.com/systemshift/minddump/internal/server/query"
	"github.com/systemshift/minddump/internal/server/store"
)

// Manager implements the folder operations on top of a store.
type Manager struct {
	store *store.Store
	log   zerolog.Logger
}

// NewManager creates a folder manager.
func NewManager(s *store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: s, log: log.With().Str("component", "folders").Logger()}
}

// CreateInput describes a new folder. A nil or empty parent creates a root folder.
type CreateInput struct {
	ParentFolderID *string
	ConceptID      string
}

// UpdateInput is a partial update. Nil fields are left untouched; an empty
// ParentFolderID moves the folder to the root.
type UpdateInput struct {
	ParentFolderID *string
	ConceptID      *string
	Percentage     *float64
}

// ListInput selects the folders under one parent. A nil Parent lists root folders.
type ListInput struct {
	Parent *string
	query.Params
}

// Detail is a folder with its direct children.
type Detail struct {
	Folder     core.Folder
	Children   []core.Folder
	NotesCount int
}

// TreeNode is one folder of the assembled hierarchy.
type TreeNode struct {
	ID             string            `json:"id"`
	ParentFolderID *string           `json:"parent_folder_id"`
	CategoryLevel  int               `json:"category_level"`
	Concept        core.ConceptBrief `json:"concept"`
	Children       []TreeNode        `json:"children"`
}

// Create adds a folder under an existing parent, or at the root.
func (m *Manager) Create(in CreateInput) (core.Folder, error) {
	var out core.Folder
	err := m.store.Update(func(tx *store.Tx) error {
		concept, ok := tx.Concept(in.ConceptID)
		if !ok {
			return core.ConceptNotFound(in.ConceptID)
		}

		var parent *core.Folder
		if in.ParentFolderID != nil && *in.ParentFolderID != "" {
			parent, ok = tx.Folder(*in.ParentFolderID)
			if !ok {
				return core.ParentFolderNotFound(*in.ParentFolderID)
			}
		}

		now := tx.Now()
		folder := &core.Folder{
			ID:            tx.NewID(),
			UserID:        core.DefaultUserID,
			CategoryLevel: 1,
			Concept:       concept.Brief(),
			Percentage:    0,
			Created:       now,
			Modified:      now,
		}
		if parent != nil {
			parentID := parent.ID
			folder.ParentFolderID = &parentID
			folder.CategoryLevel = parent.CategoryLevel + 1
			parent.ChildrenCount++
		}
		tx.AppendFolder(folder)

		out = folder.Clone()
		return nil
	})
	if err != nil {
		return core.Folder{}, err
	}

	m.log.Debug().Str("folder_id", out.ID).Int("level", out.CategoryLevel).Msg("folder created")
	return out, nil
}

// Get returns a folder, its direct children and the number of live notes filed in it.
func (m *Manager) Get(id string) (Detail, error) {
	var out Detail
	err := m.store.View(func(tx *store.Tx) error {
		folder, ok := tx.Folder(id)
		if !ok {
			return core.FolderNotFound(id)
		}

		out.Folder = folder.Clone()
		out.Children = []core.Folder{}
		for _, f := range tx.Folders() {
			if f.HasParent(id) {
				out.Children = append(out.Children, f.Clone())
			}
		}
		out.NotesCount = notesIn(tx, id)
		return nil
	})
	return out, err
}

// List returns the folders under one parent, newest first.
func (m *Manager) List(in ListInput) (query.Result[core.Folder], error) {
	var out query.Result[core.Folder]
	err := m.store.View(func(tx *store.Tx) error {
		q := query.Query[*core.Folder]{
			Filters: []query.Predicate[*core.Folder]{parentFilter(in.Parent)},
			Sort: &query.Sort[*core.Folder]{
				Compare: func(a, b *core.Folder) int { return a.Created.Compare(b.Created) },
				Order:   query.Desc,
			},
			Params: in.Params,
		}
		res, err := query.Run(tx.Folders(), q, query.FolderBounds)
		if err != nil {
			return err
		}

		out.Pagination = res.Pagination
		out.Items = make([]core.Folder, 0, len(res.Items))
		for _, f := range res.Items {
			out.Items = append(out.Items, f.Clone())
		}
		return nil
	})
	return out, err
}

func parentFilter(parent *string) query.Predicate[*core.Folder] {
	if parent == nil {
		return (*core.Folder).IsRoot
	}
	id := *parent
	return func(f *core.Folder) bool { return f.HasParent(id) }
}

// Tree assembles the whole forest from the root folders down.
func (m *Manager) Tree() ([]TreeNode, error) {
	var out []TreeNode
	err := m.store.View(func(tx *store.Tx) error {
		index := tx.ChildIndex()
		out = buildNodes(index, index[""])
		return nil
	})
	return out, err
}

// buildNodes expands folders using the parent index built once per call.
// Parents are validated on every write, so the recursion ends at the leaves.
func buildNodes(index map[string][]*core.Folder, folders []*core.Folder) []TreeNode {
	nodes := make([]TreeNode, 0, len(folders))
	for _, f := range folders {
		c := f.Clone()
		nodes = append(nodes, TreeNode{
			ID:             c.ID,
			ParentFolderID: c.ParentFolderID,
			CategoryLevel:  c.CategoryLevel,
			Concept:        c.Concept,
			Children:       buildNodes(index, index[f.ID]),
		})
	}
	return nodes
}

// Update changes the parent, concept or percentage of a folder.
func (m *Manager) Update(id string, in UpdateInput) (core.Folder, error) {
	var out core.Folder
	err := m.store.Update(func(tx *store.Tx) error {
		folder, ok := tx.Folder(id)
		if !ok {
			return core.FolderNotFound(id)
		}

		// Validate everything first; a failed update must not touch the store.
		var newParent *core.Folder
		moveToRoot := false
		if in.ParentFolderID != nil {
			target := *in.ParentFolderID
			switch {
			case target == "":
				moveToRoot = true
			case target == id:
				return circularReference(id, target)
			default:
				newParent, ok = tx.Folder(target)
				if !ok {
					return core.ParentFolderNotFound(target)
				}
				if isDescendant(tx, newParent, id) {
					return circularReference(id, target)
				}
			}
		}

		var concept *core.Concept
		if in.ConceptID != nil {
			concept, ok = tx.Concept(*in.ConceptID)
			if !ok {
				return core.ConceptNotFound(*in.ConceptID)
			}
		}

		if moveToRoot || newParent != nil {
			reparent(tx, folder, newParent)
		}
		if concept != nil {
			folder.Concept = concept.Brief()
		}
		if in.Percentage != nil {
			folder.Percentage = core.ClampPercentage(*in.Percentage)
		}
		folder.Modified = tx.Now()

		out = folder.Clone()
		return nil
	})
	if err != nil {
		return core.Folder{}, err
	}

	m.log.Debug().Str("folder_id", id).Msg("folder updated")
	return out, nil
}

func circularReference(id, target string) *core.Error {
	return core.Validation("CIRCULAR_REFERENCE", "A folder cannot be its own parent or ancestor",
		map[string]any{"folder_id": id, "parent_folder_id": target})
}

// isDescendant reports whether candidate lies in the subtree rooted at rootID.
func isDescendant(tx *store.Tx, candidate *core.Folder, rootID string) bool {
	seen := make(map[string]bool)
	for f := candidate; f != nil && f.ParentFolderID != nil; {
		parentID := *f.ParentFolderID
		if parentID == rootID {
			return true
		}
		if seen[parentID] {
			return false
		}
		seen[parentID] = true
		f, _ = tx.Folder(parentID)
	}
	return false
}

// reparent moves folder under newParent (nil for the root), transferring one
// unit of children count and relevelling the moved subtree.
func reparent(tx *store.Tx, folder, newParent *core.Folder) {
	if newParent == nil && folder.IsRoot() {
		return
	}
	if newParent != nil && folder.HasParent(newParent.ID) {
		return
	}

	if folder.ParentFolderID != nil {
		if old, ok := tx.Folder(*folder.ParentFolderID); ok {
			old.ChildrenCount = max(0, old.ChildrenCount-1)
		}
	}

	level := 1
	if newParent == nil {
		folder.ParentFolderID = nil
	} else {
		parentID := newParent.ID
		folder.ParentFolderID = &parentID
		newParent.ChildrenCount++
		level = newParent.CategoryLevel + 1
	}

	index := tx.ChildIndex()
	var relevel func(f *core.Folder, level int)
	relevel = func(f *core.Folder, level int) {
		f.CategoryLevel = level
		for _, child := range index[f.ID] {
			relevel(child, level+1)
		}
	}
	relevel(folder, level)
}

// Delete removes an empty folder and releases its slot in the parent's count.
func (m *Manager) Delete(id string) error {
	err := m.store.Update(func(tx *store.Tx) error {
		folder, ok := tx.Folder(id)
		if !ok {
			return core.FolderNotFound(id)
		}

		children := 0
		for _, f := range tx.Folders() {
			if f.HasParent(id) {
				children++
			}
		}
		if children > 0 {
			return core.Conflict("FOLDER_NOT_EMPTY", "Cannot delete folder with children. Remove children first.",
				map[string]any{"folder_id": id, "children_count": children})
		}

		tx.RemoveFolder(id)
		if folder.ParentFolderID != nil {
			if parent, ok := tx.Folder(*folder.ParentFolderID); ok {
				parent.ChildrenCount = max(0, parent.ChildrenCount-1)
			}
		}
		for _, n := range tx.Notes() {
			if n.InFolder(id) {
				n.FolderID = nil
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Debug().Str("folder_id", id).Msg("folder deleted")
	return nil
}

// notesIn counts the notes filed under a folder, ignoring soft-deleted ones.
func notesIn(tx *store.Tx, folderID string) int {
	count := 0
	for _, n := range tx.Notes() {
		if n.InFolder(folderID) && n.Status != core.StatusDeleted {
			count++
		}
	}
	return count
}
