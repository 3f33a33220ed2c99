package materialtree

import (
	"sort"

	"lexlib/internal/domain/models/library"
)

// Selection is the set of material IDs picked in one status view of the admin table.
//
// Selection below the top level is all-or-none per sibling group: toggling any
// child selects or clears its parent and every sibling under that parent.
// Toggling a top-level node cascades to its whole subtree.
type Selection struct {
	status library.Status
	ids    map[string]struct{}
}

// NewSelection creates a selection for a status view, seeded with ids
func NewSelection(status library.Status, ids ...string) *Selection {
	s := &Selection{
		status: status,
		ids:    make(map[string]struct{}, len(ids)),
	}
	s.add(ids...)
	return s
}

// Status returns the status view the selection belongs to
func (s *Selection) Status() library.Status {
	return s.status
}

// Has reports whether id is selected
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected IDs
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected IDs in sorted order
func (s *Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Toggle flips the selection state of id and applies the cascade rules.
// Siblings are resolved through ix, which should index the full, unfiltered tree.
// It returns whether id is selected afterwards. Unknown IDs are ignored.
func (s *Selection) Toggle(ix *Index, id string) bool {
	if !ix.Contains(id) {
		return s.Has(id)
	}

	if s.Has(id) {
		s.remove(id)
		s.remove(ix.DescendantIDs(id)...)
		if !ix.IsTopLevel(id) {
			parentID, _ := ix.ParentID(id)
			s.remove(parentID)
			s.remove(ix.SiblingIDs(id)...)
		}
		return false
	}

	if ix.IsTopLevel(id) {
		s.add(id)
		s.add(ix.DescendantIDs(id)...)
		return true
	}

	parentID, _ := ix.ParentID(id)
	s.add(parentID)
	s.add(ix.SiblingIDs(id)...)
	return true
}

func (s *Selection) add(ids ...string) {
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) remove(ids ...string) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}
