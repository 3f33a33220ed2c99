// Package materialtree rebuilds a document's table of contents from flat material
// rows and implements the operations the admin console runs over it: status
// filtering, cascading selection and drag-and-drop reordering.
package materialtree

import (
	"sort"

	"lexlib/internal/domain/models/library"
)

// Node is one material in the rebuilt hierarchy. Children are owned by the node.
type Node struct {
	ID           string               `json:"id"`
	Ref          string               `json:"ref"`
	Title        string               `json:"title"`
	MaterialType library.MaterialType `json:"material_type"`
	Status       library.Status       `json:"status"`
	Position     *int                 `json:"position"`
	ParentID     string               `json:"parent_id"`
	ChildCount   int                  `json:"children_count"`
	Children     Forest               `json:"children"`
}

// IsLeaf reports whether the node has no children to display.
// Divisions emptied by a status filter are leaves too.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Forest is an ordered list of sibling nodes
type Forest []*Node

// Build reconstructs the forest rooted at records whose ParentID equals rootParentID.
// Siblings are stable-sorted by position with missing positions last.
//
// The parent graph is trusted to be acyclic. Rows unreachable from the root
// (orphans, or rows caught in a parent loop) are left out of the result.
func Build(materials []library.Material, rootParentID string) Forest {
	byParent := make(map[string][]int, len(materials))
	for i := range materials {
		byParent[materials[i].ParentID] = append(byParent[materials[i].ParentID], i)
	}

	placed := make(map[string]bool, len(materials))

	var attach func(parentID string) Forest
	attach = func(parentID string) Forest {
		indexes := byParent[parentID]
		sortByPosition(materials, indexes)

		nodes := make(Forest, 0, len(indexes))
		for _, i := range indexes {
			m := &materials[i]
			// Each ID is materialised once, even if the backend sent it twice
			if placed[m.ID] {
				continue
			}
			placed[m.ID] = true

			node := &Node{
				ID:           m.ID,
				Ref:          m.Ref,
				Title:        m.Title,
				MaterialType: m.MaterialType,
				Status:       m.Status,
				Position:     m.Position,
				ParentID:     m.ParentID,
			}
			node.Children = attach(m.ID)
			node.ChildCount = len(node.Children)
			nodes = append(nodes, node)
		}
		return nodes
	}

	return attach(rootParentID)
}

// sortByPosition orders row indexes by position ascending, nil last, keeping input order on ties
func sortByPosition(materials []library.Material, indexes []int) {
	sort.SliceStable(indexes, func(a, b int) bool {
		return positionLess(materials[indexes[a]].Position, materials[indexes[b]].Position)
	})
}

func positionLess(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

// Row is a node together with its depth in the forest (0 = top level)
type Row struct {
	Node  *Node `json:"node"`
	Depth int   `json:"depth"`
}

// Flatten returns the forest in pre-order, the order of the admin table view
func Flatten(forest Forest) []Row {
	var rows []Row
	var walk func(nodes Forest, depth int)
	walk = func(nodes Forest, depth int) {
		for _, n := range nodes {
			rows = append(rows, Row{Node: n, Depth: depth})
			walk(n.Children, depth+1)
		}
	}
	walk(forest, 0)
	return rows
}

// Count returns the number of nodes in the forest
func (f Forest) Count() int {
	total := 0
	for _, n := range f {
		total += 1 + n.Children.Count()
	}
	return total
}

// IDs returns the IDs of the forest's top-level nodes in order
func (f Forest) IDs() []string {
	ids := make([]string, len(f))
	for i, n := range f {
		ids[i] = n.ID
	}
	return ids
}
