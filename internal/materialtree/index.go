package materialtree

// Index is an arena view of a forest: nodes addressed by ID, with parent and
// depth recorded so lookups never walk back up through pointers.
type Index struct {
	rootParentID string
	roots        []string
	entries      map[string]indexEntry
}

type indexEntry struct {
	node     *Node
	parentID string
	depth    int
}

// NewIndex indexes every node of the forest. rootParentID is the synthetic
// parent shared by the top-level nodes.
func NewIndex(forest Forest, rootParentID string) *Index {
	ix := &Index{
		rootParentID: rootParentID,
		roots:        forest.IDs(),
		entries:      make(map[string]indexEntry, forest.Count()),
	}

	var walk func(nodes Forest, parentID string, depth int)
	walk = func(nodes Forest, parentID string, depth int) {
		for _, n := range nodes {
			ix.entries[n.ID] = indexEntry{node: n, parentID: parentID, depth: depth}
			walk(n.Children, n.ID, depth+1)
		}
	}
	walk(forest, rootParentID, 0)

	return ix
}

// RootParentID returns the synthetic parent of the top-level nodes
func (ix *Index) RootParentID() string {
	return ix.rootParentID
}

// Node returns the indexed node for id
func (ix *Index) Node(id string) (*Node, bool) {
	e, ok := ix.entries[id]
	return e.node, ok
}

// Contains reports whether id is part of the indexed forest
func (ix *Index) Contains(id string) bool {
	_, ok := ix.entries[id]
	return ok
}

// ParentID returns the parent of id; top-level nodes report the root parent ID
func (ix *Index) ParentID(id string) (string, bool) {
	e, ok := ix.entries[id]
	return e.parentID, ok
}

// Depth returns the depth of id (0 = top level), or -1 when unknown
func (ix *Index) Depth(id string) int {
	e, ok := ix.entries[id]
	if !ok {
		return -1
	}
	return e.depth
}

// IsTopLevel reports whether id is a direct child of the document root
func (ix *Index) IsTopLevel(id string) bool {
	e, ok := ix.entries[id]
	return ok && e.depth == 0
}

// ChildIDs returns the ordered children of parentID. The root parent ID yields
// the top-level nodes.
func (ix *Index) ChildIDs(parentID string) []string {
	if parentID == ix.rootParentID {
		return append([]string(nil), ix.roots...)
	}
	e, ok := ix.entries[parentID]
	if !ok {
		return nil
	}
	return e.node.Children.IDs()
}

// SiblingIDs returns the ordered children of id's parent, id included
func (ix *Index) SiblingIDs(id string) []string {
	parentID, ok := ix.ParentID(id)
	if !ok {
		return nil
	}
	return ix.ChildIDs(parentID)
}

// DescendantIDs returns every node below id in pre-order
func (ix *Index) DescendantIDs(id string) []string {
	e, ok := ix.entries[id]
	if !ok {
		return nil
	}
	var ids []string
	for _, row := range Flatten(e.node.Children) {
		ids = append(ids, row.Node.ID)
	}
	return ids
}
