package materialtree

import (
	"lexlib/internal/domain/models/library"
)

// FilterByStatus returns a copy of the forest keeping only nodes whose status equals
// status. A node that does not match is dropped together with its whole subtree.
// The input forest is left untouched.
func FilterByStatus(forest Forest, status library.Status) Forest {
	out := make(Forest, 0, len(forest))
	for _, n := range forest {
		if n.Status != status {
			continue
		}
		clone := *n
		clone.Children = FilterByStatus(n.Children, status)
		clone.ChildCount = len(clone.Children)
		out = append(out, &clone)
	}
	return out
}
