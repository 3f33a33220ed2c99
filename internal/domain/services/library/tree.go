package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
	"lexlib/internal/materialtree"
)

// TreeService builds a document's table of contents
type TreeService interface {
	// GetTree returns the document's material forest, restricted to status when non-nil
	GetTree(ctx context.Context, documentID string, status *models.Status) (*TreeView, error)

	// Invalidate drops any memoized tree for the document
	Invalidate(documentID string)
}

// TreeView is the response of the tree endpoint
type TreeView struct {
	DocumentID string              `json:"document_id"`
	Status     *models.Status      `json:"status,omitempty"`
	Materials  materialtree.Forest `json:"materials"`
}
