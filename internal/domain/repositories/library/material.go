package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
	"lexlib/internal/materialtree"
)

// MaterialRepository defines data access operations for materials
type MaterialRepository interface {
	// Create inserts a material. A nil Position is appended after the last sibling.
	Create(ctx context.Context, material *models.Material) error

	// GetByID retrieves a material by ID
	GetByID(ctx context.Context, id string) (*models.Material, error)

	// Update persists ref, title, type, status, body and parent of a material
	Update(ctx context.Context, material *models.Material) error

	// Delete removes a material row (descendants are removed by the caller)
	Delete(ctx context.Context, id string) error

	// ListByDocument returns the document's materials as a flat list ordered by
	// position (NULLs last), then creation time, with children counts filled in
	ListByDocument(ctx context.Context, documentID string) ([]models.Material, error)

	// ListChildren returns the direct children of parentID within a document, same ordering
	ListChildren(ctx context.Context, documentID, parentID string) ([]models.Material, error)

	// UpdatePositions writes the given positions
	UpdatePositions(ctx context.Context, updates []materialtree.PositionUpdate) error

	// UpdateStatus sets the status of the given materials
	UpdateStatus(ctx context.Context, ids []string, status models.Status) error

	// ListByIDs returns the materials with the given IDs (missing IDs are skipped)
	ListByIDs(ctx context.Context, ids []string) ([]models.Material, error)

	// Search runs a full-text search over material titles, refs and bodies
	Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error)
}
