package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
)

// DocumentRepository defines data access operations for documents
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error

	// Delete removes the document and, through the foreign key, its materials
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
}
