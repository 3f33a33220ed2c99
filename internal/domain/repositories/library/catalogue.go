package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
)

// CatalogueRepository defines data access operations for catalogues
type CatalogueRepository interface {
	Create(ctx context.Context, catalogue *models.Catalogue) error
	GetByID(ctx context.Context, id string) (*models.Catalogue, error)
	Update(ctx context.Context, catalogue *models.Catalogue) error
	Delete(ctx context.Context, id string) error

	// List returns catalogues ordered by position, then name
	List(ctx context.Context) ([]models.Catalogue, error)
}

// DocumentTypeRepository defines data access operations for document types
type DocumentTypeRepository interface {
	Create(ctx context.Context, docType *models.DocumentType) error
	GetByID(ctx context.Context, id string) (*models.DocumentType, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.DocumentType, error)
}
