package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
)

// CatalogueService handles catalogue and document type business logic
type CatalogueService interface {
	CreateCatalogue(ctx context.Context, req *CreateCatalogueRequest) (*models.Catalogue, error)
	GetCatalogue(ctx context.Context, id string) (*models.Catalogue, error)
	UpdateCatalogue(ctx context.Context, id string, req *UpdateCatalogueRequest) (*models.Catalogue, error)
	DeleteCatalogue(ctx context.Context, id string) error
	ListCatalogues(ctx context.Context) ([]models.Catalogue, error)

	CreateDocumentType(ctx context.Context, req *CreateDocumentTypeRequest) (*models.DocumentType, error)
	DeleteDocumentType(ctx context.Context, id string) error
	ListDocumentTypes(ctx context.Context) ([]models.DocumentType, error)
}

type CreateCatalogueRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Position    int    `json:"position"`
}

type UpdateCatalogueRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Position    *int    `json:"position,omitempty"`
}

type CreateDocumentTypeRequest struct {
	Name string `json:"name"`
}
