package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
	"lexlib/internal/httputil"
)

// DocumentService handles document business logic
type DocumentService interface {
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)

	// GetDocumentDetails returns the document with its flat material list
	GetDocumentDetails(ctx context.Context, id string) (*models.DocumentDetails, error)

	UpdateDocument(ctx context.Context, id string, req *UpdateDocumentRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Title          string  `json:"title"`
	Ref            string  `json:"ref"`
	CatalogueID    *string `json:"catalogue_id,omitempty"`
	DocumentTypeID *string `json:"document_type_id,omitempty"`
	Published      bool    `json:"published"`
}

// UpdateDocumentRequest uses tri-state fields for nullable references:
// absent leaves the value, null clears it.
type UpdateDocumentRequest struct {
	Title          *string                 `json:"title,omitempty"`
	Ref            *string                 `json:"ref,omitempty"`
	CatalogueID    httputil.OptionalString `json:"catalogue_id"`
	DocumentTypeID httputil.OptionalString `json:"document_type_id"`
	RootMaterialID httputil.OptionalString `json:"root_material_id"`
	Published      *bool                   `json:"published,omitempty"`
}
