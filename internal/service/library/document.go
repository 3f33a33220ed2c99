package library

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lexlib/internal/config"
	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	libraryRepo "lexlib/internal/domain/repositories/library"
	librarySvc "lexlib/internal/domain/services/library"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type documentService struct {
	docRepo       libraryRepo.DocumentRepository
	materialRepo  libraryRepo.MaterialRepository
	catalogueRepo libraryRepo.CatalogueRepository
	docTypeRepo   libraryRepo.DocumentTypeRepository
	tree          *TreeCache
	indexer       SearchIndexer
	logger        *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	docRepo libraryRepo.DocumentRepository,
	materialRepo libraryRepo.MaterialRepository,
	catalogueRepo libraryRepo.CatalogueRepository,
	docTypeRepo libraryRepo.DocumentTypeRepository,
	tree *TreeCache,
	indexer SearchIndexer,
	logger *slog.Logger,
) librarySvc.DocumentService {
	return &documentService{
		docRepo:       docRepo,
		materialRepo:  materialRepo,
		catalogueRepo: catalogueRepo,
		docTypeRepo:   docTypeRepo,
		tree:          tree,
		indexer:       indexer,
		logger:        logger,
	}
}

// CreateDocument creates an empty document
func (s *documentService) CreateDocument(ctx context.Context, req *librarySvc.CreateDocumentRequest) (*models.Document, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.validateReferences(ctx, req.CatalogueID, req.DocumentTypeID); err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &models.Document{
		Title:          req.Title,
		Ref:            req.Ref,
		CatalogueID:    req.CatalogueID,
		DocumentTypeID: req.DocumentTypeID,
		Published:      req.Published,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"id", doc.ID,
		"ref", doc.Ref,
		"catalogue_id", doc.CatalogueID,
	)

	return doc, nil
}

// GetDocumentDetails returns the document with its flat material list
func (s *documentService) GetDocumentDetails(ctx context.Context, id string) (*models.DocumentDetails, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	materials, err := s.materialRepo.ListByDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.DocumentDetails{Document: *doc, Materials: materials}, nil
}

// UpdateDocument applies a partial update
func (s *documentService) UpdateDocument(ctx context.Context, id string, req *librarySvc.UpdateDocumentRequest) (*models.Document, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasPublished := doc.Published

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Ref != nil {
		doc.Ref = *req.Ref
	}
	if req.CatalogueID.Present {
		doc.CatalogueID = req.CatalogueID.Ref()
	}
	if req.DocumentTypeID.Present {
		doc.DocumentTypeID = req.DocumentTypeID.Ref()
	}
	if req.Published != nil {
		doc.Published = *req.Published
	}
	if err := s.validateReferences(ctx, doc.CatalogueID, doc.DocumentTypeID); err != nil {
		return nil, err
	}

	if req.RootMaterialID.Present {
		rootID := req.RootMaterialID.Ref()
		if rootID != nil {
			root, err := s.materialRepo.GetByID(ctx, *rootID)
			if err != nil {
				return nil, err
			}
			if root.DocumentID != doc.ID {
				return nil, fmt.Errorf("%w: root material %s belongs to another document", domain.ErrValidation, *rootID)
			}
		}
		doc.RootMaterialID = rootID
	}

	doc.UpdatedAt = time.Now()
	if err := s.docRepo.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.tree.Invalidate(doc.ID)

	if doc.Published != wasPublished {
		if materials, err := s.materialRepo.ListByDocument(ctx, doc.ID); err == nil {
			s.indexer.IndexMaterials(doc, materials...)
		} else {
			s.logger.Warn("failed to reindex document materials", "document_id", doc.ID, "error", err)
		}
	}

	s.logger.Info("document updated",
		"id", doc.ID,
		"published", doc.Published,
	)

	return doc, nil
}

// DeleteDocument deletes a document and its materials
func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	materials, err := s.materialRepo.ListByDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.tree.Invalidate(id)

	ids := make([]string, len(materials))
	for i, m := range materials {
		ids[i] = m.ID
	}
	s.indexer.DeleteMaterials(ids...)

	s.logger.Info("document deleted", "id", id, "materials", len(ids))
	return nil
}

func (s *documentService) ListDocuments(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	return s.docRepo.List(ctx, filter)
}

// validateReferences checks that the catalogue and document type exist
func (s *documentService) validateReferences(ctx context.Context, catalogueID, docTypeID *string) error {
	if catalogueID != nil {
		if _, err := s.catalogueRepo.GetByID(ctx, *catalogueID); err != nil {
			return err
		}
	}
	if docTypeID != nil {
		if _, err := s.docTypeRepo.GetByID(ctx, *docTypeID); err != nil {
			return err
		}
	}
	return nil
}

func (s *documentService) validateCreateRequest(req *librarySvc.CreateDocumentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&req.Ref, validation.Required, validation.Length(1, config.MaxRefLength)),
		validation.Field(&req.CatalogueID, validation.NilOrNotEmpty),
		validation.Field(&req.DocumentTypeID, validation.NilOrNotEmpty),
	)
}

func (s *documentService) validateUpdateRequest(req *librarySvc.UpdateDocumentRequest) error {
	if req.Title == nil && req.Ref == nil && req.Published == nil &&
		!req.CatalogueID.Present && !req.DocumentTypeID.Present && !req.RootMaterialID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&req.Ref, validation.NilOrNotEmpty, validation.Length(1, config.MaxRefLength)),
	)
}
