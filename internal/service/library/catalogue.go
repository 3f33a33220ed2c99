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

type catalogueService struct {
	catalogueRepo libraryRepo.CatalogueRepository
	docTypeRepo   libraryRepo.DocumentTypeRepository
	logger        *slog.Logger
}

// NewCatalogueService creates a new catalogue service
func NewCatalogueService(
	catalogueRepo libraryRepo.CatalogueRepository,
	docTypeRepo libraryRepo.DocumentTypeRepository,
	logger *slog.Logger,
) librarySvc.CatalogueService {
	return &catalogueService{
		catalogueRepo: catalogueRepo,
		docTypeRepo:   docTypeRepo,
		logger:        logger,
	}
}

func (s *catalogueService) CreateCatalogue(ctx context.Context, req *librarySvc.CreateCatalogueRequest) (*models.Catalogue, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxCatalogueNameLength)),
		validation.Field(&req.Position, validation.Min(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	catalogue := &models.Catalogue{
		Name:        req.Name,
		Description: req.Description,
		Position:    req.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.catalogueRepo.Create(ctx, catalogue); err != nil {
		return nil, err
	}

	s.logger.Info("catalogue created", "id", catalogue.ID, "name", catalogue.Name)
	return catalogue, nil
}

func (s *catalogueService) GetCatalogue(ctx context.Context, id string) (*models.Catalogue, error) {
	return s.catalogueRepo.GetByID(ctx, id)
}

func (s *catalogueService) UpdateCatalogue(ctx context.Context, id string, req *librarySvc.UpdateCatalogueRequest) (*models.Catalogue, error) {
	if req.Name == nil && req.Description == nil && req.Position == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, config.MaxCatalogueNameLength)),
		validation.Field(&req.Position, validation.Min(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	catalogue, err := s.catalogueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		catalogue.Name = *req.Name
	}
	if req.Description != nil {
		catalogue.Description = *req.Description
	}
	if req.Position != nil {
		catalogue.Position = *req.Position
	}
	catalogue.UpdatedAt = time.Now()

	if err := s.catalogueRepo.Update(ctx, catalogue); err != nil {
		return nil, err
	}

	s.logger.Info("catalogue updated", "id", catalogue.ID)
	return catalogue, nil
}

func (s *catalogueService) DeleteCatalogue(ctx context.Context, id string) error {
	if err := s.catalogueRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("catalogue deleted", "id", id)
	return nil
}

func (s *catalogueService) ListCatalogues(ctx context.Context) ([]models.Catalogue, error) {
	return s.catalogueRepo.List(ctx)
}

func (s *catalogueService) CreateDocumentType(ctx context.Context, req *librarySvc.CreateDocumentTypeRequest) (*models.DocumentType, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxCatalogueNameLength)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now()
	docType := &models.DocumentType{Name: req.Name, CreatedAt: now, UpdatedAt: now}
	if err := s.docTypeRepo.Create(ctx, docType); err != nil {
		return nil, err
	}

	s.logger.Info("document type created", "id", docType.ID, "name", docType.Name)
	return docType, nil
}

func (s *catalogueService) DeleteDocumentType(ctx context.Context, id string) error {
	if err := s.docTypeRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("document type deleted", "id", id)
	return nil
}

func (s *catalogueService) ListDocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	return s.docTypeRepo.List(ctx)
}
