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

type annotationService struct {
	annotationRepo libraryRepo.AnnotationRepository
	materialRepo   libraryRepo.MaterialRepository
	logger         *slog.Logger
}

// NewAnnotationService creates a new annotation service
func NewAnnotationService(
	annotationRepo libraryRepo.AnnotationRepository,
	materialRepo libraryRepo.MaterialRepository,
	logger *slog.Logger,
) librarySvc.AnnotationService {
	return &annotationService{
		annotationRepo: annotationRepo,
		materialRepo:   materialRepo,
		logger:         logger,
	}
}

func (s *annotationService) ListAnnotations(ctx context.Context, userID string, documentID *string) ([]models.Annotation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.annotationRepo.ListByUser(ctx, userID, documentID)
}

// CreateAnnotation bookmarks or annotates a material. Bookmarks carry no body; notes require one.
func (s *annotationService) CreateAnnotation(ctx context.Context, req *librarySvc.CreateAnnotationRequest) (*models.Annotation, error) {
	if req.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.MaterialID, validation.Required),
		validation.Field(&req.Kind, validation.Required, validation.In(models.AnnotationBookmark, models.AnnotationNote)),
		validation.Field(&req.Body,
			validation.When(req.Kind == models.AnnotationNote, validation.Required, validation.Length(1, config.MaxNoteLength)),
			validation.When(req.Kind == models.AnnotationBookmark, validation.Empty),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	material, err := s.materialRepo.GetByID(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	annotation := &models.Annotation{
		UserID:     req.UserID,
		DocumentID: material.DocumentID,
		MaterialID: material.ID,
		Kind:       req.Kind,
		Body:       req.Body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.annotationRepo.Create(ctx, annotation); err != nil {
		return nil, err
	}

	s.logger.Info("annotation created",
		"id", annotation.ID,
		"kind", annotation.Kind,
		"material_id", annotation.MaterialID,
	)
	return annotation, nil
}

// UpdateAnnotation edits the body of a note owned by userID
func (s *annotationService) UpdateAnnotation(ctx context.Context, userID, id string, req *librarySvc.UpdateAnnotationRequest) (*models.Annotation, error) {
	annotation, err := s.getOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Body == nil {
		return nil, fmt.Errorf("%w: at least one field must be provided", domain.ErrValidation)
	}
	if annotation.Kind != models.AnnotationNote {
		return nil, fmt.Errorf("%w: bookmarks have no body", domain.ErrValidation)
	}
	if err := validation.Validate(*req.Body, validation.Required, validation.Length(1, config.MaxNoteLength)); err != nil {
		return nil, fmt.Errorf("%w: body: %v", domain.ErrValidation, err)
	}

	annotation.Body = *req.Body
	annotation.UpdatedAt = time.Now()
	if err := s.annotationRepo.Update(ctx, annotation); err != nil {
		return nil, err
	}

	return annotation, nil
}

func (s *annotationService) DeleteAnnotation(ctx context.Context, userID, id string) error {
	if _, err := s.getOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.annotationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("annotation deleted", "id", id)
	return nil
}

// getOwned loads an annotation and checks it belongs to userID
func (s *annotationService) getOwned(ctx context.Context, userID, id string) (*models.Annotation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	annotation, err := s.annotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if annotation.UserID != userID {
		return nil, fmt.Errorf("annotation %s: %w", id, domain.ErrForbidden)
	}
	return annotation, nil
}
