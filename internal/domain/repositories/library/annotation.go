package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
)

// AnnotationRepository defines data access operations for bookmarks and notes
type AnnotationRepository interface {
	Create(ctx context.Context, annotation *models.Annotation) error
	GetByID(ctx context.Context, id string) (*models.Annotation, error)
	Update(ctx context.Context, annotation *models.Annotation) error
	Delete(ctx context.Context, id string) error

	// ListByUser returns the user's annotations, optionally restricted to one document
	ListByUser(ctx context.Context, userID string, documentID *string) ([]models.Annotation, error)
}
