package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
)

// AnnotationService handles reader bookmarks and notes. Every call is scoped to userID.
type AnnotationService interface {
	ListAnnotations(ctx context.Context, userID string, documentID *string) ([]models.Annotation, error)
	CreateAnnotation(ctx context.Context, req *CreateAnnotationRequest) (*models.Annotation, error)
	UpdateAnnotation(ctx context.Context, userID, id string, req *UpdateAnnotationRequest) (*models.Annotation, error)
	DeleteAnnotation(ctx context.Context, userID, id string) error
}

type CreateAnnotationRequest struct {
	UserID     string                `json:"-"` // Set by handler from auth context
	MaterialID string                `json:"material_id"`
	Kind       models.AnnotationKind `json:"kind"`
	Body       string                `json:"body,omitempty"`
}

type UpdateAnnotationRequest struct {
	Body *string `json:"body,omitempty"`
}
