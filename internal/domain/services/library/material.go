package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
	"lexlib/internal/materialtree"
)

// MaterialService handles material business logic
type MaterialService interface {
	// CreateMaterial creates a material under a document or another material
	CreateMaterial(ctx context.Context, req *CreateMaterialRequest) (*models.Material, error)

	GetMaterial(ctx context.Context, id string) (*models.Material, error)

	// UpdateMaterial edits fields and optionally moves the material under a new parent
	UpdateMaterial(ctx context.Context, id string, req *UpdateMaterialRequest) (*models.Material, error)

	// DeleteMaterial deletes a material and its whole subtree
	DeleteMaterial(ctx context.Context, id string) error

	// Reorder computes the drop of one sibling onto another and applies it
	Reorder(ctx context.Context, req *ReorderRequest) (*ReorderResult, error)

	// UpdatePosition applies an already computed [old, new] rank pair within a sibling group
	UpdatePosition(ctx context.Context, req *UpdatePositionRequest) (*ReorderResult, error)

	// TransitionStatus moves a batch of materials to a new workflow status
	TransitionStatus(ctx context.Context, req *StatusTransitionRequest) ([]models.Material, error)

	// RenderMaterial returns the sanitized HTML rendering of a material's body
	RenderMaterial(ctx context.Context, id string) (*RenderedMaterial, error)
}

// CreateMaterialRequest represents a material creation request
type CreateMaterialRequest struct {
	DocumentID   string              `json:"-"`                   // From the URL
	ParentID     *string             `json:"parent_id,omitempty"` // nil or document ID = top level
	Ref          string              `json:"ref"`
	Title        string              `json:"title"`
	MaterialType models.MaterialType `json:"material_type"`
	Status       models.Status       `json:"status,omitempty"`   // Defaults to the workflow's initial status
	Position     *int                `json:"position,omitempty"` // nil = append after last sibling
	Body         string              `json:"body,omitempty"`
	BodyFormat   string              `json:"body_format,omitempty"` // markdown (default), html or text
}

// UpdateMaterialRequest represents a material update request
type UpdateMaterialRequest struct {
	Ref          *string              `json:"ref,omitempty"`
	Title        *string              `json:"title,omitempty"`
	MaterialType *models.MaterialType `json:"material_type,omitempty"`
	Body         *string              `json:"body,omitempty"`
	BodyFormat   string               `json:"body_format,omitempty"`
	ParentID     *string              `json:"parent_id,omitempty"` // Move; document ID = top level
}

// ReorderRequest is a drag-and-drop drop event
type ReorderRequest struct {
	DocumentID  string         `json:"-"`
	FromID      string         `json:"from_id"`
	ToID        string         `json:"to_id"`
	InsertAfter bool           `json:"insert_after"`
	Status      *models.Status `json:"status,omitempty"` // Active table filter; siblings are taken from the filtered tree
}

// UpdatePositionRequest moves the sibling at rank Positions[0] to rank Positions[1]
type UpdatePositionRequest struct {
	DocumentID string         `json:"-"`
	ParentID   string         `json:"parent_id"`
	Positions  [2]int         `json:"positions"` // 1-based [old, new]
	Status     *models.Status `json:"status,omitempty"`
}

// ReorderResult reports what a reorder did
type ReorderResult struct {
	Moved     bool                          `json:"moved"`
	ParentID  string                        `json:"parent_id,omitempty"`
	Positions *[2]int                       `json:"positions,omitempty"`
	Order     []string                      `json:"order,omitempty"`
	Updates   []materialtree.PositionUpdate `json:"updates,omitempty"`
}

// StatusTransitionRequest moves materials to Status
type StatusTransitionRequest struct {
	MaterialIDs []string      `json:"material_ids"`
	Status      models.Status `json:"status"`
}

// RenderedMaterial is a material with its body rendered for the reader
type RenderedMaterial struct {
	ID    string `json:"id"`
	Ref   string `json:"ref"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}
