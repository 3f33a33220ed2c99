package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
	"lexlib/internal/domain/repositories"
)

// SelectionService keeps the admin table selection for bulk actions
type SelectionService interface {
	GetSelection(ctx context.Context, key repositories.SelectionKey) (*SelectionView, error)

	// Toggle applies the cascade rules for materialID and stores the result
	Toggle(ctx context.Context, key repositories.SelectionKey, materialID string) (*SelectionView, error)

	ClearSelection(ctx context.Context, key repositories.SelectionKey) error

	// ApplyStatus transitions every selected material to target and clears the selection
	ApplyStatus(ctx context.Context, key repositories.SelectionKey, target models.Status) ([]models.Material, error)
}

// SelectionView is the stored selection as returned to the console
type SelectionView struct {
	DocumentID  string        `json:"document_id"`
	Status      models.Status `json:"status"`
	MaterialIDs []string      `json:"material_ids"`
	Selected    *bool         `json:"selected,omitempty"` // Set by Toggle: state of the toggled material
}

// ToggleSelectionRequest is the body of the toggle endpoint
type ToggleSelectionRequest struct {
	MaterialID string        `json:"material_id"`
	Status     models.Status `json:"status"`
}

// ApplySelectionStatusRequest is the body of the bulk transition endpoint
type ApplySelectionStatusRequest struct {
	Status       models.Status `json:"status"`        // View the selection was made in
	TargetStatus models.Status `json:"target_status"` // Status to move the selection to
}
