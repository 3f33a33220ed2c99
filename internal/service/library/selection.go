package library

import (
	"context"
	"fmt"
	"log/slog"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	"lexlib/internal/domain/repositories"
	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/materialtree"
)

type selectionService struct {
	store     repositories.SelectionRepository
	tree      *TreeCache
	materials librarySvc.MaterialService
	logger    *slog.Logger
}

// NewSelectionService creates a new selection service
func NewSelectionService(
	store repositories.SelectionRepository,
	tree *TreeCache,
	materials librarySvc.MaterialService,
	logger *slog.Logger,
) librarySvc.SelectionService {
	return &selectionService{
		store:     store,
		tree:      tree,
		materials: materials,
		logger:    logger,
	}
}

func (s *selectionService) GetSelection(ctx context.Context, key repositories.SelectionKey) (*librarySvc.SelectionView, error) {
	if err := validateSelectionKey(key); err != nil {
		return nil, err
	}

	snap, err := s.tree.Load(ctx, key.DocumentID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return &librarySvc.SelectionView{DocumentID: key.DocumentID, Status: key.Status, MaterialIDs: liveIDs(snap.Index, stored)}, nil
}

// Toggle flips materialID in the stored selection, cascading over the full
// (unfiltered) tree so sibling groups stay whole. Unknown IDs leave the selection
// unchanged. IDs of materials deleted since they were selected are dropped.
func (s *selectionService) Toggle(ctx context.Context, key repositories.SelectionKey, materialID string) (*librarySvc.SelectionView, error) {
	if err := validateSelectionKey(key); err != nil {
		return nil, err
	}
	if materialID == "" {
		return nil, fmt.Errorf("%w: material_id is required", domain.ErrValidation)
	}

	snap, err := s.tree.Load(ctx, key.DocumentID)
	if err != nil {
		return nil, err
	}

	var selected bool
	ids, err := s.store.Update(ctx, key, func(stored []string) ([]string, error) {
		sel := materialtree.NewSelection(key.Status, liveIDs(snap.Index, stored)...)
		selected = sel.Toggle(snap.Index, materialID)
		return sel.IDs(), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("selection toggled",
		"document_id", key.DocumentID,
		"status", key.Status,
		"material_id", materialID,
		"selected", selected,
		"size", len(ids),
	)

	return &librarySvc.SelectionView{
		DocumentID:  key.DocumentID,
		Status:      key.Status,
		MaterialIDs: ids,
		Selected:    &selected,
	}, nil
}

func (s *selectionService) ClearSelection(ctx context.Context, key repositories.SelectionKey) error {
	if err := validateSelectionKey(key); err != nil {
		return err
	}
	return s.store.Clear(ctx, key)
}

// ApplyStatus transitions the stored selection to target, then clears it.
// The selection survives a failed transition.
func (s *selectionService) ApplyStatus(ctx context.Context, key repositories.SelectionKey, target models.Status) ([]models.Material, error) {
	if err := validateSelectionKey(key); err != nil {
		return nil, err
	}

	snap, err := s.tree.Load(ctx, key.DocumentID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	ids := liveIDs(snap.Index, stored)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: nothing is selected", domain.ErrValidation)
	}

	updated, err := s.materials.TransitionStatus(ctx, &librarySvc.StatusTransitionRequest{
		MaterialIDs: ids,
		Status:      target,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx, key); err != nil {
		s.logger.Warn("failed to clear selection after status change", "document_id", key.DocumentID, "error", err)
	}

	return updated, nil
}

func validateSelectionKey(key repositories.SelectionKey) error {
	if key.UserID == "" {
		return domain.ErrUnauthorized
	}
	if key.DocumentID == "" {
		return fmt.Errorf("%w: document_id is required", domain.ErrValidation)
	}
	if !key.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, key.Status)
	}
	return nil
}

// liveIDs keeps the IDs still present in the tree, preserving order
func liveIDs(ix *materialtree.Index, ids []string) []string {
	live := make([]string, 0, len(ids))
	for _, id := range ids {
		if ix.Contains(id) {
			live = append(live, id)
		}
	}
	return live
}
