package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lexlib/internal/config"
	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	"lexlib/internal/domain/repositories"
	libraryRepo "lexlib/internal/domain/repositories/library"
	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/materialtree"
	"lexlib/internal/render"
	"lexlib/internal/workflow"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type materialService struct {
	materialRepo libraryRepo.MaterialRepository
	tree         *TreeCache
	workflow     *workflow.Registry
	txManager    repositories.TransactionManager
	renderer     *render.Renderer
	importer     *render.Importer
	indexer      SearchIndexer
	logger       *slog.Logger
}

// NewMaterialService creates a new material service
func NewMaterialService(
	materialRepo libraryRepo.MaterialRepository,
	tree *TreeCache,
	workflow *workflow.Registry,
	txManager repositories.TransactionManager,
	renderer *render.Renderer,
	importer *render.Importer,
	indexer SearchIndexer,
	logger *slog.Logger,
) librarySvc.MaterialService {
	return &materialService{
		materialRepo: materialRepo,
		tree:         tree,
		workflow:     workflow,
		txManager:    txManager,
		renderer:     renderer,
		importer:     importer,
		indexer:      indexer,
		logger:       logger,
	}
}

// CreateMaterial creates a material. Without a position it is appended after its
// last sibling; with one it is inserted at that rank and later siblings shift down.
func (s *materialService) CreateMaterial(ctx context.Context, req *librarySvc.CreateMaterialRequest) (*models.Material, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	snap, err := s.tree.Load(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	parentID := ""
	if req.ParentID != nil {
		parentID = *req.ParentID
	}
	treeParent := snap.TreeParentID(parentID)
	if err := s.validateParent(snap, treeParent); err != nil {
		return nil, err
	}

	body, err := s.importer.ToMarkdown(render.BodyFormat(req.BodyFormat), req.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	status := req.Status
	if status == "" {
		status = s.workflow.Initial()
	}

	now := time.Now()
	material := &models.Material{
		DocumentID:   snap.Document.ID,
		ParentID:     snap.StorageParentID(treeParent),
		Ref:          req.Ref,
		Title:        req.Title,
		MaterialType: req.MaterialType,
		Status:       status,
		Body:         body,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if req.Position == nil {
			return s.materialRepo.Create(txCtx, material)
		}
		return s.insertAt(txCtx, snap, treeParent, material, *req.Position)
	})
	if err != nil {
		return nil, err
	}

	s.tree.Invalidate(snap.Document.ID)
	s.indexer.IndexMaterials(snap.Document, *material)

	s.logger.Info("material created",
		"id", material.ID,
		"document_id", material.DocumentID,
		"parent_id", material.ParentID,
		"ref", material.Ref,
		"position", material.Position,
	)

	return material, nil
}

// insertAt creates material at 1-based rank among the stored siblings of treeParent
func (s *materialService) insertAt(ctx context.Context, snap *Snapshot, treeParent string, material *models.Material, rank int) error {
	siblings := s.storedSiblings(snap, treeParent)
	if rank > len(siblings)+1 {
		rank = len(siblings) + 1
	}

	// The slot is provisional: Normalize below settles the final positions
	slot := rank
	if rank > 1 && siblings[rank-2].Position != nil {
		slot = *siblings[rank-2].Position + 1
	}
	material.Position = &slot

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return err
	}

	group := make([]materialtree.Sibling, 0, len(siblings)+1)
	group = append(group, siblings[:rank-1]...)
	group = append(group, materialtree.Sibling{ID: material.ID, Position: material.Position})
	group = append(group, siblings[rank-1:]...)

	_, updates := materialtree.Normalize(group)
	for _, u := range updates {
		if u.ID == material.ID {
			pos := u.Position
			material.Position = &pos
		}
	}
	return s.materialRepo.UpdatePositions(ctx, updates)
}

func (s *materialService) GetMaterial(ctx context.Context, id string) (*models.Material, error) {
	return s.materialRepo.GetByID(ctx, id)
}

// UpdateMaterial edits a material. A new parent moves it, with its subtree,
// to the end of the target sibling group.
func (s *materialService) UpdateMaterial(ctx context.Context, id string, req *librarySvc.UpdateMaterialRequest) (*models.Material, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snap, err := s.tree.Load(ctx, material.DocumentID)
	if err != nil {
		return nil, err
	}

	if req.Ref != nil {
		material.Ref = *req.Ref
	}
	if req.Title != nil {
		material.Title = *req.Title
	}
	if req.MaterialType != nil {
		if *req.MaterialType == models.MaterialTypeArticle && len(snap.Index.ChildIDs(id)) > 0 {
			return nil, fmt.Errorf("%w: a material with children cannot become an article", domain.ErrValidation)
		}
		material.MaterialType = *req.MaterialType
	}
	if req.Body != nil {
		body, err := s.importer.ToMarkdown(render.BodyFormat(req.BodyFormat), *req.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		material.Body = body
	}

	moved := false
	if req.ParentID != nil {
		treeParent := snap.TreeParentID(*req.ParentID)
		currentParent := snap.TreeParentID(material.ParentID)
		if treeParent != currentParent {
			if err := s.validateNoCircularMove(snap, id, treeParent); err != nil {
				return nil, err
			}
			if err := s.validateParent(snap, treeParent); err != nil {
				return nil, err
			}
			material.ParentID = snap.StorageParentID(treeParent)
			material.Position = s.nextPosition(snap, treeParent)
			moved = true
		}
	}

	material.UpdatedAt = time.Now()
	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, err
	}

	s.tree.Invalidate(material.DocumentID)
	s.indexer.IndexMaterials(snap.Document, *material)

	s.logger.Info("material updated",
		"id", material.ID,
		"document_id", material.DocumentID,
		"moved", moved,
	)

	return material, nil
}

// DeleteMaterial deletes a material and every descendant
func (s *materialService) DeleteMaterial(ctx context.Context, id string) error {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	snap, err := s.tree.Load(ctx, material.DocumentID)
	if err != nil {
		return err
	}
	if snap.Document.RootMaterialID != nil && *snap.Document.RootMaterialID == id {
		return fmt.Errorf("%w: the document root material cannot be deleted", domain.ErrValidation)
	}

	ids := append([]string{id}, snap.Index.DescendantIDs(id)...)

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		// Leaves first
		for i := len(ids) - 1; i >= 0; i-- {
			if err := s.materialRepo.Delete(txCtx, ids[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.tree.Invalidate(material.DocumentID)
	s.indexer.DeleteMaterials(ids...)

	s.logger.Info("material deleted",
		"id", id,
		"document_id", material.DocumentID,
		"descendants", len(ids)-1,
	)

	return nil
}

// Reorder handles a drop of FromID onto ToID within the (optionally filtered) tree.
// Unknown IDs and drops that do not change the order are no-ops.
func (s *materialService) Reorder(ctx context.Context, req *librarySvc.ReorderRequest) (*librarySvc.ReorderResult, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.FromID, validation.Required),
		validation.Field(&req.ToID, validation.Required),
		validation.Field(&req.Status, validation.By(validStatusPtr)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	snap, err := s.tree.Load(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	_, view := snap.View(req.Status)

	fromParent, fromOK := view.ParentID(req.FromID)
	toParent, toOK := view.ParentID(req.ToID)
	if !fromOK || !toOK {
		s.logger.Debug("reorder ignored: unknown material", "from_id", req.FromID, "to_id", req.ToID)
		return &librarySvc.ReorderResult{Moved: false}, nil
	}
	if fromParent != toParent {
		return nil, fmt.Errorf("%w: materials can only be reordered among siblings", domain.ErrValidation)
	}

	siblings := view.ChildIDs(fromParent)
	move, order, ok := materialtree.ComputeReorder(siblings, req.FromID, req.ToID, req.InsertAfter)
	if !ok {
		return &librarySvc.ReorderResult{Moved: false}, nil
	}

	return s.applyMove(ctx, snap, view, fromParent, move, order)
}

// UpdatePosition applies a precomputed [old, new] rank pair to the sibling group of ParentID
func (s *materialService) UpdatePosition(ctx context.Context, req *librarySvc.UpdatePositionRequest) (*librarySvc.ReorderResult, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.ParentID, validation.Required),
		validation.Field(&req.Status, validation.By(validStatusPtr)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	snap, err := s.tree.Load(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	_, view := snap.View(req.Status)

	parent := snap.TreeParentID(req.ParentID)
	if parent != snap.RootID() && !snap.Index.Contains(parent) {
		return nil, fmt.Errorf("material %s: %w", req.ParentID, domain.ErrNotFound)
	}

	move := materialtree.Move{From: req.Positions[0], To: req.Positions[1]}
	if move.From == move.To {
		return &librarySvc.ReorderResult{Moved: false}, nil
	}

	order, err := materialtree.ApplyMove(view.ChildIDs(parent), move)
	if err != nil {
		if errors.Is(err, materialtree.ErrMoveOutOfRange) {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return nil, err
	}

	return s.applyMove(ctx, snap, view, parent, move, order)
}

// applyMove writes the positions realising move within the visible sibling group of parent.
// The stored group is first normalised when its positions cannot express a strict order.
func (s *materialService) applyMove(
	ctx context.Context,
	snap *Snapshot,
	view *materialtree.Index,
	parent string,
	move materialtree.Move,
	order []string,
) (*librarySvc.ReorderResult, error) {
	stored, normalized := materialtree.Normalize(s.storedSiblings(snap, parent))

	positions := make(map[string]*int, len(stored))
	for _, sib := range stored {
		positions[sib.ID] = sib.Position
	}

	visibleIDs := view.ChildIDs(parent)
	visible := make([]materialtree.Sibling, len(visibleIDs))
	for i, id := range visibleIDs {
		visible[i] = materialtree.Sibling{ID: id, Position: positions[id]}
	}

	planned, err := materialtree.PlanMove(visible, move)
	if err != nil {
		return nil, fmt.Errorf("plan move: %w", err)
	}
	updates := materialtree.MergeUpdates(normalized, planned)

	if len(updates) > 0 {
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			return s.materialRepo.UpdatePositions(txCtx, updates)
		})
		if err != nil {
			return nil, err
		}
		s.tree.Invalidate(snap.Document.ID)
	}

	pair := move.Pair()
	parentID := snap.StorageParentID(parent)

	s.logger.Info("material reordered",
		"document_id", snap.Document.ID,
		"parent_id", parentID,
		"from", pair[0],
		"to", pair[1],
		"writes", len(updates),
	)

	return &librarySvc.ReorderResult{
		Moved:     true,
		ParentID:  parentID,
		Positions: &pair,
		Order:     order,
		Updates:   updates,
	}, nil
}

// storedSiblings returns the full, unfiltered sibling group of parent in display order
func (s *materialService) storedSiblings(snap *Snapshot, parent string) []materialtree.Sibling {
	ids := snap.Index.ChildIDs(parent)
	siblings := make([]materialtree.Sibling, len(ids))
	for i, id := range ids {
		node, _ := snap.Index.Node(id)
		siblings[i] = materialtree.Sibling{ID: id, Position: node.Position}
	}
	return siblings
}

// nextPosition returns the position after the last positioned child of parent
func (s *materialService) nextPosition(snap *Snapshot, parent string) *int {
	next := 1
	for _, sib := range s.storedSiblings(snap, parent) {
		if sib.Position != nil && *sib.Position >= next {
			next = *sib.Position + 1
		}
	}
	return &next
}

// TransitionStatus moves materials to a new status, checking each against the workflow
func (s *materialService) TransitionStatus(ctx context.Context, req *librarySvc.StatusTransitionRequest) ([]models.Material, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.MaterialIDs, validation.Required, validation.Length(1, config.MaxBulkStatusIDs)),
		validation.Field(&req.Status, validation.Required, validation.By(validStatus)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	materials, err := s.materialRepo.ListByIDs(ctx, req.MaterialIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(materials))
	for _, m := range materials {
		found[m.ID] = true
	}
	for _, id := range req.MaterialIDs {
		if !found[id] {
			return nil, fmt.Errorf("material %s: %w", id, domain.ErrNotFound)
		}
	}

	var changed []string
	for _, m := range materials {
		if !s.workflow.CanTransition(m.Status, req.Status) {
			return nil, &domain.TransitionError{MaterialID: m.ID, From: string(m.Status), To: string(req.Status)}
		}
		if m.Status != req.Status {
			changed = append(changed, m.ID)
		}
	}

	if len(changed) > 0 {
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			return s.materialRepo.UpdateStatus(txCtx, changed, req.Status)
		})
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	byDocument := make(map[string][]models.Material)
	for i := range materials {
		if materials[i].Status != req.Status {
			materials[i].Status = req.Status
			materials[i].UpdatedAt = now
		}
		byDocument[materials[i].DocumentID] = append(byDocument[materials[i].DocumentID], materials[i])
	}
	for documentID, list := range byDocument {
		s.tree.Invalidate(documentID)
		if snap, err := s.tree.Load(ctx, documentID); err == nil {
			s.indexer.IndexMaterials(snap.Document, list...)
		}
	}

	s.logger.Info("material status changed",
		"status", req.Status,
		"requested", len(req.MaterialIDs),
		"changed", len(changed),
	)

	return materials, nil
}

// RenderMaterial renders the material body as sanitized HTML
func (s *materialService) RenderMaterial(ctx context.Context, id string) (*librarySvc.RenderedMaterial, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.ToHTML(material.Body)
	if err != nil {
		return nil, fmt.Errorf("render material %s: %w", id, err)
	}

	return &librarySvc.RenderedMaterial{
		ID:    material.ID,
		Ref:   material.Ref,
		Title: material.Title,
		HTML:  html,
	}, nil
}

// validateParent checks that treeParent is the document root or a division of the document
func (s *materialService) validateParent(snap *Snapshot, treeParent string) error {
	if treeParent == snap.RootID() {
		return nil
	}
	node, ok := snap.Index.Node(treeParent)
	if !ok {
		return fmt.Errorf("%w: parent %s is not a material of document %s", domain.ErrValidation, treeParent, snap.Document.ID)
	}
	if node.MaterialType != models.MaterialTypeDivision {
		return fmt.Errorf("%w: articles cannot contain other materials", domain.ErrValidation)
	}
	return nil
}

// validateNoCircularMove ensures moving a material won't put it under itself
func (s *materialService) validateNoCircularMove(snap *Snapshot, id, newParent string) error {
	if id == newParent {
		return fmt.Errorf("%w: cannot move material to be its own parent", domain.ErrValidation)
	}
	for _, descendant := range snap.Index.DescendantIDs(id) {
		if descendant == newParent {
			return fmt.Errorf("%w: cannot move material to be a child of its own descendant", domain.ErrValidation)
		}
	}
	return nil
}

func (s *materialService) validateCreateRequest(req *librarySvc.CreateMaterialRequest) error {
	if req.Position != nil && *req.Position < 1 {
		return fmt.Errorf("position: must be no less than 1")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.DocumentID, validation.Required),
		validation.Field(&req.Ref, validation.Required, validation.Length(1, config.MaxRefLength)),
		validation.Field(&req.Title, validation.Length(0, config.MaxTitleLength)),
		validation.Field(&req.MaterialType, validation.Required, validation.In(models.MaterialTypeDivision, models.MaterialTypeArticle)),
		validation.Field(&req.Status, validation.By(func(value interface{}) error {
			if req.Status == "" {
				return nil
			}
			return validStatus(value)
		})),
		validation.Field(&req.Body, validation.Length(0, config.MaxBodyLength)),
		validation.Field(&req.BodyFormat, validation.In("markdown", "html", "text")),
	)
}

func (s *materialService) validateUpdateRequest(req *librarySvc.UpdateMaterialRequest) error {
	if req.Ref == nil && req.Title == nil && req.MaterialType == nil && req.Body == nil && req.ParentID == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Ref, validation.NilOrNotEmpty, validation.Length(1, config.MaxRefLength)),
		validation.Field(&req.Title, validation.Length(0, config.MaxTitleLength)),
		validation.Field(&req.MaterialType, validation.In(models.MaterialTypeDivision, models.MaterialTypeArticle)),
		validation.Field(&req.Body, validation.Length(0, config.MaxBodyLength)),
		validation.Field(&req.BodyFormat, validation.In("markdown", "html", "text")),
	)
}

// validStatus is an ozzo rule accepting only known statuses
func validStatus(value interface{}) error {
	status, _ := value.(models.Status)
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	return nil
}

// validStatusPtr accepts nil or a known status
func validStatusPtr(value interface{}) error {
	status, _ := value.(*models.Status)
	if status == nil {
		return nil
	}
	return validStatus(*status)
}
