package library

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	libraryRepo "lexlib/internal/domain/repositories/library"
	librarySvc "lexlib/internal/domain/services/library"
	"lexlib/internal/materialtree"
)

// Snapshot is a document's built material tree at one point in time.
// Snapshots are immutable once built; filtered views are derived lazily.
type Snapshot struct {
	Document *models.Document
	Forest   materialtree.Forest
	Index    *materialtree.Index

	mu       sync.Mutex
	filtered map[models.Status]filteredView
}

type filteredView struct {
	forest materialtree.Forest
	index  *materialtree.Index
}

// RootID is the parent ID the tree is built under: always the document ID
func (s *Snapshot) RootID() string {
	return s.Document.ID
}

// View returns the forest and index for a status, or the full tree when status is nil
func (s *Snapshot) View(status *models.Status) (materialtree.Forest, *materialtree.Index) {
	if status == nil {
		return s.Forest, s.Index
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.filtered[*status]; ok {
		return v.forest, v.index
	}
	forest := materialtree.FilterByStatus(s.Forest, *status)
	v := filteredView{forest: forest, index: materialtree.NewIndex(forest, s.RootID())}
	s.filtered[*status] = v
	return v.forest, v.index
}

// StorageParentID maps an in-tree parent ID to the value stored in materials.parent_id
func (s *Snapshot) StorageParentID(parentID string) string {
	if parentID == s.RootID() {
		return s.Document.StorageRootID()
	}
	return parentID
}

// TreeParentID maps a client-supplied parent reference to the in-tree parent ID.
// Both the document ID and its root material ID designate the top level.
func (s *Snapshot) TreeParentID(parentID string) string {
	if parentID == "" || s.Document.IsRootReference(parentID) {
		return s.RootID()
	}
	return parentID
}

// TreeCache memoizes built trees per document. Every material or document
// mutation must call Invalidate after it commits.
type TreeCache struct {
	docRepo      libraryRepo.DocumentRepository
	materialRepo libraryRepo.MaterialRepository
	logger       *slog.Logger

	mu      sync.RWMutex
	entries map[string]*Snapshot
	// generations counts invalidations per document; a build only caches its
	// result when no invalidation happened while it was reading
	generations map[string]uint64
}

// NewTreeCache creates an empty tree cache
func NewTreeCache(
	docRepo libraryRepo.DocumentRepository,
	materialRepo libraryRepo.MaterialRepository,
	logger *slog.Logger,
) *TreeCache {
	return &TreeCache{
		docRepo:      docRepo,
		materialRepo: materialRepo,
		logger:       logger,
		entries:      make(map[string]*Snapshot),
		generations:  make(map[string]uint64),
	}
}

// Load returns the cached snapshot of a document, building it on a miss
func (c *TreeCache) Load(ctx context.Context, documentID string) (*Snapshot, error) {
	c.mu.RLock()
	snap, ok := c.entries[documentID]
	gen := c.generations[documentID]
	c.mu.RUnlock()
	if ok {
		return snap, nil
	}

	snap, err := c.build(ctx, documentID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.generations[documentID] == gen {
		c.entries[documentID] = snap
	} else {
		c.logger.Debug("tree changed during build, not caching", "document_id", documentID)
	}
	c.mu.Unlock()

	return snap, nil
}

// Invalidate drops the cached snapshot of a document and discards any build
// still in flight for it
func (c *TreeCache) Invalidate(documentID string) {
	c.mu.Lock()
	delete(c.entries, documentID)
	c.generations[documentID]++
	c.mu.Unlock()
}

func (c *TreeCache) build(ctx context.Context, documentID string) (*Snapshot, error) {
	doc, err := c.docRepo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	materials, err := c.materialRepo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}

	forest := materialtree.Build(treeRows(doc, materials), doc.ID)

	c.logger.Debug("material tree built",
		"document_id", doc.ID,
		"materials", len(materials),
		"reachable", forest.Count(),
	)

	return &Snapshot{
		Document: doc,
		Forest:   forest,
		Index:    materialtree.NewIndex(forest, doc.ID),
		filtered: make(map[models.Status]filteredView),
	}, nil
}

// treeRows rewrites rows hanging under the root material so the tree is always
// rooted at the document ID. The root material row itself is not part of the tree.
func treeRows(doc *models.Document, materials []models.Material) []models.Material {
	root := doc.StorageRootID()
	if root == doc.ID {
		return materials
	}

	rows := make([]models.Material, 0, len(materials))
	for _, m := range materials {
		if m.ID == root {
			continue
		}
		if m.ParentID == root {
			m.ParentID = doc.ID
		}
		rows = append(rows, m)
	}
	return rows
}

// treeService implements the TreeService interface on top of the cache
type treeService struct {
	cache  *TreeCache
	logger *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(cache *TreeCache, logger *slog.Logger) librarySvc.TreeService {
	return &treeService{cache: cache, logger: logger}
}

// GetTree returns the material forest of a document, filtered when status is set
func (s *treeService) GetTree(ctx context.Context, documentID string, status *models.Status) (*librarySvc.TreeView, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *status)
	}

	snap, err := s.cache.Load(ctx, documentID)
	if err != nil {
		return nil, err
	}

	forest, _ := snap.View(status)
	if forest == nil {
		forest = materialtree.Forest{}
	}
	return &librarySvc.TreeView{
		DocumentID: documentID,
		Status:     status,
		Materials:  forest,
	}, nil
}

func (s *treeService) Invalidate(documentID string) {
	s.cache.Invalidate(documentID)
}
