package search

import (
	"context"
	"fmt"
	"log/slog"

	"lexlib/internal/domain"
	models "lexlib/internal/domain/models/library"
	libraryRepo "lexlib/internal/domain/repositories/library"
)

// Service is the facade that tries the external engine first and falls back to Postgres.
// It also pushes material changes to the engine, fire-and-forget.
type Service struct {
	engine   Engine // nil when Meilisearch is not configured
	fallback Searcher
	logger   *slog.Logger
}

// NewService creates a search service. engine may be nil.
func NewService(engine Engine, fallback Searcher, logger *slog.Logger) *Service {
	return &Service{engine: engine, fallback: fallback, logger: logger}
}

// Search validates the options, then tries the engine if healthy, otherwise Postgres
func (s *Service) Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if s.engineReady() {
		results, err := s.engine.Search(ctx, opts)
		if err == nil {
			return results, nil
		}
		s.logger.Warn("meilisearch error, falling back to postgres", "error", err)
	}

	results, err := s.fallback.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("search materials: %w", err)
	}
	return results, nil
}

func (s *Service) engineReady() bool {
	return s.engine != nil && s.engine.Healthy()
}

// IndexMaterials indexes materials of one document
func (s *Service) IndexMaterials(doc *models.Document, materials ...models.Material) {
	if !s.engineReady() || len(materials) == 0 {
		return
	}
	records := make([]MaterialRecord, len(materials))
	for i := range materials {
		records[i] = NewMaterialRecord(doc, &materials[i])
	}
	go func() {
		if err := s.engine.IndexMaterials(records); err != nil {
			s.logger.Error("index materials", "document_id", doc.ID, "count", len(records), "error", err)
		}
	}()
}

// DeleteMaterials removes materials from the index
func (s *Service) DeleteMaterials(ids ...string) {
	if !s.engineReady() || len(ids) == 0 {
		return
	}
	go func() {
		if err := s.engine.DeleteMaterials(ids); err != nil {
			s.logger.Error("delete materials from index", "count", len(ids), "error", err)
		}
	}()
}

// ReindexAll loads every document's materials from Postgres and pushes them to the engine.
// Called at startup when the engine is healthy.
func (s *Service) ReindexAll(ctx context.Context, documents libraryRepo.DocumentRepository, materials libraryRepo.MaterialRepository) error {
	if !s.engineReady() {
		return nil
	}

	docs, err := documents.List(ctx, models.DocumentFilter{})
	if err != nil {
		return fmt.Errorf("reindex: list documents: %w", err)
	}

	total := 0
	for i := range docs {
		list, err := materials.ListByDocument(ctx, docs[i].ID)
		if err != nil {
			return fmt.Errorf("reindex: list materials of %s: %w", docs[i].ID, err)
		}
		records := make([]MaterialRecord, len(list))
		for j := range list {
			records[j] = NewMaterialRecord(&docs[i], &list[j])
		}
		if err := s.engine.IndexMaterials(records); err != nil {
			return fmt.Errorf("reindex: index %s: %w", docs[i].ID, err)
		}
		total += len(records)
	}

	s.logger.Info("search index rebuilt", "documents", len(docs), "materials", total)
	return nil
}

// Resync rebuilds the engine's index from Postgres. Used when the engine comes
// back after an outage, during which index updates and deletions were dropped.
func (s *Service) Resync(ctx context.Context, documents libraryRepo.DocumentRepository, materials libraryRepo.MaterialRepository) error {
	if !s.engineReady() {
		return nil
	}
	if err := s.engine.ClearMaterials(ctx); err != nil {
		return fmt.Errorf("resync: clear index: %w", err)
	}
	return s.ReindexAll(ctx, documents, materials)
}
