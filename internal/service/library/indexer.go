package library

import (
	models "lexlib/internal/domain/models/library"
)

// SearchIndexer receives material changes after they commit. Implementations
// must not block the request.
type SearchIndexer interface {
	IndexMaterials(doc *models.Document, materials ...models.Material)
	DeleteMaterials(ids ...string)
}

// NopIndexer discards index updates
type NopIndexer struct{}

func (NopIndexer) IndexMaterials(*models.Document, ...models.Material) {}
func (NopIndexer) DeleteMaterials(...string)                           {}
