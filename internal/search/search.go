// Package search indexes material content in Meilisearch and falls back to
// PostgreSQL full-text search when Meilisearch is not configured or unhealthy.
package search

import (
	"context"

	models "lexlib/internal/domain/models/library"
)

// Engine names reported in SearchResults.Engine
const (
	EngineMeilisearch = "meilisearch"
	EnginePostgres    = "postgres"
)

// Searcher can execute a material search
type Searcher interface {
	Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error)
}

// Engine is an external index that may come and go
type Engine interface {
	Searcher
	Healthy() bool
	IndexMaterials(records []MaterialRecord) error
	DeleteMaterials(ids []string) error
	// ClearMaterials empties the index before a full rebuild
	ClearMaterials(ctx context.Context) error
}

// MaterialRecord is the data we index for a material
type MaterialRecord struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Ref        string `json:"ref"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Status     string `json:"status"`
	Published  bool   `json:"published"`
}

// NewMaterialRecord builds the index record of a material within its document
func NewMaterialRecord(doc *models.Document, m *models.Material) MaterialRecord {
	return MaterialRecord{
		ID:         m.ID,
		DocumentID: m.DocumentID,
		Ref:        m.Ref,
		Title:      m.Title,
		Body:       m.Body,
		Status:     string(m.Status),
		Published:  doc.Published,
	}
}
