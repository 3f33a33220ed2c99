package library

import (
	"fmt"
)

// Default search configuration values
const (
	DefaultSearchLimit    = 20
	DefaultSearchOffset   = 0
	MaxSearchLimit        = 100
	DefaultSearchLanguage = "simple" // Postgres text search config without stemming; documents are multilingual
)

// SearchOptions configures a material search
type SearchOptions struct {
	// Query is the search string (required)
	Query string

	// DocumentID optionally limits search to one document's materials
	DocumentID string

	// Pagination
	Limit  int
	Offset int

	// Language is the Postgres text search configuration used by the fallback searcher
	Language string

	// PublishedOnly restricts hits to materials of published documents.
	// Reader-facing searches always set it.
	PublishedOnly bool
}

// ApplyDefaults fills in default values for unset fields
func (opts *SearchOptions) ApplyDefaults() {
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}
	if opts.Offset < 0 {
		opts.Offset = DefaultSearchOffset
	}
	if opts.Language == "" {
		opts.Language = DefaultSearchLanguage
	}
}

// Validate checks that required fields are set and values are reasonable
func (opts *SearchOptions) Validate() error {
	if opts.Query == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	if opts.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if opts.Limit > MaxSearchLimit {
		return fmt.Errorf("limit cannot exceed %d (requested: %d)", MaxSearchLimit, opts.Limit)
	}
	if opts.Offset < 0 {
		return fmt.Errorf("offset cannot be negative")
	}
	return nil
}

// SearchResult is a single material hit
type SearchResult struct {
	MaterialID string  `json:"material_id"`
	DocumentID string  `json:"document_id"`
	Ref        string  `json:"ref"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// SearchResults contains the full search response with pagination metadata
type SearchResults struct {
	Results    []SearchResult `json:"results"`
	TotalCount int            `json:"total_count"`
	HasMore    bool           `json:"has_more"`
	Offset     int            `json:"offset"`
	Limit      int            `json:"limit"`
	Engine     string         `json:"engine"` // "meilisearch" or "postgres"
}

// NewSearchResults creates a SearchResults with calculated HasMore flag
func NewSearchResults(results []SearchResult, totalCount int, opts *SearchOptions, engine string) *SearchResults {
	if results == nil {
		results = []SearchResult{}
	}
	return &SearchResults{
		Results:    results,
		TotalCount: totalCount,
		HasMore:    (opts.Offset + len(results)) < totalCount,
		Offset:     opts.Offset,
		Limit:      opts.Limit,
		Engine:     engine,
	}
}
