package library

import (
	"context"

	models "lexlib/internal/domain/models/library"
)

// SearchService searches material content
type SearchService interface {
	Search(ctx context.Context, opts *models.SearchOptions) (*models.SearchResults, error)
}
