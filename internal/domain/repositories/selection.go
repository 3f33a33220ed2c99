package repositories

import (
	"context"

	"lexlib/internal/domain/models/library"
)

// SelectionKey scopes a stored selection to one admin view
type SelectionKey struct {
	UserID     string
	DocumentID string
	Status     library.Status
}

// SelectionRepository persists the admin table selection between requests
type SelectionRepository interface {
	// Load returns the stored IDs, or an empty slice when nothing is stored
	Load(ctx context.Context, key SelectionKey) ([]string, error)

	// Save replaces the stored IDs. An empty list clears the entry.
	Save(ctx context.Context, key SelectionKey, ids []string) error

	// Clear removes the stored selection
	Clear(ctx context.Context, key SelectionKey) error

	// Update replaces the stored IDs with fn's result as one atomic step, so
	// concurrent updates of the same key are not lost. fn may run more than once.
	// An error from fn aborts the update.
	Update(ctx context.Context, key SelectionKey, fn SelectionUpdateFn) ([]string, error)
}

// SelectionUpdateFn derives the new selection from the stored one
type SelectionUpdateFn func(stored []string) ([]string, error)
