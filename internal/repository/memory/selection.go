// Package memory holds process-local repository implementations used when
// no external store is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"lexlib/internal/domain/repositories"
)

type selectionEntry struct {
	ids       []string
	expiresAt time.Time
}

// SelectionStore keeps selections in a map. Entries expire ttl after their last write.
type SelectionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[repositories.SelectionKey]selectionEntry
}

// NewSelectionStore creates an empty in-memory store
func NewSelectionStore(ttl time.Duration) *SelectionStore {
	return &SelectionStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[repositories.SelectionKey]selectionEntry),
	}
}

var _ repositories.SelectionRepository = (*SelectionStore)(nil)

func (s *SelectionStore) Load(_ context.Context, key repositories.SelectionKey) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(key), nil
}

func (s *SelectionStore) Save(_ context.Context, key repositories.SelectionKey, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(key, ids)
	return nil
}

func (s *SelectionStore) Clear(_ context.Context, key repositories.SelectionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Update holds the store lock while fn runs
func (s *SelectionStore) Update(_ context.Context, key repositories.SelectionKey, fn repositories.SelectionUpdateFn) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := fn(s.load(key))
	if err != nil {
		return nil, err
	}
	s.save(key, ids)
	return s.load(key), nil
}

// load returns a copy of the live entry; callers hold mu
func (s *SelectionStore) load(key repositories.SelectionKey) []string {
	entry, ok := s.entries[key]
	if !ok {
		return []string{}
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return []string{}
	}
	return append([]string(nil), entry.ids...)
}

// save replaces the entry and refreshes its expiry; callers hold mu
func (s *SelectionStore) save(key repositories.SelectionKey, ids []string) {
	if len(ids) == 0 {
		delete(s.entries, key)
		return
	}

	stored := append([]string(nil), ids...)
	sort.Strings(stored)
	s.entries[key] = selectionEntry{ids: stored, expiresAt: s.now().Add(s.ttl)}
}
