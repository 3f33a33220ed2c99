// Package redis stores admin table selections in Redis sets.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"lexlib/internal/domain/repositories"
)

const keyPrefix = "selection:"

// maxUpdateAttempts bounds optimistic retries when a concurrent write touches the key
const maxUpdateAttempts = 5

// SelectionStore implements repositories.SelectionRepository on Redis.
// Each selection is a set that expires ttl after its last write.
type SelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSelectionStore connects to redisURL and checks the connection
func NewSelectionStore(redisURL string, ttl time.Duration) (*SelectionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewSelectionStoreWithClient(client, ttl), nil
}

// NewSelectionStoreWithClient creates a store from an existing Redis client
func NewSelectionStoreWithClient(client *redis.Client, ttl time.Duration) *SelectionStore {
	return &SelectionStore{client: client, ttl: ttl}
}

var _ repositories.SelectionRepository = (*SelectionStore)(nil)

// key generates the Redis key for a selection scope
func (s *SelectionStore) key(k repositories.SelectionKey) string {
	return fmt.Sprintf("%s%s:%s:%s", keyPrefix, k.UserID, k.DocumentID, k.Status)
}

// Load returns the stored IDs in sorted order
func (s *SelectionStore) Load(ctx context.Context, k repositories.SelectionKey) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.key(k)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	sort.Strings(ids)
	return ids, nil
}

// Save replaces the stored set atomically and refreshes its expiry
func (s *SelectionStore) Save(ctx context.Context, k repositories.SelectionKey, ids []string) error {
	key := s.key(k)

	if len(ids) == 0 {
		return s.Clear(ctx, k)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SAdd(ctx, key, toMembers(ids)...)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save selection: %w", err)
	}

	return nil
}

// Update runs fn on the stored set inside a WATCH/MULTI transaction and retries
// when another client changed the key in between
func (s *SelectionStore) Update(ctx context.Context, k repositories.SelectionKey, fn repositories.SelectionUpdateFn) ([]string, error) {
	key := s.key(k)

	var next []string
	var fnErr error
	txf := func(tx *redis.Tx) error {
		stored, err := tx.SMembers(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		sort.Strings(stored)

		next, fnErr = fn(stored)
		if fnErr != nil {
			return fnErr
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(next) > 0 {
				pipe.SAdd(ctx, key, toMembers(next)...)
				pipe.Expire(ctx, key, s.ttl)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			out := append([]string{}, next...)
			sort.Strings(out)
			return out, nil
		case fnErr != nil:
			return nil, fnErr
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return nil, fmt.Errorf("update selection: %w", err)
		}
	}
	return nil, fmt.Errorf("update selection: %w", redis.TxFailedErr)
}

func toMembers(ids []string) []interface{} {
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	return members
}

// Clear removes the stored selection
func (s *SelectionStore) Clear(ctx context.Context, k repositories.SelectionKey) error {
	if err := s.client.Del(ctx, s.key(k)).Err(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (s *SelectionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *SelectionStore) Close() error {
	return s.client.Close()
}
