package inmemory

import (
	"context"

	"github.com/botirk38/ranksim/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore implements NormStore with a bounded LRU cache. When full it
// evicts the least recently used norm, so it suits caching the norms of
// hot documents in front of a complete store.
type LRUStore struct {
	cache *lru.Cache[types.NormKey, byte]
}

// NewLRUStore creates a new LRU store holding up to config.Capacity norms
func NewLRUStore(config types.StoreConfig) (*LRUStore, error) {
	lruCache, err := lru.New[types.NormKey, byte](config.Capacity)
	if err != nil {
		return nil, err
	}

	return &LRUStore{
		cache: lruCache,
	}, nil
}

// SetNorm stores a norm in the LRU cache
func (s *LRUStore) SetNorm(ctx context.Context, field, docID string, norm byte) error {
	s.cache.Add(types.NormKey{Field: field, DocID: docID}, norm)
	return nil
}

// GetNorm retrieves a norm from the LRU cache
func (s *LRUStore) GetNorm(ctx context.Context, field, docID string) (byte, bool, error) {
	norm, ok := s.cache.Get(types.NormKey{Field: field, DocID: docID})
	return norm, ok, nil
}

// GetNorms retrieves the norms of several documents
func (s *LRUStore) GetNorms(ctx context.Context, field string, docIDs []string) (map[string]byte, error) {
	result := make(map[string]byte, len(docIDs))
	for _, id := range docIDs {
		if norm, ok := s.cache.Get(types.NormKey{Field: field, DocID: id}); ok {
			result[id] = norm
		}
	}
	return result, nil
}

// DeleteNorm removes a norm from the LRU cache
func (s *LRUStore) DeleteNorm(ctx context.Context, field, docID string) error {
	s.cache.Remove(types.NormKey{Field: field, DocID: docID})
	return nil
}

// Docs returns the documents holding a norm for field, oldest first
func (s *LRUStore) Docs(ctx context.Context, field string) ([]string, error) {
	var docs []string
	for _, key := range s.cache.Keys() {
		if key.Field == field {
			docs = append(docs, key.DocID)
		}
	}
	return docs, nil
}

// Fields returns the fields holding norms
func (s *LRUStore) Fields(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var fields []string
	for _, key := range s.cache.Keys() {
		if _, ok := seen[key.Field]; ok {
			continue
		}
		seen[key.Field] = struct{}{}
		fields = append(fields, key.Field)
	}
	return fields, nil
}

// Flush clears all norms from the LRU cache
func (s *LRUStore) Flush(ctx context.Context) error {
	s.cache.Purge()
	return nil
}

// Len returns the number of norms in the LRU cache
func (s *LRUStore) Len(ctx context.Context) (int, error) {
	return s.cache.Len(), nil
}

// Close closes the LRU store (no-op for in-memory)
func (s *LRUStore) Close() error {
	return nil
}

// SetNormAsync stores a norm asynchronously
func (s *LRUStore) SetNormAsync(ctx context.Context, field, docID string, norm byte) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		errCh <- s.SetNorm(ctx, field, docID, norm)
	}()
	return errCh
}
