package inmemory

import (
	"context"
	"sync"

	"github.com/botirk38/ranksim/types"
)

// MemoryStore implements NormStore with unbounded maps. Documents are
// listed in the order their norm was first written.
type MemoryStore struct {
	mu     *sync.RWMutex
	norms  map[string]map[string]byte
	order  map[string][]string
	fields []string
}

// NewMemoryStore creates a new memory store
func NewMemoryStore(config types.StoreConfig) (*MemoryStore, error) {
	return &MemoryStore{
		mu:    &sync.RWMutex{},
		norms: make(map[string]map[string]byte),
		order: make(map[string][]string),
	}, nil
}

// SetNorm stores a norm
func (s *MemoryStore) SetNorm(ctx context.Context, field, docID string, norm byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.norms[field]
	if !ok {
		docs = make(map[string]byte)
		s.norms[field] = docs
		s.fields = append(s.fields, field)
	}
	if _, exists := docs[docID]; !exists {
		s.order[field] = append(s.order[field], docID)
	}
	docs[docID] = norm
	return nil
}

// GetNorm retrieves a norm
func (s *MemoryStore) GetNorm(ctx context.Context, field, docID string) (byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	norm, ok := s.norms[field][docID]
	return norm, ok, nil
}

// GetNorms retrieves the norms of several documents
func (s *MemoryStore) GetNorms(ctx context.Context, field string, docIDs []string) (map[string]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]byte, len(docIDs))
	docs := s.norms[field]
	for _, id := range docIDs {
		if norm, ok := docs[id]; ok {
			result[id] = norm
		}
	}
	return result, nil
}

// DeleteNorm removes a norm
func (s *MemoryStore) DeleteNorm(ctx context.Context, field, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.norms[field]
	if !ok {
		return nil
	}
	if _, exists := docs[docID]; !exists {
		return nil
	}
	delete(docs, docID)

	order := s.order[field]
	for i, id := range order {
		if id == docID {
			s.order[field] = append(order[:i:i], order[i+1:]...)
			break
		}
	}

	if len(docs) == 0 {
		delete(s.norms, field)
		delete(s.order, field)
		for i, f := range s.fields {
			if f == field {
				s.fields = append(s.fields[:i:i], s.fields[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Docs returns the documents holding a norm for field
func (s *MemoryStore) Docs(ctx context.Context, field string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]string, len(s.order[field]))
	copy(docs, s.order[field])
	return docs, nil
}

// Fields returns the fields holding norms
func (s *MemoryStore) Fields(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields := make([]string, len(s.fields))
	copy(fields, s.fields)
	return fields, nil
}

// Flush clears all norms
func (s *MemoryStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.norms = make(map[string]map[string]byte)
	s.order = make(map[string][]string)
	s.fields = nil
	return nil
}

// Len returns the number of stored norms
func (s *MemoryStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, docs := range s.norms {
		n += len(docs)
	}
	return n, nil
}

// Close closes the memory store (no-op for in-memory)
func (s *MemoryStore) Close() error {
	return nil
}

// SetNormAsync stores a norm asynchronously
func (s *MemoryStore) SetNormAsync(ctx context.Context, field, docID string, norm byte) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		errCh <- s.SetNorm(ctx, field, docID, norm)
	}()
	return errCh
}
