package inmemory

import (
	"context"
	"slices"
	"testing"

	"github.com/botirk38/ranksim/types"
)

func newStores(t *testing.T) map[string]types.NormStore {
	t.Helper()

	mem, err := NewMemoryStore(types.StoreConfig{})
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}
	lruStore, err := NewLRUStore(types.StoreConfig{Capacity: 100})
	if err != nil {
		t.Fatalf("Failed to create LRU store: %v", err)
	}
	return map[string]types.NormStore{
		"Memory": mem,
		"LRU":    lruStore,
	}
}

func TestStoreBasicOperations(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { _ = store.Close() }()

			if err := store.SetNorm(ctx, "body", "doc1", 124); err != nil {
				t.Fatalf("SetNorm failed: %v", err)
			}
			if err := store.SetNorm(ctx, "body", "doc2", 100); err != nil {
				t.Fatalf("SetNorm failed: %v", err)
			}
			if err := store.SetNorm(ctx, "title", "doc1", 120); err != nil {
				t.Fatalf("SetNorm failed: %v", err)
			}

			norm, found, err := store.GetNorm(ctx, "body", "doc1")
			if err != nil {
				t.Fatalf("GetNorm failed: %v", err)
			}
			if !found || norm != 124 {
				t.Errorf("Expected norm 124, got %d (found=%v)", norm, found)
			}

			_, found, err = store.GetNorm(ctx, "title", "doc2")
			if err != nil {
				t.Fatalf("GetNorm failed: %v", err)
			}
			if found {
				t.Error("Expected no norm for title/doc2")
			}

			// Overwrite keeps a single entry
			if err := store.SetNorm(ctx, "body", "doc1", 90); err != nil {
				t.Fatalf("SetNorm failed: %v", err)
			}
			norm, _, _ = store.GetNorm(ctx, "body", "doc1")
			if norm != 90 {
				t.Errorf("Expected overwritten norm 90, got %d", norm)
			}

			n, err := store.Len(ctx)
			if err != nil {
				t.Fatalf("Len failed: %v", err)
			}
			if n != 3 {
				t.Errorf("Expected 3 norms, got %d", n)
			}

			norms, err := store.GetNorms(ctx, "body", []string{"doc1", "doc2", "missing"})
			if err != nil {
				t.Fatalf("GetNorms failed: %v", err)
			}
			if len(norms) != 2 || norms["doc1"] != 90 || norms["doc2"] != 100 {
				t.Errorf("Unexpected batch result: %v", norms)
			}

			docs, err := store.Docs(ctx, "body")
			if err != nil {
				t.Fatalf("Docs failed: %v", err)
			}
			slices.Sort(docs)
			if !slices.Equal(docs, []string{"doc1", "doc2"}) {
				t.Errorf("Expected [doc1 doc2], got %v", docs)
			}

			fields, err := store.Fields(ctx)
			if err != nil {
				t.Fatalf("Fields failed: %v", err)
			}
			slices.Sort(fields)
			if !slices.Equal(fields, []string{"body", "title"}) {
				t.Errorf("Expected [body title], got %v", fields)
			}

			if err := store.DeleteNorm(ctx, "title", "doc1"); err != nil {
				t.Fatalf("DeleteNorm failed: %v", err)
			}
			fields, _ = store.Fields(ctx)
			if slices.Contains(fields, "title") {
				t.Errorf("Expected title to disappear after its last norm was deleted, got %v", fields)
			}

			errCh := store.SetNormAsync(ctx, "title", "doc3", 7)
			if err := <-errCh; err != nil {
				t.Fatalf("SetNormAsync failed: %v", err)
			}
			norm, found, _ = store.GetNorm(ctx, "title", "doc3")
			if !found || norm != 7 {
				t.Errorf("Expected async norm 7, got %d (found=%v)", norm, found)
			}

			if err := store.Flush(ctx); err != nil {
				t.Fatalf("Flush failed: %v", err)
			}
			n, _ = store.Len(ctx)
			if n != 0 {
				t.Errorf("Expected empty store after flush, got %d", n)
			}
		})
	}
}

func TestMemoryStoreOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := NewMemoryStore(types.StoreConfig{})

	for _, id := range []string{"c", "a", "b"} {
		_ = store.SetNorm(ctx, "body", id, 1)
	}
	_ = store.SetNorm(ctx, "body", "a", 2)
	_ = store.DeleteNorm(ctx, "body", "c")

	docs, _ := store.Docs(ctx, "body")
	if !slices.Equal(docs, []string{"a", "b"}) {
		t.Errorf("Expected insertion order [a b], got %v", docs)
	}
}

func TestLRUStoreEviction(t *testing.T) {
	ctx := context.Background()
	store, err := NewLRUStore(types.StoreConfig{Capacity: 2})
	if err != nil {
		t.Fatalf("Failed to create LRU store: %v", err)
	}

	_ = store.SetNorm(ctx, "body", "doc1", 1)
	_ = store.SetNorm(ctx, "body", "doc2", 2)

	// Touch doc1 so doc2 becomes least recently used
	if _, found, _ := store.GetNorm(ctx, "body", "doc1"); !found {
		t.Fatal("Expected doc1 to be present")
	}

	_ = store.SetNorm(ctx, "body", "doc3", 3)

	if _, found, _ := store.GetNorm(ctx, "body", "doc2"); found {
		t.Error("Expected doc2 to be evicted")
	}
	if _, found, _ := store.GetNorm(ctx, "body", "doc1"); !found {
		t.Error("Expected doc1 to survive eviction")
	}
	if n, _ := store.Len(ctx); n != 2 {
		t.Errorf("Expected 2 norms, got %d", n)
	}
}

func TestLRUStoreInvalidCapacity(t *testing.T) {
	if _, err := NewLRUStore(types.StoreConfig{Capacity: 0}); err == nil {
		t.Error("Expected error for zero capacity")
	}
}
