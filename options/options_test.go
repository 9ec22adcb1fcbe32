package options

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/botirk38/ranksim/similarity"
	"github.com/botirk38/ranksim/tokenizer"
	"github.com/botirk38/ranksim/types"
)

// Mock counter for testing
type mockCounter struct{}

func (m *mockCounter) CountTerms(text string) (int, error) {
	return 1, nil
}

func TestConfigCreation(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		cfg := NewConfig()
		if _, ok := cfg.Similarity.(*similarity.Default); !ok {
			t.Errorf("Expected default similarity, got %T", cfg.Similarity)
		}
		if _, ok := cfg.Counter.(*tokenizer.WhitespaceCounter); !ok {
			t.Errorf("Expected whitespace counter, got %T", cfg.Counter)
		}
		if cfg.Store != nil {
			t.Error("Expected store to be nil initially")
		}
		if cfg.Logger == nil {
			t.Error("Expected default logger")
		}
	})

	t.Run("Validation", func(t *testing.T) {
		cfg := NewConfig()

		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error for missing store")
		}

		if err := cfg.Apply(WithMemoryStore()); err != nil {
			t.Fatalf("Failed to apply store option: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Expected validation to pass, got: %v", err)
		}

		cfg.Concurrency = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Expected validation error for zero concurrency")
		}
	})
}

func TestStoreOptions(t *testing.T) {
	t.Run("MemoryStore", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithMemoryStore()); err != nil {
			t.Fatalf("Failed to set memory store: %v", err)
		}
		if cfg.Store == nil {
			t.Error("Expected store to be set")
		}
	})

	t.Run("LRUStore", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithLRUStore(100)); err != nil {
			t.Fatalf("Failed to set LRU store: %v", err)
		}
		if cfg.Store == nil {
			t.Error("Expected store to be set")
		}
		if err := NewConfig().Apply(WithLRUStore(0)); err == nil {
			t.Error("Expected error for zero capacity")
		}
	})

	t.Run("StoreConfig", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithStoreConfig(types.StoreLRU, types.StoreConfig{Capacity: 5})); err != nil {
			t.Fatalf("Failed to set store from config: %v", err)
		}
		if cfg.Store == nil {
			t.Error("Expected store to be set")
		}
		if err := NewConfig().Apply(WithStoreConfig("cassandra", types.StoreConfig{})); err == nil {
			t.Error("Expected error for unsupported store type")
		}
	})

	t.Run("CustomStore", func(t *testing.T) {
		cfg := NewConfig()
		store := &mockStore{}
		if err := cfg.Apply(WithCustomStore(store)); err != nil {
			t.Fatalf("Failed to set custom store: %v", err)
		}
		if cfg.Store != store {
			t.Error("Expected custom store to be set")
		}
	})

	t.Run("NilStore", func(t *testing.T) {
		if err := NewConfig().Apply(WithCustomStore(nil)); err == nil {
			t.Error("Expected error for nil store")
		}
	})
}

func TestSimilarityOptions(t *testing.T) {
	t.Run("CustomSimilarity", func(t *testing.T) {
		cfg := NewConfig()
		sim := similarity.NewDefault()
		if err := cfg.Apply(WithSimilarity(sim)); err != nil {
			t.Fatalf("Failed to set similarity: %v", err)
		}
		if cfg.Similarity != sim {
			t.Error("Expected custom similarity to be set")
		}
	})

	t.Run("NilSimilarity", func(t *testing.T) {
		if err := NewConfig().Apply(WithSimilarity(nil)); err == nil {
			t.Error("Expected error for nil similarity")
		}
	})

	t.Run("ExpressionSimilarity", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.Apply(
			WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			WithExpressionSimilarity(similarity.Expressions{TF: "freq"}),
		)
		if err != nil {
			t.Fatalf("Failed to set expression similarity: %v", err)
		}
		if got := cfg.Similarity.TF(3); got != 3 {
			t.Errorf("Expected tf 3, got %f", got)
		}
	})

	t.Run("InvalidExpression", func(t *testing.T) {
		err := NewConfig().Apply(WithExpressionSimilarity(similarity.Expressions{TF: "freq +"}))
		if !errors.Is(err, similarity.ErrInvalidExpression) {
			t.Errorf("Expected ErrInvalidExpression, got %v", err)
		}
	})

	t.Run("SimilarityType", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithSimilarityType(types.SimilarityDefault, similarity.Expressions{})); err != nil {
			t.Fatalf("Failed to set similarity type: %v", err)
		}
		if err := NewConfig().Apply(WithSimilarityType("bm25", similarity.Expressions{})); !errors.Is(err, similarity.ErrUnsupportedSimilarity) {
			t.Errorf("Expected ErrUnsupportedSimilarity, got %v", err)
		}
	})
}

func TestOtherOptions(t *testing.T) {
	t.Run("TermCounter", func(t *testing.T) {
		cfg := NewConfig()
		counter := &mockCounter{}
		if err := cfg.Apply(WithTermCounter(counter)); err != nil {
			t.Fatalf("Failed to set counter: %v", err)
		}
		if cfg.Counter != counter {
			t.Error("Expected custom counter to be set")
		}
		if err := NewConfig().Apply(WithTermCounter(nil)); err == nil {
			t.Error("Expected error for nil counter")
		}
	})

	t.Run("TiktokenCounter", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithTiktokenCounter("")); err != nil {
			t.Fatalf("Failed to set tiktoken counter: %v", err)
		}
		if _, ok := cfg.Counter.(*tokenizer.TiktokenCounter); !ok {
			t.Errorf("Expected tiktoken counter, got %T", cfg.Counter)
		}
	})

	t.Run("Logger", func(t *testing.T) {
		if err := NewConfig().Apply(WithLogger(nil)); err == nil {
			t.Error("Expected error for nil logger")
		}
	})

	t.Run("Concurrency", func(t *testing.T) {
		cfg := NewConfig()
		if err := cfg.Apply(WithConcurrency(16)); err != nil {
			t.Fatalf("Failed to set concurrency: %v", err)
		}
		if cfg.Concurrency != 16 {
			t.Errorf("Expected 16, got %d", cfg.Concurrency)
		}
		if err := NewConfig().Apply(WithConcurrency(0)); err == nil {
			t.Error("Expected error for zero concurrency")
		}
	})
}

// Mock store for testing
type mockStore struct{}

func (m *mockStore) SetNorm(ctx context.Context, field, docID string, norm byte) error {
	return nil
}

func (m *mockStore) GetNorm(ctx context.Context, field, docID string) (byte, bool, error) {
	return 0, false, nil
}

func (m *mockStore) GetNorms(ctx context.Context, field string, docIDs []string) (map[string]byte, error) {
	return map[string]byte{}, nil
}

func (m *mockStore) DeleteNorm(ctx context.Context, field, docID string) error {
	return nil
}

func (m *mockStore) Docs(ctx context.Context, field string) ([]string, error) {
	return nil, nil
}

func (m *mockStore) Fields(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *mockStore) Flush(ctx context.Context) error {
	return nil
}

func (m *mockStore) Len(ctx context.Context) (int, error) {
	return 0, nil
}

func (m *mockStore) Close() error {
	return nil
}

func (m *mockStore) SetNormAsync(ctx context.Context, field, docID string, norm byte) <-chan error {
	errCh := make(chan error, 1)
	errCh <- nil
	close(errCh)
	return errCh
}
