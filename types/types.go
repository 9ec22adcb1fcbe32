package types

import "context"

// NormStore defines the interface for persisting per-document norm bytes.
// Norms are keyed by field name and document id. This allows for pluggable
// storage systems including in-memory and Redis.
type NormStore interface {
	// SetNorm stores the encoded norm for a document field
	SetNorm(ctx context.Context, field, docID string, norm byte) error

	// GetNorm retrieves the encoded norm for a document field
	GetNorm(ctx context.Context, field, docID string) (byte, bool, error)

	// GetNorms retrieves the norms of several documents for one field.
	// Documents without a stored norm are absent from the result.
	GetNorms(ctx context.Context, field string, docIDs []string) (map[string]byte, error)

	// DeleteNorm removes the norm for a document field
	DeleteNorm(ctx context.Context, field, docID string) error

	// Docs returns the ids of all documents holding a norm for field
	Docs(ctx context.Context, field string) ([]string, error)

	// Fields returns all field names with at least one stored norm
	Fields(ctx context.Context) ([]string, error)

	// Flush clears all norms from the store
	Flush(ctx context.Context) error

	// Len returns the number of stored norms across all fields
	Len(ctx context.Context) (int, error)

	// Close closes the store and releases resources
	Close() error

	// SetNormAsync stores a norm asynchronously
	SetNormAsync(ctx context.Context, field, docID string, norm byte) <-chan error
}

// NormKey identifies a single stored norm.
type NormKey struct {
	Field string
	DocID string
}

// StoreConfig provides configuration options for norm stores
type StoreConfig struct {
	// For in-memory stores
	Capacity int

	// For Redis
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// Additional options
	Options map[string]any
}

// StoreType represents the type of norm store
type StoreType string

const (
	StoreMemory StoreType = "memory"
	StoreLRU    StoreType = "lru"
	StoreRedis  StoreType = "redis"
)

// TermCounter counts the indexed terms of a field's text. The count feeds
// the similarity's length normalization.
type TermCounter interface {
	CountTerms(text string) (int, error)
}

// CounterType represents the type of term counter
type CounterType string

const (
	CounterWhitespace CounterType = "whitespace"
	CounterTiktoken   CounterType = "tiktoken"
)

// SimilarityType represents a named scoring strategy variant
type SimilarityType string

const (
	SimilarityDefault    SimilarityType = "default"
	SimilarityExpression SimilarityType = "expression"
)
