// Package options provides functional options for configuring Ranker instances.
package options

import (
	"errors"
	"log/slog"

	"github.com/botirk38/ranksim/backends"
	"github.com/botirk38/ranksim/norms"
	"github.com/botirk38/ranksim/similarity"
	"github.com/botirk38/ranksim/tokenizer"
	"github.com/botirk38/ranksim/types"
)

// Option represents a configuration option for Ranker
type Option func(*Config) error

// Config holds the configuration for building a Ranker
type Config struct {
	Similarity  similarity.Similarity
	Store       types.NormStore
	Counter     types.TermCounter
	Logger      *slog.Logger
	Concurrency int
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Similarity:  similarity.NewDefault(),
		Counter:     tokenizer.NewWhitespaceCounter(),
		Logger:      slog.Default(),
		Concurrency: norms.DefaultConcurrency,
	}
}

// Apply applies all the given options to the config
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store == nil {
		return errors.New("norm store is required - use WithMemoryStore, WithLRUStore, WithRedisStore, etc.")
	}
	if c.Similarity == nil {
		return errors.New("similarity is required")
	}
	if c.Counter == nil {
		return errors.New("term counter is required")
	}
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be positive")
	}
	return nil
}

// WithMemoryStore sets up an unbounded in-memory norm store
func WithMemoryStore() Option {
	return func(cfg *Config) error {
		store, err := backends.NewMemoryStore(types.StoreConfig{})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithLRUStore sets up a bounded LRU in-memory norm store
func WithLRUStore(capacity int) Option {
	return func(cfg *Config) error {
		store, err := backends.NewLRUStore(types.StoreConfig{
			Capacity: capacity,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithRedisStore sets up a Redis norm store
func WithRedisStore(addr string, db int) Option {
	return func(cfg *Config) error {
		store, err := backends.NewRedisStore(types.StoreConfig{
			ConnectionString: addr,
			Database:         db,
		})
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithStoreConfig sets up a norm store of any supported type
func WithStoreConfig(storeType types.StoreType, config types.StoreConfig) Option {
	return func(cfg *Config) error {
		factory := &backends.StoreFactory{}
		store, err := factory.NewStore(storeType, config)
		if err != nil {
			return err
		}
		cfg.Store = store
		return nil
	}
}

// WithCustomStore allows using a pre-configured norm store
func WithCustomStore(store types.NormStore) Option {
	return func(cfg *Config) error {
		if store == nil {
			return errors.New("store cannot be nil")
		}
		cfg.Store = store
		return nil
	}
}

// WithSimilarity sets the scoring strategy. The Ranker takes ownership and
// releases it on Close.
func WithSimilarity(sim similarity.Similarity) Option {
	return func(cfg *Config) error {
		if sim == nil {
			return errors.New("similarity cannot be nil")
		}
		cfg.Similarity = sim
		return nil
	}
}

// WithExpressionSimilarity sets a CEL expression similarity. Options are
// applied in order, so WithLogger must come first for the similarity to
// use it.
func WithExpressionSimilarity(exprs similarity.Expressions) Option {
	return func(cfg *Config) error {
		sim, err := similarity.NewExpression(exprs, cfg.Logger)
		if err != nil {
			return err
		}
		cfg.Similarity = sim
		return nil
	}
}

// WithSimilarityType sets a similarity by name
func WithSimilarityType(simType types.SimilarityType, exprs similarity.Expressions) Option {
	return func(cfg *Config) error {
		factory := &similarity.Factory{Expressions: exprs, Logger: cfg.Logger}
		sim, err := factory.New(simType)
		if err != nil {
			return err
		}
		cfg.Similarity = sim
		return nil
	}
}

// WithTermCounter sets a custom term counter
func WithTermCounter(counter types.TermCounter) Option {
	return func(cfg *Config) error {
		if counter == nil {
			return errors.New("term counter cannot be nil")
		}
		cfg.Counter = counter
		return nil
	}
}

// WithTiktokenCounter counts field terms as BPE tokens
func WithTiktokenCounter(encoding string) Option {
	return func(cfg *Config) error {
		counter, err := tokenizer.NewTiktokenCounter(encoding)
		if err != nil {
			return err
		}
		cfg.Counter = counter
		return nil
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.Logger = logger
		return nil
	}
}

// WithConcurrency bounds the number of documents indexed in parallel
func WithConcurrency(n int) Option {
	return func(cfg *Config) error {
		if n < 1 {
			return errors.New("concurrency must be positive")
		}
		cfg.Concurrency = n
		return nil
	}
}
