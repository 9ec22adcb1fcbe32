// Package config loads Ranker settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/botirk38/ranksim/options"
	"github.com/botirk38/ranksim/similarity"
	"github.com/botirk38/ranksim/tokenizer"
	"github.com/botirk38/ranksim/types"
)

// ErrInvalidConfig indicates a configuration file with unusable values.
var ErrInvalidConfig = errors.New("invalid configuration")

// File is the on-disk configuration of a Ranker.
//
//	similarity:
//	  type: expression
//	  expressions:
//	    tf: "min(freq, 3.0)"
//	store:
//	  type: redis
//	  connection_string: redis://localhost:6379/0
//	  prefix: "search:"
//	tokenizer:
//	  type: tiktoken
//	  encoding: cl100k_base
//	concurrency: 8
type File struct {
	Similarity  SimilarityConfig `yaml:"similarity"`
	Store       StoreConfig      `yaml:"store"`
	Tokenizer   TokenizerConfig  `yaml:"tokenizer"`
	Concurrency int              `yaml:"concurrency"`
}

// SimilarityConfig selects the scoring strategy.
type SimilarityConfig struct {
	Type        types.SimilarityType   `yaml:"type"`
	Expressions similarity.Expressions `yaml:"expressions"`
}

// StoreConfig selects the norm store.
type StoreConfig struct {
	Type             types.StoreType `yaml:"type"`
	ConnectionString string          `yaml:"connection_string"`
	Username         string          `yaml:"username"`
	Password         string          `yaml:"password"`
	Database         int             `yaml:"database"`
	Capacity         int             `yaml:"capacity"`
	Prefix           string          `yaml:"prefix"`
}

// TokenizerConfig selects how field terms are counted.
type TokenizerConfig struct {
	Type     types.CounterType `yaml:"type"`
	Encoding string            `yaml:"encoding"`
}

// Default returns the configuration used when no file is given: the default
// similarity over an unbounded memory store.
func Default() *File {
	return &File{
		Similarity: SimilarityConfig{Type: types.SimilarityDefault},
		Store:      StoreConfig{Type: types.StoreMemory},
		Tokenizer:  TokenizerConfig{Type: types.CounterWhitespace},
	}
}

// Load reads a YAML configuration file. Unset sections keep the values of
// Default.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration.
func Parse(data []byte) (*File, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, when the Ranker
// is built.
func (f *File) Validate() error {
	if f.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}
	switch f.Store.Type {
	case types.StoreMemory, "":
	case types.StoreLRU:
		if f.Store.Capacity <= 0 {
			return fmt.Errorf("%w: lru store needs a positive capacity", ErrInvalidConfig)
		}
	case types.StoreRedis:
		if f.Store.ConnectionString == "" {
			return fmt.Errorf("%w: redis store needs a connection_string", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store type %q", ErrInvalidConfig, f.Store.Type)
	}
	return nil
}

// Options converts the file into Ranker options. logger, when not nil,
// is installed first so the similarity and store pick it up.
func (f *File) Options(logger *slog.Logger) []options.Option {
	var opts []options.Option
	if logger != nil {
		opts = append(opts, options.WithLogger(logger))
	}

	opts = append(opts, options.WithSimilarityType(f.Similarity.Type, f.Similarity.Expressions))

	storeType := f.Store.Type
	if storeType == "" {
		storeType = types.StoreMemory
	}
	storeCfg := types.StoreConfig{
		Capacity:         f.Store.Capacity,
		ConnectionString: f.Store.ConnectionString,
		Username:         f.Store.Username,
		Password:         f.Store.Password,
		Database:         f.Store.Database,
	}
	if f.Store.Prefix != "" {
		storeCfg.Options = map[string]any{"prefix": f.Store.Prefix}
	}
	opts = append(opts, options.WithStoreConfig(storeType, storeCfg))

	tok := f.Tokenizer
	opts = append(opts, func(cfg *options.Config) error {
		counter, err := tokenizer.NewCounter(tok.Type, tok.Encoding)
		if err != nil {
			return fmt.Errorf("tokenizer %q: %w", tok.Type, err)
		}
		cfg.Counter = counter
		return nil
	})

	if f.Concurrency > 0 {
		opts = append(opts, options.WithConcurrency(f.Concurrency))
	}
	return opts
}
