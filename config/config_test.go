package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/botirk38/ranksim/options"
	"github.com/botirk38/ranksim/similarity"
	"github.com/botirk38/ranksim/tokenizer"
	"github.com/botirk38/ranksim/types"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranksim.yaml")
	data := []byte(`
similarity:
  type: expression
  expressions:
    tf: "min(freq, 3.0)"
    coord: "1.0"
store:
  type: lru
  capacity: 128
tokenizer:
  type: whitespace
concurrency: 2
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Similarity.Type != types.SimilarityExpression {
		t.Errorf("Expected expression similarity, got %q", cfg.Similarity.Type)
	}
	if cfg.Similarity.Expressions.TF != "min(freq, 3.0)" {
		t.Errorf("Expected tf formula, got %q", cfg.Similarity.Expressions.TF)
	}
	if cfg.Store.Type != types.StoreLRU || cfg.Store.Capacity != 128 {
		t.Errorf("Expected lru store of 128, got %+v", cfg.Store)
	}
	if cfg.Concurrency != 2 {
		t.Errorf("Expected concurrency 2, got %d", cfg.Concurrency)
	}

	built := options.NewConfig()
	if err := built.Apply(cfg.Options(nil)...); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := built.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got := built.Similarity.TF(10); got != 3 {
		t.Errorf("Expected configured tf 3, got %f", got)
	}
	if built.Concurrency != 2 {
		t.Errorf("Expected concurrency 2, got %d", built.Concurrency)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("concurrency: 3\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Store.Type != types.StoreMemory {
		t.Errorf("Expected default memory store, got %q", cfg.Store.Type)
	}
	if cfg.Similarity.Type != types.SimilarityDefault {
		t.Errorf("Expected default similarity, got %q", cfg.Similarity.Type)
	}

	built := options.NewConfig()
	if err := built.Apply(cfg.Options(nil)...); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if _, ok := built.Similarity.(*similarity.Default); !ok {
		t.Errorf("Expected *similarity.Default, got %T", built.Similarity)
	}
	if _, ok := built.Counter.(*tokenizer.WhitespaceCounter); !ok {
		t.Errorf("Expected whitespace counter, got %T", built.Counter)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"Syntax":          "store: [",
		"NegativeWorkers": "concurrency: -1",
		"UnknownStore":    "store:\n  type: disk",
		"LRUNoCapacity":   "store:\n  type: lru",
		"RedisNoAddress":  "store:\n  type: redis",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Error("Expected parse error")
			}
		})
	}

	_, err := Parse([]byte("store:\n  type: disk"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestOptionsErrors(t *testing.T) {
	t.Run("UnknownTokenizer", func(t *testing.T) {
		cfg := Default()
		cfg.Tokenizer.Type = "sentencepiece"
		if err := options.NewConfig().Apply(cfg.Options(nil)...); !errors.Is(err, tokenizer.ErrUnsupportedCounter) {
			t.Errorf("Expected ErrUnsupportedCounter, got %v", err)
		}
	})

	t.Run("BadExpression", func(t *testing.T) {
		cfg := Default()
		cfg.Similarity.Type = types.SimilarityExpression
		cfg.Similarity.Expressions.IDF = "log("
		if err := options.NewConfig().Apply(cfg.Options(nil)...); !errors.Is(err, similarity.ErrInvalidExpression) {
			t.Errorf("Expected ErrInvalidExpression, got %v", err)
		}
	})
}
