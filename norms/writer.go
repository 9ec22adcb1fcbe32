// Package norms computes, stores and reads per-document length norms.
//
// The writer turns field lengths into norm bytes through a similarity's
// LengthNorm and EncodeNorm; the reader maps stored bytes back through the
// similarity's decode table.
package norms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/botirk38/ranksim/similarity"
	"github.com/botirk38/ranksim/types"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds WriteBatch when no concurrency is configured.
const DefaultConcurrency = 4

// Field is one indexed field of a document.
type Field struct {
	// Name identifies the field
	Name string
	// Text is counted with the term counter when NumTerms is zero
	Text string
	// NumTerms is the number of indexed terms, if already known
	NumTerms int
	// Boost scales the length norm. Zero means 1.
	Boost float32
	// OmitNorms stores no norm for the field; reads see 1.0
	OmitNorms bool
}

// Document is the unit written to the norm store.
type Document struct {
	ID     string
	Fields []Field
}

// Writer computes norms and writes them to a store.
type Writer struct {
	sim         similarity.Similarity
	counter     types.TermCounter
	store       types.NormStore
	logger      *slog.Logger
	concurrency int
}

// NewWriter creates a Writer. A concurrency below 1 uses
// DefaultConcurrency and a nil logger uses slog.Default().
func NewWriter(sim similarity.Similarity, counter types.TermCounter, store types.NormStore, logger *slog.Logger, concurrency int) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Writer{
		sim:         sim,
		counter:     counter,
		store:       store,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Norm computes the encoded norm of a field without storing it.
func (w *Writer) Norm(f Field) (byte, error) {
	if f.Name == "" {
		return 0, ErrEmptyField
	}
	if f.Boost < 0 {
		return 0, fmt.Errorf("%w: field %s", ErrNegativeBoost, f.Name)
	}

	numTerms := f.NumTerms
	if numTerms == 0 && f.Text != "" {
		n, err := w.counter.CountTerms(f.Text)
		if err != nil {
			return 0, fmt.Errorf("count terms of field %s: %w", f.Name, err)
		}
		numTerms = n
	}

	boost := f.Boost
	if boost == 0 {
		boost = 1
	}
	return w.sim.EncodeNorm(boost * w.sim.LengthNorm(f.Name, numTerms)), nil
}

// Write stores the norms of every field of doc. All norms are computed
// before any is stored, so invalid fields leave the store untouched.
func (w *Writer) Write(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return ErrEmptyDocID
	}

	encoded := make([]byte, len(doc.Fields))
	for i, f := range doc.Fields {
		if f.OmitNorms {
			continue
		}
		norm, err := w.Norm(f)
		if err != nil {
			return fmt.Errorf("document %s: %w", doc.ID, err)
		}
		encoded[i] = norm
	}

	for i, f := range doc.Fields {
		if f.OmitNorms {
			if err := w.store.DeleteNorm(ctx, f.Name, doc.ID); err != nil {
				return err
			}
			continue
		}
		if err := w.store.SetNorm(ctx, f.Name, doc.ID, encoded[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteBatch writes several documents concurrently. It stops at the first
// failure and returns it.
func (w *Writer) WriteBatch(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(w.concurrency)

	for _, doc := range docs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return w.Write(egCtx, doc)
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	w.logger.Debug("norm batch written", "documents", len(docs))
	return nil
}
