// Package ranksim scores documents with a pluggable vector-space
// similarity and keeps their length norms in a pluggable store.
package ranksim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/botirk38/ranksim/norms"
	"github.com/botirk38/ranksim/options"
	"github.com/botirk38/ranksim/similarity"
	"github.com/botirk38/ranksim/types"
)

// ErrMatchCount indicates a hit whose matches do not line up with the
// query terms.
var ErrMatchCount = errors.New("matches must align with query terms")

// Ranker wires a similarity to a norm store.
type Ranker struct {
	sim    similarity.Similarity
	store  types.NormStore
	writer *norms.Writer
	reader *norms.Reader
	logger *slog.Logger
	closed atomic.Bool
}

// QueryTerm is one clause of a flat disjunctive query. Text may be a
// single term or a phrase.
type QueryTerm struct {
	Field   string
	Text    string
	DocFreq int
	// Boost scales the term weight. Zero means 1.
	Boost float32
}

// Query is a flat disjunction of terms, scored against a collection of
// NumDocs documents.
type Query struct {
	Terms   []QueryTerm
	NumDocs int
}

// TermMatch describes how one query term matched a document.
type TermMatch struct {
	// Freq counts exact occurrences
	Freq float32
	// Distances holds the edit distance of each proximity match
	Distances []int
}

// Hit pairs a document with its matches, aligned with Query.Terms.
type Hit struct {
	DocID   string
	Matches []TermMatch
}

// TermExplanation breaks down one query term's contribution.
type TermExplanation struct {
	Field   string  `json:"field"`
	Text    string  `json:"text"`
	Matched bool    `json:"matched"`
	Freq    float32 `json:"freq"`
	IDF     float32 `json:"idf"`
	Weight  float32 `json:"weight"`
	TF      float32 `json:"tf"`
	Norm    float32 `json:"norm"`
	Score   float32 `json:"score"`
}

// Explanation is the score of one document with its breakdown.
type Explanation struct {
	DocID      string            `json:"doc_id"`
	Score      float32           `json:"score"`
	QueryNorm  float32           `json:"query_norm"`
	Coord      float32           `json:"coord"`
	Overlap    int               `json:"overlap"`
	MaxOverlap int               `json:"max_overlap"`
	Terms      []TermExplanation `json:"terms"`
}

// New creates a Ranker with functional options.
func New(opts ...options.Option) (*Ranker, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, errors.Join(err, release(cfg))
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(err, release(cfg))
	}

	return &Ranker{
		sim:    cfg.Similarity,
		store:  cfg.Store,
		writer: norms.NewWriter(cfg.Similarity, cfg.Counter, cfg.Store, cfg.Logger, cfg.Concurrency),
		reader: norms.NewReader(cfg.Similarity, cfg.Store),
		logger: cfg.Logger,
	}, nil
}

// release closes what earlier options built when construction fails.
func release(cfg *options.Config) error {
	var errs []error
	if cfg.Store != nil {
		errs = append(errs, cfg.Store.Close())
	}
	if cfg.Similarity != nil {
		errs = append(errs, cfg.Similarity.Close())
	}
	return errors.Join(errs...)
}

// Similarity returns the scoring strategy.
func (r *Ranker) Similarity() similarity.Similarity {
	return r.sim
}

// Index computes and stores the norms of doc.
func (r *Ranker) Index(ctx context.Context, doc norms.Document) error {
	return r.writer.Write(ctx, doc)
}

// IndexBatch computes and stores the norms of several documents.
func (r *Ranker) IndexBatch(ctx context.Context, docs []norms.Document) error {
	return r.writer.WriteBatch(ctx, docs)
}

// IndexAsync indexes doc asynchronously.
// Returns a channel that will receive an error or nil when complete.
func (r *Ranker) IndexAsync(ctx context.Context, doc norms.Document) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		errCh <- r.writer.Write(ctx, doc)
	}()
	return errCh
}

// Norm returns the decoded norm of a document field.
func (r *Ranker) Norm(ctx context.Context, field, docID string) (float32, error) {
	return r.reader.Norm(ctx, field, docID)
}

// Delete removes the norms of a document from the given fields. With no
// fields it removes the document from every field in the store.
func (r *Ranker) Delete(ctx context.Context, docID string, fields ...string) error {
	if len(fields) == 0 {
		all, err := r.store.Fields(ctx)
		if err != nil {
			return fmt.Errorf("list fields: %w", err)
		}
		fields = all
	}
	for _, field := range fields {
		if err := r.store.DeleteNorm(ctx, field, docID); err != nil {
			return err
		}
	}
	return nil
}

// queryWeights holds the per-term figures shared by every scored document.
type queryWeights struct {
	idf       []float32
	weight    []float32
	queryNorm float32
}

func (r *Ranker) weigh(q Query) queryWeights {
	w := queryWeights{
		idf:    make([]float32, len(q.Terms)),
		weight: make([]float32, len(q.Terms)),
	}

	var sumOfSquares float32
	for i, t := range q.Terms {
		boost := t.Boost
		if boost == 0 {
			boost = 1
		}
		w.idf[i] = r.sim.IDF(t.DocFreq, q.NumDocs)
		w.weight[i] = w.idf[i] * boost
		sumOfSquares += w.weight[i] * w.weight[i]
	}
	w.queryNorm = r.sim.QueryNorm(sumOfSquares)
	return w
}

// explain scores one hit. norm looks up the decoded norm of a field.
func (r *Ranker) explain(q Query, w queryWeights, hit Hit, norm func(field string) (float32, error)) (*Explanation, error) {
	if len(hit.Matches) != len(q.Terms) {
		return nil, fmt.Errorf("%w: %d terms, %d matches", ErrMatchCount, len(q.Terms), len(hit.Matches))
	}

	exp := &Explanation{
		DocID:      hit.DocID,
		QueryNorm:  w.queryNorm,
		MaxOverlap: len(q.Terms),
		Terms:      make([]TermExplanation, len(q.Terms)),
	}

	var sum float32
	for i, t := range q.Terms {
		m := hit.Matches[i]
		freq := m.Freq
		for _, d := range m.Distances {
			freq += r.sim.SloppyFreq(d)
		}

		te := TermExplanation{
			Field:  t.Field,
			Text:   t.Text,
			Freq:   freq,
			IDF:    w.idf[i],
			Weight: w.weight[i],
		}
		if freq > 0 {
			n, err := norm(t.Field)
			if err != nil {
				return nil, err
			}
			te.Matched = true
			te.TF = r.sim.TF(freq)
			te.Norm = n
			te.Score = te.TF * w.weight[i] * w.queryNorm * w.idf[i] * n
			sum += te.Score
			exp.Overlap++
		}
		exp.Terms[i] = te
	}

	exp.Coord = r.sim.Coord(exp.Overlap, exp.MaxOverlap)
	exp.Score = sum * exp.Coord
	return exp, nil
}

// Score computes the classic vector-space score of one document.
func (r *Ranker) Score(ctx context.Context, q Query, hit Hit) (*Explanation, error) {
	w := r.weigh(q)
	cache := make(map[string]float32)

	return r.explain(q, w, hit, func(field string) (float32, error) {
		if n, ok := cache[field]; ok {
			return n, nil
		}
		n, err := r.reader.Norm(ctx, field, hit.DocID)
		if err != nil {
			return 0, fmt.Errorf("read norm %s/%s: %w", field, hit.DocID, err)
		}
		cache[field] = n
		return n, nil
	})
}

// ScoreHits scores several documents against q, reading norms one field at
// a time. Explanations are returned in hit order.
func (r *Ranker) ScoreHits(ctx context.Context, q Query, hits []Hit) ([]*Explanation, error) {
	if len(hits) == 0 {
		return nil, nil
	}

	docIDs := make([]string, len(hits))
	for i, h := range hits {
		docIDs[i] = h.DocID
	}

	fieldNorms := make(map[string]map[string]float32)
	for _, t := range q.Terms {
		if _, ok := fieldNorms[t.Field]; ok {
			continue
		}
		n, err := r.reader.Norms(ctx, t.Field, docIDs)
		if err != nil {
			return nil, fmt.Errorf("read norms of %s: %w", t.Field, err)
		}
		fieldNorms[t.Field] = n
	}

	w := r.weigh(q)
	result := make([]*Explanation, len(hits))
	for i, hit := range hits {
		exp, err := r.explain(q, w, hit, func(field string) (float32, error) {
			return fieldNorms[field][hit.DocID], nil
		})
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", hit.DocID, err)
		}
		result[i] = exp
	}
	return result, nil
}

// ExportNorms writes a snapshot of one field's norms to w.
func (r *Ranker) ExportNorms(ctx context.Context, field string, w io.Writer) error {
	snap, err := norms.Export(ctx, r.store, field)
	if err != nil {
		return err
	}
	if err := norms.WriteSnapshot(w, snap); err != nil {
		return err
	}
	r.logger.Debug("norms exported", "field", field, "documents", len(snap.DocIDs))
	return nil
}

// ImportNorms restores a snapshot written by ExportNorms.
func (r *Ranker) ImportNorms(ctx context.Context, rd io.Reader) error {
	snap, err := norms.ReadSnapshot(rd)
	if err != nil {
		return err
	}
	if err := snap.Restore(ctx, r.store); err != nil {
		return err
	}
	r.logger.Debug("norms imported", "field", snap.Field, "documents", len(snap.DocIDs))
	return nil
}

// Close closes the norm store and releases the similarity. It must be
// called once; later calls return similarity.ErrClosed.
func (r *Ranker) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return similarity.ErrClosed
	}
	return errors.Join(r.store.Close(), r.sim.Close())
}
