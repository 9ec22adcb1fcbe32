package norms

import (
	"context"

	"github.com/botirk38/ranksim/similarity"
	"github.com/botirk38/ranksim/types"
)

// missingNorm is the factor of a field without a stored norm.
const missingNorm = 1.0

// Reader decodes stored norms.
type Reader struct {
	sim   similarity.Similarity
	store types.NormStore
}

// NewReader creates a Reader
func NewReader(sim similarity.Similarity, store types.NormStore) *Reader {
	return &Reader{sim: sim, store: store}
}

// Norm returns the decoded norm of a document field. Fields indexed
// without norms, or never indexed, read as 1.
func (r *Reader) Norm(ctx context.Context, field, docID string) (float32, error) {
	b, found, err := r.store.GetNorm(ctx, field, docID)
	if err != nil {
		return 0, err
	}
	if !found {
		return missingNorm, nil
	}
	return r.sim.DecodeNorm(b), nil
}

// Norms returns the decoded norms of several documents for one field.
// Every requested document appears in the result.
func (r *Reader) Norms(ctx context.Context, field string, docIDs []string) (map[string]float32, error) {
	stored, err := r.store.GetNorms(ctx, field, docIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]float32, len(docIDs))
	for _, id := range docIDs {
		if b, ok := stored[id]; ok {
			result[id] = r.sim.DecodeNorm(b)
		} else {
			result[id] = missingNorm
		}
	}
	return result, nil
}
