// Package similarity provides the relevance-scoring strategies used when
// ranking documents against a query.
//
// A Similarity turns raw statistics (term frequencies, document frequencies,
// field lengths, query overlap) into the numeric factors combined by a
// vector-space scorer. It also owns the one-byte encoding under which
// per-document length norms are persisted.
package similarity

// Similarity is a scoring strategy. Implementations are immutable after
// construction and safe for concurrent use; none of the scoring methods
// blocks or fails.
type Similarity interface {
	// LengthNorm returns the normalization factor for a field holding
	// numTerms terms. The result must be encodable by EncodeNorm.
	LengthNorm(field string, numTerms int) float32

	// QueryNorm returns the normalization factor for a query, given the
	// sum of its squared term weights.
	QueryNorm(sumOfSquaredWeights float32) float32

	// TF returns the score contribution of a raw term frequency.
	TF(freq float32) float32

	// SloppyFreq returns the frequency credit of a proximity match whose
	// positions are distance edits away from the query's.
	SloppyFreq(distance int) float32

	// IDF returns the inverse document frequency weight of a term found in
	// docFreq of numDocs documents.
	IDF(docFreq, numDocs int) float32

	// Coord returns the fraction-of-query-matched factor.
	Coord(overlap, maxOverlap int) float32

	// DecodeNorm maps a persisted norm byte back to a float.
	DecodeNorm(b byte) float32

	// EncodeNorm quantizes a norm into a byte, rounding down.
	EncodeNorm(f float32) byte

	// NormTable returns the decoded value of every norm byte.
	NormTable() [256]float32

	// Close releases the strategy. It must be called exactly once, after
	// all scoring calls have returned; later calls return ErrClosed.
	Close() error
}
