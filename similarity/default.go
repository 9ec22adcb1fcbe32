package similarity

import (
	"math"
	"sync/atomic"
)

// Default is the classic vector-space (TF-IDF) similarity.
//
// Inputs outside the expected statistics domain are not errors. They are
// handled as follows:
//   - LengthNorm with numTerms <= 0 returns 1 (no length discount).
//   - QueryNorm with a non-positive or NaN sum returns 1.
//   - TF with freq <= 0 or NaN returns 0.
//   - SloppyFreq treats a negative distance as 0.
//   - IDF treats a negative docFreq as 0 and numDocs < 1 as 1, and never
//     returns a negative weight.
//   - Coord returns 0 when maxOverlap <= 0 and clamps overlap into
//     [0, maxOverlap].
//
// Results are float32. IDF is computed in float64 but adjacent docFreq
// values round to the same float32 once numDocs reaches about 10^7, so it
// is only non-increasing, not strictly decreasing, for collections that
// large.
type Default struct {
	normTable [256]float32
	closed    atomic.Bool
}

// NewDefault creates the default similarity with its norm table populated.
func NewDefault() *Default {
	return &Default{normTable: newNormTable()}
}

// LengthNorm returns 1/sqrt(numTerms).
func (s *Default) LengthNorm(field string, numTerms int) float32 {
	return defaultLengthNorm(numTerms)
}

// QueryNorm returns 1/sqrt(sumOfSquaredWeights).
func (s *Default) QueryNorm(sumOfSquaredWeights float32) float32 {
	return defaultQueryNorm(float64(sumOfSquaredWeights))
}

// TF returns sqrt(freq).
func (s *Default) TF(freq float32) float32 {
	return defaultTF(float64(freq))
}

// SloppyFreq returns 1/(distance+1).
func (s *Default) SloppyFreq(distance int) float32 {
	return defaultSloppyFreq(distance)
}

// IDF returns ln(numDocs/(docFreq+1)) + 1.
func (s *Default) IDF(docFreq, numDocs int) float32 {
	return defaultIDF(docFreq, numDocs)
}

// Coord returns overlap/maxOverlap.
func (s *Default) Coord(overlap, maxOverlap int) float32 {
	return defaultCoord(overlap, maxOverlap)
}

// DecodeNorm looks b up in the norm table.
func (s *Default) DecodeNorm(b byte) float32 {
	return s.normTable[b]
}

// EncodeNorm quantizes f with the small-float codec.
func (s *Default) EncodeNorm(f float32) byte {
	return EncodeSmallFloat(f)
}

// NormTable returns a copy of the norm table.
func (s *Default) NormTable() [256]float32 {
	return s.normTable
}

// Close marks the similarity as released.
func (s *Default) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}

func defaultLengthNorm(numTerms int) float32 {
	if numTerms <= 0 {
		return 1
	}
	return float32(1 / math.Sqrt(float64(numTerms)))
}

func defaultQueryNorm(sum float64) float32 {
	if !(sum > 0) {
		return 1
	}
	return float32(1 / math.Sqrt(sum))
}

func defaultTF(freq float64) float32 {
	if !(freq > 0) {
		return 0
	}
	return float32(math.Sqrt(freq))
}

func defaultSloppyFreq(distance int) float32 {
	if distance < 0 {
		distance = 0
	}
	return float32(1 / (float64(distance) + 1))
}

func defaultIDF(docFreq, numDocs int) float32 {
	if docFreq < 0 {
		docFreq = 0
	}
	if numDocs < 1 {
		numDocs = 1
	}
	idf := math.Log(float64(numDocs)/float64(docFreq+1)) + 1
	if idf < 0 {
		return 0
	}
	return float32(idf)
}

func defaultCoord(overlap, maxOverlap int) float32 {
	if maxOverlap <= 0 {
		return 0
	}
	overlap = min(max(overlap, 0), maxOverlap)
	return float32(overlap) / float32(maxOverlap)
}
