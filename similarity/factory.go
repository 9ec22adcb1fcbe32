package similarity

import (
	"log/slog"

	"github.com/botirk38/ranksim/types"
)

// Factory creates similarities based on type and configuration
type Factory struct {
	// Expressions configures the expression similarity
	Expressions Expressions
	// Logger is handed to similarities that log
	Logger *slog.Logger
}

// New creates a new similarity of the specified type. The empty type
// selects the default similarity.
func (f *Factory) New(simType types.SimilarityType) (Similarity, error) {
	switch simType {
	case types.SimilarityDefault, "":
		return NewDefault(), nil
	case types.SimilarityExpression:
		return NewExpression(f.Expressions, f.Logger)
	default:
		return nil, ErrUnsupportedSimilarity
	}
}
