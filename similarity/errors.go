package similarity

import "errors"

// Common similarity errors
var (
	// ErrClosed indicates the strategy was already closed
	ErrClosed = errors.New("similarity already closed")

	// ErrInvalidExpression indicates a scoring expression failed to compile
	// or does not produce a number
	ErrInvalidExpression = errors.New("invalid scoring expression")

	// ErrUnsupportedSimilarity indicates an unknown similarity type
	ErrUnsupportedSimilarity = errors.New("unsupported similarity type")
)
