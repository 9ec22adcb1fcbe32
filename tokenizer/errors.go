package tokenizer

import "errors"

// Common tokenizer errors
var (
	// ErrUnknownEncoding indicates the BPE encoding is not available
	ErrUnknownEncoding = errors.New("unknown token encoding")

	// ErrTokenizerFailed indicates tokenization failed
	ErrTokenizerFailed = errors.New("tokenization failed")

	// ErrUnsupportedCounter indicates an unknown term counter type
	ErrUnsupportedCounter = errors.New("unsupported term counter type")
)
