package tokenizer

import (
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// DefaultEncoding is the BPE encoding used when none is configured.
const DefaultEncoding = string(tokenizer.Cl100kBase)

// TiktokenCounter counts BPE tokens using tiktoken. It suits indexes whose
// analyzer emits sub-word tokens.
// This is a local, fast operation that doesn't require an API call.
type TiktokenCounter struct {
	codec tokenizer.Codec
}

// NewTiktokenCounter creates a TiktokenCounter for the named encoding.
// An empty encoding uses DefaultEncoding.
func NewTiktokenCounter(encoding string) (*TiktokenCounter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	codec, err := tokenizer.Get(tokenizer.Encoding(encoding))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownEncoding, encoding, err)
	}
	return &TiktokenCounter{codec: codec}, nil
}

// CountTerms counts the tokens in text
func (c *TiktokenCounter) CountTerms(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}
	return len(ids), nil
}
