package tokenizer

import "github.com/botirk38/ranksim/types"

// NewCounter creates a term counter of the specified type. The encoding
// only applies to tiktoken counters.
func NewCounter(counterType types.CounterType, encoding string) (types.TermCounter, error) {
	switch counterType {
	case types.CounterWhitespace, "":
		return NewWhitespaceCounter(), nil
	case types.CounterTiktoken:
		return NewTiktokenCounter(encoding)
	default:
		return nil, ErrUnsupportedCounter
	}
}
