package backends

import (
	"errors"

	"github.com/botirk38/ranksim/backends/inmemory"
	"github.com/botirk38/ranksim/backends/remote"
	"github.com/botirk38/ranksim/types"
)

var ErrUnsupportedStore = errors.New("unsupported store type")

// StoreFactory creates norm stores based on type and configuration
type StoreFactory struct{}

// NewStore creates a new norm store of the specified type
func (f *StoreFactory) NewStore(storeType types.StoreType, config types.StoreConfig) (types.NormStore, error) {
	switch storeType {
	case types.StoreMemory:
		return NewMemoryStore(config)
	case types.StoreLRU:
		return NewLRUStore(config)
	case types.StoreRedis:
		return NewRedisStore(config)
	default:
		return nil, ErrUnsupportedStore
	}
}

// NewMemoryStore creates a new unbounded in-memory store
func NewMemoryStore(config types.StoreConfig) (types.NormStore, error) {
	return inmemory.NewMemoryStore(config)
}

// NewLRUStore creates a new LRU store
func NewLRUStore(config types.StoreConfig) (types.NormStore, error) {
	return inmemory.NewLRUStore(config)
}

// NewRedisStore creates a new Redis store
func NewRedisStore(config types.StoreConfig) (types.NormStore, error) {
	return remote.NewRedisStore(config)
}
