package adapters

import (
	"github.com/brettbedarf/chatfs"
	"github.com/brettbedarf/chatfs/config"
)

type BuiltInAdapterType = string

const (
	MemoryAdapterType BuiltInAdapterType = "memory"
	FileAdapterType   BuiltInAdapterType = "file"
	RedisAdapterType  BuiltInAdapterType = "redis"
)

// RegisterBuiltins registers all built-in stores on the default registry
// or only the specific ones if keys are provided
func RegisterBuiltins(types ...BuiltInAdapterType) {
	defaultRegistry.RegisterBuiltins(types...)
}

// RegisterBuiltins registers all built-in stores on r, or only those named
func (r *Registry) RegisterBuiltins(types ...BuiltInAdapterType) {
	if len(types) == 0 {
		types = []BuiltInAdapterType{MemoryAdapterType, FileAdapterType, RedisAdapterType}
	}

	for _, key := range types {
		switch key {
		case MemoryAdapterType:
			r.Register(MemoryAdapterType, func(config.StoreOptions) (chatfs.Store, error) {
				return NewMemoryStore(), nil
			})
		case FileAdapterType:
			r.Register(FileAdapterType, func(opts config.StoreOptions) (chatfs.Store, error) {
				return NewFileStore(opts.Dir)
			})
		case RedisAdapterType:
			r.Register(RedisAdapterType, func(opts config.StoreOptions) (chatfs.Store, error) {
				return NewRedisStore(opts)
			})
		}
	}
}
