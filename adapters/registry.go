package adapters

import (
	"fmt"
	"sync"

	"github.com/brettbedarf/chatfs"
	"github.com/brettbedarf/chatfs/config"
)

// Factory builds a store from the user's store options
type Factory func(opts config.StoreOptions) (chatfs.Store, error)

// Registry maps store type names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register ties a factory to a store type. The first registration for a type
// wins so built-ins cannot be silently replaced.
func (r *Registry) Register(storeType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[storeType]; exists {
		return
	}
	r.factories[storeType] = factory
}

// GetFactory returns the factory registered for storeType
func (r *Registry) GetFactory(storeType string) (Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[storeType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no store registered for type %q", storeType)
	}
	return f, nil
}

// NewStore picks the factory for opts.Type and builds the store.
// All expected store types should be registered before calling this.
func (r *Registry) NewStore(opts config.StoreOptions) (chatfs.Store, error) {
	f, err := r.GetFactory(opts.Type)
	if err != nil {
		return nil, err
	}
	return f(opts)
}

var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry
func Register(storeType string, factory Factory) {
	defaultRegistry.Register(storeType, factory)
}

// NewStore builds a store from the default registry
func NewStore(opts config.StoreOptions) (chatfs.Store, error) {
	return defaultRegistry.NewStore(opts)
}
