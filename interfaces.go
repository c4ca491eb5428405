// Package chatfs contains the core domain types shared by the namespace,
// its persistence gateway and the store adapters.
package chatfs

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by [Store.Get] when nothing is stored under the key
var ErrKeyNotFound = errors.New("key not found")

// Store is a durable key-value slot holder. The namespace snapshot lives
// under a single key; implementations replace the whole value on Put.
type Store interface {
	// Get returns the value under key or an error wrapping ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error

	// Close releases connections or handles held by the store
	Close() error
}
