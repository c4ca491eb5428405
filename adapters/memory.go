package adapters

import (
	"context"
	"fmt"
	"slices"

	"github.com/brettbedarf/chatfs"
	"github.com/puzpuzpuz/xsync/v4"
)

// MemoryStore keeps values in process memory. Useful for tests and
// throwaway sessions; nothing survives a restart.
type MemoryStore struct {
	values *xsync.Map[string, []byte]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: xsync.NewMap[string, []byte]()}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.values.Load(key)
	if !ok {
		return nil, fmt.Errorf("memory store %q: %w", key, chatfs.ErrKeyNotFound)
	}
	return slices.Clone(v), nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	m.values.Store(key, slices.Clone(value))
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

var _ chatfs.Store = (*MemoryStore)(nil)
