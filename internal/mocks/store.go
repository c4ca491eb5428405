package mocks

import (
	"context"

	"github.com/brettbedarf/chatfs"
	"github.com/stretchr/testify/mock"
)

// MockStore implements chatfs.Store for testing across packages
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(context.Context, string) []byte); ok {
		return fn(ctx, key), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Put(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ chatfs.Store = (*MockStore)(nil)
