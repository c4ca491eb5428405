package adapters

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/brettbedarf/chatfs"
)

// FileStore keeps one file per key under a directory. Writes go to a
// temporary file that is renamed over the old value.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) keyPath(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key))
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.keyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("file store %q: %w", key, chatfs.ErrKeyNotFound)
	}
	return data, err
}

func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(value); err != nil {
		tmp.Close() // nolint:errcheck
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.keyPath(key))
}

func (s *FileStore) Close() error {
	return nil
}

var _ chatfs.Store = (*FileStore)(nil)
