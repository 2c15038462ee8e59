package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// localStore keeps blobs as plain files in one flat directory. Keys are
// server-generated names, so no path components ever come from clients.
type localStore struct {
	dir string
}

func newLocalStore(dir string) (*localStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &localStore{dir: dir}, nil
}

func (l *localStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

func (l *localStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(filepath.Join(l.dir, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

// URL returns the path the router serves the upload directory under.
func (l *localStore) URL(key string) string {
	return "/uploads/" + key
}
