/*
Package persist implements the durable storage collaborator for the chat state.

State is kept as independent flat JSON collections (rooms, per-room message
lists, uploaded-file records) under a data directory. Callers save after every
mutating operation and load once at startup, so the files always reflect the
last completed mutation.
*/
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the load/save contract the in-memory components write through.
type Store interface {
	// Save serializes v as the named collection.
	Save(collection string, v any) error

	// Load deserializes the named collection into v. The boolean reports
	// whether the collection existed.
	Load(collection string, v any) (bool, error)
}

// FileStore persists each collection as <dir>/<collection>.json.
type FileStore struct {
	// mu serializes writes so concurrent flushes cannot interleave.
	mu sync.Mutex

	dir string
}

// NewFileStore creates the data directory if needed and returns a FileStore
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	return &FileStore{dir: dir}, nil
}

// Save writes the collection via a temporary file and rename, so a crash
// mid-write never leaves a truncated collection behind.
func (fs *FileStore) Save(collection string, v any) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	target := fs.path(collection)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}

	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace collection %s: %w", collection, err)
	}

	return nil
}

// Load reads the collection into v. A missing file is not an error; it simply
// reports that the collection does not exist yet.
func (fs *FileStore) Load(collection string, v any) (bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read collection %s: %w", collection, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode collection %s: %w", collection, err)
	}

	return true, nil
}

func (fs *FileStore) path(collection string) string {
	return filepath.Join(fs.dir, collection+".json")
}
