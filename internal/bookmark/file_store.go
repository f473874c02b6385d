package bookmark

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// FileStore keeps the set as a single JSON array payload in one file.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the payload. A missing file is an empty set; a payload that is
// not a JSON array of strings is an error.
func (f *FileStore) Load(ctx context.Context) (Set, error) {
	if err := ctx.Err(); err != nil {
		return Set{}, err
	}
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewSet(), nil
	}
	if err != nil {
		return Set{}, fmt.Errorf("read bookmarks: %w", err)
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return Set{}, fmt.Errorf("corrupt bookmarks payload %s: %w", f.Path, err)
	}
	return NewSet(keys...), nil
}

// Save writes the payload to a temp file and renames it into place.
func (f *FileStore) Save(ctx context.Context, s Set) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(s.Keys())
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create bookmarks dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".bookmarks-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write bookmarks: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close bookmarks: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename bookmarks: %w", err)
	}
	return nil
}
