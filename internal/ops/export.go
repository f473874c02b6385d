package ops

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	json "github.com/goccy/go-json"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/errors"
)

// ExportSchemaVersion is written in every export header.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the ExportBookmarks operation.
type ExportInput struct {
	Path     string // optional, default: <exports>/bookmarks-<timestamp>.jsonl
	Compress bool   // default path only: use .jsonl.zst
}

// ExportOutput contains the result of the ExportBookmarks operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	Compressed bool   `json:"compressed"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportHeader is the first line of an export file.
type ExportHeader struct {
	TomeExport    bool   `json:"_tome_export"`
	SchemaVersion string `json:"schema_version"`
	ExportedAt    int64  `json:"exported_at"`
	Count         int    `json:"count"`
}

// ExportRecord is one bookmark line.
type ExportRecord struct {
	Key string `json:"key"`
}

// ExportBookmarks writes the bookmark set as JSONL: a header line, then one
// record per key in ascending order. Paths ending in .jsonl.zst are
// zstd-compressed. The file is written to a temp name and renamed into place,
// so an existing export survives a failed run.
func ExportBookmarks(ctx context.Context, bm *bookmark.Manager, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(cfg, now, input.Compress)
		if err != nil {
			return nil, err
		}
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	keys := bm.Snapshot().Keys()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	header := ExportHeader{
		TomeExport:    true,
		SchemaVersion: ExportSchemaVersion,
		ExportedAt:    now.Unix(),
		Count:         len(keys),
	}
	if err := enc.Encode(header); err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("export")
		}
		if err := enc.Encode(ExportRecord{Key: k}); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	data := buf.Bytes()
	compressed := isZstdPath(exportPath)
	if compressed {
		data = compress(data)
	}

	if err := writeFileAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		Path:       exportPath,
		Count:      len(keys),
		Compressed: compressed,
		ExportedAt: now.Unix(),
	}, nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Close before rename; Windows refuses to rename open files.
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// defaultExportPath returns <exports>/bookmarks-<timestamp>.jsonl[.zst].
func defaultExportPath(cfg *config.Config, now time.Time, compressed bool) (string, error) {
	dir, err := cfg.ExportsDir()
	if err != nil {
		return "", errors.NewInternal(err)
	}
	ext := ExtJSONL
	if compressed {
		ext = ExtJSONLZstd
	}
	name := fmt.Sprintf("bookmarks-%s%s", now.Format("2006-01-02T150405"), ext)
	return filepath.Join(dir, name), nil
}
