package ops

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
)

// MaxImportBytes bounds both the file on disk and its decompressed size.
const MaxImportBytes = 10 << 20

// ImportMode controls how imported keys combine with the current set.
type ImportMode string

const (
	ImportModeMerge   ImportMode = "merge"   // add to the current set
	ImportModeReplace ImportMode = "replace" // the file becomes the set
)

// ImportInput contains parameters for the ImportBookmarks operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: merge
}

// ImportOutput contains the result of the ImportBookmarks operation.
type ImportOutput struct {
	Read     int           `json:"read"`
	Imported int           `json:"imported"`
	Dangling int           `json:"dangling"`
	Skipped  int           `json:"skipped"`
	Total    int           `json:"total"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that could not be imported.
type ImportError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// importLine covers both header and record lines.
type importLine struct {
	TomeExport    bool   `json:"_tome_export"`
	SchemaVersion string `json:"schema_version"`
	Key           string `json:"key"`
}

// ImportBookmarks reads an export file and merges it into, or replaces, the
// bookmark set. Bad lines are reported and skipped. Keys with no entry in
// cat are still imported and counted as dangling.
func ImportBookmarks(ctx context.Context, cat *entry.Catalog, bm *bookmark.Manager, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeMerge
	}
	if input.Mode != ImportModeMerge && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: merge, replace")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	data, err := readImportFile(input.Path)
	if err != nil {
		return nil, err
	}

	keys, lineErrors, err := parseExport(ctx, data)
	if err != nil {
		return nil, err
	}

	out := &ImportOutput{
		Read:    len(keys),
		Skipped: len(lineErrors),
		Errors:  lineErrors,
	}
	for _, k := range keys {
		if _, ok := cat.ByKey(k); !ok {
			out.Dangling++
		}
	}

	switch input.Mode {
	case ImportModeReplace:
		if err := bm.Replace(ctx, keys); err != nil {
			return nil, err
		}
		out.Imported = bm.Len()
	default:
		added, err := bm.Merge(ctx, keys)
		if err != nil {
			return nil, err
		}
		out.Imported = added
	}
	out.Total = bm.Len()
	return out, nil
}

func readImportFile(path string) ([]byte, error) {
	file, err := openNoFollow(path, 0, 0)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if info.Size() > MaxImportBytes {
		return nil, errors.NewFileTooLarge(MaxImportBytes, info.Size())
	}

	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if isZstdPath(path) {
		data, err = decompress(data)
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid compressed export: %v", err))
		}
		if len(data) > MaxImportBytes {
			return nil, errors.NewFileTooLarge(MaxImportBytes, int64(len(data)))
		}
	}
	return data, nil
}

// parseExport returns record keys in file order, deduplicated, plus per-line
// errors. An unsupported header schema version fails the whole import.
func parseExport(ctx context.Context, data []byte) ([]string, []ImportError, error) {
	var (
		keys   []string
		errs   []ImportError
		seen   = make(map[string]bool)
		lineNo = 0
	)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), MaxImportBytes)
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.NewCancelled("import")
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var rec importLine
		if err := json.Unmarshal(line, &rec); err != nil {
			errs = append(errs, ImportError{Line: lineNo, Code: "PARSE_ERROR", Message: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if rec.TomeExport {
			if rec.SchemaVersion != "" && rec.SchemaVersion != ExportSchemaVersion {
				return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported export schema_version %q", rec.SchemaVersion))
			}
			continue
		}

		key := strings.TrimSpace(rec.Key)
		if key == "" {
			errs = append(errs, ImportError{Line: lineNo, Code: "INVALID_RECORD", Message: "missing key field"})
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, ImportError{Line: lineNo, Code: "READ_ERROR", Message: fmt.Sprintf("failed to read file: %v", err)})
	}

	if errs == nil {
		errs = []ImportError{}
	}
	return keys, errs, nil
}
