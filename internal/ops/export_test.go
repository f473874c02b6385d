package ops

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tome/internal/errors"
)

func TestExportBookmarks_JSONL(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	bm := testManager(t, "spell:Light", "item:Rope")

	out, err := ExportBookmarks(ctx, bm, cfg, ExportInput{})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	require.False(t, out.Compressed)
	require.Equal(t, exportsDir(t, cfg), filepath.Dir(out.Path))
	require.True(t, strings.HasSuffix(out.Path, ".jsonl"))

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 3)

	var header ExportHeader
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	require.True(t, header.TomeExport)
	require.Equal(t, ExportSchemaVersion, header.SchemaVersion)
	require.Equal(t, 2, header.Count)

	var rec ExportRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	require.Equal(t, "item:Rope", rec.Key)
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, name := range []string{"bookmarks.jsonl", "bookmarks.jsonl.zst"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			cfg := testConfig(t)
			cat := testCatalog()
			path := filepath.Join(exportsDir(t, cfg), name)

			src := testManager(t, "spell:Light", "bestiary:Dire Wolf", "item:Gone")
			exp, err := ExportBookmarks(ctx, src, cfg, ExportInput{Path: path})
			require.NoError(t, err)
			require.Equal(t, strings.HasSuffix(name, ".zst"), exp.Compressed)

			dst := testManager(t, "item:Rope")
			imp, err := ImportBookmarks(ctx, cat, dst, cfg, ImportInput{Path: path, Mode: ImportModeReplace})
			require.NoError(t, err)
			require.Equal(t, 3, imp.Read)
			require.Equal(t, 1, imp.Dangling)
			require.Empty(t, imp.Errors)
			require.Equal(t, src.Snapshot().Keys(), dst.Snapshot().Keys())
		})
	}
}

func TestExport_CompressedDefaultPath(t *testing.T) {
	cfg := testConfig(t)
	out, err := ExportBookmarks(context.Background(), testManager(t, "a"), cfg, ExportInput{Compress: true})
	require.NoError(t, err)
	require.True(t, out.Compressed)
	require.True(t, strings.HasSuffix(out.Path, ExtJSONLZstd))

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	plain, err := decompress(data)
	require.NoError(t, err)
	require.Contains(t, string(plain), `"_tome_export":true`)
}

func TestExport_RejectsPathOutsideExports(t *testing.T) {
	cfg := testConfig(t)
	_, err := ExportBookmarks(context.Background(), testManager(t), cfg, ExportInput{
		Path: filepath.Join(t.TempDir(), "out.jsonl"),
	})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestImport_MergeWithBadLines(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	path := filepath.Join(exportsDir(t, cfg), "hand.jsonl")
	body := strings.Join([]string{
		`{"_tome_export":true,"schema_version":"1.0"}`,
		`{"key":"spell:Light"}`,
		`not json`,
		`{"key":"  "}`,
		``,
		`{"key":"spell:Light"}`,
		`{"key":"item:Rope"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	bm := testManager(t, "item:Rope")
	out, err := ImportBookmarks(ctx, testCatalog(), bm, cfg, ImportInput{Path: path})
	require.NoError(t, err)
	require.Equal(t, 2, out.Read)
	require.Equal(t, 1, out.Imported)
	require.Equal(t, 2, out.Skipped)
	require.Equal(t, 2, out.Total)
	require.Len(t, out.Errors, 2)
	require.Equal(t, 3, out.Errors[0].Line)
	require.Equal(t, "PARSE_ERROR", out.Errors[0].Code)
	require.Equal(t, "INVALID_RECORD", out.Errors[1].Code)
}

func TestImport_Errors(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	dir := exportsDir(t, cfg)
	cat := testCatalog()
	bm := testManager(t)

	_, err := ImportBookmarks(ctx, cat, bm, cfg, ImportInput{Path: filepath.Join(dir, "missing.jsonl")})
	require.True(t, errors.Is(err, errors.ErrFileNotFound))

	_, err = ImportBookmarks(ctx, cat, bm, cfg, ImportInput{Path: filepath.Join(dir, "x.jsonl"), Mode: "rename"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	future := filepath.Join(dir, "future.jsonl")
	require.NoError(t, os.WriteFile(future, []byte(`{"_tome_export":true,"schema_version":"9.0"}`+"\n"), 0600))
	_, err = ImportBookmarks(ctx, cat, bm, cfg, ImportInput{Path: future})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	badZst := filepath.Join(dir, "bad.jsonl.zst")
	require.NoError(t, os.WriteFile(badZst, []byte("plain text"), 0600))
	_, err = ImportBookmarks(ctx, cat, bm, cfg, ImportInput{Path: badZst})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestImport_FileTooLarge(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(exportsDir(t, cfg), "big.jsonl")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxImportBytes+1))
	require.NoError(t, f.Close())

	_, err = ImportBookmarks(context.Background(), testCatalog(), testManager(t), cfg, ImportInput{Path: path})
	require.True(t, errors.Is(err, errors.ErrFileTooLarge))
}
