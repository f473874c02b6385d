package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/errors"
)

// testConfig roots the exports directory in a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	if err := os.MkdirAll(filepath.Join(cfg.BaseDir, "exports"), 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	return cfg
}

func exportsDir(t *testing.T, cfg *config.Config) string {
	t.Helper()
	dir, err := cfg.ExportsDir()
	if err != nil {
		t.Fatalf("ExportsDir() error = %v", err)
	}
	return dir
}

func TestValidatePath_TraversalRejected(t *testing.T) {
	cfg := testConfig(t)

	for _, path := range []string{
		"../backup.jsonl",
		"../../etc/backup.jsonl",
		"/tmp/../etc/backup.jsonl",
	} {
		t.Run(path, func(t *testing.T) {
			err := ValidatePath(path, PathCheckWrite, cfg)
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_Extension(t *testing.T) {
	cfg := testConfig(t)
	dir := exportsDir(t, cfg)

	tests := []struct {
		name string
		file string
		ok   bool
	}{
		{"jsonl", "b.jsonl", true},
		{"jsonl zstd", "b.jsonl.zst", true},
		{"upper case", "B.JSONL", true},
		{"no extension", "backup", false},
		{"json", "backup.json", false},
		{"bare zst", "backup.zst", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePath(filepath.Join(dir, tc.file), PathCheckWrite, cfg)
			if tc.ok && err != nil {
				t.Errorf("expected success, got: %v", err)
			}
			if !tc.ok && !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got: %v", err)
			}
		})
	}
}

func TestValidatePath_DirectoryRestriction(t *testing.T) {
	cfg := testConfig(t)

	err := ValidatePath(filepath.Join(t.TempDir(), "backup.jsonl"), PathCheckWrite, cfg)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got: %v", err)
	}

	nested := filepath.Join(exportsDir(t, cfg), "sub", "backup.jsonl")
	if err := ValidatePath(nested, PathCheckWrite, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("nested path: expected ErrInvalidRequest, got: %v", err)
	}
}

func TestValidatePath_AllowedPathsAndUnsafe(t *testing.T) {
	cfg := testConfig(t)
	other := t.TempDir()
	target := filepath.Join(other, "b.jsonl")

	if err := ValidatePath(target, PathCheckWrite, cfg); err == nil {
		t.Fatal("expected rejection outside allowed dirs")
	}

	cfg.AllowedPaths = []string{other, "relative/ignored"}
	if err := ValidatePath(target, PathCheckWrite, cfg); err != nil {
		t.Errorf("AllowedPaths: expected success, got: %v", err)
	}

	cfg.AllowedPaths = nil
	cfg.AllowUnsafePaths = true
	if err := ValidatePath(target, PathCheckWrite, cfg); err != nil {
		t.Errorf("AllowUnsafePaths: expected success, got: %v", err)
	}
}

func TestValidatePath_FileNotFound_ReadMode(t *testing.T) {
	cfg := testConfig(t)

	err := ValidatePath(filepath.Join(exportsDir(t, cfg), "missing.jsonl"), PathCheckRead, cfg)
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got: %v", err)
	}
}

func TestValidatePath_SymlinkRejected_EvenWithUnsafePaths(t *testing.T) {
	cfg := testConfig(t)
	cfg.AllowUnsafePaths = true
	dir := t.TempDir()

	target := filepath.Join(dir, "target.jsonl")
	if err := os.WriteFile(target, []byte("{}"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	link := filepath.Join(dir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	for _, mode := range []PathCheckMode{PathCheckRead, PathCheckWrite} {
		if err := ValidatePath(link, mode, cfg); !errors.Is(err, errors.ErrInvalidRequest) {
			t.Errorf("mode %d: expected ErrInvalidRequest, got: %v", mode, err)
		}
	}
}

func TestContainsTraversal(t *testing.T) {
	tests := []struct {
		path     string
		contains bool
	}{
		{"/home/user/file.jsonl", false},
		{"../file.jsonl", true},
		{"/home/../etc/passwd", true},
		{"./file.jsonl", false},
		{"file..name.jsonl", false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := containsTraversal(tc.path); got != tc.contains {
				t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.contains)
			}
		})
	}
}
