package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// Bookmark store backends.
const (
	BookmarkStoreSQLite = "sqlite"
	BookmarkStoreFile   = "file"
)

// HomeEnv overrides the base directory (default ~/.tome).
const HomeEnv = "TOME_HOME"

// Config holds application configuration.
type Config struct {
	// BaseDir is the resolved tome home. It is set by the caller, not read from JSON.
	BaseDir string `json:"-"`

	// DataDir overrides the bundled datasets. It must contain one bestiary, spells
	// and items file each (.json, .yaml or .yml). Empty means use the bundled data.
	DataDir string `json:"data_dir,omitempty"`

	// BookmarkStore selects the bookmark persistence backend: "sqlite" (default)
	// or "file" (a single JSON payload in ~/.tome/bookmarks.json).
	BookmarkStore string `json:"bookmark_store,omitempty"`

	// LogMode is "development" (default) or "production".
	LogMode string `json:"log_mode,omitempty"`

	// AllowedPaths is an allowlist of directories for bookmark import/export.
	// Paths outside ~/.tome/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool types to disable entirely.
	// Known types: "entry", "bookmark".
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BookmarkStore: BookmarkStoreSQLite,
		LogMode:       "development",
	}
}

// DefaultBaseDir returns $TOME_HOME, or ~/.tome when unset.
func DefaultBaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return filepath.Abs(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tome"), nil
}

// ExportsDir returns BaseDir/exports, resolving BaseDir from the environment
// when it was not set.
func (c *Config) ExportsDir() (string, error) {
	base := ""
	if c != nil {
		base = c.BaseDir
	}
	if base == "" {
		var err error
		if base, err = DefaultBaseDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(base, "exports"), nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.BookmarkStore {
	case "", BookmarkStoreSQLite, BookmarkStoreFile:
	default:
		return fmt.Errorf("bookmark_store must be %q or %q, got %q", BookmarkStoreSQLite, BookmarkStoreFile, c.BookmarkStore)
	}
	switch strings.ToLower(c.LogMode) {
	case "", "development", "dev", "production", "prod":
	default:
		return fmt.Errorf("log_mode must be \"development\" or \"production\", got %q", c.LogMode)
	}
	return nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tome.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.tome) and repo (.tome) directories.
// Repo config is found by walking upward from startDir to find the nearest .tome/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .tome/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".tome", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.BaseDir = firstNonEmpty(overlay.BaseDir, base.BaseDir)
	result.DataDir = firstNonEmpty(overlay.DataDir, base.DataDir)
	result.BookmarkStore = firstNonEmpty(overlay.BookmarkStore, base.BookmarkStore)
	result.LogMode = firstNonEmpty(overlay.LogMode, base.LogMode)

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstNonEmpty(a, b string) string {
	if s := strings.TrimSpace(a); s != "" {
		return s
	}
	return strings.TrimSpace(b)
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
