package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/config"
)

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()

	db, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	dbPath := filepath.Join(tmpDir, "tome.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file not created at %s", dbPath)
	}

	exportsDir := filepath.Join(tmpDir, "exports")
	info, err := os.Stat(exportsDir)
	if os.IsNotExist(err) {
		t.Errorf("exports directory not created at %s", exportsDir)
	} else if !info.IsDir() {
		t.Errorf("exports path is not a directory")
	}

	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='bookmarks'").Scan(&name); err != nil {
		t.Fatalf("bookmarks table not found: %v", err)
	}
	if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_bookmarks_key'").Scan(&name); err != nil {
		t.Fatalf("idx_bookmarks_key not found: %v", err)
	}
}

func TestInit_CreatesDirectories(t *testing.T) {
	baseDir := filepath.Join(t.TempDir(), "nested", "path", ".tome")

	db, err := Init(baseDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(baseDir); os.IsNotExist(err) {
		t.Errorf("base directory not created at %s", baseDir)
	}
}

func TestInit_MigrationIdempotent(t *testing.T) {
	tmpDir := t.TempDir()

	db1, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("first Init() error = %v", err)
	}
	db1.Close()

	db2, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	defer db2.Close()

	version, err := GetUserVersion(db2)
	if err != nil {
		t.Fatalf("GetUserVersion() error = %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version after second Init = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestConfigurePool(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	ConfigurePool(db, nil)
	ConfigurePool(db, &config.Config{DBMaxOpenConns: 3})

	if got := db.Stats().MaxOpenConnections; got != 3 {
		t.Errorf("MaxOpenConnections = %d, want 3", got)
	}
}

func TestBookmarkStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	store := NewBookmarkStore(db)

	empty, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if empty.Len() != 0 {
		t.Fatalf("fresh store Len = %d, want 0", empty.Len())
	}

	if err := store.Save(ctx, bookmark.NewSet("spell:Light", "bestiary:Wolf")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Len() != 2 || !got.Has("spell:Light") || !got.Has("bestiary:Wolf") {
		t.Fatalf("Load() = %v", got.Keys())
	}
}

func TestBookmarkStore_SaveReconciles(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	store := NewBookmarkStore(db)
	if err := store.Save(ctx, bookmark.NewSet("a", "b")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	before, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	ids := map[string]string{}
	for _, r := range before {
		ids[r.Key] = r.ID
		if len(r.ID) != 26 {
			t.Errorf("row id %q is not a ULID", r.ID)
		}
	}

	if err := store.Save(ctx, bookmark.NewSet("b", "c")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	after, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(after) != 2 {
		t.Fatalf("List() len = %d, want 2", len(after))
	}
	for _, r := range after {
		switch r.Key {
		case "b":
			if r.ID != ids["b"] {
				t.Errorf("kept key b changed id %s -> %s", ids["b"], r.ID)
			}
		case "c":
		default:
			t.Errorf("unexpected key %q after reconcile", r.Key)
		}
	}
}

func TestBookmarkStore_SaveCancelled(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewBookmarkStore(db).Save(ctx, bookmark.NewSet("a")); err == nil {
		t.Fatal("Save() with cancelled context should fail")
	}
}
