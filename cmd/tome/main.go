package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/logger"
	"github.com/hpungsan/tome/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// LogModeEnv overrides the configured log mode.
const LogModeEnv = "TOME_LOG_MODE"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"search": true, "show": true, "stats": true,
	"bookmark": true, "bookmarks": true,
	"export": true, "import": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _
  | |_ ___  _ __ ___   ___
  | __/ _ \| '_ ' _ \ / _ \
  | || (_) | | | | | |  __/
   \__\___/|_| |_| |_|\___|

  Tabletop rules reference

  Usage: tome <command> [options]
         tome serve          (web UI)
         tome --help

  MCP server mode requires piped input.`)
}

// app bundles what every command needs.
type app struct {
	cat *entry.Catalog
	bm  *bookmark.Manager
	cfg *config.Config
	log *logger.Logger
}

// setup loads config, logging, the catalog and the bookmark store rooted at
// baseDir. The returned cleanup closes the store and flushes the logger.
func setup(ctx context.Context, baseDir, workDir string) (*app, func(), error) {
	cfg, err := config.LoadWithRepo(baseDir, workDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.BaseDir = baseDir
	if mode := strings.TrimSpace(os.Getenv(LogModeEnv)); mode != "" {
		cfg.LogMode = mode
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	cat, err := loadCatalog(cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Sync()
		return nil, nil, err
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		log.Warn("unknown tools in disabled_tools", "tools", unknown)
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		log.Warn("unknown types in disabled_types", "types", unknown)
	}

	a := &app{
		cat: cat,
		bm:  bookmark.NewManager(ctx, store, log.With("component", "bookmarks")),
		cfg: cfg,
		log: log,
	}
	cleanup := func() {
		closeStore()
		log.Sync()
	}
	return a, cleanup, nil
}

// loadCatalog loads cfg.DataDir, or the bundled datasets when unset, and logs
// what the load dropped or found suspicious.
func loadCatalog(cfg *config.Config, log *logger.Logger) (*entry.Catalog, error) {
	var (
		cat    *entry.Catalog
		report *entry.LoadReport
		err    error
	)
	if cfg.DataDir != "" {
		cat, report, err = entry.LoadDir(cfg.DataDir)
	} else {
		cat, report, err = entry.LoadBundled()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}

	log.Debug("catalog loaded",
		"origin", report.Origin,
		"bestiary", report.Bestiary,
		"spells", report.Spells,
		"items", report.Items)
	for _, d := range report.Dropped {
		log.Warn("field dropped", "collection", d.Collection, "index", d.Index, "field", d.Field, "reason", d.Reason)
	}
	if report.Nameless > 0 {
		log.Warn("records without a name", "count", report.Nameless)
	}
	if len(report.Duplicates) > 0 {
		log.Warn("duplicate identity keys; lookups resolve to the first record", "keys", report.Duplicates)
	}
	return cat, nil
}

// openStore opens the configured bookmark backend.
func openStore(cfg *config.Config) (bookmark.Store, func(), error) {
	if cfg.BookmarkStore == config.BookmarkStoreFile {
		if err := db.EnsureDirs(cfg.BaseDir); err != nil {
			return nil, nil, err
		}
		return bookmark.NewFileStore(filepath.Join(cfg.BaseDir, "bookmarks.json")), func() {}, nil
	}

	database, err := db.Init(cfg.BaseDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	db.ConfigurePool(database, cfg)
	return db.NewBookmarkStore(database), func() { database.Close() }, nil
}

func main() {
	_ = godotenv.Load()

	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before loading anything
	if isHelpOrVersion() {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode() && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'tome --help' for usage.\n")
		os.Exit(1)
	}

	baseDir, err := config.DefaultBaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	workDir, _ := os.Getwd()

	ctx := context.Background()
	a, cleanup, err := setup(ctx, baseDir, workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if isCLIMode() {
		err = newCLIApp(a).RunContext(ctx, os.Args)
	} else {
		err = mcp.Run(a.cat, a.bm, a.cfg, a.log, Version)
	}
	cleanup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
