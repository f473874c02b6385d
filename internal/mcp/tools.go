package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tome/internal/search"
)

var searchToolDef = mcp.NewTool("entry_search",
	mcp.WithDescription("Search the rules reference. The query mixes free text with key:value filters "+
		"(tier, level, lv, class, type, alignment, source). Results are sorted by name."),
	mcp.WithString("category",
		mcp.Description("Category to search (default: all)"),
		mcp.Enum(search.Categories...),
	),
	mcp.WithString("query",
		mcp.Description(`Search query, e.g. "fire tier:1" or "lv:4 wolf"`),
	),
	mcp.WithReadOnlyHintAnnotation(true),
)

var fetchToolDef = mcp.NewTool("entry_fetch",
	mcp.WithDescription("Fetch one entry by identity key (variant:name) or ID, with its markdown rendering."),
	mcp.WithString("key", mcp.Description(`Identity key, e.g. "spell:Light"`)),
	mcp.WithString("id", mcp.Description("16 hex character entry ID")),
	mcp.WithReadOnlyHintAnnotation(true),
)

var statsToolDef = mcp.NewTool("entry_stats",
	mcp.WithDescription("Count entries per category and report catalog anomalies."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var toggleToolDef = mcp.NewTool("bookmark_toggle",
	mcp.WithDescription("Toggle the bookmark on one entry. Returns the new state."),
	mcp.WithString("key", mcp.Description(`Identity key, e.g. "spell:Light"`)),
	mcp.WithString("id", mcp.Description("16 hex character entry ID")),
	mcp.WithIdempotentHintAnnotation(false),
)

var listBookmarksToolDef = mcp.NewTool("bookmark_list",
	mcp.WithDescription("List bookmarked entries sorted by name, plus bookmark keys no longer in the catalog."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var exportToolDef = mcp.NewTool("bookmark_export",
	mcp.WithDescription("Export bookmarks to a JSONL file (.jsonl, or .jsonl.zst for zstd). "+
		"Defaults to ~/.tome/exports/bookmarks-<timestamp>.jsonl."),
	mcp.WithString("path", mcp.Description("Output path ending in .jsonl or .jsonl.zst")),
	mcp.WithBoolean("compress", mcp.Description("Use .jsonl.zst for the default path")),
)

var importToolDef = mcp.NewTool("bookmark_import",
	mcp.WithDescription("Import bookmarks from a JSONL export."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .jsonl or .jsonl.zst export")),
	mcp.WithString("mode",
		mcp.Description("merge (default) adds to the current bookmarks; replace swaps them"),
		mcp.Enum("merge", "replace"),
	),
	mcp.WithDestructiveHintAnnotation(true),
)
