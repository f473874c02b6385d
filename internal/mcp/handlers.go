package mcp

import (
	"context"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/logger"
	"github.com/hpungsan/tome/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cat *entry.Catalog
	bm  *bookmark.Manager
	cfg *config.Config
	log *logger.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(cat *entry.Catalog, bm *bookmark.Manager, cfg *config.Config, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.Nop()
	}
	return &Handlers{cat: cat, bm: bm, cfg: cfg, log: log}
}

// Request types for each tool

// SearchRequest represents the arguments for entry_search.
type SearchRequest struct {
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
}

// AddressRequest represents the arguments for entry_fetch and bookmark_toggle.
type AddressRequest struct {
	Key string `json:"key,omitempty"`
	ID  string `json:"id,omitempty"`
}

// ExportRequest represents the arguments for bookmark_export.
type ExportRequest struct {
	Path     string `json:"path,omitempty"`
	Compress bool   `json:"compress,omitempty"`
}

// ImportRequest represents the arguments for bookmark_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// HandleSearch handles the entry_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Search(h.cat, h.bm, ops.SearchInput{
		Category: input.Category,
		Query:    input.Query,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the entry_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Fetch(h.cat, h.bm, ops.FetchInput{Key: input.Key, ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStats handles the entry_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.Stats(h.cat, h.bm))
}

// HandleToggle handles the bookmark_toggle tool call.
func (h *Handlers) HandleToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ToggleBookmark(ctx, h.cat, h.bm, ops.ToggleInput{Key: input.Key, ID: input.ID})
	if err != nil {
		return h.failed("bookmark_toggle", err), nil
	}

	return successResult(result)
}

// HandleListBookmarks handles the bookmark_list tool call.
func (h *Handlers) HandleListBookmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(ops.ListBookmarks(h.cat, h.bm))
}

// HandleExport handles the bookmark_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ExportBookmarks(ctx, h.bm, h.cfg, ops.ExportInput{
		Path:     input.Path,
		Compress: input.Compress,
	})
	if err != nil {
		return h.failed("bookmark_export", err), nil
	}

	return successResult(result)
}

// HandleImport handles the bookmark_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ImportBookmarks(ctx, h.cat, h.bm, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return h.failed("bookmark_import", err), nil
	}

	return successResult(result)
}

// failed logs internal and storage errors before converting them.
func (h *Handlers) failed(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, errors.ErrInternal) || errors.Is(err, errors.ErrStorageUnavailable) {
		h.log.Error("tool failed", "tool", tool, "error", err)
	}
	return errorResult(err)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if tErr, ok := errors.As(err); ok {
		message := tErr.Message
		if err != error(tErr) && tErr.Code != errors.ErrInternal {
			message = err.Error()
		}
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": message,
			"status":  tErr.Status,
		}
		if tErr.Code == errors.ErrInternal {
			errorObj["message"] = "an internal error occurred"
		} else if tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
