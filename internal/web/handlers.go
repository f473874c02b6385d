package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/hpungsan/tome/internal/bookmark"
	"github.com/hpungsan/tome/internal/entry"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/search"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	cat      *entry.Catalog
	bm       *bookmark.Manager
	renderer *Renderer
}

// HandleSearch handles GET /entries: category tabs, search box and results.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	query := r.URL.Query().Get("q")

	result, err := ops.Search(h.cat, h.bm, ops.SearchInput{Category: category, Query: query})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data := SearchPageData{
		PageData: PageData{
			Title:   tabLabel(result.Category),
			Version: h.renderer.version,
			Nav:     result.Category,
		},
		Tabs:     h.tabs(),
		Category: result.Category,
		Query:    query,
		ReturnTo: "/entries?" + url.Values{"category": {result.Category}, "q": {query}}.Encode(),
		Result:   result,
	}
	if result.Category == search.CategoryBookmarks {
		data.Dangling = ops.ListBookmarks(h.cat, h.bm).Dangling
	}

	// If htmx targets #results, render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "search", "search-results", data)
		return
	}
	h.renderer.renderPage(w, r, "search", data)
}

// HandleDetail handles GET /entries/{id}: one entry rendered from markdown.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("entry ID is required"))
		return
	}

	e, err := ops.Fetch(h.cat, h.bm, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, e)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   entry.Display(e.Name),
			Version: h.renderer.version,
		},
		Entry:        e,
		RenderedHTML: renderMarkdown(e.Markdown),
	})
}

// HandleToggleBookmark handles POST /entries/{id}/bookmark.
func (h *Handlers) HandleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("entry ID is required"))
		return
	}
	if !sameOrigin(r) {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("cross-origin request rejected"))
		return
	}

	out, err := ops.ToggleBookmark(r.Context(), h.cat, h.bm, ops.ToggleInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if isHTMX(r) {
		e, err := ops.Fetch(h.cat, h.bm, ops.FetchInput{ID: out.ID})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		h.renderer.renderBlock(w, http.StatusOK, "detail", "bookmark-button", DetailPageData{Entry: e})
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	http.Redirect(w, r, returnPath(r, "/entries/"+out.ID), http.StatusSeeOther)
}

// HandleStats handles GET /stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, ops.Stats(h.cat, h.bm))
}

// tabs returns the category tabs with counts.
func (h *Handlers) tabs() []Tab {
	stats := ops.Stats(h.cat, h.bm)
	counts := map[string]int{
		search.CategoryAll:       stats.All,
		"bestiary":               stats.Bestiary,
		"spell":                  stats.Spell,
		"item":                   stats.Item,
		search.CategoryBookmarks: stats.Bookmarks,
	}
	tabs := make([]Tab, len(search.Categories))
	for i, c := range search.Categories {
		tabs[i] = Tab{Category: c, Label: tabLabel(c), Count: counts[c]}
	}
	return tabs
}

// sameOrigin rejects browser requests whose Origin does not match the Host.
// Requests without an Origin header (curl, tests) pass.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// returnPath returns the form's "return" value when it is a local path,
// otherwise fallback.
func returnPath(r *http.Request, fallback string) string {
	ret := r.FormValue("return")
	if ret == "" || !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") || strings.Contains(ret, `\`) {
		return fallback
	}
	return ret
}
