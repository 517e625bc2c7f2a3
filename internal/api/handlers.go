package api

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/logpub/internal/apperr"
	"github.com/starford/logpub/internal/publish"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
.wikilink-dangling { color: #999; border-bottom: 1px dashed #999; }
.embed { border-left: 3px solid #ccc; margin: 1em 0; padding-left: 1em; }
.embed-source { font-size: 0.85em; color: #666; }
</style>
</head>
<body>
<article>
<h1>{{.Title}}</h1>
{{.Body}}
</article>
{{if .LiveReload}}<script>
new EventSource("/api/events").addEventListener("site.reload", () => location.reload());
</script>{{end}}
</body>
</html>
`))

// Handler holds API route handlers.
type Handler struct {
	site       Site
	runs       RunHistory
	liveReload bool
}

// NewHandler creates a new Handler. runs may be nil. liveReload adds the SSE
// reload script to rendered pages.
func NewHandler(site Site, runs RunHistory, liveReload bool) *Handler {
	return &Handler{site: site, runs: runs, liveReload: liveReload}
}

// slugParam extracts the page slug from the URL, decoding escaped runes.
func slugParam(r *http.Request) string {
	raw := chi.URLParam(r, "slug")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeLookupError maps snapshot lookup errors to responses. Private pages
// and blocks answer 404 so the preview never shows more than the export.
func writeLookupError(w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrNotPublic):
		writeError(w, http.StatusNotFound, "not found")
	default:
		slog.Error(what+" failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Status handles GET /api/status.
//
//	@Summary		Describe the current export snapshot
//	@Tags			status
//	@Produce		json
//	@Success		200		{object}	StatusResponse
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.site.Current()
	resp := StatusResponse{
		BuiltAt: snap.BuiltAt,
		Pages:   len(snap.Corpus.Pages),
		Public:  len(snap.Public),
		Blocks:  snap.Index.Len(),
	}
	if h.runs != nil {
		run, err := h.runs.LastRun(r.Context())
		switch {
		case err == nil:
			resp.LastRun = run
		case !errors.Is(err, apperr.ErrNotFound):
			slog.Warn("last run lookup failed", slog.String("error", err.Error()))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPages handles GET /api/pages.
//
//	@Summary		List the pages an export publishes
//	@Tags			pages
//	@Produce		json
//	@Success		200		{object}	PageListResponse
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, _ *http.Request) {
	snap := h.site.Current()
	items := make([]PageListItem, 0, len(snap.Public))
	for _, p := range snap.Pages() {
		items = append(items, PageListItem{
			Title:     p.Title,
			Slug:      snap.Slug(p.Title),
			URL:       snap.URL(p.Title),
			UpdatedAt: p.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: len(items)})
}

// GetPage handles GET /api/pages/{slug}.
//
//	@Summary		Render a public page
//	@Tags			pages
//	@Produce		json
//	@Param			slug	path		string	true	"Page slug"
//	@Success		200		{object}	PageResponse
//	@Failure		404		{object}	errResponse
//	@Router			/pages/{slug} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.render(slugParam(r))
	if err != nil {
		writeLookupError(w, "get page", err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

// GetBlock handles GET /api/blocks/{id}.
//
//	@Summary		Render a single block of a public page
//	@Tags			blocks
//	@Produce		json
//	@Param			id		path		string	true	"Block id"
//	@Success		200		{object}	BlockResponse
//	@Failure		404		{object}	errResponse
//	@Router			/blocks/{id} [get]
func (h *Handler) GetBlock(w http.ResponseWriter, r *http.Request) {
	b, err := h.site.Current().RenderBlock(chi.URLParam(r, "id"))
	if err != nil {
		writeLookupError(w, "get block", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// ServePage handles GET {notes_url}/{slug}/ with the rendered HTML page.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.render(slugParam(r))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrNotPublic) {
			http.NotFound(w, r)
			return
		}
		slog.Error("serve page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = pageTemplate.Execute(w, struct {
		Title      string
		Body       template.HTML
		LiveReload bool
	}{
		Title:      rendered.Title,
		Body:       template.HTML(rendered.Body), //nolint:gosec // produced by the exporter, same as the published file
		LiveReload: h.liveReload,
	})
	if err != nil {
		slog.Error("write page failed", slog.String("error", err.Error()))
	}
}

func (h *Handler) render(slug string) (*publish.Rendered, error) {
	snap := h.site.Current()
	p, err := snap.PageBySlug(slug)
	if err != nil {
		return nil, err
	}
	return snap.Render(p)
}
