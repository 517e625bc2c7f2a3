package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/logpub/internal/manifest"
	"github.com/starford/logpub/internal/publish"
)

// Site gives handlers the most recent snapshot. It returns nil until the
// first build has finished.
type Site interface {
	Current() *publish.Snapshot
}

// RunHistory reports the most recent recorded export.
type RunHistory interface {
	LastRun(ctx context.Context) (*manifest.Run, error)
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// NotesURL is the path prefix rendered pages are served under.
	NotesURL string
	// Token protects /api when non-empty. /api/events is always open.
	Token string
	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
	// Runs, if non-nil, adds the last export run to /api/status.
	Runs RunHistory
}

// NewRouter creates a chi router serving health checks, the JSON API under
// /api and rendered public pages under NotesURL.
func NewRouter(site Site, opts RouterOptions) chi.Router {
	h := NewHandler(site, opts.Runs, opts.Events != nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if site.Current() == nil {
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "building"})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// EventSource cannot send an Authorization header, so the reload
		// stream stays as open as the rendered pages that subscribe to it.
		if opts.Events != nil {
			r.Get("/events", opts.Events.ServeHTTP)
		}
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(opts.Token))
			r.Use(requireSnapshot(site))
			r.Get("/status", h.Status)
			r.Get("/pages", h.ListPages)
			r.Get("/pages/{slug}", h.GetPage)
			r.Get("/blocks/{id}", h.GetBlock)
		})
	})

	prefix := "/" + strings.Trim(opts.NotesURL, "/")
	if prefix == "/" {
		prefix = ""
	}
	r.Group(func(r chi.Router) {
		r.Use(requireSnapshot(site))
		r.Get(prefix+"/{slug}", h.ServePage)
		r.Get(prefix+"/{slug}/", h.ServePage)
	})

	return r
}
