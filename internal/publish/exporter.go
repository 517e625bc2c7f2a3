// Package publish turns a note graph into standalone documents: it resolves
// wiki links against the public pages, embeds referenced blocks and writes
// one front-matter-wrapped file per public page.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"

	"github.com/starford/logpub/internal/graph"
	"github.com/starford/logpub/internal/markdown"
	"github.com/starford/logpub/internal/models"
	"github.com/starford/logpub/internal/slug"
	"github.com/starford/logpub/internal/storage"
)

// Stage names a step of an export run.
type Stage string

const (
	StageEnumerate Stage = "enumerate"
	StageIndex     Stage = "index"
	StageResolve   Stage = "resolve"
	StageEmbed     Stage = "embed"
	StageSerialize Stage = "serialize"
	StageWrite     Stage = "write"
)

// PageError is a failure that aborted one page of an export.
type PageError struct {
	Page  string
	Stage Stage
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("publish: %s %q: %v", e.Stage, e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Manifest remembers which files the previous export wrote.
type Manifest interface {
	Paths(ctx context.Context) ([]string, error)
	Replace(ctx context.Context, records []models.ExportRecord) error
}

// Options configures an Exporter.
type Options struct {
	Graph  storage.Provider
	Output storage.Provider
	// Manifest is optional. Without it nothing is pruned from Output.
	Manifest      Manifest
	Engine        *markdown.Engine
	Slugger       *slug.Slugger
	NotesURL      string
	MaxEmbedDepth int
	Logger        *slog.Logger
}

// Exporter builds snapshots of the graph and writes them out.
type Exporter struct {
	opts    Options
	current atomic.Pointer[Snapshot]
}

// NewExporter returns an Exporter. Engine and Slugger default to ones built
// from NotesURL.
func NewExporter(opts Options) *Exporter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Slugger == nil {
		opts.Slugger = slug.New(language.Und)
	}
	if opts.Engine == nil {
		opts.Engine = markdown.NewEngine(markdown.Options{
			NotesURL: opts.NotesURL,
			Slugify:  opts.Slugger.Slugify,
		})
	}
	return &Exporter{opts: opts}
}

// Current returns the most recently built snapshot, or nil before the
// first successful build.
func (x *Exporter) Current() *Snapshot {
	return x.current.Load()
}

// Build loads and indexes the graph and makes the result current.
func (x *Exporter) Build(ctx context.Context) (*Snapshot, error) {
	corpus, err := graph.Load(ctx, x.opts.Graph, x.opts.Engine, x.opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("publish: %s: %w", StageEnumerate, err)
	}
	snap := newSnapshot(corpus, &x.opts)
	x.current.Store(snap)
	x.opts.Logger.Debug("publish: indexed",
		slog.Int("pages", len(corpus.Pages)),
		slog.Int("blocks", snap.Index.Len()),
		slog.Int("public", len(snap.Public)))
	return snap, nil
}

// Result summarizes an export run.
type Result struct {
	Written    []models.ExportRecord   `json:"written"`
	Pruned     []string                `json:"pruned,omitempty"`
	Unresolved map[string][]Unresolved `json:"unresolved,omitempty"`
	Dangling   map[string][]string     `json:"dangling,omitempty"`
	Duration   time.Duration           `json:"duration"`
}

// Export builds a snapshot and writes every public page to the output
// directory under its source file name. A failing page does not stop the
// others; all page errors are returned joined together with the partial
// result.
func (x *Exporter) Export(ctx context.Context) (*Result, error) {
	start := time.Now()
	snap, err := x.Build(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Unresolved: make(map[string][]Unresolved),
		Dangling:   make(map[string][]string),
	}
	var errs []error
	written := make(map[string]bool)
	for _, p := range snap.Pages() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := x.exportPage(snap, p, res)
		if err != nil {
			x.opts.Logger.Warn("publish: page failed", slog.String("page", p.Title), slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		written[rec.Path] = true
		res.Written = append(res.Written, rec)
	}

	if x.opts.Manifest != nil {
		pruned, err := x.prune(ctx, written)
		if err != nil {
			errs = append(errs, err)
		}
		res.Pruned = pruned
		if err := x.opts.Manifest.Replace(ctx, res.Written); err != nil {
			errs = append(errs, fmt.Errorf("publish: manifest: %w", err))
		}
	}

	res.Duration = time.Since(start)
	x.opts.Logger.Info("publish: export done",
		slog.Int("written", len(res.Written)),
		slog.Int("pruned", len(res.Pruned)),
		slog.Int("failed", len(errs)),
		slog.Duration("duration", res.Duration))
	return res, errors.Join(errs...)
}

func (x *Exporter) exportPage(snap *Snapshot, p *models.Page, res *Result) (models.ExportRecord, error) {
	r, err := snap.Render(p)
	if err != nil {
		return models.ExportRecord{}, err
	}
	if len(r.Unresolved) > 0 {
		res.Unresolved[p.Title] = r.Unresolved
	}
	if len(r.Dangling) > 0 {
		res.Dangling[p.Title] = r.Dangling
	}
	out, err := r.Document()
	if err != nil {
		return models.ExportRecord{}, &PageError{Page: p.Title, Stage: StageSerialize, Err: err}
	}
	name := p.FileName()
	if err := x.opts.Output.Write(name, out); err != nil {
		return models.ExportRecord{}, &PageError{Page: p.Title, Stage: StageWrite, Err: err}
	}
	x.opts.Logger.Debug("publish: wrote", slog.String("page", p.Title), slog.String("path", name))
	return models.ExportRecord{
		Path:       name,
		Title:      p.Title,
		URL:        r.URL,
		Checksum:   storage.Checksum(out),
		ExportedAt: time.Now().UTC(),
	}, nil
}

// prune deletes files the previous export wrote that this one did not.
func (x *Exporter) prune(ctx context.Context, written map[string]bool) ([]string, error) {
	prev, err := x.opts.Manifest.Paths(ctx)
	if err != nil {
		return nil, fmt.Errorf("publish: manifest: %w", err)
	}
	var pruned []string
	var errs []error
	for _, p := range prev {
		if written[p] {
			continue
		}
		if err := x.opts.Output.Delete(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("publish: prune %s: %w", p, err))
			continue
		}
		pruned = append(pruned, p)
		x.opts.Logger.Info("publish: pruned", slog.String("path", p))
	}
	sort.Strings(pruned)
	return pruned, errors.Join(errs...)
}
