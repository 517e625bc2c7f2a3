// Package graph loads a note graph directory: pages/ and journals/.
package graph

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/logpub/internal/markdown"
	"github.com/starford/logpub/internal/models"
	"github.com/starford/logpub/internal/storage"
)

// Collections in enumeration order. Later files win on duplicate block ids,
// so this order is part of the output contract.
var Collections = []string{models.CollectionPages, models.CollectionJournals}

// Corpus holds every page of the graph, pages first and then journal
// entries, each collection sorted by path.
type Corpus struct {
	Pages []*models.Page
}

// Load reads and parses every note of the graph. Files are parsed
// concurrently but the result order is deterministic.
func Load(ctx context.Context, store storage.Provider, eng *markdown.Engine, logger *slog.Logger) (*Corpus, error) {
	var metas []collectionFile
	for _, coll := range Collections {
		if !store.Exists(coll) {
			logger.Warn("graph: collection missing", slog.String("collection", coll))
			continue
		}
		files, err := store.List(coll)
		if err != nil {
			return nil, fmt.Errorf("graph: list %s: %w", coll, err)
		}
		for _, f := range files {
			metas = append(metas, collectionFile{meta: f, collection: coll})
		}
	}

	pages := make([]*models.Page, len(metas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range metas {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := loadPage(store, eng, f)
			if err != nil {
				return err
			}
			pages[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("graph: loaded", slog.Int("files", len(pages)))
	return &Corpus{Pages: pages}, nil
}

type collectionFile struct {
	meta       models.FileMeta
	collection string
}

func loadPage(store storage.Provider, eng *markdown.Engine, f collectionFile) (*models.Page, error) {
	data, err := store.Read(f.meta.Path)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	doc, err := eng.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("graph: %s: %w", f.meta.Path, err)
	}
	return &models.Page{
		Path:       f.meta.Path,
		Title:      Title(f.meta.Path),
		Collection: f.collection,
		Attributes: markdown.ExtractAttributes(doc.Root),
		UpdatedAt:  f.meta.UpdatedAt,
		Doc:        doc,
	}, nil
}

// Title is the file's base name without its extension.
func Title(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// PublicTitles returns the titles of the public pages. Journal entries are
// never included.
func (c *Corpus) PublicTitles() map[string]bool {
	out := make(map[string]bool)
	for _, p := range c.Pages {
		if p.Exportable() {
			out[p.Title] = true
		}
	}
	return out
}

// Exportable returns the pages written by an export, in corpus order.
func (c *Corpus) Exportable() []*models.Page {
	var out []*models.Page
	for _, p := range c.Pages {
		if p.Exportable() {
			out = append(out, p)
		}
	}
	return out
}

// Page returns the page with the given title in the pages collection.
func (c *Corpus) Page(title string) (*models.Page, bool) {
	for _, p := range c.Pages {
		if p.Collection == models.CollectionPages && p.Title == title {
			return p, true
		}
	}
	return nil, false
}
