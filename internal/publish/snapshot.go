package publish

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/starford/logpub/internal/apperr"
	"github.com/starford/logpub/internal/graph"
	"github.com/starford/logpub/internal/markdown"
	"github.com/starford/logpub/internal/models"
	"github.com/starford/logpub/internal/refindex"
	"github.com/starford/logpub/internal/slug"
)

// Snapshot is one built graph: the parsed corpus, its reference index and
// public-title set. It is read-only once built and safe for concurrent
// renders.
type Snapshot struct {
	Corpus  *graph.Corpus
	Index   *refindex.Index
	Public  map[string]bool
	BuiltAt time.Time

	engine   *markdown.Engine
	slugger  *slug.Slugger
	notesURL string
	embedder *Embedder
}

// Rendered is an exported page before it is written.
type Rendered struct {
	Title      string       `json:"title"`
	Slug       string       `json:"slug"`
	URL        string       `json:"url"`
	Body       string       `json:"body"`
	Unresolved []Unresolved `json:"unresolved,omitempty"`
	Dangling   []string     `json:"dangling,omitempty"`
}

// Document returns the front-matter-wrapped output file.
func (r *Rendered) Document() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeFrontMatter(&buf, r.Title, r.URL); err != nil {
		return nil, err
	}
	buf.WriteString(r.Body)
	return buf.Bytes(), nil
}

// Render resolves, embeds and serializes p on a private copy of its tree.
func (s *Snapshot) Render(p *models.Page) (*Rendered, error) {
	doc := p.Doc.Clone()

	dangling := MarkResolvableLinks(doc.Root, s.Public)
	res := s.embedder.Embed(doc.Root)
	for _, title := range res.Dangling {
		if !slices.Contains(dangling, title) {
			dangling = append(dangling, title)
		}
	}

	body, err := doc.HTML()
	if err != nil {
		return nil, &PageError{Page: p.Title, Stage: StageSerialize, Err: err}
	}
	return &Rendered{
		Title:      p.Title,
		Slug:       s.Slug(p.Title),
		URL:        s.URL(p.Title),
		Body:       body,
		Unresolved: res.Unresolved,
		Dangling:   dangling,
	}, nil
}

// Slug returns the URL path segment of a page title.
func (s *Snapshot) Slug(title string) string {
	return s.slugger.Slugify(title)
}

// URL returns the published URL of a page title, with a trailing slash.
func (s *Snapshot) URL(title string) string {
	return s.slugger.URL(s.notesURL, title) + "/"
}

// PageByTitle returns the page with the given title. Private pages are
// reported with apperr.ErrNotPublic.
func (s *Snapshot) PageByTitle(title string) (*models.Page, error) {
	p, ok := s.Corpus.Page(title)
	if !ok {
		return nil, fmt.Errorf("page %q: %w", title, apperr.ErrNotFound)
	}
	if !p.Exportable() {
		return nil, fmt.Errorf("page %q: %w", title, apperr.ErrNotPublic)
	}
	return p, nil
}

// PageBySlug finds a public page by its URL slug.
func (s *Snapshot) PageBySlug(sl string) (*models.Page, error) {
	for _, p := range s.Corpus.Pages {
		if p.Collection != models.CollectionPages || s.slugger.Slugify(p.Title) != sl {
			continue
		}
		if !p.Exportable() {
			return nil, fmt.Errorf("page %q: %w", sl, apperr.ErrNotPublic)
		}
		return p, nil
	}
	return nil, fmt.Errorf("page %q: %w", sl, apperr.ErrNotFound)
}

// Block is a single indexed block rendered on its own.
type Block struct {
	ID         string       `json:"id"`
	Source     string       `json:"source"`
	HTML       string       `json:"html"`
	Unresolved []Unresolved `json:"unresolved,omitempty"`
}

// RenderBlock renders the block tagged id. Blocks of pages that are not
// exported are reported with apperr.ErrNotPublic.
func (s *Snapshot) RenderBlock(id string) (*Block, error) {
	entry, ok := s.Index.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("block %q: %w", id, apperr.ErrNotFound)
	}
	if !entry.Public {
		return nil, fmt.Errorf("block %q: %w", id, apperr.ErrNotPublic)
	}
	emb, res, ok := s.embedder.EmbedBlock(id)
	if !ok {
		return nil, fmt.Errorf("block %q: %w", id, apperr.ErrNotFound)
	}
	var buf bytes.Buffer
	if err := s.engine.Render(&buf, emb.Source, emb); err != nil {
		return nil, fmt.Errorf("block %q: %w", id, err)
	}
	return &Block{ID: id, Source: entry.Title, HTML: buf.String(), Unresolved: res.Unresolved}, nil
}

// Pages returns the exported pages in corpus order.
func (s *Snapshot) Pages() []*models.Page {
	return s.Corpus.Exportable()
}

func newSnapshot(c *graph.Corpus, opts *Options) *Snapshot {
	idx := refindex.Build(c.Pages)
	public := c.PublicTitles()
	return &Snapshot{
		Corpus:   c,
		Index:    idx,
		Public:   public,
		BuiltAt:  time.Now(),
		engine:   opts.Engine,
		slugger:  opts.Slugger,
		notesURL: opts.NotesURL,
		embedder: &Embedder{
			Index:    idx,
			Public:   public,
			MaxDepth: opts.MaxEmbedDepth,
			Logger:   opts.Logger.With(slog.String("component", "embed")),
		},
	}
}
