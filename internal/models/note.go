// Package models defines the domain types for logpub.
package models

import (
	"path/filepath"
	"time"

	"github.com/starford/logpub/internal/markdown"
)

// Collections a page can belong to.
const (
	CollectionPages    = "pages"
	CollectionJournals = "journals"
)

// Page is one parsed note file.
type Page struct {
	Path       string             `json:"path"`
	Title      string             `json:"title"`
	Collection string             `json:"collection"`
	Attributes map[string]string  `json:"attributes,omitempty"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Doc        *markdown.Document `json:"-"`
}

// Public reports whether the page opts in to publication. Only the exact
// value "true" counts.
func (p *Page) Public() bool {
	return p.Attributes["public"] == "true"
}

// Exportable reports whether the page is written as a standalone document.
// Journal entries never are.
func (p *Page) Exportable() bool {
	return p.Collection == CollectionPages && p.Public()
}

// FileName is the base name of the source file.
func (p *Page) FileName() string {
	return filepath.Base(p.Path)
}

// FileMeta is a lightweight representation returned by list operations.
type FileMeta struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExportRecord describes one file written by an export run.
type ExportRecord struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Checksum   string    `json:"checksum"`
	ExportedAt time.Time `json:"exported_at"`
}
