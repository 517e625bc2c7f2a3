package api

import (
	"time"

	"github.com/starford/logpub/internal/manifest"
	"github.com/starford/logpub/internal/publish"
)

// PageListItem is one public page in a list response.
type PageListItem struct {
	Title     string    `json:"title" example:"My Page" validate:"required"`
	Slug      string    `json:"slug" example:"my-page" validate:"required"`
	URL       string    `json:"url" example:"/notes/my-page/" validate:"required"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageListResponse wraps the public page listing.
type PageListResponse struct {
	Pages []PageListItem `json:"pages" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// PageResponse is a rendered page with its diagnostics.
type PageResponse = publish.Rendered

// BlockResponse is a single rendered block (aliased from the publish layer).
type BlockResponse = publish.Block

// StatusResponse describes the current snapshot.
type StatusResponse struct {
	BuiltAt time.Time `json:"built_at"`
	Pages   int       `json:"pages" example:"120"`
	Public  int       `json:"public" example:"12"`
	Blocks  int       `json:"blocks" example:"340"`
	// LastRun is the most recent recorded export, when a manifest is kept.
	LastRun *manifest.Run `json:"last_run,omitempty"`
}
