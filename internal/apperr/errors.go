// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrNotPublic       = errors.New("not public")
	ErrMalformedSource = errors.New("malformed source")
	ErrNoFrontMatter   = errors.New("missing front matter")
	ErrBadPostName     = errors.New("post file name must look like YYYY-MM-DD-title.md")
)
