// Package storage defines the file-system abstraction over the note graph
// and the export output directory.
package storage

import "github.com/starford/logpub/internal/models"

// Provider is the interface for file operations relative to a root.
type Provider interface {
	// List returns metadata for the .md files directly inside dir, sorted by path.
	List(dir string) ([]models.FileMeta, error)
	// Exists reports whether dir is an existing directory.
	Exists(dir string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
