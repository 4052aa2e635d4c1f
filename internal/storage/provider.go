// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/currentview/internal/models"

// Provider is the interface for vault file operations. All paths are
// relative to the vault root and use forward slashes.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]models.NoteMetadata, error)
	// Tree returns every note and folder under dir.
	Tree(dir string) ([]models.Entry, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// IsDir reports whether path is an existing folder.
	IsDir(path string) bool
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}

var _ Provider = (*FS)(nil)
