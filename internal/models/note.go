// Package models defines the domain types shared across currentview.
package models

import (
	"path"
	"strings"
	"time"
)

// File is a reference to a note in the vault.
type File struct {
	// Path is vault-relative with forward slashes, e.g. "projects/plan.md".
	Path string `json:"path"`
	// Basename is the file name without directory and extension.
	Basename string `json:"basename"`
}

// NewFile builds a File from a vault-relative path.
func NewFile(p string) File {
	p = strings.ReplaceAll(p, `\`, "/")
	base := path.Base(p)
	if base == "." || base == "/" {
		base = ""
	}
	return File{
		Path:     p,
		Basename: strings.TrimSuffix(base, path.Ext(base)),
	}
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is one node of the vault tree.
type Entry struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}
