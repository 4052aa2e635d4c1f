package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/currentview/internal/apperr"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Path        string
	Basename    string
	Title       string
	Checksum    string
	Frontmatter map[string]any
	UpdatedAt   time.Time
}

// UpsertNote inserts or replaces a note row.
func (db *DB) UpsertNote(n NoteRow) error {
	fm := n.Frontmatter
	if fm == nil {
		fm = map[string]any{}
	}
	fmJSON, err := json.Marshal(fm)
	if err != nil {
		return fmt.Errorf("index: encode frontmatter for %s: %w", n.Path, err)
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now().UTC()
	}
	_, err = db.conn.Exec(`
		INSERT INTO notes (path, basename, title, checksum, frontmatter, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			basename    = excluded.basename,
			title       = excluded.title,
			checksum    = excluded.checksum,
			frontmatter = excluded.frontmatter,
			updated_at  = excluded.updated_at
	`, n.Path, n.Basename, n.Title, n.Checksum, string(fmJSON), n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}
	return nil
}

// DeleteNote removes a note row. Deleting a missing note is not an error.
func (db *DB) DeleteNote(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// GetNote returns the row for path or apperr.ErrNotFound.
func (db *DB) GetNote(path string) (*NoteRow, error) {
	var (
		n      NoteRow
		fmJSON string
	)
	err := db.conn.QueryRow(`
		SELECT path, basename, title, checksum, frontmatter, updated_at
		FROM notes WHERE path = ?
	`, path).Scan(&n.Path, &n.Basename, &n.Title, &n.Checksum, &fmJSON, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("index: note %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get note: %w", err)
	}
	if err := json.Unmarshal([]byte(fmJSON), &n.Frontmatter); err != nil {
		return nil, fmt.Errorf("index: decode frontmatter for %s: %w", path, err)
	}
	return &n, nil
}

// Frontmatter returns the cached frontmatter for path, or apperr.ErrNotFound
// when the note is not indexed.
func (db *DB) Frontmatter(path string) (map[string]any, error) {
	n, err := db.GetNote(path)
	if err != nil {
		return nil, err
	}
	return n.Frontmatter, nil
}

// ListPaths returns indexed note paths under the folder prefix, sorted.
// An empty prefix lists everything.
func (db *DB) ListPaths(prefix string) ([]string, error) {
	prefix = strings.Trim(prefix, "/")
	var (
		rows *sql.Rows
		err  error
	)
	if prefix == "" {
		rows, err = db.conn.Query(`SELECT path FROM notes ORDER BY path`)
	} else {
		rows, err = db.conn.Query(`SELECT path FROM notes WHERE substr(path, 1, ?) = ? ORDER BY path`,
			len(prefix)+1, prefix+"/")
	}
	if err != nil {
		return nil, fmt.Errorf("index: list paths: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
