package index

// NoteIndex is the metadata cache used by the mode service and the sync
// and watch loops.
type NoteIndex interface {
	UpsertNote(n NoteRow) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	GetNote(path string) (*NoteRow, error)
	Frontmatter(path string) (map[string]any, error)
	ListPaths(prefix string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ NoteIndex = (*DB)(nil)
