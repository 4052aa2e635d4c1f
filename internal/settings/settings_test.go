package settings

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/currentview/internal/apperr"
	"github.com/starford/currentview/internal/viewmode"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		format Format
		check  func(t *testing.T, s Settings)
	}{
		{
			name:   "empty input yields defaults",
			data:   "  \n",
			format: FormatJSON,
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, Default(), s)
			},
		},
		{
			name:   "partial json keeps defaults",
			data:   `{"debounceTimeout": 50, "patternRules": [{"pattern": "daily", "mode": "current view: reading"}]}`,
			format: FormatJSON,
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, 50, s.DebounceTimeout)
				assert.Equal(t, DefaultFrontmatterKey, s.CustomFrontmatterKey)
				assert.True(t, s.ShowExplorerIcons)
				assert.Equal(t, []PatternRule{{Pattern: "daily", Mode: "current view: reading"}}, s.PatternRules)
				assert.Equal(t, []FolderRule{{}}, s.FolderRules)
			},
		},
		{
			name:   "yaml",
			data:   "customFrontmatterKey: view\nshowLockNotifications: false\nfolderRules:\n  - path: journal\n    mode: 'view: live'\n",
			format: FormatYAML,
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, "view", s.CustomFrontmatterKey)
				assert.False(t, s.ShowLockNotifications)
				assert.Equal(t, []FolderRule{{Path: "journal", Mode: "view: live"}}, s.FolderRules)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := Decode([]byte(tt.data), tt.format)
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte("{not json"), FormatJSON)
	assert.Error(t, err)
}

func TestEncodeDecode_LegacyOmitted(t *testing.T) {
	t.Parallel()
	out, err := Encode(Default(), FormatJSON)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "explicitFileRules")
	assert.NotContains(t, string(out), "filePatterns")

	back, err := Decode(out, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, Default(), back)
}

func TestFormatFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, FormatJSON, FormatFor("data.json"))
	assert.Equal(t, FormatYAML, FormatFor("settings.YAML"))
	assert.Equal(t, FormatYAML, FormatFor("settings.yml"))
	assert.Equal(t, FormatJSON, FormatFor("settings"))
}

func TestValidate(t *testing.T) {
	t.Parallel()
	s := Default()
	require.NoError(t, s.Validate())

	s.DebounceTimeout = -1
	assert.Error(t, s.Validate())

	s = Default()
	s.CustomFrontmatterKey = ""
	assert.Error(t, s.Validate())
}

func TestClone_Independent(t *testing.T) {
	t.Parallel()
	s := Default()
	c := s.Clone()
	c.PatternRules[0].Pattern = "changed"
	c.FolderRules = append(c.FolderRules, FolderRule{Path: "x", Mode: "default"})
	assert.Equal(t, "", s.PatternRules[0].Pattern)
	assert.Len(t, s.FolderRules, 1)
}

func TestLock_ReplacesAndAppends(t *testing.T) {
	t.Parallel()
	s := Default()
	s.PatternRules = []PatternRule{
		{Pattern: "Notes/A.md", Mode: "current view: source"},
		{Pattern: "daily", Mode: "current view: live"},
	}

	require.NoError(t, s.Lock(TargetFile, "/notes/a.md ", viewmode.Reading))
	assert.Equal(t, []PatternRule{
		{Pattern: "daily", Mode: "current view: live"},
		{Pattern: "notes/a.md", Mode: "current view: reading"},
	}, s.PatternRules)

	require.NoError(t, s.Lock(TargetFolder, "Projects/", viewmode.Live))
	assert.Equal(t, FolderRule{Path: "projects", Mode: "current view: live"}, s.FolderRules[len(s.FolderRules)-1])
}

func TestLock_Errors(t *testing.T) {
	t.Parallel()
	s := Default()
	assert.ErrorIs(t, s.Lock(TargetFile, "a.md", viewmode.Mode("bogus")), apperr.ErrInvalidMode)
	assert.ErrorIs(t, s.Lock(TargetFile, " / ", viewmode.Reading), apperr.ErrInvalidRule)
	assert.ErrorIs(t, s.Lock(Target("leaf"), "a.md", viewmode.Reading), apperr.ErrInvalidTarget)
}

func TestUnlock(t *testing.T) {
	t.Parallel()
	s := Default()
	require.NoError(t, s.Lock(TargetFolder, "journal", viewmode.Reading))

	removed, err := s.Unlock(TargetFolder, "JOURNAL/")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, -1, s.FolderIndex("journal"))

	removed, err = s.Unlock(TargetFile, "journal")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.Unlock(Target("x"), "journal")
	assert.ErrorIs(t, err, apperr.ErrInvalidTarget)
}

func TestParseTarget(t *testing.T) {
	t.Parallel()
	got, err := ParseTarget("folder")
	require.NoError(t, err)
	assert.Equal(t, TargetFolder, got)

	_, err = ParseTarget("pane")
	assert.ErrorIs(t, err, apperr.ErrInvalidTarget)
}

func TestRenamePath(t *testing.T) {
	t.Parallel()
	s := Default()
	s.FolderRules = []FolderRule{{Path: "Old", Mode: "default"}}
	s.PatternRules = []PatternRule{{Pattern: "old", Mode: "current view: live"}, {Pattern: "other.md", Mode: ""}}

	assert.True(t, s.RenamePath("old/", "Archive/New"))
	assert.Equal(t, "archive/new", s.FolderRules[0].Path)
	assert.Equal(t, "archive/new", s.PatternRules[0].Pattern)
	assert.Equal(t, "other.md", s.PatternRules[1].Pattern)

	assert.False(t, s.RenamePath("missing", "x"))
	assert.False(t, s.RenamePath("", "x"))
}

func TestModeOptions(t *testing.T) {
	t.Parallel()
	s := Default()
	s.CustomFrontmatterKey = "view"
	assert.Equal(t, []string{"default", "view: reading", "view: source", "view: live"}, s.ModeOptions())
}

func TestRuleEditing_Folders(t *testing.T) {
	t.Parallel()
	s := Default()

	require.NoError(t, s.SetFolderRule(0, FolderRule{Path: "a", Mode: "current view: reading"}))
	require.NoError(t, s.AddFolderRule(FolderRule{}))
	require.NoError(t, s.AddFolderRule(FolderRule{}))

	err := s.AddFolderRule(FolderRule{Path: "/A/", Mode: "default"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	err = s.SetFolderRule(1, FolderRule{Path: "b", Mode: "reading"})
	assert.ErrorIs(t, err, apperr.ErrInvalidRule)

	assert.ErrorIs(t, s.SetFolderRule(9, FolderRule{}), apperr.ErrNotFound)
	assert.ErrorIs(t, s.DeleteFolderRule(-1), apperr.ErrNotFound)

	require.NoError(t, s.DeleteFolderRule(1))
	assert.Len(t, s.FolderRules, 2)
}

func TestRuleEditing_Patterns(t *testing.T) {
	t.Parallel()
	s := Default()
	s.PatternRules = nil

	for _, p := range []string{"one", "two", "three"} {
		require.NoError(t, s.AddPatternRule(PatternRule{Pattern: p, Mode: "default"}))
	}
	assert.ErrorIs(t, s.AddPatternRule(PatternRule{Pattern: "TWO"}), apperr.ErrConflict)

	// Editing a row in place may keep its own pattern.
	require.NoError(t, s.SetPatternRule(1, PatternRule{Pattern: "two", Mode: "current view: source"}))

	require.NoError(t, s.MovePatternRule(0, 2))
	assert.Equal(t, []string{"two", "three", "one"}, patterns(s))

	require.NoError(t, s.MovePatternRule(2, 0))
	assert.Equal(t, []string{"one", "two", "three"}, patterns(s))

	assert.ErrorIs(t, s.MovePatternRule(0, 3), apperr.ErrNotFound)

	require.NoError(t, s.DeletePatternRule(0))
	assert.Equal(t, []string{"two", "three"}, patterns(s))
}

func TestRuleEditing_KeyChangeKeepsStoredMode(t *testing.T) {
	t.Parallel()
	s := Default()
	s.FolderRules = []FolderRule{{Path: "journal", Mode: "current view: reading"}}
	s.PatternRules = []PatternRule{{Pattern: "^draft", Mode: "current view: live"}}
	s.CustomFrontmatterKey = "view"

	// Only the path changes; the old-key mode is carried over untouched.
	require.NoError(t, s.SetFolderRule(0, FolderRule{Path: "diary", Mode: "current view: reading"}))
	require.NoError(t, s.SetPatternRule(0, PatternRule{Pattern: "^wip", Mode: "current view: live"}))
	assert.Equal(t, "diary", s.FolderRules[0].Path)
	assert.Equal(t, "^wip", s.PatternRules[0].Pattern)

	// A changed mode must use the current key.
	err := s.SetFolderRule(0, FolderRule{Path: "diary", Mode: "current view: source"})
	assert.ErrorIs(t, err, apperr.ErrInvalidRule)
	err = s.AddPatternRule(PatternRule{Pattern: "x", Mode: "current view: live"})
	assert.ErrorIs(t, err, apperr.ErrInvalidRule)
	require.NoError(t, s.SetFolderRule(0, FolderRule{Path: "diary", Mode: "view: source"}))
}

func patterns(s Settings) []string {
	out := make([]string, len(s.PatternRules))
	for i, r := range s.PatternRules {
		out[i] = r.Pattern
	}
	return out
}

func TestApplyFlags(t *testing.T) {
	t.Parallel()
	s := Default()
	s.PatternRules = []PatternRule{{Pattern: "a", Mode: "current view: live"}}
	key := "view"
	off := false
	s.ApplyFlags(Flags{CustomFrontmatterKey: &key, ShowExplorerIcons: &off})

	assert.Equal(t, "view", s.CustomFrontmatterKey)
	assert.False(t, s.ShowExplorerIcons)
	assert.True(t, s.ShowLockNotifications)
	assert.Equal(t, DefaultDebounceTimeout, s.DebounceTimeout)
	// Existing rules keep the old key.
	assert.Equal(t, "current view: live", s.PatternRules[0].Mode)
}

func TestMigrate(t *testing.T) {
	t.Parallel()
	s := Default()
	s.PatternRules = []PatternRule{{Pattern: "existing.md", Mode: "current view: live"}}
	s.FilePatterns = []PatternRule{{Pattern: "^daily", Mode: "current view: reading"}}
	s.ExplicitFileRules = []FolderRule{
		{Path: "Journal", Mode: "current view: reading"},
		{Path: "notes/plan.md", Mode: "current view: source"},
		{Path: "Existing.md", Mode: "current view: reading"},
		{Path: "v1.2", Mode: "current view: live"},
		{Path: "nomode", Mode: ""},
		{Path: " ", Mode: "default"},
	}
	isFolder := func(p string) bool { return p == "v1.2" }

	require.True(t, Migrate(&s, isFolder))
	assert.Empty(t, s.FilePatterns)
	assert.Empty(t, s.ExplicitFileRules)
	assert.Equal(t, []FolderRule{
		{},
		{Path: "journal", Mode: "current view: reading"},
		{Path: "v1.2", Mode: "current view: live"},
	}, s.FolderRules)
	assert.Equal(t, []PatternRule{
		{Pattern: "existing.md", Mode: "current view: live"},
		{Pattern: "^daily", Mode: "current view: reading"},
		{Pattern: "notes/plan.md", Mode: "current view: source"},
		{Pattern: "nomode", Mode: ""},
	}, s.PatternRules)

	snapshot := s.Clone()
	assert.False(t, Migrate(&s, isFolder))
	assert.Equal(t, snapshot, s)
}

type memPersister struct {
	data  []byte
	saves int
	fail  error
}

func (m *memPersister) Load() ([]byte, error) {
	if m.data == nil {
		return nil, fs.ErrNotExist
	}
	return m.data, nil
}

func (m *memPersister) Save(data []byte) error {
	if m.fail != nil {
		return m.fail
	}
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

func TestStore_OpenDefaults(t *testing.T) {
	t.Parallel()
	st, err := Open(&memPersister{}, FormatJSON, nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), st.Snapshot())
}

func TestStore_OpenRejectsInvalid(t *testing.T) {
	t.Parallel()
	_, err := Open(&memPersister{data: []byte(`{"debounceTimeout": -5}`)}, FormatJSON, nil)
	assert.Error(t, err)
}

func TestStore_OpenBlankKey(t *testing.T) {
	t.Parallel()
	p := &memPersister{data: []byte(`{"customFrontmatterKey": "", "folderRules": [{"path": "a", "mode": "current view: reading"}]}`)}
	st, err := Open(p, FormatJSON, nil)
	require.NoError(t, err)
	assert.Empty(t, st.Snapshot().CustomFrontmatterKey)

	// Saving still requires a key.
	_, err = st.Update(func(s *Settings) error {
		s.ShowLockNotifications = false
		return nil
	})
	assert.Error(t, err)

	got, err := st.Update(func(s *Settings) error {
		s.CustomFrontmatterKey = "view"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "view", got.CustomFrontmatterKey)
}

func TestStore_Update(t *testing.T) {
	t.Parallel()
	p := &memPersister{}
	st, err := Open(p, FormatJSON, nil)
	require.NoError(t, err)

	got, err := st.Update(func(s *Settings) error {
		return s.Lock(TargetFile, "a.md", viewmode.Source)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.saves)
	assert.Equal(t, "a.md", got.PatternRules[len(got.PatternRules)-1].Pattern)

	reopened, err := Open(p, FormatJSON, nil)
	require.NoError(t, err)
	assert.Equal(t, st.Snapshot(), reopened.Snapshot())
}

func TestStore_UpdateFailureLeavesState(t *testing.T) {
	t.Parallel()
	p := &memPersister{}
	st, err := Open(p, FormatJSON, nil)
	require.NoError(t, err)
	before := st.Snapshot()

	_, err = st.Update(func(s *Settings) error {
		s.DebounceTimeout = 10
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, before, st.Snapshot())

	_, err = st.Update(func(s *Settings) error {
		s.CustomFrontmatterKey = ""
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, before, st.Snapshot())

	p.fail = errors.New("disk full")
	_, err = st.Update(func(s *Settings) error {
		s.DebounceTimeout = 10
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, before, st.Snapshot())
}

func TestStore_MigratePersistsOnce(t *testing.T) {
	t.Parallel()
	p := &memPersister{data: []byte(`{"filePatterns": [{"pattern": "x", "mode": "default"}]}`)}
	st, err := Open(p, FormatJSON, nil)
	require.NoError(t, err)

	changed, err := st.Migrate(nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, p.saves)

	changed, err = st.Migrate(nil)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, p.saves)
	assert.NotContains(t, string(p.data), "filePatterns")
}
