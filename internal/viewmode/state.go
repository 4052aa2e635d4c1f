package viewmode

// PaneMode is the pane-level mode field of a markdown view.
type PaneMode string

const (
	PanePreview PaneMode = "preview"
	PaneSource  PaneMode = "source"
)

// ViewState holds the two view-state fields a host pane needs.
// Source is true for the raw source editor and false for live preview.
type ViewState struct {
	Mode   PaneMode `json:"mode" yaml:"mode"`
	Source bool     `json:"source" yaml:"source"`
}

var applyTable = map[Mode]ViewState{
	Reading: {Mode: PanePreview, Source: false},
	Source:  {Mode: PaneSource, Source: true},
	Live:    {Mode: PaneSource, Source: false},
}

// Apply maps a mode to the view state to write. It returns false for an
// invalid or empty mode; the caller then falls back to its host default.
func Apply(m Mode) (ViewState, bool) {
	vs, ok := applyTable[m]
	return vs, ok
}

// HostDefault builds the fallback view state from the host's configured
// default pane mode and live-preview flag. Unknown pane modes mean source.
func HostDefault(defaultPane string, livePreview bool) ViewState {
	pane := PaneSource
	if PaneMode(defaultPane) == PanePreview {
		pane = PanePreview
	}
	return ViewState{Mode: pane, Source: !livePreview}
}

// ModeOf is the inverse of Apply.
func ModeOf(vs ViewState) Mode {
	switch {
	case vs.Mode == PanePreview:
		return Reading
	case vs.Source:
		return Source
	default:
		return Live
	}
}
