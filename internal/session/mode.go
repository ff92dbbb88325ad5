// Package session holds the per-mode workspace state and its store.
package session

// Mode identifies one workflow within the workspace. Each mode owns an
// independent session record; adding a mode means adding a constant here
// and an entry in modeLabels.
type Mode int

const (
	ModeSummarizer Mode = iota
	ModeRewriter
	ModeScaffolder
	ModeSplitter
	ModeAgentDesigner
	ModeChat
	modeCount // sentinel, keep last
)

var modeLabels = map[Mode]string{
	ModeSummarizer:    "Summarizer",
	ModeRewriter:      "Rewriter",
	ModeScaffolder:    "Scaffolder",
	ModeSplitter:      "Request Splitter",
	ModeAgentDesigner: "Agent Designer",
	ModeChat:          "Chat",
}

var modeNames = map[Mode]string{
	ModeSummarizer:    "summarizer",
	ModeRewriter:      "rewriter",
	ModeScaffolder:    "scaffolder",
	ModeSplitter:      "splitter",
	ModeAgentDesigner: "agent-designer",
	ModeChat:          "chat",
}

// AllModes returns every known mode in display order.
func AllModes() []Mode {
	modes := make([]Mode, 0, int(modeCount))
	for m := Mode(0); m < modeCount; m++ {
		modes = append(modes, m)
	}
	return modes
}

// Label returns the human-readable name of the mode.
func (m Mode) Label() string {
	if label, ok := modeLabels[m]; ok {
		return label
	}
	return "Unknown"
}

// String returns the stable machine name of the mode, used as the
// config and snapshot key.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ModeFromName resolves a machine name back to a Mode.
func ModeFromName(name string) (Mode, bool) {
	for m, n := range modeNames {
		if n == name {
			return m, true
		}
	}
	return 0, false
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m >= 0 && m < modeCount
}
