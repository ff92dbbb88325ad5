package provider

import (
	"strings"

	"github.com/atelier-dev/atelier/internal/session"
)

// Globals is the workspace-wide provider selection.
type Globals struct {
	Provider ID
	Model    string
}

// Override is a per-mode preference. The zero value inherits everything
// from the globals; HasProvider gates the Provider field so the Google
// zero value cannot masquerade as an explicit choice.
type Override struct {
	Provider    ID
	HasProvider bool
	Model       string
}

// Selection is the effective (provider, model) pair for one request.
type Selection struct {
	Provider           ID
	Model              string
	RequiresCredential bool
}

// Resolve computes the effective selection for a mode. It is pure:
// identical inputs always yield the identical selection.
//
// Provider: per-mode override if present, else the global selection.
// Model: trimmed override model, else trimmed global model, else the
// provider's catalog default, else "".
func Resolve(mode session.Mode, globals Globals, overrides map[session.Mode]Override) Selection {
	id := globals.Provider
	var override Override
	if ov, ok := overrides[mode]; ok {
		override = ov
		if ov.HasProvider {
			id = ov.Provider
		}
	}

	info := id.Info()
	model := strings.TrimSpace(override.Model)
	if model == "" {
		model = strings.TrimSpace(globals.Model)
	}
	if model == "" {
		model = info.DefaultModel
	}

	return Selection{
		Provider:           id,
		Model:              model,
		RequiresCredential: info.RequiresCredential,
	}
}
