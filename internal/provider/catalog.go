// Package provider enumerates the AI backends the workspace can talk to
// and resolves which one a mode should use.
package provider

// ID identifies one backend provider. The set is closed: adding a
// provider means adding a constant here and an entry in catalog, which
// every switch over ID must then cover.
type ID int

const (
	Google ID = iota
	Anthropic
	Local
	idCount // sentinel, keep last
)

// Info describes a provider's static properties.
type Info struct {
	ID                 ID
	Name               string // stable machine name, used in config keys
	Label              string // display name
	DefaultModel       string
	RequiresCredential bool
}

var catalog = map[ID]Info{
	Google: {
		ID:                 Google,
		Name:               "google",
		Label:              "Google Gemini",
		DefaultModel:       "gemini-2.5-flash",
		RequiresCredential: true,
	},
	Anthropic: {
		ID:                 Anthropic,
		Name:               "anthropic",
		Label:              "Anthropic Claude",
		DefaultModel:       "claude-sonnet-4-5",
		RequiresCredential: true,
	},
	Local: {
		ID:                 Local,
		Name:               "local",
		Label:              "Local (Ollama)",
		DefaultModel:       "llama3.1",
		RequiresCredential: false,
	},
}

// Catalog returns every known provider in display order.
func Catalog() []Info {
	infos := make([]Info, 0, int(idCount))
	for id := ID(0); id < idCount; id++ {
		infos = append(infos, catalog[id])
	}
	return infos
}

// Info returns the provider's catalog entry.
func (id ID) Info() Info {
	if info, ok := catalog[id]; ok {
		return info
	}
	return Info{ID: id, Name: "unknown", Label: "Unknown"}
}

// String returns the provider's stable machine name.
func (id ID) String() string { return id.Info().Name }

// FromName resolves a machine name back to a provider ID.
func FromName(name string) (ID, bool) {
	for id := ID(0); id < idCount; id++ {
		if catalog[id].Name == name {
			return id, true
		}
	}
	return 0, false
}
