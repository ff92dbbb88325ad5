package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Provider.Model = "gemini-2.5-pro"
	cfg.SetAPIKey("google", "test-key")
	cfg.Modes = map[string]ModeOverride{
		"chat": {Provider: "local", Model: "llama3.1"},
	}

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Provider.Model != "gemini-2.5-pro" {
		t.Errorf("Provider.Model: got %q, want %q", loaded.Provider.Model, "gemini-2.5-pro")
	}
	if loaded.APIKey("google") != "test-key" {
		t.Errorf("APIKey(google): got %q, want %q", loaded.APIKey("google"), "test-key")
	}
	ov, ok := loaded.Modes["chat"]
	if !ok {
		t.Fatal("chat override missing after round trip")
	}
	if ov.Provider != "local" || ov.Model != "llama3.1" {
		t.Errorf("chat override: got %+v", ov)
	}
}

func TestDefaultConfigSelectsGoogle(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider.Selected != "google" {
		t.Errorf("default provider: got %q, want google", cfg.Provider.Selected)
	}
	if !cfg.UI.ShowThinking {
		t.Error("default ShowThinking should be true")
	}
}

func TestBackwardCompatibility(t *testing.T) {
	// Simulate an old config file without the modes table.
	tmpDir := t.TempDir()
	oldConfig := `version: 1
provider:
  selected: anthropic
  model: claude-sonnet-4-5
ui:
  show_thinking: false
  theme: dark
`
	configPath := filepath.Join(tmpDir, ".atelier")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(oldConfig), 0644); err != nil {
		t.Fatalf("failed to write old config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on old config: %v", err)
	}
	if cfg.Provider.Selected != "anthropic" {
		t.Errorf("selected: got %q, want anthropic", cfg.Provider.Selected)
	}
	if cfg.APIKey("anthropic") != "" {
		t.Errorf("missing api_keys should read as empty, got %q", cfg.APIKey("anthropic"))
	}
}
