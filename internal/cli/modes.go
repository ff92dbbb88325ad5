// modes.go implements the "atelier modes" command listing available modes.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atelier-dev/atelier/internal/config"
	"github.com/atelier-dev/atelier/internal/provider"
	"github.com/atelier-dev/atelier/internal/session"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List workspace modes and their resolved providers",
	Long: `Display every mode with the provider and model a submission in
that mode would use, after applying per-mode overrides from config.`,
	RunE: runModes,
}

func runModes(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.ReadConfig(root)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	globals := provider.Globals{Model: cfg.Provider.Model}
	if id, ok := provider.FromName(cfg.Provider.Selected); ok {
		globals.Provider = id
	}
	overrides := make(map[session.Mode]provider.Override, len(cfg.Modes))
	for name, mo := range cfg.Modes {
		mode, ok := session.ModeFromName(name)
		if !ok {
			continue
		}
		ov := provider.Override{Model: mo.Model}
		if id, found := provider.FromName(mo.Provider); found {
			ov.Provider = id
			ov.HasProvider = true
		}
		overrides[mode] = ov
	}

	fmt.Println("Atelier Modes")
	fmt.Println()
	for _, mode := range session.AllModes() {
		sel := provider.Resolve(mode, globals, overrides)
		cred := ""
		if sel.RequiresCredential && cfg.APIKey(sel.Provider.String()) == "" {
			cred = "  (no API key)"
		}
		fmt.Printf("  %-15s  %-10s  %s%s\n", mode.Label(), sel.Provider, sel.Model, cred)
	}
	return nil
}
