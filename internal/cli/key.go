// key.go implements the "atelier key" command for managing API keys.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atelier-dev/atelier/internal/config"
	"github.com/atelier-dev/atelier/internal/provider"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage provider API keys",
}

var keySetCmd = &cobra.Command{
	Use:   "set <provider> <key>",
	Short: "Store an API key for a provider",
	Args:  cobra.ExactArgs(2),
	RunE:  runKeySet,
}

var keyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which providers have a key configured",
	RunE:  runKeyList,
}

func init() {
	keyCmd.AddCommand(keySetCmd)
	keyCmd.AddCommand(keyListCmd)
}

func runKeySet(cmd *cobra.Command, args []string) error {
	name := strings.ToLower(strings.TrimSpace(args[0]))
	id, ok := provider.FromName(name)
	if !ok {
		return fmt.Errorf("unknown provider %q (known: %s)", name, knownProviders())
	}
	if !id.Info().RequiresCredential {
		return fmt.Errorf("provider %q does not use an API key", name)
	}

	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.ReadConfig(root)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	cfg.SetAPIKey(name, strings.TrimSpace(args[1]))
	if err := config.WriteConfig(root, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Stored API key for %s.\n", id.Info().Label)
	return nil
}

func runKeyList(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.ReadConfig(root)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	for _, info := range provider.Catalog() {
		switch {
		case !info.RequiresCredential:
			fmt.Printf("  %-10s  no key required\n", info.Name)
		case cfg.APIKey(info.Name) != "":
			fmt.Printf("  %-10s  configured\n", info.Name)
		default:
			fmt.Printf("  %-10s  missing\n", info.Name)
		}
	}
	return nil
}

func knownProviders() string {
	var names []string
	for _, info := range provider.Catalog() {
		names = append(names, info.Name)
	}
	return strings.Join(names, ", ")
}
