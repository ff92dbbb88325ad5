// Package cli defines Cobra command definitions for the atelier CLI.
// This file contains the root command, version flag, and help output.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atelier-dev/atelier/internal/config"
	"github.com/atelier-dev/atelier/internal/log"
	"github.com/atelier-dev/atelier/internal/orchestrator"
	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/internal/snapshot"
	"github.com/atelier-dev/atelier/internal/tui"
	"github.com/atelier-dev/atelier/internal/tui/app"
)

var (
	verbose bool
	resume  bool
	version = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "atelier",
	Short: "Multi-mode AI writing workspace",
	Long: `Atelier is a terminal workspace with six AI-assisted modes:
summarizer, rewriter, scaffolder, splitter, agent designer, and a
free-form chat. Each mode keeps its own session state, so switching
between them never loses work in progress.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, show help otherwise
		if !tui.IsTTY() {
			return cmd.Help()
		}

		ws, cleanup, err := buildWorkspace()
		if err != nil {
			return err
		}
		defer cleanup()

		if resume && ws.Snapshots != nil {
			if restoreErr := restoreLatest(ws.Store, ws.Snapshots, ws.Logger); restoreErr != nil {
				fmt.Fprintf(os.Stderr, "could not restore snapshot: %v\n", restoreErr)
			}
		}

		return tui.Run(app.New(ws))
	},
}

// buildWorkspace assembles the shared state every command and the TUI
// run on: config, session store, orchestrator, snapshot store, logger.
// The returned cleanup closes the snapshot database.
func buildWorkspace() (*tui.Workspace, func(), error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.ReadConfig(root)
	if err != nil {
		// Config not found or invalid, use defaults
		cfg = config.DefaultConfig()
	}

	store := session.NewStore()

	// Logging and snapshots are best-effort; the workspace runs
	// without them when the filesystem refuses.
	logger, err := log.NewLogger(root)
	if err != nil {
		logger = nil
	}

	var snaps *snapshot.Store
	if dbErr := os.MkdirAll(config.Dir(root), 0755); dbErr == nil {
		snaps, _ = snapshot.NewStore(filepath.Join(config.Dir(root), "atelier.db"))
	}

	orch := orchestrator.New(store, cfg, logger)
	ws := tui.NewWorkspace(cfg, store, orch, snaps, logger)

	cleanup := func() {
		if snaps != nil {
			snaps.Close()
		}
	}
	return ws, cleanup, nil
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Verbose returns true if --verbose flag is set.
func Verbose() bool {
	return verbose
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print extra detail from subcommands")
	rootCmd.Flags().BoolVar(&resume, "resume", false, "Restore the latest snapshot on startup")

	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(logCmd)
}
