// snapshot.go implements the "atelier snapshot" command family for
// saving, listing, and restoring session state outside the TUI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/atelier-dev/atelier/internal/config"
	"github.com/atelier-dev/atelier/internal/log"
	"github.com/atelier-dev/atelier/internal/session"
	"github.com/atelier-dev/atelier/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage session snapshots",
	Long: `Snapshots persist every mode's session state (inputs, outputs,
chat history) to a local database so a workspace can be resumed later.`,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots",
	RunE:  runSnapshotList,
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent snapshots",
	RunE:  runSnapshotPrune,
}

var (
	snapshotListLimit int
	snapshotPruneKeep int
)

func init() {
	snapshotListCmd.Flags().IntVar(&snapshotListLimit, "limit", 20, "Maximum snapshots to show")
	snapshotPruneCmd.Flags().IntVar(&snapshotPruneKeep, "keep", 10, "Snapshots to keep")

	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotPruneCmd)
}

// openSnapshots opens the snapshot database under the workspace root.
func openSnapshots() (*snapshot.Store, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	if err := os.MkdirAll(config.Dir(root), 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", config.Dir(root), err)
	}
	return snapshot.NewStore(filepath.Join(config.Dir(root), "atelier.db"))
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	snaps, err := openSnapshots()
	if err != nil {
		return err
	}
	defer snaps.Close()

	infos, err := snaps.List(snapshotListLimit)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	if len(infos) == 0 {
		fmt.Println("No snapshots saved yet. Press Ctrl+S inside the workspace to save one.")
		return nil
	}

	for _, info := range infos {
		fmt.Printf("  %s  %s  %d bytes\n", info.ID, info.TakenAt.Format("2006-01-02 15:04:05"), info.Size)
	}
	return nil
}

func runSnapshotPrune(cmd *cobra.Command, args []string) error {
	snaps, err := openSnapshots()
	if err != nil {
		return err
	}
	defer snaps.Close()

	if err := snaps.Prune(snapshotPruneKeep); err != nil {
		return fmt.Errorf("pruning snapshots: %w", err)
	}
	fmt.Printf("Kept the %d most recent snapshots.\n", snapshotPruneKeep)
	return nil
}

// restoreLatest loads the most recent snapshot into a store. The TUI
// calls this on startup when --resume is set.
func restoreLatest(store *session.Store, snaps *snapshot.Store, logger *log.Logger) error {
	blob, err := snaps.Latest()
	if err != nil {
		return err
	}
	if err := store.Restore(blob); err != nil {
		return err
	}
	if logger != nil {
		logger.Append(log.LogEvent{Event: log.EventSnapshotRestored})
	}
	return nil
}
