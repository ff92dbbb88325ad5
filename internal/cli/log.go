// log.go implements the "atelier log" command for inspecting the
// structured event log.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atelier-dev/atelier/internal/log"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent workspace events",
	RunE:  runLog,
}

var logLimit int

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "Maximum events to show")
}

func runLog(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	logger, err := log.NewLogger(root)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	events, err := logger.ReadAll()
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No events logged yet.")
		return nil
	}

	start := 0
	if logLimit > 0 && len(events) > logLimit {
		start = len(events) - logLimit
	}
	for _, ev := range events[start:] {
		line := fmt.Sprintf("%s  %-18s", ev.Time.Format("2006-01-02 15:04:05"), ev.Event)
		if ev.Mode != "" {
			line += "  mode=" + ev.Mode
		}
		if ev.Provider != "" {
			line += "  provider=" + ev.Provider
		}
		if ev.Reason != "" {
			line += "  reason=" + ev.Reason
		}
		if ev.Error != "" {
			line += "  error=" + ev.Error
		}
		fmt.Println(line)
	}
	return nil
}
