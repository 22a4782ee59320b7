package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// timeRounding keeps reported durations readable.
const timeRounding = 10 * time.Millisecond

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process all configured pages and spaces",
	Long: `Processes every enabled page and space in the registry
(see "brdingest pages"). This is the command to put on a schedule.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	processor, err := ensureProcessor()
	if err != nil {
		return err
	}

	cmd.Println("Processing configured pages...")

	report, err := processor.ProcessConfigured(cmd.Context())
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	printRunReport(cmd, report)
	if report.Failed > 0 {
		return fmt.Errorf("%d page(s) failed", report.Failed)
	}
	return nil
}
