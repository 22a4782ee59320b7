package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driving"
)

var spaceCmd = &cobra.Command{
	Use:   "space [space-key]",
	Short: "Process and index every page in a space",
	Long: `Lists all pages in a Confluence space and processes each one.
Pages that fail are reported at the end without aborting the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runSpace,
}

func init() {
	rootCmd.AddCommand(spaceCmd)
}

func runSpace(cmd *cobra.Command, args []string) error {
	processor, err := ensureProcessor()
	if err != nil {
		return err
	}

	spaceKey := args[0]
	cmd.Printf("Processing space %s...\n", spaceKey)

	report, err := processor.ProcessSpace(cmd.Context(), spaceKey)
	if err != nil {
		return fmt.Errorf("process space %s: %w", spaceKey, err)
	}

	printRunReport(cmd, report)
	return nil
}

// printRunReport summarises a multi-page run.
func printRunReport(cmd *cobra.Command, report *driving.RunReport) {
	cmd.Printf("\nRun %s finished in %s:\n", report.RunID, report.FinishedAt.Sub(report.StartedAt).Round(timeRounding))
	cmd.Printf("  Indexed: %d\n", report.Indexed)
	cmd.Printf("  Skipped: %d\n", report.Skipped)
	cmd.Printf("  Failed:  %d\n", report.Failed)

	if report.Failed > 0 {
		cmd.Println("\nFailures:")
		for _, page := range report.Pages {
			if page.Outcome == driving.OutcomeFailed {
				cmd.Printf("  %s: %v\n", page.PageID, page.Err)
			}
		}
	}
}
