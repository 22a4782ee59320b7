package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brdingest-cli/internal/core/ports/driving"
)

var pageCmd = &cobra.Command{
	Use:   "page [page-id]",
	Short: "Process and index a single page",
	Long: `Fetches one Confluence page, parses it into a requirements document,
and publishes its index records. Unchanged pages are skipped unless
--force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runPage,
}

func init() {
	rootCmd.AddCommand(pageCmd)
}

func runPage(cmd *cobra.Command, args []string) error {
	processor, err := ensureProcessor()
	if err != nil {
		return err
	}

	pageID := args[0]
	cmd.Printf("Processing page %s...\n", pageID)

	res, err := processor.ProcessPage(cmd.Context(), pageID)
	if err != nil {
		return fmt.Errorf("process page %s: %w", pageID, err)
	}

	printPageResult(cmd, res)
	return nil
}

// printPageResult reports a single page outcome.
func printPageResult(cmd *cobra.Command, res *driving.PageResult) {
	switch res.Outcome {
	case driving.OutcomeIndexed:
		if res.Reason == "dry-run" {
			cmd.Printf("Page %s: would index %d records (dry run).\n", res.PageID, res.Records)
		} else {
			cmd.Printf("Page %s: indexed %d records.\n", res.PageID, res.Records)
		}
	case driving.OutcomeSkipped:
		cmd.Printf("Page %s: skipped (%s).\n", res.PageID, res.Reason)
	case driving.OutcomeFailed:
		cmd.Printf("Page %s: failed: %v\n", res.PageID, res.Err)
	}
}
