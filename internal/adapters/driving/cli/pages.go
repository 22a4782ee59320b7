package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Manage the registry of pages to process",
	Long:  `List, add, remove, or toggle the Confluence pages the run command processes.`,
}

var pagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured pages and spaces",
	Args:  cobra.NoArgs,
	RunE:  runPagesList,
}

var pagesAddCmd = &cobra.Command{
	Use:   "add [page-id] [name...]",
	Short: "Register a page for processing",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPagesAdd,
}

var pagesRemoveCmd = &cobra.Command{
	Use:   "remove [page-id]",
	Short: "Unregister a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPagesRemove,
}

var pagesEnableCmd = &cobra.Command{
	Use:   "enable [page-id]",
	Short: "Enable a page for run mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPagesSetEnabled(cmd, args[0], true)
	},
}

var pagesDisableCmd = &cobra.Command{
	Use:   "disable [page-id]",
	Short: "Disable a page without removing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPagesSetEnabled(cmd, args[0], false)
	},
}

func init() {
	pagesCmd.AddCommand(pagesListCmd)
	pagesCmd.AddCommand(pagesAddCmd)
	pagesCmd.AddCommand(pagesRemoveCmd)
	pagesCmd.AddCommand(pagesEnableCmd)
	pagesCmd.AddCommand(pagesDisableCmd)
	rootCmd.AddCommand(pagesCmd)
}

func runPagesList(cmd *cobra.Command, _ []string) error {
	store, err := ensurePageStore()
	if err != nil {
		return err
	}

	pages := store.Pages()
	spaces := store.Spaces()

	if len(pages) == 0 && len(spaces) == 0 {
		cmd.Println("No pages or spaces configured. Use \"brdingest pages add\" to register one.")
		return nil
	}

	if len(pages) > 0 {
		cmd.Println("Pages:")
		for _, page := range pages {
			cmd.Printf("  %s  %s%s\n", page.ID, page.Name, enabledSuffix(page.Enabled))
		}
	}
	if len(spaces) > 0 {
		cmd.Println("Spaces:")
		for _, space := range spaces {
			cmd.Printf("  %s  %s%s\n", space.Key, space.Name, enabledSuffix(space.Enabled))
		}
	}
	return nil
}

func enabledSuffix(enabled bool) string {
	if enabled {
		return ""
	}
	return "  (disabled)"
}

func runPagesAdd(cmd *cobra.Command, args []string) error {
	store, err := ensurePageStore()
	if err != nil {
		return err
	}

	pageID := args[0]
	name := strings.Join(args[1:], " ")

	if err := store.AddPage(pageID, name); err != nil {
		return fmt.Errorf("add page %s: %w", pageID, err)
	}

	cmd.Printf("Page %s registered.\n", pageID)
	return nil
}

func runPagesRemove(cmd *cobra.Command, args []string) error {
	store, err := ensurePageStore()
	if err != nil {
		return err
	}

	pageID := args[0]
	if err := store.RemovePage(pageID); err != nil {
		return fmt.Errorf("remove page %s: %w", pageID, err)
	}

	cmd.Printf("Page %s removed.\n", pageID)
	return nil
}

func runPagesSetEnabled(cmd *cobra.Command, pageID string, enabled bool) error {
	store, err := ensurePageStore()
	if err != nil {
		return err
	}

	verb := "enable"
	if !enabled {
		verb = "disable"
	}
	if err := store.SetPageEnabled(pageID, enabled); err != nil {
		return fmt.Errorf("%s page %s: %w", verb, pageID, err)
	}

	cmd.Printf("Page %s %sd.\n", pageID, verb)
	return nil
}
