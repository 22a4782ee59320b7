package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the fingerprint cache",
	Long: `The cache records the last indexed version and content fingerprint of
each page so unchanged pages can be skipped. Clearing it forces the next
run to reprocess everything.`,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache summary",
	Args:  cobra.NoArgs,
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cache entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStatus(cmd *cobra.Command, _ []string) error {
	store, err := ensureCacheStore()
	if err != nil {
		return err
	}

	status, err := store.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("cache status: %w", err)
	}

	cmd.Printf("Cache: %s\n", status.Path)
	cmd.Printf("  Entries: %d\n", status.Entries)
	if status.Entries > 0 {
		cmd.Printf("  Oldest indexed: %s\n", status.OldestIndexedAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Printf("  Newest indexed: %s\n", status.NewestIndexedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	store, err := ensureCacheStore()
	if err != nil {
		return err
	}

	removed, err := store.Clear(cmd.Context())
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}

	cmd.Printf("Removed %d cache entries.\n", removed)
	return nil
}
