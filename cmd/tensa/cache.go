package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tensa/internal/driver"
)

const cacheApp = "tensa"

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := driver.OpenDiskCache(cacheApp)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		removed, err := cache.DropAll()
		if err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}
		quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached results\n", removed)
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}

// openCache returns nil, and runs uncached, when the cache directory is not
// usable.
func openCache(cmd *cobra.Command) *driver.DiskCache {
	cache, err := driver.OpenDiskCache(cacheApp)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache disabled: %v\n", err)
		return nil
	}
	return cache
}
