package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cbridge/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the output cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached module",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenOutputCache("cbridge")
		if err != nil {
			return fmt.Errorf("failed to open output cache: %w", err)
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("failed to clean output cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "output cache cleaned")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
}
