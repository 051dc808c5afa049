package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bridge/internal/store"
)

// cacheCmd groups the fetch cache commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the catalogue fetch cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached catalogue document",
	Args:  cobra.NoArgs,
	RunE:  clearCache,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

func clearCache(cmd *cobra.Command, args []string) error {
	if cfg.Cache.Path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "cache is in memory only; nothing to clear")
		return nil
	}
	s, err := store.NewFetchStore(cfg.Cache.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.Count()
	if err != nil {
		return err
	}
	if err := s.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries from %s\n", n, s.Path())
	return nil
}
