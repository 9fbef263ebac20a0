package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"podium/internal/matchcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Result cache utilities",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCacheExpireCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Path", stats.Path},
				{"Size", fmt.Sprintf("%.2f MiB", float64(stats.SizeBytes)/(1024*1024))},
				{"Marketplace lookups", strconv.Itoa(stats.LookupEntries)},
				{"Catalog searches", strconv.Itoa(stats.SearchEntries)},
				{"Total entries", strconv.Itoa(stats.TotalEntries())},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(cmd.Context(), matchcache.Category(category)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s cache entries\n", category)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", string(matchcache.CategoryAll),
		"Which entries to clear: all, lookups, or searches")
	return cmd
}

func newCacheExpireCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Delete entries older than their freshness window",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openCache()
			if err != nil {
				return err
			}
			defer store.Close()

			lookups, searches, err := store.Expire(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expired %d marketplace lookups and %d catalog searches\n",
				lookups, searches)
			return nil
		},
	}
}
