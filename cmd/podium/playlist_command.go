package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"podium/internal/playlist"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	var (
		name     string
		minScore float64
	)

	cmd := &cobra.Command{
		Use:   "playlist <page.html>",
		Short: "Match a recommendation page and build a playlist from the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if cmd.Flags().Changed("min-score") {
				if err := rt.setMinScore(minScore); err != nil {
					return err
				}
			}

			entries, err := parseEntriesFile(rt, args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no entries found in %s", args[0])
			}

			outcomes := rt.orch.ProcessBatch(cmd.Context(), entries)
			printOutcomes(cmd, outcomes)

			builder, err := playlist.NewBuilder(rt.catalog, rt.logger)
			if err != nil {
				return err
			}
			result, err := builder.Build(cmd.Context(), name, outcomes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nPlaylist %s: %d albums (%d tracks) added",
				result.PlaylistID, result.AlbumsAdded, result.TracksAdded)
			if result.Skipped > 0 {
				fmt.Fprintf(out, ", %d skipped", result.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "Classical Recommendations", "Playlist name")
	cmd.Flags().Float64Var(&minScore, "min-score", 0,
		"Minimum quality score a catalog match must reach (overrides config)")
	return cmd
}
