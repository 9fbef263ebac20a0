package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"podium/internal/matching"
	"podium/internal/music"
	"podium/internal/recommend"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var minScore float64

	cmd := &cobra.Command{
		Use:   "match <page.html>",
		Short: "Match a recommendation page against the streaming catalog",
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
			return nil
		},
	}

	cmd.Flags().Float64Var(&minScore, "min-score", 0,
		"Minimum quality score a catalog match must reach (overrides config)")
	return cmd
}

func parseEntriesFile(rt *runtime, path string) ([]music.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recommendation page: %w", err)
	}
	parser := recommend.NewParser(rt.logger)
	return parser.ParseHTML(string(data)), nil
}

func printOutcomes(cmd *cobra.Command, outcomes []music.MatchOutcome) {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		row := []string{outcome.Entry.String(), "-", "-", "-"}
		switch {
		case outcome.Exact():
			row[1] = "exact"
		case outcome.Found():
			row[1] = "good"
		default:
			row[1] = "missing"
		}
		if outcome.Found() {
			row[2] = fmt.Sprintf("%s / %s", outcome.Album.Title, outcome.Album.PrimaryArtist())
			row[3] = strconv.FormatFloat(outcome.Score, 'f', 2, 64)
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderTable(
		[]string{"Entry", "Match", "Album", "Score"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))

	summary := matching.Summarize(outcomes)
	fmt.Fprintf(out, "\n%d entries: %d exact, %d good, %d missing\n",
		summary.Total, summary.Exact, summary.Good, summary.Missing)
}
