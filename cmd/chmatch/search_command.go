package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chmatch/internal/matching"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var (
		incorporated string
		headquarters string
		limit        int
		noCache      bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Search the registry and show how each candidate scores",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			eng, err := ctx.newEngine(noCache)
			if err != nil {
				return err
			}
			defer eng.Close()

			result, err := eng.client.SearchByName(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search %q: %w", query, err)
			}
			ranked := eng.resolver.Scorer().Rank(result.Items, matching.Input{
				Name:              query,
				IncorporationDate: incorporated,
				Headquarters:      headquarters,
			})
			if limit > 0 && len(ranked) > limit {
				ranked = ranked[:limit]
			}
			if jsonOutput {
				return writeJSON(cmd, ranked)
			}

			out := cmd.OutOrStdout()
			if len(ranked) == 0 {
				fmt.Fprintf(out, "No companies found for %q\n", query)
				return nil
			}
			rows := make([][]string, 0, len(ranked))
			for _, s := range ranked {
				rows = append(rows, []string{
					s.Company.Number,
					s.Company.Name,
					s.Company.Status,
					s.Company.CreatedOn,
					s.Company.Address.Locality,
					strconv.Itoa(s.Breakdown.Name),
					strconv.Itoa(s.Breakdown.Date),
					strconv.Itoa(s.Breakdown.Location),
					strconv.Itoa(s.Breakdown.Total),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Number", "Name", "Status", "Incorporated", "Locality", "Name pts", "Date pts", "Loc pts", "Score"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				shouldColorize(out),
			))
			fmt.Fprintf(out, "%d of %d results\n", len(ranked), result.TotalResults)
			return nil
		},
	}

	cmd.Flags().StringVar(&incorporated, "incorporated", "", "Incorporation date to score against (YYYY-MM-DD)")
	cmd.Flags().StringVar(&headquarters, "hq", "", "Headquarters location to score against")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Show at most this many candidates (0 = all)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the registry response cache")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output scored candidates as JSON")
	return cmd
}
