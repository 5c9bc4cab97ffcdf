package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chmatch/internal/config"
	"chmatch/internal/matching"
	"chmatch/internal/records"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		name         string
		crn          string
		fallback     string
		incorporated string
		headquarters string
		noCache      bool
		jsonOutput   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a single record without a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" && strings.TrimSpace(crn) == "" && strings.TrimSpace(fallback) == "" {
				return errors.New("provide --name, --crn or --fallback")
			}
			eng, err := ctx.newEngine(noCache)
			if err != nil {
				return err
			}
			defer eng.Close()

			rec := adHocRecord(eng.cfg.Fields, map[records.Field]string{
				records.FieldIdentifier:        crn,
				records.FieldPrimaryName:       name,
				records.FieldFallbackName:      fallback,
				records.FieldIncorporationDate: incorporated,
				records.FieldHeadquarters:      headquarters,
			})
			outcome := eng.resolver.Resolve(cmd.Context(), rec)
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, outcome)
			}
			printOutcome(cmd.OutOrStdout(), outcome, shouldColorize(cmd.OutOrStdout()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Registered company name")
	cmd.Flags().StringVar(&crn, "crn", "", "Company registration number")
	cmd.Flags().StringVar(&fallback, "fallback", "", "Organisation or trading name to try when the name fails")
	cmd.Flags().StringVar(&incorporated, "incorporated", "", "Incorporation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&headquarters, "hq", "", "Headquarters location")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the registry response cache")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the outcome as JSON")
	return cmd
}

// adHocRecord builds a one-row record whose headers are the first configured
// alias of each field.
func adHocRecord(fields config.Fields, values map[records.Field]string) records.Record {
	aliases := map[records.Field][]string{
		records.FieldIdentifier:        fields.Identifier,
		records.FieldPrimaryName:       fields.PrimaryName,
		records.FieldFallbackName:      fields.FallbackName,
		records.FieldIncorporationDate: fields.IncorporationDate,
		records.FieldHeadquarters:      fields.Headquarters,
	}
	order := []records.Field{
		records.FieldIdentifier,
		records.FieldPrimaryName,
		records.FieldFallbackName,
		records.FieldIncorporationDate,
		records.FieldHeadquarters,
	}
	headers := make([]string, 0, len(order))
	cells := make([]string, 0, len(order))
	for _, field := range order {
		if len(aliases[field]) == 0 {
			continue
		}
		headers = append(headers, aliases[field][0])
		cells = append(cells, strings.TrimSpace(values[field]))
	}
	return records.New(1, headers, cells)
}

func printOutcome(w io.Writer, out matching.Outcome, colorize bool) {
	kind := matchKind(out)
	fmt.Fprintln(w, renderStatusLine("Match", kind, string(out.MatchType), colorize))
	fmt.Fprintln(w, renderStatusLine("Confidence", kind, strconv.Itoa(out.Confidence), colorize))
	fmt.Fprintln(w, renderStatusLine("Needs review", kind, yesNo(out.NeedsReview), colorize))
	if out.Tier != "" && out.Tier != matching.TierNone {
		fmt.Fprintln(w, renderStatusLine("Tier", statusInfo, string(out.Tier), colorize))
	}
	if out.Query != "" {
		fmt.Fprintln(w, renderStatusLine("Query", statusInfo, out.Query, colorize))
	}
	if out.Err != "" {
		fmt.Fprintln(w, renderStatusLine("Error", statusError, out.Err, colorize))
	}
	if out.Resolved != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderTable(
			[]string{"Field", "Value"},
			resolvedRows(*out.Resolved),
			nil,
			colorize,
		))
	}
	if len(out.Candidates) > 0 {
		rows := make([][]string, 0, len(out.Candidates))
		for _, c := range out.Candidates {
			rows = append(rows, []string{c.Number, c.Name, c.Status, c.IncorporatedOn, c.Locality})
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderTable([]string{"Number", "Name", "Status", "Incorporated", "Locality"}, rows, nil, colorize))
	}
}

func resolvedRows(r matching.Resolved) [][]string {
	rows := [][]string{
		{"Name", r.Name},
		{"Number", r.Number},
		{"Status", r.Status},
		{"Incorporated", r.IncorporatedOn},
		{"Dissolved", r.DissolvedOn},
		{"Type", r.Type},
		{"SIC codes", r.SICCodes},
		{"Previous names", r.PreviousNames},
		{"Locality", r.Locality},
		{"Postcode", r.Postcode},
	}
	kept := rows[:0]
	for _, row := range rows {
		if row[1] != "" {
			kept = append(kept, row)
		}
	}
	return kept
}
