package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chmatch/internal/batch"
	"chmatch/internal/config"
	"chmatch/internal/postcodes"
	"chmatch/internal/preflight"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		inputPath     string
		sheet         string
		outputPath    string
		limit         int
		noPostcodes   bool
		noCache       bool
		skipPreflight bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Match every row of a workbook against Companies House",
		Long: "Resolve each record of the input sheet to a registered company, " +
			"write the annotated workbook, and record the run in the local store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := expandRequired("input", inputPath)
			if err != nil {
				return err
			}
			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = defaultOutputPath(input)
			} else if output, err = expandRequired("output", output); err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			eng, err := ctx.newEngine(noCache)
			if err != nil {
				return err
			}
			defer eng.Close()
			if noPostcodes {
				eng.cfg.Postcodes.Enabled = false
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			if !skipPreflight {
				results := preflight.RunAll(cmd.Context(), eng.cfg, preflight.Paths{Input: input, Output: output}, eng.client)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, line := range preflightLines(results, colorize) {
					fmt.Fprintln(out, line)
				}
				if err := preflight.Err(results); err != nil {
					return err
				}
			}

			opts := []batch.Option{
				batch.WithStore(eng.store),
				batch.WithLogger(eng.logger),
			}
			if eng.cfg.Postcodes.Enabled {
				districts, err := postcodes.NewFromConfig(eng.cfg.Postcodes, eng.logger)
				if err != nil {
					return err
				}
				opts = append(opts, batch.WithDistricts(districts))
			}
			if isTerminal(os.Stderr) {
				opts = append(opts, batch.WithProgressWriter(os.Stderr))
			}
			runner := batch.NewRunner(eng.cfg, eng.resolver, eng.accessor, opts...)

			report, runErr := runner.Run(cmd.Context(), batch.Job{
				InputPath:  input,
				Sheet:      sheet,
				OutputPath: output,
				Limit:      limit,
			})
			if report != nil {
				for _, line := range summaryLines(report, colorize) {
					fmt.Fprintln(out, line)
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input workbook (.xlsx)")
	cmd.Flags().StringVarP(&sheet, "sheet", "s", "", "Worksheet to read (default: active sheet)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook (default: <input>_validated.xlsx)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Process at most this many rows (0 = all)")
	cmd.Flags().BoolVar(&noPostcodes, "no-postcodes", false, "Skip headquarters enrichment from postcodes.io")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the registry response cache")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip directory, file and API checks")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func expandRequired(flag, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("--%s is required", flag)
	}
	path, err := config.ExpandPath(value)
	if err != nil {
		return "", fmt.Errorf("resolve --%s: %w", flag, err)
	}
	return path, nil
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_validated.xlsx"
}

func summaryLines(report *batch.Report, colorize bool) []string {
	lines := renderSectionHeader("Validation summary", colorize)
	if report.Run != nil {
		lines = append(lines, renderStatusLine("Run", statusInfo, report.Run.ID, colorize))
	}
	tally := report.Tally
	lines = append(lines,
		renderStatusLine("Processed", statusInfo, strconv.Itoa(tally.Processed), colorize),
		renderStatusLine("Matched", statusOK, strconv.Itoa(tally.Matched), colorize),
	)
	reviewKind := statusOK
	if tally.NeedsReview > 0 {
		reviewKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Needs review", reviewKind, strconv.Itoa(tally.NeedsReview), colorize))
	errorKind := statusOK
	if tally.Errors > 0 {
		errorKind = statusError
	}
	lines = append(lines, renderStatusLine("Errors", errorKind, strconv.Itoa(tally.Errors), colorize))

	counts := tally.Counts()
	types := make([]string, 0, len(counts))
	for k := range counts {
		types = append(types, k)
	}
	slices.Sort(types)
	for _, k := range types {
		lines = append(lines, renderStatusLine("  "+k, statusInfo, strconv.Itoa(counts[k]), colorize))
	}
	if report.Cancelled {
		lines = append(lines, renderStatusLine("Status", statusWarn, "cancelled; output holds processed rows only", colorize))
	}
	lines = append(lines,
		renderStatusLine("Output", statusInfo, report.OutputPath, colorize),
		renderStatusLine("Duration", statusInfo, report.Duration.Round(time.Millisecond).String(), colorize),
	)
	return lines
}
