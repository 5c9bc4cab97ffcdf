package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"chmatch/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded validation runs",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []*store.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					string(run.Status),
					fmt.Sprintf("%d/%d", run.Processed, run.Total),
					strconv.Itoa(run.NeedsReview),
					strconv.Itoa(run.Errors),
					run.InputPath,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Status", "Processed", "Review", "Errors", "Input"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				shouldColorize(out),
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output runs as JSON")
	return cmd
}

type runDetail struct {
	Run      *store.Run            `json:"run"`
	Outcomes []store.OutcomeRecord `json:"outcomes"`
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var reviewOnly bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run and its per-row outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				if errors.Is(err, store.ErrAmbiguousRunID) {
					return fmt.Errorf("run id %q matches more than one run; use more characters", args[0])
				}
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			outcomes, err := st.ListOutcomes(cmd.Context(), run.ID, reviewOnly)
			if err != nil {
				return err
			}
			if jsonOutput {
				if outcomes == nil {
					outcomes = []store.OutcomeRecord{}
				}
				return writeJSON(cmd, runDetail{Run: run, Outcomes: outcomes})
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printRun(out, run, colorize)
			if len(outcomes) == 0 {
				fmt.Fprintln(out, "No outcomes recorded")
				return nil
			}
			rows := make([][]string, 0, len(outcomes))
			for _, rec := range outcomes {
				o := rec.Outcome
				company, number := "", ""
				if o.Resolved != nil {
					company, number = o.Resolved.Name, o.Resolved.Number
				}
				rows = append(rows, []string{
					strconv.Itoa(rec.Row),
					string(o.MatchType),
					strconv.Itoa(o.Confidence),
					yesNo(o.NeedsReview),
					number,
					company,
					o.Err,
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"Row", "Match", "Conf", "Review", "Number", "Company", "Error"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
				colorize,
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reviewOnly, "review-only", false, "Only show rows flagged for manual review")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run as JSON")
	return cmd
}

func printRun(w io.Writer, run *store.Run, colorize bool) {
	for _, line := range renderSectionHeader("Run "+run.ID, colorize) {
		fmt.Fprintln(w, line)
	}
	kind := statusOK
	switch run.Status {
	case store.RunFailed:
		kind = statusError
	case store.RunCancelled, store.RunRunning:
		kind = statusWarn
	}
	fmt.Fprintln(w, renderStatusLine("Status", kind, string(run.Status), colorize))
	fmt.Fprintln(w, renderStatusLine("Input", statusInfo, run.InputPath, colorize))
	if run.Sheet != "" {
		fmt.Fprintln(w, renderStatusLine("Sheet", statusInfo, run.Sheet, colorize))
	}
	fmt.Fprintln(w, renderStatusLine("Output", statusInfo, run.OutputPath, colorize))
	fmt.Fprintln(w, renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(time.DateTime), colorize))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintln(w, renderStatusLine("Duration", statusInfo, run.Duration().Round(time.Millisecond).String(), colorize))
	}
	fmt.Fprintln(w, renderStatusLine("Processed", statusInfo, fmt.Sprintf("%d/%d", run.Processed, run.Total), colorize))
	fmt.Fprintln(w, renderStatusLine("Needs review", statusInfo, strconv.Itoa(run.NeedsReview), colorize))
	fmt.Fprintln(w, renderStatusLine("Errors", statusInfo, strconv.Itoa(run.Errors), colorize))
	if run.ErrorMessage != "" {
		fmt.Fprintln(w, renderStatusLine("Message", statusWarn, run.ErrorMessage, colorize))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
