package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"chmatch/internal/matching"
	"chmatch/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Needs review", statusWarn, "3", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Needs review:", "[WARN] 3")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Matched", statusOK, "12", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestPreflightLines(t *testing.T) {
	lines := preflightLines([]preflight.Result{
		{Name: "Data directory", Passed: true, Detail: "/tmp/data (read/write ok)"},
		{Name: "Input workbook", Detail: "in.xlsx (error: does not exist)"},
	}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK]") || !strings.Contains(lines[1], "[ERROR] in.xlsx") {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestMatchKind(t *testing.T) {
	tests := []struct {
		name string
		out  matching.Outcome
		want statusKind
	}{
		{"confident match", matching.Outcome{MatchType: matching.MatchID, Confidence: 10}, statusOK},
		{"review", matching.NoMatch(), statusWarn},
		{"error", matching.ErrorOutcome(io.ErrUnexpectedEOF), statusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchKind(tt.out); got != tt.want {
				t.Fatalf("matchKind = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil, false)
	if !strings.Contains(out, "only") || !strings.Contains(out, "B") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestRenderTableKeepsHeaderCase(t *testing.T) {
	out := renderTable([]string{"Name pts", "Score"}, [][]string{{"7", "10"}}, nil, false)
	if !strings.Contains(out, "Name pts") || !strings.Contains(out, "Score") {
		t.Fatalf("expected mixed-case headers:\n%s", out)
	}
	if strings.Contains(out, "SCORE") {
		t.Fatalf("header was upper-cased:\n%s", out)
	}
}
