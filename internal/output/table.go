// Package output renders run summaries for humans. JSON rendering lives in
// the command layer; this package owns the table form.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/instance-scheduler/internal/models"
)

// ANSI color codes for outcome status (used when Colored=true).
const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[0;31m"
	ansiGreen = "\033[0;32m"
)

// TableOptions controls how RenderTable renders outcomes.
type TableOptions struct {
	// Colored wraps outcome status labels with ANSI codes.
	// Default false (CI-safe).
	Colored bool
}

// RenderTable writes the run header and a per-transition outcome table to w.
func RenderTable(w io.Writer, summary *models.RunSummary, opts TableOptions) {
	fmt.Fprintf(
		w,
		"Profile: %-20s  Account: %-14s  Evaluated: %d  Attempted: %d  Succeeded: %d  Failed: %d  Skipped: %d\n",
		summary.Profile,
		summary.AccountID,
		summary.ResourcesEvaluated,
		summary.TransitionsAttempted,
		summary.Succeeded,
		summary.Failed,
		summary.Skipped,
	)
	if summary.DryRun {
		fmt.Fprintln(w, "Dry run: no transitions were issued.")
	}

	if len(summary.Outcomes) == 0 {
		fmt.Fprintln(w, "No transitions needed.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-42s  %-14s  %-15s  %-22s  %-8s  %s\n",
		"RESOURCE ID", "TYPE", "REGION", "TRANSITION", "STATUS", "ERROR")
	fmt.Fprintln(w, strings.Repeat("-", 118))
	for _, o := range summary.Outcomes {
		fmt.Fprintf(w, "%-42s  %-14s  %-15s  %-22s  %s  %s\n",
			truncateField(o.ResourceID, 42),
			string(o.ResourceType),
			o.Region,
			fmt.Sprintf("%s -> %s", o.From, o.To),
			statusCell(o, 8, opts.Colored),
			truncateField(o.Error, 60),
		)
	}
}

// statusCell returns OK/FAILED padded to width characters. When colored,
// ANSI codes wrap only the text; trailing padding spaces stay plain so
// subsequent columns align regardless of terminal ANSI support.
func statusCell(o models.TransitionOutcome, width int, colored bool) string {
	text, code := "OK", ansiGreen
	if !o.OK() {
		text, code = "FAILED", ansiRed
	}
	if !colored {
		return fmt.Sprintf("%-*s", width, text)
	}
	spaces := width - len(text)
	if spaces < 0 {
		spaces = 0
	}
	return code + text + ansiReset + strings.Repeat(" ", spaces)
}

// truncateField shortens s to at most max bytes for ID/label columns.
// A single-char ellipsis replaces the last byte when truncation occurs.
func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
