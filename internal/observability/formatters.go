// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/chaos-engine/internal/bulk"
	"github.com/jonathan/chaos-engine/internal/humanize"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// PrintRiskReport outputs the score, tier and the first few issues.
func (p *Printer) PrintRiskReport(report *humanize.RiskReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score:        %d/100 (%s)\n", report.Score, report.RiskLevel)
	fmt.Fprintf(&sb, "Marked terms: %d\n", report.MarkedTerms)
	fmt.Fprintf(&sb, "Burstiness:   %.1f%%", report.Burstiness.Score)

	if len(report.Issues) > 0 {
		sb.WriteString("\n\nIssues:")
		count := min(len(report.Issues), maxItemsToShow)
		for i := 0; i < count; i++ {
			fmt.Fprintf(&sb, "\n  • %s", report.Issues[i])
			if i < len(report.Recommendations) {
				fmt.Fprintf(&sb, "\n    → %s", report.Recommendations[i])
			}
		}
		if len(report.Issues) > maxItemsToShow {
			fmt.Fprintf(&sb, "\n  ... and %d more", len(report.Issues)-maxItemsToShow)
		}
	}

	p.printBox("DETECTION RISK", sb.String())
}

// PrintBurstiness outputs the sentence-length statistics.
func (p *Printer) PrintBurstiness(b humanize.Burstiness) {
	verdict := "uniform"
	if b.IsHumanLike {
		verdict = "human-like"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Sentences:  %d\n", b.Sentences)
	fmt.Fprintf(&sb, "Mean words: %.1f\n", b.Mean)
	fmt.Fprintf(&sb, "Std dev:    %.1f\n", b.StdDev)
	fmt.Fprintf(&sb, "Score:      %.1f%% (%s)", b.Score, verdict)

	p.printBox("BURSTINESS", sb.String())
}

// PrintResult outputs which stages ran and how much was replaced.
func (p *Printer) PrintResult(result *humanize.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Passes:       %d\n", result.PassesApplied)
	fmt.Fprintf(&sb, "Stages:       %s\n", strings.Join(result.Stages, " → "))
	fmt.Fprintf(&sb, "Replacements: %d\n", result.Replacements)
	fmt.Fprintf(&sb, "Output words: %d", len(strings.Fields(result.Text)))

	p.printBox("HUMANIZE RESULT", sb.String())
}

// PrintProgress writes one line per job transition.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(event bulk.ProgressEvent) {
	line := fmt.Sprintf("[%-10s] %s", event.Status, event.Keyword)
	if event.Message != "" {
		line += ": " + event.Message
	}
	fmt.Fprintln(p.out, line)
}

// PrintBulkSummary outputs the per-status totals of a bulk run.
func (p *Printer) PrintBulkSummary(summary *bulk.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Total:     %d\n", summary.Total)
	fmt.Fprintf(&sb, "Published: %d\n", summary.Published)
	fmt.Fprintf(&sb, "Ready:     %d\n", summary.Ready)
	fmt.Fprintf(&sb, "Failed:    %d\n", summary.Failed)
	fmt.Fprintf(&sb, "Pending:   %d", summary.Pending)
	if summary.Fallbacks > 0 {
		fmt.Fprintf(&sb, "\nFallbacks: %d", summary.Fallbacks)
	}

	p.printBox("BULK RUN", sb.String())
}
