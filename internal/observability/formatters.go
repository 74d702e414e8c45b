// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/swzro/builders/internal/pipeline"
	"github.com/swzro/builders/internal/types"
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

func clip(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = clip(line, inner)
		pad := inner - utf8.RuneCountInString(line)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", pad))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProgress outputs one pipeline progress event on a single line.
//
//nolint:errcheck
func (p *Printer) PrintProgress(ev pipeline.ProgressEvent) {
	if ev.Source != "" {
		fmt.Fprintf(p.out, "[%s/%s] %s\n", ev.Step, ev.Source, ev.Message)
		return
	}
	fmt.Fprintf(p.out, "[%s] %s\n", ev.Step, ev.Message)
}

// PrintSources outputs the extracted sources with their detected types and text sizes.
func (p *Printer) PrintSources(items []types.SourceItem) {
	if len(items) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		sb.WriteString(fmt.Sprintf("• %s\n", item.Provenance))
		sb.WriteString(fmt.Sprintf("    %s, %s, %d chars\n", item.Kind, item.DetectedType, utf8.RuneCountInString(item.Text)))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(items)-maxItemsToShow))
	}

	p.printBox("SOURCES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcome outputs a human-readable summary of a pipeline outcome.
func (p *Printer) PrintOutcome(outcome *types.PipelineOutcome) {
	if outcome == nil || outcome.Draft == nil {
		return
	}
	d := outcome.Draft

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:     %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("Category:  %s\n", d.Category.Label()))

	end := "ongoing"
	if d.DurationEnd != nil {
		end = *d.DurationEnd
	}
	sb.WriteString(fmt.Sprintf("Duration:  %s → %s\n", d.DurationStart, end))
	if len(d.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("Tags:      %s\n", strings.Join(d.Tags, ", ")))
	}

	sb.WriteString("\n")
	sb.WriteString(clip(d.Description, 3*(boxWidth-4)))
	sb.WriteString("\n")

	if len(d.SourceURLs) > 0 {
		sb.WriteString("\nSources:\n")
		for _, u := range d.SourceURLs {
			sb.WriteString(fmt.Sprintf("  • %s\n", u))
		}
	}

	if outcome.Advisory != "" {
		sb.WriteString(fmt.Sprintf("\n⚠ %s\n", outcome.Advisory))
	}

	p.printBox("DRAFT", strings.TrimSuffix(sb.String(), "\n"))
}
