// ABOUTME: Terminal rendering of comparison reports as a styled table.
// ABOUTME: Matched rows are green, missing rows red, followed by a summary line.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/2389-research/sectiondiff/internal/models"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	matchedStyle = cellStyle.Foreground(lipgloss.Color("82"))
	missingStyle = cellStyle.Foreground(lipgloss.Color("196"))
	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TableOptions controls table rendering.
type TableOptions struct {
	// Plain disables colors, e.g. when output is not a terminal.
	Plain bool
	// Width caps the table width; 0 leaves it unbounded.
	Width int
}

// StatusLabel returns the display label with a leading symbol.
func StatusLabel(s models.Status) string {
	if s == models.StatusMatched {
		return "✔ " + s.String()
	}
	return "✘ " + s.String()
}

// RenderTable formats a report for the terminal.
func RenderTable(r *models.Report, opts TableOptions) string {
	rows := make([][]string, len(r.Records))
	for i, rec := range r.Records {
		rows[i] = []string{rec.HeadingA, rec.HeadingB, FormatScore(rec.Score), StatusLabel(rec.Status)}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if opts.Plain {
				return cellStyle
			}
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(r.Records) {
				return cellStyle
			}
			if r.Records[row].Status == models.StatusMatched {
				return matchedStyle
			}
			return missingStyle
		})
	if opts.Width > 0 {
		t = t.Width(opts.Width)
	}

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")
	summary := Summary(r)
	if opts.Plain {
		sb.WriteString(summary)
	} else {
		sb.WriteString(summaryStyle.Render(summary))
	}
	sb.WriteString("\n")
	return sb.String()
}

// Summary describes record counts in one line.
func Summary(r *models.Report) string {
	matched, inB, inA := r.Summary()
	return fmt.Sprintf("%d matched, %d missing in B, %d missing in A (threshold %.2f, %s)",
		matched, inB, inA, r.Threshold, r.Mode)
}
