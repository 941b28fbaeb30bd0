package report

import (
	"fmt"
	"strings"

	"ekiroute/pkg/batch"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	successStyle = cellStyle.Foreground(lipgloss.Color("42"))
	failStyle    = cellStyle.Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	yen = message.NewPrinter(language.Japanese)
)

// Headers of the terminal result table
var Headers = []string{"ID", "Origin", "Destination", "Distance (km)", "Time (min)", "Cost (¥)", "Status", "Legs"}

const statusColumn = 6

// FormatCost renders a cost with a yen sign and thousands separators, or the
// placeholder for failed rows.
func FormatCost(r batch.Result) string {
	if !r.OK() {
		return batch.Placeholder
	}
	return yen.Sprintf("¥%d", r.CostYen)
}

// Table renders results as a terminal table. The status cell is green for
// resolved rows and red for failed ones.
func Table(results []batch.Result, accent lipgloss.Color) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		legs := batch.Placeholder
		if len(r.Segments) > 0 {
			legs = fmt.Sprintf("%d", len(r.Segments))
		}
		rows = append(rows, []string{
			r.ID,
			r.OriginName,
			r.DestName,
			r.Distance(),
			r.Duration(),
			FormatCost(r),
			r.Status(),
			legs,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(accent)).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Foreground(accent)
			}
			if col == statusColumn && row >= 0 && row < len(results) {
				if results[row].OK() {
					return successStyle
				}
				return failStyle
			}
			return cellStyle
		})

	return t.Render()
}

// ProgressLine is a one-line status for a running batch.
func ProgressLine(p batch.Progress) string {
	mark := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("✓")
	if !p.Last.OK() {
		mark = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	}
	return fmt.Sprintf("[%d/%d] %s %s: %s -> %s", p.Done, p.Total, mark, p.Last.ID, p.Last.OriginName, p.Last.DestName)
}

// Summary counts resolved and failed rows.
func Summary(results []batch.Result) string {
	ok := 0
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	return fmt.Sprintf("%d rows: %d resolved, %d failed", len(results), ok, len(results)-ok)
}

// Steps renders the turn-by-turn legs of a resolved row, one per line, followed
// by the debug URL when there is one.
func Steps(r batch.Result) string {
	var b strings.Builder
	for i, s := range r.Segments {
		line := s.Mode
		if s.LineName != "" {
			line += " (" + s.LineName + ")"
		}
		fmt.Fprintf(&b, "%d. %s: %s -> %s\n", i+1, line, s.From, s.To)
	}
	if r.DebugURL != "" {
		b.WriteString(mutedStyle.Render("debug URL: "+r.DebugURL) + "\n")
	}
	return b.String()
}
