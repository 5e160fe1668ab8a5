package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"budgetflow/internal/chart"
	"budgetflow/internal/core"
)

var (
	ColorBorder = lipgloss.Color("#575653")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorMuted  = lipgloss.Color("#878580")
	ColorAccent = lipgloss.Color("#E694FF")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().Foreground(ColorText)
	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	goodStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	badStyle   = lipgloss.NewStyle().Foreground(ColorRed)
	barStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
)

// Table is a bordered text table. The first column is left aligned, the
// rest right aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(50).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < numCols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	line := func(left, mid, right string) string {
		parts := make([]string, numCols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return mutedStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
	}
	cells := func(row []string, style lipgloss.Style) string {
		var b strings.Builder
		b.WriteString(mutedStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i == 0 {
				b.WriteString(style.Render(" " + cell + pad + " "))
			} else {
				b.WriteString(style.Render(" " + pad + cell + " "))
			}
			b.WriteString(mutedStyle.Render("│"))
		}
		return b.String() + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(line("╭", "┬", "╮"))
	if len(t.Headers) > 0 {
		b.WriteString(cells(t.Headers, headerStyle))
		b.WriteString(line("├", "┼", "┤"))
	}
	for _, row := range t.Rows {
		b.WriteString(cells(row, valueStyle))
	}
	b.WriteString(line("╰", "┴", "╯"))
	return b.String()
}

// RenderSummary renders the three headline metrics. A negative remaining
// budget is highlighted as an overspend.
func RenderSummary(s core.Summary, currency string) string {
	remaining := goodStyle.Render(core.FormatAmount(s.RemainingBudget, currency))
	if s.Overspent() {
		remaining = badStyle.Render(core.FormatAmount(s.RemainingBudget, currency) + " (overspent)")
	}
	rows := []string{
		fmt.Sprintf("  %s %s", mutedStyle.Render("Total Budget:    "), valueStyle.Render(core.FormatAmount(s.TotalBudget, currency))),
		fmt.Sprintf("  %s %s", mutedStyle.Render("Total Expense:   "), valueStyle.Render(core.FormatAmount(s.TotalExpense, currency))),
		fmt.Sprintf("  %s %s", mutedStyle.Render("Remaining Budget:"), remaining),
	}
	return strings.Join(rows, "\n") + "\n"
}

// RenderFlowTable lists every link of the flow chart.
func RenderFlowTable(f chart.Flow, currency string) string {
	rows := make([][]string, 0, f.Links())
	for i := 0; i < f.Links(); i++ {
		rows = append(rows, []string{f.Labels[f.Source[i]], f.Labels[f.Target[i]], core.FormatAmount(f.Value[i], currency)})
	}
	return RenderTable(Table{Title: "Budget flow", Headers: []string{"From", "To", "Amount"}, Rows: rows})
}

// RenderBarChart draws one horizontal bar per category, scaled to width.
func RenderBarChart(bc chart.BarChart, currency string, width int) string {
	if width < 10 {
		width = 10
	}
	labelWidth := 0
	for _, bar := range bc.Bars {
		labelWidth = max(labelWidth, lipgloss.Width(bar.Label))
	}

	var b strings.Builder
	b.WriteString("  " + headerStyle.Render("Budget by category") + "\n")
	for _, bar := range bc.Bars {
		n := bar.Width * width / 100
		fmt.Fprintf(&b, "  %-*s %s%s %s %s\n",
			labelWidth, bar.Label,
			barStyle.Render(strings.Repeat("█", n)),
			strings.Repeat(" ", width-n),
			valueStyle.Render(core.FormatAmount(bar.Value, currency)),
			mutedStyle.Render("("+bar.Share+"%)"))
	}
	return b.String()
}
