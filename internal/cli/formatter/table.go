package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column is a table header. Right-aligned columns suit numbers.
type Column struct {
	Title string
	Right bool
}

// Cols builds left-aligned columns from titles.
func Cols(titles ...string) []Column {
	out := make([]Column, len(titles))
	for i, t := range titles {
		out[i] = Column{Title: t}
	}
	return out
}

// RenderTable renders an aligned table with a header separator line.
// Widths are measured on visible text, so styled cells line up.
func RenderTable(cols []Column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.Title)
	}
	for _, row := range rows {
		for i := 0; i < len(cols) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2
	var b strings.Builder

	writeRow := func(cells []string, style func(string) string) {
		for i, c := range cols {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if pad < 0 {
				pad = 0
			}
			if c.Right {
				b.WriteString(strings.Repeat(" ", pad))
			}
			b.WriteString(style(cell))
			if i < len(cols)-1 {
				if !c.Right {
					b.WriteString(strings.Repeat(" ", pad))
				}
				b.WriteString(strings.Repeat(" ", colGap))
			}
		}
		b.WriteString("\n")
	}

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.Title
	}
	writeRow(titles, func(s string) string { return StyleHeader.Render(s) })

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < len(cols)-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteString("\n")

	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}
