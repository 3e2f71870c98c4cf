package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. Numeric columns are right-aligned.
type Column struct {
	Title   string
	Numeric bool
}

// Table accumulates rows and renders them as an aligned plain-text table.
// Column widths grow to the widest cell, so nothing is ever truncated:
// operators paste job names and image references into bug reports and a
// clipped value defeats that.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow appends one row. Missing cells render empty; extra cells are
// dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	t.rows = append(t.rows, row)
}

// Render produces the table: an inverse-video header row followed by one
// line per row, columns separated by a single space.
func (t *Table) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	widths := t.columnWidths()

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(t.formatRow(headerCells(t.columns), widths)))
	b.WriteString("\n")

	for _, row := range t.rows {
		b.WriteString(t.formatRow(row, widths))
		b.WriteString("\n")
	}

	return b.String()
}

// columnWidths computes each column's width as the widest of its header
// and cells. lipgloss.Width ignores ANSI escapes, so styled cells don't
// skew alignment.
func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	for i, c := range t.columns {
		widths[i] = lipgloss.Width(c.Title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t *Table) formatRow(cells []string, widths []int) string {
	parts := make([]string, len(t.columns))
	for i := range t.columns {
		if t.columns[i].Numeric {
			parts[i] = padLeft(cells[i], widths[i])
		} else {
			parts[i] = padRight(cells[i], widths[i])
		}
	}
	return strings.Join(parts, " ")
}

func headerCells(columns []Column) []string {
	cells := make([]string, len(columns))
	for i, c := range columns {
		cells[i] = c.Title
	}
	return cells
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// padLeft pads a string on the left to the specified visible width.
func padLeft(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return strings.Repeat(" ", width-visible) + s
}
