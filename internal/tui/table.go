// Package tui provides terminal user interface components for gantry.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// TableColumn defines a column in a table.
type TableColumn struct {
	Name  string
	Width int
	Align Alignment
}

// Alignment defines text alignment in a column.
type Alignment int

// Alignment constants.
const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table provides styled table rendering with display-width aware padding,
// so multi-byte status icons and wide runes line up correctly.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []TableColumn
}

// NewTable creates a new table with the given columns.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{
		w:       w,
		styles:  NewTableStyles(),
		columns: columns,
	}
}

// WriteHeader writes the table header row.
func (t *Table) WriteHeader() {
	cells := make([]string, 0, len(t.columns))
	for _, col := range t.columns {
		cells = append(cells, t.pad(col, col.Name))
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(strings.Join(cells, " ")))
}

// WriteRow writes a data row to the table. Missing values render as empty
// cells; overflowing values are truncated with an ellipsis.
func (t *Table) WriteRow(values ...string) {
	cells := make([]string, 0, len(t.columns))
	for i, col := range t.columns {
		value := ""
		if i < len(values) {
			value = values[i]
		}
		cells = append(cells, t.pad(col, value))
	}
	_, _ = fmt.Fprintln(t.w, strings.Join(cells, " "))
}

// WriteStyledRow writes a data row with one cell rendered through a lipgloss
// style. The plain value is used for width accounting so ANSI escape codes do
// not break column alignment.
func (t *Table) WriteStyledRow(values []string, styledIndex int, styledValue, plainValue string) {
	cells := make([]string, 0, len(t.columns))
	for i, col := range t.columns {
		if i == styledIndex {
			padding := col.Width - runewidth.StringWidth(plainValue)
			if padding < 0 {
				padding = 0
			}
			cells = append(cells, styledValue+strings.Repeat(" ", padding))
			continue
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		cells = append(cells, t.pad(col, value))
	}
	_, _ = fmt.Fprintln(t.w, strings.Join(cells, " "))
}

// pad truncates and aligns a value to the column's display width.
func (t *Table) pad(col TableColumn, value string) string {
	if col.Width > 1 && runewidth.StringWidth(value) > col.Width {
		value = runewidth.Truncate(value, col.Width, "…")
	}
	switch col.Align {
	case AlignRight:
		return runewidth.FillLeft(value, col.Width)
	case AlignCenter:
		gap := col.Width - runewidth.StringWidth(value)
		if gap <= 0 {
			return value
		}
		left := gap / 2
		return strings.Repeat(" ", left) + runewidth.FillRight(value, col.Width-left)
	case AlignLeft:
		return runewidth.FillRight(value, col.Width)
	default:
		return runewidth.FillRight(value, col.Width)
	}
}
