package ui

import (
	"fmt"
	"io"
	"strings"
)

// Table is a minimal column-aligned text table. Rows render with the
// header styled and a dim separator line underneath; no box drawing, so
// output stays grep-friendly.
type Table struct {
	Headers []string
	Rows    [][]string
	Styles  Styles
}

// Render writes the table to w. Columns size to their widest cell; cells
// wider than maxCell are truncated with an ellipsis.
func (t Table) Render(w io.Writer) error {
	const maxCell = 60

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}

	rows := make([][]string, len(t.Rows))
	for ri, row := range t.Rows {
		cells := make([]string, len(t.Headers))
		for i := range t.Headers {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if r := []rune(cell); len(r) > maxCell {
				cell = string(r[:maxCell-1]) + "…"
			}
			cells[i] = cell
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
		rows[ri] = cells
	}

	line := func(cells []string, style func(string) string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			pad := widths[i] - len([]rune(cell))
			if pad < 0 {
				pad = 0
			}
			parts[i] = style(cell + strings.Repeat(" ", pad))
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	if _, err := fmt.Fprintln(w, line(t.Headers, func(s string) string { return t.Styles.Header.Render(s) })); err != nil {
		return err
	}

	separators := make([]string, len(t.Headers))
	for i, width := range widths {
		separators[i] = strings.Repeat("-", width)
	}
	if _, err := fmt.Fprintln(w, line(separators, func(s string) string { return t.Styles.Dim.Render(s) })); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, line(row, func(s string) string { return s })); err != nil {
			return err
		}
	}
	return nil
}
