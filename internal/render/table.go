// Package render lays out human-readable terminal output.
package render

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table is a simple grid with an optional header row.
type Table struct {
	Header []string
	Rows   [][]string

	// MaxWidth truncates cell lines wider than this many columns; zero
	// disables truncation.
	MaxWidth int
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render renders the table to an ASCII string.
func (t *Table) Render() string {
	cols := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return ""
	}

	widths := make([]int, cols)
	for i := range widths {
		widths[i] = 1
	}
	measure := func(row []string) {
		for c, text := range row {
			for _, line := range t.lines(text) {
				if w := displayWidth(line); w > widths[c] {
					widths[c] = w
				}
			}
		}
	}
	measure(t.Header)
	for _, r := range t.Rows {
		measure(r)
	}

	var sb strings.Builder
	border := borderLine(widths)
	sb.WriteString(border)
	if len(t.Header) > 0 {
		t.renderRow(&sb, t.Header, widths)
		sb.WriteString(border)
	}
	for _, r := range t.Rows {
		t.renderRow(&sb, r, widths)
	}
	if len(t.Rows) > 0 {
		sb.WriteString(border)
	}
	return sb.String()
}

// WriteTo writes the rendered table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.Render())
	return int64(n), err
}

func (t *Table) lines(text string) []string {
	lines := strings.Split(text, "\n")
	if t.MaxWidth > 0 {
		for i, l := range lines {
			lines[i] = runewidth.Truncate(l, t.MaxWidth, "…")
		}
	}
	return lines
}

func (t *Table) renderRow(sb *strings.Builder, row []string, widths []int) {
	cells := make([][]string, len(widths))
	height := 1
	for c := range widths {
		if c < len(row) {
			cells[c] = t.lines(row[c])
		}
		if len(cells[c]) > height {
			height = len(cells[c])
		}
	}
	for line := 0; line < height; line++ {
		sb.WriteString("|")
		for c, w := range widths {
			text := ""
			if line < len(cells[c]) {
				text = cells[c][line]
			}
			sb.WriteString(" ")
			sb.WriteString(padRight(text, w))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
}

func borderLine(widths []int) string {
	var sb strings.Builder
	sb.WriteString("+")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("+")
	}
	sb.WriteString("\n")
	return sb.String()
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func padRight(s string, width int) string {
	if pad := width - displayWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
