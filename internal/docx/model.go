package docx

import (
	"fmt"
	"strings"
)

// LocationKind tags the variant held by a Location.
type LocationKind int

const (
	KindParagraph LocationKind = iota
	KindTableCell
	KindHeader
	KindFooter
)

func (k LocationKind) String() string {
	switch k {
	case KindTableCell:
		return "table_cell"
	case KindHeader:
		return "header"
	case KindFooter:
		return "footer"
	default:
		return "paragraph"
	}
}

// Location says where a paragraph or cell sits in the document. Indices are
// zero-based; String renders them one-based.
//
//	KindParagraph  Index is the body paragraph position outside tables
//	KindTableCell  Table, Row and Cell locate the cell
//	KindHeader     Part is the header, Index the paragraph within it
//	KindFooter     Part is the footer, Index the paragraph within it
type Location struct {
	Kind  LocationKind `json:"kind" yaml:"kind"`
	Index int          `json:"index,omitempty" yaml:"index,omitempty"`
	Part  int          `json:"part,omitempty" yaml:"part,omitempty"`
	Table int          `json:"table,omitempty" yaml:"table,omitempty"`
	Row   int          `json:"row,omitempty" yaml:"row,omitempty"`
	Cell  int          `json:"cell,omitempty" yaml:"cell,omitempty"`
}

func (l Location) String() string {
	switch l.Kind {
	case KindTableCell:
		return fmt.Sprintf("Table %d, Row %d, Cell %d", l.Table+1, l.Row+1, l.Cell+1)
	case KindHeader:
		return fmt.Sprintf("Header %d, Paragraph %d", l.Part+1, l.Index+1)
	case KindFooter:
		return fmt.Sprintf("Footer %d, Paragraph %d", l.Part+1, l.Index+1)
	default:
		return fmt.Sprintf("Paragraph %d", l.Index+1)
	}
}

// Paragraph is a w:p element.
type Paragraph struct {
	StyleID       string
	Justification string // raw w:jc value
	Runs          []*Run
	Location      Location

	part   *Part
	cell   *Cell
	nested bool
}

// Part returns the part holding the paragraph.
func (p *Paragraph) Part() *Part { return p.part }

// Cell returns the innermost table cell holding the paragraph, or nil.
func (p *Paragraph) Cell() *Cell { return p.cell }

// InTable reports whether the paragraph lives inside a table cell.
func (p *Paragraph) InTable() bool { return p.cell != nil }

// Nested reports whether the paragraph sits inside another paragraph, as
// text box content does.
func (p *Paragraph) Nested() bool { return p.nested }

// Alignment maps the justification to left, center, right or justify.
func (p *Paragraph) Alignment() string {
	switch p.Justification {
	case "center":
		return "center"
	case "right", "end":
		return "right"
	case "both", "distribute", "mediumKashida", "highKashida", "lowKashida", "thaiDistribute":
		return "justify"
	default:
		return "left"
	}
}

// Text concatenates the text of the paragraph's runs. Tabs read as "\t"
// and breaks as "\n".
func (p *Paragraph) Text() string {
	return joinText(p.nodes())
}

func (p *Paragraph) nodes() []*textNode {
	var out []*textNode
	for _, r := range p.Runs {
		out = append(out, r.nodes...)
	}
	return out
}

// Run is a w:r element.
type Run struct {
	nodes []*textNode
}

// Text returns the run's text.
func (r *Run) Text() string {
	if len(r.nodes) == 1 {
		return r.nodes[0].text
	}
	return joinText(r.nodes)
}

// HasText reports whether the run carries at least one writable text node.
func (r *Run) HasText() bool {
	for _, n := range r.nodes {
		if n.kind == nodeText {
			return true
		}
	}
	return false
}

// Table is a w:tbl element.
type Table struct {
	Index    int // top-level table position in the part
	GridCols int
	Rows     []*Row
}

// Cols returns the grid column count, or the widest row when the table
// declares no grid.
func (t *Table) Cols() int {
	if t.GridCols > 0 {
		return t.GridCols
	}
	n := 0
	for _, r := range t.Rows {
		n = max(n, len(r.Cells))
	}
	return n
}

// Row is a w:tr element.
type Row struct {
	Index int
	Cells []*Cell
}

// Cell is a w:tc element. Paragraphs holds only the cell's own paragraphs;
// cells of nested tables carry the index of the enclosing top-level table.
type Cell struct {
	Table      int
	Row        int
	Index      int
	Paragraphs []*Paragraph
	Tables     []*Table
}

// Location returns the cell's table coordinates.
func (c *Cell) Location() Location {
	return Location{Kind: KindTableCell, Table: c.Table, Row: c.Row, Cell: c.Index}
}

// Text joins the text of the cell's own paragraphs with newlines. Nested
// table content is not included.
func (c *Cell) Text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}
