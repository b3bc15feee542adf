// Package extract turns a word-processing document into a structured content
// tree and a plain-text rendering suitable for language-model analysis.
package extract

import (
	"strings"

	"github.com/jackzampolin/docsmith/internal/docx"
)

// Paragraph is a non-empty body paragraph.
type Paragraph struct {
	Text      string `json:"text" yaml:"text"`
	Style     string `json:"style" yaml:"style"`
	Alignment string `json:"alignment" yaml:"alignment"`
	IsHeading bool   `json:"is_heading" yaml:"is_heading"`
	Level     int    `json:"level,omitempty" yaml:"level,omitempty"`
	RunsCount int    `json:"runs_count" yaml:"runs_count"`
}

// Heading is a paragraph whose style marks it as a heading.
type Heading struct {
	Text  string `json:"text" yaml:"text"`
	Level int    `json:"level" yaml:"level"`
	Style string `json:"style" yaml:"style"`
}

// Item is one entry of the document's reading order.
type Item struct {
	Type    string `json:"type" yaml:"type"` // "heading" or "paragraph"
	Content string `json:"content" yaml:"content"`
	Level   int    `json:"level,omitempty" yaml:"level,omitempty"`
}

// Cell is a table cell's trimmed text.
type Cell struct {
	Index int    `json:"index" yaml:"index"`
	Text  string `json:"text" yaml:"text"`
}

// Row is a table row.
type Row struct {
	Index int    `json:"index" yaml:"index"`
	Cells []Cell `json:"cells" yaml:"cells"`
}

// Table is a top-level table. TextContent holds one line per row that has
// any text, its non-empty cells joined by " | ".
type Table struct {
	Index       int      `json:"index" yaml:"index"`
	RowsCount   int      `json:"rows_count" yaml:"rows_count"`
	ColsCount   int      `json:"cols_count" yaml:"cols_count"`
	Rows        []Row    `json:"rows" yaml:"rows"`
	TextContent []string `json:"text_content" yaml:"text_content"`
}

// Metadata summarizes the content tree.
type Metadata struct {
	TotalParagraphs int  `json:"total_paragraphs" yaml:"total_paragraphs"`
	TotalTables     int  `json:"total_tables" yaml:"total_tables"`
	TotalWords      int  `json:"total_words" yaml:"total_words"`
	HasHeaders      bool `json:"has_headers" yaml:"has_headers"`
	HasFooters      bool `json:"has_footers" yaml:"has_footers"`
}

// ContentTree is the read-only view of a document produced by Extract.
type ContentTree struct {
	Paragraphs []Paragraph `json:"paragraphs" yaml:"paragraphs"`
	Headings   []Heading   `json:"headings" yaml:"headings"`
	Tables     []Table     `json:"tables" yaml:"tables"`
	Headers    []string    `json:"headers" yaml:"headers"`
	Footers    []string    `json:"footers" yaml:"footers"`
	Structured []Item      `json:"structured_text" yaml:"structured_text"`
	FullText   string      `json:"full_text" yaml:"full_text"`
	Metadata   Metadata    `json:"metadata" yaml:"metadata"`
}

// Extract opens blob and builds its content tree.
func Extract(blob []byte) (*ContentTree, error) {
	d, err := docx.Open(blob)
	if err != nil {
		return nil, err
	}
	return FromDocument(d), nil
}

// FromDocument builds the content tree of an opened document.
func FromDocument(d *docx.Document) *ContentTree {
	tree := &ContentTree{}
	var textParts []string

	for _, p := range d.Body().Paragraphs() {
		if p.InTable() {
			continue
		}
		text := strings.TrimSpace(p.Text())
		if text == "" {
			continue
		}

		style := d.StyleName(p)
		heading := IsHeading(style)
		para := Paragraph{
			Text:      text,
			Style:     style,
			Alignment: p.Alignment(),
			IsHeading: heading,
			RunsCount: len(p.Runs),
		}
		item := Item{Type: "paragraph", Content: text}
		if heading {
			para.Level = HeadingLevel(style)
			item.Type = "heading"
			item.Level = para.Level
			tree.Headings = append(tree.Headings, Heading{Text: text, Level: para.Level, Style: style})
		}
		tree.Paragraphs = append(tree.Paragraphs, para)
		tree.Structured = append(tree.Structured, item)
		textParts = append(textParts, text)
	}

	for _, t := range d.Tables() {
		tbl := extractTable(t)
		tree.Tables = append(tree.Tables, tbl)
		for _, row := range tbl.Rows {
			for _, c := range row.Cells {
				if c.Text != "" {
					textParts = append(textParts, c.Text)
				}
			}
		}
	}

	tree.Headers = partText(d.Headers())
	tree.Footers = partText(d.Footers())
	tree.FullText = strings.Join(textParts, "\n")
	tree.Metadata = Metadata{
		TotalParagraphs: len(tree.Paragraphs),
		TotalTables:     len(tree.Tables),
		TotalWords:      len(strings.Fields(tree.FullText)),
		HasHeaders:      len(tree.Headers) > 0,
		HasFooters:      len(tree.Footers) > 0,
	}
	return tree
}

func extractTable(t *docx.Table) Table {
	tbl := Table{
		Index:     t.Index,
		RowsCount: len(t.Rows),
	}
	if len(t.Rows) > 0 {
		tbl.ColsCount = t.Cols()
	}
	for _, r := range t.Rows {
		row := Row{Index: r.Index}
		var texts []string
		for _, c := range r.Cells {
			text := strings.TrimSpace(c.Text())
			row.Cells = append(row.Cells, Cell{Index: c.Index, Text: text})
			if text != "" {
				texts = append(texts, text)
			}
		}
		tbl.Rows = append(tbl.Rows, row)
		if len(texts) > 0 {
			tbl.TextContent = append(tbl.TextContent, strings.Join(texts, " | "))
		}
	}
	return tbl
}

func partText(parts []*docx.Part) []string {
	var out []string
	for _, part := range parts {
		for _, p := range part.Paragraphs() {
			if text := strings.TrimSpace(p.Text()); text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}
