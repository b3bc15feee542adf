package extract

import (
	"strings"

	"github.com/jackzampolin/docsmith/internal/docx"
)

// Segment location types.
const (
	SegmentParagraph = "paragraph"
	SegmentTableCell = "table_cell"
)

// TextSegment is an independently editable unit of document text: a body
// paragraph or a table cell. ImprovedText is filled in by an editor.
type TextSegment struct {
	OriginalText string        `json:"original_text" yaml:"original_text"`
	LocationType string        `json:"location_type" yaml:"location_type"`
	LocationInfo string        `json:"location_info" yaml:"location_info"`
	Location     docx.Location `json:"location" yaml:"location"`
	ImprovedText string        `json:"improved_text,omitempty" yaml:"improved_text,omitempty"`
}

// Improved reports whether the segment carries a change.
func (s TextSegment) Improved() bool {
	return s.ImprovedText != "" && s.ImprovedText != s.OriginalText
}

// Segments opens blob and lists its non-empty paragraphs and table cells.
func Segments(blob []byte) ([]TextSegment, error) {
	d, err := docx.Open(blob)
	if err != nil {
		return nil, err
	}
	return SegmentsOf(d), nil
}

// SegmentsOf lists the non-empty body paragraphs of d followed by the
// non-empty cells of its top-level tables. Paragraph numbering counts every
// body paragraph outside tables, empty ones included.
func SegmentsOf(d *docx.Document) []TextSegment {
	var out []TextSegment
	for _, p := range d.Body().Paragraphs() {
		if p.InTable() {
			continue
		}
		if text := strings.TrimSpace(p.Text()); text != "" {
			out = append(out, TextSegment{
				OriginalText: text,
				LocationType: SegmentParagraph,
				LocationInfo: p.Location.String(),
				Location:     p.Location,
			})
		}
	}
	for _, t := range d.Tables() {
		for _, r := range t.Rows {
			for _, c := range r.Cells {
				if text := strings.TrimSpace(c.Text()); text != "" {
					loc := c.Location()
					out = append(out, TextSegment{
						OriginalText: text,
						LocationType: SegmentTableCell,
						LocationInfo: loc.String(),
						Location:     loc,
					})
				}
			}
		}
	}
	return out
}
