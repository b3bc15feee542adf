package extract

import (
	"errors"
	"testing"

	"github.com/jackzampolin/docsmith/internal/docx"
	"github.com/jackzampolin/docsmith/internal/testutil"
)

func quotation(t *testing.T) []byte {
	t.Helper()
	return testutil.NewDocx().
		Styled("Title", "Quotation").
		Aligned("both", "Prepared for ", "ACME Corp").
		Para("").
		Styled("Heading2", "Scope").
		Para("Install 3 units").
		Table(
			[]string{"Item", "Price"},
			[]string{"Widget", ""},
			[]string{"", ""},
		).
		Header("Header text").
		Footer("Footer text").
		Build(t)
}

func TestExtract(t *testing.T) {
	tree, err := Extract(quotation(t))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if len(tree.Paragraphs) != 4 {
		t.Fatalf("paragraphs = %d, want 4", len(tree.Paragraphs))
	}
	p := tree.Paragraphs[1]
	if p.Text != "Prepared for ACME Corp" || p.Alignment != "justify" || p.RunsCount != 2 || p.IsHeading {
		t.Errorf("paragraph = %+v", p)
	}

	wantHeadings := []Heading{
		{Text: "Quotation", Level: 1, Style: "Title"},
		{Text: "Scope", Level: 2, Style: "Heading 2"},
	}
	if len(tree.Headings) != len(wantHeadings) {
		t.Fatalf("headings = %+v", tree.Headings)
	}
	for i, h := range wantHeadings {
		if tree.Headings[i] != h {
			t.Errorf("heading %d = %+v, want %+v", i, tree.Headings[i], h)
		}
	}

	if len(tree.Tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tree.Tables))
	}
	tbl := tree.Tables[0]
	if tbl.RowsCount != 3 || tbl.ColsCount != 2 {
		t.Errorf("table %dx%d, want 3x2", tbl.RowsCount, tbl.ColsCount)
	}
	if len(tbl.TextContent) != 2 || tbl.TextContent[0] != "Item | Price" || tbl.TextContent[1] != "Widget" {
		t.Errorf("text content = %q", tbl.TextContent)
	}

	want := Metadata{TotalParagraphs: 4, TotalTables: 1, TotalWords: 12, HasHeaders: true, HasFooters: true}
	if tree.Metadata != want {
		t.Errorf("metadata = %+v, want %+v", tree.Metadata, want)
	}
	if tree.FullText != "Quotation\nPrepared for ACME Corp\nScope\nInstall 3 units\nItem\nPrice\nWidget" {
		t.Errorf("full text = %q", tree.FullText)
	}
}

func TestExtract_NotADocument(t *testing.T) {
	_, err := Extract([]byte("plain text"))
	var pe *docx.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Extract() error = %v, want *docx.ParseError", err)
	}
}

func TestCleanText(t *testing.T) {
	tree, err := Extract(quotation(t))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := "=== DOCUMENT CONTENT ===\n\n" +
		"# Quotation\n\n" +
		"Prepared for ACME Corp\n\n" +
		"## Scope\n\n" +
		"Install 3 units\n\n" +
		"\n=== TABLES ===\n\n" +
		"Table 1:\nItem | Price\nWidget\n\n" +
		"\n=== HEADERS ===\n\n" +
		"Header text\n" +
		"\n=== FOOTERS ===\n\n" +
		"Footer text"
	if got := CleanText(tree); got != want {
		t.Errorf("CleanText() =\n%q\nwant\n%q", got, want)
	}

	t.Run("body only", func(t *testing.T) {
		tree, err := Extract(testutil.NewDocx().Para("Hello").Build(t))
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if got := CleanText(tree); got != "=== DOCUMENT CONTENT ===\n\nHello\n" {
			t.Errorf("CleanText() = %q", got)
		}
	})
}

func TestHeading(t *testing.T) {
	tests := []struct {
		style   string
		heading bool
		level   int
	}{
		{"Heading 1", true, 1},
		{"heading3", true, 3},
		{"Title", true, 1},
		{"Subtitle", true, 2},
		{"Custom H2", true, 2},
		{"Header", true, 1},
		{"Normal", false, 1},
		{"List Paragraph", false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			if got := IsHeading(tt.style); got != tt.heading {
				t.Errorf("IsHeading(%q) = %v, want %v", tt.style, got, tt.heading)
			}
			if got := HeadingLevel(tt.style); got != tt.level {
				t.Errorf("HeadingLevel(%q) = %d, want %d", tt.style, got, tt.level)
			}
		})
	}
}

func TestScan(t *testing.T) {
	text := "Contact john.doe@example.com or 555-123-4567 by 12/05/2024. " +
		"Total $1,250.00 for [Client Name] at 42 Main Street. ACME CORP ____ XXXX {{amount}}"

	found := make(map[string][]string)
	for _, c := range Scan(text) {
		found[c.Type] = append(found[c.Type], c.Text)
	}

	want := map[string]string{
		"email":        "john.doe@example.com",
		"phone":        "555-123-4567",
		"date":         "12/05/2024",
		"currency":     "$1,250.00",
		"decimal":      "250.00",
		"bracketed":    "[Client Name]",
		"address":      "42 Main Street",
		"company_caps": "ACME CORP",
		"underlines":   "____",
		"xxx_pattern":  "XXXX",
		"mustache":     "{{amount}}",
	}
	for kind, text := range want {
		ok := false
		for _, got := range found[kind] {
			if got == text {
				ok = true
			}
		}
		if !ok {
			t.Errorf("Scan() %s = %q, want %q", kind, found[kind], text)
		}
	}
}

func TestScan_RuneOffsetsAndContext(t *testing.T) {
	text := "héllo [Name] wörld"
	var got *Candidate
	for _, c := range Scan(text) {
		if c.Type == "bracketed" {
			got = &c
			break
		}
	}
	if got == nil {
		t.Fatal("no bracketed candidate")
	}
	if got.Start != 6 || got.End != 12 {
		t.Errorf("offsets = [%d, %d), want [6, 12)", got.Start, got.End)
	}
	if got.Context != text {
		t.Errorf("context = %q, want whole short text", got.Context)
	}
}

func TestSegments(t *testing.T) {
	blob := testutil.NewDocx().
		Para("").
		Para("  Intro text  ").
		Table([]string{"Name", ""}).
		Build(t)

	segs, err := Segments(blob)
	if err != nil {
		t.Fatalf("Segments() error = %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("segments = %+v", segs)
	}
	if segs[0].OriginalText != "Intro text" || segs[0].LocationInfo != "Paragraph 2" || segs[0].LocationType != SegmentParagraph {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].LocationInfo != "Table 1, Row 1, Cell 1" || segs[1].LocationType != SegmentTableCell {
		t.Errorf("segment 1 = %+v", segs[1])
	}
}

func TestExtract_TabsAndBreaks(t *testing.T) {
	raw := `<w:p><w:r><w:t>Total:</w:t><w:tab/><w:t>$500</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Line one</w:t><w:br/><w:t>Line two</w:t></w:r></w:p>`
	tree, err := Extract(testutil.NewDocx().Raw(raw).Build(t))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := tree.Paragraphs[0].Text; got != "Total:\t$500" {
		t.Errorf("paragraph 0 = %q", got)
	}
	if got := tree.Paragraphs[1].Text; got != "Line one\nLine two" {
		t.Errorf("paragraph 1 = %q", got)
	}
	if tree.Metadata.TotalWords != 6 {
		t.Errorf("TotalWords = %d, want 6", tree.Metadata.TotalWords)
	}
	found := false
	for _, c := range Scan(CleanText(tree)) {
		if c.Text == "$500" {
			found = true
		}
	}
	if !found {
		t.Error("amount after a tab not scanned")
	}
}
