package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jackzampolin/docsmith/internal/testutil"
)

func open(t *testing.T, blob []byte) *Document {
	t.Helper()
	d, err := Open(blob)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return d
}

func reopen(t *testing.T, d *Document) *Document {
	t.Helper()
	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	return open(t, out)
}

func TestOpen_Rejects(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"empty", nil},
		{"plain text", []byte("this is not a document at all")},
		{"truncated zip", testutil.NewDocx().Para("x").Build(t)[:64]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.blob)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Open() error = %v, want *ParseError", err)
			}
		})
	}

	t.Run("missing document part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create("word/other.xml")
		w.Write([]byte("<x/>"))
		zw.Close()

		_, err := Open(buf.Bytes())
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Open() error = %v, want *ParseError", err)
		}
	})

	t.Run("malformed xml", func(t *testing.T) {
		blob := testutil.NewDocx().Raw("<w:p><w:r><w:t>open").Build(t)
		_, err := Open(blob)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("Open() error = %v, want *ParseError", err)
		}
	})
}

func TestDocument_Structure(t *testing.T) {
	blob := testutil.NewDocx().
		Styled("Heading1", "Quotation").
		Aligned("center", "Prepared for ", "ACME Corp").
		Para().
		Table([]string{"Item", "Price"}, []string{"Widget", "$10.00"}).
		Styled("H2Custom", "Terms").
		Header("Company Header").
		Footer("Page footer").
		Build(t)
	d := open(t, blob)

	body := d.Body().Paragraphs()
	if len(body) != 8 {
		t.Fatalf("body paragraphs = %d, want 8", len(body))
	}

	if got := d.StyleName(body[0]); got != "Heading 1" {
		t.Errorf("StyleName(heading) = %q, want %q", got, "Heading 1")
	}
	if got := d.StyleName(body[1]); got != "Normal" {
		t.Errorf("StyleName(default) = %q, want Normal", got)
	}
	if got := body[1].Text(); got != "Prepared for ACME Corp" {
		t.Errorf("Text() = %q", got)
	}
	if got := body[1].Alignment(); got != "center" {
		t.Errorf("Alignment() = %q, want center", got)
	}
	if got := len(body[1].Runs); got != 2 {
		t.Errorf("runs = %d, want 2", got)
	}

	tables := d.Tables()
	if len(tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(tables))
	}
	tbl := tables[0]
	if tbl.Cols() != 2 || len(tbl.Rows) != 2 {
		t.Fatalf("table %dx%d, want 2x2", len(tbl.Rows), tbl.Cols())
	}
	cell := tbl.Rows[1].Cells[1]
	if cell.Text() != "$10.00" {
		t.Errorf("cell text = %q", cell.Text())
	}
	if got := cell.Location().String(); got != "Table 1, Row 2, Cell 2" {
		t.Errorf("cell location = %q", got)
	}

	if got := body[7].Location.String(); got != "Paragraph 4" {
		t.Errorf("paragraph after table location = %q, want Paragraph 4", got)
	}
	if !body[3].InTable() || body[3].Location.Kind != KindTableCell {
		t.Errorf("cell paragraph not classified as table cell: %+v", body[3].Location)
	}

	if len(d.Headers()) != 1 || len(d.Footers()) != 1 {
		t.Fatalf("headers=%d footers=%d, want 1 each", len(d.Headers()), len(d.Footers()))
	}
	hp := d.Headers()[0].Paragraphs()[0]
	if hp.Text() != "Company Header" || hp.Location.Kind != KindHeader {
		t.Errorf("header paragraph = %q %v", hp.Text(), hp.Location)
	}
	if got := d.Footers()[0].Paragraphs()[0].Location.String(); got != "Footer 1, Paragraph 1" {
		t.Errorf("footer location = %q", got)
	}
	if got := len(d.Paragraphs()); got != 10 {
		t.Errorf("all paragraphs = %d, want 10", got)
	}
}

func TestDocument_BytesUnmodified(t *testing.T) {
	blob := testutil.NewDocx().Para("Hello").Header("Top").Build(t)
	d := open(t, blob)

	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	if !bytes.Equal(out, blob) {
		t.Error("unmodified document did not round-trip byte-identically")
	}
}

func TestDocument_EditPreservesPackage(t *testing.T) {
	media := []byte{0x89, 'P', 'N', 'G', 0, 1, 2, 3}
	blob := testutil.NewDocx().
		Para("Dear ", "{{contact_name}}", ",").
		Header("Header text").
		Entry("word/media/image1.png", media).
		Comment("archive comment").
		Build(t)
	d := open(t, blob)

	run := d.Body().Paragraphs()[0].Runs[1]
	if !run.SetText("Jane & <Co>") {
		t.Fatal("SetText() = false")
	}
	if !d.Modified() {
		t.Fatal("Modified() = false after edit")
	}

	out, err := d.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	before := testutil.Entries(t, blob)
	after := testutil.Entries(t, out)
	if len(before) != len(after) {
		t.Fatalf("entry count %d -> %d", len(before), len(after))
	}
	for name, data := range before {
		if name == "word/document.xml" {
			continue
		}
		if !bytes.Equal(after[name], data) {
			t.Errorf("entry %s changed", name)
		}
	}

	doc := string(after["word/document.xml"])
	if !strings.Contains(doc, "<w:t>Jane &amp; &lt;Co&gt;</w:t>") {
		t.Errorf("edited text not escaped in place: %s", doc)
	}
	want := strings.Replace(string(before["word/document.xml"]), "{{contact_name}}", "Jane &amp; &lt;Co&gt;", 1)
	if doc != want {
		t.Errorf("document part changed outside the edited text node\n got: %s\nwant: %s", doc, want)
	}

	re := open(t, out)
	if got := re.Body().Paragraphs()[0].Text(); got != "Dear Jane & <Co>," {
		t.Errorf("reopened text = %q", got)
	}
}

func TestDocument_WhitespaceAndSelfClosing(t *testing.T) {
	w := `<w:p><w:r><w:t/></w:r><w:r><w:t>x</w:t></w:r></w:p>`
	blob := testutil.NewDocx().Raw(w).Build(t)
	d := open(t, blob)

	p := d.Body().Paragraphs()[0]
	p.Runs[0].SetText(" lead")
	p.Runs[1].SetText("trail ")

	re := reopen(t, d)
	if got := re.Body().Paragraphs()[0].Text(); got != " leadtrail " {
		t.Errorf("Text() = %q, want %q", got, " leadtrail ")
	}

	out, _ := d.Bytes()
	doc := string(testutil.ReadEntry(t, out, "word/document.xml"))
	if !strings.Contains(doc, `<w:t xml:space="preserve"> lead</w:t>`) {
		t.Errorf("self-closing node not expanded with preserve: %s", doc)
	}
	if !strings.Contains(doc, `<w:t xml:space="preserve">trail </w:t>`) {
		t.Errorf("preserve not added: %s", doc)
	}
}

func TestParagraph_SetText(t *testing.T) {
	blob := testutil.NewDocx().Para("Hello ", "{{first", "_name}}", "!").Build(t)
	d := open(t, blob)

	p := d.Body().Paragraphs()[0]
	if !p.SetText("Hello Ada!") {
		t.Fatal("SetText() = false")
	}
	re := reopen(t, d)
	rp := re.Body().Paragraphs()[0]
	if rp.Text() != "Hello Ada!" {
		t.Errorf("Text() = %q", rp.Text())
	}
	if got := len(rp.Runs); got != 4 {
		t.Errorf("runs = %d, want structure kept at 4", got)
	}
	var runs []string
	for _, r := range rp.Runs {
		runs = append(runs, r.Text())
	}
	if want := []string{"Hello ", "Ada", "", "!"}; strings.Join(runs, "|") != strings.Join(want, "|") {
		t.Errorf("runs = %q, want only the changed span rewritten %q", runs, want)
	}
}

func TestParagraph_TabsAndBreaks(t *testing.T) {
	raw := `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>` +
		`<w:r><w:t>Total:</w:t><w:tab/><w:t>$500</w:t><w:br/><w:t>net</w:t></w:r></w:p>`
	blob := testutil.NewDocx().Raw(raw).Build(t)

	t.Run("read as characters", func(t *testing.T) {
		p := open(t, blob).Body().Paragraphs()[0]
		if got := p.Text(); got != "Total:\t$500\nnet" {
			t.Errorf("Text() = %q", got)
		}
		if got := p.Runs[0].Text(); got != "Total:\t$500\nnet" {
			t.Errorf("run Text() = %q", got)
		}
	})

	t.Run("edit keeps tab in place", func(t *testing.T) {
		d := open(t, blob)
		if !d.Body().Paragraphs()[0].SetText("Total:\t$600\nnet") {
			t.Fatal("SetText() = false")
		}
		out, _ := d.Bytes()
		doc := string(testutil.ReadEntry(t, out, "word/document.xml"))
		if !strings.Contains(doc, `<w:t>Total:</w:t><w:tab/><w:t>$600</w:t><w:br/><w:t>net</w:t>`) {
			t.Errorf("structure around the edit changed: %s", doc)
		}
	})

	t.Run("span over a tab is rejected", func(t *testing.T) {
		d := open(t, blob)
		if err := d.Body().Paragraphs()[0].ReplaceSpan(5, 8, "x"); err == nil {
			t.Error("expected error")
		}
		if d.Modified() {
			t.Error("document modified")
		}
	})

	t.Run("dropping a tab writes nothing", func(t *testing.T) {
		d := open(t, blob)
		if d.Body().Paragraphs()[0].SetText("Total $600\nnet") {
			t.Error("SetText() = true")
		}
		if d.Modified() {
			t.Error("document modified")
		}
	})
}

func TestParagraph_ReplaceSpan(t *testing.T) {
	tests := []struct {
		name       string
		runs       []string
		start, end int
		repl       string
		want       []string
	}{
		{"within one run", []string{"Dear {{name}},"}, 5, 13, "Ada", []string{"Dear Ada,"}},
		{"across runs", []string{"Dear {{na", "me}}", ", thanks"}, 5, 13, "Ada", []string{"Dear Ada", "", ", thanks"}},
		{"across three runs", []string{"a{{", "x", "}}b"}, 1, 6, "V", []string{"aV", "", "b"}},
		{"insert at end", []string{"ab"}, 2, 2, "c", []string{"abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := open(t, testutil.NewDocx().Para(tt.runs...).Build(t))
			p := d.Body().Paragraphs()[0]
			if err := p.ReplaceSpan(tt.start, tt.end, tt.repl); err != nil {
				t.Fatalf("ReplaceSpan() error = %v", err)
			}
			for i, r := range p.Runs {
				if r.Text() != tt.want[i] {
					t.Errorf("run %d = %q, want %q", i, r.Text(), tt.want[i])
				}
			}
		})
	}

	t.Run("out of range", func(t *testing.T) {
		d := open(t, testutil.NewDocx().Para("abc").Build(t))
		if err := d.Body().Paragraphs()[0].ReplaceSpan(2, 9, "x"); err == nil {
			t.Error("expected error")
		}
	})
}

func TestCell_SetText(t *testing.T) {
	blob := testutil.NewDocx().Table([]string{"line one\nline two\nline three"}).Build(t)

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"same shape", "a\nb\nc", []string{"a", "b", "c"}},
		{"fewer lines", "only", []string{"only", "", ""}},
		{"more lines", "a\nb\nc\nd", []string{"a", "b", "c d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := open(t, blob)
			cell := d.Tables()[0].Rows[0].Cells[0]
			cell.SetText(tt.in)
			for i, p := range cell.Paragraphs {
				if p.Text() != tt.want[i] {
					t.Errorf("paragraph %d = %q, want %q", i, p.Text(), tt.want[i])
				}
			}
		})
	}
}

func TestCell_SetTextLeavesUnchangedParagraphs(t *testing.T) {
	mixed := `<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Bold </w:t></w:r><w:r><w:t>plain</w:t></w:r></w:p>`
	cell := func(paras ...string) []byte {
		raw := `<w:tbl><w:tr><w:tc>` + strings.Join(paras, "") + `</w:tc></w:tr></w:tbl>`
		return testutil.NewDocx().Raw(raw).Build(t)
	}

	tests := []struct {
		name string
		blob []byte
		in   string
	}{
		{"same line count", cell(testutil.Paragraph("", "", "ACME Corp"), mixed), "{{client}}\nBold plain"},
		{"fewer lines", cell(testutil.Paragraph("", "", "ACME Corp"), mixed, testutil.Paragraph("", "", "tail")), "{{client}}\nBold plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := open(t, tt.blob)
			c := d.Tables()[0].Rows[0].Cells[0]
			if !c.SetText(tt.in) {
				t.Fatal("SetText() = false")
			}
			out, _ := d.Bytes()
			doc := string(testutil.ReadEntry(t, out, "word/document.xml"))
			if !strings.Contains(doc, mixed) {
				t.Errorf("unchanged paragraph was rewritten: %s", doc)
			}
			if got := c.Paragraphs[0].Text(); got != "{{client}}" {
				t.Errorf("first paragraph = %q", got)
			}
		})
	}
}

func TestCell_ReplaceSpan(t *testing.T) {
	blob := testutil.NewDocx().Table([]string{"Line one\nLine two\nkept"}).Build(t)
	d := open(t, blob)
	cell := d.Tables()[0].Rows[0].Cells[0]
	if err := cell.ReplaceSpan(5, 13, "X"); err != nil {
		t.Fatalf("ReplaceSpan() error = %v", err)
	}
	want := []string{"Line X", " two", "kept"}
	for i, p := range cell.Paragraphs {
		if p.Text() != want[i] {
			t.Errorf("paragraph %d = %q, want %q", i, p.Text(), want[i])
		}
	}
}

func TestDocument_NestedTableAndTextBox(t *testing.T) {
	inner := testutil.TableXML([]string{"inner"})
	outer := `<w:tbl><w:tr><w:tc>` + testutil.Paragraph("", "", "outer") + inner + `</w:tc></w:tr></w:tbl>`
	box := `<w:p><w:r><w:t>anchor</w:t><w:pict><w:txbxContent>` + testutil.Paragraph("", "", "boxed") + `</w:txbxContent></w:pict></w:r></w:p>`
	d := open(t, testutil.NewDocx().Raw(outer).Raw(box).Build(t))

	cell := d.Tables()[0].Rows[0].Cells[0]
	if cell.Text() != "outer" {
		t.Errorf("outer cell text = %q, want nested content excluded", cell.Text())
	}
	if len(cell.Tables) != 1 || cell.Tables[0].Rows[0].Cells[0].Text() != "inner" {
		t.Error("nested table not recorded under its cell")
	}

	var anchor, boxed *Paragraph
	for _, p := range d.Body().Paragraphs() {
		switch p.Text() {
		case "anchor":
			anchor = p
		case "boxed":
			boxed = p
		}
	}
	if anchor == nil || boxed == nil {
		t.Fatal("text box paragraph not separated from its anchor")
	}
	if !boxed.Nested() {
		t.Error("text box paragraph not marked nested")
	}
}
