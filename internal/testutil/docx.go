// Package testutil builds word-processing packages in memory for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"testing"
	"unicode"
)

const (
	wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNS  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Docx assembles a minimal but valid .docx package.
type Docx struct {
	body    []string
	headers []string
	footers []string
	extra   []entry
	comment string
}

type entry struct {
	name string
	data []byte
}

// NewDocx returns an empty document builder.
func NewDocx() *Docx { return &Docx{} }

// Para appends a body paragraph with one run per argument.
func (d *Docx) Para(runs ...string) *Docx {
	d.body = append(d.body, Paragraph("", "", runs...))
	return d
}

// Styled appends a paragraph using the given style id.
func (d *Docx) Styled(styleID string, runs ...string) *Docx {
	d.body = append(d.body, Paragraph(styleID, "", runs...))
	return d
}

// Aligned appends a paragraph with the given w:jc value.
func (d *Docx) Aligned(jc string, runs ...string) *Docx {
	d.body = append(d.body, Paragraph("", jc, runs...))
	return d
}

// Table appends a table. Each cell string becomes one paragraph per line
// with a single run each.
func (d *Docx) Table(rows ...[]string) *Docx {
	d.body = append(d.body, TableXML(rows...))
	return d
}

// Raw appends body XML verbatim.
func (d *Docx) Raw(xml string) *Docx {
	d.body = append(d.body, xml)
	return d
}

// Header adds a header part holding one paragraph.
func (d *Docx) Header(runs ...string) *Docx {
	d.headers = append(d.headers, Paragraph("Header", "", runs...))
	return d
}

// Footer adds a footer part holding one paragraph.
func (d *Docx) Footer(runs ...string) *Docx {
	d.footers = append(d.footers, Paragraph("Footer", "", runs...))
	return d
}

// Entry adds an arbitrary zip entry after the word parts.
func (d *Docx) Entry(name string, data []byte) *Docx {
	d.extra = append(d.extra, entry{name: name, data: data})
	return d
}

// Comment sets the archive comment.
func (d *Docx) Comment(c string) *Docx {
	d.comment = c
	return d
}

// Build zips the package.
func (d *Docx) Build(t testing.TB) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	write := func(name string, data []byte) {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	write("[Content_Types].xml", []byte(d.contentTypes()))
	write("_rels/.rels", []byte(rootRels))
	write("word/document.xml", []byte(d.document()))
	write("word/styles.xml", []byte(stylesXML))
	write("word/_rels/document.xml.rels", []byte(d.rels()))
	for i, h := range d.headers {
		write(fmt.Sprintf("word/header%d.xml", i+1), []byte(part("hdr", h)))
	}
	for i, f := range d.footers {
		write(fmt.Sprintf("word/footer%d.xml", i+1), []byte(part("ftr", f)))
	}
	for _, e := range d.extra {
		write(e.name, e.data)
	}
	if d.comment != "" {
		if err := zw.SetComment(d.comment); err != nil {
			t.Fatalf("set comment: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func (d *Docx) document() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	fmt.Fprintf(&b, `<w:document xmlns:w="%s" xmlns:r="%s"><w:body>`, wordNS, relNS)
	for _, x := range d.body {
		b.WriteString(x)
	}
	b.WriteString("<w:sectPr>")
	for i := range d.headers {
		fmt.Fprintf(&b, `<w:headerReference w:type="default" r:id="rIdH%d"/>`, i+1)
	}
	for i := range d.footers {
		fmt.Fprintf(&b, `<w:footerReference w:type="default" r:id="rIdF%d"/>`, i+1)
	}
	b.WriteString(`<w:pgSz w:w="11906" w:h="16838"/></w:sectPr></w:body></w:document>`)
	return b.String()
}

func (d *Docx) rels() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rIdStyles" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	for i := range d.headers {
		fmt.Fprintf(&b, `<Relationship Id="rIdH%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header%d.xml"/>`, i+1, i+1)
	}
	for i := range d.footers {
		fmt.Fprintf(&b, `<Relationship Id="rIdF%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer%d.xml"/>`, i+1, i+1)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func (d *Docx) contentTypes() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

func part(root, body string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\n"+`<w:%s xmlns:w="%s" xmlns:r="%s">%s</w:%s>`, root, wordNS, relNS, body, root)
}

// Paragraph renders a w:p with optional style id and justification.
func Paragraph(styleID, jc string, runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if styleID != "" || jc != "" {
		b.WriteString("<w:pPr>")
		if styleID != "" {
			fmt.Fprintf(&b, `<w:pStyle w:val="%s"/>`, styleID)
		}
		if jc != "" {
			fmt.Fprintf(&b, `<w:jc w:val="%s"/>`, jc)
		}
		b.WriteString("</w:pPr>")
	}
	for _, r := range runs {
		b.WriteString(Run(r))
	}
	b.WriteString("</w:p>")
	return b.String()
}

// Run renders a w:r holding text, marking outer whitespace as preserved.
func Run(text string) string {
	var esc bytes.Buffer
	_ = xml.EscapeText(&esc, []byte(text))
	if text != "" && (unicode.IsSpace(rune(text[0])) || unicode.IsSpace(rune(text[len(text)-1]))) {
		return `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">` + esc.String() + `</w:t></w:r>`
	}
	return `<w:r><w:rPr><w:b/></w:rPr><w:t>` + esc.String() + `</w:t></w:r>`
}

// TableXML renders a w:tbl with a grid sized to the widest row.
func TableXML(rows ...[]string) string {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr><w:tblStyle w:val="TableGrid"/><w:jc w:val="center"/></w:tblPr><w:tblGrid>`)
	for range cols {
		b.WriteString(`<w:gridCol w:w="2000"/>`)
	}
	b.WriteString(`</w:tblGrid>`)
	for _, r := range rows {
		b.WriteString("<w:tr>")
		for _, c := range r {
			b.WriteString("<w:tc>")
			for _, line := range strings.Split(c, "\n") {
				b.WriteString(Paragraph("", "", line))
			}
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// ReadEntry returns the named zip entry of blob.
func ReadEntry(t testing.TB, blob []byte, name string) []byte {
	t.Helper()
	entries := Entries(t, blob)
	data, ok := entries[name]
	if !ok {
		t.Fatalf("entry %s not found", name)
	}
	return data
}

// Entries returns every zip entry of blob keyed by name.
func Entries(t testing.TB, blob []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = data
	}
	return out
}

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/></w:style>
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/></w:style>
<w:style w:type="paragraph" w:styleId="Subtitle"><w:name w:val="Subtitle"/></w:style>
<w:style w:type="paragraph" w:styleId="Header"><w:name w:val="header"/></w:style>
<w:style w:type="paragraph" w:styleId="Footer"><w:name w:val="footer"/></w:style>
<w:style w:type="paragraph" w:styleId="H2Custom"><w:name w:val="Custom H2"/></w:style>
<w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/></w:style>
<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/></w:style>
</w:styles>`
