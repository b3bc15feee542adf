package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	strictWordNS = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	relNS        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	strictRelNS  = "http://purl.oclc.org/ooxml/officeDocument/relationships"
	xmlNS        = "http://www.w3.org/XML/1998/namespace"
)

func isWord(n xml.Name) bool {
	return n.Space == wordNS || n.Space == strictWordNS
}

// PartKind classifies an XML part of the package.
type PartKind int

const (
	PartBody PartKind = iota
	PartHeader
	PartFooter
)

func (k PartKind) String() string {
	switch k {
	case PartHeader:
		return "header"
	case PartFooter:
		return "footer"
	default:
		return "body"
	}
}

// Part is one parsed XML part: the main document, a header or a footer.
type Part struct {
	Name  string
	Kind  PartKind
	Index int // position among parts of the same kind

	data       []byte
	nodes      []*textNode
	paragraphs []*Paragraph
	tables     []*Table
}

// Paragraphs returns every paragraph in the part in document order.
func (p *Part) Paragraphs() []*Paragraph { return p.paragraphs }

// Tables returns the part's top-level tables.
func (p *Part) Tables() []*Table { return p.tables }

func (p *Part) dirty() bool {
	for _, n := range p.nodes {
		if n.changed() {
			return true
		}
	}
	return false
}

// render splices changed text nodes into the original part bytes.
func (p *Part) render() []byte {
	var out bytes.Buffer
	out.Grow(len(p.data))
	last := 0
	for _, n := range p.nodes {
		if !n.changed() {
			continue
		}
		out.Write(p.data[last:n.tagStart])
		n.write(&out, p.data)
		last = n.end
	}
	out.Write(p.data[last:])
	return out.Bytes()
}

type nodeKind int

const (
	nodeText      nodeKind = iota // w:t, writable
	nodeFixed                     // w:tab, w:br and friends, read-only
	nodeSeparator                 // paragraph break inside cell text
)

// fixedText maps read-only run content to the character it reads as.
var fixedText = map[string]string{
	"tab":  "\t",
	"ptab": "\t",
	"br":   "\n",
	"cr":   "\n",
}

// textNode is one w:t element, or a read-only character. Offsets index the
// part's raw bytes: the start tag spans [tagStart, tagEnd) and the content
// spans [tagEnd, end). For a self-closing element end equals tagEnd. Only
// w:t nodes carry offsets and are ever rendered.
type textNode struct {
	kind        nodeKind
	tagStart    int
	tagEnd      int
	end         int
	selfClosing bool
	preserve    bool

	orig string
	text string
}

func (n *textNode) changed() bool { return n.text != n.orig }

func (n *textNode) write(w *bytes.Buffer, data []byte) {
	tag := data[n.tagStart:n.tagEnd]
	addPreserve := !n.preserve && hasOuterSpace(n.text)

	if n.selfClosing {
		open := bytes.TrimRight(tag[:len(tag)-2], " \t\r\n")
		w.Write(open)
		if addPreserve {
			w.WriteString(` xml:space="preserve"`)
		}
		w.WriteByte('>')
		_ = xml.EscapeText(w, []byte(n.text))
		w.WriteString("</")
		w.Write(qualifiedName(tag))
		w.WriteByte('>')
		return
	}

	if addPreserve {
		w.Write(tag[:len(tag)-1])
		w.WriteString(` xml:space="preserve">`)
	} else {
		w.Write(tag)
	}
	_ = xml.EscapeText(w, []byte(n.text))
}

func qualifiedName(tag []byte) []byte {
	name := tag[1:]
	if i := bytes.IndexAny(name, " \t\r\n/>"); i >= 0 {
		name = name[:i]
	}
	return name
}

func hasOuterSpace(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(s)
	return unicode.IsSpace(r[0]) || unicode.IsSpace(r[len(r)-1])
}

type sectionRef struct {
	kind PartKind
	id   string
}

// parsePart walks the XML of one part, recording paragraph, run, table and
// text node structure together with the byte offsets of each w:t element.
// It also returns the header/footer references of section properties.
func parsePart(name string, kind PartKind, index int, data []byte) (*Part, []sectionRef, error) {
	part := &Part{Name: name, Kind: kind, Index: index, data: data}
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		elems  []string
		paras  []*Paragraph
		runs   []*Run
		tables []*Table
		rows   []*Row
		cells  []*Cell
		text   *textNode
		refs   []sectionRef
	)
	parent := func(n int) string {
		if i := len(elems) - 1 - n; i >= 0 {
			return elems[i]
		}
		return ""
	}

	for {
		offset := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			local := ""
			if isWord(t.Name) {
				local = t.Name.Local
			}

			switch local {
			case "p":
				para := &Paragraph{part: part, nested: len(paras) > 0}
				if c := top(cells); c != nil {
					para.cell = c
					c.Paragraphs = append(c.Paragraphs, para)
				}
				part.paragraphs = append(part.paragraphs, para)
				paras = append(paras, para)

			case "r":
				var run *Run
				if n := len(paras); n > 0 {
					run = &Run{}
					paras[n-1].Runs = append(paras[n-1].Runs, run)
				}
				runs = append(runs, run)

			case "t":
				if parent(0) != "r" || len(runs) == 0 || runs[len(runs)-1] == nil {
					break
				}
				end := int(dec.InputOffset())
				node := &textNode{
					tagStart:    offset,
					tagEnd:      end,
					selfClosing: bytes.HasSuffix(data[offset:end], []byte("/>")),
					preserve:    hasPreserve(t.Attr),
				}
				run := runs[len(runs)-1]
				run.nodes = append(run.nodes, node)
				part.nodes = append(part.nodes, node)
				text = node

			case "tab", "ptab", "br", "cr":
				if parent(0) != "r" || len(runs) == 0 || runs[len(runs)-1] == nil {
					break
				}
				ch := fixedText[local]
				run := runs[len(runs)-1]
				run.nodes = append(run.nodes, &textNode{kind: nodeFixed, orig: ch, text: ch})

			case "pStyle":
				if parent(0) == "pPr" && parent(1) == "p" && len(paras) > 0 {
					paras[len(paras)-1].StyleID = attr(t.Attr, "val")
				}

			case "jc":
				if parent(0) == "pPr" && parent(1) == "p" && len(paras) > 0 {
					paras[len(paras)-1].Justification = attr(t.Attr, "val")
				}

			case "tbl":
				tbl := &Table{}
				if c := top(cells); c != nil {
					c.Tables = append(c.Tables, tbl)
					tbl.Index = c.Table
				} else {
					tbl.Index = len(part.tables)
					part.tables = append(part.tables, tbl)
				}
				tables = append(tables, tbl)

			case "gridCol":
				if parent(0) == "tblGrid" && len(tables) > 0 {
					tables[len(tables)-1].GridCols++
				}

			case "tr":
				if n := len(tables); n > 0 {
					tbl := tables[n-1]
					row := &Row{Index: len(tbl.Rows)}
					tbl.Rows = append(tbl.Rows, row)
					rows = append(rows, row)
				} else {
					rows = append(rows, nil)
				}

			case "tc":
				if row := top(rows); row != nil {
					cell := &Cell{
						Table: tables[0].Index,
						Row:   row.Index,
						Index: len(row.Cells),
					}
					row.Cells = append(row.Cells, cell)
					cells = append(cells, cell)
				} else {
					cells = append(cells, nil)
				}

			case "headerReference", "footerReference":
				if parent(0) == "sectPr" {
					ref := sectionRef{kind: PartHeader, id: relID(t.Attr)}
					if local == "footerReference" {
						ref.kind = PartFooter
					}
					refs = append(refs, ref)
				}
			}
			elems = append(elems, local)

		case xml.CharData:
			if text != nil {
				text.orig += string(t)
			}

		case xml.EndElement:
			if len(elems) == 0 {
				return nil, nil, fmt.Errorf("unbalanced end element %s", t.Name.Local)
			}
			local := elems[len(elems)-1]
			elems = elems[:len(elems)-1]

			switch local {
			case "t":
				if text != nil {
					text.end = offset
					text.text = text.orig
					text = nil
				}
			case "p":
				paras = paras[:len(paras)-1]
			case "r":
				runs = runs[:len(runs)-1]
			case "tbl":
				tables = tables[:len(tables)-1]
			case "tr":
				rows = rows[:len(rows)-1]
			case "tc":
				cells = cells[:len(cells)-1]
			}
		}
	}

	if len(elems) != 0 {
		return nil, nil, fmt.Errorf("unexpected end of part inside <%s>", strings.Join(elems, "/"))
	}

	part.locate()
	return part, refs, nil
}

// locate assigns a Location to every paragraph of the part.
func (p *Part) locate() {
	body := 0
	for i, para := range p.paragraphs {
		switch {
		case p.Kind == PartHeader:
			para.Location = Location{Kind: KindHeader, Part: p.Index, Index: i}
		case p.Kind == PartFooter:
			para.Location = Location{Kind: KindFooter, Part: p.Index, Index: i}
		case para.cell != nil:
			para.Location = para.cell.Location()
		default:
			para.Location = Location{Kind: KindParagraph, Index: body}
			body++
		}
	}
}

func top[T any](s []*T) *T {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

func attr(attrs []xml.Attr, local string) string {
	for _, a := range attrs {
		if a.Name.Local == local && (a.Name.Space == "" || isWord(a.Name)) {
			return a.Value
		}
	}
	return ""
}

func relID(attrs []xml.Attr) string {
	for _, a := range attrs {
		if a.Name.Local == "id" && (a.Name.Space == relNS || a.Name.Space == strictRelNS) {
			return a.Value
		}
	}
	return ""
}

func hasPreserve(attrs []xml.Attr) bool {
	for _, a := range attrs {
		if a.Name.Local == "space" && (a.Name.Space == xmlNS || a.Name.Space == "xml") {
			return a.Value == "preserve"
		}
	}
	return false
}
