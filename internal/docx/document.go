// Package docx reads and edits the text of Office Open XML word-processing
// packages without disturbing anything else in them.
//
// A Document exposes paragraphs, runs, tables and header/footer parts as
// text-addressable nodes. Edits only ever change the character content of
// w:t elements; serialization splices the new text into the original part
// bytes and copies every untouched zip entry verbatim.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
)

const (
	mainPart   = "word/document.xml"
	stylesPart = "word/styles.xml"
	relsPart   = "word/_rels/document.xml.rels"

	// sniffLen is the header size filetype needs to classify a blob.
	sniffLen = 261
)

// ParseError reports a blob that is not a readable word-processing package.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("docx: %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ErrNotPackage is wrapped by ParseError when the blob is not a zip package.
var ErrNotPackage = errors.New("not a zip package")

// Document is an opened word-processing package.
type Document struct {
	raw    []byte
	zr     *zip.Reader
	body   *Part
	heads  []*Part
	feet   []*Part
	parts  map[string]*Part
	styles *styleSheet
}

// Open parses blob. It fails with *ParseError unless blob is a zip package
// holding a well-formed word/document.xml; no partial document is returned.
func Open(blob []byte) (*Document, error) {
	head := blob
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	kind, _ := filetype.Match(head)
	if kind != matchers.TypeZip && kind != matchers.TypeDocx {
		return nil, &ParseError{Op: "sniff", Err: fmt.Errorf("%w (detected %q)", ErrNotPackage, kind.Extension)}
	}

	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, &ParseError{Op: "open zip", Err: err}
	}

	d := &Document{
		raw:   blob,
		zr:    zr,
		parts: make(map[string]*Part),
	}

	mainData, err := readEntry(zr, mainPart)
	if err != nil {
		return nil, &ParseError{Op: "read " + mainPart, Err: err}
	}
	body, refs, err := parsePart(mainPart, PartBody, 0, mainData)
	if err != nil {
		return nil, &ParseError{Op: "parse " + mainPart, Err: err}
	}
	d.body = body
	d.parts[mainPart] = body

	if data, err := readEntry(zr, stylesPart); err == nil {
		if d.styles, err = parseStyles(data); err != nil {
			return nil, &ParseError{Op: "parse " + stylesPart, Err: err}
		}
	}

	var rels []relationship
	if data, err := readEntry(zr, relsPart); err == nil {
		if rels, err = parseRels(data); err != nil {
			return nil, &ParseError{Op: "parse " + relsPart, Err: err}
		}
	}

	for _, pk := range []PartKind{PartHeader, PartFooter} {
		for i, name := range d.sectionParts(pk, refs, rels) {
			data, err := readEntry(zr, name)
			if err != nil {
				// Dangling relationship targets are tolerated.
				continue
			}
			p, _, err := parsePart(name, pk, i, data)
			if err != nil {
				return nil, &ParseError{Op: "parse " + name, Err: err}
			}
			d.parts[name] = p
			if pk == PartHeader {
				d.heads = append(d.heads, p)
			} else {
				d.feet = append(d.feet, p)
			}
		}
	}

	return d, nil
}

// sectionParts resolves the header or footer parts of the document, ordered
// by their first reference from a section and followed by any related part
// no section references. Without relationships it falls back to zip names.
func (d *Document) sectionParts(kind PartKind, refs []sectionRef, rels []relationship) []string {
	byID := make(map[string]string, len(rels))
	var related []string
	for _, r := range rels {
		if r.kind() != kind {
			continue
		}
		target := r.resolve("word")
		byID[r.ID] = target
		related = append(related, target)
	}

	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, ref := range refs {
		if ref.kind == kind {
			add(byID[ref.id])
		}
	}
	sort.Strings(related)
	for _, name := range related {
		add(name)
	}

	if len(rels) == 0 {
		prefix := "word/header"
		if kind == PartFooter {
			prefix = "word/footer"
		}
		var found []string
		for _, f := range d.zr.File {
			if strings.HasPrefix(f.Name, prefix) && path.Ext(f.Name) == ".xml" {
				found = append(found, f.Name)
			}
		}
		sort.Strings(found)
		for _, name := range found {
			add(name)
		}
	}
	return names
}

// Body returns the main document part.
func (d *Document) Body() *Part { return d.body }

// Headers returns the header parts in section order.
func (d *Document) Headers() []*Part { return d.heads }

// Footers returns the footer parts in section order.
func (d *Document) Footers() []*Part { return d.feet }

// Parts returns the body followed by headers and footers.
func (d *Document) Parts() []*Part {
	out := make([]*Part, 0, 1+len(d.heads)+len(d.feet))
	out = append(out, d.body)
	out = append(out, d.heads...)
	return append(out, d.feet...)
}

// Paragraphs returns every paragraph of every part in document order,
// including paragraphs inside table cells.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, p := range d.Parts() {
		out = append(out, p.paragraphs...)
	}
	return out
}

// Tables returns the top-level tables of the main document part.
func (d *Document) Tables() []*Table { return d.body.tables }

// StyleName returns the display name of the paragraph's style, falling back
// to the package default paragraph style and then to "Normal".
func (d *Document) StyleName(p *Paragraph) string {
	return d.styles.name(p.StyleID)
}

// Modified reports whether any text node differs from the original package.
func (d *Document) Modified() bool {
	for _, p := range d.parts {
		if p.dirty() {
			return true
		}
	}
	return false
}

// Bytes serializes the document. An unmodified document yields a copy of
// the original blob. Otherwise untouched entries are copied raw and only
// edited parts are re-encoded, with the archive's entry order preserved.
func (d *Document) Bytes() ([]byte, error) {
	if !d.Modified() {
		return bytes.Clone(d.raw), nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if d.zr.Comment != "" {
		if err := zw.SetComment(d.zr.Comment); err != nil {
			return nil, fmt.Errorf("set archive comment: %w", err)
		}
	}

	for _, f := range d.zr.File {
		p, ok := d.parts[f.Name]
		if !ok || !p.dirty() {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		method := f.Method
		if method != zip.Store {
			method = zip.Deflate
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Comment:  f.Comment,
			Method:   method,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(p.render()); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found", name)
}
