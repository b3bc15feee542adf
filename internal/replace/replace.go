// Package replace rewrites accepted text replacements into a document.
package replace

import (
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jackzampolin/docsmith/internal/docx"
	"github.com/jackzampolin/docsmith/internal/extract"
)

// Report counts what an apply pass rewrote.
type Report struct {
	Paragraphs int `json:"paragraphs" yaml:"paragraphs"`
	Cells      int `json:"cells" yaml:"cells"`
}

// Changed reports whether anything was rewritten.
func (r Report) Changed() bool { return r.Paragraphs+r.Cells > 0 }

// Result is the output of Apply and ApplySegments.
type Result struct {
	Blob   []byte
	Report Report
}

// Applier writes replacements into documents.
type Applier struct {
	Logger *slog.Logger
}

// Apply is shorthand for the zero Applier.
func Apply(blob []byte, replacements map[string]string) (*Result, error) {
	return (&Applier{}).Apply(blob, replacements)
}

// ApplySegments is shorthand for the zero Applier.
func ApplySegments(blob []byte, segments []extract.TextSegment) (*Result, error) {
	return (&Applier{}).ApplySegments(blob, segments)
}

// Merge combines accepted variable and improvement replacements into one
// map. Improvements win on equal keys. Empty keys and no-op pairs are
// dropped.
func Merge(variables, improvements map[string]string) map[string]string {
	out := make(map[string]string, len(variables)+len(improvements))
	for _, m := range []map[string]string{variables, improvements} {
		for k, v := range m {
			if k == "" || k == v {
				continue
			}
			out[k] = v
		}
	}
	return out
}

// Apply replaces every occurrence of each key with its value in body
// paragraphs, table cells, headers and footers. A table cell is matched
// as one unit so keys may cross its paragraph breaks. Only matched spans
// are written back, and applying the same map twice changes nothing the
// second time.
func (a *Applier) Apply(blob []byte, replacements map[string]string) (*Result, error) {
	d, err := docx.Open(blob)
	if err != nil {
		return nil, err
	}

	m := newMatcher(replacements)
	var rep Report
	if m != nil {
		for _, part := range d.Parts() {
			rewrite(part, m, &rep)
		}
	}

	out, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	a.logger().Debug("applied replacements",
		"keys", len(replacements),
		"paragraphs", rep.Paragraphs,
		"cells", rep.Cells)
	return &Result{Blob: out, Report: rep}, nil
}

// ApplySegments writes improved segment text over body paragraphs and
// top-level table cells whose trimmed text equals a segment's original.
func (a *Applier) ApplySegments(blob []byte, segments []extract.TextSegment) (*Result, error) {
	d, err := docx.Open(blob)
	if err != nil {
		return nil, err
	}

	improved := make(map[string]string)
	for _, s := range segments {
		if s.Improved() {
			improved[s.OriginalText] = s.ImprovedText
		}
	}

	var rep Report
	if len(improved) > 0 {
		match := func(text string) (string, bool) {
			v, ok := improved[strings.TrimSpace(text)]
			return v, ok && v != text
		}
		body := d.Body()
		for _, p := range body.Paragraphs() {
			if p.InTable() {
				continue
			}
			if v, ok := match(p.Text()); ok && p.SetText(v) {
				rep.Paragraphs++
			}
		}
		for _, t := range body.Tables() {
			for _, row := range t.Rows {
				for _, c := range row.Cells {
					if v, ok := match(c.Text()); ok && c.SetText(v) {
						rep.Cells++
					}
				}
			}
		}
	}

	out, err := d.Bytes()
	if err != nil {
		return nil, err
	}
	a.logger().Debug("applied segment improvements",
		"segments", len(improved),
		"paragraphs", rep.Paragraphs,
		"cells", rep.Cells)
	return &Result{Blob: out, Report: rep}, nil
}

func (a *Applier) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// matcher rewrites text in one left-to-right pass. At each position the
// first pair whose old text matches wins and scanning resumes after it, so
// inserted text is never rescanned.
type matcher struct {
	pairs []pair
}

type pair struct {
	old, new string
}

// edit replaces text[start:end] with repl.
type edit struct {
	start, end int
	repl       string
}

// newMatcher orders keys longest first. Any value that contains a key is
// registered ahead of every key as an identity pair, so text already
// rewritten is matched whole and left alone on later passes. It returns nil
// when there is nothing to replace.
func newMatcher(replacements map[string]string) *matcher {
	keys := make([]string, 0, len(replacements))
	for k, v := range replacements {
		if k != "" && k != v {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	byLength(keys)

	seen := make(map[string]bool)
	var guards []string
	for _, k := range keys {
		v := replacements[k]
		if seen[v] {
			continue
		}
		seen[v] = true
		for _, other := range keys {
			if strings.Contains(v, other) {
				guards = append(guards, v)
				break
			}
		}
	}
	byLength(guards)

	m := &matcher{pairs: make([]pair, 0, len(guards)+len(keys))}
	for _, g := range guards {
		m.pairs = append(m.pairs, pair{g, g})
	}
	for _, k := range keys {
		m.pairs = append(m.pairs, pair{k, replacements[k]})
	}
	return m
}

// edits returns the replacements for text in ascending order.
func (m *matcher) edits(text string) []edit {
	var out []edit
	for i := 0; i < len(text); {
		matched := false
		for _, p := range m.pairs {
			if strings.HasPrefix(text[i:], p.old) {
				if p.old != p.new {
					out = append(out, edit{i, i + len(p.old), p.new})
				}
				i += len(p.old)
				matched = true
				break
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(text[i:])
			i += size
		}
	}
	return out
}

// byLength sorts longest first, then lexically.
func byLength(s []string) {
	sort.Slice(s, func(i, j int) bool {
		if len(s[i]) != len(s[j]) {
			return len(s[i]) > len(s[j])
		}
		return s[i] < s[j]
	})
}

// spliceEdits applies edits right to left through replace and reports
// whether any landed. An edit covering a tab or break is skipped.
func spliceEdits(edits []edit, replace func(start, end int, repl string) error) bool {
	changed := false
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		if err := replace(e.start, e.end, e.repl); err == nil {
			changed = true
		}
	}
	return changed
}

// rewrite walks the part's paragraphs outside tables and then every table
// cell, nested tables included, splicing each unit's matches in place.
func rewrite(part *docx.Part, m *matcher, rep *Report) {
	for _, p := range part.Paragraphs() {
		if p.InTable() {
			continue
		}
		if spliceEdits(m.edits(p.Text()), p.ReplaceSpan) {
			rep.Paragraphs++
		}
	}
	var walk func(tables []*docx.Table)
	walk = func(tables []*docx.Table) {
		for _, t := range tables {
			for _, row := range t.Rows {
				for _, c := range row.Cells {
					if spliceEdits(m.edits(c.Text()), c.ReplaceSpan) {
						rep.Cells++
					}
					walk(c.Tables)
				}
			}
		}
	}
	walk(part.Tables())
}
