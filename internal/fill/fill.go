// Package fill substitutes {{name}} placeholders in a document with values.
package fill

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/jackzampolin/docsmith/internal/docx"
)

// pattern matches a {{name}} token. Names cannot contain braces, tabs or
// line breaks and are trimmed before lookup.
var pattern = regexp.MustCompile(`\{\{([^{}\t\n]+)\}\}`)

// Result is the output of Fill.
type Result struct {
	Blob     []byte
	Filled   int      // tokens replaced
	Unfilled []string // sorted, unique names seen without a non-empty value
}

// Filler replaces placeholders in documents. The zero value scans runs
// independently, which leaves a token split across runs untouched and
// unreported; SpanRuns matches against whole paragraph text instead.
type Filler struct {
	SpanRuns bool
	Logger   *slog.Logger
}

// Fill is shorthand for the zero Filler.
func Fill(blob []byte, values map[string]string) (*Result, error) {
	return (&Filler{}).Fill(blob, values)
}

// Fill replaces every placeholder whose value is non-empty, covering body
// paragraphs, table cells, headers and footers. Names without a value, or
// with an empty one, are left in place and reported as unfilled. When
// nothing is replaced the returned blob equals the input.
func (f *Filler) Fill(blob []byte, values map[string]string) (*Result, error) {
	d, err := docx.Open(blob)
	if err != nil {
		return nil, err
	}

	unfilled := make(map[string]struct{})
	filled := 0
	for _, p := range d.Paragraphs() {
		if f.SpanRuns {
			filled += fillSpans(p, values, unfilled)
		} else {
			filled += fillRuns(p, values, unfilled)
		}
	}

	out, err := d.Bytes()
	if err != nil {
		return nil, err
	}

	res := &Result{Blob: out, Filled: filled, Unfilled: sortedKeys(unfilled)}
	f.logger().Debug("filled placeholders",
		"filled", res.Filled,
		"unfilled", len(res.Unfilled),
		"span_runs", f.SpanRuns)
	return res, nil
}

func (f *Filler) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// fillRuns substitutes tokens found wholly inside single runs. Each token
// is spliced into the text node holding it, so tabs and breaks elsewhere in
// the run keep their place.
func fillRuns(p *docx.Paragraph, values map[string]string, unfilled map[string]struct{}) int {
	n := 0
	for _, r := range p.Runs {
		text := r.Text()
		if !strings.Contains(text, "{{") {
			continue
		}
		n += fillMatches(text, values, unfilled, r.ReplaceSpan)
	}
	return n
}

// fillMatches replaces the tokens of text right to left through replace,
// which keeps earlier offsets valid.
func fillMatches(text string, values map[string]string, unfilled map[string]struct{}, replace func(start, end int, repl string) error) int {
	matches := pattern.FindAllStringSubmatchIndex(text, -1)
	n := 0
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		name := strings.TrimSpace(text[m[2]:m[3]])
		if name == "" {
			continue
		}
		v := values[name]
		if v == "" {
			unfilled[name] = struct{}{}
			continue
		}
		if err := replace(m[0], m[1], v); err == nil {
			n++
		}
	}
	return n
}

// fillSpans substitutes tokens against the paragraph's full text and writes
// each replacement back into only the runs the token covered.
func fillSpans(p *docx.Paragraph, values map[string]string, unfilled map[string]struct{}) int {
	return fillMatches(p.Text(), values, unfilled, p.ReplaceSpan)
}

// Names lists the unique placeholder names in the document, sorted. Tokens
// are matched against whole paragraph text, so split tokens are found.
func Names(blob []byte) ([]string, error) {
	d, err := docx.Open(blob)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, p := range d.Paragraphs() {
		for _, m := range pattern.FindAllStringSubmatch(p.Text(), -1) {
			if name := strings.TrimSpace(m[1]); name != "" {
				seen[name] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
