package docx

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ReplaceSpan replaces the byte range [start, end) of the paragraph's text
// with repl. The replacement lands in the text node holding the first
// replaced byte; later nodes the span reaches lose only their overlapping
// prefix, so runs outside the span keep their text and formatting. Tabs and
// breaks are read-only and a span covering one is rejected.
func (p *Paragraph) ReplaceSpan(start, end int, repl string) error {
	return splice(p.nodes(), start, end, repl)
}

// ReplaceSpan replaces the byte range [start, end) of the run's text.
func (r *Run) ReplaceSpan(start, end int, repl string) error {
	return splice(r.nodes, start, end, repl)
}

// ReplaceSpan replaces the byte range [start, end) of Text(). A span may
// cross paragraph breaks: the replacement lands in the paragraph where the
// span starts and the covered text is removed from the following ones, so
// the paragraph count never changes.
func (c *Cell) ReplaceSpan(start, end int, repl string) error {
	return splice(c.nodes(), start, end, repl)
}

// SetText rewrites the paragraph to s, editing only the span between the
// longest common prefix and suffix of the old and new text. Tabs and breaks
// in that span must reappear in s in the same order; otherwise nothing is
// written and SetText reports false.
func (p *Paragraph) SetText(s string) bool {
	return setText(p.nodes(), s)
}

// SetText rewrites the run to s the same way Paragraph.SetText does.
func (r *Run) SetText(s string) bool {
	return setText(r.nodes, s)
}

// SetText rewrites the cell to s without adding or removing paragraphs.
// When s has as many line breaks as the current text, only the changed
// span is edited. Otherwise s is distributed line by line: surplus lines
// join the last paragraph with a space, paragraphs beyond the last line are
// emptied, and paragraphs whose line is unchanged are left alone.
func (c *Cell) SetText(s string) bool {
	paras := c.Paragraphs
	if len(paras) == 0 {
		return s == ""
	}
	if strings.Count(s, "\n") == strings.Count(c.Text(), "\n") && setText(c.nodes(), s) {
		return true
	}

	lines := strings.Split(s, "\n")
	if len(lines) > len(paras) {
		tail := strings.Join(lines[len(paras)-1:], " ")
		lines = append(lines[:len(paras)-1], tail)
	}
	ok := true
	for i, p := range paras {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		if p.Text() == line {
			continue
		}
		if !p.SetText(line) {
			ok = false
		}
	}
	return ok
}

// nodes lists the cell's paragraph nodes with a separator between
// paragraphs, matching Text.
func (c *Cell) nodes() []*textNode {
	var out []*textNode
	for i, p := range c.Paragraphs {
		if i > 0 {
			out = append(out, &textNode{kind: nodeSeparator, orig: "\n", text: "\n"})
		}
		out = append(out, p.nodes()...)
	}
	return out
}

func joinText(nodes []*textNode) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(n.text)
	}
	return b.String()
}

// splice replaces [start, end) of the concatenated node text with repl.
// Fixed nodes inside the span are an error; separators inside it are
// dropped from the text without touching any XML.
func splice(nodes []*textNode, start, end int, repl string) error {
	offsets := make([]int, len(nodes))
	total := 0
	for i, n := range nodes {
		offsets[i] = total
		total += len(n.text)
	}
	if start < 0 || end < start || end > total {
		return fmt.Errorf("span [%d, %d) outside text of length %d", start, end, total)
	}
	for i, n := range nodes {
		if n.kind == nodeFixed && offsets[i] >= start && offsets[i] < end {
			return fmt.Errorf("span [%d, %d) covers a tab or break at %d", start, end, offsets[i])
		}
	}

	anchor := -1
	// Prefer the node holding start, then the one ending at start, then
	// an empty node at start.
	for i, n := range nodes {
		if n.kind == nodeText && offsets[i] <= start && start < offsets[i]+len(n.text) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		for i := len(nodes) - 1; i >= 0; i-- {
			if nodes[i].kind == nodeText && offsets[i]+len(nodes[i].text) == start {
				anchor = i
				break
			}
		}
	}
	if anchor < 0 {
		for i, n := range nodes {
			if n.kind == nodeText && offsets[i] == start {
				anchor = i
				break
			}
		}
	}
	if anchor < 0 {
		return fmt.Errorf("no text node at offset %d", start)
	}

	for i := anchor; i < len(nodes); i++ {
		n, at := nodes[i], offsets[i]
		if i > anchor && at >= end {
			break
		}
		if n.kind != nodeText {
			continue
		}
		lo := min(max(start-at, 0), len(n.text))
		hi := min(max(end-at, lo), len(n.text))
		if i == anchor {
			n.text = n.text[:lo] + repl + n.text[hi:]
		} else {
			n.text = n.text[hi:]
		}
	}
	return nil
}

// setText rewrites the concatenated node text to s. The changed span is cut
// at every fixed or separator node inside it and each piece is spliced on
// its own, right to left, so pinned characters keep their place. On failure
// the nodes are restored.
func setText(nodes []*textNode, s string) bool {
	old := joinText(nodes)
	if old == s {
		return true
	}

	pre := 0
	for pre < len(old) && pre < len(s) && old[pre] == s[pre] {
		pre++
	}
	for pre > 0 && (!runeStartAt(old, pre) || !runeStartAt(s, pre)) {
		pre--
	}
	suf := 0
	for suf < len(old)-pre && suf < len(s)-pre && old[len(old)-1-suf] == s[len(s)-1-suf] {
		suf++
	}
	for suf > 0 && (!runeStartAt(old, len(old)-suf) || !runeStartAt(s, len(s)-suf)) {
		suf--
	}
	lo, hi := pre, len(old)-suf
	mid := s[pre : len(s)-suf]

	type cut struct{ start, end int }
	var cuts []cut
	var pieces []string
	at, from := 0, lo
	for _, n := range nodes {
		if n.kind != nodeText && at >= lo && at < hi {
			i := strings.Index(mid, n.text)
			if i < 0 {
				return false
			}
			cuts = append(cuts, cut{from, at})
			pieces = append(pieces, mid[:i])
			mid = mid[i+len(n.text):]
			from = at + len(n.text)
		}
		at += len(n.text)
	}
	cuts = append(cuts, cut{from, hi})
	pieces = append(pieces, mid)

	saved := make([]string, len(nodes))
	for i, n := range nodes {
		saved[i] = n.text
	}
	for i := len(cuts) - 1; i >= 0; i-- {
		if cuts[i].start == cuts[i].end && pieces[i] == "" {
			continue
		}
		if err := splice(nodes, cuts[i].start, cuts[i].end, pieces[i]); err != nil {
			for j, n := range nodes {
				n.text = saved[j]
			}
			return false
		}
	}
	return true
}

func runeStartAt(s string, i int) bool {
	return i >= len(s) || utf8.RuneStart(s[i])
}
