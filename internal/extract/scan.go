package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// contextRadius is the number of characters kept on each side of a
// candidate in its context window.
const contextRadius = 50

// Candidate is a span of text that looks like variable data. Offsets count
// characters (runes), not bytes.
type Candidate struct {
	Text    string `json:"text" yaml:"text"`
	Type    string `json:"type" yaml:"type"`
	Start   int    `json:"start" yaml:"start"`
	End     int    `json:"end" yaml:"end"`
	Context string `json:"context" yaml:"context"`
}

type scanPattern struct {
	kind string
	re   *regexp.Regexp
}

var scanPatterns = []scanPattern{
	{"bracketed", regexp.MustCompile(`(?i)\[([^\]]+)\]`)},
	{"mustache", regexp.MustCompile(`(?i)\{\{([^}]+)\}\}`)},
	{"curly", regexp.MustCompile(`(?i)\{([^}]+)\}`)},
	{"xxx_pattern", regexp.MustCompile(`(?i)\bXXX+\b`)},
	{"underlines", regexp.MustCompile(`_{3,}`)},
	{"date", regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)},
	{"currency", regexp.MustCompile(`\$[\d,]+\.?\d*`)},
	{"decimal", regexp.MustCompile(`\b\d+\.\d{2}\b`)},
	{"company_caps", regexp.MustCompile(`\b[A-Z]{2,}\s+[A-Z]{2,}`)},
	{"email", regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)},
	{"phone", regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)},
	{"address", regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Lane|Ln|Drive|Dr|Boulevard|Blvd)\b`)},
}

// Scan finds candidate variable spans in text. Results are advisory: grouped
// by pattern in a fixed order, then by position. Every pattern ignores case
// except company_caps, which only makes sense for upper-case runs.
func Scan(text string) []Candidate {
	runes := []rune(text)
	toRune := runeOffsets(text)

	var out []Candidate
	for _, p := range scanPatterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			start, end := toRune[loc[0]], toRune[loc[1]]
			lo := max(0, start-contextRadius)
			hi := min(len(runes), end+contextRadius)
			out = append(out, Candidate{
				Text:    text[loc[0]:loc[1]],
				Type:    p.kind,
				Start:   start,
				End:     end,
				Context: strings.TrimSpace(string(runes[lo:hi])),
			})
		}
	}
	return out
}

// runeOffsets maps every byte offset of s (including len(s)) to the index
// of the rune starting at or containing it.
func runeOffsets(s string) []int {
	out := make([]int, len(s)+1)
	n := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		for j := 0; j < size; j++ {
			out[i+j] = n
		}
		i += size
		n++
	}
	out[len(s)] = n
	return out
}
