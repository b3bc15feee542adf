package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headingIndicators = []string{"heading", "title", "subtitle", "header", "h1", "h2", "h3", "h4", "h5", "h6"}

	headingNumber = regexp.MustCompile(`heading\s*(\d+)`)
	hNumber       = regexp.MustCompile(`h(\d+)`)
)

// IsHeading reports whether a style name marks a heading. The match is a
// case-insensitive substring test against common heading style names.
func IsHeading(style string) bool {
	s := strings.ToLower(style)
	for _, ind := range headingIndicators {
		if strings.Contains(s, ind) {
			return true
		}
	}
	return false
}

// HeadingLevel derives a heading level from a style name: "heading N",
// then "hN", then title (1) and subtitle (2), defaulting to 1.
func HeadingLevel(style string) int {
	s := strings.ToLower(style)
	if m := headingNumber.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if m := hNumber.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	switch {
	case strings.Contains(s, "subtitle"):
		return 2
	case strings.Contains(s, "title"):
		return 1
	}
	return 1
}
