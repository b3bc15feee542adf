package extract

import (
	"fmt"
	"strings"
)

// CleanText renders the tree as the plain text sent for analysis: the
// reading order with "#" heading prefixes, then tables, headers and footers
// under their own section markers.
func CleanText(tree *ContentTree) string {
	parts := []string{"=== DOCUMENT CONTENT ===\n"}

	for _, item := range tree.Structured {
		if item.Type == "heading" {
			level := item.Level
			if level < 1 {
				level = 1
			}
			parts = append(parts, strings.Repeat("#", level)+" "+item.Content)
		} else {
			parts = append(parts, item.Content)
		}
		parts = append(parts, "")
	}

	if len(tree.Tables) > 0 {
		parts = append(parts, "\n=== TABLES ===\n")
		for i, t := range tree.Tables {
			parts = append(parts, fmt.Sprintf("Table %d:", i+1))
			parts = append(parts, t.TextContent...)
			parts = append(parts, "")
		}
	}

	if len(tree.Headers) > 0 {
		parts = append(parts, "\n=== HEADERS ===\n")
		parts = append(parts, tree.Headers...)
	}
	if len(tree.Footers) > 0 {
		parts = append(parts, "\n=== FOOTERS ===\n")
		parts = append(parts, tree.Footers...)
	}

	return strings.Join(parts, "\n")
}
