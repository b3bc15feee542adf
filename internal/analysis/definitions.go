package analysis

import (
	"sort"
	"strings"

	"github.com/jackzampolin/docsmith/internal/replace"
)

// VariableDefinition describes a template variable for template metadata.
type VariableDefinition struct {
	Name         string `json:"name" yaml:"name"`
	Placeholder  string `json:"placeholder" yaml:"placeholder"`
	Description  string `json:"description" yaml:"description"`
	Type         string `json:"type" yaml:"type"`
	DefaultValue string `json:"default_value" yaml:"default_value"`
	Required     bool   `json:"required" yaml:"required"`
	OriginalText string `json:"original_text" yaml:"original_text"`
}

// VariableDefinitions builds one required definition with an empty default
// per accepted variable.
func VariableDefinitions(vars []VariableSuggestion) []VariableDefinition {
	out := make([]VariableDefinition, len(vars))
	for i, v := range vars {
		out[i] = VariableDefinition{
			Name:         v.Name,
			Placeholder:  v.SuggestedPlaceholder,
			Description:  v.Description,
			Type:         v.Type,
			Required:     true,
			OriginalText: v.OriginalText,
		}
	}
	return out
}

// ApplyToText substitutes accepted variables into the clean text they were
// located in. Variables with offsets are replaced at those rune offsets from
// the highest start down when the text there matches their original text,
// ignoring case. The rest, and any whose offsets point elsewhere, replace the
// first occurrence of their original text.
func ApplyToText(text string, vars []VariableSuggestion) string {
	sorted := make([]VariableSuggestion, len(vars))
	copy(sorted, vars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start() > sorted[j].start() })

	for _, v := range sorted {
		if v.StartPosition != nil && v.EndPosition != nil {
			runes := []rune(text)
			start, end := *v.StartPosition, *v.EndPosition
			if start >= 0 && start <= end && end <= len(runes) &&
				(v.OriginalText == "" || strings.EqualFold(string(runes[start:end]), v.OriginalText)) {
				text = string(runes[:start]) + v.SuggestedPlaceholder + string(runes[end:])
				continue
			}
		}
		if v.OriginalText != "" {
			text = strings.Replace(text, v.OriginalText, v.SuggestedPlaceholder, 1)
		}
	}
	return text
}

// Replacements merges accepted variables and improvements into one
// original-text to replacement-text map for the applier. An improvement
// wins over a variable with the same original text.
func Replacements(vars []VariableSuggestion, improvements []TextImprovement) map[string]string {
	vm := make(map[string]string, len(vars))
	for _, v := range vars {
		vm[v.OriginalText] = v.SuggestedPlaceholder
	}
	im := make(map[string]string, len(improvements))
	for _, t := range improvements {
		im[t.OriginalText] = t.ImprovedText
	}
	return replace.Merge(vm, im)
}
