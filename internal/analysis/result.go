package analysis

import (
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/jackzampolin/docsmith/internal/extract"
)

// VariableSuggestion proposes turning a literal span into a placeholder.
// StartPosition and EndPosition are rune offsets into the analysed clean
// text, nil when the span was not found there.
type VariableSuggestion struct {
	Name                 string  `json:"name" yaml:"name"`
	OriginalText         string  `json:"original_text" yaml:"original_text"`
	SuggestedPlaceholder string  `json:"suggested_placeholder" yaml:"suggested_placeholder"`
	Description          string  `json:"description" yaml:"description"`
	Type                 string  `json:"type" yaml:"type"`
	Context              string  `json:"context" yaml:"context"`
	Confidence           float64 `json:"confidence" yaml:"confidence"`
	StartPosition        *int    `json:"start_position" yaml:"start_position"`
	EndPosition          *int    `json:"end_position" yaml:"end_position"`
}

func (v VariableSuggestion) start() int {
	if v.StartPosition == nil {
		return 0
	}
	return *v.StartPosition
}

// TextImprovement proposes replacing a span for grammar, clarity or tone.
type TextImprovement struct {
	Location        string `json:"location" yaml:"location"`
	OriginalText    string `json:"original_text" yaml:"original_text"`
	ImprovedText    string `json:"improved_text" yaml:"improved_text"`
	ImprovementType string `json:"improvement_type" yaml:"improvement_type"`
}

// Result is one analysis of a document. Variables are sorted by
// StartPosition, unset positions counting as 0.
type Result struct {
	TemplateType      string               `json:"template_type" yaml:"template_type"`
	DocumentCategory  string               `json:"document_category" yaml:"document_category"`
	ConfidenceScore   float64              `json:"confidence_score" yaml:"confidence_score"`
	PlaceholderFormat string               `json:"placeholder_format" yaml:"placeholder_format"`
	Summary           string               `json:"summary" yaml:"summary"`
	Variables         []VariableSuggestion `json:"variables" yaml:"variables"`
	TextImprovements  []TextImprovement    `json:"text_improvements" yaml:"text_improvements"`
	Suggestions       []string             `json:"suggestions" yaml:"suggestions"`

	// Repaired is set when the response was truncated and recovered.
	Repaired bool `json:"repaired,omitempty" yaml:"repaired,omitempty"`
}

// Metadata describes the analysed document. It is appended to the prompt
// as indented JSON.
type Metadata struct {
	TemplateName string `json:"template_name,omitempty" yaml:"template_name,omitempty"`
	TemplateType string `json:"template_type,omitempty" yaml:"template_type,omitempty"`
	FileName     string `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	TotalWords   int    `json:"total_words" yaml:"total_words"`
	HasTables    bool   `json:"has_tables" yaml:"has_tables"`
	HasHeaders   bool   `json:"has_headers" yaml:"has_headers"`
}

// MetadataFor builds Metadata from an extracted content tree.
func MetadataFor(tree *extract.ContentTree, fileName, templateName, templateType string) *Metadata {
	return &Metadata{
		TemplateName: templateName,
		TemplateType: templateType,
		FileName:     fileName,
		TotalWords:   tree.Metadata.TotalWords,
		HasTables:    len(tree.Tables) > 0,
		HasHeaders:   tree.Metadata.HasHeaders,
	}
}

// locate sets each variable's offsets to its first case-insensitive match
// in text and sorts the list by start offset.
func locate(vars []VariableSuggestion, text string) {
	for i := range vars {
		v := &vars[i]
		v.StartPosition, v.EndPosition = nil, nil
		if v.OriginalText == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(v.OriginalText))
		if err != nil {
			continue
		}
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		start := utf8.RuneCountInString(text[:loc[0]])
		end := start + utf8.RuneCountInString(text[loc[0]:loc[1]])
		v.StartPosition, v.EndPosition = &start, &end
	}
	sort.SliceStable(vars, func(i, j int) bool { return vars[i].start() < vars[j].start() })
}
