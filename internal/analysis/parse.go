package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/docsmith/internal/prompts/analyze"
	"github.com/jackzampolin/docsmith/internal/prompts/validate"
)

var errEmpty = errors.New("empty response")

// parseRaw is the first parse stage. It accepts a JSON document on its own,
// wrapped in a markdown code fence, or surrounded by prose.
func parseRaw(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errEmpty
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	var firstErr error
	for _, candidate := range candidates {
		var parsed any
		err := json.Unmarshal([]byte(candidate), &parsed)
		if err == nil {
			return json.RawMessage(candidate), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func extractJSONCandidate(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}

// repairTruncated is the second parse stage. It cuts text back to the last
// object that closes an array element (a '}' followed by ',' or ']') and
// appends the closers for every bracket still open, innermost first. Both
// scans skip string contents. Nothing after the cut point survives, so a
// partially generated element is dropped rather than completed.
func repairTruncated(text string) string {
	text = strings.TrimRight(text, " \t\r\n")
	if cut := lastElementEnd(text); cut >= 0 {
		text = text[:cut+1]
	}

	var stack []byte
	scanStructure(text, func(i int, c byte) {
		switch c {
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	})

	var b strings.Builder
	b.Grow(len(text) + len(stack))
	b.WriteString(text)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}

// lastElementEnd returns the index of the last structural '}' whose next
// non-space byte is ',' or ']', or -1.
func lastElementEnd(text string) int {
	last := -1
	pending := -1
	scanStructure(text, func(i int, c byte) {
		switch c {
		case ' ', '\t', '\r', '\n':
			return
		case ',', ']':
			if pending >= 0 {
				last = pending
			}
		}
		pending = -1
		if c == '}' {
			pending = i
		}
	})
	return last
}

// scanStructure calls fn for every byte of text outside string literals.
// Quote characters themselves are not reported.
func scanStructure(text string, fn func(i int, c byte)) {
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		if c == '"' {
			inString = true
			continue
		}
		fn(i, c)
	}
}

// parseResponse runs the parse stages. Repair is attempted only for
// truncated responses. The returned flag reports whether repair was used.
func parseResponse(content string, truncated bool) (json.RawMessage, bool, error) {
	raw, err := parseRaw(content)
	if err == nil {
		return raw, false, nil
	}
	if !truncated {
		return nil, false, &ResponseFormatError{Raw: content, Err: err}
	}

	body := content
	if stripped := stripCodeFences(content); stripped != "" {
		body = stripped
	}
	repaired := repairTruncated(body)
	var parsed any
	if rerr := json.Unmarshal([]byte(repaired), &parsed); rerr != nil {
		return nil, false, &ResponseTruncatedError{Raw: content, Repaired: repaired, Err: rerr}
	}
	return json.RawMessage(repaired), true, nil
}

var (
	analysisSchema   = sync.OnceValues(func() (*jsonschema.Schema, error) { return compileSchema(analyze.ResponseSchema) })
	validationSchema = sync.OnceValues(func() (*jsonschema.Schema, error) { return compileSchema(validate.ResponseSchema) })
)

// compileSchema compiles the inner schema of a {"type":"json_schema",
// "json_schema":{"schema":...}} response format wrapper.
func compileSchema(wrapper map[string]any) (*jsonschema.Schema, error) {
	inner, ok := wrapper["json_schema"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema wrapper has no json_schema")
	}
	core, err := json.Marshal(inner["schema"])
	if err != nil {
		return nil, fmt.Errorf("failed to serialize schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(core)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	return compiler.Compile("schema.json")
}

// validateJSON checks parsed against schema.
func validateJSON(schema func() (*jsonschema.Schema, error), parsed json.RawMessage) error {
	s, err := schema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("response does not match schema: %w", err)
	}
	return nil
}

// score decodes a JSON number or a numeric string.
type score float64

func (s *score) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("score %q is not a number", str)
		}
		*s = score(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*s = score(f)
	return nil
}

type rawVariable struct {
	Name                 *string `json:"name"`
	OriginalText         *string `json:"original_text"`
	SuggestedPlaceholder *string `json:"suggested_placeholder"`
	Description          *string `json:"description"`
	Type                 *string `json:"type"`
	Context              *string `json:"context"`
	Confidence           *score  `json:"confidence"`
}

type rawImprovement struct {
	Location        *string `json:"location"`
	OriginalText    *string `json:"original_text"`
	ImprovedText    *string `json:"improved_text"`
	ImprovementType *string `json:"improvement_type"`
}

type rawResult struct {
	TemplateType      *string          `json:"template_type"`
	DocumentCategory  *string          `json:"document_category"`
	ConfidenceScore   *score           `json:"confidence_score"`
	PlaceholderFormat *string          `json:"placeholder_format"`
	Summary           *string          `json:"summary"`
	Variables         []rawVariable    `json:"variables"`
	TextImprovements  []rawImprovement `json:"text_improvements"`
	Suggestions       []string         `json:"suggestions"`
}

func str(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func num(p *score, def float64) float64 {
	if p == nil {
		return def
	}
	return float64(*p)
}

// decodeResult maps a parsed response onto Result, filling absent fields
// with their defaults. Values that are present are kept as sent.
func decodeResult(parsed json.RawMessage) (*Result, error) {
	var raw rawResult
	if err := json.Unmarshal(parsed, &raw); err != nil {
		return nil, err
	}

	res := &Result{
		TemplateType:      str(raw.TemplateType, "other"),
		DocumentCategory:  str(raw.DocumentCategory, ""),
		ConfidenceScore:   num(raw.ConfidenceScore, 0.5),
		PlaceholderFormat: str(raw.PlaceholderFormat, "mustache"),
		Summary:           str(raw.Summary, ""),
		Variables:         make([]VariableSuggestion, 0, len(raw.Variables)),
		TextImprovements:  make([]TextImprovement, 0, len(raw.TextImprovements)),
		Suggestions:       raw.Suggestions,
	}
	if res.Suggestions == nil {
		res.Suggestions = []string{}
	}
	for _, v := range raw.Variables {
		res.Variables = append(res.Variables, VariableSuggestion{
			Name:                 str(v.Name, ""),
			OriginalText:         str(v.OriginalText, ""),
			SuggestedPlaceholder: str(v.SuggestedPlaceholder, ""),
			Description:          str(v.Description, ""),
			Type:                 str(v.Type, "text"),
			Context:              str(v.Context, ""),
			Confidence:           num(v.Confidence, 0.5),
		})
	}
	for _, t := range raw.TextImprovements {
		res.TextImprovements = append(res.TextImprovements, TextImprovement{
			Location:        str(t.Location, ""),
			OriginalText:    str(t.OriginalText, ""),
			ImprovedText:    str(t.ImprovedText, ""),
			ImprovementType: str(t.ImprovementType, "grammar"),
		})
	}
	return res, nil
}
