package analysis

import (
	"context"
	"encoding/json"

	"github.com/jackzampolin/docsmith/internal/prompts/validate"
)

// Verdict is the service's review of a template conversion.
type Verdict struct {
	IsValid         bool     `json:"is_valid" yaml:"is_valid"`
	QualityScore    float64  `json:"quality_score" yaml:"quality_score"`
	Issues          []string `json:"issues" yaml:"issues"`
	Suggestions     []string `json:"suggestions" yaml:"suggestions"`
	MissedVariables []string `json:"missed_variables" yaml:"missed_variables"`
}

type rawVerdict struct {
	IsValid         bool     `json:"is_valid"`
	QualityScore    *score   `json:"quality_score"`
	Issues          []string `json:"issues"`
	Suggestions     []string `json:"suggestions"`
	MissedVariables []string `json:"missed_variables"`
}

// ValidateConversion asks the service to review converted against original
// given the variables that were applied. Failures are returned as errors,
// never as a synthetic verdict.
func (c *Client) ValidateConversion(ctx context.Context, original, converted string, vars []VariableSuggestion) (*Verdict, error) {
	pair, err := c.resolvePair(validate.SystemPromptKey, validate.UserPromptKey)
	if err != nil {
		return nil, err
	}
	sysOverride, userOverride := pair.overrides()

	applied := make([]validate.Variable, len(vars))
	for i, v := range vars {
		applied[i] = validate.Variable{Name: v.Name, Placeholder: v.SuggestedPlaceholder, Original: v.OriginalText}
	}
	req, err := validate.CreateRequest(validate.Input{
		OriginalText:         original,
		ConvertedText:        converted,
		Variables:            applied,
		SystemPromptOverride: sysOverride,
		UserPromptOverride:   userOverride,
		Temperature:          c.cfg.ValidateTemperature,
		MaxTokens:            c.cfg.ValidateMaxTokens,
		Format:               c.cfg.Format,
	})
	if err != nil {
		return nil, err
	}

	chat, err := c.call(ctx, "validate", pair, req, "")
	if err != nil {
		return nil, err
	}
	parsed, _, err := parseResponse(chat.Content, chat.Truncated())
	if err != nil {
		return nil, err
	}
	if err := validateJSON(validationSchema, parsed); err != nil {
		return nil, &ResponseFormatError{Raw: chat.Content, Err: err}
	}

	var raw rawVerdict
	if err := json.Unmarshal(parsed, &raw); err != nil {
		return nil, &ResponseFormatError{Raw: chat.Content, Err: err}
	}
	v := &Verdict{
		IsValid:         raw.IsValid,
		QualityScore:    num(raw.QualityScore, 0),
		Issues:          nonNil(raw.Issues),
		Suggestions:     nonNil(raw.Suggestions),
		MissedVariables: nonNil(raw.MissedVariables),
	}
	c.logger.Info("validation complete", "valid", v.IsValid, "quality", v.QualityScore, "issues", len(v.Issues))
	return v, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
