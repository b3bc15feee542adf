package validate

import (
	"encoding/json"

	"github.com/jackzampolin/docsmith/internal/prompts"
	"github.com/jackzampolin/docsmith/internal/providers"
)

// Input contains the data needed for a validation request. The texts are
// cut to MaxExcerpt characters by CreateRequest.
type Input struct {
	OriginalText  string
	ConvertedText string
	Variables     []Variable

	SystemPromptOverride string
	UserPromptOverride   string

	Model       string
	Temperature float64
	MaxTokens   int
	Format      string
}

// Variable is one applied variable as shown to the model.
type Variable struct {
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
	Original    string `json:"original"`
}

// CreateRequest builds the chat request for a conversion validation.
func CreateRequest(input Input) (*providers.ChatRequest, error) {
	systemPrompt := input.SystemPromptOverride
	if systemPrompt == "" {
		systemPrompt = SystemPrompt()
	}

	vars := input.Variables
	if vars == nil {
		vars = []Variable{}
	}
	varsJSON, err := prompts.IndentJSON(vars)
	if err != nil {
		return nil, err
	}

	data := UserPromptData{
		OriginalText:  Excerpt(input.OriginalText),
		ConvertedText: Excerpt(input.ConvertedText),
		Variables:     varsJSON,
	}
	userPrompt, err := UserPromptWithOverride(data, input.UserPromptOverride)
	if err != nil {
		return nil, err
	}

	return &providers.ChatRequest{
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: systemPrompt},
			{Role: providers.RoleUser, Content: userPrompt},
		},
		Model:          input.Model,
		Temperature:    input.Temperature,
		MaxTokens:      input.MaxTokens,
		ResponseFormat: buildResponseFormat(input.Format),
	}, nil
}

func buildResponseFormat(format string) *providers.ResponseFormat {
	if format != providers.FormatJSONSchema {
		return &providers.ResponseFormat{Type: providers.FormatJSONObject}
	}
	jsonSchema, _ := json.Marshal(ResponseSchema["json_schema"])
	return &providers.ResponseFormat{
		Type:       providers.FormatJSONSchema,
		JSONSchema: jsonSchema,
	}
}
