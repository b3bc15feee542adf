package analyze

import (
	"encoding/json"

	"github.com/jackzampolin/docsmith/internal/fill"
	"github.com/jackzampolin/docsmith/internal/providers"
)

// Input contains the data needed for an analysis request.
type Input struct {
	DocumentText string
	Groups       []fill.Group
	Metadata     string

	// SystemPromptOverride replaces the embedded system prompt when non-empty.
	SystemPromptOverride string

	// UserPromptOverride replaces the embedded user template when non-empty.
	UserPromptOverride string

	Model       string
	Temperature float64
	MaxTokens   int

	// Format is providers.FormatJSONObject (default) or providers.FormatJSONSchema.
	Format string
}

// CreateRequest builds the chat request for a template analysis.
func CreateRequest(input Input) (*providers.ChatRequest, error) {
	systemPrompt := input.SystemPromptOverride
	if systemPrompt == "" {
		systemPrompt = SystemPrompt()
	}

	data := UserPromptData{
		DocumentText: input.DocumentText,
		Groups:       input.Groups,
		Metadata:     input.Metadata,
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
