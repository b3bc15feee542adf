package improve

import "github.com/jackzampolin/docsmith/internal/providers"

// Input contains the data needed for an improvement request.
type Input struct {
	Texts []string
	Mode  Mode

	SystemPromptOverride string
	UserPromptOverride   string

	Model       string
	Temperature float64
	MaxTokens   int
}

// CreateRequest builds the chat request for a segment improvement round.
// The response is plain text in the [SEGMENT_N] format, not JSON.
func CreateRequest(input Input) (*providers.ChatRequest, error) {
	systemPrompt := input.SystemPromptOverride
	if systemPrompt == "" {
		systemPrompt = SystemPrompt()
	}

	data := UserPromptData{
		Instruction: Instruction(input.Mode),
		SegmentText: FormatSegments(input.Texts),
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
		Model:       input.Model,
		Temperature: input.Temperature,
		MaxTokens:   input.MaxTokens,
	}, nil
}
