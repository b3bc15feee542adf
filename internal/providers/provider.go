package providers

import (
	"context"
	"encoding/json"
	"time"
)

// LLMClient is the interface for chat completion requests.
type LLMClient interface {
	// Chat sends a chat completion request. A non-nil result is returned
	// alongside transport errors so callers can log what was attempted.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openai").
	Name() string
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reasons reported by providers.
const (
	FinishStop   = "stop"
	FinishLength = "length"
)

// Response format types.
const (
	FormatJSONObject = "json_object"
	FormatJSONSchema = "json_schema"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies structured output format. JSONSchema is the
// {"name","strict","schema"} wrapper and only applies to FormatJSONSchema.
type ResponseFormat struct {
	Type       string          `json:"type"`
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	ExecutionTime time.Duration `json:"execution_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool   `json:"success"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Truncated reports whether generation stopped at the token limit.
func (r *ChatResult) Truncated() bool {
	return r != nil && r.FinishReason == FinishLength
}

// fail marks the result as failed and returns err.
func (r *ChatResult) fail(errType string, err error, start time.Time) (*ChatResult, error) {
	r.Success = false
	r.ErrorType = errType
	r.ErrorMessage = err.Error()
	r.ExecutionTime = time.Since(start)
	return r, err
}
