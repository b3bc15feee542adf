// Package llmcall provides LLM call recording and querying for traceability.
// Every LLM API call is recorded with its prompt key, response, and metrics.
package llmcall

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/docsmith/internal/providers"
)

// Call represents a recorded LLM API call.
type Call struct {
	// Unique identifier
	ID string `json:"id" yaml:"id"`

	// Timing
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	LatencyMs int       `json:"latency_ms" yaml:"latency_ms"`

	// Context references
	Operation string `json:"operation,omitempty" yaml:"operation,omitempty"` // analyze, improve, validate
	Document  string `json:"document,omitempty" yaml:"document,omitempty"`   // file name of the analysed document

	// Prompt traceability
	PromptKey  string `json:"prompt_key" yaml:"prompt_key"`
	PromptHash string `json:"prompt_hash,omitempty" yaml:"prompt_hash,omitempty"` // SHA256 of the system prompt actually sent
	Override   bool   `json:"override,omitempty" yaml:"override,omitempty"`

	// Model info
	Provider    string   `json:"provider" yaml:"provider"`
	Model       string   `json:"model" yaml:"model"`
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// Token usage
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`

	// Response
	Response     string `json:"response" yaml:"response"`
	FinishReason string `json:"finish_reason,omitempty" yaml:"finish_reason,omitempty"`
	Attempts     int    `json:"attempts,omitempty" yaml:"attempts,omitempty"`

	// Status
	Success bool   `json:"success" yaml:"success"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RecordOptions provides context for recording an LLM call.
type RecordOptions struct {
	Operation string
	Document  string

	// Prompt identification (required for traceability)
	PromptKey  string
	PromptHash string
	Override   bool

	// Request parameters (pointer to distinguish "not set" from "set to 0")
	Temperature *float64
}

// FromChatResult creates a Call from a ChatResult.
// Returns nil if result is nil.
func FromChatResult(result *providers.ChatResult, opts RecordOptions) *Call {
	if result == nil {
		return nil
	}

	call := &Call{
		ID:           uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		LatencyMs:    int(result.ExecutionTime.Milliseconds()),
		Operation:    opts.Operation,
		Document:     opts.Document,
		PromptKey:    opts.PromptKey,
		PromptHash:   opts.PromptHash,
		Override:     opts.Override,
		Provider:     result.Provider,
		Model:        result.ModelUsed,
		Temperature:  opts.Temperature,
		InputTokens:  result.PromptTokens,
		OutputTokens: result.CompletionTokens,
		Response:     result.Content,
		FinishReason: result.FinishReason,
		Attempts:     result.Attempts,
		Success:      result.Success,
	}

	if !result.Success {
		call.Error = result.ErrorMessage
	}
	return call
}

// LogAttrs returns the call as slog attributes, without the response text.
func (c *Call) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("id", c.ID),
		slog.String("operation", c.Operation),
		slog.String("prompt_key", c.PromptKey),
		slog.String("provider", c.Provider),
		slog.String("model", c.Model),
		slog.Int("latency_ms", c.LatencyMs),
		slog.Int("input_tokens", c.InputTokens),
		slog.Int("output_tokens", c.OutputTokens),
		slog.String("finish_reason", c.FinishReason),
		slog.Bool("success", c.Success),
	}
	if c.Document != "" {
		attrs = append(attrs, slog.String("document", c.Document))
	}
	if c.Override {
		attrs = append(attrs, slog.Bool("override", true))
	}
	if c.Error != "" {
		attrs = append(attrs, slog.String("error", c.Error))
	}
	return attrs
}
