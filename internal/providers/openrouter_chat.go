package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chat sends a chat completion request.
func (c *OpenRouterClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	orReq := openRouterRequest{
		Model:       model,
		Messages:    make([]openRouterMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	for _, m := range req.Messages {
		orReq.Messages = append(orReq.Messages, openRouterMessage{Role: m.Role, Content: m.Content})
	}
	if req.ResponseFormat != nil {
		orReq.ResponseFormat = &openRouterResponseFormat{
			Type:       req.ResponseFormat.Type,
			JSONSchema: req.ResponseFormat.JSONSchema,
		}
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenRouterName,
	}

	// Pass pointer for nonce injection on retries
	orResp, attempts, httpErr := c.doRequest(ctx, "/chat/completions", &orReq)
	result.Attempts = attempts
	if httpErr != nil {
		return result.fail("http_error", httpErr, start)
	}
	if orResp.Error != nil {
		return result.fail("api_error", &APIError{
			Provider:   OpenRouterName,
			StatusCode: errorCodeStatus(orResp.Error.Code),
			Message:    orResp.Error.Message,
		}, start)
	}
	if len(orResp.Choices) == 0 {
		return result.fail("empty_response", fmt.Errorf("no choices in response"), start)
	}

	content := ""
	if raw := orResp.Choices[0].Message.Content; raw != nil {
		switch v := raw.(type) {
		case string:
			content = v
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return result.fail("content_marshal_error", fmt.Errorf("failed to marshal content: %w", err), start)
			}
			content = string(b)
		}
	}

	result.Success = true
	result.Content = content
	result.FinishReason = orResp.Choices[0].FinishReason
	result.ModelUsed = orResp.Model
	result.PromptTokens = orResp.Usage.PromptTokens
	result.CompletionTokens = orResp.Usage.CompletionTokens
	result.TotalTokens = orResp.Usage.TotalTokens
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// errorCodeStatus turns a numeric error code into a status, or 0.
func errorCodeStatus(code any) int {
	switch v := code.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
