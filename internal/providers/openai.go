package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	OpenAIName         = "openai"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIConfig holds configuration for the OpenAI chat client.
type OpenAIConfig struct {
	APIKey       string
	DefaultModel string        // "gpt-4o-mini" (default)
	MaxRetries   int           // SDK transport retries (default: 0)
	Timeout      time.Duration // HTTP timeout
	BaseURL      string        // Optional (tests, compatible gateways)
	HTTPClient   *http.Client  // Optional (tests)
}

// OpenAIClient implements LLMClient using the official OpenAI SDK.
type OpenAIClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	maxRetries   int
	client       openai.Client
}

// NewOpenAIClient creates a new OpenAI chat client. Retries are off unless
// configured; callers decide whether a failed call is worth repeating.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = openAIDefaultModel
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		defaultModel: cfg.DefaultModel,
		maxRetries:   cfg.MaxRetries,
		client:       openai.NewClient(opts...),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return OpenAIName
}

// Model returns the configured default model.
func (c *OpenAIClient) Model() string {
	return c.defaultModel
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenAIName,
		Attempts:  1,
	}

	params, err := c.buildParams(model, req)
	if err != nil {
		return result.fail("invalid_request", err, start)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return result.fail("http_error", mapOpenAIError(err), start)
	}
	if len(resp.Choices) == 0 {
		return result.fail("empty_response", fmt.Errorf("no choices in response"), start)
	}

	choice := resp.Choices[0]
	result.Success = true
	result.Content = choice.Message.Content
	result.FinishReason = string(choice.FinishReason)
	result.ModelUsed = resp.Model
	result.PromptTokens = int(resp.Usage.PromptTokens)
	result.CompletionTokens = int(resp.Usage.CompletionTokens)
	result.TotalTokens = int(resp.Usage.TotalTokens)
	result.ExecutionTime = time.Since(start)
	return result, nil
}

func (c *OpenAIClient) buildParams(model string, req *ChatRequest) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)),
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		case RoleUser:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		default:
			return params, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}
	if req.Temperature != 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	if rf := req.ResponseFormat; rf != nil {
		switch rf.Type {
		case FormatJSONObject:
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			}
		case FormatJSONSchema:
			var wrapper struct {
				Name   string         `json:"name"`
				Strict bool           `json:"strict"`
				Schema map[string]any `json:"schema"`
			}
			if err := json.Unmarshal(rf.JSONSchema, &wrapper); err != nil {
				return params, fmt.Errorf("invalid json_schema response format: %w", err)
			}
			if wrapper.Name == "" {
				wrapper.Name = "response"
			}
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
					JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:   wrapper.Name,
						Strict: openai.Bool(wrapper.Strict),
						Schema: wrapper.Schema,
					},
				},
			}
		default:
			return params, fmt.Errorf("unsupported response format %q", rf.Type)
		}
	}
	return params, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &APIError{
			Provider:   OpenAIName,
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Message,
		}
	}
	return err
}

var _ LLMClient = (*OpenAIClient)(nil)
