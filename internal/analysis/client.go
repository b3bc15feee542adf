// Package analysis is the client for the external text-analysis service.
// It turns document clean text into variable and text-improvement
// suggestions, improves text segments and reviews finished conversions.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackzampolin/docsmith/internal/fill"
	"github.com/jackzampolin/docsmith/internal/llmcall"
	"github.com/jackzampolin/docsmith/internal/prompts"
	"github.com/jackzampolin/docsmith/internal/prompts/analyze"
	"github.com/jackzampolin/docsmith/internal/prompts/improve"
	"github.com/jackzampolin/docsmith/internal/prompts/validate"
	"github.com/jackzampolin/docsmith/internal/providers"
)

// Config holds request parameters for each operation.
type Config struct {
	// Model overrides the provider's default model when set.
	Model string

	Temperature float64
	MaxTokens   int

	ImproveTemperature float64
	ImproveMaxTokens   int

	ValidateTemperature float64
	ValidateMaxTokens   int

	// Timeout bounds each service call; zero leaves it to the context.
	Timeout time.Duration

	// Format is providers.FormatJSONObject or providers.FormatJSONSchema.
	Format string

	// Catalogue is rendered into the analysis prompt as the standard placeholders.
	Catalogue fill.Catalogue
}

// DefaultConfig returns the request parameters the prompts were tuned with.
// The model is left to the provider, whose default is gpt-4o-mini.
func DefaultConfig() Config {
	return Config{
		Temperature:         0.1,
		MaxTokens:           16000,
		ImproveTemperature:  0.3,
		ImproveMaxTokens:    4000,
		ValidateTemperature: 0.1,
		ValidateMaxTokens:   1000,
		Timeout:             2 * time.Minute,
		Format:              providers.FormatJSONObject,
		Catalogue:           fill.DefaultCatalogue(),
	}
}

// Client calls the text-analysis service. It holds no per-call state and is
// safe for concurrent use.
type Client struct {
	llm      providers.LLMClient
	cfg      Config
	resolver *prompts.Resolver
	recorder *llmcall.Recorder
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithResolver sets the prompt resolver. The client registers its embedded
// prompts with it.
func WithResolver(r *prompts.Resolver) Option {
	return func(c *Client) { c.resolver = r }
}

// WithRecorder records every service call.
func WithRecorder(r *llmcall.Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// NewClient creates a client over llm. Zero token limits take the defaults.
func NewClient(llm providers.LLMClient, cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.ImproveMaxTokens <= 0 {
		cfg.ImproveMaxTokens = def.ImproveMaxTokens
	}
	if cfg.ValidateMaxTokens <= 0 {
		cfg.ValidateMaxTokens = def.ValidateMaxTokens
	}
	if cfg.Format == "" {
		cfg.Format = providers.FormatJSONObject
	}
	if cfg.Catalogue == nil {
		cfg.Catalogue = def.Catalogue
	}

	c := &Client{llm: llm, cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.resolver == nil {
		c.resolver = prompts.NewResolver(nil, c.logger)
	}
	RegisterPrompts(c.resolver)
	return c
}

// RegisterPrompts registers every prompt the client uses.
func RegisterPrompts(r *prompts.Resolver) {
	analyze.RegisterPrompts(r)
	improve.RegisterPrompts(r)
	validate.RegisterPrompts(r)
}

// promptPair is the resolved system and user prompt for one operation.
type promptPair struct {
	system *prompts.ResolvedPrompt
	user   *prompts.ResolvedPrompt
}

// overrides returns the texts to pass as request overrides: empty unless
// the resolver served an override file.
func (p promptPair) overrides() (system, user string) {
	if p.system.IsOverride {
		system = p.system.Text
	}
	if p.user.IsOverride {
		user = p.user.Text
	}
	return system, user
}

func (c *Client) resolvePair(systemKey, userKey string) (promptPair, error) {
	sys, err := c.resolver.Resolve(systemKey)
	if err != nil {
		return promptPair{}, err
	}
	user, err := c.resolver.Resolve(userKey)
	if err != nil {
		return promptPair{}, err
	}
	return promptPair{system: sys, user: user}, nil
}

// call sends req and records it. A transport failure comes back as a
// *ServiceError; a missing result or empty content as a *ResponseFormatError.
func (c *Client) call(ctx context.Context, op string, pair promptPair, req *providers.ChatRequest, doc string) (*providers.ChatResult, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	if req.Model == "" {
		req.Model = c.cfg.Model
	}

	c.logger.Debug("sending analysis request",
		"operation", op,
		"provider", c.llm.Name(),
		"prompt_chars", len(req.Messages[len(req.Messages)-1].Content),
		"max_tokens", req.MaxTokens)

	temp := req.Temperature
	result, err := c.llm.Chat(ctx, req)
	c.recorder.Record(result, llmcall.RecordOptions{
		Operation:   op,
		Document:    doc,
		PromptKey:   pair.system.Key,
		PromptHash:  pair.system.Hash,
		Override:    pair.system.IsOverride || pair.user.IsOverride,
		Temperature: &temp,
	})
	if err != nil {
		return nil, serviceError(c.llm.Name(), err)
	}
	if result == nil {
		return nil, &ResponseFormatError{Err: errEmpty}
	}

	c.logger.Info("analysis response",
		"operation", op,
		"finish_reason", result.FinishReason,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens)
	return result, nil
}

// Analyze asks the service for variable and text-improvement suggestions
// for cleanText. meta may be nil.
func (c *Client) Analyze(ctx context.Context, cleanText string, meta *Metadata) (*Result, error) {
	pair, err := c.resolvePair(analyze.SystemPromptKey, analyze.UserPromptKey)
	if err != nil {
		return nil, err
	}
	sysOverride, userOverride := pair.overrides()

	var metaJSON, doc string
	if meta != nil {
		if metaJSON, err = prompts.IndentJSON(meta); err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		doc = meta.FileName
	}

	req, err := analyze.CreateRequest(analyze.Input{
		DocumentText:         cleanText,
		Groups:               c.cfg.Catalogue.Groups(),
		Metadata:             metaJSON,
		SystemPromptOverride: sysOverride,
		UserPromptOverride:   userOverride,
		Temperature:          c.cfg.Temperature,
		MaxTokens:            c.cfg.MaxTokens,
		Format:               c.cfg.Format,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("analysing document", "text_chars", len(cleanText), "document", doc)

	chat, err := c.call(ctx, "analyze", pair, req, doc)
	if err != nil {
		return nil, err
	}

	if chat.Truncated() {
		c.logger.Warn("analysis response truncated, attempting repair", "chars", len(chat.Content))
	}
	parsed, repaired, err := parseResponse(chat.Content, chat.Truncated())
	if err != nil {
		return nil, err
	}
	if repaired {
		c.logger.Info("repaired truncated analysis response")
	}
	if err := validateJSON(analysisSchema, parsed); err != nil {
		return nil, &ResponseFormatError{Raw: chat.Content, Err: err}
	}
	res, err := decodeResult(parsed)
	if err != nil {
		return nil, &ResponseFormatError{Raw: chat.Content, Err: err}
	}
	res.Repaired = repaired

	locate(res.Variables, cleanText)

	c.logger.Info("analysis complete",
		"template_type", res.TemplateType,
		"variables", len(res.Variables),
		"improvements", len(res.TextImprovements),
		"repaired", repaired)
	return res, nil
}
