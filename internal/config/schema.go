package config

import (
	"time"

	"github.com/jackzampolin/docsmith/internal/analysis"
	"github.com/jackzampolin/docsmith/internal/fill"
	"github.com/jackzampolin/docsmith/internal/providers"
)

// Config holds docsmith configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Analysis     AnalysisCfg               `mapstructure:"analysis" yaml:"analysis"`
	Fill         FillCfg                   `mapstructure:"fill" yaml:"fill"`
	Placeholders fill.Catalogue            `mapstructure:"placeholders" yaml:"placeholders"`
	Records      fill.Records              `mapstructure:"records" yaml:"records"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`                       // "openai", "openrouter", "mock"
	Model          string `mapstructure:"model" yaml:"model"`                     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`     // Optional endpoint override
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // HTTP timeout
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`         // Transport retries, 0 for one attempt
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default provider selection and concurrency.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Default LLM provider
	MaxWorkers  int    `mapstructure:"max_workers" yaml:"max_workers"`   // Max concurrent batch workers
}

// AnalysisCfg tunes the text-analysis requests.
type AnalysisCfg struct {
	Model               string  `mapstructure:"model" yaml:"model,omitempty"`
	Temperature         float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens           int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	ImproveTemperature  float64 `mapstructure:"improve_temperature" yaml:"improve_temperature"`
	ImproveMaxTokens    int     `mapstructure:"improve_max_tokens" yaml:"improve_max_tokens"`
	ValidateTemperature float64 `mapstructure:"validate_temperature" yaml:"validate_temperature"`
	ValidateMaxTokens   int     `mapstructure:"validate_max_tokens" yaml:"validate_max_tokens"`
	TimeoutSeconds      int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Format              string  `mapstructure:"format" yaml:"format"` // "json_object" or "json_schema"
	Retries             int     `mapstructure:"retries" yaml:"retries"`
}

// FillCfg configures the placeholder filler.
type FillCfg struct {
	DateLayout string `mapstructure:"date_layout" yaml:"date_layout"` // Go reference layout for date.today
	SpanRuns   bool   `mapstructure:"span_runs" yaml:"span_runs"`     // Match placeholders split across runs
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	ac := analysis.DefaultConfig()
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openai": {
				Type:           providers.OpenAIName,
				Model:          "gpt-4o-mini",
				APIKey:         "${OPENAI_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			"openrouter": {
				Type:           providers.OpenRouterName,
				Model:          "openai/gpt-4o-mini",
				APIKey:         "${OPENROUTER_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openai",
			MaxWorkers:  4,
		},
		Analysis: AnalysisCfg{
			Temperature:         ac.Temperature,
			MaxTokens:           ac.MaxTokens,
			ImproveTemperature:  ac.ImproveTemperature,
			ImproveMaxTokens:    ac.ImproveMaxTokens,
			ValidateTemperature: ac.ValidateTemperature,
			ValidateMaxTokens:   ac.ValidateMaxTokens,
			TimeoutSeconds:      int(ac.Timeout / time.Second),
			Format:              ac.Format,
		},
		Fill: FillCfg{
			DateLayout: fill.DefaultDateLayout,
		},
		Placeholders: fill.DefaultCatalogue(),
		Records: fill.Records{
			"client":   {"company_name": "", "uen": "", "industry": "", "address": "", "postal_code": ""},
			"contact":  {"name": "", "phone": "", "email": ""},
			"company":  {"name": "", "email": "", "phone": "", "address": "", "website": ""},
			"document": {"quotation_number": "", "quotation_status": "", "invoice_number": "", "invoice_status": "", "due_date": "", "invoice_date": ""},
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// Catalogue returns the configured placeholder catalogue, or the built-in
// one when none is configured.
func (c *Config) Catalogue() fill.Catalogue {
	if len(c.Placeholders) == 0 {
		return fill.DefaultCatalogue()
	}
	return c.Placeholders
}

// AnalysisConfig converts the analysis section for analysis.NewClient.
// Zero values keep the client defaults.
func (c *Config) AnalysisConfig() analysis.Config {
	out := analysis.DefaultConfig()
	a := c.Analysis
	out.Model = a.Model
	if a.Temperature != 0 {
		out.Temperature = a.Temperature
	}
	if a.MaxTokens > 0 {
		out.MaxTokens = a.MaxTokens
	}
	if a.ImproveTemperature != 0 {
		out.ImproveTemperature = a.ImproveTemperature
	}
	if a.ImproveMaxTokens > 0 {
		out.ImproveMaxTokens = a.ImproveMaxTokens
	}
	if a.ValidateTemperature != 0 {
		out.ValidateTemperature = a.ValidateTemperature
	}
	if a.ValidateMaxTokens > 0 {
		out.ValidateMaxTokens = a.ValidateMaxTokens
	}
	if a.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(a.TimeoutSeconds) * time.Second
	}
	if a.Format != "" {
		out.Format = a.Format
	}
	out.Catalogue = c.Catalogue()
	return out
}

// Filler builds a placeholder filler from the fill section.
func (c *Config) Filler() *fill.Filler {
	return &fill.Filler{SpanRuns: c.Fill.SpanRuns}
}

// Values resolves the catalogue against the configured records as of now.
func (c *Config) Values(now time.Time) map[string]string {
	return c.Catalogue().Resolve(c.Records, now, c.Fill.DateLayout)
}
