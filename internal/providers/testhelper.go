package providers

import (
	"os"
)

// TestConfig holds provider configurations loaded from environment variables.
// This allows tests to use the same configuration pattern as production.
type TestConfig struct {
	OpenAIAPIKey     string
	OpenRouterAPIKey string
}

// LoadTestConfig loads provider API keys from environment variables.
// Returns a TestConfig with whatever keys are available.
func LoadTestConfig() TestConfig {
	return TestConfig{
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
	}
}

// HasOpenAI returns true if the OpenAI API key is configured.
func (c TestConfig) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

// HasOpenRouter returns true if the OpenRouter API key is configured.
func (c TestConfig) HasOpenRouter() bool {
	return c.OpenRouterAPIKey != ""
}

// HasAnyLLM returns true if any LLM provider is configured.
func (c TestConfig) HasAnyLLM() bool {
	return c.HasOpenAI() || c.HasOpenRouter()
}

// ToRegistryConfig converts test config to a RegistryConfig for the provider registry.
// Only includes providers that have API keys configured.
func (c TestConfig) ToRegistryConfig() RegistryConfig {
	cfg := RegistryConfig{LLMProviders: make(map[string]LLMProviderConfig)}
	if c.HasOpenAI() {
		cfg.LLMProviders[OpenAIName] = LLMProviderConfig{
			Type:    OpenAIName,
			APIKey:  c.OpenAIAPIKey,
			Enabled: true,
		}
	}
	if c.HasOpenRouter() {
		cfg.LLMProviders[OpenRouterName] = LLMProviderConfig{
			Type:    OpenRouterName,
			APIKey:  c.OpenRouterAPIKey,
			Enabled: true,
		}
	}
	return cfg
}
