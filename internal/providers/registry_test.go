package providers

import (
	"reflect"
	"sync"
	"testing"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get LLM", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockClient()

		r.RegisterLLM("test-llm", mock)

		client, err := r.GetLLM("test-llm")
		if err != nil {
			t.Fatalf("GetLLM() error = %v", err)
		}
		if client != mock {
			t.Error("got different client than registered")
		}
	})

	t.Run("get nonexistent LLM", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.GetLLM("nonexistent"); err == nil {
			t.Error("expected error for nonexistent LLM")
		}
	})

	t.Run("list and has", func(t *testing.T) {
		r := NewRegistry()
		r.RegisterLLM("llm2", NewMockClient())
		r.RegisterLLM("llm1", NewMockClient())

		if got := r.ListLLM(); !reflect.DeepEqual(got, []string{"llm1", "llm2"}) {
			t.Errorf("ListLLM() = %v", got)
		}
		if !r.HasLLM("llm1") {
			t.Error("HasLLM() = false for registered LLM")
		}
		r.UnregisterLLM("llm1")
		if r.HasLLM("llm1") {
			t.Error("HasLLM() = true after unregister")
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		r := NewRegistry()
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				r.RegisterLLM("shared", NewMockClient())
			}()
			go func() {
				defer wg.Done()
				_ = r.ListLLM()
				_, _ = r.GetLLM("shared")
			}()
		}
		wg.Wait()
		if !r.HasLLM("shared") {
			t.Error("shared client missing")
		}
	})
}

func TestRegistryFromConfig(t *testing.T) {
	cfg := RegistryConfig{LLMProviders: map[string]LLMProviderConfig{
		"openai":     {Type: OpenAIName, APIKey: "sk-test", Enabled: true},
		"openrouter": {Type: OpenRouterName, APIKey: "or-test", Model: "openai/gpt-4o-mini", Enabled: true},
		"disabled":   {Type: OpenAIName, APIKey: "sk-test", Enabled: false},
		"nokey":      {Type: OpenAIName, Enabled: true},
		"mock":       {Type: MockClientName, Enabled: true},
		"bogus":      {Type: "carrier-pigeon", APIKey: "x", Enabled: true},
	}}

	r := NewRegistryFromConfig(cfg)
	if got, want := r.ListLLM(), []string{"mock", "openai", "openrouter"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ListLLM() = %v, want %v", got, want)
	}
	client, _ := r.GetLLM("openai")
	if _, ok := client.(*OpenAIClient); !ok {
		t.Errorf("openai client = %T", client)
	}

	t.Run("reload keeps unchanged clients", func(t *testing.T) {
		before, _ := r.GetLLM("openrouter")
		r.Reload(cfg)
		after, _ := r.GetLLM("openrouter")
		if before != after {
			t.Error("unchanged provider was recreated")
		}
	})

	t.Run("reload replaces changed and drops removed", func(t *testing.T) {
		before, _ := r.GetLLM("openai")
		r.Reload(RegistryConfig{LLMProviders: map[string]LLMProviderConfig{
			"openai": {Type: OpenAIName, APIKey: "sk-rotated", Enabled: true},
		}})
		after, err := r.GetLLM("openai")
		if err != nil {
			t.Fatalf("GetLLM() error = %v", err)
		}
		if before == after {
			t.Error("changed provider was not recreated")
		}
		if got := r.ListLLM(); !reflect.DeepEqual(got, []string{"openai"}) {
			t.Errorf("ListLLM() = %v", got)
		}
	})
}

func TestNew(t *testing.T) {
	if _, err := New(LLMProviderConfig{Type: "unknown"}); err == nil {
		t.Error("expected error for unknown type")
	}
	c, err := New(LLMProviderConfig{Type: OpenRouterName, APIKey: "k"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.Name() != OpenRouterName {
		t.Errorf("Name() = %q", c.Name())
	}
}
