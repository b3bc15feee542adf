package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func openRouterReply(content, finish string) map[string]any {
	return map[string]any{
		"id":    "test-id",
		"model": "openai/gpt-4o-mini",
		"choices": []map[string]any{
			{
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": finish,
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     10,
			"completion_tokens": 8,
			"total_tokens":      18,
		},
	}
}

func TestOpenRouterClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		var got openRouterRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode request: %v", err)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(openRouterReply(`{"ok":true}`, "stop"))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			APIKey:  "test-key",
			BaseURL: server.URL,
		})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{
				{Role: RoleSystem, Content: "be terse"},
				{Role: RoleUser, Content: "Hello"},
			},
			Temperature:    0.1,
			MaxTokens:      16000,
			ResponseFormat: &ResponseFormat{Type: FormatJSONObject},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success || result.Content != `{"ok":true}` {
			t.Errorf("result = %+v", result)
		}
		if result.TotalTokens != 18 || result.Attempts != 1 || result.Truncated() {
			t.Errorf("result = %+v", result)
		}
		if got.Model != "openai/gpt-4o-mini" || got.MaxTokens != 16000 || got.Temperature != 0.1 {
			t.Errorf("request = %+v", got)
		}
		if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %+v", got.ResponseFormat)
		}
		if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", got.Messages)
		}
	})

	t.Run("length finish reason", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(openRouterReply(`{"variables": [`, "length"))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: RoleUser, Content: "x"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Truncated() {
			t.Errorf("Truncated() = false, finish = %q", result.FinishReason)
		}
	})

	t.Run("single attempt by default", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("overloaded"))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: RoleUser, Content: "x"}},
		})
		if err == nil {
			t.Fatal("expected error")
		}
		apiErr, ok := IsAPIError(err)
		if !ok || apiErr.StatusCode != http.StatusServiceUnavailable || !apiErr.Retryable() {
			t.Errorf("error = %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
		if result == nil || result.Success || result.ErrorType != "http_error" {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("retries with nonce when configured", func(t *testing.T) {
		var calls atomic.Int32
		var lastContent atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req openRouterRequest
			json.NewDecoder(r.Body).Decode(&req)
			lastContent.Store(req.Messages[len(req.Messages)-1].Content)
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			json.NewEncoder(w).Encode(openRouterReply("done", "stop"))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{
			APIKey:      "k",
			BaseURL:     server.URL,
			MaxAttempts: 3,
			RetryDelay:  time.Millisecond,
		})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: RoleUser, Content: "x"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Attempts != 2 || result.Content != "done" {
			t.Errorf("result = %+v", result)
		}
		if s, _ := lastContent.Load().(string); !strings.Contains(s, "retry_1_id") {
			t.Errorf("retry content = %q, want nonce", s)
		}
	})

	t.Run("client error is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"message":"bad key"}}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL, MaxAttempts: 3})
		_, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: RoleUser, Content: "x"}},
		})
		apiErr, ok := IsAPIError(err)
		if !ok || apiErr.StatusCode != http.StatusUnauthorized || apiErr.Retryable() {
			t.Errorf("error = %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("api error in body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":{"message":"content filtered","code":403}}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: RoleUser, Content: "x"}},
		})
		apiErr, ok := IsAPIError(err)
		if !ok || apiErr.StatusCode != 403 || apiErr.Message != "content filtered" {
			t.Errorf("error = %v", err)
		}
		if result.ErrorType != "api_error" {
			t.Errorf("ErrorType = %q", result.ErrorType)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(openRouterReply("late", "stop"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		if _, err := client.Chat(ctx, &ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}}); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}

func TestOpenRouterClient_Live(t *testing.T) {
	cfg := LoadTestConfig()
	if !cfg.HasOpenRouter() {
		t.Skip("OPENROUTER_API_KEY not set")
	}
	client := NewOpenRouterClient(OpenRouterConfig{APIKey: cfg.OpenRouterAPIKey})
	result, err := client.Chat(context.Background(), &ChatRequest{
		Messages:  []Message{{Role: RoleUser, Content: "Reply with the single word: ok"}},
		MaxTokens: 10,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if result.Content == "" {
		t.Error("empty content")
	}
}
