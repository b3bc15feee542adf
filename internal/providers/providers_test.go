package providers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMockClient(t *testing.T) {
	t.Run("chat", func(t *testing.T) {
		c := NewMockClient()
		c.ResponseText = "hello world"

		result, err := c.Chat(context.Background(), &ChatRequest{
			Model:    "test-model",
			Messages: []Message{{Role: RoleUser, Content: "test"}},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Errorf("Success = false, want true")
		}
		if result.Content != "hello world" || result.FinishReason != FinishStop {
			t.Errorf("result = %+v", result)
		}
		if c.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", c.RequestCount())
		}
		if c.LastRequest().Model != "test-model" {
			t.Errorf("LastRequest() = %+v", c.LastRequest())
		}
	})

	t.Run("scripted responses", func(t *testing.T) {
		boom := errors.New("boom")
		c := NewMockClient(
			MockResponse{Content: "first", FinishReason: FinishLength},
			MockResponse{Err: boom},
		)
		req := &ChatRequest{Messages: []Message{{Role: RoleUser, Content: "x"}}}

		r1, err := c.Chat(context.Background(), req)
		if err != nil || r1.Content != "first" || !r1.Truncated() {
			t.Fatalf("first = %+v, %v", r1, err)
		}
		if _, err := c.Chat(context.Background(), req); !errors.Is(err, boom) {
			t.Fatalf("second error = %v, want boom", err)
		}
		r3, err := c.Chat(context.Background(), req)
		if err != nil || r3.Content != "mock response" {
			t.Fatalf("third = %+v, %v", r3, err)
		}
		if len(c.Requests()) != 3 {
			t.Errorf("Requests() = %d, want 3", len(c.Requests()))
		}
	})

	t.Run("should fail", func(t *testing.T) {
		c := NewMockClient()
		c.ShouldFail = true

		result, err := c.Chat(context.Background(), &ChatRequest{})
		if err == nil {
			t.Error("expected error")
		}
		if result.Success || result.ErrorType != "mock_failure" {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("fail after N", func(t *testing.T) {
		c := NewMockClient()
		c.FailAfter = 2
		for i := 0; i < 2; i++ {
			if _, err := c.Chat(context.Background(), &ChatRequest{}); err != nil {
				t.Errorf("request %d: unexpected error: %v", i+1, err)
			}
		}
		if _, err := c.Chat(context.Background(), &ChatRequest{}); err == nil {
			t.Error("request 3: expected error")
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		c := NewMockClient()
		c.Latency = time.Second

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		if _, err := c.Chat(ctx, &ChatRequest{}); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, want deadline exceeded", err)
		}
	})

	t.Run("concurrent requests", func(t *testing.T) {
		c := NewMockClient()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Chat(context.Background(), &ChatRequest{})
			}()
		}
		wg.Wait()
		if c.RequestCount() != 10 {
			t.Errorf("RequestCount = %d, want 10", c.RequestCount())
		}
		c.Reset()
		if c.RequestCount() != 0 || c.LastRequest() != nil {
			t.Error("Reset() did not clear state")
		}
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{400, false},
		{401, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		e := &APIError{Provider: "openai", StatusCode: tt.status}
		if e.Retryable() != tt.retryable {
			t.Errorf("status %d Retryable() = %v, want %v", tt.status, e.Retryable(), tt.retryable)
		}
	}
	if got := (&APIError{Provider: "openai", StatusCode: 401, Message: "bad key"}).Error(); got != "openai error (status 401): bad key" {
		t.Errorf("Error() = %q", got)
	}
}
