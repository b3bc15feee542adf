package providers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockResponse is one scripted reply.
type MockResponse struct {
	Content      string
	FinishReason string // defaults to "stop"
	Err          error
}

// MockClient is an LLMClient for testing. Scripted Responses are consumed
// in order; once exhausted, ResponseText is returned.
type MockClient struct {
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string
	Responses    []MockResponse

	mu           sync.Mutex
	requests     []*ChatRequest
	requestCount atomic.Int64
}

// NewMockClient creates a new mock client with sensible defaults.
func NewMockClient(responses ...MockResponse) *MockClient {
	return &MockClient{
		ResponseText: "mock response",
		Responses:    responses,
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat records the request and returns the next scripted response.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	c.mu.Lock()
	c.requests = append(c.requests, req)
	next := MockResponse{Content: c.ResponseText}
	if idx := int(count) - 1; idx < len(c.Responses) {
		next = c.Responses[idx]
	}
	c.mu.Unlock()

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}

	if c.ShouldFail {
		return result.fail("mock_failure", fmt.Errorf("mock client configured to fail"), start)
	}
	if c.FailAfter > 0 && int(count) > c.FailAfter {
		return result.fail("mock_failure", fmt.Errorf("mock client failed after %d requests", c.FailAfter), start)
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return result.fail("context_cancelled", ctx.Err(), start)
		}
	} else if err := ctx.Err(); err != nil {
		return result.fail("context_cancelled", err, start)
	}

	if next.Err != nil {
		return result.fail("mock_failure", next.Err, start)
	}

	result.Success = true
	result.Content = next.Content
	result.FinishReason = next.FinishReason
	if result.FinishReason == "" {
		result.FinishReason = FinishStop
	}
	result.ExecutionTime = time.Since(start)

	// Rough token estimate
	for _, m := range req.Messages {
		result.PromptTokens += len(m.Content) / 4
	}
	result.CompletionTokens = len(next.Content) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens

	return result, nil
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns every request received, in order.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// LastRequest returns the most recent request, or nil.
func (c *MockClient) LastRequest() *ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}

// Reset clears recorded requests and the counter.
func (c *MockClient) Reset() {
	c.mu.Lock()
	c.requests = nil
	c.mu.Unlock()
	c.requestCount.Store(0)
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
