package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// fakeChatServer mimics the chat completions endpoint. The first failures
// requests answer with failStatus; later ones succeed with reply.
func fakeChatServer(t *testing.T, counter *atomic.Int64, failures int64, failStatus int, reply string, captured *capturedRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := counter.Add(1)
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}

		w.Header().Set("Content-Type", "application/json")
		if n <= failures {
			w.WriteHeader(failStatus)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "upstream exploded", "type": "server_error"},
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIProvider_ChatCompletion(t *testing.T) {
	var counter atomic.Int64
	var captured capturedRequest
	srv := fakeChatServer(t, &counter, 0, 0, "  Pricing discussion summary.\n", &captured)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})

	req := NewChatCompletionRequest(
		SystemMessage("You are an AI assistant that summarizes transcripts."),
		UserMessage("We discussed pricing."),
	).WithMaxTokens(500).WithTemperature(0.7)

	resp, err := p.ChatCompletion(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "  Pricing discussion summary.\n", resp.Content())
	assert.Equal(t, "stop", resp.FinishReason())
	assert.Equal(t, 15, resp.Usage().TotalTokens())
	assert.Equal(t, int64(1), counter.Load())

	assert.Equal(t, "test-model", captured.Model)
	assert.Equal(t, 500, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.Temperature, 1e-6)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "We discussed pricing.", captured.Messages[1].Content)
}

func TestOpenAIProvider_DefaultModel(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k"})
	assert.Equal(t, "gpt-3.5-turbo", p.Model())
}

func TestOpenAIProvider_NoRetryByDefault(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, 10, http.StatusInternalServerError, "never", nil)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, InitialDelay: time.Millisecond})

	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest(UserMessage("hi")))
	require.Error(t, err)
	assert.Equal(t, int64(1), counter.Load(), "exactly one attempt")

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusInternalServerError, pe.StatusCode())
	assert.Equal(t, "chat_completion", pe.Operation())
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestOpenAIProvider_RetriesWhenConfigured(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, 2, http.StatusServiceUnavailable, "third time lucky", nil)

	p := NewOpenAIProvider(OpenAIConfig{
		APIKey:        "k",
		BaseURL:       srv.URL,
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		BackoffFactor: 1,
	})

	resp, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest(UserMessage("hi")))
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", resp.Content())
	assert.Equal(t, int64(3), counter.Load())
}

func TestOpenAIProvider_DoesNotRetryClientErrors(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, 10, http.StatusBadRequest, "never", nil)

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, MaxRetries: 3, InitialDelay: time.Millisecond})

	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest(UserMessage("hi")))
	require.Error(t, err)
	assert.Equal(t, int64(1), counter.Load())
}

func TestOpenAIProvider_CancelledContext(t *testing.T) {
	var counter atomic.Int64
	srv := fakeChatServer(t, &counter, 0, 0, "ok", nil)
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ChatCompletion(ctx, NewChatCompletionRequest(UserMessage("hi")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, counter.Load())
}

func TestChatCompletionRequest_IsImmutable(t *testing.T) {
	base := NewChatCompletionRequest(UserMessage("hi"))
	tuned := base.WithMaxTokens(300).WithTemperature(0.8)

	assert.Zero(t, base.MaxTokens())
	assert.Equal(t, 300, tuned.MaxTokens())
	assert.InDelta(t, 0.8, tuned.Temperature(), 1e-9)

	msgs := tuned.Messages()
	msgs[0] = SystemMessage("changed")
	assert.Equal(t, "user", tuned.Messages()[0].Role())
}

func TestProviderError(t *testing.T) {
	cause := errors.New("boom")
	err := NewProviderError("chat_completion", http.StatusTooManyRequests, "slow down", cause)

	assert.Equal(t, "chat_completion: 429 slow down", err.Error())
	assert.True(t, err.IsRateLimited())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "chat_completion: no choices", NewProviderError("chat_completion", 0, "no choices", nil).Error())
}
