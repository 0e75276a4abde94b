package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is used when no model is configured.
const DefaultChatModel = openai.GPT3Dot5Turbo

// OpenAIProvider implements TextGenerator against any OpenAI-compatible
// chat completion API, such as OpenAI or Groq.
type OpenAIProvider struct {
	client        *openai.Client
	model         string
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
	// Transport, when set, replaces the default HTTP transport.
	Transport http.RoundTripper
}

// NewOpenAIProvider creates a provider from configuration. MaxRetries of 0
// means a single attempt.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 || cfg.Transport != nil {
		config.HTTPClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}
	initialDelay := cfg.InitialDelay
	if initialDelay <= 0 {
		initialDelay = 2 * time.Second
	}
	backoffFactor := cfg.BackoffFactor
	if backoffFactor <= 0 {
		backoffFactor = 2.0
	}

	return &OpenAIProvider{
		client:        openai.NewClientWithConfig(config),
		model:         model,
		maxRetries:    max(cfg.MaxRetries, 0),
		initialDelay:  initialDelay,
		backoffFactor: backoffFactor,
	}
}

// Model returns the configured chat model.
func (p *OpenAIProvider) Model() string { return p.model }

// ChatCompletion generates a chat completion and returns the first choice.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages()))
	for _, m := range req.Messages() {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role(), Content: m.Content()})
	}

	openaiReq := openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	}
	if req.MaxTokens() > 0 {
		openaiReq.MaxTokens = req.MaxTokens()
	}
	if req.Temperature() > 0 {
		openaiReq.Temperature = float32(req.Temperature())
	}

	var resp openai.ChatCompletionResponse
	err := p.withRetry(ctx, func() error {
		var callErr error
		resp, callErr = p.client.CreateChatCompletion(ctx, openaiReq)
		return callErr
	})
	if err != nil {
		return ChatCompletionResponse{}, wrapError("chat_completion", err)
	}

	if len(resp.Choices) == 0 {
		return ChatCompletionResponse{}, NewProviderError("chat_completion", 0, "no choices in response", nil)
	}

	return NewChatCompletionResponse(
		resp.Choices[0].Message.Content,
		string(resp.Choices[0].FinishReason),
		NewUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens),
	), nil
}

// withRetry runs fn once, then up to maxRetries more times with exponential
// backoff while the error is retryable.
func (p *OpenAIProvider) withRetry(ctx context.Context, fn func() error) error {
	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || attempt == p.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * p.backoffFactor)
		}
	}

	if p.maxRetries > 0 && isRetryable(lastErr) {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return lastErr
}

func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var reqErr *openai.RequestError
	return errors.As(err, &reqErr)
}

func wrapError(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return NewProviderError(operation, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return NewProviderError(operation, 0, err.Error(), err)
}

var _ TextGenerator = (*OpenAIProvider)(nil)
