package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/helixml/briefer"
	"github.com/helixml/briefer/infrastructure/provider"
	"github.com/helixml/briefer/infrastructure/queue"
	"github.com/helixml/briefer/internal/config"
)

// clientOptions returns the briefer.Option slice derived from AppConfig:
// storage, text provider, prompts and the push queue. Callers append
// entrypoint-specific options before passing the slice to briefer.New.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) ([]briefer.Option, error) {
	opts := []briefer.Option{briefer.WithLogger(logger)}

	opts = append(opts, storageOptions(cfg)...)

	txtOpts, err := textOptions(cfg)
	if err != nil {
		return nil, fmt.Errorf("text config: %w", err)
	}
	opts = append(opts, txtOpts...)

	if path := cfg.PromptsFile(); path != "" {
		opts = append(opts, briefer.WithPromptsFile(path))
	}

	opts = append(opts, queueOptions(cfg.Queue())...)

	return opts, nil
}

// storageOptions returns the briefer.Option for the configured database.
func storageOptions(cfg config.AppConfig) []briefer.Option {
	dbURL := cfg.DBURL()

	if !isSQLite(dbURL) {
		return []briefer.Option{briefer.WithPostgres(dbURL)}
	}

	dbPath := strings.TrimPrefix(dbURL, "sqlite:///")
	if dbPath == dbURL {
		dbPath = strings.TrimPrefix(dbURL, "sqlite:")
	}
	return []briefer.Option{briefer.WithSQLite(dbPath)}
}

// textOptions returns the text provider option when an API key is set.
// Without one the server still starts; generation requests fail with 500.
func textOptions(cfg config.AppConfig) ([]briefer.Option, error) {
	endpoint := cfg.AI()
	if !endpoint.IsConfigured() {
		return []briefer.Option{briefer.WithSkipProviderValidation()}, nil
	}

	openaiCfg := provider.OpenAIConfig{
		APIKey:        endpoint.APIKey(),
		BaseURL:       endpoint.BaseURL(),
		Model:         endpoint.Model(),
		Timeout:       endpoint.Timeout(),
		MaxRetries:    endpoint.MaxRetries(),
		InitialDelay:  endpoint.InitialDelay(),
		BackoffFactor: endpoint.BackoffFactor(),
	}
	if cacheDir := endpoint.HTTPCacheDir(); cacheDir != "" {
		transport, err := provider.NewCachingTransport(cacheDir, nil)
		if err != nil {
			return nil, fmt.Errorf("http cache: %w", err)
		}
		openaiCfg.Transport = transport
	}

	return []briefer.Option{briefer.WithOpenAIConfig(openaiCfg)}, nil
}

// queueOptions wires the push queue when it is configured. The callback
// secret is always passed so worker routes can authenticate callbacks.
func queueOptions(q config.QueueConfig) []briefer.Option {
	opts := []briefer.Option{
		briefer.WithCallbackSecret(q.CallbackSecret()),
		briefer.WithTranscriptDelay(q.TranscriptDelay()),
		briefer.WithIcebreakerDelay(q.IcebreakerDelay()),
		briefer.WithPropagateQueueErrors(q.PropagateErrors()),
		briefer.WithAsyncTranscripts(q.AsyncTranscripts()),
		briefer.WithAsyncIcebreakers(q.AsyncIcebreakers()),
	}
	if !q.IsConfigured() {
		return opts
	}

	return append(opts,
		briefer.WithCallbackBaseURL(q.CallbackBaseURL()),
		briefer.WithQueue(queue.Config{
			URL:            q.URL(),
			Token:          q.Token(),
			CallbackSecret: q.CallbackSecret(),
			Timeout:        q.Timeout(),
		}),
	)
}

// isSQLite checks if the database URL is for SQLite.
func isSQLite(url string) bool {
	return strings.HasPrefix(url, "sqlite:")
}
