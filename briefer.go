// Package briefer summarises meeting transcripts and writes LinkedIn
// icebreakers with an LLM, storing the results in a relational database.
//
// Work can run inline or be deferred to a push queue that later calls the
// service's worker endpoints back.
//
// Basic usage:
//
//	client, err := briefer.New(
//	    briefer.WithSQLite("briefer.db"),
//	    briefer.WithOpenAIConfig(provider.OpenAIConfig{APIKey: os.Getenv("AI_API_KEY")}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	sub, _ := transcript.NewSubmission("Acme", []string{"Ann", "Bo"}, "We discussed pricing.", "2024-01-15")
//	out, err := client.Transcripts.Submit(ctx, sub)
package briefer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/helixml/briefer/application/service"
	"github.com/helixml/briefer/infrastructure/persistence"
	"github.com/helixml/briefer/infrastructure/provider"
	"github.com/helixml/briefer/infrastructure/queue"
	"github.com/helixml/briefer/internal/database"
)

// Worker endpoints the queue provider calls back.
const (
	TranscriptWorkerPath = "/api/process-transcript"
	IcebreakerWorkerPath = "/api/process-icebreaker"
)

var (
	// ErrNoDatabase indicates no database option was given.
	ErrNoDatabase = errors.New("briefer: no database configured")
	// ErrNoTextProvider indicates no text generation provider was given.
	ErrNoTextProvider = errors.New("briefer: no text provider configured")
	// ErrInvalidCallback indicates a queue without a usable callback URL or secret.
	ErrInvalidCallback = errors.New("briefer: queue callback misconfigured")
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = service.ErrClientClosed
)

// Client is the main entry point. Dependencies are built once in New and
// shared by every request.
//
//	client.Transcripts.Submit(ctx, sub)
//	client.Icebreakers.List(ctx)
type Client struct {
	Transcripts *service.Transcript
	Icebreakers *service.Icebreaker

	db             database.Database
	queue          *service.Queue
	callbackSecret string
	closers        []io.Closer

	logger *slog.Logger
	life   *service.Lifecycle
	mu     sync.Mutex
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, err
	}

	textProvider := cfg.textProvider
	if textProvider == nil {
		if !cfg.skipProviderValidation {
			return nil, ErrNoTextProvider
		}
		textProvider = unconfiguredProvider{}
	}

	prompts, err := resolvePrompts(cfg)
	if err != nil {
		return nil, err
	}

	callbackSecret, err := resolveCallbackSecret(cfg)
	if err != nil {
		return nil, err
	}

	publisher := cfg.publisher
	if publisher == nil && cfg.queueConfig != nil {
		queueCfg := *cfg.queueConfig
		queueCfg.CallbackSecret = callbackSecret
		publisher = queue.NewPublisher(queueCfg, logger)
	}
	var jobs *service.Queue
	if publisher != nil {
		if err := validateCallback(cfg.callbackBaseURL, callbackSecret); err != nil {
			return nil, err
		}
		jobs = service.NewQueue(publisher, logger)
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbURL, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if !cfg.skipMigrations {
		if err := persistence.AutoMigrate(db); err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
		}
	}

	generator := service.NewGenerator(textProvider, prompts, logger)
	life := service.NewLifecycle()
	base := strings.TrimSuffix(cfg.callbackBaseURL, "/")

	transcripts := service.NewTranscript(
		persistence.NewTranscriptStore(db),
		generator,
		jobs,
		service.QueuePolicy{
			Enabled:     jobs != nil && cfg.asyncTranscripts,
			CallbackURL: base + TranscriptWorkerPath,
			Delay:       cfg.transcriptDelay,
			Propagate:   cfg.propagateQueueErrors,
		},
		logger,
	).WithLifecycle(life)
	icebreakers := service.NewIcebreaker(
		persistence.NewIcebreakerStore(db),
		generator,
		jobs,
		service.QueuePolicy{
			Enabled:     jobs != nil && cfg.asyncIcebreakers,
			CallbackURL: base + IcebreakerWorkerPath,
			Delay:       cfg.icebreakerDelay,
			Propagate:   cfg.propagateQueueErrors,
		},
		logger,
	).WithLifecycle(life)

	return &Client{
		Transcripts:    transcripts,
		Icebreakers:    icebreakers,
		db:             db,
		queue:          jobs,
		callbackSecret: callbackSecret,
		closers:        cfg.closers,
		logger:         logger,
		life:           life,
	}, nil
}

// Close releases the database and any registered closers. Calls on
// Transcripts and Icebreakers fail with ErrClientClosed afterwards.
func (c *Client) Close() error {
	if !c.life.Close() {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

// Ping checks the database connection.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.life.Err(); err != nil {
		return err
	}
	return c.db.Ping(ctx)
}

// QueueEnabled reports whether a push queue is configured.
func (c *Client) QueueEnabled() bool {
	return c.queue != nil
}

// CallbackSecret returns the secret worker callbacks must present. It is
// empty when no queue is configured.
func (c *Client) CallbackSecret() string {
	return c.callbackSecret
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// buildDatabaseURL constructs the database URL from configuration.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres, databaseURL:
		return cfg.dbDSN, nil
	default:
		return "", ErrNoDatabase
	}
}

func resolvePrompts(cfg *clientConfig) (service.Prompts, error) {
	if cfg.prompts != nil {
		return *cfg.prompts, nil
	}
	prompts, err := service.LoadPrompts(cfg.promptsFile)
	if err != nil {
		return service.Prompts{}, fmt.Errorf("load prompts: %w", err)
	}
	return prompts, nil
}

// resolveCallbackSecret reconciles the secret the worker routes require with
// the one the publisher forwards. Either may be set alone; if both are set
// they must agree.
func resolveCallbackSecret(cfg *clientConfig) (string, error) {
	secret := cfg.callbackSecret
	if cfg.queueConfig == nil {
		return secret, nil
	}
	forwarded := cfg.queueConfig.CallbackSecret
	switch {
	case secret == "":
		return forwarded, nil
	case forwarded != "" && forwarded != secret:
		return "", fmt.Errorf("%w: queue callback secret differs from WithCallbackSecret", ErrInvalidCallback)
	default:
		return secret, nil
	}
}

func validateCallback(base, secret string) error {
	u, err := url.Parse(base)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: callback base url %q must be absolute", ErrInvalidCallback, base)
	}
	if secret == "" {
		return fmt.Errorf("%w: callback secret is required", ErrInvalidCallback)
	}
	return nil
}

// unconfiguredProvider fails every call. It stands in when provider
// validation is skipped.
type unconfiguredProvider struct{}

func (unconfiguredProvider) ChatCompletion(context.Context, provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	return provider.ChatCompletionResponse{}, provider.NewProviderError("chat_completion", 0, "no text provider configured", ErrNoTextProvider)
}
