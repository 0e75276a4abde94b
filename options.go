package briefer

import (
	"io"
	"log/slog"
	"time"

	"github.com/helixml/briefer/application/service"
	"github.com/helixml/briefer/infrastructure/provider"
	"github.com/helixml/briefer/infrastructure/queue"
	"github.com/helixml/briefer/internal/config"
)

// databaseType identifies the database.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
	databaseURL
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	database               databaseType
	dbPath                 string
	dbDSN                  string
	textProvider           provider.TextGenerator
	prompts                *service.Prompts
	promptsFile            string
	publisher              service.Publisher
	queueConfig            *queue.Config
	callbackBaseURL        string
	callbackSecret         string
	transcriptDelay        time.Duration
	icebreakerDelay        time.Duration
	asyncTranscripts       bool
	asyncIcebreakers       bool
	propagateQueueErrors   bool
	logger                 *slog.Logger
	skipProviderValidation bool
	skipMigrations         bool
	closers                []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	return &clientConfig{
		transcriptDelay:  config.DefaultTranscriptDelay,
		icebreakerDelay:  config.DefaultIcebreakerDelay,
		asyncTranscripts: true,
		asyncIcebreakers: true,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite stores records in a local SQLite file. ":memory:" opens a
// private in-memory database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres stores records in PostgreSQL, such as a hosted Supabase
// instance.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithDatabaseURL picks the driver from the URL scheme: sqlite:///path,
// postgres:// or postgresql://.
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.database = databaseURL
		c.dbDSN = url
	}
}

// WithOpenAIConfig uses an OpenAI-compatible chat completion API.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		c.textProvider = provider.NewOpenAIProvider(cfg)
	}
}

// WithTextProvider sets a custom text generation provider.
func WithTextProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithPrompts replaces the prompt templates.
func WithPrompts(p service.Prompts) Option {
	return func(c *clientConfig) {
		c.prompts = &p
	}
}

// WithPromptsFile loads prompt templates from a YAML file on top of the
// embedded defaults.
func WithPromptsFile(path string) Option {
	return func(c *clientConfig) {
		c.promptsFile = path
	}
}

// WithQueue publishes jobs to a push-queue provider.
func WithQueue(cfg queue.Config) Option {
	return func(c *clientConfig) {
		c.queueConfig = &cfg
	}
}

// WithPublisher sets a custom queue publisher.
func WithPublisher(p service.Publisher) Option {
	return func(c *clientConfig) {
		c.publisher = p
	}
}

// WithCallbackBaseURL sets the public base URL the queue provider calls back.
func WithCallbackBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.callbackBaseURL = url
	}
}

// WithCallbackSecret sets the secret worker callbacks must present.
func WithCallbackSecret(secret string) Option {
	return func(c *clientConfig) {
		c.callbackSecret = secret
	}
}

// WithTranscriptDelay sets how long the queue holds transcript jobs.
func WithTranscriptDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		c.transcriptDelay = d
	}
}

// WithIcebreakerDelay sets how long the queue holds icebreaker jobs.
func WithIcebreakerDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		c.icebreakerDelay = d
	}
}

// WithAsyncTranscripts toggles queueing of transcript submissions. It has
// no effect unless a queue is configured.
func WithAsyncTranscripts(enabled bool) Option {
	return func(c *clientConfig) {
		c.asyncTranscripts = enabled
	}
}

// WithAsyncIcebreakers toggles queueing of icebreaker submissions. It has
// no effect unless a queue is configured.
func WithAsyncIcebreakers(enabled bool) Option {
	return func(c *clientConfig) {
		c.asyncIcebreakers = enabled
	}
}

// WithPropagateQueueErrors makes producers fail when the queue rejects a
// job, instead of logging and reporting it as queued.
func WithPropagateQueueErrors(enabled bool) Option {
	return func(c *clientConfig) {
		c.propagateQueueErrors = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithSkipProviderValidation allows a Client without a text provider.
// Generation then fails at call time. This is intended for testing only.
func WithSkipProviderValidation() Option {
	return func(c *clientConfig) {
		c.skipProviderValidation = true
	}
}

// WithSkipMigrations leaves the schema untouched on startup.
func WithSkipMigrations() Option {
	return func(c *clientConfig) {
		c.skipMigrations = true
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}
