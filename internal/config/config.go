// Package config provides application configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultLogLevel        = "INFO"
	DefaultDBURL           = "sqlite:///briefer.db"
	DefaultAllowedOrigin   = "*"
	DefaultAIModel         = "gpt-3.5-turbo"
	DefaultAITimeout       = 60 * time.Second
	DefaultAIMaxRetries    = 0
	DefaultAIInitialDelay  = 2 * time.Second
	DefaultAIBackoffFactor = 2.0
	DefaultQueueTimeout    = 30 * time.Second
)

// Delay policy for queued jobs. The push queue waits this long before it
// calls the worker endpoint back.
const (
	DefaultTranscriptDelay = 3 * time.Second
	DefaultIcebreakerDelay = time.Minute
)

// Configuration errors.
var (
	ErrQueueCallbackURL    = errors.New("queue callback base url must be absolute")
	ErrQueueCallbackSecret = errors.New("queue callback secret is required when the queue is enabled")
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures the chat completion service.
type Endpoint struct {
	baseURL       string
	model         string
	apiKey        string
	timeout       time.Duration
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
	httpCacheDir  string
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		model:         DefaultAIModel,
		timeout:       DefaultAITimeout,
		maxRetries:    DefaultAIMaxRetries,
		initialDelay:  DefaultAIInitialDelay,
		backoffFactor: DefaultAIBackoffFactor,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// HTTPCacheDir returns the on-disk response cache directory, if any.
func (e Endpoint) HTTPCacheDir() string { return e.httpCacheDir }

// IsConfigured returns true if the endpoint has an API key.
func (e Endpoint) IsConfigured() bool {
	return e.apiKey != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the retry backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// WithHTTPCacheDir sets the response cache directory.
func WithHTTPCacheDir(dir string) EndpointOption {
	return func(e *Endpoint) { e.httpCacheDir = dir }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// QueueConfig configures the push-queue provider used for deferred work.
type QueueConfig struct {
	url              string
	token            string
	callbackBaseURL  string
	callbackSecret   string
	transcriptDelay  time.Duration
	icebreakerDelay  time.Duration
	propagateErrors  bool
	asyncTranscripts bool
	asyncIcebreakers bool
	timeout          time.Duration
}

// NewQueueConfig creates a QueueConfig with defaults.
func NewQueueConfig() QueueConfig {
	return QueueConfig{
		transcriptDelay:  DefaultTranscriptDelay,
		icebreakerDelay:  DefaultIcebreakerDelay,
		asyncTranscripts: true,
		asyncIcebreakers: true,
		timeout:          DefaultQueueTimeout,
	}
}

// URL returns the provider base URL.
func (q QueueConfig) URL() string { return q.url }

// Token returns the provider bearer token.
func (q QueueConfig) Token() string { return q.token }

// CallbackBaseURL returns the public base URL the provider calls back into.
func (q QueueConfig) CallbackBaseURL() string { return q.callbackBaseURL }

// CallbackSecret returns the shared secret worker callbacks must present.
func (q QueueConfig) CallbackSecret() string { return q.callbackSecret }

// TranscriptDelay returns the delay applied to queued transcript jobs.
func (q QueueConfig) TranscriptDelay() time.Duration { return q.transcriptDelay }

// IcebreakerDelay returns the delay applied to queued icebreaker jobs.
func (q QueueConfig) IcebreakerDelay() time.Duration { return q.icebreakerDelay }

// PropagateErrors reports whether a rejected publish fails the producer call.
func (q QueueConfig) PropagateErrors() bool { return q.propagateErrors }

// AsyncTranscripts reports whether transcript submissions are queued.
func (q QueueConfig) AsyncTranscripts() bool { return q.IsConfigured() && q.asyncTranscripts }

// AsyncIcebreakers reports whether icebreaker submissions are queued.
func (q QueueConfig) AsyncIcebreakers() bool { return q.IsConfigured() && q.asyncIcebreakers }

// Timeout returns the publish request timeout.
func (q QueueConfig) Timeout() time.Duration { return q.timeout }

// IsConfigured returns true if a provider URL and token are set.
func (q QueueConfig) IsConfigured() bool {
	return q.url != "" && q.token != ""
}

// Validate checks that an enabled queue can actually call this service back.
func (q QueueConfig) Validate() error {
	if !q.IsConfigured() {
		return nil
	}
	u, err := url.Parse(q.callbackBaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrQueueCallbackURL, q.callbackBaseURL)
	}
	if q.callbackSecret == "" {
		return ErrQueueCallbackSecret
	}
	return nil
}

// QueueOption is a functional option for QueueConfig.
type QueueOption func(*QueueConfig)

// WithQueueURL sets the provider base URL.
func WithQueueURL(u string) QueueOption {
	return func(q *QueueConfig) { q.url = u }
}

// WithQueueToken sets the provider token.
func WithQueueToken(token string) QueueOption {
	return func(q *QueueConfig) { q.token = token }
}

// WithCallbackBaseURL sets the public callback base URL.
func WithCallbackBaseURL(u string) QueueOption {
	return func(q *QueueConfig) { q.callbackBaseURL = strings.TrimRight(u, "/") }
}

// WithCallbackSecret sets the callback shared secret.
func WithCallbackSecret(secret string) QueueOption {
	return func(q *QueueConfig) { q.callbackSecret = secret }
}

// WithTranscriptDelay sets the transcript job delay.
func WithTranscriptDelay(d time.Duration) QueueOption {
	return func(q *QueueConfig) { q.transcriptDelay = d }
}

// WithIcebreakerDelay sets the icebreaker job delay.
func WithIcebreakerDelay(d time.Duration) QueueOption {
	return func(q *QueueConfig) { q.icebreakerDelay = d }
}

// WithPropagateErrors sets the publish failure policy.
func WithPropagateErrors(propagate bool) QueueOption {
	return func(q *QueueConfig) { q.propagateErrors = propagate }
}

// WithAsyncTranscripts toggles queueing of transcript submissions.
func WithAsyncTranscripts(async bool) QueueOption {
	return func(q *QueueConfig) { q.asyncTranscripts = async }
}

// WithAsyncIcebreakers toggles queueing of icebreaker submissions.
func WithAsyncIcebreakers(async bool) QueueOption {
	return func(q *QueueConfig) { q.asyncIcebreakers = async }
}

// WithQueueTimeout sets the publish request timeout.
func WithQueueTimeout(d time.Duration) QueueOption {
	return func(q *QueueConfig) { q.timeout = d }
}

// NewQueueConfigWithOptions creates a QueueConfig with options.
func NewQueueConfigWithOptions(opts ...QueueOption) QueueConfig {
	q := NewQueueConfig()
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host           string
	port           int
	dbURL          string
	logLevel       string
	logFormat      LogFormat
	allowedOrigins []string
	promptsFile    string
	ai             Endpoint
	queue          QueueConfig
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:           DefaultHost,
		port:           DefaultPort,
		dbURL:          DefaultDBURL,
		logLevel:       DefaultLogLevel,
		logFormat:      LogFormatPretty,
		allowedOrigins: []string{DefaultAllowedOrigin},
		ai:             NewEndpoint(),
		queue:          NewQueueConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// AllowedOrigins returns the CORS allowed origins.
func (c AppConfig) AllowedOrigins() []string {
	origins := make([]string, len(c.allowedOrigins))
	copy(origins, c.allowedOrigins)
	return origins
}

// PromptsFile returns the optional prompt template override file.
func (c AppConfig) PromptsFile() string { return c.promptsFile }

// AI returns the chat completion endpoint config.
func (c AppConfig) AI() Endpoint { return c.ai }

// Queue returns the push-queue config.
func (c AppConfig) Queue() QueueConfig { return c.queue }

// Validate checks cross-field constraints.
func (c AppConfig) Validate() error {
	return c.queue.Validate()
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAllowedOrigins sets the CORS allowed origins.
func WithAllowedOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.allowedOrigins = make([]string, len(origins))
		copy(c.allowedOrigins, origins)
	}
}

// WithPromptsFile sets the prompt template override file.
func WithPromptsFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.promptsFile = path }
}

// WithAIEndpoint sets the chat completion endpoint.
func WithAIEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.ai = e }
}

// WithQueueConfig sets the push-queue config.
func WithQueueConfig(q QueueConfig) AppConfigOption {
	return func(c *AppConfig) { c.queue = q }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Secrets are never included.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.Any("allowed_origins", c.allowedOrigins),
		slog.String("ai_base_url", c.aiBaseURL()),
		slog.String("ai_model", c.ai.Model()),
		slog.Bool("ai_configured", c.ai.IsConfigured()),
		slog.Bool("queue_configured", c.queue.IsConfigured()),
		slog.Bool("queue_async_transcripts", c.queue.AsyncTranscripts()),
		slog.Bool("queue_async_icebreakers", c.queue.AsyncIcebreakers()),
		slog.Bool("queue_propagate_errors", c.queue.PropagateErrors()),
		slog.Duration("queue_transcript_delay", c.queue.TranscriptDelay()),
		slog.Duration("queue_icebreaker_delay", c.queue.IcebreakerDelay()),
	}
}

func (c AppConfig) maskedDBURL() string {
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

func (c AppConfig) aiBaseURL() string {
	if c.ai.BaseURL() == "" {
		return "(provider default)"
	}
	return c.ai.BaseURL()
}

// ParseList parses a comma-separated string, dropping blank entries.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
