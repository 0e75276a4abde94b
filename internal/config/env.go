package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., AI_BASE_URL, QUEUE_TOKEN).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DBURL is the database connection URL.
	// Env: DB_URL (default: sqlite:///briefer.db)
	DBURL string `envconfig:"DB_URL" default:"sqlite:///briefer.db"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// CORSAllowedOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ALLOWED_ORIGINS (default: *)
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// PromptsFile overrides the embedded prompt templates.
	// Env: PROMPTS_FILE
	PromptsFile string `envconfig:"PROMPTS_FILE"`

	// AI configures the chat completion service.
	AI EndpointEnv `envconfig:"AI"`

	// Queue configures the push-queue provider.
	Queue QueueEnv `envconfig:"QUEUE"`
}

// EndpointEnv holds environment configuration for the AI endpoint.
type EndpointEnv struct {
	// BaseURL is an OpenAI-compatible base URL (e.g. https://api.groq.com/openai/v1).
	// Env: AI_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// APIKey is the API key for authentication.
	// Env: AI_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Model is the chat model identifier.
	// Env: AI_MODEL (default: gpt-3.5-turbo)
	Model string `envconfig:"MODEL" default:"gpt-3.5-turbo"`

	// Timeout is the request timeout in seconds.
	// Env: AI_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: AI_MAX_RETRIES (default: 0)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"0"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: AI_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: AI_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`

	// HTTPCacheDir caches POST request/response pairs to disk.
	// Env: AI_HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`
}

// QueueEnv holds environment configuration for the push queue.
type QueueEnv struct {
	// URL is the provider base URL.
	// Env: QUEUE_URL
	URL string `envconfig:"URL"`

	// Token is the provider bearer token.
	// Env: QUEUE_TOKEN
	Token string `envconfig:"TOKEN"`

	// CallbackBaseURL is the public base URL of this service.
	// Env: QUEUE_CALLBACK_BASE_URL
	CallbackBaseURL string `envconfig:"CALLBACK_BASE_URL"`

	// CallbackSecret must be presented by the provider on worker callbacks.
	// Env: QUEUE_CALLBACK_SECRET
	CallbackSecret string `envconfig:"CALLBACK_SECRET"`

	// TranscriptDelay is the delay applied to transcript jobs.
	// Env: QUEUE_TRANSCRIPT_DELAY (default: 3s)
	TranscriptDelay time.Duration `envconfig:"TRANSCRIPT_DELAY" default:"3s"`

	// IcebreakerDelay is the delay applied to icebreaker jobs.
	// Env: QUEUE_ICEBREAKER_DELAY (default: 60s)
	IcebreakerDelay time.Duration `envconfig:"ICEBREAKER_DELAY" default:"60s"`

	// PropagateErrors fails the producer call when the provider rejects a job.
	// Env: QUEUE_PROPAGATE_ERRORS (default: false)
	PropagateErrors bool `envconfig:"PROPAGATE_ERRORS" default:"false"`

	// AsyncTranscripts queues transcript submissions when the queue is configured.
	// Env: QUEUE_ASYNC_TRANSCRIPTS (default: true)
	AsyncTranscripts bool `envconfig:"ASYNC_TRANSCRIPTS" default:"true"`

	// AsyncIcebreakers queues icebreaker submissions when the queue is configured.
	// Env: QUEUE_ASYNC_ICEBREAKERS (default: true)
	AsyncIcebreakers bool `envconfig:"ASYNC_ICEBREAKERS" default:"true"`

	// Timeout is the publish request timeout in seconds.
	// Env: QUEUE_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = cfg.Apply(WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = cfg.Apply(WithPort(e.Port))
	}
	if e.DBURL != "" {
		cfg = cfg.Apply(WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if origins := ParseList(e.CORSAllowedOrigins); len(origins) > 0 {
		cfg = cfg.Apply(WithAllowedOrigins(origins))
	}
	if e.PromptsFile != "" {
		cfg = cfg.Apply(WithPromptsFile(e.PromptsFile))
	}

	return cfg.Apply(
		WithAIEndpoint(e.AI.ToEndpoint()),
		WithQueueConfig(e.Queue.ToQueueConfig()),
	)
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithTimeout(seconds(e.Timeout)),
		WithMaxRetries(e.MaxRetries),
		WithInitialDelay(seconds(e.InitialDelay)),
		WithBackoffFactor(e.BackoffFactor),
	}

	if e.Model != "" {
		opts = append(opts, WithModel(e.Model))
	}
	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}
	if e.HTTPCacheDir != "" {
		opts = append(opts, WithHTTPCacheDir(e.HTTPCacheDir))
	}

	return NewEndpointWithOptions(opts...)
}

// ToQueueConfig converts QueueEnv to QueueConfig.
func (q QueueEnv) ToQueueConfig() QueueConfig {
	return NewQueueConfigWithOptions(
		WithQueueURL(q.URL),
		WithQueueToken(q.Token),
		WithCallbackBaseURL(q.CallbackBaseURL),
		WithCallbackSecret(q.CallbackSecret),
		WithTranscriptDelay(q.TranscriptDelay),
		WithIcebreakerDelay(q.IcebreakerDelay),
		WithPropagateErrors(q.PropagateErrors),
		WithAsyncTranscripts(q.AsyncTranscripts),
		WithAsyncIcebreakers(q.AsyncIcebreakers),
		WithQueueTimeout(seconds(q.Timeout)),
	)
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
