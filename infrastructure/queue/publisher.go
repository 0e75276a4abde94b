// Package queue publishes jobs to an external push queue. The queue holds a
// job for its delay and then POSTs the body to the job's callback URL.
package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Header names understood by the queue provider.
const (
	HeaderDelay = "Upstash-Delay"
	// HeaderForwardPrefix marks headers the provider replays to the callback
	// with the prefix stripped.
	HeaderForwardPrefix = "Upstash-Forward-"
	// HeaderCallbackSecret is the header workers check on callbacks.
	HeaderCallbackSecret = "X-Callback-Secret"
)

// ErrRelativeCallback is returned for callback URLs the provider cannot reach.
var ErrRelativeCallback = errors.New("callback url must be absolute")

// Job describes one delivery: the provider waits Delay, then POSTs Body to
// CallbackURL.
type Job struct {
	CallbackURL string
	Body        any
	Delay       time.Duration
}

// Result is the provider's reply, verbatim.
type Result struct {
	Accepted         bool
	ProviderStatus   int
	ProviderResponse string
}

// Config configures a Publisher.
type Config struct {
	URL            string
	Token          string
	CallbackSecret string
	Timeout        time.Duration
	// HTTPClient, when set, replaces the default client.
	HTTPClient *http.Client
}

// Publisher sends jobs to the provider's publish endpoint. Each Publish is a
// single attempt with no idempotency key.
type Publisher struct {
	baseURL string
	token   string
	secret  string
	client  *http.Client
	logger  *slog.Logger
}

// NewPublisher creates a Publisher.
func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		token:   cfg.Token,
		secret:  cfg.CallbackSecret,
		client:  client,
		logger:  logger,
	}
}

// Publish posts the job. The error is non-nil only when the request could not
// be built or sent; a provider rejection comes back as Result.Accepted false.
func (p *Publisher) Publish(ctx context.Context, job Job) (Result, error) {
	target, err := url.Parse(job.CallbackURL)
	if err != nil || !target.IsAbs() || target.Host == "" {
		return Result{}, fmt.Errorf("%w: %q", ErrRelativeCallback, job.CallbackURL)
	}

	body, err := json.Marshal(job.Body)
	if err != nil {
		return Result{}, fmt.Errorf("encode job body: %w", err)
	}

	endpoint := p.baseURL + "/v2/publish/" + job.CallbackURL
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	if job.Delay > 0 {
		req.Header.Set(HeaderDelay, delaySeconds(job.Delay))
	}
	if p.secret != "" {
		req.Header.Set(HeaderForwardPrefix+HeaderCallbackSecret, p.secret)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("publish to queue: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read queue response: %w", err)
	}

	result := Result{
		Accepted:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		ProviderStatus:   resp.StatusCode,
		ProviderResponse: string(text),
	}
	p.logger.Debug("job published",
		slog.String("callback", job.CallbackURL),
		slog.Int("status", resp.StatusCode),
		slog.Duration("delay", job.Delay),
	)
	return result, nil
}

// delaySeconds renders a delay in whole seconds, rounding up.
func delaySeconds(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	return strconv.FormatInt(secs, 10) + "s"
}
