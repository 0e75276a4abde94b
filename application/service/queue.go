package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/briefer/infrastructure/queue"
)

// Publisher hands a job to the push queue.
type Publisher interface {
	Publish(ctx context.Context, job queue.Job) (queue.Result, error)
}

// QueuePolicy configures one producer. Enabled false means submissions run
// inline; Delay is how long the provider holds the job before calling back.
type QueuePolicy struct {
	Enabled     bool
	CallbackURL string
	Delay       time.Duration
	Propagate   bool
}

// Queued reports a job handed to the push queue.
type Queued struct {
	ProviderStatus   int
	ProviderResponse string
}

// Submitted is the outcome of a submission: the stored record when it ran
// inline, or the queue receipt when it was deferred.
type Submitted[T any] struct {
	Record T
	Queued *Queued
}

// Queue publishes jobs and applies the swallow-or-propagate policy to
// provider failures.
type Queue struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewQueue creates a Queue. A nil publisher makes every Enqueue fail.
func NewQueue(publisher Publisher, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{publisher: publisher, logger: logger}
}

// Enqueue publishes body once. A transport failure or a non-2xx reply is
// logged and reported as queued, unless the policy propagates errors, in
// which case it returns ErrQueuePublish.
func (q *Queue) Enqueue(ctx context.Context, policy QueuePolicy, body any) (Queued, error) {
	if q.publisher == nil {
		return Queued{}, fmt.Errorf("%w: no publisher configured", ErrQueuePublish)
	}

	result, err := q.publisher.Publish(ctx, queue.Job{
		CallbackURL: policy.CallbackURL,
		Body:        body,
		Delay:       policy.Delay,
	})
	if err == nil && !result.Accepted {
		err = fmt.Errorf("provider returned %d: %s", result.ProviderStatus, result.ProviderResponse)
	}

	queued := Queued{ProviderStatus: result.ProviderStatus, ProviderResponse: result.ProviderResponse}
	if err != nil {
		if policy.Propagate {
			return queued, fmt.Errorf("%w: %w", ErrQueuePublish, err)
		}
		q.logger.Warn("queue publish failed, reporting job as queued",
			slog.String("callback", policy.CallbackURL),
			slog.String("error", err.Error()),
		)
		return queued, nil
	}

	q.logger.Info("job queued",
		slog.String("callback", policy.CallbackURL),
		slog.Duration("delay", policy.Delay),
		slog.Int("provider_status", result.ProviderStatus),
	)
	return queued, nil
}
