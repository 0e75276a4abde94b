package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/briefer/domain/icebreaker"
	"github.com/helixml/briefer/internal/database"
)

// Icebreaker generates, stores, lists and deletes icebreakers.
type Icebreaker struct {
	store  icebreaker.Store
	writer IcebreakerWriter
	queue  *Queue
	policy QueuePolicy
	now    func() time.Time
	logger *slog.Logger
	life   *Lifecycle
}

// NewIcebreaker creates an Icebreaker service.
func NewIcebreaker(
	store icebreaker.Store,
	writer IcebreakerWriter,
	queue *Queue,
	policy QueuePolicy,
	logger *slog.Logger,
) *Icebreaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Icebreaker{
		store:  store,
		writer: writer,
		queue:  queue,
		policy: policy,
		now:    time.Now,
		logger: logger,
	}
}

// WithLifecycle ties the service to a client's lifecycle.
func (s *Icebreaker) WithLifecycle(l *Lifecycle) *Icebreaker {
	s.life = l
	return s
}

// Async reports whether Submit defers work to the push queue.
func (s *Icebreaker) Async() bool {
	return s.policy.Enabled && s.queue != nil
}

// Submit queues the submission when async is on, otherwise processes it
// inline.
func (s *Icebreaker) Submit(ctx context.Context, sub icebreaker.Submission) (Submitted[icebreaker.Icebreaker], error) {
	if err := s.life.Err(); err != nil {
		return Submitted[icebreaker.Icebreaker]{}, err
	}
	if s.Async() {
		queued, err := s.Enqueue(ctx, sub)
		if err != nil {
			return Submitted[icebreaker.Icebreaker]{}, err
		}
		return Submitted[icebreaker.Icebreaker]{Queued: &queued}, nil
	}

	record, err := s.Process(ctx, sub)
	if err != nil {
		return Submitted[icebreaker.Icebreaker]{}, err
	}
	return Submitted[icebreaker.Icebreaker]{Record: record}, nil
}

// Enqueue publishes the submission's payload to the push queue.
func (s *Icebreaker) Enqueue(ctx context.Context, sub icebreaker.Submission) (Queued, error) {
	if err := s.life.Err(); err != nil {
		return Queued{}, err
	}
	if s.queue == nil {
		return Queued{}, fmt.Errorf("%w: queue is not configured", ErrQueuePublish)
	}
	return s.queue.Enqueue(ctx, s.policy, sub.Payload())
}

// Process writes the icebreaker and stores the record.
func (s *Icebreaker) Process(ctx context.Context, sub icebreaker.Submission) (icebreaker.Icebreaker, error) {
	if err := s.life.Err(); err != nil {
		return icebreaker.Icebreaker{}, err
	}
	generated := s.now()

	text, err := s.writer.GenerateIcebreaker(ctx, sub.LinkedInBio(), sub.PitchDeck(), sub.CompanyName())
	if err != nil {
		return icebreaker.Icebreaker{}, err
	}

	saved, err := s.store.Insert(ctx, icebreaker.New(sub, text, generated))
	if err != nil {
		s.logger.Error("failed to save icebreaker", slog.String("error", err.Error()))
		return icebreaker.Icebreaker{}, fmt.Errorf("save icebreaker: %w", err)
	}

	s.logger.Info("icebreaker generated", slog.Int64("id", saved.ID()))
	return saved, nil
}

// List returns every stored icebreaker.
func (s *Icebreaker) List(ctx context.Context) ([]icebreaker.Icebreaker, error) {
	if err := s.life.Err(); err != nil {
		return nil, err
	}
	records, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list icebreakers: %w", err)
	}
	if records == nil {
		records = []icebreaker.Icebreaker{}
	}
	return records, nil
}

// Recent returns up to limit icebreakers, newest first. A non-empty company
// narrows the result case-insensitively; a limit of zero or less means all.
func (s *Icebreaker) Recent(ctx context.Context, company string, limit int) ([]icebreaker.Icebreaker, error) {
	if err := s.life.Err(); err != nil {
		return nil, err
	}
	records, err := s.store.FindRecent(ctx, company, limit)
	if err != nil {
		return nil, fmt.Errorf("recent icebreakers: %w", err)
	}
	if records == nil {
		records = []icebreaker.Icebreaker{}
	}
	return records, nil
}

// Delete removes an icebreaker, returning database.ErrNotFound when no row
// matched.
func (s *Icebreaker) Delete(ctx context.Context, id int64) error {
	if err := s.life.Err(); err != nil {
		return err
	}
	n, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete icebreaker %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("icebreaker %d: %w", id, database.ErrNotFound)
	}
	return nil
}
