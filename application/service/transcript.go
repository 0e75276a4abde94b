package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/briefer/domain/transcript"
	"github.com/helixml/briefer/internal/database"
)

// Transcript summarises, stores, lists and deletes transcripts.
type Transcript struct {
	store      transcript.Store
	summarizer Summarizer
	queue      *Queue
	policy     QueuePolicy
	now        func() time.Time
	logger     *slog.Logger
	life       *Lifecycle
}

// NewTranscript creates a Transcript service.
func NewTranscript(
	store transcript.Store,
	summarizer Summarizer,
	queue *Queue,
	policy QueuePolicy,
	logger *slog.Logger,
) *Transcript {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transcript{
		store:      store,
		summarizer: summarizer,
		queue:      queue,
		policy:     policy,
		now:        time.Now,
		logger:     logger,
	}
}

// WithLifecycle ties the service to a client's lifecycle.
func (s *Transcript) WithLifecycle(l *Lifecycle) *Transcript {
	s.life = l
	return s
}

// Async reports whether Submit defers work to the push queue.
func (s *Transcript) Async() bool {
	return s.policy.Enabled && s.queue != nil
}

// Submit queues the submission when async is on, otherwise processes it
// inline.
func (s *Transcript) Submit(ctx context.Context, sub transcript.Submission) (Submitted[transcript.Transcript], error) {
	if err := s.life.Err(); err != nil {
		return Submitted[transcript.Transcript]{}, err
	}
	if s.Async() {
		queued, err := s.Enqueue(ctx, sub)
		if err != nil {
			return Submitted[transcript.Transcript]{}, err
		}
		return Submitted[transcript.Transcript]{Queued: &queued}, nil
	}

	record, err := s.Process(ctx, sub)
	if err != nil {
		return Submitted[transcript.Transcript]{}, err
	}
	return Submitted[transcript.Transcript]{Record: record}, nil
}

// Enqueue publishes the submission's payload to the push queue.
func (s *Transcript) Enqueue(ctx context.Context, sub transcript.Submission) (Queued, error) {
	if err := s.life.Err(); err != nil {
		return Queued{}, err
	}
	if s.queue == nil {
		return Queued{}, fmt.Errorf("%w: queue is not configured", ErrQueuePublish)
	}
	return s.queue.Enqueue(ctx, s.policy, sub.Payload())
}

// Process generates the summary and stores the record. Nothing is stored
// when generation fails, and a failed insert is not retried.
func (s *Transcript) Process(ctx context.Context, sub transcript.Submission) (transcript.Transcript, error) {
	if err := s.life.Err(); err != nil {
		return transcript.Transcript{}, err
	}
	generated := s.now()

	summary, err := s.summarizer.Summarize(ctx, sub.Text())
	if err != nil {
		return transcript.Transcript{}, err
	}

	saved, err := s.store.Insert(ctx, transcript.NewTranscript(sub, summary, generated))
	if err != nil {
		s.logger.Error("failed to save transcript",
			slog.String("company", sub.CompanyName()),
			slog.String("error", err.Error()),
		)
		return transcript.Transcript{}, fmt.Errorf("save transcript: %w", err)
	}

	s.logger.Info("transcript summarised", slog.Int64("id", saved.ID()), slog.String("company", saved.CompanyName()))
	return saved, nil
}

// List returns every stored transcript.
func (s *Transcript) List(ctx context.Context) ([]transcript.Transcript, error) {
	if err := s.life.Err(); err != nil {
		return nil, err
	}
	records, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	if records == nil {
		records = []transcript.Transcript{}
	}
	return records, nil
}

// Recent returns up to limit transcripts, newest first. A non-empty company
// narrows the result case-insensitively; a limit of zero or less means all.
func (s *Transcript) Recent(ctx context.Context, company string, limit int) ([]transcript.Transcript, error) {
	if err := s.life.Err(); err != nil {
		return nil, err
	}
	records, err := s.store.FindRecent(ctx, company, limit)
	if err != nil {
		return nil, fmt.Errorf("recent transcripts: %w", err)
	}
	if records == nil {
		records = []transcript.Transcript{}
	}
	return records, nil
}

// Delete removes a transcript, returning database.ErrNotFound when no row
// matched.
func (s *Transcript) Delete(ctx context.Context, id int64) error {
	if err := s.life.Err(); err != nil {
		return err
	}
	n, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transcript %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("transcript %d: %w", id, database.ErrNotFound)
	}
	return nil
}
