package service_test

import (
	"context"
	"errors"

	"github.com/helixml/briefer/infrastructure/provider"
	"github.com/helixml/briefer/infrastructure/queue"
)

var errBoom = errors.New("boom")

type fakeLLM struct {
	reply    string
	err      error
	calls    int
	requests []provider.ChatCompletionRequest
}

func (f *fakeLLM) ChatCompletion(_ context.Context, req provider.ChatCompletionRequest) (provider.ChatCompletionResponse, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return provider.ChatCompletionResponse{}, f.err
	}
	return provider.NewChatCompletionResponse(f.reply, "stop", provider.NewUsage(1, 1, 2)), nil
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.summary, f.err
}

type fakeWriter struct {
	text  string
	err   error
	calls int
	args  []string
}

func (f *fakeWriter) GenerateIcebreaker(_ context.Context, bio, pitchDeck, companyName string) (string, error) {
	f.calls++
	f.args = []string{bio, pitchDeck, companyName}
	return f.text, f.err
}

// fakeStore records inserts and can be told to fail.
type fakeStore[T any] struct {
	inserted  []T
	insertErr error
	deleted   int64
	deleteErr error
	recent    []T
	recentErr error
	company   string
	limit     int
}

func (f *fakeStore[T]) Insert(_ context.Context, record T) (T, error) {
	f.inserted = append(f.inserted, record)
	if f.insertErr != nil {
		var zero T
		return zero, f.insertErr
	}
	return record, nil
}

func (f *fakeStore[T]) FindAll(_ context.Context) ([]T, error) {
	return nil, nil
}

func (f *fakeStore[T]) FindRecent(_ context.Context, company string, limit int) ([]T, error) {
	f.company, f.limit = company, limit
	return f.recent, f.recentErr
}

func (f *fakeStore[T]) DeleteByID(_ context.Context, _ int64) (int64, error) {
	return f.deleted, f.deleteErr
}

type fakePublisher struct {
	result queue.Result
	err    error
	jobs   []queue.Job
}

func (f *fakePublisher) Publish(_ context.Context, job queue.Job) (queue.Result, error) {
	f.jobs = append(f.jobs, job)
	return f.result, f.err
}
