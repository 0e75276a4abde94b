package service

import "errors"

var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("briefer: client is closed")

	// ErrGeneration wraps every failure of the AI provider.
	ErrGeneration = errors.New("AI generation failed")

	// ErrQueuePublish is returned by producers in propagate mode when the
	// push queue rejects or never receives a job.
	ErrQueuePublish = errors.New("queue publish failed")
)
