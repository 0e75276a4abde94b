package service

import "sync/atomic"

// Lifecycle is shared by the services of one client. Once closed, every
// service call fails with ErrClientClosed before touching the store, the
// provider or the queue.
type Lifecycle struct {
	closed atomic.Bool
}

// NewLifecycle returns an open Lifecycle.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// Close marks the lifecycle closed. It reports false if it was already closed.
func (l *Lifecycle) Close() bool {
	return l.closed.CompareAndSwap(false, true)
}

// Closed reports whether Close has been called.
func (l *Lifecycle) Closed() bool {
	return l != nil && l.closed.Load()
}

// Err returns ErrClientClosed once closed. A nil Lifecycle is always open.
func (l *Lifecycle) Err() error {
	if l.Closed() {
		return ErrClientClosed
	}
	return nil
}
