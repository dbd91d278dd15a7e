// Package stream provides a small snapshot-stream abstraction used by the
// repository Watch APIs. A Stream carries full snapshots, not deltas: only
// the latest value matters to a consumer, so publishing replaces a pending
// unread snapshot instead of blocking the producer.
package stream

import "sync"

// Stream delivers values of type T with explicit next/error/unsubscribe
// channels, independent of the transport producing them.
type Stream[T any] struct {
	next chan T
	errs chan error

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// New returns an open stream ready for publishing.
func New[T any]() *Stream[T] {
	return &Stream[T]{
		next: make(chan T, 1),
		errs: make(chan error, 1),
		done: make(chan struct{}),
	}
}

// Next returns the channel on which snapshots arrive.
func (s *Stream[T]) Next() <-chan T { return s.next }

// Err returns the channel on which a terminal transport error arrives.
func (s *Stream[T]) Err() <-chan error { return s.errs }

// Done is closed once the stream has been unsubscribed.
func (s *Stream[T]) Done() <-chan struct{} { return s.done }

// Publish offers a snapshot to the consumer. A pending unread snapshot is
// replaced by the newer one. Reports false when the stream is closed.
func (s *Stream[T]) Publish(v T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.next <- v:
	default:
		// drop the stale pending snapshot, then queue the fresh one
		select {
		case <-s.next:
		default:
		}
		s.next <- v
	}
	return true
}

// Fail delivers a terminal error to the consumer. Only the first error is
// retained; later ones are dropped.
func (s *Stream[T]) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.errs <- err:
	default:
	}
}

// Unsubscribe closes the stream. Mandatory on consumer teardown so producers
// stop publishing into a stream nobody reads. Safe to call more than once.
func (s *Stream[T]) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}
