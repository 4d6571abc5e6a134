package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrCancelled is the error carried by a Handle that was cancelled before it completed
var ErrCancelled = errors.New("cancelled")

// State is the completion state of a Handle
type State int

const (
	StatePending State = iota
	StateSucceeded
	StateFailed
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Handle represents an in-flight or completed asynchronous submission.
// It is safe for concurrent use.
type Handle struct {
	done  chan struct{}
	once  sync.Once
	state State
	err   error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// resolve records the terminal outcome. Only the first call has any effect.
func (h *Handle) resolve(state State, err error) bool {
	resolved := false
	h.once.Do(func() {
		h.state = state
		h.err = err
		close(h.done)
		resolved = true
	})
	return resolved
}

// Done returns a channel that is closed once the handle is terminal
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// State returns the current state without blocking
func (h *Handle) State() State {
	select {
	case <-h.done:
		return h.state
	default:
		return StatePending
	}
}

// Err returns the terminal error, or nil while pending or after success
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Wait blocks until the handle is terminal or ctx is done.
// It returns the handle's error, or ctx.Err() if ctx finished first.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Completed returns a handle that is already terminal.
// A nil err yields a succeeded handle.
func Completed(err error) *Handle {
	h := newHandle()
	h.resolve(outcome(err))
	return h
}

// outcome maps a task result onto a terminal state
func outcome(err error) (State, error) {
	switch {
	case err == nil:
		return StateSucceeded, nil
	case errors.Is(err, ErrCancelled):
		return StateCancelled, err
	case errors.Is(err, context.Canceled):
		return StateCancelled, fmt.Errorf("%w: %w", ErrCancelled, err)
	default:
		return StateFailed, err
	}
}
