package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/parse-analytics/pkg/observability"
)

// Go executes fn in its own goroutine and returns a Handle for its outcome.
// It provides:
// - Context cancellation support (the handle is cancelled as soon as parentCtx is)
// - Panic recovery (a panic becomes a failed handle)
// - Timeout enforcement (timeout <= 0 disables it)
//
// Use this instead of bare `go func()` so every background submission ends
// in exactly one terminal state.
//
// Example:
//
//	h := Go(ctx, 5*time.Second, "track app opened", func(ctx context.Context) error {
//	    return client.Post(ctx, "events/AppOpened", body)
//	})
func Go(parentCtx context.Context, timeout time.Duration, taskName string, fn func(context.Context) error) *Handle {
	h := newHandle()

	stop := context.AfterFunc(parentCtx, func() {
		h.resolve(outcome(context.Cause(parentCtx)))
	})

	go func() {
		defer stop()

		ctx := parentCtx
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parentCtx, timeout)
			defer cancel()
		}

		err := run(ctx, taskName, fn)
		if err != nil {
			err = fmt.Errorf("%s: %w", taskName, err)
		}
		h.resolve(outcome(err))
	}()

	return h
}

// run calls fn and converts a panic into an error
func run(ctx context.Context, taskName string, fn func(context.Context) error) (err error) {
	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			logrus.WithFields(logrus.Fields{
				"task":  taskName,
				"stack": string(debug.Stack()),
			}).Errorf("PANIC recovered in background task: %v", perr)
			err = perr
		}
	}()

	return fn(ctx)
}

// Contain returns a handle that always succeeds once h is terminal.
// When h failed or was cancelled, onFailure receives its error exactly once.
// A panic raised by onFailure is recovered and logged.
func Contain(h *Handle, onFailure func(error)) *Handle {
	contained := newHandle()

	go func() {
		<-h.Done()

		if err := h.Err(); err != nil && onFailure != nil {
			func() {
				defer func() {
					if perr := observability.MustRecover(recover()); perr != nil {
						logrus.WithError(perr).Error("PANIC recovered in failure callback")
					}
				}()
				onFailure(err)
			}()
		}

		contained.resolve(StateSucceeded, nil)
	}()

	return contained
}
