// Package async provides the completion handles and background task
// primitives used by the tracking dispatch path.
//
// # Overview
//
// Every tracking call returns a *Handle immediately. The Handle reaches
// exactly one terminal state (succeeded, failed or cancelled) once the
// background work finishes. Callers may wait on it, inspect it later, or
// drop it entirely; an unobserved Handle never leaks its goroutine and a
// failed one never crashes the process.
//
// # Key Functions
//
// Go: run a task in its own goroutine with panic recovery and a timeout
//
//	h := async.Go(ctx, 10*time.Second, "track event", func(ctx context.Context) error {
//		return send(ctx, payload)
//	})
//	if err := h.Wait(ctx); err != nil {
//		log.Printf("tracking failed: %v", err)
//	}
//
// Completed: a Handle that is already terminal
//
//	return async.Completed(fmt.Errorf("session lookup: %w", err))
//
// Contain: the best-effort combinator
//
//	quiet := async.Contain(h, func(err error) {
//		logger.Warnf("could not track: %v", err)
//	})
//
// # Cancellation
//
// Cancelling the context passed to Go moves the Handle to StateCancelled
// right away, even when the task itself has not returned yet. A deadline
// on that context moves it to StateFailed instead.
package async
