package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/parse-analytics/pkg/async"
	"github.com/platinummonkey/parse-analytics/pkg/observability"
)

const pushOpenOperation = "push-open"

// Controller submits tracking requests to the backend.
//
// Implementations stamp the capture time when the submission runs, bind
// the given session token, never block the caller, and return a handle
// that completes whether or not anyone waits on it. Cancelling ctx before
// completion cancels the handle.
type Controller interface {
	SubmitEvent(ctx context.Context, name string, dimensions Dimensions, sessionToken string) *async.Handle
	SubmitAppOpen(ctx context.Context, pushHash string, sessionToken string) *async.Handle
}

// SessionProvider exposes the credential of the current session.
// An empty token means no session.
type SessionProvider interface {
	CurrentSessionToken(ctx context.Context) (string, error)
}

type anonymousSession struct{}

func (anonymousSession) CurrentSessionToken(context.Context) (string, error) {
	return "", nil
}

// Tracker is the public tracking API. It holds no mutable state and is
// safe for concurrent use.
type Tracker struct {
	controller Controller
	sessions   SessionProvider
	sink       DiagnosticSink
	logger     logrus.FieldLogger
	metrics    *observability.Metrics
}

// Option configures a Tracker
type Option func(*Tracker)

// WithDiagnosticSink sets where contained best-effort failures are reported.
// Defaults to a warning on the tracker's logger.
func WithDiagnosticSink(sink DiagnosticSink) Option {
	return func(t *Tracker) {
		t.sink = sink
	}
}

// WithLogger sets the tracker's logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(metrics *observability.Metrics) Option {
	return func(t *Tracker) {
		t.metrics = metrics
	}
}

// NewTracker creates a tracker submitting through controller.
// A nil sessions provider tracks every call without a session token.
func NewTracker(controller Controller, sessions SessionProvider, opts ...Option) *Tracker {
	if sessions == nil {
		sessions = anonymousSession{}
	}

	t := &Tracker{
		controller: controller,
		sessions:   sessions,
		logger:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.sink == nil {
		t.sink = LogSink(t.logger)
	}

	return t
}

// TrackAppOpened tracks this application being launched.
// It never fails synchronously; the returned handle can be waited on or ignored.
func (t *Tracker) TrackAppOpened(ctx context.Context) *async.Handle {
	return attempt(func() *async.Handle {
		return t.trackAppOpenedWithPushHash(ctx, "")
	})
}

// TrackEvent tracks the occurrence of a custom event with dimensions.
//
// A name that is empty after trimming whitespace is rejected with
// ErrInvalidArgument before anything is submitted. Pass NoDimensions for
// an event without dimensions. More than MaxDimensions dimensions are
// submitted anyway; the limit is enforced by the backend, if at all.
func (t *Tracker) TrackEvent(ctx context.Context, name string, dimensions Dimensions) (*async.Handle, error) {
	if err := ValidateEventName(name); err != nil {
		t.metrics.IncInvalidEvent()
		return nil, err
	}

	if dimensions == nil {
		dimensions = Dimensions{}
	}
	if len(dimensions) > MaxDimensions {
		t.metrics.IncDimensionLimitExceeded()
		t.logger.WithFields(logrus.Fields{
			"event":      name,
			"dimensions": len(dimensions),
			"limit":      MaxDimensions,
		}).Warn("Event exceeds the advisory dimension limit")
	}

	token, err := t.sessionToken(ctx)
	if err != nil {
		return async.Completed(err), nil
	}

	t.logger.WithFields(logrus.Fields{
		"event":      name,
		"dimensions": len(dimensions),
	}).Debug("Tracking event")

	return submitted(t.controller.SubmitEvent(ctx, name, dimensions, token)), nil
}

// TrackAppOpenedFromPushBestEffort tracks an app open caused by the push
// notification identified by pushHash. Any failure is reported once to the
// diagnostic sink and the returned handle always succeeds.
func (t *Tracker) TrackAppOpenedFromPushBestEffort(ctx context.Context, pushHash string) *async.Handle {
	h := attempt(func() *async.Handle {
		return t.trackAppOpenedWithPushHash(ctx, pushHash)
	})
	return async.Contain(h, t.reportPushOpenFailure)
}

func (t *Tracker) trackAppOpenedWithPushHash(ctx context.Context, pushHash string) *async.Handle {
	token, err := t.sessionToken(ctx)
	if err != nil {
		return async.Completed(err)
	}

	t.logger.WithField("from_push", pushHash != "").Debug("Tracking app opened")

	return submitted(t.controller.SubmitAppOpen(ctx, pushHash, token))
}

func (t *Tracker) sessionToken(ctx context.Context) (token string, err error) {
	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			token, err = "", fmt.Errorf("fetch session token: %w", perr)
		}
	}()

	token, err = t.sessions.CurrentSessionToken(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch session token: %w", err)
	}
	return token, nil
}

func (t *Tracker) reportPushOpenFailure(err error) {
	t.metrics.IncBestEffortFailure()

	message := fmt.Sprintf("%s: could not track the app open from push notification event: %v", pushOpenOperation, err)
	message = strings.Join(strings.Fields(message), " ")

	defer observability.RecoverPanic(t.logger, "diagnostic sink")
	t.sink.Report(message)
}

// attempt converts a panic raised while starting a submission into a failed handle
func attempt(fn func() *async.Handle) (h *async.Handle) {
	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			h = async.Completed(perr)
		}
	}()
	return submitted(fn())
}

func submitted(h *async.Handle) *async.Handle {
	if h == nil {
		return async.Completed(errors.New("controller returned no handle"))
	}
	return h
}
