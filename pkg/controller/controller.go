package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
	"github.com/platinummonkey/parse-analytics/pkg/async"
	"github.com/platinummonkey/parse-analytics/pkg/observability"
)

// Version is reported in the X-Parse-Client-Version header
var Version = "1.0.0"

const (
	// DefaultTimeout bounds a single submission when Config.Timeout is zero
	DefaultTimeout = 10 * time.Second

	appOpenedEvent = "AppOpened"

	kindEvent   = "event"
	kindAppOpen = "app_open"
)

// Parse REST headers
const (
	HeaderApplicationID  = "X-Parse-Application-Id"
	HeaderClientKey      = "X-Parse-Client-Key"
	HeaderSessionToken   = "X-Parse-Session-Token"
	HeaderInstallationID = "X-Parse-Installation-Id"
	HeaderClientVersion  = "X-Parse-Client-Version"
)

// Config holds the Parse server coordinates
type Config struct {
	ServerURL      string
	ApplicationID  string
	ClientKey      string
	InstallationID string
	Timeout        time.Duration
}

// Controller submits tracking requests to a Parse server
type Controller struct {
	cfg     Config
	baseURL string
	client  *http.Client
	now     func() time.Time
	logger  logrus.FieldLogger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

var _ analytics.Controller = (*Controller)(nil)

// Option configures a Controller
type Option func(*Controller)

// WithHTTPClient replaces the default otelhttp-instrumented client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		if client != nil {
			c.client = client
		}
	}
}

// WithClock sets the source of capture timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the controller's logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = metrics
	}
}

// WithTracer sets the tracer used for submission spans
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// New creates a Controller. It generates an installation id when cfg has none.
func New(cfg Config, opts ...Option) (*Controller, error) {
	if cfg.ApplicationID == "" {
		return nil, fmt.Errorf("application id is required")
	}

	u, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: must be an absolute http(s) URL", cfg.ServerURL)
	}

	if cfg.InstallationID == "" {
		cfg.InstallationID = uuid.NewString()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Controller{
		cfg:     cfg,
		baseURL: strings.TrimRight(u.String(), "/"),
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		now:     time.Now,
		logger:  logrus.StandardLogger(),
		tracer:  observability.Tracer(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// InstallationID returns the installation id sent with every request
func (c *Controller) InstallationID() string {
	return c.cfg.InstallationID
}

// SubmitEvent posts a custom event. The dimensions are copied before
// SubmitEvent returns; the capture time is taken when the request is built.
func (c *Controller) SubmitEvent(ctx context.Context, name string, dimensions analytics.Dimensions, sessionToken string) *async.Handle {
	dimensions = dimensions.Clone()

	return async.Go(ctx, c.cfg.Timeout, "track event "+name, func(ctx context.Context) error {
		event := analytics.NewEvent(name, dimensions, sessionToken, c.now())
		return c.post(ctx, kindEvent, event.Name, newEventPayload(event), event.SessionToken)
	})
}

// SubmitAppOpen posts an app open. An empty pushHash is an organic open.
func (c *Controller) SubmitAppOpen(ctx context.Context, pushHash string, sessionToken string) *async.Handle {
	return async.Go(ctx, c.cfg.Timeout, "track app opened", func(ctx context.Context) error {
		event := analytics.NewAppOpenEvent(pushHash, sessionToken, c.now())
		return c.post(ctx, kindAppOpen, appOpenedEvent, newAppOpenPayload(event), event.SessionToken)
	})
}

func (c *Controller) post(ctx context.Context, kind, eventName string, payload interface{}, sessionToken string) (err error) {
	start := time.Now()
	operation := "POST events/" + eventName

	ctx, span := c.tracer.Start(ctx, "parse.track "+kind,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("parse.event", eventName),
			attribute.Bool("parse.session", sessionToken != ""),
		),
	)
	defer func() {
		c.metrics.ObserveSubmission(kind, submissionStatus(err), time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			observability.WithTraceContext(ctx, c.logger).
				WithError(err).
				WithField("event", eventName).
				Debug("Tracking submission failed")
		}
		span.End()
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}

	endpoint := c.baseURL + "/events/" + url.PathEscape(eventName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req, sessionToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return analytics.NewTransportFailureError(operation, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %w", operation, decodeAPIError(resp))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Controller) setHeaders(req *http.Request, sessionToken string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderApplicationID, c.cfg.ApplicationID)
	req.Header.Set(HeaderInstallationID, c.cfg.InstallationID)
	req.Header.Set(HeaderClientVersion, "go-"+Version)
	if c.cfg.ClientKey != "" {
		req.Header.Set(HeaderClientKey, c.cfg.ClientKey)
	}
	if sessionToken != "" {
		req.Header.Set(HeaderSessionToken, sessionToken)
	}
}

func submissionStatus(err error) string {
	switch {
	case err == nil:
		return observability.StatusSucceeded
	case errors.Is(err, context.Canceled):
		return observability.StatusCancelled
	default:
		return observability.StatusFailed
	}
}
