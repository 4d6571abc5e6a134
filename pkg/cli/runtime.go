package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
	"github.com/platinummonkey/parse-analytics/pkg/config"
	"github.com/platinummonkey/parse-analytics/pkg/controller"
	"github.com/platinummonkey/parse-analytics/pkg/observability"
	"github.com/platinummonkey/parse-analytics/pkg/session"
)

// closeTimeout bounds flushing telemetry on exit, even after an interrupt
const closeTimeout = 5 * time.Second

// runtime is the tracker and its supporting services, built from config
type runtime struct {
	cfg      *config.Config
	logger   *logrus.Logger
	registry *prometheus.Registry
	otel     *observability.OTelProviders
	tracker  *analytics.Tracker
	closers  []func() error
}

func (a *app) newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}

	level, err := cfg.Observability.Level()
	if err != nil {
		return nil, err
	}
	rt := &runtime{
		cfg:    cfg,
		logger: observability.NewLogger(level, a.errOut),
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		rt.registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(rt.registry)
	}

	rt.otel, err = observability.InitOTel(ctx, cfg.Observability.OTel(), rt.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	ctrl, err := controller.New(cfg.Parse.Controller(),
		controller.WithLogger(rt.logger),
		controller.WithMetrics(metrics),
	)
	if err != nil {
		_ = rt.close(ctx)
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	sessions, err := rt.newSessionProvider(ctx)
	if err != nil {
		_ = rt.close(ctx)
		return nil, err
	}

	rt.tracker = analytics.NewTracker(ctrl, sessions,
		analytics.WithLogger(rt.logger),
		analytics.WithMetrics(metrics),
	)

	rt.logger.WithFields(logrus.Fields{
		"server":          cfg.Parse.ServerURL,
		"installation_id": ctrl.InstallationID(),
		"sessions":        cfg.Session.Provider,
	}).Debug("Tracker ready")

	return rt, nil
}

func (rt *runtime) newSessionProvider(ctx context.Context) (analytics.SessionProvider, error) {
	var provider analytics.SessionProvider

	switch rt.cfg.Session.Provider {
	case config.SessionStatic:
		provider = session.NewStaticProvider(rt.cfg.Session.Token)
	case config.SessionRedis:
		redisProvider, err := session.NewRedisProvider(ctx, rt.cfg.Session.Redis())
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session provider: %w", err)
		}
		rt.closers = append(rt.closers, redisProvider.Close)
		provider = redisProvider
	default:
		return nil, nil
	}

	if rt.cfg.Session.CacheTTL > 0 {
		provider = session.NewCachedProvider(provider, rt.cfg.Session.CacheSize, rt.cfg.Session.CacheTTL)
	}
	return provider, nil
}

// trackingContext scopes session lookups to the configured scope
func (rt *runtime) trackingContext(ctx context.Context) context.Context {
	return session.WithScope(ctx, rt.cfg.Session.Scope)
}

// close flushes and releases the runtime. It detaches from ctx, which is
// already cancelled after SIGINT or SIGTERM.
func (rt *runtime) close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	var errs []error

	if rt.registry != nil {
		if err := observability.LogSummary(rt.registry, rt.logger); err != nil {
			errs = append(errs, fmt.Errorf("metrics summary: %w", err))
		}
	}
	if err := observability.ShutdownOTel(ctx, rt.otel, rt.logger); err != nil {
		errs = append(errs, err)
	}
	for _, closeFn := range rt.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// recoverInto turns a panic in the calling function into *errp
func recoverInto(logger logrus.FieldLogger, operation string, errp *error) {
	if perr := observability.MustRecover(recover()); perr != nil {
		logger.WithFields(logrus.Fields{
			"context": operation,
			"stack":   string(debug.Stack()),
		}).Error("PANIC recovered")
		*errp = fmt.Errorf("%s: %w", operation, perr)
	}
}
