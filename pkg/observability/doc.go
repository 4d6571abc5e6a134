// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing
// for the tracking dispatch path.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(logrus.InfoLevel, os.Stderr)
//	logger.WithField("event", "signup").Info("Tracking event")
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.ObserveSubmission("event", StatusSucceeded, time.Since(start))
//
// All Metrics methods are safe on a nil *Metrics, so callers can leave
// metrics unconfigured.
//
// # OpenTelemetry
//
// Initialize tracing:
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "parse-analytics",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/controller: Emits submission spans and metrics
package observability
