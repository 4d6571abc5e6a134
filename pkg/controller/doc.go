// Package controller implements analytics.Controller against the Parse REST API.
//
// Custom events are posted to {ServerURL}/events/{name} and app opens to
// {ServerURL}/events/AppOpened. Each submission runs on its own goroutine
// via async.Go; the capture timestamp is taken inside that goroutine, right
// before the request is built.
//
//	ctrl, err := controller.New(controller.Config{
//		ServerURL:     "https://api.example.com/parse",
//		ApplicationID: "myAppId",
//		ClientKey:     "myClientKey",
//		Timeout:       10 * time.Second,
//	}, controller.WithLogger(logger), controller.WithMetrics(metrics))
//
// Non-2xx responses become *APIError values, which wrap
// analytics.ErrTransportFailure.
package controller
