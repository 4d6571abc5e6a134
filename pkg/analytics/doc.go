// Package analytics is the client-side tracking facade for a Parse backend.
//
// # Overview
//
// Tracking calls return immediately with an *async.Handle while the
// submission itself runs in the background. The Tracker validates the
// call, reads the current session token, and hands off to a Controller,
// which stamps the event and delivers it.
//
// # Usage Example
//
// Build a tracker:
//
//	ctrl, err := controller.New(controller.Config{
//		ServerURL:     "https://api.example.com/parse",
//		ApplicationID: appID,
//		ClientKey:     clientKey,
//	})
//	tracker := analytics.NewTracker(ctrl, session.NewStaticProvider(token),
//		analytics.WithLogger(logger))
//
// Track a custom event:
//
//	h, err := tracker.TrackEvent(ctx, "signup", analytics.Dimensions{
//		"gender":  "m",
//		"source":  "web",
//		"dayType": "weekend",
//	})
//	if err != nil {
//		return err // blank name, nothing was submitted
//	}
//	// h can be waited on or ignored
//
// Track an app open from a push notification without ever failing:
//
//	tracker.TrackAppOpenedFromPushBestEffort(ctx, pushHash)
//
// # Dimensions
//
// An event carries at most MaxDimensions dimensions by default. The limit
// is advisory: larger sets are logged and counted but still submitted.
//
// # Related Packages
//
//   - pkg/async: Handle and the best-effort combinator
//   - pkg/controller: Parse REST controller
//   - pkg/session: SessionProvider implementations
package analytics
