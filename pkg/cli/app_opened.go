package cli

import (
	"context"
	"fmt"

	"github.com/platinummonkey/parse-analytics/pkg/async"
	"github.com/platinummonkey/parse-analytics/pkg/push"
)

func newAppOpenedCommand(a *app) *Command {
	cmd := &Command{
		Name:        "app-opened",
		Description: "Track an app open, optionally caused by a push notification",
		Flags:       newFlagSet("app-opened", a.errOut),
	}

	opts := appOpenedOptions{}
	cmd.Flags.StringVar(&opts.pushHash, "push-hash", "", "Hash of the push that opened the app (always best effort)")
	cmd.Flags.StringVar(&opts.pushData, "push-data", "", "JSON data delivered with the push; its push_hash is tracked")
	cmd.Flags.BoolVar(&opts.bestEffort, "best-effort", false, "Report failures as diagnostics instead of failing")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if opts.pushHash != "" && opts.pushData != "" {
			return fmt.Errorf("-push-hash and -push-data are mutually exclusive")
		}
		return a.runAppOpened(ctx, opts)
	}

	return cmd
}

type appOpenedOptions struct {
	pushHash   string
	pushData   string
	bestEffort bool
}

func (a *app) runAppOpened(ctx context.Context, opts appOpenedOptions) (err error) {
	rt, err := a.newRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	defer recoverInto(rt.logger, "app-opened command", &err)

	trackCtx := rt.trackingContext(ctx)

	var h *async.Handle
	switch {
	case opts.pushData != "":
		h = push.TrackOpened(trackCtx, rt.tracker, map[string]string{push.ExtraData: opts.pushData})
	case opts.pushHash != "" || opts.bestEffort:
		h = rt.tracker.TrackAppOpenedFromPushBestEffort(trackCtx, opts.pushHash)
	default:
		h = rt.tracker.TrackAppOpened(trackCtx)
	}

	if err := h.Wait(ctx); err != nil {
		return fmt.Errorf("track app opened: %w", err)
	}

	fmt.Fprintln(a.out, "Tracked app opened")
	return nil
}
