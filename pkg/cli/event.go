package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
)

// maxInFlight bounds concurrent submissions of a repeated event
const maxInFlight = 16

func newEventCommand(a *app) *Command {
	cmd := &Command{
		Name:        "event",
		Description: "Track a custom event with dimensions",
		Flags:       newFlagSet("event", a.errOut),
	}

	name := cmd.Flags.String("name", "", "Event name")
	repeat := cmd.Flags.Int("repeat", 1, "Number of times to track the event")
	dims := dimensionsFlag{}
	cmd.Flags.Var(dims, "dim", "Dimension as key=value (repeatable)")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *repeat < 1 {
			return fmt.Errorf("repeat must be at least 1")
		}
		return a.runEvent(ctx, *name, analytics.Dimensions(dims), *repeat)
	}

	return cmd
}

func (a *app) runEvent(ctx context.Context, name string, dims analytics.Dimensions, repeat int) (err error) {
	if err := analytics.ValidateEventName(name); err != nil {
		return err
	}

	rt, err := a.newRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.close(ctx); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	defer recoverInto(rt.logger, "event command", &err)

	trackCtx := rt.trackingContext(ctx)

	var tracked atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(maxInFlight)
	for i := 0; i < repeat; i++ {
		g.Go(func() (err error) {
			defer recoverInto(rt.logger, "track event", &err)

			h, err := rt.tracker.TrackEvent(trackCtx, name, dims)
			if err != nil {
				return err
			}
			if err := h.Wait(ctx); err != nil {
				return fmt.Errorf("track event %q: %w", name, err)
			}
			tracked.Add(1)
			return nil
		})
	}
	err = g.Wait()

	fmt.Fprintf(a.out, "Tracked event %q %d/%d times\n", name, tracked.Load(), repeat)
	return err
}

// dimensionsFlag collects repeated -dim key=value flags
type dimensionsFlag analytics.Dimensions

func (d dimensionsFlag) String() string {
	pairs := make([]string, 0, len(d))
	for k, v := range d {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (d dimensionsFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("dimension %q must be key=value", value)
	}
	d[key] = val
	return nil
}
