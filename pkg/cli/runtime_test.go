package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/platinummonkey/parse-analytics/pkg/observability"
)

func TestRecoverInto(t *testing.T) {
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	run := func() (err error) {
		defer recoverInto(logger, "event command", &err)
		panic("tracker exploded")
	}

	var err error
	require.NotPanics(t, func() { err = run() })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event command: panic: tracker exploded")
	assert.Contains(t, logs.String(), "PANIC recovered")
}

func TestRecoverInto_OverridesResult(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	run := func() (err error) {
		defer recoverInto(logger, "track event", &err)
		var m map[string]int
		m["boom"]++
		return nil
	}

	assert.Error(t, run())

	ok := func() (err error) {
		defer recoverInto(logger, "track event", &err)
		return errors.New("plain failure")
	}
	assert.EqualError(t, ok(), "plain failure")
}

func TestRecoverInto_ErrgroupWorker(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	g := new(errgroup.Group)
	for i := 0; i < 3; i++ {
		i := i
		g.Go(func() (err error) {
			defer recoverInto(logger, "track event", &err)
			if i == 1 {
				panic("session store corrupted")
			}
			return nil
		})
	}

	var err error
	require.NotPanics(t, func() { err = g.Wait() })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "track event: panic: session store corrupted")
}

func TestRuntimeClose_AfterCancellation(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "parse.track event")
	span.End()

	closed := false
	rt := &runtime{
		logger: logger,
		otel:   &observability.OTelProviders{TracerProvider: tp},
		closers: []func() error{func() error {
			closed = true
			return nil
		}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, rt.close(ctx))
	assert.True(t, closed)
	assert.Len(t, recorder.Ended(), 1)
}
