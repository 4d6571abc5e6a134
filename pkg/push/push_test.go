package push

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
	"github.com/platinummonkey/parse-analytics/pkg/async"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		extras   map[string]string
		want     Payload
		wantErr  bool
		wantHash string
	}{
		{
			name:   "nil extras",
			extras: nil,
			want:   Payload{},
		},
		{
			name:   "no data",
			extras: map[string]string{"from": "sender"},
			want:   Payload{},
		},
		{
			name:   "reserved message type",
			extras: map[string]string{ExtraMessageType: "deleted_messages", ExtraData: `{"push_hash":"abc"}`},
			want:   Payload{},
		},
		{
			name:     "data",
			extras:   map[string]string{ExtraData: `{"push_hash":"abc123","alert":"hi"}`},
			want:     Payload{"push_hash": "abc123", "alert": "hi"},
			wantHash: "abc123",
		},
		{
			name:   "json null",
			extras: map[string]string{ExtraData: `null`},
			want:   Payload{},
		},
		{
			name:    "malformed",
			extras:  map[string]string{ExtraData: `{"push_hash":`},
			want:    Payload{},
			wantErr: true,
		},
		{
			name:    "not an object",
			extras:  map[string]string{ExtraData: `["a"]`},
			want:    Payload{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.extras)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedPayload))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantHash, got.PushHash())
		})
	}
}

func TestPayloadAccessors(t *testing.T) {
	tests := []struct {
		name        string
		payload     Payload
		title       string
		alert       string
		displayable bool
	}{
		{name: "empty", payload: Payload{}},
		{name: "title only", payload: Payload{"title": "Sale"}, title: "Sale", displayable: true},
		{name: "alert only", payload: Payload{"alert": "50% off"}, alert: "50% off", displayable: true},
		{
			name: "localized alert",
			payload: Payload{"alert": map[string]interface{}{
				"loc-key":  "PRODUCT",
				"loc-args": []interface{}{"Camera", "other"},
			}},
			alert:       "Camera",
			displayable: true,
		},
		{
			name:        "localized alert without args",
			payload:     Payload{"alert": map[string]interface{}{"loc-key": "PRODUCT"}},
			displayable: true,
		},
		{name: "non string values", payload: Payload{"title": 5, "push_hash": true}, displayable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.title, tt.payload.Title())
			assert.Equal(t, tt.alert, tt.payload.Alert())
			assert.Equal(t, tt.displayable, tt.payload.Displayable())
		})
	}
}

func TestPayloadNotification(t *testing.T) {
	n, ok := Payload{"push_hash": "abc"}.Notification("MyApp")
	assert.False(t, ok)
	assert.Equal(t, Notification{}, n)

	n, ok = Payload{"alert": "hello"}.Notification("MyApp")
	assert.True(t, ok)
	assert.Equal(t, Notification{Title: "MyApp", Alert: "hello"}, n)

	n, ok = Payload{"title": "Sale"}.Notification("MyApp")
	assert.True(t, ok)
	assert.Equal(t, Notification{Title: "Sale", Alert: DefaultAlert}, n)
}

type recordingOpener struct {
	mu     sync.Mutex
	hashes []string
}

func (o *recordingOpener) TrackAppOpenedFromPushBestEffort(ctx context.Context, pushHash string) *async.Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hashes = append(o.hashes, pushHash)
	return async.Completed(nil)
}

func TestTrackOpened(t *testing.T) {
	tests := []struct {
		name   string
		extras map[string]string
		want   string
	}{
		{name: "with hash", extras: map[string]string{ExtraData: `{"push_hash":"abc123"}`}, want: "abc123"},
		{name: "without hash", extras: map[string]string{ExtraData: `{"alert":"hi"}`}, want: ""},
		{name: "malformed", extras: map[string]string{ExtraData: `{{`}, want: ""},
		{name: "reserved", extras: map[string]string{ExtraMessageType: "x", ExtraData: `{"push_hash":"abc"}`}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener := &recordingOpener{}
			h := TrackOpened(context.Background(), opener, tt.extras)
			require.NoError(t, h.Wait(context.Background()))
			assert.Equal(t, []string{tt.want}, opener.hashes)
		})
	}
}

type failingController struct{}

func (failingController) SubmitEvent(ctx context.Context, name string, dimensions analytics.Dimensions, sessionToken string) *async.Handle {
	return async.Completed(analytics.NewTransportFailureError("POST events/"+name, errors.New("offline")))
}

func (failingController) SubmitAppOpen(ctx context.Context, pushHash string, sessionToken string) *async.Handle {
	return async.Completed(analytics.NewTransportFailureError("POST events/AppOpened", errors.New("offline")))
}

func TestTrackOpened_WithTracker(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var reports []string
	tracker := analytics.NewTracker(failingController{}, nil,
		analytics.WithLogger(logger),
		analytics.WithDiagnosticSink(analytics.DiagnosticFunc(func(msg string) {
			reports = append(reports, msg)
		})),
	)

	h := TrackOpened(context.Background(), tracker, map[string]string{ExtraData: `{"push_hash":"abc123"}`})
	require.NoError(t, h.Wait(context.Background()))
	assert.Equal(t, async.StateSucceeded, h.State())
	require.Len(t, reports, 1)
	assert.Contains(t, reports[0], "offline")
}
