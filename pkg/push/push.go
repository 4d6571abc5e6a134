// Package push decodes Parse push notification extras and reports app
// opens caused by them.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/platinummonkey/parse-analytics/pkg/async"
)

// Keys of the delivered extras and of the decoded payload
const (
	ExtraMessageType = "message_type"
	ExtraData        = "data"

	KeyPushHash = "push_hash"
	KeyTitle    = "title"
	KeyAlert    = "alert"
	KeyLocArgs  = "loc-args"
)

// DefaultAlert is shown when a payload has a title but no alert
const DefaultAlert = "Notification received."

// ErrMalformedPayload is returned when the data extra is not a JSON object
var ErrMalformedPayload = errors.New("malformed push payload")

// Payload is the decoded push data
type Payload map[string]interface{}

// Decode extracts the payload from the extras delivered with a push.
// Messages carrying a message_type are reserved for the delivery channel
// and decode to an empty payload, as do extras without data.
func Decode(extras map[string]string) (Payload, error) {
	if _, reserved := extras[ExtraMessageType]; reserved {
		return Payload{}, nil
	}

	data, ok := extras[ExtraData]
	if !ok || data == "" {
		return Payload{}, nil
	}

	var payload Payload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if payload == nil {
		payload = Payload{}
	}
	return payload, nil
}

// PushHash returns the hash identifying the push, or "" when absent
func (p Payload) PushHash() string {
	return p.str(KeyPushHash)
}

// Title returns the notification title, or "" when absent
func (p Payload) Title() string {
	return p.str(KeyTitle)
}

// Alert returns the notification text. A localized alert object yields its
// first loc-args entry.
func (p Payload) Alert() string {
	switch alert := p[KeyAlert].(type) {
	case string:
		return alert
	case map[string]interface{}:
		args, _ := alert[KeyLocArgs].([]interface{})
		if len(args) > 0 {
			if first, ok := args[0].(string); ok {
				return first
			}
		}
	}
	return ""
}

// Displayable reports whether the payload has anything to show
func (p Payload) Displayable() bool {
	_, hasAlert := p[KeyAlert]
	_, hasTitle := p[KeyTitle]
	return hasAlert || hasTitle
}

// Notification is the title and text to display for a payload
type Notification struct {
	Title string
	Alert string
}

// Notification returns what to display, falling back to defaultTitle and
// DefaultAlert. ok is false when the payload is not displayable.
func (p Payload) Notification(defaultTitle string) (n Notification, ok bool) {
	if !p.Displayable() {
		return Notification{}, false
	}

	n = Notification{Title: p.Title(), Alert: p.Alert()}
	if n.Title == "" {
		n.Title = defaultTitle
	}
	if n.Alert == "" {
		n.Alert = DefaultAlert
	}
	return n, true
}

func (p Payload) str(key string) string {
	s, _ := p[key].(string)
	return s
}

// Opener reports app opens caused by a push without failing
type Opener interface {
	TrackAppOpenedFromPushBestEffort(ctx context.Context, pushHash string) *async.Handle
}

// TrackOpened reports that the app was opened from the push delivered with
// extras. Extras that fail to decode are tracked without a push hash.
// The returned handle always succeeds.
func TrackOpened(ctx context.Context, opener Opener, extras map[string]string) *async.Handle {
	payload, err := Decode(extras)
	if err != nil {
		payload = Payload{}
	}
	return opener.TrackAppOpenedFromPushBestEffort(ctx, payload.PushHash())
}
