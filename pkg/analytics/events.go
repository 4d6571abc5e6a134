package analytics

import (
	"strings"
	"time"
)

// MaxDimensions is the advisory number of dimensions per event
const MaxDimensions = 8

// Dimensions segment the occurrences of a custom event
type Dimensions map[string]string

// NoDimensions tracks an event without dimensions
var NoDimensions Dimensions

// Clone returns a copy of d. A nil d yields an empty map.
func (d Dimensions) Clone() Dimensions {
	out := make(Dimensions, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Event is one custom analytics occurrence as handed to the transport
type Event struct {
	Name         string
	Dimensions   Dimensions
	SessionToken string
	CapturedAt   time.Time
}

// NewEvent builds an Event. The dimensions are copied so later changes by
// the caller do not leak into the event.
func NewEvent(name string, dimensions Dimensions, sessionToken string, capturedAt time.Time) Event {
	return Event{
		Name:         name,
		Dimensions:   dimensions.Clone(),
		SessionToken: sessionToken,
		CapturedAt:   capturedAt.UTC(),
	}
}

// AppOpenEvent is an app launch, optionally caused by a push notification.
// An empty PushHash is an organic open.
type AppOpenEvent struct {
	PushHash     string
	SessionToken string
	CapturedAt   time.Time
}

// NewAppOpenEvent builds an AppOpenEvent
func NewAppOpenEvent(pushHash, sessionToken string, capturedAt time.Time) AppOpenEvent {
	return AppOpenEvent{
		PushHash:     pushHash,
		SessionToken: sessionToken,
		CapturedAt:   capturedAt.UTC(),
	}
}

// FromPush reports whether the open was caused by a push notification
func (e AppOpenEvent) FromPush() bool {
	return e.PushHash != ""
}

// ValidateEventName rejects names that are empty after trimming whitespace
func ValidateEventName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewInvalidArgumentError("a name for the custom event must be provided")
	}
	return nil
}
