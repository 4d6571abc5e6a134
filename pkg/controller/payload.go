package controller

import (
	"time"

	"github.com/platinummonkey/parse-analytics/pkg/analytics"
)

// parseDateLayout is the ISO-8601 form the Parse REST API uses for dates
const parseDateLayout = "2006-01-02T15:04:05.000Z"

type parseDate struct {
	Type string `json:"__type"`
	ISO  string `json:"iso"`
}

func newParseDate(t time.Time) parseDate {
	return parseDate{Type: "Date", ISO: t.UTC().Format(parseDateLayout)}
}

type eventPayload struct {
	At         parseDate            `json:"at"`
	Dimensions analytics.Dimensions `json:"dimensions,omitempty"`
}

func newEventPayload(event analytics.Event) eventPayload {
	return eventPayload{
		At:         newParseDate(event.CapturedAt),
		Dimensions: event.Dimensions,
	}
}

type appOpenPayload struct {
	At       parseDate `json:"at"`
	PushHash string    `json:"push_hash,omitempty"`
}

func newAppOpenPayload(event analytics.AppOpenEvent) appOpenPayload {
	return appOpenPayload{
		At:       newParseDate(event.CapturedAt),
		PushHash: event.PushHash,
	}
}
