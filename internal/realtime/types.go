package realtime

import (
	"time"

	"github.com/wonny/scamdunk/internal/schemes"
)

// EventType names a scheme stream message
type EventType string

const (
	EventSchemeCreated    EventType = "scheme.created"
	EventSchemeTransition EventType = "scheme.transition"
	EventTrackingRun      EventType = "tracking.run"
)

// Event is one message pushed to /ws/schemes subscribers
// ⭐ SSOT: the websocket wire format is defined here only
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// RunEvent is the payload of a tracking.run event
type RunEvent struct {
	RunID       string `json:"runId"`
	Date        string `json:"date"`
	Created     int    `json:"created"`
	Updated     int    `json:"updated"`
	Transitions int    `json:"transitions"`
	Active      int    `json:"activeSchemes"`
	Total       int    `json:"totalSchemes"`
}

// CreatedEvent is the payload of a scheme.created event
type CreatedEvent struct {
	SchemeID string `json:"schemeId"`
	Date     string `json:"date"`
}

// EventsFromRun expands a tracking summary into stream events: one per
// created scheme, one per transition, then the run summary.
func EventsFromRun(summary *schemes.RunSummary, now time.Time) []Event {
	events := make([]Event, 0, len(summary.Created)+len(summary.Transitions)+1)
	for _, id := range summary.Created {
		events = append(events, Event{
			Type:      EventSchemeCreated,
			Timestamp: now,
			Data:      CreatedEvent{SchemeID: id, Date: summary.Date},
		})
	}
	for _, tr := range summary.Transitions {
		events = append(events, Event{Type: EventSchemeTransition, Timestamp: now, Data: tr})
	}
	events = append(events, Event{
		Type:      EventTrackingRun,
		Timestamp: now,
		Data: RunEvent{
			RunID:       summary.RunID,
			Date:        summary.Date,
			Created:     len(summary.Created),
			Updated:     len(summary.Updated),
			Transitions: len(summary.Transitions),
			Active:      summary.Active,
			Total:       summary.Total,
		},
	})
	return events
}
