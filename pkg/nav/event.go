package nav

import "time"

// EventType classifies a navigation transition.
type EventType string

const (
	EventGo         EventType = "go"
	EventPush       EventType = "push"
	EventReplace    EventType = "replace"
	EventPop        EventType = "pop"
	EventRedirected EventType = "redirected"
	EventRejected   EventType = "rejected"
)

// Event is one entry in a machine's append-only history log.
type Event struct {
	// Seq is a per-machine monotonically increasing sequence number.
	Seq int64 `json:"seq"`

	// From is the current location before the transition.
	From string `json:"from"`

	// To is the location the transition targeted. For rejected events it
	// is the requested location that was denied.
	To string `json:"to"`

	// Type is the transition kind.
	Type EventType `json:"type"`

	// RedirectedFrom is the originally requested location when a guard
	// redirected the navigation. Empty otherwise.
	RedirectedFrom string `json:"redirectedFrom,omitempty"`

	// Reason carries the reject reason for rejected events.
	Reason string `json:"reason,omitempty"`

	// Timestamp records when the transition completed. Timestamps are
	// monotonically non-decreasing within one machine.
	Timestamp time.Time `json:"timestamp"`
}
