package log

import (
	"strings"
	"time"
)

// Event is one traced store operation.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp is when the operation happened, from the store's clock.
	Timestamp time.Time `cbor:"1,keyasint"`

	// Kind classifies the operation.
	Kind Kind `cbor:"2,keyasint"`

	// Path is the addressed path; empty for the root.
	Path []string `cbor:"3,keyasint,omitempty"`

	// SubscriptionID is set for subscribe and unsubscribe events.
	SubscriptionID string `cbor:"4,keyasint,omitempty"`

	// Listeners is the group size after subscribe/unsubscribe, or the
	// number of callbacks run by a settlement.
	Listeners int `cbor:"5,keyasint,omitempty"`

	// Pending is the number of in-flight debounce timers for the group
	// right after a publish.
	Pending int `cbor:"6,keyasint,omitempty"`

	// Patch is the data merged by a publish.
	Patch map[string]any `cbor:"7,keyasint,omitempty"`

	// Error is the failure message for KindError events.
	Error string `cbor:"8,keyasint,omitempty"`

	// Armed is set on publish events that armed a debounce gate. A publish
	// to a path without subscribers merges data but arms nothing.
	Armed bool `cbor:"9,keyasint,omitempty"`
}

// PathString renders Path the way the command line tools accept it.
func (e Event) PathString() string {
	if len(e.Path) == 0 {
		return "/"
	}
	return strings.Join(e.Path, "/")
}

// Kind classifies a trace event.
type Kind uint8

const (
	// KindSubscribe records a new subscription.
	KindSubscribe Kind = 0
	// KindUnsubscribe records a removed subscription.
	KindUnsubscribe Kind = 1
	// KindPublish records an applied merge. Event.Armed tells whether it
	// armed a debounce gate.
	KindPublish Kind = 2
	// KindSettle records a debounce settlement and its fan-out.
	KindSettle Kind = 3
	// KindError records a failed operation.
	KindError Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSubscribe:
		return "SUBSCRIBE"
	case KindUnsubscribe:
		return "UNSUBSCRIBE"
	case KindPublish:
		return "PUBLISH"
	case KindSettle:
		return "SETTLE"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUBSCRIBE", "SUB":
		return KindSubscribe, true
	case "UNSUBSCRIBE", "UNSUB":
		return KindUnsubscribe, true
	case "PUBLISH", "PUB":
		return KindPublish, true
	case "SETTLE":
		return KindSettle, true
	case "ERROR":
		return KindError, true
	default:
		return 0, false
	}
}
