// Package event defines the uniform event model every world signal is
// normalized into: a kind tag, a severity, a timestamp, a human-readable
// description, and an optional typed payload.
//
// Events are immutable once constructed. Anything that wants to vary per
// kind lives in the payload variant (see Data), not in new Event fields.
package event

import (
	"errors"
	"fmt"
	"time"
)

// Kind tags the category of a state change. The set below covers the
// signals the adapter currently normalizes; new kinds are added by
// defining a new payload variant, the dispatch mechanism is unaffected.
type Kind string

const (
	KindConnection Kind = "connection"
	KindChat       Kind = "chat"
	KindEntityHurt Kind = "entity-hurt"
	KindBlockBreak Kind = "block-break"
	KindDamage     Kind = "damage"
	KindDeath      Kind = "death"
	KindMovement   Kind = "movement"
	KindGameState  Kind = "game-state"
	KindError      Kind = "error"

	// KindStatus is produced by the periodic activity digest, not by the
	// world adapter.
	KindStatus Kind = "status"
)

// Severity classifies how an event should be treated downstream,
// orthogonally to its kind.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Valid reports whether s is one of the four defined severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeveritySuccess:
		return true
	}
	return false
}

// Construction errors. Callers that assemble events from untrusted input
// (hub.Post) check these with errors.Is and drop the emission.
var (
	ErrNoKind       = errors.New("event: empty kind")
	ErrBadSeverity  = errors.New("event: unknown severity")
	ErrPayloadKind  = errors.New("event: payload kind mismatch")
	ErrReservedKind = errors.New("event: reserved kind")
)

// Event is one normalized state change.
type Event struct {
	Kind        Kind      `json:"kind"`
	Severity    Severity  `json:"severity"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Data        Data      `json:"data,omitempty"`
}

// New validates and builds an Event. The payload may be nil; when present
// its EventKind() must match kind. Kinds containing '*' are reserved for
// subscription patterns and cannot be emitted.
func New(kind Kind, sev Severity, ts time.Time, description string, data Data) (Event, error) {
	if kind == "" {
		return Event{}, ErrNoKind
	}
	for _, r := range kind {
		if r == '*' {
			return Event{}, fmt.Errorf("%w: %q", ErrReservedKind, kind)
		}
	}
	if !sev.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrBadSeverity, sev)
	}
	if data != nil && data.EventKind() != kind {
		return Event{}, fmt.Errorf("%w: %q payload on %q event", ErrPayloadKind, data.EventKind(), kind)
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	return Event{Kind: kind, Severity: sev, Timestamp: ts, Description: description, Data: data}, nil
}
