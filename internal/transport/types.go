// Package transport defines the outward notification boundary. The host
// channel object is probed for optional capabilities; whatever subset it
// implements becomes the ranked strategy list the notifier walks on each
// delivery. Zero capabilities is legal: delivery then lands in the local
// log sink.
//
// The payload shape here is the stable outward contract. Hosts receive the
// formatted message plus the event envelope and must not depend on any
// other pipeline type.
package transport

import (
	"context"
	"time"

	"minewatch/internal/event"
)

// Envelope is the outward projection of one event.
type Envelope struct {
	Kind      string    `json:"kind"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Payload is what every capability receives.
type Payload struct {
	Message string   `json:"message"`
	Event   Envelope `json:"event"`
}

// NewPayload projects ev into the outward shape.
func NewPayload(message string, ev event.Event) Payload {
	var data any
	if ev.Data != nil {
		data = ev.Data
	}
	return Payload{
		Message: message,
		Event: Envelope{
			Kind:      string(ev.Kind),
			Severity:  string(ev.Severity),
			Timestamp: ev.Timestamp,
			Data:      data,
		},
	}
}

// Optional host capabilities, ranked by preference. A host implements any
// subset; absence of all three is not an error.
type (
	// Notifier is the preferred mechanism: a dedicated notification call.
	Notifier interface {
		Notify(ctx context.Context, topic string, p Payload) error
	}

	// NotificationSender is the fallback mechanism: a generic typed send.
	NotificationSender interface {
		SendNotification(ctx context.Context, topic string, p Payload) error
	}

	// Prompter is the last resort: inject the message as a plain prompt.
	Prompter interface {
		Prompt(ctx context.Context, topic, message string) error
	}
)

// Strategy is one probed delivery mechanism.
type Strategy struct {
	Name string
	Send func(ctx context.Context, topic string, p Payload) error
}

// Probe type-asserts host against each capability and returns the ranked
// strategies it supports (notify, then send-notification, then prompt).
// A nil host yields none.
func Probe(host any) []Strategy {
	if host == nil {
		return nil
	}
	var out []Strategy
	if n, ok := host.(Notifier); ok {
		out = append(out, Strategy{Name: "notify", Send: n.Notify})
	}
	if s, ok := host.(NotificationSender); ok {
		out = append(out, Strategy{Name: "send-notification", Send: s.SendNotification})
	}
	if p, ok := host.(Prompter); ok {
		out = append(out, Strategy{
			Name: "prompt",
			Send: func(ctx context.Context, topic string, pl Payload) error {
				return p.Prompt(ctx, topic, pl.Message)
			},
		})
	}
	return out
}
