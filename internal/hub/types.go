package hub

import (
	"context"

	"minewatch/internal/event"
)

// Wildcard subscribes a listener to every kind. It is a subscription key
// only; events are never emitted with this kind.
const Wildcard = event.Kind("*")

// DefaultMaxHistory bounds the rolling event buffer unless configured.
const DefaultMaxHistory = 1000

// DefaultHistoryLimit is the page size History uses for limit <= 0.
const DefaultHistoryLimit = 100

// Listener receives accepted events. Calls are synchronous: the hub waits
// for HandleEvent to return before invoking the next listener, and the
// error (or a panic) is logged without affecting other listeners.
//
// A listener is identified by its interface value, so implementations must
// be comparable. Subscribing the same value to the same key twice is a
// no-op. Listeners may subscribe and unsubscribe from inside their own
// callback, but must not call Emit from it.
type Listener interface {
	HandleEvent(ctx context.Context, ev event.Event) error
}

// ListenerFunc wraps a plain function into a comparable Listener handle.
// Each call returns a distinct handle; keep it to unsubscribe later.
func ListenerFunc(fn func(ctx context.Context, ev event.Event) error) Listener {
	return &funcListener{fn: fn}
}

type funcListener struct {
	fn func(ctx context.Context, ev event.Event) error
}

func (l *funcListener) HandleEvent(ctx context.Context, ev event.Event) error {
	return l.fn(ctx, ev)
}

// Filter is an admission predicate. Filters run in registration order
// before any delivery; the first one returning false suppresses the event
// entirely (no history, no listeners). Filters must be side-effect-free.
type Filter interface {
	Allow(ev event.Event) bool
}

// FilterFunc wraps a predicate into a comparable Filter handle.
func FilterFunc(fn func(ev event.Event) bool) Filter {
	return &funcFilter{fn: fn}
}

type funcFilter struct {
	fn func(ev event.Event) bool
}

func (f *funcFilter) Allow(ev event.Event) bool { return f.fn(ev) }

// Config controls hub construction.
type Config struct {
	// MaxHistory bounds the rolling history buffer.
	// Default: DefaultMaxHistory.
	MaxHistory int
}

// Stats is a point-in-time snapshot for observability output.
type Stats struct {
	Listeners  int    `json:"listeners"`
	Wildcards  int    `json:"wildcards"`
	Filters    int    `json:"filters"`
	HistoryLen int    `json:"history_len"`
	HistoryMax int    `json:"history_max"`
	Emitted    uint64 `json:"emitted"`
	Suppressed uint64 `json:"suppressed"`
}
