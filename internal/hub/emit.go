package hub

import (
	"context"
	"runtime/debug"
	"time"

	"minewatch/internal/event"
	logx "minewatch/pkg/logx"
)

// Emit runs the admission filters and, on acceptance, appends ev to
// history and invokes kind listeners then wildcard listeners, in
// registration order, waiting for each. Listener errors and panics are
// logged and isolated; nothing about a failed delivery reaches the caller.
//
// Emissions are serialized on one hub: Emit does not return until every
// listener has run, and concurrent emitters queue on the emit lock.
// Listener callbacks must not call Emit (or Post) on the same hub.
func (h *Hub) Emit(ctx context.Context, ev event.Event) {
	h.emitMu.Lock()
	defer h.emitMu.Unlock()

	h.mu.Lock()
	filters := append([]Filter(nil), h.filters...)
	h.mu.Unlock()

	for _, f := range filters {
		if !h.allow(f, ev) {
			h.mu.Lock()
			h.suppressed++
			h.mu.Unlock()
			h.log.Debug("event suppressed by filter", logx.String("kind", string(ev.Kind)))
			return
		}
	}

	h.mu.Lock()
	h.hist = append(h.hist, ev)
	if over := len(h.hist) - h.maxHist; over > 0 {
		h.hist = append(h.hist[:0], h.hist[over:]...)
	}
	h.emitted++
	kindSnap := h.subs[ev.Kind].snapshot()
	wildSnap := h.wild.snapshot()
	h.mu.Unlock()

	for _, l := range kindSnap {
		h.deliver(ctx, l, ev)
	}
	for _, l := range wildSnap {
		h.deliver(ctx, l, ev)
	}
}

// Post stamps the current time, validates via event.New, and emits.
// Malformed combinations are logged and dropped instead of panicking; the
// pipeline never fails an emitter.
func (h *Hub) Post(ctx context.Context, kind event.Kind, sev event.Severity, description string, data event.Data) {
	ev, err := event.New(kind, sev, time.Now(), description, data)
	if err != nil {
		h.log.Warn("dropping malformed event", logx.String("kind", string(kind)), logx.Err(err))
		return
	}
	h.Emit(ctx, ev)
}

// allow evaluates one filter. A panicking filter is logged and treated as
// allowing the event; it never suppresses anything.
func (h *Hub) allow(f Filter, ev event.Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("filter panicked",
				logx.String("kind", string(ev.Kind)),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
			ok = true
		}
	}()
	return f.Allow(ev)
}

func (h *Hub) deliver(ctx context.Context, l Listener, ev event.Event) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("listener panicked",
				logx.String("kind", string(ev.Kind)),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()
	if err := l.HandleEvent(ctx, ev); err != nil {
		h.log.Error("listener failed", logx.String("kind", string(ev.Kind)), logx.Err(err))
	}
}
