// Package hub is the sole routing authority between event producers and
// consumers: per-kind listener sets plus one wildcard set, an ordered
// admission filter chain, and a bounded rolling history.
//
// Emissions are serialized. All fan-out for one event completes before the
// next emission proceeds, which preserves causal order for consumers.
package hub

import (
	"sync"

	"minewatch/internal/event"
	logx "minewatch/pkg/logx"
)

// Hub routes events. The zero value is not usable; construct with New.
type Hub struct {
	log logx.Logger

	// emitMu serializes whole emissions (filter pass + history + fan-out).
	// mu guards the registries and history and is never held across a
	// listener or filter call.
	emitMu sync.Mutex
	mu     sync.Mutex

	subs    map[event.Kind]*listenerSet
	wild    *listenerSet
	filters []Filter

	hist    []event.Event
	maxHist int

	emitted    uint64
	suppressed uint64
}

type listenerSet struct {
	order []Listener
	seen  map[Listener]struct{}
}

func newListenerSet() *listenerSet {
	return &listenerSet{seen: map[Listener]struct{}{}}
}

func (s *listenerSet) add(l Listener) bool {
	if _, dup := s.seen[l]; dup {
		return false
	}
	s.seen[l] = struct{}{}
	s.order = append(s.order, l)
	return true
}

func (s *listenerSet) remove(l Listener) bool {
	if _, ok := s.seen[l]; !ok {
		return false
	}
	delete(s.seen, l)
	for i, cur := range s.order {
		if cur == l {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// snapshot copies the insertion-ordered listeners so fan-out never holds
// the registry lock and mid-delivery (un)subscribes cannot corrupt it.
func (s *listenerSet) snapshot() []Listener {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	return append([]Listener(nil), s.order...)
}

func (s *listenerSet) len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// New builds an empty hub.
func New(cfg Config, log logx.Logger) *Hub {
	maxHist := cfg.MaxHistory
	if maxHist < 1 {
		maxHist = DefaultMaxHistory
	}
	return &Hub{
		log:     log.With(logx.String("comp", "hub")),
		subs:    map[event.Kind]*listenerSet{},
		wild:    newListenerSet(),
		maxHist: maxHist,
	}
}

// Subscribe registers l for the given kind (or Wildcard for all kinds).
// Re-adding the same listener value to the same key is a no-op.
func (h *Hub) Subscribe(kind event.Kind, l Listener) {
	if l == nil {
		return
	}
	if kind == "" {
		h.log.Warn("subscribe with empty kind ignored")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if kind == Wildcard {
		h.wild.add(l)
		return
	}
	set := h.subs[kind]
	if set == nil {
		set = newListenerSet()
		h.subs[kind] = set
	}
	set.add(l)
}

// Unsubscribe removes a registration. Removing a listener that was never
// added (or was already removed) is a no-op.
func (h *Hub) Unsubscribe(kind event.Kind, l Listener) {
	if l == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if kind == Wildcard {
		h.wild.remove(l)
		return
	}
	if set := h.subs[kind]; set != nil {
		if set.remove(l) && set.len() == 0 {
			delete(h.subs, kind)
		}
	}
}

// RemoveAllListeners drops every per-kind and wildcard registration.
// Filters and history are untouched; this is the teardown half of the
// query interface, used on shutdown.
func (h *Hub) RemoveAllListeners() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = map[event.Kind]*listenerSet{}
	h.wild = newListenerSet()
}

// AddFilter appends f to the admission chain. Filters run in registration
// order; duplicates are ignored.
func (h *Hub) AddFilter(f Filter) {
	if f == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, cur := range h.filters {
		if cur == f {
			return
		}
	}
	h.filters = append(h.filters, f)
}

// RemoveFilter removes f from the chain; unknown filters are a no-op.
func (h *Hub) RemoveFilter(f Filter) {
	if f == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, cur := range h.filters {
		if cur == f {
			h.filters = append(h.filters[:i], h.filters[i+1:]...)
			return
		}
	}
}

// ListenerCount reports registrations for one kind (or Wildcard).
func (h *Hub) ListenerCount(kind event.Kind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if kind == Wildcard {
		return h.wild.len()
	}
	return h.subs[kind].len()
}

// Stats returns a point-in-time snapshot.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.subs {
		n += set.len()
	}
	return Stats{
		Listeners:  n,
		Wildcards:  h.wild.len(),
		Filters:    len(h.filters),
		HistoryLen: len(h.hist),
		HistoryMax: h.maxHist,
		Emitted:    h.emitted,
		Suppressed: h.suppressed,
	}
}
