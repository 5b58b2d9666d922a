package hub

import (
	"minewatch/internal/event"
	logx "minewatch/pkg/logx"
)

// History returns the most recent matching events in chronological order.
// An empty kind (or Wildcard) matches everything. limit <= 0 means
// DefaultHistoryLimit. The buffer itself is never mutated by queries.
func (h *Hub) History(kind event.Kind, limit int) []event.Event {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	all := kind == "" || kind == Wildcard
	out := make([]event.Event, 0, min(limit, len(h.hist)))
	for i := len(h.hist) - 1; i >= 0 && len(out) < limit; i-- {
		if all || h.hist[i].Kind == kind {
			out = append(out, h.hist[i])
		}
	}
	// Collected newest-first; flip back to insertion order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Clear empties the history buffer. Registrations are untouched.
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hist = nil
}

// SetMaxHistory rebounds the buffer, evicting oldest entries when
// shrinking. Values below 1 are rejected with a warning and keep the
// previous bound.
func (h *Hub) SetMaxHistory(n int) {
	if n < 1 {
		h.log.Warn("invalid history size ignored", logx.Int("size", n))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxHist = n
	if over := len(h.hist) - n; over > 0 {
		h.hist = append(h.hist[:0], h.hist[over:]...)
	}
}
