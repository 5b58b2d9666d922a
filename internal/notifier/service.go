package notifier

import (
	"context"
	"sort"
	"sync"

	"minewatch/internal/event"
	"minewatch/internal/transport"
	logx "minewatch/pkg/logx"
)

// sinkName is what deliver reports when the log sink absorbed the message.
const sinkName = "log"

// Service selects, formats, and delivers important events. It implements
// hub.Listener and is registered on the wildcard key.
//
// It is safe for concurrent use.
type Service struct {
	mu sync.Mutex

	log        logx.Logger
	strategies []transport.Strategy

	enabled   bool
	topic     string
	important map[event.Kind]struct{}

	delivered uint64
	sunk      uint64
}

// New builds the service. strategies is the ranked list probed from the
// host channel; an empty list is legal and routes everything to the log
// sink.
func New(cfg Config, strategies []transport.Strategy, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		log:        log.With(logx.String("comp", "notifier")),
		strategies: strategies,
	}
	s.applyLocked(cfg)
	return s
}

// Reconfigure replaces the selection state (enabled, topic, importance
// set) wholesale. Strategies are fixed at construction.
func (s *Service) Reconfigure(cfg Config) {
	s.mu.Lock()
	s.applyLocked(cfg)
	s.mu.Unlock()
}

func (s *Service) applyLocked(cfg Config) {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	kinds := cfg.Important
	if kinds == nil {
		kinds = DefaultImportantKinds
	}
	set := make(map[event.Kind]struct{}, len(kinds))
	for _, k := range kinds {
		if k == "" {
			continue
		}
		set[event.Kind(k)] = struct{}{}
	}
	s.enabled = cfg.Enabled
	s.topic = cfg.Topic
	s.important = set
}

func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled switches between the two delivery states. There are no
// automatic transitions; only configuration and this call change it.
func (s *Service) SetEnabled(on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()
}

// AddImportant marks a kind as always notification-worthy.
func (s *Service) AddImportant(kind event.Kind) {
	if kind == "" {
		return
	}
	s.mu.Lock()
	s.important[kind] = struct{}{}
	s.mu.Unlock()
}

// RemoveImportant drops a kind from the set. Events of that kind still
// notify at error/warning severity.
func (s *Service) RemoveImportant(kind event.Kind) {
	s.mu.Lock()
	delete(s.important, kind)
	s.mu.Unlock()
}

// ImportantKinds returns the current set, sorted.
func (s *Service) ImportantKinds() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.important))
	for k := range s.important {
		out = append(out, string(k))
	}
	s.mu.Unlock()
	sort.Strings(out)
	return out
}

// Stats returns a point-in-time snapshot.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	imp := make([]string, 0, len(s.important))
	for k := range s.important {
		imp = append(imp, string(k))
	}
	sort.Strings(imp)
	return Stats{
		Enabled:   s.enabled,
		Topic:     s.topic,
		Important: imp,
		Delivered: s.delivered,
		Sunk:      s.sunk,
	}
}

// HandleEvent implements hub.Listener. It never returns an error: delivery
// failures are resolved internally by the fallback chain and the log sink.
func (s *Service) HandleEvent(ctx context.Context, ev event.Event) error {
	s.mu.Lock()
	enabled := s.enabled
	topic := s.topic
	strats := s.strategies
	_, kindImportant := s.important[ev.Kind]
	s.mu.Unlock()

	if !enabled {
		return nil
	}
	if !kindImportant && ev.Severity != event.SeverityError && ev.Severity != event.SeverityWarning {
		return nil
	}

	s.deliver(ctx, topic, Format(ev), ev, strats)
	return nil
}

// deliver walks the strategies in rank order and reports which mechanism
// accepted the message (sinkName when all else failed or none exist).
func (s *Service) deliver(ctx context.Context, topic, msg string, ev event.Event, strats []transport.Strategy) string {
	p := transport.NewPayload(msg, ev)
	for _, st := range strats {
		err := st.Send(ctx, topic, p)
		if err == nil {
			s.mu.Lock()
			s.delivered++
			s.mu.Unlock()
			s.log.Debug("notification delivered",
				logx.String("strategy", st.Name),
				logx.String("kind", string(ev.Kind)))
			return st.Name
		}
		s.log.Warn("notification strategy failed",
			logx.String("strategy", st.Name),
			logx.String("kind", string(ev.Kind)),
			logx.Err(err))
	}

	// Terminal sink: the formatted message lands in the local log.
	s.mu.Lock()
	s.sunk++
	s.mu.Unlock()
	s.log.Info(msg,
		logx.String("kind", string(ev.Kind)),
		logx.String("severity", string(ev.Severity)))
	return sinkName
}
