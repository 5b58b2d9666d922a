package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"minewatch/internal/event"
	"minewatch/internal/hub"
	logx "minewatch/pkg/logx"
)

func New(cfg Config, h *hub.Hub, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg: cfg,
		log: log.With(logx.String("comp", "report")),
		hub: h,
	}
}

// Enabled reports the current config flag. (Thread-safe; Apply may run concurrently.)
func (s *Service) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Enabled
}

// Start begins digest firing. The first digest window opens now; events
// already in history are not counted.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.ctx = ctx
	s.mark = time.Now()
	s.startLocked()
}

// Stop halts digest firing and waits for an in-flight digest to finish.
func (s *Service) Stop(ctx context.Context) {
	start := time.Now()
	s.log.Info("stop requested")

	s.mu.Lock()
	c := s.c
	s.c = nil
	s.ctx = nil
	s.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			// best-effort
		}
	}
	s.log.Info("service stopped", logx.Duration("took", time.Since(start)))
}

// Apply swaps the config and, when the schedule or timezone changed while
// running, restarts the cron entry.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	changed := cfg.Schedule != s.cfg.Schedule || cfg.Timezone != s.cfg.Timezone
	s.cfg = cfg
	c := s.c
	if c == nil || !changed {
		s.mu.Unlock()
		return
	}
	s.c = nil
	s.mu.Unlock()

	// Wait outside the lock: an in-flight digest needs it to finish.
	<-c.Stop().Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		// Stopped while draining.
		return
	}
	s.startLocked()
}

// startLocked resolves the schedule and location and starts cron.
// Call with s.mu held and s.c nil.
func (s *Service) startLocked() {
	spec := strings.TrimSpace(s.cfg.Schedule)
	if spec == "" {
		spec = DefaultSchedule
	}
	normalized, err := ParseSchedule(spec)
	if err != nil {
		s.log.Error("invalid digest schedule; using default", logx.String("schedule", spec), logx.Err(err))
		normalized = DefaultSchedule
	}

	loc := s.loadLocationLocked()
	s.loc = loc
	s.c = cron.New(cron.WithParser(specParser), cron.WithLocation(loc))
	if _, err := s.c.AddFunc(normalized, s.digest); err != nil {
		s.log.Error("digest schedule register failed", logx.String("spec", normalized), logx.Err(err))
	}
	s.c.Start()
	s.log.Info("service started", logx.String("spec", normalized), logx.String("tz", loc.String()))
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone; falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

// digest counts history recorded since the previous firing and posts one
// status event. Idle windows post nothing.
func (s *Service) digest() {
	s.mu.Lock()
	ctx := s.ctx
	since := s.mark
	s.mark = time.Now()
	s.mu.Unlock()
	if ctx == nil {
		return
	}

	depth := s.hub.Stats().HistoryMax
	counts := map[event.Kind]int{}
	total := 0
	for _, ev := range s.hub.History(hub.Wildcard, depth) {
		if !ev.Timestamp.After(since) {
			continue
		}
		// Digests never count earlier digests.
		if ev.Kind == event.KindStatus {
			continue
		}
		counts[ev.Kind]++
		total++
	}
	if total == 0 {
		s.log.Debug("digest skipped, no activity", logx.Time("since", since))
		return
	}

	desc := fmt.Sprintf("Digest: %d events since %s", total, since.Local().Format("15:04:05"))
	s.hub.Post(ctx, event.KindStatus, event.SeverityInfo, desc, event.StatusData{Total: total, Counts: counts})
	s.log.Info("digest posted", logx.Int("events", total), logx.Int("kinds", len(counts)))
}
