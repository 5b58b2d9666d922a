package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"minewatch/internal/event"
	"minewatch/internal/hub"
	logx "minewatch/pkg/logx"
)

func newTestService(t *testing.T, cfg Config) (*Service, *hub.Hub) {
	t.Helper()
	h := hub.New(hub.Config{MaxHistory: 100}, logx.Nop())
	return New(cfg, h, logx.Nop()), h
}

func TestDigestPostsStatus(t *testing.T) {
	t.Parallel()
	s, h := newTestService(t, Config{Enabled: true})
	ctx := context.Background()

	s.ctx = ctx
	s.mark = time.Now().Add(-time.Minute)

	h.Post(ctx, event.KindChat, event.SeverityInfo, "<alex> one", event.ChatData{Username: "alex", Message: "one"})
	h.Post(ctx, event.KindChat, event.SeverityInfo, "<alex> two", event.ChatData{Username: "alex", Message: "two"})
	h.Post(ctx, event.KindDeath, event.SeverityError, "Bot died", event.DeathData{})

	s.digest()

	got := h.History(event.KindStatus, 0)
	if len(got) != 1 {
		t.Fatalf("status events = %d, want 1", len(got))
	}
	if !strings.HasPrefix(got[0].Description, "Digest: 3 events since ") {
		t.Fatalf("Description = %q, want a 3-event digest line", got[0].Description)
	}
	data, ok := got[0].Data.(event.StatusData)
	if !ok {
		t.Fatalf("payload type = %T, want StatusData", got[0].Data)
	}
	if data.Total != 3 || data.Counts[event.KindChat] != 2 || data.Counts[event.KindDeath] != 1 {
		t.Fatalf("payload = %+v, want total=3 chat=2 death=1", data)
	}
}

func TestDigestSkipsIdleWindow(t *testing.T) {
	t.Parallel()
	s, h := newTestService(t, Config{Enabled: true})
	ctx := context.Background()

	h.Post(ctx, event.KindChat, event.SeverityInfo, "<alex> old", event.ChatData{Username: "alex", Message: "old"})

	// The window opens after the only event; nothing to report.
	s.ctx = ctx
	s.mark = time.Now()
	s.digest()

	if n := len(h.History(event.KindStatus, 0)); n != 0 {
		t.Fatalf("status events = %d, want 0 for an idle window", n)
	}
}

func TestDigestExcludesStatusEvents(t *testing.T) {
	t.Parallel()
	s, h := newTestService(t, Config{Enabled: true})
	ctx := context.Background()

	s.ctx = ctx
	s.mark = time.Now().Add(-time.Minute)

	h.Post(ctx, event.KindStatus, event.SeverityInfo, "Digest: 9 events since 12:00:00", event.StatusData{Total: 9})
	h.Post(ctx, event.KindChat, event.SeverityInfo, "<alex> hi", event.ChatData{Username: "alex", Message: "hi"})

	s.digest()

	got := h.History(event.KindStatus, 0)
	if len(got) != 2 {
		t.Fatalf("status events = %d, want the seeded one plus the new digest", len(got))
	}
	data := got[1].Data.(event.StatusData)
	if data.Total != 1 || data.Counts[event.KindStatus] != 0 {
		t.Fatalf("payload = %+v, want total=1 with no status counted", data)
	}
}

func TestDigestAdvancesWindow(t *testing.T) {
	t.Parallel()
	s, h := newTestService(t, Config{Enabled: true})
	ctx := context.Background()

	s.ctx = ctx
	s.mark = time.Now().Add(-time.Minute)
	h.Post(ctx, event.KindChat, event.SeverityInfo, "<alex> hi", event.ChatData{Username: "alex", Message: "hi"})

	s.digest()
	// The second window holds only the first digest, which is excluded.
	s.digest()

	if n := len(h.History(event.KindStatus, 0)); n != 1 {
		t.Fatalf("status events = %d, want 1 after an idle second window", n)
	}
}

func TestDigestAfterStop(t *testing.T) {
	t.Parallel()
	s, h := newTestService(t, Config{Enabled: true})
	ctx := context.Background()

	h.Post(ctx, event.KindChat, event.SeverityInfo, "<alex> hi", event.ChatData{Username: "alex", Message: "hi"})
	s.mark = time.Now().Add(-time.Minute)
	// ctx stays nil, as after Stop.
	s.digest()

	if n := len(h.History(event.KindStatus, 0)); n != 0 {
		t.Fatalf("status events = %d, want 0 from a stopped service", n)
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t, Config{Enabled: true, Schedule: "@hourly"})

	s.Start(context.Background())
	s.mu.Lock()
	running := s.c != nil
	s.mu.Unlock()
	if !running {
		t.Fatal("Start did not create the cron runner")
	}
	s.Start(context.Background()) // second Start is a no-op

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Stop(stopCtx)

	s.mu.Lock()
	stopped := s.c == nil && s.ctx == nil
	s.mu.Unlock()
	if !stopped {
		t.Fatal("Stop left runner state behind")
	}
	s.Stop(stopCtx) // second Stop is a no-op
}

func TestStartFallsBackOnBadConfig(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t, Config{Enabled: true, Schedule: "definitely not a schedule", Timezone: "Mars/Olympus"})

	s.Start(context.Background())
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()

	s.mu.Lock()
	running := s.c != nil
	loc := s.loc
	s.mu.Unlock()
	if !running {
		t.Fatal("service did not start on the default schedule")
	}
	if loc != time.Local {
		t.Fatalf("location = %v, want Local fallback", loc)
	}
}

func TestApply(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t, Config{Enabled: true, Schedule: "@hourly"})

	s.Start(context.Background())
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.Stop(stopCtx)
	}()

	s.mu.Lock()
	before := s.c
	s.mu.Unlock()

	// Same schedule and timezone; the runner must not restart.
	s.Apply(Config{Enabled: true, Schedule: "@hourly"})
	s.mu.Lock()
	unchanged := s.c == before
	s.mu.Unlock()
	if !unchanged {
		t.Fatal("Apply restarted the runner without a schedule change")
	}

	s.Apply(Config{Enabled: true, Schedule: "@daily"})
	s.mu.Lock()
	after := s.c
	s.mu.Unlock()
	if after == nil || after == before {
		t.Fatal("Apply did not restart the runner on a schedule change")
	}
}

func TestApplyWhileStopped(t *testing.T) {
	t.Parallel()
	s, _ := newTestService(t, Config{Enabled: true, Schedule: "@hourly"})

	s.Apply(Config{Enabled: true, Schedule: "@daily"})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		t.Fatal("Apply started a runner on a stopped service")
	}
	if s.cfg.Schedule != "@daily" {
		t.Fatalf("Schedule = %q, want the applied value", s.cfg.Schedule)
	}
}
