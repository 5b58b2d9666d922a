package notifier

import (
	"context"
	"errors"
	"testing"

	"minewatch/internal/event"
	"minewatch/internal/transport"
	logx "minewatch/pkg/logx"
)

func okStrategy(name string, calls *[]string) transport.Strategy {
	return transport.Strategy{Name: name, Send: func(context.Context, string, transport.Payload) error {
		*calls = append(*calls, name)
		return nil
	}}
}

func failStrategy(name string, calls *[]string) transport.Strategy {
	return transport.Strategy{Name: name, Send: func(context.Context, string, transport.Payload) error {
		*calls = append(*calls, name)
		return errors.New(name + " unavailable")
	}}
}

func TestHandleEventSelection(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		enabled  bool
		kind     event.Kind
		sev      event.Severity
		data     event.Data
		wantSent bool
	}{
		{"disabled drops errors", false, event.KindError, event.SeverityError,
			event.ErrorData{Code: "EPIPE", Message: "broken pipe"}, false},
		{"unimportant info dropped", true, event.KindMovement, event.SeverityInfo,
			event.MovementData{}, false},
		{"unimportant warning delivered", true, event.KindDamage, event.SeverityWarning,
			event.HealthData{Health: 5, MaxHealth: 20}, true},
		{"unimportant error delivered", true, event.KindGameState, event.SeverityError,
			nil, true},
		{"important info delivered", true, event.KindConnection, event.SeverityInfo,
			event.ConnectionData{Phase: event.PhaseLogin}, true},
		{"important success delivered", true, event.KindDeath, event.SeveritySuccess,
			event.DeathData{}, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			s := New(Config{Enabled: tt.enabled},
				[]transport.Strategy{okStrategy("notify", &calls)}, logx.Nop())

			ev := mustEvent(t, tt.kind, tt.sev, "probe", tt.data)
			if err := s.HandleEvent(context.Background(), ev); err != nil {
				t.Fatalf("HandleEvent returned %v", err)
			}
			if sent := len(calls) > 0; sent != tt.wantSent {
				t.Fatalf("sent = %v, want %v", sent, tt.wantSent)
			}
		})
	}
}

func TestDeliverFallbackChain(t *testing.T) {
	t.Parallel()
	ev := mustEvent(t, event.KindDeath, event.SeverityError, "Bot died", event.DeathData{})

	t.Run("first strategy wins", func(t *testing.T) {
		var calls []string
		s := New(Config{Enabled: true}, nil, logx.Nop())
		strats := []transport.Strategy{okStrategy("notify", &calls), okStrategy("prompt", &calls)}

		got := s.deliver(context.Background(), "t", "msg", ev, strats)
		if got != "notify" {
			t.Fatalf("deliver = %q, want notify", got)
		}
		if len(calls) != 1 {
			t.Fatalf("calls = %v, want only the first strategy", calls)
		}
		if st := s.Stats(); st.Delivered != 1 || st.Sunk != 0 {
			t.Fatalf("Stats = %+v, want delivered=1 sunk=0", st)
		}
	})

	t.Run("failure falls through in rank order", func(t *testing.T) {
		var calls []string
		s := New(Config{Enabled: true}, nil, logx.Nop())
		strats := []transport.Strategy{
			failStrategy("notify", &calls),
			failStrategy("send-notification", &calls),
			okStrategy("prompt", &calls),
		}

		got := s.deliver(context.Background(), "t", "msg", ev, strats)
		if got != "prompt" {
			t.Fatalf("deliver = %q, want prompt", got)
		}
		want := []string{"notify", "send-notification", "prompt"}
		for i := range want {
			if calls[i] != want[i] {
				t.Fatalf("calls = %v, want %v", calls, want)
			}
		}
	})

	t.Run("exhausted chain sinks to log", func(t *testing.T) {
		var calls []string
		s := New(Config{Enabled: true}, nil, logx.Nop())
		strats := []transport.Strategy{failStrategy("notify", &calls)}

		if got := s.deliver(context.Background(), "t", "msg", ev, strats); got != sinkName {
			t.Fatalf("deliver = %q, want %q", got, sinkName)
		}
		if st := s.Stats(); st.Delivered != 0 || st.Sunk != 1 {
			t.Fatalf("Stats = %+v, want delivered=0 sunk=1", st)
		}
	})

	t.Run("no strategies sinks to log", func(t *testing.T) {
		s := New(Config{Enabled: true}, nil, logx.Nop())
		if got := s.deliver(context.Background(), "t", "msg", ev, nil); got != sinkName {
			t.Fatalf("deliver = %q, want %q", got, sinkName)
		}
	})
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true}, nil, logx.Nop())

	st := s.Stats()
	if st.Topic != DefaultTopic {
		t.Fatalf("Topic = %q, want %q", st.Topic, DefaultTopic)
	}
	want := []string{"connection", "death", "error"}
	if len(st.Important) != len(want) {
		t.Fatalf("Important = %v, want %v", st.Important, want)
	}
	for i := range want {
		if st.Important[i] != want[i] {
			t.Fatalf("Important = %v, want %v", st.Important, want)
		}
	}
}

func TestReconfigure(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true}, nil, logx.Nop())

	s.Reconfigure(Config{Enabled: false, Topic: "ops/alerts", Important: []string{"death"}})

	st := s.Stats()
	if st.Enabled || st.Topic != "ops/alerts" {
		t.Fatalf("Stats = %+v, want disabled with topic ops/alerts", st)
	}
	if len(st.Important) != 1 || st.Important[0] != "death" {
		t.Fatalf("Important = %v, want [death]", st.Important)
	}

	// An explicitly empty set is honored; only a nil slice means defaults.
	s.Reconfigure(Config{Enabled: true, Important: []string{}})
	if got := s.ImportantKinds(); len(got) != 0 {
		t.Fatalf("ImportantKinds = %v, want empty", got)
	}
}

func TestImportanceEdits(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: true, Important: []string{"death"}}, nil, logx.Nop())

	s.AddImportant(event.KindChat)
	s.AddImportant(event.KindChat) // idempotent
	s.AddImportant("")             // ignored

	got := s.ImportantKinds()
	want := []string{"chat", "death"}
	if len(got) != len(want) {
		t.Fatalf("ImportantKinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ImportantKinds = %v, want %v (sorted)", got, want)
		}
	}

	s.RemoveImportant(event.KindChat)
	s.RemoveImportant(event.KindChat) // second removal is a no-op
	if got := s.ImportantKinds(); len(got) != 1 || got[0] != "death" {
		t.Fatalf("ImportantKinds = %v, want [death]", got)
	}
}

func TestSetEnabled(t *testing.T) {
	t.Parallel()
	s := New(Config{Enabled: false}, nil, logx.Nop())
	if s.Enabled() {
		t.Fatal("Enabled = true, want false")
	}
	s.SetEnabled(true)
	if !s.Enabled() {
		t.Fatal("Enabled = false, want true after SetEnabled")
	}
}

func TestImportanceGateEndToEnd(t *testing.T) {
	t.Parallel()
	var calls []string
	s := New(Config{Enabled: true}, []transport.Strategy{okStrategy("notify", &calls)}, logx.Nop())

	info := mustEvent(t, event.KindMovement, event.SeverityInfo, "Moved to (1, 0, 0)",
		event.MovementData{Position: event.Position{X: 1}})
	if err := s.HandleEvent(context.Background(), info); err != nil {
		t.Fatalf("HandleEvent returned %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("calls = %v, want none before the kind is important", calls)
	}

	s.AddImportant(event.KindMovement)
	if err := s.HandleEvent(context.Background(), info); err != nil {
		t.Fatalf("HandleEvent returned %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("calls = %v, want one delivery after AddImportant", calls)
	}
}
