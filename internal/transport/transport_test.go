package transport

import (
	"context"
	"testing"
	"time"

	"minewatch/internal/event"
)

// fullHost implements every capability and records which one ran.
type fullHost struct {
	calls []string
}

func (h *fullHost) Notify(_ context.Context, _ string, _ Payload) error {
	h.calls = append(h.calls, "notify")
	return nil
}

func (h *fullHost) SendNotification(_ context.Context, _ string, _ Payload) error {
	h.calls = append(h.calls, "send-notification")
	return nil
}

func (h *fullHost) Prompt(_ context.Context, _, _ string) error {
	h.calls = append(h.calls, "prompt")
	return nil
}

type senderHost struct {
	topic string
	got   []Payload
}

func (h *senderHost) SendNotification(_ context.Context, topic string, p Payload) error {
	h.topic = topic
	h.got = append(h.got, p)
	return nil
}

type prompterHost struct {
	topic   string
	message string
}

func (h *prompterHost) Prompt(_ context.Context, topic, message string) error {
	h.topic = topic
	h.message = message
	return nil
}

func strategyNames(strategies []Strategy) []string {
	out := make([]string, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, s.Name)
	}
	return out
}

func TestProbeRanking(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		host any
		want []string
	}{
		{"all capabilities", &fullHost{}, []string{"notify", "send-notification", "prompt"}},
		{"sender only", &senderHost{}, []string{"send-notification"}},
		{"prompter only", &prompterHost{}, []string{"prompt"}},
		{"no capabilities", struct{}{}, nil},
		{"nil host", nil, nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := strategyNames(Probe(tt.host))
			if len(got) != len(tt.want) {
				t.Fatalf("Probe = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Probe = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestProbeDispatch(t *testing.T) {
	t.Parallel()
	host := &fullHost{}
	strategies := Probe(host)
	if len(strategies) != 3 {
		t.Fatalf("Probe returned %d strategies, want 3", len(strategies))
	}

	for _, s := range strategies {
		if err := s.Send(context.Background(), "alerts", Payload{Message: "hi"}); err != nil {
			t.Fatalf("%s: Send returned %v", s.Name, err)
		}
	}
	want := []string{"notify", "send-notification", "prompt"}
	for i, call := range host.calls {
		if call != want[i] {
			t.Fatalf("calls = %v, want %v", host.calls, want)
		}
	}
}

func TestProbePromptAdapter(t *testing.T) {
	t.Parallel()
	host := &prompterHost{}
	strategies := Probe(host)
	if len(strategies) != 1 {
		t.Fatalf("Probe returned %d strategies, want 1", len(strategies))
	}

	p := Payload{Message: "⚠️ Bot disconnected"}
	if err := strategies[0].Send(context.Background(), "alerts", p); err != nil {
		t.Fatalf("Send returned %v", err)
	}
	if host.topic != "alerts" || host.message != p.Message {
		t.Fatalf("prompt received (%q, %q), want (alerts, %q)", host.topic, host.message, p.Message)
	}
}

func TestNewPayload(t *testing.T) {
	t.Parallel()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ev, err := event.New(event.KindDeath, event.SeverityError, ts, "Bot died",
		event.DeathData{Position: &event.Position{X: 1, Y: 2, Z: 3}})
	if err != nil {
		t.Fatalf("event.New: %v", err)
	}

	p := NewPayload("🚨 Bot died", ev)
	if p.Message != "🚨 Bot died" {
		t.Fatalf("Message = %q, want the formatted text", p.Message)
	}
	if p.Event.Kind != "death" || p.Event.Severity != "error" || !p.Event.Timestamp.Equal(ts) {
		t.Fatalf("Envelope = %+v, want kind=death severity=error ts=%v", p.Event, ts)
	}
	data, ok := p.Event.Data.(event.DeathData)
	if !ok {
		t.Fatalf("Data type = %T, want DeathData", p.Event.Data)
	}
	if data.Position == nil || *data.Position != (event.Position{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("Data = %+v, want the original payload", data)
	}
}

func TestNewPayloadWithoutData(t *testing.T) {
	t.Parallel()
	ev, err := event.New(event.KindConnection, event.SeverityInfo, time.Now(), "Bot logged in", nil)
	if err != nil {
		t.Fatalf("event.New: %v", err)
	}
	if p := NewPayload("✅ Bot logged in", ev); p.Event.Data != nil {
		t.Fatalf("Data = %v, want nil when the event carries none", p.Event.Data)
	}
}
