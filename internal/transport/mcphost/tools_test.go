package mcphost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"minewatch/internal/event"
	"minewatch/internal/hub"
	"minewatch/internal/notifier"
	"minewatch/internal/transport"
	logx "minewatch/pkg/logx"
)

func newTestHost(t *testing.T) (*Host, *hub.Hub, *notifier.Service) {
	t.Helper()
	h := hub.New(hub.Config{MaxHistory: 100}, logx.Nop())
	host := New(Config{Enabled: true}, h, logx.Nop())
	n := notifier.New(notifier.Config{Enabled: true}, nil, logx.Nop())
	host.BindNotifier(n)
	return host, h, n
}

func seedEvents(t *testing.T, h *hub.Hub) {
	t.Helper()
	ctx := context.Background()
	h.Post(ctx, event.KindConnection, event.SeverityInfo, "Bot logged in",
		event.ConnectionData{Phase: event.PhaseLogin})
	h.Post(ctx, event.KindChat, event.SeverityInfo, "<alex> hello",
		event.ChatData{Username: "alex", Message: "hello"})
	h.Post(ctx, event.KindDeath, event.SeverityError, "Bot died", event.DeathData{})
}

func TestEventsRecent(t *testing.T) {
	t.Parallel()
	host, h, _ := newTestHost(t)
	seedEvents(t, h)
	handler := eventsRecentHandler(host)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, EventsRecentInput{})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.Count != 3 || len(out.Events) != 3 {
		t.Fatalf("Count = %d with %d events, want 3", out.Count, len(out.Events))
	}
	// Oldest first.
	if out.Events[0].Kind != "connection" || out.Events[2].Kind != "death" {
		t.Fatalf("order = [%s .. %s], want connection first, death last",
			out.Events[0].Kind, out.Events[2].Kind)
	}
	if _, perr := time.Parse(time.RFC3339, out.Events[0].Timestamp); perr != nil {
		t.Fatalf("Timestamp %q is not RFC3339: %v", out.Events[0].Timestamp, perr)
	}
	if _, ok := out.Events[1].Data.(event.ChatData); !ok {
		t.Fatalf("Data type = %T, want the chat payload", out.Events[1].Data)
	}
}

func TestEventsRecentFiltered(t *testing.T) {
	t.Parallel()
	host, h, _ := newTestHost(t)
	seedEvents(t, h)
	handler := eventsRecentHandler(host)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, EventsRecentInput{Kind: "chat"})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.Count != 1 || out.Events[0].Description != "<alex> hello" {
		t.Fatalf("filtered result = %+v, want just the chat event", out)
	}

	_, out, err = handler(context.Background(), &mcp.CallToolRequest{}, EventsRecentInput{Limit: 2})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.Count != 2 || out.Events[1].Kind != "death" {
		t.Fatalf("limited result = %+v, want the newest two events", out)
	}
}

func TestEventsClear(t *testing.T) {
	t.Parallel()
	host, h, _ := newTestHost(t)
	seedEvents(t, h)
	handler := eventsClearHandler(host)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, struct{}{})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !out.Cleared {
		t.Fatal("Cleared = false, want true")
	}
	if got := h.Stats().HistoryLen; got != 0 {
		t.Fatalf("HistoryLen = %d, want 0 after clear", got)
	}
}

func TestNotifierSet(t *testing.T) {
	t.Parallel()
	host, _, n := newTestHost(t)
	handler := notifierSetHandler(host)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, NotifierSetInput{Enabled: false})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.Enabled || n.Enabled() {
		t.Fatal("notifier still enabled after disable")
	}

	_, out, err = handler(context.Background(), &mcp.CallToolRequest{}, NotifierSetInput{Enabled: true})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if !out.Enabled || !n.Enabled() {
		t.Fatal("notifier still disabled after enable")
	}
}

func TestImportanceTools(t *testing.T) {
	t.Parallel()
	host, _, _ := newTestHost(t)

	_, listed, err := importanceListHandler(host)(context.Background(), &mcp.CallToolRequest{}, struct{}{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"connection", "death", "error"}
	if len(listed.Kinds) != len(want) {
		t.Fatalf("Kinds = %v, want %v", listed.Kinds, want)
	}

	_, added, err := importanceAddHandler(host)(context.Background(), &mcp.CallToolRequest{}, ImportanceEditInput{Kind: "chat"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(added.Kinds) != 4 || added.Kinds[0] != "chat" {
		t.Fatalf("Kinds after add = %v, want chat first in sorted set", added.Kinds)
	}

	_, removed, err := importanceRemoveHandler(host)(context.Background(), &mcp.CallToolRequest{}, ImportanceEditInput{Kind: "chat"})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(removed.Kinds) != 3 {
		t.Fatalf("Kinds after remove = %v, want %v", removed.Kinds, want)
	}
}

func TestImportanceEditRequiresKind(t *testing.T) {
	t.Parallel()
	host, _, _ := newTestHost(t)

	if _, _, err := importanceAddHandler(host)(context.Background(), &mcp.CallToolRequest{}, ImportanceEditInput{}); err == nil {
		t.Fatal("add accepted an empty kind")
	}
	if _, _, err := importanceRemoveHandler(host)(context.Background(), &mcp.CallToolRequest{}, ImportanceEditInput{}); err == nil {
		t.Fatal("remove accepted an empty kind")
	}
}

func TestStatusReport(t *testing.T) {
	t.Parallel()
	host, h, _ := newTestHost(t)
	seedEvents(t, h)

	_, out, err := statusReportHandler(host)(context.Background(), &mcp.CallToolRequest{}, struct{}{})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if out.Hub.Emitted != 3 || out.Hub.HistoryLen != 3 {
		t.Fatalf("Hub stats = %+v, want 3 emitted and recorded", out.Hub)
	}
	if !out.Notifier.Enabled || out.Notifier.Topic != notifier.DefaultTopic {
		t.Fatalf("Notifier stats = %+v, want enabled with the default topic", out.Notifier)
	}
}

func TestToolsRequireBoundNotifier(t *testing.T) {
	t.Parallel()
	h := hub.New(hub.Config{MaxHistory: 10}, logx.Nop())
	host := New(Config{Enabled: true}, h, logx.Nop())

	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	if _, _, err := notifierSetHandler(host)(ctx, req, NotifierSetInput{}); !errors.Is(err, errNotifierUnbound) {
		t.Fatalf("notifier_set err = %v, want errNotifierUnbound", err)
	}
	if _, _, err := importanceListHandler(host)(ctx, req, struct{}{}); !errors.Is(err, errNotifierUnbound) {
		t.Fatalf("importance_list err = %v, want errNotifierUnbound", err)
	}
	if _, _, err := importanceAddHandler(host)(ctx, req, ImportanceEditInput{Kind: "chat"}); !errors.Is(err, errNotifierUnbound) {
		t.Fatalf("importance_add err = %v, want errNotifierUnbound", err)
	}
	if _, _, err := statusReportHandler(host)(ctx, req, struct{}{}); !errors.Is(err, errNotifierUnbound) {
		t.Fatalf("status_report err = %v, want errNotifierUnbound", err)
	}

	// Query tools stay usable without a notifier.
	if _, _, err := eventsRecentHandler(host)(ctx, req, EventsRecentInput{}); err != nil {
		t.Fatalf("events_recent err = %v, want nil", err)
	}
}

func TestChannelCapabilities(t *testing.T) {
	t.Parallel()
	h := hub.New(hub.Config{}, logx.Nop())

	plain := New(Config{Enabled: true}, h, logx.Nop())
	names := strategyNames(transport.Probe(plain.Channel()))
	if len(names) != 1 || names[0] != "send-notification" {
		t.Fatalf("default capabilities = %v, want [send-notification]", names)
	}

	prompting := New(Config{Enabled: true, EnablePrompt: true}, h, logx.Nop())
	names = strategyNames(transport.Probe(prompting.Channel()))
	if len(names) != 2 || names[0] != "send-notification" || names[1] != "prompt" {
		t.Fatalf("prompt capabilities = %v, want [send-notification prompt]", names)
	}
}

func strategyNames(strategies []transport.Strategy) []string {
	out := make([]string, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, s.Name)
	}
	return out
}

func TestNewDefaultsInstructions(t *testing.T) {
	t.Parallel()
	h := hub.New(hub.Config{}, logx.Nop())

	host := New(Config{Enabled: true}, h, logx.Nop())
	if host.cfg.Instructions == "" {
		t.Fatal("Instructions not defaulted")
	}

	custom := New(Config{Enabled: true, Instructions: "custom text"}, h, logx.Nop())
	if custom.cfg.Instructions != "custom text" {
		t.Fatalf("Instructions = %q, want the configured text", custom.cfg.Instructions)
	}
}
