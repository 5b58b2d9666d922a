package mcphost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"minewatch/internal/event"
	"minewatch/internal/hub"
	"minewatch/internal/notifier"
)

var errNotifierUnbound = errors.New("notifier not bound")

func (h *Host) registerTools() {
	mcp.AddTool(h.server, eventsRecentTool(), eventsRecentHandler(h))
	mcp.AddTool(h.server, eventsClearTool(), eventsClearHandler(h))
	mcp.AddTool(h.server, notifierSetTool(), notifierSetHandler(h))
	mcp.AddTool(h.server, importanceListTool(), importanceListHandler(h))
	mcp.AddTool(h.server, importanceAddTool(), importanceAddHandler(h))
	mcp.AddTool(h.server, importanceRemoveTool(), importanceRemoveHandler(h))
	mcp.AddTool(h.server, statusReportTool(), statusReportHandler(h))
}

// EventSummary is the tool-facing projection of one event.
type EventSummary struct {
	Kind        string `json:"kind" jsonschema:"event kind tag"`
	Severity    string `json:"severity" jsonschema:"info, warning, error or success"`
	Timestamp   string `json:"timestamp" jsonschema:"RFC3339 time of occurrence"`
	Description string `json:"description" jsonschema:"human-readable one-liner"`
	Data        any    `json:"data,omitempty" jsonschema:"kind-specific payload, when present"`
}

func summarize(ev event.Event) EventSummary {
	var data any
	if ev.Data != nil {
		data = ev.Data
	}
	return EventSummary{
		Kind:        string(ev.Kind),
		Severity:    string(ev.Severity),
		Timestamp:   ev.Timestamp.Format(time.RFC3339),
		Description: ev.Description,
		Data:        data,
	}
}

type EventsRecentInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"filter to one event kind; empty matches all"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum events to return (default 100)"`
}

type EventsRecentResult struct {
	Events []EventSummary `json:"events" jsonschema:"matching events, oldest first"`
	Count  int            `json:"count" jsonschema:"number of events returned"`
}

func eventsRecentTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "events_recent",
		Description: "Returns the most recent events from the rolling history, oldest first.",
	}
}

func eventsRecentHandler(h *Host) mcp.ToolHandlerFor[EventsRecentInput, EventsRecentResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, in EventsRecentInput) (*mcp.CallToolResult, EventsRecentResult, error) {
		events := h.hub.History(event.Kind(in.Kind), in.Limit)
		out := EventsRecentResult{
			Events: make([]EventSummary, 0, len(events)),
			Count:  len(events),
		}
		for _, ev := range events {
			out.Events = append(out.Events, summarize(ev))
		}
		return nil, out, nil
	}
}

type EventsClearResult struct {
	Cleared bool `json:"cleared" jsonschema:"true when the history buffer was emptied"`
}

func eventsClearTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "events_clear",
		Description: "Empties the rolling event history. Subscriptions are unaffected.",
	}
}

func eventsClearHandler(h *Host) mcp.ToolHandlerFor[struct{}, EventsClearResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, EventsClearResult, error) {
		h.hub.Clear()
		return nil, EventsClearResult{Cleared: true}, nil
	}
}

type NotifierSetInput struct {
	Enabled bool `json:"enabled" jsonschema:"true to deliver important events, false to drop them silently"`
}

type NotifierSetResult struct {
	Enabled bool `json:"enabled" jsonschema:"resulting notifier state"`
}

func notifierSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "notifier_set",
		Description: "Enables or disables outward notification delivery.",
	}
}

func notifierSetHandler(h *Host) mcp.ToolHandlerFor[NotifierSetInput, NotifierSetResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, in NotifierSetInput) (*mcp.CallToolResult, NotifierSetResult, error) {
		if h.notif == nil {
			return nil, NotifierSetResult{}, errNotifierUnbound
		}
		h.notif.SetEnabled(in.Enabled)
		return nil, NotifierSetResult{Enabled: h.notif.Enabled()}, nil
	}
}

type ImportanceResult struct {
	Kinds []string `json:"kinds" jsonschema:"the resulting importance set, sorted"`
}

func importanceListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "importance_list",
		Description: "Lists the event kinds currently marked important.",
	}
}

func importanceListHandler(h *Host) mcp.ToolHandlerFor[struct{}, ImportanceResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ImportanceResult, error) {
		if h.notif == nil {
			return nil, ImportanceResult{}, errNotifierUnbound
		}
		return nil, ImportanceResult{Kinds: h.notif.ImportantKinds()}, nil
	}
}

type ImportanceEditInput struct {
	Kind string `json:"kind" jsonschema:"event kind to mark or unmark as important"`
}

func importanceAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "importance_add",
		Description: "Marks an event kind as important so it is always notified.",
	}
}

func importanceAddHandler(h *Host) mcp.ToolHandlerFor[ImportanceEditInput, ImportanceResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, in ImportanceEditInput) (*mcp.CallToolResult, ImportanceResult, error) {
		if h.notif == nil {
			return nil, ImportanceResult{}, errNotifierUnbound
		}
		if in.Kind == "" {
			return nil, ImportanceResult{}, fmt.Errorf("kind is required")
		}
		h.notif.AddImportant(event.Kind(in.Kind))
		return nil, ImportanceResult{Kinds: h.notif.ImportantKinds()}, nil
	}
}

func importanceRemoveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "importance_remove",
		Description: "Removes an event kind from the importance set. Error and warning severity events still notify.",
	}
}

func importanceRemoveHandler(h *Host) mcp.ToolHandlerFor[ImportanceEditInput, ImportanceResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, in ImportanceEditInput) (*mcp.CallToolResult, ImportanceResult, error) {
		if h.notif == nil {
			return nil, ImportanceResult{}, errNotifierUnbound
		}
		if in.Kind == "" {
			return nil, ImportanceResult{}, fmt.Errorf("kind is required")
		}
		h.notif.RemoveImportant(event.Kind(in.Kind))
		return nil, ImportanceResult{Kinds: h.notif.ImportantKinds()}, nil
	}
}

type StatusReportResult struct {
	Hub      hub.Stats      `json:"hub" jsonschema:"dispatch hub counters"`
	Notifier notifier.Stats `json:"notifier" jsonschema:"notifier state and counters"`
}

func statusReportTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "status_report",
		Description: "Returns pipeline status: hub counters and notifier state.",
	}
}

func statusReportHandler(h *Host) mcp.ToolHandlerFor[struct{}, StatusReportResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, StatusReportResult, error) {
		if h.notif == nil {
			return nil, StatusReportResult{}, errNotifierUnbound
		}
		return nil, StatusReportResult{
			Hub:      h.hub.Stats(),
			Notifier: h.notif.Stats(),
		}, nil
	}
}
