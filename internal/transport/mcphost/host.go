// Package mcphost is the shipped outward channel: an MCP server over
// stdio. Connected clients get the pipeline's query surface as tools, and
// the host doubles as the probed notification channel.
//
// Capability split on purpose: the host implements SendNotification
// (session log messages) and, when enabled, Prompt (a sampling request),
// but not the preferred Notify mechanism. The notifier's probing must
// cope with whatever subset a host offers; this host is such a subset.
package mcphost

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"minewatch/internal/hub"
	"minewatch/internal/notifier"
	logx "minewatch/pkg/logx"
)

const (
	serverName    = "minewatch"
	serverVersion = "1.0.0"
)

const defaultInstructions = "Live event feed from a Minecraft world agent. " +
	"Query recent events with events_recent, tune what gets pushed with the " +
	"importance_* and notifier_set tools."

type Config struct {
	Enabled bool
	// Instructions are shown to connecting clients.
	// Default: a short description of the tool surface.
	Instructions string
	// EnablePrompt adds the sampling-based prompt capability. Off by
	// default: not every client supports sampling, and a failed prompt
	// still falls through to the log sink.
	EnablePrompt bool
}

// Host owns the MCP server and the pipeline handles its tools act on.
type Host struct {
	cfg    Config
	log    logx.Logger
	hub    *hub.Hub
	notif  *notifier.Service
	server *mcp.Server
}

func New(cfg Config, h *hub.Hub, log logx.Logger) *Host {
	if cfg.Instructions == "" {
		cfg.Instructions = defaultInstructions
	}
	host := &Host{
		cfg: cfg,
		log: log.With(logx.String("comp", "mcphost")),
		hub: h,
	}
	host.server = mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: serverVersion},
		&mcp.ServerOptions{Instructions: cfg.Instructions},
	)
	host.registerTools()
	return host
}

// BindNotifier hands the host the notifier its tools act on. The host is
// built before the notifier (the notifier probes Channel for transport
// capabilities), so binding happens as a second wiring step. Call before
// Serve; notifier tools report an error until bound.
func (h *Host) BindNotifier(n *notifier.Service) { h.notif = n }

func (h *Host) Enabled() bool { return h.cfg.Enabled }

// Serve runs the server on stdio until ctx ends. Cancellation is a clean
// stop, not an error.
func (h *Host) Serve(ctx context.Context) error {
	h.log.Info("mcp server starting", logx.String("transport", "stdio"))
	err := h.server.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return err
	}
	h.log.Info("mcp server stopped")
	return nil
}

// Channel returns the value the notifier probes for capabilities. The
// prompt capability only appears when configured, so the probed subset
// matches what the host will actually honor.
func (h *Host) Channel() any {
	if h.cfg.EnablePrompt {
		return h
	}
	return &senderOnly{h: h}
}
