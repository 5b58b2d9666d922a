package mcphost

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"minewatch/internal/transport"
	logx "minewatch/pkg/logx"
)

// ErrNoSessions reports that no MCP client is connected to receive the
// delivery. The notifier treats it like any other strategy failure and
// falls through.
var ErrNoSessions = fmt.Errorf("mcphost: no connected sessions")

// SendNotification implements transport.NotificationSender by fanning a
// log message out to every connected session. Delivery counts as success
// if at least one session accepted it.
func (h *Host) SendNotification(ctx context.Context, topic string, p transport.Payload) error {
	sent := 0
	var lastErr error
	for session := range h.server.Sessions() {
		params := &mcp.LoggingMessageParams{Logger: topic, Data: p}
		switch p.Event.Severity {
		case "error":
			params.Level = "error"
		case "warning":
			params.Level = "warning"
		default:
			params.Level = "info"
		}
		if err := session.Log(ctx, params); err != nil {
			lastErr = err
			continue
		}
		sent++
	}
	if sent == 0 {
		if lastErr != nil {
			return fmt.Errorf("log to sessions: %w", lastErr)
		}
		return ErrNoSessions
	}
	h.log.Debug("notification sent", logx.String("topic", topic), logx.Int("sessions", sent))
	return nil
}

// Prompt implements transport.Prompter with a sampling request: the
// message is put in front of the host AI as a user turn. First session to
// accept wins.
func (h *Host) Prompt(ctx context.Context, topic, message string) error {
	var lastErr error
	for session := range h.server.Sessions() {
		_, err := session.CreateMessage(ctx, &mcp.CreateMessageParams{
			Messages: []*mcp.SamplingMessage{{
				Role:    "user",
				Content: &mcp.TextContent{Text: "[" + topic + "] " + message},
			}},
			MaxTokens: 256,
		})
		if err == nil {
			h.log.Debug("prompt accepted", logx.String("topic", topic))
			return nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return fmt.Errorf("create message: %w", lastErr)
	}
	return ErrNoSessions
}

// senderOnly is the probed value when prompting is disabled: it exposes
// SendNotification and nothing else.
type senderOnly struct {
	h *Host
}

func (s *senderOnly) SendNotification(ctx context.Context, topic string, p transport.Payload) error {
	return s.h.SendNotification(ctx, topic, p)
}
