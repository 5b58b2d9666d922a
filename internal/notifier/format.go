package notifier

import (
	"fmt"
	"strings"

	"minewatch/internal/event"
)

// Format renders one event for the outward channel: severity glyph, local
// clock time, the producer's description, and a detail line when the
// payload carries recognized fields. The output is channel-agnostic text.
func Format(ev event.Event) string {
	head := fmt.Sprintf("%s %s %s",
		glyphFor(ev.Severity),
		ev.Timestamp.Local().Format("15:04:05"),
		ev.Description)

	if details := detailLine(ev.Data); details != "" {
		return head + "\n  " + details
	}
	return head
}

func glyphFor(sev event.Severity) string {
	switch sev {
	case event.SeverityError:
		return "🚨"
	case event.SeverityWarning:
		return "⚠️"
	case event.SeveritySuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}

// detailLine enumerates recognized payload fields in fixed order:
// position, player, health pair, entity type, block name, reason, message.
// Payload variants with none of these contribute nothing.
func detailLine(data event.Data) string {
	var (
		pos    *event.Position
		player string
		health string
		entity string
		block  string
		reason string
		msg    string
	)

	switch d := data.(type) {
	case event.ConnectionData:
		pos = d.Position
		reason = d.Reason
	case event.ChatData:
		player = d.Username
		msg = d.Message
	case event.MovementData:
		p := d.Position
		pos = &p
	case event.HealthData:
		health = fmt.Sprintf("%d/%d", d.Health, d.MaxHealth)
	case event.EntityHurtData:
		pos = d.Position
		entity = d.EntityType
	case event.BlockBreakData:
		pos = d.Position
		block = d.Block
	case event.DeathData:
		pos = d.Position
	case event.ErrorData:
		reason = d.Code
		msg = d.Message
	default:
		return ""
	}

	parts := make([]string, 0, 4)
	if pos != nil {
		parts = append(parts, "Position: "+pos.String())
	}
	if player != "" {
		parts = append(parts, "Player: "+player)
	}
	if health != "" {
		parts = append(parts, "Health: "+health)
	}
	if entity != "" {
		parts = append(parts, "Entity: "+entity)
	}
	if block != "" {
		parts = append(parts, "Block: "+block)
	}
	if reason != "" {
		parts = append(parts, "Reason: "+reason)
	}
	if msg != "" {
		parts = append(parts, "Message: "+msg)
	}
	return strings.Join(parts, " | ")
}
