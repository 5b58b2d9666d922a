package config

import (
	"reflect"
	"sort"
	"strings"

	"minewatch/internal/notifier"
	logx "minewatch/pkg/logx"
)

// SummarizeConfigChange returns a compact list of changed sections plus
// structured attrs describing the new values, for the reload log line.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 8)
	attrs := make([]logx.Field, 0, 16)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logx.level", newCfg.Logging.Level),
			logx.Bool("logx.console", newCfg.Logging.Console),
			logx.Bool("logx.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	if !reflect.DeepEqual(oldCfg.World, newCfg.World) {
		changed = append(changed, "world")
		attrs = append(attrs,
			logx.Bool("world.enabled", newCfg.World.Enabled),
			logx.String("world.identity", strings.TrimSpace(newCfg.World.Identity)),
			logx.String("world.tick_interval", strings.TrimSpace(newCfg.World.TickInterval)),
			logx.Int64("world.seed", newCfg.World.Seed),
		)
	}

	if oldCfg.Adapter != newCfg.Adapter {
		changed = append(changed, "adapter")
		attrs = append(attrs, logx.String("adapter.move_window", strings.TrimSpace(newCfg.Adapter.MoveWindow)))
	}

	if oldCfg.Hub != newCfg.Hub {
		changed = append(changed, "hub")
		attrs = append(attrs, logx.Int("hub.max_history", newCfg.Hub.MaxHistory))
	}

	// Nil section means runtime defaults; compare the effective values so
	// adding an explicit section with default contents is not a change.
	oldN := effectiveNotifier(oldCfg.Notifier)
	newN := effectiveNotifier(newCfg.Notifier)
	if !reflect.DeepEqual(oldN, newN) {
		changed = append(changed, "notifier")
		attrs = append(attrs,
			logx.Bool("notifier.enabled", newN.Enabled),
			logx.String("notifier.topic", newN.Topic),
			logx.Int("notifier.important_count", len(newN.Important)),
		)
	}

	if oldCfg.MCP != newCfg.MCP {
		changed = append(changed, "mcp")
		attrs = append(attrs,
			logx.Bool("mcp.enabled", newCfg.MCP.Enabled),
			logx.Bool("mcp.enable_prompt", newCfg.MCP.EnablePrompt),
			logx.Bool("mcp.instructions_set", strings.TrimSpace(newCfg.MCP.Instructions) != ""),
		)
	}

	if oldCfg.Report != newCfg.Report {
		changed = append(changed, "report")
		attrs = append(attrs,
			logx.Bool("report.enabled", newCfg.Report.Enabled),
			logx.String("report.schedule", strings.TrimSpace(newCfg.Report.Schedule)),
			logx.String("report.timezone", strings.TrimSpace(newCfg.Report.Timezone)),
		)
	}

	if oldCfg.Pprof != newCfg.Pprof {
		changed = append(changed, "pprof")
		attrs = append(attrs,
			logx.Bool("pprof.enabled", newCfg.Pprof.Enabled),
			logx.String("pprof.addr", strings.TrimSpace(newCfg.Pprof.Addr)),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}

func effectiveNotifier(n *NotifierConfig) NotifierConfig {
	if n == nil {
		return NotifierConfig{
			Enabled:   true,
			Topic:     notifier.DefaultTopic,
			Important: notifier.DefaultImportantKinds,
		}
	}
	out := *n
	if strings.TrimSpace(out.Topic) == "" {
		out.Topic = notifier.DefaultTopic
	}
	if len(out.Important) == 0 {
		out.Important = notifier.DefaultImportantKinds
	}
	return out
}
