package config

import (
	"fmt"
	"strings"
	"time"

	"minewatch/internal/report"
)

// ParseDurationField parses an optional Go duration string. Empty means
// zero (use the consumer's default); negative values are rejected.
func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

// ParseDurationOrDefault is ParseDurationField with a fallback for
// empty/zero values.
func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}

// Validate rejects configs that would misbehave at runtime. It is the
// hot-reload gate: a file failing here never reaches subscribers.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if lv := strings.ToLower(strings.TrimSpace(cfg.Logging.Level)); lv != "" {
		switch lv {
		case "trace", "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
		}
	}

	if _, err := ParseDurationField("world.tick_interval", cfg.World.TickInterval); err != nil {
		return err
	}
	if _, err := ParseDurationField("adapter.move_window", cfg.Adapter.MoveWindow); err != nil {
		return err
	}

	if cfg.Hub.MaxHistory < 0 {
		return fmt.Errorf("hub.max_history must be >= 0")
	}

	if cfg.Notifier != nil {
		for _, k := range cfg.Notifier.Important {
			k = strings.TrimSpace(k)
			if k == "" {
				return fmt.Errorf("notifier.important: empty kind")
			}
			if strings.Contains(k, "*") {
				return fmt.Errorf("notifier.important: %q is not a concrete kind", k)
			}
		}
	}

	if s := strings.TrimSpace(cfg.Report.Schedule); s != "" {
		if _, err := report.ParseSchedule(s); err != nil {
			return fmt.Errorf("report.schedule: %w", err)
		}
	}
	if tz := strings.TrimSpace(cfg.Report.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("report.timezone: invalid %q: %w", tz, err)
		}
	}

	for _, f := range []struct{ path, raw string }{
		{"pprof.read_timeout", cfg.Pprof.ReadTimeout},
		{"pprof.write_timeout", cfg.Pprof.WriteTimeout},
		{"pprof.idle_timeout", cfg.Pprof.IdleTimeout},
	} {
		if _, err := ParseDurationField(f.path, f.raw); err != nil {
			return err
		}
	}
	return nil
}
