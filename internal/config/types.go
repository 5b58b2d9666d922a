package config

// Config is the on-disk configuration. JSON and YAML files are accepted;
// YAML is coerced to JSON before strict decoding, so unknown keys are
// rejected in both formats.
type Config struct {
	Logging LoggingConfig `json:"logging"`
	World   WorldConfig   `json:"world"`
	Adapter AdapterConfig `json:"adapter,omitempty"`
	Hub     HubConfig     `json:"hub,omitempty"`

	// Notifier is optional. If the whole section is omitted, the notifier
	// defaults to enabled with the built-in importance set.
	Notifier *NotifierConfig `json:"notifier,omitempty"`

	MCP    MCPConfig    `json:"mcp"`
	Report ReportConfig `json:"report,omitempty"`
	Pprof  PprofConfig  `json:"pprof,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// WorldConfig controls the built-in world simulator.
//
// All durations are Go duration strings (e.g. "250ms", "1s").
type WorldConfig struct {
	Enabled bool `json:"enabled"`
	// Identity is the simulated agent's username. Default: "minewatch".
	Identity string `json:"identity,omitempty"`
	// TickInterval paces simulation steps. Default: "250ms".
	TickInterval string `json:"tick_interval,omitempty"`
	// Seed fixes the simulation RNG; 0 seeds from the clock.
	Seed int64 `json:"seed,omitempty"`
}

// AdapterConfig controls signal normalization.
type AdapterConfig struct {
	// MoveWindow coalesces movement signals: at most one movement event
	// per source per window. Go duration string. Default: "500ms".
	MoveWindow string `json:"move_window,omitempty"`
}

// HubConfig controls the dispatch hub.
type HubConfig struct {
	// MaxHistory bounds the rolling event buffer. Default: 1000.
	MaxHistory int `json:"max_history,omitempty"`
}

// NotifierConfig controls outward notification selection.
type NotifierConfig struct {
	Enabled bool `json:"enabled"`
	// Topic namespaces outward deliveries. Default: "minewatch/events".
	Topic string `json:"topic,omitempty"`
	// Important lists event kinds delivered regardless of severity.
	// Default: connection, death, error.
	Important []string `json:"important,omitempty"`
}

// MCPConfig controls the stdio MCP host surface.
type MCPConfig struct {
	Enabled bool `json:"enabled"`
	// Instructions overrides the server instructions advertised to clients.
	Instructions string `json:"instructions,omitempty"`
	// EnablePrompt additionally exposes the sampling-backed prompt
	// capability on the notification channel.
	EnablePrompt bool `json:"enable_prompt,omitempty"`
}

// ReportConfig controls the periodic activity digest.
type ReportConfig struct {
	Enabled bool `json:"enabled"`
	// Schedule is a cron spec ("15 * * * *", "@hourly"), a Go duration
	// ("45m"), or HH:MM ("02:30"). Default: "@hourly".
	Schedule string `json:"schedule,omitempty"`
	// Timezone is the IANA location cron specs fire in.
	Timezone string `json:"timezone,omitempty"`
}

// PprofConfig controls the optional pprof HTTP server.
//
// Bind to localhost; the handler carries no authentication.
type PprofConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"` // default: "127.0.0.1:6060"

	// Server timeouts (Go duration strings). WriteTimeout defaults to 0
	// (disabled) so /profile (which can take 30s+) works reliably.
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
	IdleTimeout  string `json:"idle_timeout,omitempty"`
}
