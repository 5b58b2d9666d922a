package report

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"minewatch/internal/hub"
	logx "minewatch/pkg/logx"
)

// DefaultSchedule fires the digest at the top of every hour.
const DefaultSchedule = "@hourly"

// Config controls the digest service.
type Config struct {
	Enabled bool
	// Schedule accepts a cron spec ("15 * * * *", "@hourly"), a Go
	// duration ("45m"), or HH:MM ("02:30"). Invalid values fall back to
	// DefaultSchedule at Start. Default: DefaultSchedule.
	Schedule string
	// Timezone is the IANA location cron specs fire in, e.g. "Asia/Jakarta".
	// Default: local time.
	Timezone string
}

// Service owns one cron entry that emits digest events. Start/Stop follow
// the usual service lifecycle; Apply restarts the entry when the schedule
// or timezone changes while running.
type Service struct {
	mu  sync.Mutex
	log logx.Logger
	cfg Config
	hub *hub.Hub

	c   *cron.Cron
	loc *time.Location

	// ctx is the Start context; digest firings inherit it.
	ctx context.Context
	// mark is the exclusive lower bound of the next digest window.
	mark time.Time
}
