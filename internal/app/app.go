package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"minewatch/internal/adapter"
	"minewatch/internal/config"
	"minewatch/internal/hub"
	"minewatch/internal/notifier"
	"minewatch/internal/observability/pprof"
	"minewatch/internal/report"
	"minewatch/internal/runtime/supervisor"
	"minewatch/internal/transport"
	"minewatch/internal/transport/mcphost"
	"minewatch/internal/world/sim"
	logx "minewatch/pkg/logx"
)

// App wires the pipeline: world source into adapter into hub, with the
// notifier subscribed on the wildcard key and the MCP host, digest, and
// pprof services alongside.
type App struct {
	cfgPath string

	cfgm *config.Manager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	hub     *hub.Hub
	world   *sim.Source
	worldOn bool
	adapt   *adapter.Adapter
	notif   *notifier.Service
	host    *mcphost.Host
	report  *report.Service
	pprof   *pprof.Service
}

func NewApp(cfgPath string) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogging(cfg))
	log = log.With(logx.String("comp", "app"))

	hubSvc := hub.New(hub.Config{MaxHistory: cfg.Hub.MaxHistory}, log)

	// The host is built before the notifier: the notifier's transport
	// chain comes from probing the host's channel.
	host := mcphost.New(mapMCP(cfg), hubSvc, log)
	var strategies []transport.Strategy
	if host.Enabled() {
		strategies = transport.Probe(host.Channel())
	}
	notifSvc := notifier.New(mapNotifier(cfg), strategies, log)
	host.BindNotifier(notifSvc)

	adaptCfg, err := mapAdapter(cfg)
	if err != nil {
		return nil, err
	}
	adapt := adapter.New(adaptCfg, hubSvc, log)

	worldCfg, err := mapWorld(cfg)
	if err != nil {
		return nil, err
	}
	worldSrc := sim.New(worldCfg, log)

	reportSvc := report.New(mapReport(cfg), hubSvc, log)

	pprofCfg, err := mapPprof(cfg)
	if err != nil {
		return nil, err
	}
	pprofSvc := pprof.New(pprofCfg, log)

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		log:     log,
		logs:    logSvc,
		hub:     hubSvc,
		world:   worldSrc,
		worldOn: cfg.World.Enabled,
		adapt:   adapt,
		notif:   notifSvc,
		host:    host,
		report:  reportSvc,
		pprof:   pprofSvc,
	}, nil
}

// Hub exposes the dispatch hub for embedding callers.
func (a *App) Hub() *hub.Hub { return a.hub }

// Done is closed when the app supervisor context is canceled (fatal error
// or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.NewSupervisor(ctx,
		supervisor.WithLogger(a.log),
		supervisor.WithCancelOnError(true),
	)

	// transactional config reload: validate before commit/publish
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return config.Validate(cfg)
	})

	// Notification path first so no early event slips past the notifier.
	a.hub.Subscribe(hub.Wildcard, a.notif)

	bound := a.adapt.Attach(a.sup.Context(), a.world)
	if bound == 0 {
		a.log.Warn("world source exposes no hooks")
	}

	if a.worldOn {
		if err := a.world.Start(a.sup.Context()); err != nil {
			return fmt.Errorf("world start: %w", err)
		}
	}

	if a.host.Enabled() {
		a.sup.Go("mcp.serve", func(c context.Context) error {
			return a.host.Serve(c)
		})
	}
	if a.report.Enabled() {
		a.report.Start(a.sup.Context())
	}
	if a.pprof.Enabled() {
		a.pprof.Start(a.sup.Context())
	}

	// hot reload config fan-out
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config.
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						goto APPLY
					}
				}
			APPLY:
				a.applyReload(c, lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})

	a.log.Info("app started")
	return nil
}

// applyReload pushes one validated config into the running services.
func (a *App) applyReload(ctx context.Context, oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Debug("config change summary", fields...)

	for _, s := range sections {
		switch s {
		// Sections consumed once at construction or bound to stdio.
		case "adapter", "world", "mcp":
			a.log.Warn("config changed; restart required for changes to take effect",
				logx.String("section", s))
		}
	}

	a.logs.Apply(mapLogging(newCfg))

	if newCfg.Hub != oldCfg.Hub {
		n := newCfg.Hub.MaxHistory
		if n < 1 {
			n = hub.DefaultMaxHistory
		}
		a.hub.SetMaxHistory(n)
	}

	a.notif.Reconfigure(mapNotifier(newCfg))

	prevReport := a.report.Enabled()
	a.report.Apply(mapReport(newCfg))
	if prevReport && !newCfg.Report.Enabled {
		a.log.Info("digest disabled via config")
		stopCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		a.report.Stop(stopCtx)
		cancel()
	} else if !prevReport && newCfg.Report.Enabled {
		a.log.Info("digest enabled via config")
		a.report.Start(ctx)
	}

	if ppc, err := mapPprof(newCfg); err != nil {
		a.log.Warn("invalid pprof config; keeping previous", logx.Err(err))
	} else {
		a.pprof.Reconfigure(ctx, ppc)
	}

	a.log.Info("config reloaded", fields...)
}

func (a *App) Stop(ctx context.Context, reason StopReason) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping", logx.String("reason", string(reason)))

	// Cancel the run context first so background loops start unwinding.
	a.sup.Cancel()

	// Each shutdown step gets an upper bound so one component cannot
	// stall the whole stop.
	step := func(name string, max time.Duration, fn func(context.Context) error) {
		start := time.Now()

		stepCtx := ctx
		var cancel context.CancelFunc
		if max > 0 {
			// respect the caller's deadline; never extend it
			if dl, ok := ctx.Deadline(); ok {
				if rem := time.Until(dl); rem < max {
					max = rem
				}
			}
			if max > 0 {
				stepCtx, cancel = context.WithTimeout(ctx, max)
				defer cancel()
			}
		}

		done := make(chan error, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("panic in stop step %s: %v", name, r)
				}
			}()
			done <- fn(stepCtx)
		}()

		select {
		case err := <-done:
			if err != nil {
				a.log.Warn("stop step error", logx.String("name", name), logx.Err(err))
			}
			a.log.Debug("stop step end", logx.String("name", name), logx.Duration("took", time.Since(start)))
		case <-stepCtx.Done():
			a.log.Warn("stop step deadline reached (continuing)",
				logx.String("name", name),
				logx.Duration("elapsed", time.Since(start)))
		}
	}

	step("report", 2*time.Second, func(c context.Context) error { a.report.Stop(c); return nil })
	if a.worldOn {
		step("world", 2*time.Second, func(c context.Context) error { return a.world.Stop(c) })
	}
	step("pprof", time.Second, func(c context.Context) error { a.pprof.Stop(c); return nil })

	// The source is quiet now; tear down delivery.
	a.hub.RemoveAllListeners()

	// Remaining supervised goroutines: config watch/reload, MCP serve.
	step("supervisor", 2*time.Second, func(c context.Context) error { return a.sup.Wait(c) })

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	return nil
}

func mapLogging(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapWorld(cfg *config.Config) (sim.Config, error) {
	tick, err := config.ParseDurationField("world.tick_interval", cfg.World.TickInterval)
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Identity:     strings.TrimSpace(cfg.World.Identity),
		TickInterval: tick,
		Seed:         cfg.World.Seed,
	}, nil
}

func mapAdapter(cfg *config.Config) (adapter.Config, error) {
	window, err := config.ParseDurationField("adapter.move_window", cfg.Adapter.MoveWindow)
	if err != nil {
		return adapter.Config{}, err
	}
	return adapter.Config{MoveWindow: window}, nil
}

func mapNotifier(cfg *config.Config) notifier.Config {
	if cfg.Notifier == nil {
		return notifier.Config{Enabled: true}
	}
	return notifier.Config{
		Enabled:   cfg.Notifier.Enabled,
		Topic:     strings.TrimSpace(cfg.Notifier.Topic),
		Important: cfg.Notifier.Important,
	}
}

func mapMCP(cfg *config.Config) mcphost.Config {
	return mcphost.Config{
		Enabled:      cfg.MCP.Enabled,
		Instructions: strings.TrimSpace(cfg.MCP.Instructions),
		EnablePrompt: cfg.MCP.EnablePrompt,
	}
}

func mapReport(cfg *config.Config) report.Config {
	return report.Config{
		Enabled:  cfg.Report.Enabled,
		Schedule: strings.TrimSpace(cfg.Report.Schedule),
		Timezone: strings.TrimSpace(cfg.Report.Timezone),
	}
}

func mapPprof(cfg *config.Config) (pprof.Config, error) {
	read, err := config.ParseDurationField("pprof.read_timeout", cfg.Pprof.ReadTimeout)
	if err != nil {
		return pprof.Config{}, err
	}
	write, err := config.ParseDurationField("pprof.write_timeout", cfg.Pprof.WriteTimeout)
	if err != nil {
		return pprof.Config{}, err
	}
	idle, err := config.ParseDurationField("pprof.idle_timeout", cfg.Pprof.IdleTimeout)
	if err != nil {
		return pprof.Config{}, err
	}
	return pprof.Config{
		Enabled:      cfg.Pprof.Enabled,
		Addr:         strings.TrimSpace(cfg.Pprof.Addr),
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}, nil
}
