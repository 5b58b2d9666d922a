// Package adapter normalizes raw world signals into events and forwards
// them to the hub. One Attach call binds every hook the source actually
// implements; sources missing a hook are skipped without error.
//
// Normalization policy lives entirely here: self-authored chat is
// suppressed, movement is coalesced to one event per rolling window,
// block destruction only counts at the terminal stage, and positions and
// health are truncated to integer precision. Handlers never panic out
// into the source.
package adapter

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"minewatch/internal/hub"
	"minewatch/internal/world"
	logx "minewatch/pkg/logx"
)

// DefaultMoveWindow is the rolling movement coalescing window.
const DefaultMoveWindow = 500 * time.Millisecond

type Config struct {
	// MoveWindow caps movement events to one per window per source.
	// Default: DefaultMoveWindow.
	MoveWindow time.Duration
}

type Adapter struct {
	cfg Config
	log logx.Logger
	hub *hub.Hub
}

func New(cfg Config, h *hub.Hub, log logx.Logger) *Adapter {
	if cfg.MoveWindow <= 0 {
		cfg.MoveWindow = DefaultMoveWindow
	}
	return &Adapter{
		cfg: cfg,
		log: log.With(logx.String("comp", "adapter")),
		hub: h,
	}
}

// Attach probes src for every known hook interface and registers a
// handler on each one present. It returns the number of hooks bound.
// Signals delivered after ctx is canceled still normalize but emit into a
// dead context; sources are expected to stop raising soon after.
func (a *Adapter) Attach(ctx context.Context, src world.Source) int {
	if src == nil {
		return 0
	}
	at := &attachment{
		a:        a,
		ctx:      ctx,
		identity: src.Identity(),
		move:     rate.NewLimiter(rate.Every(a.cfg.MoveWindow), 1),
	}

	bound := 0
	if s, ok := src.(world.LoginSource); ok {
		s.OnLogin(func(sig world.LoginSignal) { at.safely("login", func() { at.onLogin(sig) }) })
		bound++
	}
	if s, ok := src.(world.SpawnSource); ok {
		s.OnSpawn(func(sig world.SpawnSignal) { at.safely("spawn", func() { at.onSpawn(sig) }) })
		bound++
	}
	if s, ok := src.(world.DisconnectSource); ok {
		s.OnDisconnect(func(sig world.DisconnectSignal) { at.safely("disconnect", func() { at.onDisconnect(sig) }) })
		bound++
	}
	if s, ok := src.(world.KickSource); ok {
		s.OnKick(func(sig world.KickSignal) { at.safely("kick", func() { at.onKick(sig) }) })
		bound++
	}
	if s, ok := src.(world.ChatSource); ok {
		s.OnChat(func(sig world.ChatSignal) { at.safely("chat", func() { at.onChat(sig) }) })
		bound++
	}
	if s, ok := src.(world.MoveSource); ok {
		s.OnMove(func(sig world.MoveSignal) { at.safely("move", func() { at.onMove(time.Now(), sig) }) })
		bound++
	}
	if s, ok := src.(world.HealthSource); ok {
		s.OnHealth(func(sig world.HealthSignal) { at.safely("health", func() { at.onHealth(sig) }) })
		bound++
	}
	if s, ok := src.(world.DeathSource); ok {
		s.OnDeath(func(sig world.DeathSignal) { at.safely("death", func() { at.onDeath(sig) }) })
		bound++
	}
	if s, ok := src.(world.EntityHurtSource); ok {
		s.OnEntityHurt(func(sig world.EntityHurtSignal) { at.safely("entity-hurt", func() { at.onEntityHurt(sig) }) })
		bound++
	}
	if s, ok := src.(world.BlockProgressSource); ok {
		s.OnBlockProgress(func(sig world.BlockProgressSignal) { at.safely("block-progress", func() { at.onBlockProgress(sig) }) })
		bound++
	}
	if s, ok := src.(world.GameStateSource); ok {
		s.OnGameState(func(sig world.GameStateSignal) { at.safely("game-state", func() { at.onGameState(sig) }) })
		bound++
	}
	if s, ok := src.(world.ErrorSource); ok {
		s.OnError(func(sig world.ErrorSignal) { at.safely("error", func() { at.onError(sig) }) })
		bound++
	}

	a.log.Info("world source attached",
		logx.String("identity", at.identity),
		logx.Int("hooks", bound))
	return bound
}
