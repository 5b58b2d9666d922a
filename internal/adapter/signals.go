package adapter

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/time/rate"

	"minewatch/internal/event"
	"minewatch/internal/world"
	logx "minewatch/pkg/logx"
)

// attachment is the per-source state: the captured identity for self
// suppression and the movement limiter (the coalescing window is per
// source, not global).
type attachment struct {
	a        *Adapter
	ctx      context.Context
	identity string
	move     *rate.Limiter
}

// safely runs one signal handler with panic isolation. A handler that
// blows up drops its own emission and nothing else.
func (at *attachment) safely(signal string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			at.a.log.Error("signal handler failed",
				logx.String("signal", signal),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()
	fn()
}

func (at *attachment) post(kind event.Kind, sev event.Severity, description string, data event.Data) {
	at.a.hub.Post(at.ctx, kind, sev, description, data)
}

func (at *attachment) onLogin(world.LoginSignal) {
	at.post(event.KindConnection, event.SeverityInfo, "Bot logged in",
		event.ConnectionData{Phase: event.PhaseLogin})
}

func (at *attachment) onSpawn(sig world.SpawnSignal) {
	p := truncVec(sig.Position)
	at.post(event.KindConnection, event.SeveritySuccess, "Bot spawned",
		event.ConnectionData{Phase: event.PhaseSpawn, Position: &p})
}

func (at *attachment) onDisconnect(sig world.DisconnectSignal) {
	desc := "Bot disconnected"
	if sig.Reason != "" {
		desc += ": " + sig.Reason
	}
	at.post(event.KindConnection, event.SeverityWarning, desc,
		event.ConnectionData{Phase: event.PhaseDisconnect, Reason: sig.Reason})
}

func (at *attachment) onKick(sig world.KickSignal) {
	desc := "Bot kicked from server"
	if sig.Reason != "" {
		desc += ": " + sig.Reason
	}
	at.post(event.KindConnection, event.SeverityError, desc,
		event.ConnectionData{Phase: event.PhaseKicked, Reason: sig.Reason})
}

func (at *attachment) onChat(sig world.ChatSignal) {
	// The agent hearing itself is not a state change.
	if sig.Username == at.identity {
		return
	}
	at.post(event.KindChat, event.SeverityInfo,
		fmt.Sprintf("<%s> %s", sig.Username, sig.Message),
		event.ChatData{Username: sig.Username, Message: sig.Message})
}

// onMove takes the signal time explicitly so the coalescing window is
// testable without sleeping.
func (at *attachment) onMove(now time.Time, sig world.MoveSignal) {
	if !at.move.AllowN(now, 1) {
		return
	}
	p := truncVec(sig.Position)
	at.post(event.KindMovement, event.SeverityInfo, "Moved to "+p.String(),
		event.MovementData{Position: p})
}

func (at *attachment) onHealth(sig world.HealthSignal) {
	h, m := int(sig.Health), int(sig.MaxHealth)
	at.post(event.KindDamage, event.SeverityWarning,
		fmt.Sprintf("Health changed: %d/%d", h, m),
		event.HealthData{Health: h, MaxHealth: m})
}

func (at *attachment) onDeath(sig world.DeathSignal) {
	at.post(event.KindDeath, event.SeverityError, "Bot died",
		event.DeathData{Position: truncVecPtr(sig.Position)})
}

func (at *attachment) onEntityHurt(sig world.EntityHurtSignal) {
	at.post(event.KindEntityHurt, event.SeverityInfo,
		"Entity hurt: "+sig.EntityType,
		event.EntityHurtData{EntityType: sig.EntityType, Position: truncVecPtr(sig.Position)})
}

func (at *attachment) onBlockProgress(sig world.BlockProgressSignal) {
	// Intermediate destroy stages are progress, not state changes.
	if sig.Stage != world.BlockBreakDoneStage {
		return
	}
	p := truncVec(sig.Position)
	at.post(event.KindBlockBreak, event.SeverityInfo, "Block broken: "+sig.Block,
		event.BlockBreakData{Block: sig.Block, Position: &p})
}

func (at *attachment) onGameState(sig world.GameStateSignal) {
	desc := "Game state changed"
	switch {
	case sig.GameMode != "" && sig.Dimension != "":
		desc = fmt.Sprintf("Game state: %s in %s", sig.GameMode, sig.Dimension)
	case sig.GameMode != "":
		desc = "Game mode: " + sig.GameMode
	case sig.Dimension != "":
		desc = "Dimension: " + sig.Dimension
	}
	at.post(event.KindGameState, event.SeverityInfo, desc,
		event.GameStateData{GameMode: sig.GameMode, Dimension: sig.Dimension})
}

func (at *attachment) onError(sig world.ErrorSignal) {
	code := "unknown"
	var coded world.CodedError
	if errors.As(sig.Err, &coded) {
		if c := coded.ErrorCode(); c != "" {
			code = c
		}
	}
	stack := ""
	var stacked world.StackedError
	if errors.As(sig.Err, &stacked) {
		stack = stacked.StackTrace()
	}
	msg := ""
	if sig.Err != nil {
		msg = sig.Err.Error()
	}
	desc := "World error"
	if msg != "" {
		desc += ": " + msg
	}
	at.post(event.KindError, event.SeverityError, desc,
		event.ErrorData{Code: code, Message: msg, Stack: stack})
}

// truncVec drops the fractional part of each coordinate (toward zero).
func truncVec(v world.Vec3) event.Position {
	return event.Position{X: int(v.X), Y: int(v.Y), Z: int(v.Z)}
}

func truncVecPtr(v *world.Vec3) *event.Position {
	if v == nil {
		return nil
	}
	p := truncVec(*v)
	return &p
}
