package sim

import (
	"sync"

	"minewatch/internal/world"
)

// hookSet holds registered callbacks. Registration usually happens once at
// attach time, but the lock keeps late registration safe; firing snapshots
// under the lock and calls without it.
type hookSet struct {
	mu            sync.Mutex
	login         []func(world.LoginSignal)
	spawn         []func(world.SpawnSignal)
	disconnect    []func(world.DisconnectSignal)
	kick          []func(world.KickSignal)
	chat          []func(world.ChatSignal)
	move          []func(world.MoveSignal)
	health        []func(world.HealthSignal)
	death         []func(world.DeathSignal)
	entityHurt    []func(world.EntityHurtSignal)
	blockProgress []func(world.BlockProgressSignal)
	gameState     []func(world.GameStateSignal)
	errs          []func(world.ErrorSignal)
}

func (s *Source) OnLogin(fn func(world.LoginSignal)) {
	s.hooks.mu.Lock()
	s.hooks.login = append(s.hooks.login, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnSpawn(fn func(world.SpawnSignal)) {
	s.hooks.mu.Lock()
	s.hooks.spawn = append(s.hooks.spawn, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnDisconnect(fn func(world.DisconnectSignal)) {
	s.hooks.mu.Lock()
	s.hooks.disconnect = append(s.hooks.disconnect, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnKick(fn func(world.KickSignal)) {
	s.hooks.mu.Lock()
	s.hooks.kick = append(s.hooks.kick, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnChat(fn func(world.ChatSignal)) {
	s.hooks.mu.Lock()
	s.hooks.chat = append(s.hooks.chat, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnMove(fn func(world.MoveSignal)) {
	s.hooks.mu.Lock()
	s.hooks.move = append(s.hooks.move, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnHealth(fn func(world.HealthSignal)) {
	s.hooks.mu.Lock()
	s.hooks.health = append(s.hooks.health, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnDeath(fn func(world.DeathSignal)) {
	s.hooks.mu.Lock()
	s.hooks.death = append(s.hooks.death, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnEntityHurt(fn func(world.EntityHurtSignal)) {
	s.hooks.mu.Lock()
	s.hooks.entityHurt = append(s.hooks.entityHurt, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnBlockProgress(fn func(world.BlockProgressSignal)) {
	s.hooks.mu.Lock()
	s.hooks.blockProgress = append(s.hooks.blockProgress, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnGameState(fn func(world.GameStateSignal)) {
	s.hooks.mu.Lock()
	s.hooks.gameState = append(s.hooks.gameState, fn)
	s.hooks.mu.Unlock()
}

func (s *Source) OnError(fn func(world.ErrorSignal)) {
	s.hooks.mu.Lock()
	s.hooks.errs = append(s.hooks.errs, fn)
	s.hooks.mu.Unlock()
}

// Fire* invoke registered callbacks synchronously. Tests drive these
// directly; the script loop is just another caller.

func (s *Source) FireLogin() {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.login) {
		fn(world.LoginSignal{})
	}
}

func (s *Source) FireSpawn(p world.Vec3) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.spawn) {
		fn(world.SpawnSignal{Position: p})
	}
}

func (s *Source) FireDisconnect(reason string) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.disconnect) {
		fn(world.DisconnectSignal{Reason: reason})
	}
}

func (s *Source) FireKick(reason string) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.kick) {
		fn(world.KickSignal{Reason: reason})
	}
}

func (s *Source) FireChat(username, message string) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.chat) {
		fn(world.ChatSignal{Username: username, Message: message})
	}
}

func (s *Source) FireMove(p world.Vec3) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.move) {
		fn(world.MoveSignal{Position: p})
	}
}

func (s *Source) FireHealth(health, maxHealth float64) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.health) {
		fn(world.HealthSignal{Health: health, MaxHealth: maxHealth})
	}
}

func (s *Source) FireDeath(p *world.Vec3) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.death) {
		fn(world.DeathSignal{Position: p})
	}
}

func (s *Source) FireEntityHurt(entityType string, p *world.Vec3) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.entityHurt) {
		fn(world.EntityHurtSignal{EntityType: entityType, Position: p})
	}
}

func (s *Source) FireBlockProgress(block string, p world.Vec3, stage int) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.blockProgress) {
		fn(world.BlockProgressSignal{Block: block, Position: p, Stage: stage})
	}
}

func (s *Source) FireGameState(gameMode, dimension string) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.gameState) {
		fn(world.GameStateSignal{GameMode: gameMode, Dimension: dimension})
	}
}

func (s *Source) FireError(err error) {
	for _, fn := range snapshot(&s.hooks.mu, &s.hooks.errs) {
		fn(world.ErrorSignal{Err: err})
	}
}

func snapshot[T any](mu *sync.Mutex, fns *[]T) []T {
	mu.Lock()
	out := append([]T(nil), (*fns)...)
	mu.Unlock()
	return out
}
