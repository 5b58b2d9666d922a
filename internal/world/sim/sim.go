// Package sim is a scripted world source: a deterministic stand-in for a
// live server connection that raises every signal kind the contract
// defines. It drives demos and end-to-end tests without any protocol
// machinery.
//
// With a fixed Seed the whole run is reproducible tick for tick.
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"minewatch/internal/world"
	logx "minewatch/pkg/logx"
)

// DefaultTickInterval paces the script when not configured.
const DefaultTickInterval = 250 * time.Millisecond

const defaultIdentity = "minewatch"

type Config struct {
	// Identity is the agent's own username.
	// Default: "minewatch".
	Identity string
	// TickInterval paces the script loop.
	// Default: DefaultTickInterval.
	TickInterval time.Duration
	// Seed fixes the random walk; 0 seeds from the clock.
	Seed int64
}

// Source implements world.Source and every hook interface.
type Source struct {
	cfg Config
	log logx.Logger

	runMu     sync.Mutex
	running   bool
	runCancel context.CancelFunc
	runWG     sync.WaitGroup

	hooks hookSet

	// Script state, touched only from the loop goroutine.
	rng    *rand.Rand
	pos    world.Vec3
	health float64
	tick   uint64
}

func New(cfg Config, log logx.Logger) *Source {
	if cfg.Identity == "" {
		cfg.Identity = defaultIdentity
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{
		cfg:    cfg,
		log:    log.With(logx.String("comp", "sim")),
		rng:    rand.New(rand.NewSource(seed)),
		pos:    world.Vec3{X: 0.5, Y: 64.0, Z: 0.5},
		health: 20,
	}
}

func (s *Source) Identity() string { return s.cfg.Identity }

// Start launches the script loop. Idempotent.
func (s *Source) Start(ctx context.Context) error {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		return nil
	}
	s.running = true
	rctx, cancel := context.WithCancel(ctx)
	s.runCancel = cancel
	s.runWG.Add(1)
	s.runMu.Unlock()

	go func() {
		defer s.runWG.Done()
		s.loop(rctx)
	}()
	return nil
}

// Stop halts the script and waits for the loop to exit.
func (s *Source) Stop(ctx context.Context) error {
	s.runMu.Lock()
	if !s.running {
		s.runMu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.runCancel
	s.runCancel = nil
	s.runMu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.runWG.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop runs the script. All signals fire from this goroutine, which is
// the single-goroutine delivery the world contract requires.
func (s *Source) loop(ctx context.Context) {
	s.log.Info("simulation started",
		logx.String("identity", s.cfg.Identity),
		logx.Duration("tick", s.cfg.TickInterval))

	s.FireLogin()
	s.FireSpawn(s.pos)

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.FireDisconnect("simulation stopped")
			s.log.Info("simulation stopped", logx.Uint64("ticks", s.tick))
			return
		case <-ticker.C:
			s.step()
		}
	}
}

// step advances the script one beat. The modulo cadence keeps signal
// kinds interleaved without extra timers.
func (s *Source) step() {
	s.tick++

	// Wander a little every tick.
	s.pos.X += s.rng.Float64()*1.8 - 0.9
	s.pos.Z += s.rng.Float64()*1.8 - 0.9
	s.FireMove(s.pos)

	switch {
	case s.tick%97 == 0:
		s.FireError(&world.SourceError{
			Code: "ECONNRESET",
			Err:  fmt.Errorf("connection reset by peer"),
		})
	case s.tick%53 == 0:
		s.FireGameState("survival", dimensions[s.rng.Intn(len(dimensions))])
	case s.tick%31 == 0:
		// The agent talks; the adapter must not echo it back.
		s.FireChat(s.cfg.Identity, "still here")
	case s.tick%29 == 0:
		block := blocks[s.rng.Intn(len(blocks))]
		for _, stage := range []int{3, 6, world.BlockBreakDoneStage} {
			s.FireBlockProgress(block, s.pos, stage)
		}
	case s.tick%17 == 0:
		s.health -= float64(1 + s.rng.Intn(4))
		if s.health <= 0 {
			p := s.pos
			s.FireDeath(&p)
			s.health = 20
			s.FireSpawn(s.pos)
			return
		}
		s.FireHealth(s.health, 20)
	case s.tick%13 == 0:
		s.FireEntityHurt(mobs[s.rng.Intn(len(mobs))], &s.pos)
	case s.tick%8 == 0:
		s.FireChat(players[s.rng.Intn(len(players))], lines[s.rng.Intn(len(lines))])
	}
}

var (
	players    = []string{"steve", "alex", "herobrine"}
	mobs       = []string{"zombie", "skeleton", "creeper", "spider"}
	blocks     = []string{"oak_log", "stone", "iron_ore", "dirt"}
	dimensions = []string{"minecraft:overworld", "minecraft:the_nether", "minecraft:the_end"}
	lines      = []string{
		"anyone seen my sheep",
		"lag again",
		"heading to the mine",
		"who broke the farm",
		"nice base",
	}
)
