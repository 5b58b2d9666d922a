// Package world defines the ingestion boundary: the signals a live
// world/agent connection can raise and the hook interfaces a source may
// implement. The pipeline depends only on these shapes, never on how a
// concrete source produces them (protocol parsing stays outside).
//
// A source implements Source plus whatever hook interfaces it can
// actually raise. The adapter probes for each hook with a type assertion
// and silently skips absent ones, so partial sources are first-class.
package world

// Vec3 is a raw world coordinate as delivered by a source. Sources report
// sub-block precision; consumers truncate.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Source is the minimal contract every world connection satisfies.
type Source interface {
	// Identity returns the agent's own username. Chat authored by this
	// name is the agent hearing itself and is suppressed.
	Identity() string
}

// BlockBreakDoneStage is the terminal destroy stage. Sources report
// progress stages 0..9; only the terminal stage means the block is gone.
const BlockBreakDoneStage = 9

type LoginSignal struct{}

type SpawnSignal struct {
	Position Vec3
}

type DisconnectSignal struct {
	Reason string
}

type KickSignal struct {
	Reason string
}

type ChatSignal struct {
	Username string
	Message  string
}

type MoveSignal struct {
	Position Vec3
}

type HealthSignal struct {
	Health    float64
	MaxHealth float64
}

type DeathSignal struct {
	Position *Vec3
}

type EntityHurtSignal struct {
	EntityType string
	Position   *Vec3
}

type BlockProgressSignal struct {
	Block    string
	Position Vec3
	Stage    int
}

type GameStateSignal struct {
	GameMode  string
	Dimension string
}

type ErrorSignal struct {
	Err error
}

// Hook interfaces. Registration happens once at attach time; a source
// must invoke registered callbacks from a single goroutine.
type (
	LoginSource         interface{ OnLogin(fn func(LoginSignal)) }
	SpawnSource         interface{ OnSpawn(fn func(SpawnSignal)) }
	DisconnectSource    interface{ OnDisconnect(fn func(DisconnectSignal)) }
	KickSource          interface{ OnKick(fn func(KickSignal)) }
	ChatSource          interface{ OnChat(fn func(ChatSignal)) }
	MoveSource          interface{ OnMove(fn func(MoveSignal)) }
	HealthSource        interface{ OnHealth(fn func(HealthSignal)) }
	DeathSource         interface{ OnDeath(fn func(DeathSignal)) }
	EntityHurtSource    interface{ OnEntityHurt(fn func(EntityHurtSignal)) }
	BlockProgressSource interface{ OnBlockProgress(fn func(BlockProgressSignal)) }
	GameStateSource     interface{ OnGameState(fn func(GameStateSignal)) }
	ErrorSource         interface{ OnError(fn func(ErrorSignal)) }
)
