package event

import "fmt"

// Data is the closed-per-kind payload variant. Each kind that carries
// structured detail has exactly one concrete type here; EventKind() is the
// discriminant checked by New. Implementations are small value types so an
// Event never shares mutable state with its producer.
type Data interface {
	EventKind() Kind
}

// Position is a world location at whole-block precision.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// Connection lifecycle phases carried by ConnectionData.
const (
	PhaseLogin      = "login"
	PhaseSpawn      = "spawn"
	PhaseDisconnect = "disconnect"
	PhaseKicked     = "kicked"
)

type ConnectionData struct {
	Phase    string    `json:"phase"`
	Reason   string    `json:"reason,omitempty"`
	Position *Position `json:"position,omitempty"`
}

func (ConnectionData) EventKind() Kind { return KindConnection }

type ChatData struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

func (ChatData) EventKind() Kind { return KindChat }

type MovementData struct {
	Position Position `json:"position"`
}

func (MovementData) EventKind() Kind { return KindMovement }

type HealthData struct {
	Health    int `json:"health"`
	MaxHealth int `json:"max_health"`
}

func (HealthData) EventKind() Kind { return KindDamage }

type EntityHurtData struct {
	EntityType string    `json:"entity_type"`
	Position   *Position `json:"position,omitempty"`
}

func (EntityHurtData) EventKind() Kind { return KindEntityHurt }

type BlockBreakData struct {
	Block    string    `json:"block"`
	Position *Position `json:"position,omitempty"`
}

func (BlockBreakData) EventKind() Kind { return KindBlockBreak }

type DeathData struct {
	Position *Position `json:"position,omitempty"`
}

func (DeathData) EventKind() Kind { return KindDeath }

type GameStateData struct {
	GameMode  string `json:"game_mode,omitempty"`
	Dimension string `json:"dimension,omitempty"`
}

func (GameStateData) EventKind() Kind { return KindGameState }

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Stack is set only when the source error actually carried one.
	Stack string `json:"stack,omitempty"`
}

func (ErrorData) EventKind() Kind { return KindError }

// StatusData summarizes recent activity (see internal/report).
type StatusData struct {
	Total  int          `json:"total"`
	Counts map[Kind]int `json:"counts,omitempty"`
}

func (StatusData) EventKind() Kind { return KindStatus }
