// Package host declares everything the decision core needs from the
// simulation engine that schedules it. The engine itself lives elsewhere;
// package sim provides an in-memory implementation for tests and the harness.
package host

import (
	"errors"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// ErrSuspended signals that the agent voluntarily ended its tick, either at
// a budget checkpoint or because movement is exhausted. It is propagated up to
// the tick driver and is never a failure.
var ErrSuspended = errors.New("tick suspended")

// ErrIllegal is returned by Perform when the host refuses an action.
var ErrIllegal = errors.New("illegal action")

// Controller is the per-robot view of the host. Every method applies to the
// robot the controller was handed to.
type Controller interface {
	ID() int
	Team() model.Team
	Type() model.RobotType
	Location() model.Tile
	Health() int

	Round() int
	MapSize() (width, height int)
	OnMap(t model.Tile) bool
	// RobotCount is the number of robots the agent's team owns.
	RobotCount() int

	// BudgetLeft is the remaining compute allowance for this tick.
	BudgetLeft() int
	ActionReady() bool
	MovementReady() bool

	Cargo(kind model.ResourceKind) int
	Anchors() int

	ReadSlot(index int) int
	// CompareAndSwapSlot writes value only if the slot still holds expected.
	CompareAndSwapSlot(index, expected, value int) bool

	Sense() model.Surroundings
	// SenseTile returns terrain details for a tile within sensing range.
	SenseTile(t model.Tile) (model.TileInfo, bool)
	IsOccupied(t model.Tile) bool

	CanPerform(a Action) bool
	Perform(a Action) error
}

// Checkpointer is threaded through every compute-heavy procedure. Checkpoint
// returns ErrSuspended when fewer than cost units remain this tick.
type Checkpointer interface {
	Checkpoint(cost int) error
}
