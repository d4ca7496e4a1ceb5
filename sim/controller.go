package sim

import (
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// controller is one robot's view of the world for the duration of a match.
// Every call is charged against the robot's compute budget for the turn.
type controller struct {
	w      *World
	r      *robot
	budget int
}

var _ host.Controller = (*controller)(nil)

func (c *controller) charge(n int) { c.budget -= n }

func (c *controller) call() { c.charge(c.w.Params.CallCost) }

// beginTurn refills the budget for a new round.
func (c *controller) beginTurn() { c.budget = c.w.Params.budget(c.r.kind) }

func (c *controller) ID() int               { return c.r.id }
func (c *controller) Team() model.Team      { return c.r.team }
func (c *controller) Type() model.RobotType { return c.r.kind }
func (c *controller) BudgetLeft() int       { return c.budget }

func (c *controller) Location() model.Tile {
	c.call()
	return c.r.loc
}

func (c *controller) Health() int {
	c.call()
	return c.r.health
}

func (c *controller) Round() int {
	c.call()
	return c.w.round
}

func (c *controller) MapSize() (int, int) {
	c.call()
	return c.w.Map.Terrain.Width, c.w.Map.Terrain.Height
}

func (c *controller) OnMap(t model.Tile) bool {
	c.call()
	return c.w.Map.Terrain.OnMap(t)
}

func (c *controller) RobotCount() int {
	c.call()
	return c.w.count(c.r.team)
}

func (c *controller) ActionReady() bool {
	c.call()
	return c.r.actionReady
}

func (c *controller) MovementReady() bool {
	c.call()
	return c.r.movementReady
}

func (c *controller) Cargo(kind model.ResourceKind) int {
	c.call()
	if kind < 0 || int(kind) >= len(c.r.cargo) {
		return 0
	}
	return c.r.cargo[kind]
}

func (c *controller) Anchors() int {
	c.call()
	return c.r.anchors
}

func (c *controller) ReadSlot(i int) int {
	c.call()
	return c.w.side(c.r.team).channel.ReadSlot(i)
}

func (c *controller) CompareAndSwapSlot(i, expected, value int) bool {
	c.call()
	return c.w.side(c.r.team).channel.CompareAndSwapSlot(i, expected, value)
}

func (c *controller) Sense() model.Surroundings {
	c.charge(c.w.Params.SenseCost)
	return c.w.sense(c.r)
}

func (c *controller) SenseTile(t model.Tile) (model.TileInfo, bool) {
	c.call()
	if !c.w.Map.Terrain.OnMap(t) || c.r.loc.DistanceSquaredTo(t) > c.w.Params.unit(c.r.kind).Vision {
		return model.TileInfo{}, false
	}
	return c.w.Map.Terrain.Info(t), true
}

func (c *controller) IsOccupied(t model.Tile) bool {
	c.call()
	return c.w.occupied[t] != nil
}

func (c *controller) CanPerform(a host.Action) bool {
	c.call()
	return c.w.legal(c.r, a)
}

func (c *controller) Perform(a host.Action) error {
	c.call()
	if !c.w.legal(c.r, a) {
		return host.ErrIllegal
	}
	c.w.apply(c.r, a)
	return nil
}
