package rules

import (
	"log/slog"
	"math/rand"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/intel"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/nav"
)

// GoalKind names what a robot committed to on an earlier tick.
type GoalKind int

const (
	NoGoal GoalKind = iota
	GoalCollect
	GoalDeposit
	GoalExplore
	GoalDefend
	GoalRaid
	GoalSwarm
	GoalSwarmGuess
	GoalPatrol
)

var goalNames = [...]string{"none", "collect", "deposit", "explore", "defend", "raid", "swarm", "swarm_guess", "patrol"}

func (g GoalKind) String() string {
	if g < NoGoal || int(g) >= len(goalNames) {
		return "unknown"
	}
	return goalNames[g]
}

// Goal is a randomly chosen target that must survive a suspended tick so the
// robot resumes toward it instead of re-rolling.
type Goal struct {
	Kind      GoalKind
	Target    model.Tile
	Tolerance int
}

// Memory is the per-agent state latched across ticks.
type Memory struct {
	Established bool
	Home        model.Tile
	HasHome     bool
	// Preferred is the cardinal direction from the base toward map center.
	Preferred model.Direction
	Spawned   int
	Stationed bool
	Goal      Goal

	RushRobots int
	RushRounds int

	LastDiagnostics int
	Published       intel.PublishStats
}

// Context is everything one agent's rules may touch. It is owned by that
// agent's tick loop and never shared.
type Context struct {
	Host     host.Controller
	Intel    *intel.Cache
	Writer   *channel.Writer
	Nav      *nav.Navigator
	NavCfg   nav.Config
	Budget   host.Checkpointer
	Doctrine Doctrine
	Rand     *rand.Rand
	Log      *slog.Logger
	Memory   Memory
}

// Checkpoint ends the tick when the remaining budget is below cost.
func (c *Context) Checkpoint(cost int) error { return c.Budget.Checkpoint(cost) }

// Resync is the light refresh run after every navigation step: it merges
// what other robots wrote this round and keeps the surroundings sensed at
// the start of the tick.
func (c *Context) Resync() error {
	return c.Intel.Refresh(c.Host, c.Budget, intel.Light)
}

// Resense re-reads the channel, re-senses and publishes what is now in view.
// It is reserved for changes worth paying a sense for, such as a claimed zone.
func (c *Context) Resense() error {
	if err := c.Intel.Refresh(c.Host, c.Budget, intel.Full); err != nil {
		return err
	}
	return c.Publish()
}

// Publish shares what the last full refresh sensed and tallies the outcomes.
func (c *Context) Publish() error {
	stats, err := c.Intel.Publish(c.Writer, c.Host.Team(), c.Budget)
	if c.Memory.Published == nil {
		c.Memory.Published = make(intel.PublishStats)
	}
	for k, n := range stats {
		c.Memory.Published[k] += n
	}
	return err
}

// Rushing reports whether the combat rush phase is still on.
func (c *Context) Rushing() bool {
	return c.Host.RobotCount() < c.Memory.RushRobots && c.Host.Round() < c.Memory.RushRounds
}

func (c *Context) clearGoal() { c.Memory.Goal = Goal{} }

func (c *Context) setGoal(kind GoalKind, target model.Tile, tolerance int) Goal {
	c.Memory.Goal = Goal{Kind: kind, Target: target, Tolerance: tolerance}
	c.Log.Debug("goal set", "goal", kind.String(), "target", target)
	return c.Memory.Goal
}

func (c *Context) mapCenter() model.Tile {
	w, h := c.Host.MapSize()
	return model.Tile{X: w / 2, Y: h / 2}
}
