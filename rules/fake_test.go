package rules

import (
	"io"
	"log/slog"
	"math/rand"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/intel"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/nav"
)

// fakeHost is a scripted single-robot host: the test fills in what the robot
// senses and the fake applies the legality checks the actions rely on.
type fakeHost struct {
	id         int
	team       model.Team
	kind       model.RobotType
	loc        model.Tile
	round      int
	width      int
	height     int
	robotCount int

	actionReady   bool
	movementReady bool
	cargo         map[model.ResourceKind]int
	anchors       int
	baseAnchors   int
	canAnchor     bool
	walls         map[model.Tile]bool
	// multiMove keeps movement ready after a step, so one call can walk a
	// whole trip.
	multiMove bool

	slots     *channel.Array
	sensed    model.Surroundings
	performed []host.Action
}

func newFakeHost(kind model.RobotType, loc model.Tile) *fakeHost {
	return &fakeHost{
		id:            7,
		team:          model.TeamA,
		kind:          kind,
		loc:           loc,
		round:         1,
		width:         20,
		height:        20,
		robotCount:    1,
		actionReady:   true,
		movementReady: true,
		cargo:         make(map[model.ResourceKind]int),
		walls:         make(map[model.Tile]bool),
		slots:         channel.NewArray(64),
	}
}

func (f *fakeHost) ID() int { return f.id }
func (f *fakeHost) Team() model.Team { return f.team }
func (f *fakeHost) Type() model.RobotType { return f.kind }
func (f *fakeHost) Location() model.Tile { return f.loc }
func (f *fakeHost) Health() int { return 100 }
func (f *fakeHost) Round() int { return f.round }
func (f *fakeHost) MapSize() (int, int) { return f.width, f.height }
func (f *fakeHost) RobotCount() int { return f.robotCount }
func (f *fakeHost) BudgetLeft() int { return 1 << 20 }
func (f *fakeHost) ActionReady() bool { return f.actionReady }
func (f *fakeHost) MovementReady() bool { return f.movementReady }
func (f *fakeHost) Cargo(k model.ResourceKind) int { return f.cargo[k] }
func (f *fakeHost) Anchors() int { return f.anchors }
func (f *fakeHost) ReadSlot(i int) int { return f.slots.ReadSlot(i) }
func (f *fakeHost) CompareAndSwapSlot(i, old, v int) bool { return f.slots.CompareAndSwapSlot(i, old, v) }
func (f *fakeHost) Sense() model.Surroundings { return f.sensed }

func (f *fakeHost) OnMap(t model.Tile) bool {
	return t.X >= 0 && t.Y >= 0 && t.X < f.width && t.Y < f.height
}

func (f *fakeHost) SenseTile(t model.Tile) (model.TileInfo, bool) {
	return model.TileInfo{Passable: !f.walls[t]}, f.OnMap(t)
}

func (f *fakeHost) IsOccupied(t model.Tile) bool {
	_, ok := f.sensed.RobotAt(t)
	return ok
}

func (f *fakeHost) island() (model.Island, bool) {
	for _, z := range f.sensed.Islands {
		if z.Loc == f.loc {
			return z, true
		}
	}
	return model.Island{}, false
}

func (f *fakeHost) cargoTotal() int {
	n := 0
	for _, v := range f.cargo {
		n += v
	}
	return n
}

func (f *fakeHost) CanPerform(a host.Action) bool {
	if a.Kind.IsMovement() {
		next := f.loc.Add(a.Dir)
		return f.movementReady && a.Dir != model.Center && f.OnMap(next) && !f.walls[next] && !f.IsOccupied(next)
	}
	if !f.actionReady {
		return false
	}
	switch a.Kind {
	case host.ActAttack:
		return f.loc.DistanceSquaredTo(a.Target) <= 16
	case host.ActBuildRobot:
		return f.OnMap(a.Target) && a.Target != f.loc && f.loc.DistanceSquaredTo(a.Target) <= 9 &&
			!f.IsOccupied(a.Target) && !f.walls[a.Target]
	case host.ActBuildAnchor:
		return f.canAnchor
	case host.ActTakeAnchor:
		return f.loc.IsAdjacentTo(a.Target) && f.baseAnchors > 0
	case host.ActPlaceAnchor:
		_, on := f.island()
		return f.anchors > 0 && on
	case host.ActCollect:
		return f.loc.DistanceSquaredTo(a.Target) <= 2 && f.cargoTotal() < 40
	case host.ActTransfer:
		return f.loc.DistanceSquaredTo(a.Target) <= 2 && a.Amount > 0 && f.cargo[a.Resource] >= a.Amount
	}
	return false
}

func (f *fakeHost) Perform(a host.Action) error {
	if !f.CanPerform(a) {
		return host.ErrIllegal
	}
	f.performed = append(f.performed, a)
	if a.Kind.IsMovement() {
		f.loc = f.loc.Add(a.Dir)
		f.movementReady = f.multiMove
		return nil
	}
	f.actionReady = false
	switch a.Kind {
	case host.ActBuildAnchor:
		f.anchors++
	case host.ActTakeAnchor:
		f.baseAnchors--
		f.anchors++
	case host.ActPlaceAnchor:
		f.anchors--
	case host.ActCollect:
		kind := model.Mana
		for _, w := range f.sensed.Wells {
			if w.Loc == a.Target {
				kind = w.Kind
			}
		}
		f.cargo[kind] += min(10, 40-f.cargoTotal())
	case host.ActTransfer:
		f.cargo[a.Resource] -= a.Amount
	}
	return nil
}

// nextTick restores both cooldowns and advances the round.
func (f *fakeHost) nextTick() {
	f.round++
	f.actionReady = true
	f.movementReady = true
}

// performedKinds lists the kinds of every performed action, in order.
func (f *fakeHost) performedKinds() []host.ActionKind {
	out := make([]host.ActionKind, len(f.performed))
	for i, a := range f.performed {
		out[i] = a.Kind
	}
	return out
}

type freeBudget struct{}

func (freeBudget) Checkpoint(int) error { return nil }

type noBudget struct{}

func (noBudget) Checkpoint(int) error { return host.ErrSuspended }

func newTestContext(f *fakeHost, d Doctrine, seed int64) *Context {
	d.Validate()
	layout := channel.DefaultLayout()
	c := &Context{
		Host:     f,
		Intel:    intel.New(layout, intel.DefaultCosts()),
		Writer:   channel.NewWriter(f, layout),
		NavCfg:   nav.DefaultConfig(),
		Budget:   freeBudget{},
		Doctrine: d,
		Rand:     rand.New(rand.NewSource(seed)),
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	c.Nav = nav.New(f, c.Budget, c.NavCfg, c.Resync)
	return c
}

// refresh re-reads the context's cache the way the agent does at tick start.
func refresh(c *Context) {
	if err := c.Intel.Refresh(c.Host, c.Budget, intel.Full); err != nil {
		panic(err)
	}
}
