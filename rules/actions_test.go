package rules

import (
	"errors"
	"slices"
	"testing"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

func TestBaseFirstTick(t *testing.T) {
	pb, err := NewPlaybook(DefaultDoctrine())
	if err != nil {
		t.Fatal(err)
	}
	f := newFakeHost(model.Headquarters, model.Tile{X: 2, Y: 10})
	c := newTestContext(f, pb.Doctrine, 1)

	fired, err := pb.Engine(model.Headquarters).Evaluate(RuleEnv{Ctx: c})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !slices.Equal(fired, []string{"establish", "spawn-opening"}) {
		t.Errorf("fired = %v, want [establish spawn-opening]", fired)
	}
	if got := f.slots.ReadSlot(0); got != channel.Encode(channel.BaseRecord(f.loc)) {
		t.Errorf("slot 0 = %d, want the base record", got)
	}
	if c.Memory.Preferred != model.East {
		t.Errorf("Preferred = %s, want east", c.Memory.Preferred)
	}
	if len(f.performed) != 1 {
		t.Fatalf("performed %v, want one build", f.performed)
	}
	want := host.BuildRobot(model.Launcher, model.Tile{X: 3, Y: 10})
	if f.performed[0] != want {
		t.Errorf("performed %v, want %v", f.performed[0], want)
	}
	if c.Memory.Spawned != 1 {
		t.Errorf("Spawned = %d, want 1", c.Memory.Spawned)
	}
}

func TestSpawnFallsThroughBeforeAmplifierRound(t *testing.T) {
	d := DefaultDoctrine()
	d.Opening = nil
	d.Spawn = SpawnWeights{Amplifier: 1}
	f := newFakeHost(model.Headquarters, model.Tile{X: 2, Y: 10})
	c := newTestContext(f, d, 1)
	c.Memory.Established, c.Memory.Preferred = true, model.East

	f.round = 100
	if err := ActionSpawn(RuleEnv{Ctx: c}); err != nil {
		t.Fatal(err)
	}
	f.nextTick()
	f.round = 300
	if err := ActionSpawn(RuleEnv{Ctx: c}); err != nil {
		t.Fatal(err)
	}

	want := []host.Action{
		host.BuildRobot(model.Launcher, model.Tile{X: 3, Y: 10}),
		host.BuildRobot(model.Amplifier, model.Tile{X: 5, Y: 10}),
	}
	if !slices.Equal(f.performed, want) {
		t.Errorf("performed %v, want %v", f.performed, want)
	}
}

func TestSpawnSkipsBlockedDirections(t *testing.T) {
	d := DefaultDoctrine()
	d.Opening = []model.RobotType{model.Launcher}
	f := newFakeHost(model.Headquarters, model.Tile{X: 2, Y: 10})
	f.walls[model.Tile{X: 3, Y: 10}] = true
	c := newTestContext(f, d, 1)
	c.Memory.Preferred = model.East

	if err := ActionSpawnOpening(RuleEnv{Ctx: c}); err != nil {
		t.Fatal(err)
	}
	// East is walled, the next heading clockwise is south-east.
	want := host.BuildRobot(model.Launcher, model.Tile{X: 3, Y: 9})
	if len(f.performed) != 1 || f.performed[0] != want {
		t.Errorf("performed %v, want [%v]", f.performed, want)
	}
}

func TestAnchorSavingBlocksSpawn(t *testing.T) {
	pb, err := NewPlaybook(DefaultDoctrine())
	if err != nil {
		t.Fatal(err)
	}
	f := newFakeHost(model.Headquarters, model.Tile{X: 2, Y: 2})
	f.round = 801
	c := newTestContext(f, pb.Doctrine, 1)
	c.Memory.Established, c.Memory.Spawned = true, len(pb.Doctrine.Opening)
	c.Writer.PublishZone(0, model.Tile{X: 10, Y: 10}, model.Neutral)
	refresh(c)
	e := pb.Engine(model.Headquarters)

	fired, err := e.Evaluate(RuleEnv{Ctx: c})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(fired, []string{"build-anchor"}) || len(f.performed) != 0 {
		t.Errorf("fired %v performed %v; want only build-anchor, saving", fired, f.performed)
	}

	f.nextTick()
	f.canAnchor = true
	if _, err := e.Evaluate(RuleEnv{Ctx: c}); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(f.performedKinds(), []host.ActionKind{host.ActBuildAnchor}) {
		t.Errorf("performed %v, want one anchor", f.performedKinds())
	}
	if f.anchors != 1 {
		t.Errorf("anchors = %d, want 1", f.anchors)
	}
}

func TestInferSymmetryPublishes(t *testing.T) {
	f := newFakeHost(model.Headquarters, model.Tile{X: 3, Y: 4})
	f.width, f.height = 20, 10
	c := newTestContext(f, DefaultDoctrine(), 1)
	c.Writer.PublishBase(model.Tile{X: 3, Y: 4}, false)
	c.Writer.PublishBase(model.Tile{X: 16, Y: 5}, true)
	refresh(c)

	if err := ActionInferSymmetry(RuleEnv{Ctx: c}); err != nil {
		t.Fatal(err)
	}
	if got := f.slots.ReadSlot(49); got != int(model.Rotational) {
		t.Errorf("symmetry slot = %d, want %d", got, model.Rotational)
	}

	c.Budget = noBudget{}
	if err := ActionInferSymmetry(RuleEnv{Ctx: c}); !errors.Is(err, host.ErrSuspended) {
		t.Errorf("ActionInferSymmetry without budget = %v, want ErrSuspended", err)
	}
}

func TestDepositOrder(t *testing.T) {
	f := newFakeHost(model.Carrier, model.Tile{X: 5, Y: 5})
	base := model.Tile{X: 5, Y: 6}
	f.sensed = model.Surroundings{Robots: []model.Robot{{ID: 1, Team: model.TeamA, Type: model.Headquarters, Loc: base}}}
	f.cargo[model.Adamantium] = 8
	f.cargo[model.Mana] = 12
	c := newTestContext(f, DefaultDoctrine(), 1)
	c.Writer.PublishBase(base, false)
	refresh(c)
	env := RuleEnv{Ctx: c}

	for range 3 {
		if err := ActionDeposit(env); err != nil {
			t.Fatal(err)
		}
		f.nextTick()
	}

	want := []host.Action{
		host.Transfer(base, model.Mana, 12),
		host.Transfer(base, model.Adamantium, 8),
	}
	if !slices.Equal(f.performed, want) {
		t.Errorf("performed %v, want %v", f.performed, want)
	}
	if c.Memory.Goal.Kind != NoGoal {
		t.Errorf("goal = %s after emptying cargo, want none", c.Memory.Goal.Kind)
	}
}

func TestCollectUntilFull(t *testing.T) {
	f := newFakeHost(model.Carrier, model.Tile{X: 5, Y: 5})
	well := model.Well{Loc: model.Tile{X: 6, Y: 6}, Kind: model.Mana}
	f.sensed = model.Surroundings{Wells: []model.Well{well}}
	c := newTestContext(f, DefaultDoctrine(), 1)
	c.Writer.PublishWell(well)
	refresh(c)
	env := RuleEnv{Ctx: c}

	if err := ActionCollect(env); err != nil {
		t.Fatal(err)
	}
	if f.loc != well.Loc || f.cargo[model.Mana] != 10 {
		t.Fatalf("loc %v cargo %d; want on the well with 10 mana", f.loc, f.cargo[model.Mana])
	}
	if c.Memory.Goal.Kind != GoalCollect {
		t.Errorf("goal = %s, want collect", c.Memory.Goal.Kind)
	}

	f.nextTick()
	f.cargo[model.Mana] = 35
	if err := ActionCollect(env); err != nil {
		t.Fatal(err)
	}
	if f.cargo[model.Mana] != 40 {
		t.Errorf("cargo = %d, want 40", f.cargo[model.Mana])
	}
	if c.Memory.Goal.Kind != NoGoal {
		t.Errorf("goal = %s once full, want none", c.Memory.Goal.Kind)
	}
}

func TestCollectExploresWithoutWells(t *testing.T) {
	f := newFakeHost(model.Carrier, model.Tile{X: 19, Y: 19})
	c := newTestContext(f, DefaultDoctrine(), 1)
	refresh(c)

	err := ActionCollect(RuleEnv{Ctx: c})
	if !errors.Is(err, host.ErrSuspended) {
		t.Fatalf("ActionCollect = %v, want ErrSuspended after one step", err)
	}
	g := c.Memory.Goal
	if g.Kind != GoalExplore || g.Target.X%6 != 0 || g.Target.Y%6 != 0 {
		t.Errorf("goal = %+v, want explore toward a scouting tile", g)
	}
	if c.Nav.Current() == nil || c.Nav.Current().Target != g.Target {
		t.Error("navigation trip not kept across the suspended tick")
	}
}

func TestClaimZone(t *testing.T) {
	f := newFakeHost(model.Carrier, model.Tile{X: 5, Y: 5})
	base := model.Tile{X: 5, Y: 6}
	zone := model.Island{Index: 0, Loc: model.Tile{X: 5, Y: 3}, Owner: model.Neutral}
	f.baseAnchors = 1
	f.sensed = model.Surroundings{Islands: []model.Island{zone}}
	c := newTestContext(f, DefaultDoctrine(), 1)
	c.Writer.PublishBase(base, false)
	refresh(c)
	c.Intel.Publish(c.Writer, f.team, c.Budget)
	refresh(c)
	env := RuleEnv{Ctx: c}

	if !env.NeutralZoneKnown() || !env.AnchorAvailable() {
		t.Fatal("expected a neutral zone and an anchor on offer")
	}
	for range 4 {
		err := ActionClaimZone(env)
		if err != nil && !errors.Is(err, host.ErrSuspended) {
			t.Fatal(err)
		}
		f.nextTick()
	}

	want := []host.ActionKind{host.ActTakeAnchor, host.ActMove, host.ActMove, host.ActPlaceAnchor}
	if !slices.Equal(f.performedKinds(), want) {
		t.Errorf("performed %v, want %v", f.performedKinds(), want)
	}
	if f.anchors != 0 || f.loc != zone.Loc {
		t.Errorf("anchors %d loc %v; want the anchor placed on %v", f.anchors, f.loc, zone.Loc)
	}
}

func TestSeekDefendStations(t *testing.T) {
	d := DefaultDoctrine()
	d.Seek = SeekWeights{Defend: 1}
	f := newFakeHost(model.Launcher, model.Tile{X: 5, Y: 6})
	c := newTestContext(f, d, 1)
	c.Writer.PublishZone(0, model.Tile{X: 5, Y: 8}, model.TeamA)
	refresh(c)
	env := RuleEnv{Ctx: c}

	var err error
	for range 3 {
		if err = ActionSeek(env); !errors.Is(err, host.ErrSuspended) {
			break
		}
		f.nextTick()
	}
	if err != nil {
		t.Fatal(err)
	}
	if f.loc != (model.Tile{X: 5, Y: 8}) {
		t.Errorf("loc = %v, want the own zone", f.loc)
	}
	if !c.Memory.Stationed {
		t.Error("launcher did not station at a zone with no support")
	}
	if c.Memory.Goal.Kind != NoGoal {
		t.Errorf("goal = %s after arriving, want none", c.Memory.Goal.Kind)
	}
}

func TestSeekSwarmGuess(t *testing.T) {
	// Own base (2,2) on a rotational 20x20 map puts the guess at (17,17).
	guess := model.Tile{X: 17, Y: 17}
	start := model.Tile{X: 16, Y: 17}
	tests := []struct {
		name    string
		sensed  []model.Robot
		want    bool
		wantLoc model.Tile
	}{
		{"nothing there", nil, false, guess},
		{"enemy base on the guess", []model.Robot{{ID: 1, Team: model.TeamB, Type: model.Headquarters, Loc: guess}}, true, start},
		{"ally on the guess", []model.Robot{{ID: 2, Team: model.TeamA, Type: model.Carrier, Loc: guess}}, false, start},
		{"enemy base beside the guess", []model.Robot{{ID: 3, Team: model.TeamB, Type: model.Headquarters, Loc: model.Tile{X: 18, Y: 18}}}, false, guess},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeHost(model.Launcher, start)
			f.sensed = model.Surroundings{Robots: tc.sensed}
			c := newTestContext(f, DefaultDoctrine(), 1)
			c.Writer.PublishBase(model.Tile{X: 2, Y: 2}, false)
			c.Writer.PublishSymmetry(model.Rotational)
			refresh(c)

			if err := ActionSeek(RuleEnv{Ctx: c}); err != nil {
				t.Fatal(err)
			}
			if c.Memory.Stationed != tc.want {
				t.Errorf("Stationed = %v, want %v", c.Memory.Stationed, tc.want)
			}
			if f.loc != tc.wantLoc {
				t.Errorf("loc = %v, want %v", f.loc, tc.wantLoc)
			}
			for _, a := range f.performed {
				if a.Kind == host.ActAttack {
					t.Errorf("attacked %v, bases and allies are not targets", a.Target)
				}
			}
		})
	}
}

func TestRetaliateDoesNotKite(t *testing.T) {
	f := newFakeHost(model.Carrier, model.Tile{X: 5, Y: 5})
	f.sensed = model.Surroundings{Robots: []model.Robot{
		{ID: 1, Team: model.TeamB, Type: model.Carrier, Health: 1, Loc: model.Tile{X: 6, Y: 5}},
		{ID: 2, Team: model.TeamB, Type: model.Launcher, Health: 50, Loc: model.Tile{X: 7, Y: 5}},
	}}
	c := newTestContext(f, DefaultDoctrine(), 1)
	refresh(c)

	if err := ActionRetaliate(RuleEnv{Ctx: c}); err != nil {
		t.Fatal(err)
	}
	want := []host.Action{host.Attack(model.Tile{X: 7, Y: 5})}
	if !slices.Equal(f.performed, want) {
		t.Errorf("performed %v, want %v", f.performed, want)
	}
}

func TestAttackWeakestKites(t *testing.T) {
	f := newFakeHost(model.Launcher, model.Tile{X: 5, Y: 5})
	f.sensed = model.Surroundings{Robots: []model.Robot{
		{ID: 2, Team: model.TeamB, Type: model.Launcher, Health: 50, Loc: model.Tile{X: 7, Y: 5}},
	}}
	c := newTestContext(f, DefaultDoctrine(), 1)
	refresh(c)

	if !c.attackWeakest(model.Launcher, true) {
		t.Fatal("attackWeakest found no target")
	}
	if f.loc != (model.Tile{X: 4, Y: 5}) {
		t.Errorf("loc = %v after kiting, want (4,5)", f.loc)
	}
	if c.attackWeakest("", true) {
		t.Error("attacked twice in one tick")
	}
}

func TestHoldStationAttacksZonesFirst(t *testing.T) {
	f := newFakeHost(model.Launcher, model.Tile{X: 5, Y: 5})
	f.sensed = model.Surroundings{Robots: []model.Robot{
		{ID: 2, Team: model.TeamB, Type: model.Launcher, Health: 5, Loc: model.Tile{X: 6, Y: 5}},
	}}
	c := newTestContext(f, DefaultDoctrine(), 1)
	c.Writer.PublishZone(3, model.Tile{X: 5, Y: 7}, model.TeamB)
	refresh(c)
	c.Memory.Stationed = true

	if err := ActionHoldStation(RuleEnv{Ctx: c}); err != nil {
		t.Fatal(err)
	}
	want := []host.Action{host.Attack(model.Tile{X: 5, Y: 7})}
	if !slices.Equal(f.performed, want) {
		t.Errorf("performed %v, want %v", f.performed, want)
	}
}

func TestOrientPicksNearestBase(t *testing.T) {
	f := newFakeHost(model.Launcher, model.Tile{X: 10, Y: 10})
	f.width, f.height = 30, 30
	f.sensed = model.Surroundings{Robots: []model.Robot{
		{ID: 1, Team: model.TeamA, Type: model.Headquarters, Loc: model.Tile{X: 13, Y: 10}},
		{ID: 2, Team: model.TeamA, Type: model.Headquarters, Loc: model.Tile{X: 11, Y: 11}},
		{ID: 3, Team: model.TeamB, Type: model.Headquarters, Loc: model.Tile{X: 10, Y: 11}},
	}}
	c := newTestContext(f, DefaultDoctrine(), 1)
	refresh(c)

	if err := ActionOrient(RuleEnv{Ctx: c}); err != nil {
		t.Fatal(err)
	}
	if !c.Memory.HasHome || c.Memory.Home != (model.Tile{X: 11, Y: 11}) {
		t.Errorf("home = %v (%v), want (11,11)", c.Memory.Home, c.Memory.HasHome)
	}
	if c.Memory.RushRobots != 75 || c.Memory.RushRounds != 375 {
		t.Errorf("rush thresholds = %d, %d; want 75, 375", c.Memory.RushRobots, c.Memory.RushRounds)
	}
}

func TestPatrolTargetOnMap(t *testing.T) {
	f := newFakeHost(model.Amplifier, model.Tile{X: 3, Y: 3})
	c := newTestContext(f, DefaultDoctrine(), 5)
	c.Writer.PublishBase(model.Tile{X: 2, Y: 2}, false)
	c.Writer.PublishWell(model.Well{Loc: model.Tile{X: 4, Y: 1}, Kind: model.Mana})
	refresh(c)

	for range 100 {
		if p := c.patrolTarget(); !f.OnMap(p) {
			t.Fatalf("patrolTarget = %v, off the map", p)
		}
	}
}
