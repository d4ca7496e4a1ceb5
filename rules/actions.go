package rules

import (
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/nav"
	"github.com/nstehr/tidewatch/tidewatch-core/symmetry"
)

// --- Setup ---

// ActionEstablish runs on a base's first activation: it records its own
// location on the channel and picks the direction it spawns toward first.
func ActionEstablish(env RuleEnv) error {
	c := env.Ctx
	loc := c.Host.Location()
	out := c.Writer.PublishBase(loc, false)
	c.Memory.Home, c.Memory.HasHome = loc, true
	c.Memory.Preferred = PreferredDirection(loc, c.mapCenter())
	c.Memory.Established = true
	c.Log.Info("base established", "loc", loc, "write", out.String(), "preferred", c.Memory.Preferred.String())
	return c.Resense()
}

// ActionOrient runs on a mobile robot's first activation: it remembers the
// base it was built by and latches the rush thresholds for this map.
func ActionOrient(env RuleEnv) error {
	c := env.Ctx
	loc := c.Host.Location()
	var candidates []model.Tile
	for _, r := range c.Intel.Surroundings.Robots {
		if r.Team == c.Host.Team() && r.Type == model.Headquarters {
			candidates = append(candidates, r.Loc)
		}
	}
	if len(candidates) == 0 {
		candidates = c.Intel.Bases()
	}
	for _, b := range candidates {
		if !c.Memory.HasHome || b.DistanceSquaredTo(loc) < c.Memory.Home.DistanceSquaredTo(loc) {
			c.Memory.Home, c.Memory.HasHome = b, true
		}
	}
	w, h := c.Host.MapSize()
	c.Memory.RushRobots, c.Memory.RushRounds = c.Doctrine.RushThresholds(w, h)
	c.Memory.Established = true
	c.Log.Debug("oriented", "home", c.Memory.Home, "hasHome", c.Memory.HasHome,
		"rushRobots", c.Memory.RushRobots, "rushRounds", c.Memory.RushRounds)
	return nil
}

// --- Base ---

func ActionReportChannel(env RuleEnv) error {
	logChannelDiagnostics(env)
	return nil
}

// ActionInferSymmetry votes over everything cached and publishes the winner.
func ActionInferSymmetry(env RuleEnv) error {
	c := env.Ctx
	if err := c.Checkpoint(c.Doctrine.SymmetryCost); err != nil {
		return err
	}
	obs := symmetry.Observations{
		Bases:      c.Intel.Bases(),
		EnemyBases: c.Intel.EnemyBases(),
	}
	for _, w := range c.Intel.Wells() {
		obs.Wells = append(obs.Wells, w.Loc)
	}
	w, h := c.Host.MapSize()
	s, votes := symmetry.Infer(obs, w, h)
	if out := c.Writer.PublishSymmetry(s); out.Wrote() {
		c.Log.Info("symmetry published", "symmetry", s.String(),
			"rotational", votes.Rotational, "vertical", votes.Vertical, "horizontal", votes.Horizontal)
	}
	return nil
}

// ActionBuildAnchor builds a claim token, or saves resources for one by
// skipping production this tick.
func ActionBuildAnchor(env RuleEnv) error {
	c := env.Ctx
	if host.TryPerform(c.Host, host.BuildAnchor()) {
		c.Log.Info("anchor built", "anchors", c.Host.Anchors(), "neutralZones", env.UnclaimedZones())
		return nil
	}
	c.Log.Debug("saving for anchor")
	return nil
}

// ActionSpawnOpening builds the next kind of the fixed opening sequence.
func ActionSpawnOpening(env RuleEnv) error {
	c := env.Ctx
	if c.Memory.Spawned >= len(c.Doctrine.Opening) {
		return nil
	}
	kind := c.Doctrine.Opening[c.Memory.Spawned]
	_, err := c.spawn(func() []model.RobotType { return []model.RobotType{kind} })
	return err
}

// ActionSpawn draws a kind per candidate direction and builds the first one
// the host allows.
func ActionSpawn(env RuleEnv) error {
	c := env.Ctx
	_, err := c.spawn(c.spawnDraw)
	return err
}

// spawn walks the spawn directions starting at the preferred one and stops
// at the first legal build.
func (c *Context) spawn(kinds func() []model.RobotType) (bool, error) {
	base := c.Host.Location()
	for _, d := range SpawnOrder(c.Memory.Preferred) {
		if err := c.Checkpoint(c.Doctrine.SpawnCost); err != nil {
			return false, err
		}
		for _, rt := range kinds() {
			at := SpawnTile(base, d, SpawnRange(rt, c.Doctrine))
			if host.TryPerform(c.Host, host.BuildRobot(rt, at)) {
				c.Memory.Spawned++
				c.Log.Debug("spawned", "kind", rt, "at", at, "spawned", c.Memory.Spawned)
				return true, nil
			}
		}
	}
	return false, nil
}

// spawnDraw returns the kinds to try, in order, for one weighted draw. A
// drawn kind the host refuses falls through to the cheaper kinds after it.
func (c *Context) spawnDraw() []model.RobotType {
	w := c.Doctrine.Spawn
	n := c.Rand.Intn(w.total())
	switch {
	case n < w.Amplifier && c.Host.Round() > c.Doctrine.AmplifierAfter:
		return []model.RobotType{model.Amplifier, model.Launcher, model.Carrier}
	case n < w.Amplifier+w.Launcher:
		return []model.RobotType{model.Launcher, model.Carrier}
	default:
		return []model.RobotType{model.Carrier}
	}
}

// --- Hauler ---

// ActionRetaliate hits the weakest enemy combat unit in reach.
func ActionRetaliate(env RuleEnv) error {
	c := env.Ctx
	if err := c.Checkpoint(c.Doctrine.RetaliateCost); err != nil {
		return err
	}
	c.attackWeakest(model.Launcher, false)
	return nil
}

// ActionClaimZone picks up a claim token from an adjacent base if needed,
// walks to the nearest neutral zone and claims it.
func ActionClaimZone(env RuleEnv) error {
	c := env.Ctx
	if c.Host.Anchors() == 0 {
		if err := c.Checkpoint(c.Doctrine.ClaimCost); err != nil {
			return err
		}
		base, ok := adjacentAnchorBase(c)
		if !ok || !host.TryPerform(c.Host, host.TakeAnchor(base)) {
			return nil
		}
		c.Log.Info("anchor taken", "base", base)
	}

	zone, ok := NearestZone(c.Intel.Zones(), model.Neutral, c.Host.Location())
	if !ok {
		return nil
	}
	st, err := c.Nav.MoveTo(zone.Loc, c.navOptions(0))
	if err != nil {
		return err
	}
	if st != nav.OnTarget {
		return nil
	}
	if err := c.Checkpoint(c.Doctrine.ClaimCost); err != nil {
		return err
	}
	if z, ok := c.Intel.Zone(zone.Index); ok && z.Owner == c.Host.Team() {
		return nil
	}
	if !host.TryPerform(c.Host, host.PlaceAnchor()) {
		return nil
	}
	c.Log.Info("zone claimed", "zone", zone.Index, "loc", zone.Loc)
	return c.Resense()
}

// ActionDeposit walks to an own base and hands over cargo one kind per tick,
// in deposit order, until empty.
func ActionDeposit(env RuleEnv) error {
	c := env.Ctx
	g := c.Memory.Goal
	if g.Kind != GoalDeposit {
		base, ok := RandomTile(c.Intel.Bases(), c.Rand)
		if !ok {
			return nil
		}
		g = c.setGoal(GoalDeposit, base, 0)
	}

	st, err := c.Nav.MoveTo(g.Target, c.navOptions(g.Tolerance))
	if err != nil {
		return err
	}
	if st == nav.Failed {
		c.clearGoal()
		return nil
	}

	for _, kind := range model.Resources {
		amount := c.Host.Cargo(kind)
		if amount == 0 {
			continue
		}
		if !c.Host.ActionReady() {
			return nil
		}
		if !host.TryPerform(c.Host, host.Transfer(g.Target, kind, amount)) {
			c.clearGoal()
			return nil
		}
		c.Log.Debug("deposited", "kind", kind.String(), "amount", amount, "base", g.Target)
		return nil
	}
	c.clearGoal()
	return nil
}

// ActionCollect walks to a chosen resource site and gathers until full or
// blocked. With no known site the hauler explores instead.
func ActionCollect(env RuleEnv) error {
	c := env.Ctx
	g := c.Memory.Goal
	if g.Kind != GoalCollect {
		if picked, ok := c.chooseWell(); ok {
			g = picked
		} else if g.Kind != GoalExplore {
			w, h := c.Host.MapSize()
			g = c.setGoal(GoalExplore, ScoutTile(w, h, c.Doctrine.ScoutGrid, c.Rand), 0)
		}
	}

	st, err := c.Nav.MoveTo(g.Target, c.navOptions(0))
	if err != nil {
		return err
	}
	if g.Kind == GoalExplore || st == nav.Failed || env.CargoFull() {
		c.clearGoal()
		return nil
	}
	if !c.Host.ActionReady() {
		return nil
	}
	if !host.TryPerform(c.Host, host.Collect(g.Target)) {
		c.clearGoal()
		return nil
	}
	if env.CargoFull() {
		c.clearGoal()
	}
	return nil
}

// chooseWell prefers a mana site with probability ManaBias, otherwise an
// adamantium site, each picked by WeightedWell from the hauler's home base.
func (c *Context) chooseWell() (Goal, bool) {
	from := c.Host.Location()
	if c.Memory.HasHome {
		from = c.Memory.Home
	}
	wells := c.Intel.Wells()
	keep := c.Doctrine.WellPickChance

	target, ok := WeightedWell(wells, model.Adamantium, from, keep, c.Rand)
	if mana, found := WeightedWell(wells, model.Mana, from, keep, c.Rand); found {
		if !ok || c.Rand.Float64() < c.Doctrine.ManaBias {
			target, ok = mana, true
		}
	}
	if !ok {
		return Goal{}, false
	}
	return c.setGoal(GoalCollect, target.Loc, 0), true
}

func adjacentAnchorBase(c *Context) (model.Tile, bool) {
	loc := c.Host.Location()
	for _, b := range c.Intel.Bases() {
		if loc.IsAdjacentTo(b) && c.Host.CanPerform(host.TakeAnchor(b)) {
			return b, true
		}
	}
	return model.Tile{}, false
}

// --- Combat ---

// ActionRush heads for the map center, fighting on the way.
func ActionRush(env RuleEnv) error {
	c := env.Ctx
	_, err := c.Nav.MoveTo(c.mapCenter(), c.navOptions(0))
	return err
}

// ActionHoldStation stops moving and attacks whatever is in reach: enemy
// zone anchors first, then enemy combat units, then anything else.
func ActionHoldStation(env RuleEnv) error {
	c := env.Ctx
	for _, z := range c.Intel.ZonesOwnedBy(c.Host.Team().Opponent()) {
		if !c.Host.ActionReady() {
			break
		}
		if host.TryPerform(c.Host, host.Attack(z.Loc)) {
			c.Log.Debug("attacked zone", "zone", z.Index)
		}
	}
	c.skirmish()
	return nil
}

// ActionSeek commits to a weighted goal (defend an own zone, raid an enemy
// zone, swarm an enemy base) and settles there when support is thin.
func ActionSeek(env RuleEnv) error {
	c := env.Ctx
	g := c.Memory.Goal
	if g.Kind == NoGoal {
		var ok bool
		if g, ok = c.chooseSeekGoal(); !ok {
			return nil
		}
	}

	st, err := c.Nav.MoveTo(g.Target, c.navOptions(g.Tolerance))
	if err != nil {
		return err
	}
	if g.Kind == GoalSwarmGuess && st == nav.Adjacent {
		// Only what stands on the guessed tile now confirms it.
		if err := c.Resense(); err != nil {
			return err
		}
	}
	c.clearGoal()
	if st == nav.Failed {
		return nil
	}

	allies := env.AlliesSensed(string(model.Launcher))
	switch g.Kind {
	case GoalDefend:
		c.Memory.Stationed = allies < c.Doctrine.DefendSupport
	case GoalRaid:
		c.Memory.Stationed = allies < c.Doctrine.RaidSupport
	case GoalSwarm:
		c.Memory.Stationed = true
	case GoalSwarmGuess:
		r, ok := c.Intel.Surroundings.RobotAt(g.Target)
		c.Memory.Stationed = st == nav.Adjacent && ok &&
			r.Team == c.Host.Team().Opponent() && r.Type == model.Headquarters
	}
	if c.Memory.Stationed {
		c.Log.Info("stationed", "goal", g.Kind.String(), "at", c.Host.Location(), "allies", allies)
	}
	return nil
}

func (c *Context) chooseSeekGoal() (Goal, bool) {
	d := c.Doctrine
	team := c.Host.Team()
	zones := c.Intel.Zones()
	n := c.Rand.Intn(d.Seek.total())

	if n < d.Seek.Defend {
		if z, ok := RandomZone(zones, team, c.Rand); ok {
			return c.setGoal(GoalDefend, z.Loc, 0), true
		}
	}
	if n < d.Seek.Defend+d.Seek.Raid {
		if z, ok := RandomZone(zones, team.Opponent(), c.Rand); ok {
			return c.setGoal(GoalRaid, z.Loc, 0), true
		}
	}
	if b, ok := RandomTile(c.Intel.EnemyBases(), c.Rand); ok {
		return c.setGoal(GoalSwarm, b, d.SwarmTolerance), true
	}
	if b, ok := RandomTile(c.Intel.Bases(), c.Rand); ok {
		w, h := c.Host.MapSize()
		guess := symmetry.Mirror(b, c.Intel.Symmetry(), w, h, c.Rand)
		// Exact tile: the guess is confirmed by arriving next to a base on it.
		return c.setGoal(GoalSwarmGuess, guess, 0), true
	}
	return Goal{}, false
}

// skirmish is one round of opportunistic fire: enemy combat units first.
func (c *Context) skirmish() {
	c.attackWeakest(model.Launcher, true)
	c.attackWeakest("", true)
}

// attackWeakest hits the lowest-health attackable enemy of kind (any kind
// when empty). After hitting a combat unit a kiting robot steps away from it.
func (c *Context) attackWeakest(kind model.RobotType, kite bool) bool {
	if !c.Host.ActionReady() {
		return false
	}
	enemy := c.Host.Team().Opponent()
	target, ok := WeakestEnemy(c.Intel.Surroundings.Robots, enemy, kind, func(t model.Tile) bool {
		return c.Host.CanPerform(host.Attack(t))
	})
	if !ok || c.Host.Perform(host.Attack(target.Loc)) != nil {
		return false
	}
	c.Log.Debug("attacked", "target", target.ID, "type", target.Type, "health", target.Health)

	if !kite || !IsCombat(target.Type) {
		return true
	}
	away := c.Host.Location().DirectionTo(target.Loc).Opposite()
	for _, d := range []model.Direction{away, away.RotateLeft(), away.RotateRight()} {
		if host.TryPerform(c.Host, host.Move(d)) {
			break
		}
	}
	return true
}

// navOptions tunes navigation for the robot's kind: combat units fight on
// the way, hold position on a fixed cadence and abort when the rush ends.
func (c *Context) navOptions(tolerance int) nav.Options {
	rt := c.Host.Type()
	opts := nav.Options{Tolerance: tolerance, IgnoreCurrents: IgnoresCurrents(rt)}
	if IsCombat(rt) {
		opts.Skirmish = func() error {
			c.skirmish()
			return nil
		}
		opts.Urgent = func() bool { return !c.Rushing() }
		opts.Hold = func() bool {
			every := c.NavCfg.HoldEvery
			return every > 0 && c.Host.Round()%every == 0
		}
	}
	return opts
}

// --- Support ---

// ActionPatrol walks toward a random guess at something worth seeing.
func ActionPatrol(env RuleEnv) error {
	c := env.Ctx
	g := c.Memory.Goal
	if g.Kind != GoalPatrol {
		g = c.setGoal(GoalPatrol, c.patrolTarget(), 0)
	}
	if _, err := c.Nav.MoveTo(g.Target, c.navOptions(0)); err != nil {
		return err
	}
	c.clearGoal()
	return nil
}

// patrolTarget mirrors an own base, a resource site or an own zone through
// the map symmetry, or falls back to a scouting tile.
func (c *Context) patrolTarget() model.Tile {
	w, h := c.Host.MapSize()
	sym := c.Intel.Symmetry()
	switch c.Rand.Intn(4) {
	case 0:
		if b, ok := RandomTile(c.Intel.Bases(), c.Rand); ok {
			return symmetry.Mirror(b, sym, w, h, c.Rand)
		}
	case 1:
		wells := c.Intel.Wells()
		ad, adOK := RandomWell(wells, model.Adamantium, c.Rand)
		mn, mnOK := RandomWell(wells, model.Mana, c.Rand)
		pick, ok := ad, adOK
		if mnOK && (c.Rand.Intn(2) == 1 || !adOK) {
			pick, ok = mn, true
		}
		if ok {
			return symmetry.Mirror(pick.Loc, sym, w, h, c.Rand)
		}
	case 2:
		if z, ok := RandomZone(c.Intel.Zones(), c.Host.Team(), c.Rand); ok {
			return symmetry.Mirror(z.Loc, sym, w, h, c.Rand)
		}
	}
	return ScoutTile(w, h, c.Doctrine.ScoutGrid, c.Rand)
}
