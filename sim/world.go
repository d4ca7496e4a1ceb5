package sim

import (
	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// Stock is a team's banked resources.
type Stock struct {
	Adamantium int `json:"adamantium"`
	Mana       int `json:"mana"`
	Elixir     int `json:"elixir"`
}

func (s *Stock) add(kind model.ResourceKind, n int) {
	switch kind {
	case model.Adamantium:
		s.Adamantium += n
	case model.Mana:
		s.Mana += n
	case model.Elixir:
		s.Elixir += n
	}
}

func (s Stock) covers(ad, mn int) bool { return s.Adamantium >= ad && s.Mana >= mn }

type robot struct {
	id      int
	team    model.Team
	kind    model.RobotType
	loc     model.Tile
	health  int
	cargo   [3]int
	anchors int

	actionReady   bool
	movementReady bool
	dead          bool
}

func (r *robot) view() model.Robot {
	return model.Robot{ID: r.id, Team: r.team, Type: r.kind, Loc: r.loc, Health: r.health}
}

func (r *robot) cargoTotal() int { return r.cargo[0] + r.cargo[1] + r.cargo[2] }

type team struct {
	channel *channel.Array
	stock   Stock
}

type zone struct {
	index  int
	tiles  []model.Tile
	owner  model.Team
	health int
}

func (z *zone) island() model.Island {
	return model.Island{Index: z.index, Loc: z.tiles[0], Owner: z.owner}
}

// World is the authoritative state of one match. It is single-threaded: the
// match loop drives every robot's turn in ID order.
type World struct {
	Params Params
	Map    *Map

	round    int
	nextID   int
	robots   []*robot
	occupied map[model.Tile]*robot
	teams    [2]*team
	zones    []*zone
	zoneAt   map[model.Tile]*zone
	wellAt   map[model.Tile]model.Well

	// Overruns counts turns that spent past their compute budget. The host
	// never preempts an agent; it only reports them.
	Overruns int
}

func NewWorld(m *Map, p Params, layout channel.Layout) *World {
	w := &World{
		Params:   p,
		Map:      m,
		round:    1,
		nextID:   1,
		occupied: make(map[model.Tile]*robot),
		zoneAt:   make(map[model.Tile]*zone),
		wellAt:   make(map[model.Tile]model.Well),
	}
	for i := range w.teams {
		w.teams[i] = &team{
			channel: channel.NewArray(layout.Size),
			stock:   Stock{Adamantium: p.StartAdamantium, Mana: p.StartMana},
		}
	}
	for i, tiles := range m.Zones {
		z := &zone{index: i, tiles: tiles, owner: model.Neutral}
		w.zones = append(w.zones, z)
		for _, t := range tiles {
			w.zoneAt[t] = z
		}
	}
	for _, well := range m.Wells {
		w.wellAt[well.Loc] = well
	}
	for side, bases := range m.Bases {
		for _, b := range bases {
			w.spawn(model.Team(side), model.Headquarters, b)
		}
	}
	return w
}

func (w *World) Round() int { return w.round }

func (w *World) side(t model.Team) *team {
	if t != model.TeamA && t != model.TeamB {
		return nil
	}
	return w.teams[t]
}

// Channel returns a team's shared slot array.
func (w *World) Channel(t model.Team) *channel.Array { return w.side(t).channel }

// Stock returns a team's banked resources.
func (w *World) Stock(t model.Team) Stock { return w.side(t).stock }

func (w *World) spawn(t model.Team, kind model.RobotType, at model.Tile) *robot {
	r := &robot{
		id:     w.nextID,
		team:   t,
		kind:   kind,
		loc:    at,
		health: w.Params.unit(kind).Health,
	}
	w.nextID++
	w.robots = append(w.robots, r)
	w.occupied[at] = r
	return r
}

func (w *World) kill(r *robot) {
	r.dead = true
	if w.occupied[r.loc] == r {
		delete(w.occupied, r.loc)
	}
}

func (w *World) moveRobot(r *robot, to model.Tile) {
	delete(w.occupied, r.loc)
	r.loc = to
	w.occupied[to] = r
}

// Robots returns the living robots in turn order.
func (w *World) Robots() []model.Robot {
	var out []model.Robot
	for _, r := range w.robots {
		if !r.dead {
			out = append(out, r.view())
		}
	}
	return out
}

func (w *World) count(t model.Team) int {
	n := 0
	for _, r := range w.robots {
		if !r.dead && r.team == t {
			n++
		}
	}
	return n
}

// Zones returns every zone with its current owner, by index.
func (w *World) Zones() []model.Island {
	out := make([]model.Island, len(w.zones))
	for i, z := range w.zones {
		out[i] = z.island()
	}
	return out
}

func (w *World) zonesOwned(t model.Team) int {
	n := 0
	for _, z := range w.zones {
		if z.owner == t {
			n++
		}
	}
	return n
}

func (w *World) passable(t model.Tile) bool { return w.Map.Terrain.Info(t).Passable }

// startRound restores every cooldown.
func (w *World) startRound() {
	for _, r := range w.robots {
		r.actionReady = true
		r.movementReady = r.kind != model.Headquarters
	}
}

// endRound pays income, lets currents carry robots, drops the dead and
// advances the clock.
func (w *World) endRound() {
	for _, r := range w.robots {
		if !r.dead && r.kind == model.Headquarters {
			s := &w.side(r.team).stock
			s.Adamantium += w.Params.Income
			s.Mana += w.Params.Income
		}
	}
	w.pushCurrents()

	alive := w.robots[:0]
	for _, r := range w.robots {
		if !r.dead {
			alive = append(alive, r)
		}
	}
	w.robots = alive
	w.round++
}

// pushCurrents moves every robot but a base one step along the current it
// stands on, when the destination is free. Robots are pushed in ID order.
func (w *World) pushCurrents() {
	for _, r := range w.robots {
		if r.dead || r.kind == model.Headquarters {
			continue
		}
		d := w.Map.Terrain.Info(r.loc).Current
		if d == model.Center {
			continue
		}
		to := r.loc.Add(d)
		if w.Map.Terrain.OnMap(to) && w.passable(to) && w.occupied[to] == nil {
			w.moveRobot(r, to)
		}
	}
}

// sense lists what r can see: every other robot, resource site and zone
// with a tile inside its vision radius.
func (w *World) sense(r *robot) model.Surroundings {
	vision := w.Params.unit(r.kind).Vision
	s := model.Surroundings{Round: w.round}
	for _, o := range w.robots {
		if o != r && !o.dead && r.loc.DistanceSquaredTo(o.loc) <= vision {
			s.Robots = append(s.Robots, o.view())
		}
	}
	for _, well := range w.Map.Wells {
		if r.loc.DistanceSquaredTo(well.Loc) <= vision {
			s.Wells = append(s.Wells, well)
		}
	}
	for _, z := range w.zones {
		for _, t := range z.tiles {
			if r.loc.DistanceSquaredTo(t) <= vision {
				s.Islands = append(s.Islands, z.island())
				break
			}
		}
	}
	return s
}
