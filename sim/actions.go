package sim

import (
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// legal reports whether r may perform a right now. It never mutates state.
func (w *World) legal(r *robot, a host.Action) bool {
	if r.dead {
		return false
	}
	if a.Kind.IsMovement() {
		return w.canMove(r, a.Dir)
	}
	if !r.actionReady {
		return false
	}
	switch a.Kind {
	case host.ActAttack:
		return w.canAttack(r, a.Target)
	case host.ActBuildRobot:
		return w.canBuild(r, a.Robot, a.Target)
	case host.ActBuildAnchor:
		return r.kind == model.Headquarters &&
			w.side(r.team).stock.covers(w.Params.AnchorAdamantium, w.Params.AnchorMana)
	case host.ActTakeAnchor:
		base := w.occupied[a.Target]
		return r.kind == model.Carrier && r.anchors == 0 && base != nil &&
			base.team == r.team && base.kind == model.Headquarters &&
			base.anchors > 0 && r.loc.IsAdjacentTo(a.Target)
	case host.ActPlaceAnchor:
		z := w.zoneAt[r.loc]
		return r.anchors > 0 && z != nil && z.owner == model.Neutral
	case host.ActCollect:
		_, ok := w.wellAt[a.Target]
		return ok && r.kind == model.Carrier && r.loc.DistanceSquaredTo(a.Target) <= w.Params.HandRadius &&
			r.cargoTotal() < w.Params.CarrierCapacity
	case host.ActTransfer:
		base := w.occupied[a.Target]
		if a.Resource < 0 || int(a.Resource) >= len(r.cargo) {
			return false
		}
		return base != nil && base.team == r.team && base.kind == model.Headquarters &&
			r.loc.DistanceSquaredTo(a.Target) <= w.Params.HandRadius &&
			a.Amount > 0 && r.cargo[a.Resource] >= a.Amount
	}
	return false
}

func (w *World) canMove(r *robot, d model.Direction) bool {
	if r.kind == model.Headquarters || !r.movementReady || d == model.Center {
		return false
	}
	to := r.loc.Add(d)
	return w.Map.Terrain.OnMap(to) && w.passable(to) && w.occupied[to] == nil
}

// damage is what one attack by r deals. A hauler throws its cargo.
func (w *World) damage(r *robot) int {
	if r.kind == model.Carrier {
		return r.cargoTotal() / 5
	}
	return w.Params.unit(r.kind).Damage
}

func (w *World) canAttack(r *robot, t model.Tile) bool {
	if r.loc.DistanceSquaredTo(t) > w.Params.unit(r.kind).Reach || w.damage(r) <= 0 {
		return false
	}
	if o := w.occupied[t]; o != nil && o.team != r.team && o.kind != model.Headquarters {
		return true
	}
	z := w.zoneAt[t]
	return z != nil && r.kind == model.Launcher && z.owner == r.team.Opponent()
}

func (w *World) canBuild(r *robot, kind model.RobotType, at model.Tile) bool {
	if r.kind != model.Headquarters || kind == model.Headquarters {
		return false
	}
	u, ok := w.Params.Units[kind]
	if !ok {
		return false
	}
	if at == r.loc || r.loc.DistanceSquaredTo(at) > w.Params.unit(r.kind).Reach {
		return false
	}
	if !w.Map.Terrain.OnMap(at) || !w.passable(at) || w.occupied[at] != nil {
		return false
	}
	return w.count(r.team) < w.Params.MaxRobots && w.side(r.team).stock.covers(u.Adamantium, u.Mana)
}

// apply carries out a legal action and spends the matching cooldown.
func (w *World) apply(r *robot, a host.Action) {
	if a.Kind.IsMovement() {
		w.moveRobot(r, r.loc.Add(a.Dir))
		r.movementReady = false
		return
	}
	r.actionReady = false
	stock := &w.side(r.team).stock

	switch a.Kind {
	case host.ActAttack:
		dmg := w.damage(r)
		if r.kind == model.Carrier {
			r.cargo = [3]int{}
		}
		if o := w.occupied[a.Target]; o != nil && o.team != r.team {
			o.health -= dmg
			if o.health <= 0 {
				w.kill(o)
			}
			return
		}
		z := w.zoneAt[a.Target]
		z.health -= dmg
		if z.health <= 0 {
			z.owner = model.Neutral
			z.health = 0
		}
	case host.ActBuildRobot:
		u := w.Params.unit(a.Robot)
		stock.Adamantium -= u.Adamantium
		stock.Mana -= u.Mana
		w.spawn(r.team, a.Robot, a.Target)
	case host.ActBuildAnchor:
		stock.Adamantium -= w.Params.AnchorAdamantium
		stock.Mana -= w.Params.AnchorMana
		r.anchors++
	case host.ActTakeAnchor:
		w.occupied[a.Target].anchors--
		r.anchors++
	case host.ActPlaceAnchor:
		z := w.zoneAt[r.loc]
		r.anchors--
		z.owner = r.team
		z.health = w.Params.AnchorHealth
	case host.ActCollect:
		kind := w.wellAt[a.Target].Kind
		r.cargo[kind] += min(w.Params.CollectAmount, w.Params.CarrierCapacity-r.cargoTotal())
	case host.ActTransfer:
		r.cargo[a.Resource] -= a.Amount
		stock.add(a.Resource, a.Amount)
	}
}
