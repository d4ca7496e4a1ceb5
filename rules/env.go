package rules

import (
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// RuleEnv wraps the agent context and exposes helper methods callable from
// expr expressions. Conditions are compiled against the zero value, so every
// method must only be reached at run time with Ctx set.
type RuleEnv struct {
	Ctx *Context
}

func (e RuleEnv) Round() int { return e.Ctx.Host.Round() }
func (e RuleEnv) ActionReady() bool { return e.Ctx.Host.ActionReady() }
func (e RuleEnv) MovementReady() bool { return e.Ctx.Host.MovementReady() }
func (e RuleEnv) Anchors() int { return e.Ctx.Host.Anchors() }
func (e RuleEnv) HoldingAnchor() bool { return e.Ctx.Host.Anchors() > 0 }
func (e RuleEnv) Established() bool { return e.Ctx.Memory.Established }
func (e RuleEnv) Stationed() bool { return e.Ctx.Memory.Stationed }
func (e RuleEnv) Rushing() bool { return e.Ctx.Rushing() }
func (e RuleEnv) BaseCount() int { return len(e.Ctx.Intel.Bases()) }
func (e RuleEnv) EnemyBaseCount() int { return len(e.Ctx.Intel.EnemyBases()) }
func (e RuleEnv) WellCount() int { return len(e.Ctx.Intel.Wells()) }
func (e RuleEnv) Spawned() int { return e.Ctx.Memory.Spawned }
func (e RuleEnv) Goal() string { return e.Ctx.Memory.Goal.Kind.String() }
func (e RuleEnv) HasGoal() bool { return e.Ctx.Memory.Goal.Kind != NoGoal }
func (e RuleEnv) Symmetry() string { return e.Ctx.Intel.Symmetry().String() }
func (e RuleEnv) UnclaimedZones() int { return len(e.Ctx.Intel.ZonesOwnedBy(model.Neutral)) }
func (e RuleEnv) NeutralZoneKnown() bool { return e.UnclaimedZones() > 0 }

// Cargo is the total carried across every resource kind.
func (e RuleEnv) Cargo() int {
	n := 0
	for _, k := range model.Resources {
		n += e.Ctx.Host.Cargo(k)
	}
	return n
}

func (e RuleEnv) CargoFull() bool { return e.Cargo() >= e.Ctx.Doctrine.CarrierCapacity }

// AnchorAvailable reports whether an adjacent own base would hand over a
// claim token right now.
func (e RuleEnv) AnchorAvailable() bool {
	_, ok := adjacentAnchorBase(e.Ctx)
	return ok
}

// EnemiesInRange counts sensed enemy robots of the given kind (any kind when
// empty) that the robot could attack right now.
func (e RuleEnv) EnemiesInRange(kind string) int {
	n := 0
	for _, r := range e.Ctx.Intel.Surroundings.Robots {
		if r.Team != e.Ctx.Host.Team().Opponent() || r.Type == model.Headquarters {
			continue
		}
		if kind != "" && !containsType([]model.Robot{r}, kind) {
			continue
		}
		if e.Ctx.Host.CanPerform(host.Attack(r.Loc)) {
			n++
		}
	}
	return n
}

// AlliesSensed counts friendly robots of one kind in sensing range.
func (e RuleEnv) AlliesSensed(kind string) int {
	var mine []model.Robot
	for _, r := range e.Ctx.Intel.Surroundings.Robots {
		if r.Team == e.Ctx.Host.Team() && r.ID != e.Ctx.Host.ID() {
			mine = append(mine, r)
		}
	}
	return countType(mine, kind)
}

// AnchorsWanted is the base's claim-token rule: more neutral zones are known
// than the tokens every base is assumed to hold.
func (e RuleEnv) AnchorsWanted() bool {
	return e.UnclaimedZones()-e.Anchors()*e.BaseCount() > 0
}
