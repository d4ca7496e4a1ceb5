package rules

import (
	"strings"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// typed is a generic constraint for any model type with a TypeName accessor.
type typed interface {
	TypeName() string
}

// containsType returns true if any item's TypeName matches t (case-insensitive).
func containsType[T typed](items []T, t string) bool {
	for _, item := range items {
		if strings.EqualFold(item.TypeName(), t) {
			return true
		}
	}
	return false
}

// countType counts items whose TypeName matches t (case-insensitive).
func countType[T typed](items []T, t string) int {
	n := 0
	for _, item := range items {
		if strings.EqualFold(item.TypeName(), t) {
			n++
		}
	}
	return n
}

// role describes the capabilities of one robot kind.
type role struct {
	mobile          bool // walks, so it publishes what it senses every tick
	ignoresCurrents bool // may step against a current
	combat          bool // worth retaliating against
	spawnRange      func(d Doctrine) int
}

// roles is the static registry of robot kinds. Boosters and destabilizers
// have no behaviour yet; their empty entries keep them out of publication.
var roles = map[model.RobotType]role{
	model.Headquarters: {},
	model.Carrier:      {mobile: true, ignoresCurrents: true, spawnRange: func(d Doctrine) int { return d.SpawnRange }},
	model.Launcher:     {mobile: true, combat: true, spawnRange: func(d Doctrine) int { return d.LauncherRange }},
	model.Amplifier:    {mobile: true, spawnRange: func(d Doctrine) int { return d.SpawnRange }},
	model.Booster:      {},
	model.Destabilizer: {},
}

// IsMobile reports whether robots of this kind move around the map.
func IsMobile(rt model.RobotType) bool { return roles[rt].mobile }

// IsCombat reports whether robots of this kind deal damage.
func IsCombat(rt model.RobotType) bool { return roles[rt].combat }

// IgnoresCurrents reports whether robots of this kind may walk against a current.
func IgnoresCurrents(rt model.RobotType) bool { return roles[rt].ignoresCurrents }

// SpawnRange is how far from the base (squared) a kind is placed.
func SpawnRange(rt model.RobotType, d Doctrine) int {
	if r := roles[rt]; r.spawnRange != nil {
		return r.spawnRange(d)
	}
	return d.SpawnRange
}
