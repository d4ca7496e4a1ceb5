package rules

import (
	"math"
	"math/rand"
	"slices"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// wellPickDepth is how many of the nearest sites WeightedWell considers.
const wellPickDepth = 3

// WeightedWell picks one of the three nearest sites of the given kind:
// walking them in ascending distance from `from`, each is taken with
// probability keep, and the last is taken if every other was skipped.
func WeightedWell(wells []model.Well, kind model.ResourceKind, from model.Tile, keep float64, rng *rand.Rand) (model.Well, bool) {
	var candidates []model.Well
	for _, w := range wells {
		if w.Kind == kind {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return model.Well{}, false
	}
	slices.SortStableFunc(candidates, func(a, b model.Well) int {
		return a.Loc.DistanceSquaredTo(from) - b.Loc.DistanceSquaredTo(from)
	})
	candidates = candidates[:min(len(candidates), wellPickDepth)]
	for i, w := range candidates {
		if i == len(candidates)-1 || rng.Float64() < keep {
			return w, true
		}
	}
	return model.Well{}, false
}

// RandomWell picks uniformly among the sites of one kind.
func RandomWell(wells []model.Well, kind model.ResourceKind, rng *rand.Rand) (model.Well, bool) {
	var candidates []model.Well
	for _, w := range wells {
		if w.Kind == kind {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return model.Well{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// RandomZone picks uniformly among the zones held by owner.
func RandomZone(zones []model.Island, owner model.Team, rng *rand.Rand) (model.Island, bool) {
	var candidates []model.Island
	for _, z := range zones {
		if z.Owner == owner {
			candidates = append(candidates, z)
		}
	}
	if len(candidates) == 0 {
		return model.Island{}, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// NearestZone returns the zone held by owner closest to from.
func NearestZone(zones []model.Island, owner model.Team, from model.Tile) (model.Island, bool) {
	var best model.Island
	found := false
	for _, z := range zones {
		if z.Owner != owner {
			continue
		}
		if !found || z.Loc.DistanceSquaredTo(from) < best.Loc.DistanceSquaredTo(from) {
			best, found = z, true
		}
	}
	return best, found
}

// RandomTile picks uniformly from tiles.
func RandomTile(tiles []model.Tile, rng *rand.Rand) (model.Tile, bool) {
	if len(tiles) == 0 {
		return model.Tile{}, false
	}
	return tiles[rng.Intn(len(tiles))], true
}

// ScoutTile picks a random point on a coarse grid of the map.
func ScoutTile(width, height, grid int, rng *rand.Rand) model.Tile {
	cols := max(width/grid, 1)
	rows := max(height/grid, 1)
	return model.Tile{X: rng.Intn(cols) * grid, Y: rng.Intn(rows) * grid}
}

// SpawnTile is the tile rangeSq (squared distance) away from the base in
// direction d. Diagonal steps are worth √2, and the result is never the
// base's own tile.
func SpawnTile(base model.Tile, d model.Direction, rangeSq int) model.Tile {
	div := 1.0
	if d.IsDiagonal() {
		div = math.Sqrt2
	}
	steps := max(int(math.Sqrt(float64(rangeSq)/div)), 1)
	t := base
	for range steps {
		t = t.Add(d)
	}
	return t
}

// PreferredDirection is the cardinal direction from `from` that best points
// at target; ties favour the horizontal axis.
func PreferredDirection(from, target model.Tile) model.Direction {
	dx := target.X - from.X
	dy := target.Y - from.Y
	switch {
	case dx == 0 && dy == 0:
		return model.North
	case abs(dx) >= abs(dy) && dx > 0:
		return model.East
	case abs(dx) >= abs(dy):
		return model.West
	case dy > 0:
		return model.North
	default:
		return model.South
	}
}

// SpawnOrder lists all 8 directions clockwise starting at first.
func SpawnOrder(first model.Direction) []model.Direction {
	if first == model.Center {
		first = model.North
	}
	out := make([]model.Direction, 0, len(model.Compass))
	d := first
	for range model.Compass {
		out = append(out, d)
		d = d.RotateRight()
	}
	return out
}

// WeakestEnemy returns the lowest-health enemy, bases excluded, that passes
// canAttack. kind narrows the search when non-empty.
func WeakestEnemy(robots []model.Robot, enemy model.Team, kind model.RobotType, canAttack func(model.Tile) bool) (model.Robot, bool) {
	var best model.Robot
	found := false
	for _, r := range robots {
		if r.Team != enemy || r.Type == model.Headquarters {
			continue
		}
		if kind != "" && r.Type != kind {
			continue
		}
		if found && r.Health >= best.Health {
			continue
		}
		if !canAttack(r.Loc) {
			continue
		}
		best, found = r, true
	}
	return best, found
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
