// Package symmetry infers how the map mirrors one side onto the other from
// the locations agents have shared, and answers "where is the mirror of this
// tile" queries.
package symmetry

import (
	"math/rand"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// Votes counts the observed pairs consistent with each hypothesis.
type Votes struct {
	Rotational int
	Vertical   int
	Horizontal int
}

// Winner returns the hypothesis with the strictly greatest count. Ties and
// the all-zero case give Unknown.
func (v Votes) Winner() model.Symmetry {
	switch {
	case v.Rotational > v.Vertical && v.Rotational > v.Horizontal:
		return model.Rotational
	case v.Vertical > v.Rotational && v.Vertical > v.Horizontal:
		return model.Vertical
	case v.Horizontal > v.Rotational && v.Horizontal > v.Vertical:
		return model.Horizontal
	default:
		return model.Unknown
	}
}

func (v *Votes) add(a, b model.Tile, maxX, maxY int) {
	if a.X+b.X == maxX && a.Y+b.Y == maxY {
		v.Rotational++
	}
	if a.X == b.X && a.Y+b.Y == maxY {
		v.Horizontal++
	}
	if a.X+b.X == maxX && a.Y == b.Y {
		v.Vertical++
	}
}

// Observations are the coordinates the vote runs over.
type Observations struct {
	Bases      []model.Tile
	EnemyBases []model.Tile
	Wells      []model.Tile
}

// Count pairs every own base with every enemy base, and every well with
// every well (self-pairs included), on a width x height map.
func Count(obs Observations, width, height int) Votes {
	var v Votes
	maxX, maxY := width-1, height-1
	for _, b := range obs.Bases {
		for _, e := range obs.EnemyBases {
			v.add(b, e, maxX, maxY)
		}
	}
	for _, a := range obs.Wells {
		for _, b := range obs.Wells {
			v.add(a, b, maxX, maxY)
		}
	}
	return v
}

// Infer is Count followed by Winner.
func Infer(obs Observations, width, height int) (model.Symmetry, Votes) {
	v := Count(obs, width, height)
	return v.Winner(), v
}

// Mirror maps loc to its counterpart under s. When s is Unknown a concrete
// hypothesis is drawn uniformly from rng.
func Mirror(loc model.Tile, s model.Symmetry, width, height int, rng *rand.Rand) model.Tile {
	if s == model.Unknown {
		s = model.KnownSymmetries[rng.Intn(len(model.KnownSymmetries))]
	}
	oppX := width - 1 - loc.X
	oppY := height - 1 - loc.Y
	switch s {
	case model.Vertical:
		return model.Tile{X: oppX, Y: loc.Y}
	case model.Horizontal:
		return model.Tile{X: loc.X, Y: oppY}
	default:
		return model.Tile{X: oppX, Y: oppY}
	}
}

// MirrorDirection maps a heading under s, used when mirroring currents.
func MirrorDirection(d model.Direction, s model.Symmetry) model.Direction {
	dx, dy := d.Dx(), d.Dy()
	switch s {
	case model.Vertical:
		dx = -dx
	case model.Horizontal:
		dy = -dy
	default:
		dx, dy = -dx, -dy
	}
	return model.DirectionFromDelta(dx, dy)
}
