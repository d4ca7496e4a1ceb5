package trace

import (
	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/sim"
)

// Envelope types, in stream order: one header, a round per played round,
// one result.
const (
	TypeHeader = "header"
	TypeRound  = "round"
	TypeResult = "result"
)

// Header describes the arena a trace was recorded on.
type Header struct {
	Match    string          `json:"match"`
	Seed     int64           `json:"seed"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	Symmetry model.Symmetry  `json:"symmetry"`
	Bases    [2][]model.Tile `json:"bases"`
	Wells    []model.Well    `json:"wells"`
	Zones    [][]model.Tile  `json:"zones"`

	// Walls lists every impassable tile.
	Walls []model.Tile `json:"walls"`
}

// HeaderFor captures the static part of a match.
func HeaderFor(m *sim.Match, seed int64) Header {
	mp := m.World.Map
	h := Header{
		Match:    m.ID,
		Seed:     seed,
		Width:    mp.Terrain.Width,
		Height:   mp.Terrain.Height,
		Symmetry: mp.Symmetry,
		Bases:    mp.Bases,
		Wells:    mp.Wells,
		Zones:    mp.Zones,
	}
	for y := range mp.Terrain.Height {
		for x := range mp.Terrain.Width {
			t := model.Tile{X: x, Y: y}
			if mp.Terrain.At(t) == model.Wall {
				h.Walls = append(h.Walls, t)
			}
		}
	}
	return h
}
