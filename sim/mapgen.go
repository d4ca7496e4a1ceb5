package sim

import (
	"fmt"
	"math/rand"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/symmetry"
)

const (
	MinMapSize = 20
	MaxMapSize = channel.MaxCoord + 1
)

// Map is a generated arena. Team A's features live on one half and team B's
// are their mirror images under Symmetry.
type Map struct {
	Terrain  *model.Terrain
	Symmetry model.Symmetry
	Bases    [2][]model.Tile
	Wells    []model.Well

	// Zones holds every contested zone's tiles, indexed by zone id. The
	// first tile is the one agents report.
	Zones [][]model.Tile
}

type mapBuilder struct {
	w, h  int
	sym   model.Symmetry
	rng   *rand.Rand
	m     *Map
	taken map[model.Tile]bool
}

// GenerateMap builds a symmetric w x h map. An Unknown symmetry is replaced
// by a random concrete one.
func GenerateMap(w, h int, sym model.Symmetry, p MapParams, rng *rand.Rand) (*Map, error) {
	if w < MinMapSize || h < MinMapSize || w > MaxMapSize || h > MaxMapSize {
		return nil, fmt.Errorf("map size %dx%d outside [%d,%d]", w, h, MinMapSize, MaxMapSize)
	}
	if sym == model.Unknown {
		sym = model.KnownSymmetries[rng.Intn(len(model.KnownSymmetries))]
	}
	b := &mapBuilder{
		w:     w,
		h:     h,
		sym:   sym,
		rng:   rng,
		m:     &Map{Terrain: model.NewTerrain(w, h), Symmetry: sym},
		taken: make(map[model.Tile]bool),
	}

	base, ok := b.freeTile(3)
	if !ok {
		return nil, fmt.Errorf("no room for a base")
	}
	b.m.Bases[0] = []model.Tile{base}
	b.m.Bases[1] = []model.Tile{b.mirror(base)}
	b.claim(base)
	for _, d := range model.Compass {
		b.claim(base.Add(d))
	}

	kinds := []model.ResourceKind{model.Adamantium, model.Mana}
	var mirrored []model.Well
	for i := range p.WellsPerSide {
		t, ok := b.freeTile(1)
		if !ok {
			break
		}
		b.claim(t)
		well := model.Well{Loc: t, Kind: kinds[i%len(kinds)]}
		b.m.Wells = append(b.m.Wells, well)
		mirrored = append(mirrored, model.Well{Loc: b.mirror(t), Kind: well.Kind})
	}
	b.m.Wells = append(b.m.Wells, mirrored...)

	var mirroredZones [][]model.Tile
	for range p.ZonesPerSide {
		zone := b.growZone(p.ZoneSize)
		if zone == nil {
			break
		}
		b.m.Zones = append(b.m.Zones, zone)
		mz := make([]model.Tile, len(zone))
		for i, t := range zone {
			mz[i] = b.mirror(t)
		}
		mirroredZones = append(mirroredZones, mz)
	}
	b.m.Zones = append(b.m.Zones, mirroredZones...)

	b.scatterWalls(p.WallDensity, base)
	for range p.CurrentRuns {
		b.current()
	}
	return b.m, nil
}

func (b *mapBuilder) mirror(t model.Tile) model.Tile {
	return symmetry.Mirror(t, b.sym, b.w, b.h, b.rng)
}

// inHalf reports whether t belongs to team A's half. The mirror of a tile in
// the half is never in the half.
func (b *mapBuilder) inHalf(t model.Tile) bool {
	if !b.m.Terrain.OnMap(t) {
		return false
	}
	if b.sym == model.Horizontal {
		return t.Y < b.h/2
	}
	return t.X < b.w/2
}

func (b *mapBuilder) claim(t model.Tile) {
	b.taken[t] = true
	b.taken[b.mirror(t)] = true
}

// freeTile draws an untaken tile of the half at least margin tiles from
// every edge.
func (b *mapBuilder) freeTile(margin int) (model.Tile, bool) {
	for range 200 {
		t := model.Tile{
			X: margin + b.rng.Intn(max(b.w-2*margin, 1)),
			Y: margin + b.rng.Intn(max(b.h-2*margin, 1)),
		}
		if b.inHalf(t) && !b.taken[t] {
			return t, true
		}
	}
	return model.Tile{}, false
}

func (b *mapBuilder) growZone(size int) []model.Tile {
	seed, ok := b.freeTile(2)
	if !ok {
		return nil
	}
	zone := []model.Tile{seed}
	b.claim(seed)
	for len(zone) < size {
		grew := false
		for _, d := range []model.Direction{model.North, model.East, model.South, model.West} {
			t := zone[b.rng.Intn(len(zone))].Add(d)
			if b.inHalf(t) && !b.taken[t] {
				zone = append(zone, t)
				b.claim(t)
				grew = true
				break
			}
		}
		if !grew {
			break
		}
	}
	return zone
}

func (b *mapBuilder) scatterWalls(density float64, base model.Tile) {
	for y := range b.h {
		for x := range b.w {
			t := model.Tile{X: x, Y: y}
			if !b.inHalf(t) || b.taken[t] || t.DistanceSquaredTo(base) <= 8 {
				continue
			}
			if b.rng.Float64() < density {
				b.m.Terrain.Set(t, model.Wall, model.Center)
				b.m.Terrain.Set(b.mirror(t), model.Wall, model.Center)
			}
		}
	}
}

// current lays a straight run of 3 to 5 current tiles flowing along the run.
func (b *mapBuilder) current() {
	start, ok := b.freeTile(2)
	if !ok {
		return
	}
	d := model.Compass[b.rng.Intn(len(model.Compass))]
	md := symmetry.MirrorDirection(d, b.sym)
	t := start
	for range 3 + b.rng.Intn(3) {
		if !b.inHalf(t) || b.taken[t] {
			return
		}
		b.m.Terrain.Set(t, model.Current, d)
		b.m.Terrain.Set(b.mirror(t), model.Current, md)
		t = t.Add(d)
	}
}
