// Package intel holds an agent's Observation Cache: the last decoded contents
// of every channel slot plus what the agent sensed around itself on its most
// recent full refresh.
package intel

import (
	"slices"

	"github.com/nstehr/tidewatch/tidewatch-core/channel"
	"github.com/nstehr/tidewatch/tidewatch-core/host"
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// Costs are the checkpoint estimates charged before each refresh section.
type Costs struct {
	Section int `yaml:"section" json:"section"`
	Zones   int `yaml:"zones" json:"zones"`
	Publish int `yaml:"publish" json:"publish"`
}

func DefaultCosts() Costs {
	return Costs{Section: 100, Zones: 500, Publish: 500}
}

// Depth selects how much a refresh does.
type Depth int

const (
	// Light re-reads the channel only.
	Light Depth = iota
	// Full also re-senses the robot's surroundings.
	Full
)

// Source is what a refresh reads from. host.Controller satisfies it.
type Source interface {
	channel.Slots
	Sense() model.Surroundings
}

// Cache is private to one agent and lives as long as the agent does.
type Cache struct {
	layout  channel.Layout
	costs   Costs
	records map[int]channel.Record
	sym     model.Symmetry

	// Surroundings is replaced on every full refresh.
	Surroundings model.Surroundings
	// Refreshes counts completed refreshes by depth.
	Refreshes [2]int
}

func New(layout channel.Layout, costs Costs) *Cache {
	return &Cache{
		layout:  layout,
		costs:   costs,
		records: make(map[int]channel.Record),
	}
}

func (c *Cache) Layout() channel.Layout { return c.layout }

// Refresh merges the channel into the cache. Write-once kinds are read only
// until their slot is first seen non-empty; zone and symmetry slots are
// always re-read because their tag may change. A checkpoint before each
// section may end the tick, in which case ErrSuspended is returned and the
// cache keeps whatever was merged so far.
func (c *Cache) Refresh(src Source, cp host.Checkpointer, depth Depth) error {
	c.readOnce(src, c.layout.Bases, channel.KindBase, false)

	if err := cp.Checkpoint(c.costs.Section); err != nil {
		return err
	}
	c.readOnce(src, c.layout.EnemyBases, channel.KindEnemyBase, false)

	if err := cp.Checkpoint(c.costs.Section); err != nil {
		return err
	}
	// Wells are appended in order, so the first empty slot ends the scan.
	c.readOnce(src, c.layout.Wells, channel.KindWell, true)

	if err := cp.Checkpoint(c.costs.Zones); err != nil {
		return err
	}
	for i := c.layout.Zones.Start; i <= c.layout.Zones.End; i++ {
		if r, ok := channel.Decode(channel.KindZone, src.ReadSlot(i)); ok {
			c.records[i] = r
		}
	}

	if err := cp.Checkpoint(c.costs.Section); err != nil {
		return err
	}
	r, _ := channel.Decode(channel.KindSymmetry, src.ReadSlot(c.layout.Symmetry))
	c.sym = r.Symmetry

	if depth == Full {
		c.Surroundings = src.Sense()
	}
	c.Refreshes[depth]++
	return nil
}

func (c *Cache) readOnce(src channel.Slots, p channel.Partition, k channel.Kind, stopAtEmpty bool) {
	for i := p.Start; i <= p.End; i++ {
		if _, known := c.records[i]; known {
			continue
		}
		r, ok := channel.Decode(k, src.ReadSlot(i))
		if !ok {
			if stopAtEmpty {
				return
			}
			continue
		}
		c.records[i] = r
	}
}

func (c *Cache) tiles(p channel.Partition) []model.Tile {
	var out []model.Tile
	for i := p.Start; i <= p.End; i++ {
		if r, ok := c.records[i]; ok {
			out = append(out, r.Loc)
		}
	}
	return out
}

// Bases returns the known own-base locations in slot order.
func (c *Cache) Bases() []model.Tile { return c.tiles(c.layout.Bases) }

// EnemyBases returns the known enemy-base locations in slot order.
func (c *Cache) EnemyBases() []model.Tile { return c.tiles(c.layout.EnemyBases) }

// Wells returns the known resource sites in slot order.
func (c *Cache) Wells() []model.Well {
	var out []model.Well
	for i := c.layout.Wells.Start; i <= c.layout.Wells.End; i++ {
		if r, ok := c.records[i]; ok {
			out = append(out, model.Well{Loc: r.Loc, Kind: r.Resource})
		}
	}
	return out
}

// WellsOf filters Wells by kind.
func (c *Cache) WellsOf(kind model.ResourceKind) []model.Well {
	return slices.DeleteFunc(c.Wells(), func(w model.Well) bool { return w.Kind != kind })
}

// Zones returns every known contested zone with its last shared owner.
func (c *Cache) Zones() []model.Island {
	var out []model.Island
	for i := c.layout.Zones.Start; i <= c.layout.Zones.End; i++ {
		if r, ok := c.records[i]; ok {
			out = append(out, model.Island{Index: i - c.layout.Zones.Start, Loc: r.Loc, Owner: r.Owner})
		}
	}
	return out
}

// ZonesOwnedBy filters Zones by owner.
func (c *Cache) ZonesOwnedBy(team model.Team) []model.Island {
	return slices.DeleteFunc(c.Zones(), func(z model.Island) bool { return z.Owner != team })
}

// Zone looks up one zone by its identifier.
func (c *Cache) Zone(index int) (model.Island, bool) {
	slot, ok := c.layout.ZoneSlot(index)
	if !ok {
		return model.Island{}, false
	}
	r, ok := c.records[slot]
	if !ok {
		return model.Island{}, false
	}
	return model.Island{Index: index, Loc: r.Loc, Owner: r.Owner}, true
}

// Symmetry is the last hypothesis read from the channel.
func (c *Cache) Symmetry() model.Symmetry { return c.sym }

// Record returns the cached decoding of one slot.
func (c *Cache) Record(slot int) (channel.Record, bool) {
	r, ok := c.records[slot]
	return r, ok
}
