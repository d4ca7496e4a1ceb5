package rules

import (
	"math"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// SpawnWeights are the relative odds of each kind in the base's weighted
// production draw once the opening is done.
type SpawnWeights struct {
	Amplifier int `yaml:"amplifier" json:"amplifier"`
	Launcher  int `yaml:"launcher" json:"launcher"`
	Carrier   int `yaml:"carrier" json:"carrier"`
}

func (w SpawnWeights) total() int { return w.Amplifier + w.Launcher + w.Carrier }

// SeekWeights are the relative odds of a combat unit's seek goals.
type SeekWeights struct {
	Defend int `yaml:"defend" json:"defend"`
	Raid   int `yaml:"raid" json:"raid"`
	Swarm  int `yaml:"swarm" json:"swarm"`
}

func (w SeekWeights) total() int { return w.Defend + w.Raid + w.Swarm }

// Doctrine holds every threshold and weight the role rule sets are compiled
// from. The compiler interpolates these into rule conditions and actions read
// them at run time.
type Doctrine struct {
	Name string `yaml:"name" json:"name"`

	// Base.
	Opening        []model.RobotType `yaml:"opening" json:"opening"`
	Spawn          SpawnWeights      `yaml:"spawn_weights" json:"spawn_weights"`
	AmplifierAfter int               `yaml:"amplifier_after" json:"amplifier_after"`
	AnchorAfter    int               `yaml:"anchor_after" json:"anchor_after"`
	LauncherRange  int               `yaml:"launcher_spawn_range" json:"launcher_spawn_range"`
	SpawnRange     int               `yaml:"spawn_range" json:"spawn_range"`
	SymmetryCost   int               `yaml:"symmetry_cost" json:"symmetry_cost"`
	SpawnCost      int               `yaml:"spawn_cost" json:"spawn_cost"`
	DiagnosticsGap int               `yaml:"diagnostics_every" json:"diagnostics_every"`

	// Hauler.
	CarrierCapacity int     `yaml:"carrier_capacity" json:"carrier_capacity"`
	ManaBias        float64 `yaml:"mana_bias" json:"mana_bias"`
	WellPickChance  float64 `yaml:"well_pick_chance" json:"well_pick_chance"`
	ClaimCost       int     `yaml:"claim_cost" json:"claim_cost"`
	RetaliateCost   int     `yaml:"retaliate_cost" json:"retaliate_cost"`

	// Combat.
	RushPopulation float64     `yaml:"rush_population" json:"rush_population"`
	RushRounds     int         `yaml:"rush_rounds_per_robot" json:"rush_rounds_per_robot"`
	Seek           SeekWeights `yaml:"seek_weights" json:"seek_weights"`
	DefendSupport  int         `yaml:"defend_support" json:"defend_support"`
	RaidSupport    int         `yaml:"raid_support" json:"raid_support"`
	SwarmTolerance int         `yaml:"swarm_tolerance" json:"swarm_tolerance"`

	// Support.
	ScoutGrid int `yaml:"scout_grid" json:"scout_grid"`
}

// DefaultDoctrine returns the tuned baseline.
func DefaultDoctrine() Doctrine {
	return Doctrine{
		Name: "Tidewatch",
		Opening: []model.RobotType{
			model.Launcher, model.Launcher, model.Carrier, model.Amplifier,
			model.Carrier, model.Carrier, model.Carrier,
		},
		Spawn:          SpawnWeights{Amplifier: 1, Launcher: 53, Carrier: 6},
		AmplifierAfter: 250,
		AnchorAfter:    750,
		LauncherRange:  1,
		SpawnRange:     9,
		SymmetryCost:   2000,
		SpawnCost:      400,
		DiagnosticsGap: 100,

		CarrierCapacity: 40,
		ManaBias:        0.7,
		WellPickChance:  2.0 / 3.0,
		ClaimCost:       200,
		RetaliateCost:   50,

		RushPopulation: 1.25,
		RushRounds:     5,
		Seek:           SeekWeights{Defend: 30, Raid: 30, Swarm: 40},
		DefendSupport:  3,
		RaidSupport:    4,
		SwarmTolerance: 3,

		ScoutGrid: 6,
	}
}

// Validate clamps every field to its valid range and drops unknown kinds
// from the opening.
func (d *Doctrine) Validate() {
	def := DefaultDoctrine()

	opening := d.Opening[:0:0]
	for _, rt := range d.Opening {
		if parsed, ok := model.ParseRobotType(string(rt)); ok && parsed != model.Headquarters {
			opening = append(opening, parsed)
		}
	}
	d.Opening = opening

	d.Spawn.Amplifier = max(d.Spawn.Amplifier, 0)
	d.Spawn.Launcher = max(d.Spawn.Launcher, 0)
	d.Spawn.Carrier = max(d.Spawn.Carrier, 0)
	if d.Spawn.total() == 0 {
		d.Spawn = def.Spawn
	}
	d.AmplifierAfter = max(d.AmplifierAfter, 0)
	d.AnchorAfter = max(d.AnchorAfter, 0)
	d.LauncherRange = clampInt(d.LauncherRange, 1, 20)
	d.SpawnRange = clampInt(d.SpawnRange, 1, 20)
	d.SymmetryCost = max(d.SymmetryCost, 0)
	d.SpawnCost = max(d.SpawnCost, 0)
	d.DiagnosticsGap = clampInt(d.DiagnosticsGap, 1, 10000)

	d.CarrierCapacity = clampInt(d.CarrierCapacity, 1, 1000)
	d.ManaBias = clamp(d.ManaBias, 0, 1)
	d.WellPickChance = clamp(d.WellPickChance, 0.05, 1)
	d.ClaimCost = max(d.ClaimCost, 0)
	d.RetaliateCost = max(d.RetaliateCost, 0)

	d.RushPopulation = clamp(d.RushPopulation, 0, 10)
	d.RushRounds = clampInt(d.RushRounds, 0, 100)
	d.Seek.Defend = max(d.Seek.Defend, 0)
	d.Seek.Raid = max(d.Seek.Raid, 0)
	d.Seek.Swarm = max(d.Seek.Swarm, 0)
	if d.Seek.total() == 0 {
		d.Seek = def.Seek
	}
	d.DefendSupport = clampInt(d.DefendSupport, 0, 50)
	d.RaidSupport = clampInt(d.RaidSupport, 0, 50)
	d.SwarmTolerance = clampInt(d.SwarmTolerance, 0, 10)

	d.ScoutGrid = clampInt(d.ScoutGrid, 1, 64)
}

// RushThresholds returns the population and round counts below which combat
// units keep rushing the map center.
func (d Doctrine) RushThresholds(width, height int) (robots, rounds int) {
	robots = int(math.Floor(float64(width+height) * d.RushPopulation))
	return robots, robots * d.RushRounds
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
