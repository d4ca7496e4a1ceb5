package sim

import (
	"fmt"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// Unit is the static profile of one robot kind. Radii are squared.
type Unit struct {
	Health     int `yaml:"health" json:"health"`
	Vision     int `yaml:"vision" json:"vision"`
	Reach      int `yaml:"reach" json:"reach"`
	Damage     int `yaml:"damage" json:"damage"`
	Adamantium int `yaml:"adamantium" json:"adamantium"`
	Mana       int `yaml:"mana" json:"mana"`
}

// MapParams drive the map generator. Counts are per side; every feature is
// mirrored onto the other half.
type MapParams struct {
	WallDensity  float64 `yaml:"wall_density" json:"wall_density"`
	CurrentRuns  int     `yaml:"current_runs" json:"current_runs"`
	WellsPerSide int     `yaml:"wells_per_side" json:"wells_per_side"`
	ZonesPerSide int     `yaml:"zones_per_side" json:"zones_per_side"`
	ZoneSize     int     `yaml:"zone_size" json:"zone_size"`
}

// Params are the rules of the reference host.
type Params struct {
	BaseBudget  int `yaml:"base_budget" json:"base_budget"`
	RobotBudget int `yaml:"robot_budget" json:"robot_budget"`
	CallCost    int `yaml:"call_cost" json:"call_cost"`
	SenseCost   int `yaml:"sense_cost" json:"sense_cost"`

	StartAdamantium int `yaml:"start_adamantium" json:"start_adamantium"`
	StartMana       int `yaml:"start_mana" json:"start_mana"`
	Income          int `yaml:"income" json:"income"`

	CarrierCapacity int `yaml:"carrier_capacity" json:"carrier_capacity"`
	CollectAmount   int `yaml:"collect_amount" json:"collect_amount"`
	HandRadius      int `yaml:"hand_radius" json:"hand_radius"`
	MaxRobots       int `yaml:"max_robots" json:"max_robots"`

	AnchorAdamantium int `yaml:"anchor_adamantium" json:"anchor_adamantium"`
	AnchorMana       int `yaml:"anchor_mana" json:"anchor_mana"`
	AnchorHealth     int `yaml:"anchor_health" json:"anchor_health"`

	WinShare      float64 `yaml:"win_share" json:"win_share"`
	WinHoldRounds int     `yaml:"win_hold_rounds" json:"win_hold_rounds"`

	Units map[model.RobotType]Unit `yaml:"units" json:"units"`
	Map   MapParams                `yaml:"map" json:"map"`
}

func DefaultParams() Params {
	return Params{
		BaseBudget:  20000,
		RobotBudget: 10000,
		CallCost:    5,
		SenseCost:   200,

		StartAdamantium: 200,
		StartMana:       200,
		Income:          2,

		CarrierCapacity: 40,
		CollectAmount:   10,
		HandRadius:      2,
		MaxRobots:       200,

		AnchorAdamantium: 100,
		AnchorMana:       100,
		AnchorHealth:     250,

		WinShare:      0.75,
		WinHoldRounds: 5,

		Units: map[model.RobotType]Unit{
			model.Headquarters: {Health: 10000, Vision: 34, Reach: 9},
			model.Carrier:      {Health: 150, Vision: 20, Reach: 9, Adamantium: 50},
			model.Launcher:     {Health: 200, Vision: 20, Reach: 16, Damage: 20, Mana: 60},
			model.Amplifier:    {Health: 80, Vision: 34, Adamantium: 30, Mana: 15},
			model.Booster:      {Health: 120, Vision: 20, Adamantium: 60, Mana: 60},
			model.Destabilizer: {Health: 120, Vision: 20, Reach: 13, Damage: 5, Adamantium: 80, Mana: 80},
		},
		Map: MapParams{
			WallDensity:  0.06,
			CurrentRuns:  2,
			WellsPerSide: 3,
			ZonesPerSide: 3,
			ZoneSize:     4,
		},
	}
}

// Validate fills unit kinds missing from Units with their defaults and
// rejects values the host cannot run with.
func (p *Params) Validate() error {
	defaults := DefaultParams()
	if p.Units == nil {
		p.Units = make(map[model.RobotType]Unit)
	}
	for rt, u := range defaults.Units {
		if _, ok := p.Units[rt]; !ok {
			p.Units[rt] = u
		}
	}
	for rt := range p.Units {
		if _, ok := model.ParseRobotType(string(rt)); !ok {
			return fmt.Errorf("unknown unit kind %q", rt)
		}
	}
	switch {
	case p.BaseBudget <= 0 || p.RobotBudget <= 0:
		return fmt.Errorf("budgets must be positive")
	case p.CarrierCapacity <= 0 || p.CollectAmount <= 0:
		return fmt.Errorf("carrier capacity and collect amount must be positive")
	case p.WinShare <= 0 || p.WinShare > 1:
		return fmt.Errorf("win share %v out of (0,1]", p.WinShare)
	case p.Map.WallDensity < 0 || p.Map.WallDensity > 0.5:
		return fmt.Errorf("wall density %v out of [0,0.5]", p.Map.WallDensity)
	case p.Map.ZoneSize < 1:
		return fmt.Errorf("zone size must be at least 1")
	}
	return nil
}

func (p Params) unit(rt model.RobotType) Unit { return p.Units[rt] }

func (p Params) budget(rt model.RobotType) int {
	if rt == model.Headquarters {
		return p.BaseBudget
	}
	return p.RobotBudget
}
