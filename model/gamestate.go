package model

import "strings"

// Team identifies a side. The ordinal is what the shared channel stores in a
// contested zone's owner tag.
type Team int

const (
	TeamA Team = iota
	TeamB
	Neutral
)

func (t Team) String() string {
	switch t {
	case TeamA:
		return "A"
	case TeamB:
		return "B"
	case Neutral:
		return "NEUTRAL"
	default:
		return "UNKNOWN"
	}
}

// Opponent returns the other playing team. Neutral has no opponent.
func (t Team) Opponent() Team {
	switch t {
	case TeamA:
		return TeamB
	case TeamB:
		return TeamA
	default:
		return Neutral
	}
}

// RobotType is the role a robot was built as.
type RobotType string

const (
	Headquarters RobotType = "headquarters"
	Carrier      RobotType = "carrier"
	Launcher     RobotType = "launcher"
	Amplifier    RobotType = "amplifier"
	Booster      RobotType = "booster"
	Destabilizer RobotType = "destabilizer"
)

// ParseRobotType is case-insensitive and returns false for unknown names.
func ParseRobotType(s string) (RobotType, bool) {
	switch t := RobotType(strings.ToLower(s)); t {
	case Headquarters, Carrier, Launcher, Amplifier, Booster, Destabilizer:
		return t, true
	}
	return "", false
}

// ResourceKind is the resource a well produces. The ordinal is stored in 2
// bits of a channel record.
type ResourceKind int

const (
	Adamantium ResourceKind = iota
	Mana
	Elixir
	NoResource
)

// Resources lists the collectible kinds in deposit order.
var Resources = []ResourceKind{Mana, Adamantium, Elixir}

func (r ResourceKind) String() string {
	switch r {
	case Adamantium:
		return "adamantium"
	case Mana:
		return "mana"
	case Elixir:
		return "elixir"
	default:
		return "none"
	}
}

// Symmetry is a hypothesis about how the map mirrors one side onto the other.
// Unknown is the zero value so an untouched channel slot decodes to it.
type Symmetry int

const (
	Unknown Symmetry = iota
	Rotational
	Vertical   // x mirrored: (w-1-x, y)
	Horizontal // y mirrored: (x, h-1-y)
)

// KnownSymmetries are the three concrete hypotheses, in vote order.
var KnownSymmetries = []Symmetry{Rotational, Vertical, Horizontal}

func (s Symmetry) String() string {
	switch s {
	case Rotational:
		return "rotational"
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return "unknown"
	}
}

// Robot is a sensed robot, friend or foe.
type Robot struct {
	ID     int       `json:"id"`
	Team   Team      `json:"team"`
	Type   RobotType `json:"type"`
	Loc    Tile      `json:"loc"`
	Health int       `json:"health"`
}

func (r Robot) TypeName() string { return string(r.Type) }

// Well is a resource site.
type Well struct {
	Loc  Tile         `json:"loc"`
	Kind ResourceKind `json:"kind"`
}

// Island is a contested zone. Index is the stable identifier the host assigns;
// Loc is one representative tile of the zone.
type Island struct {
	Index int  `json:"index"`
	Loc   Tile `json:"loc"`
	Owner Team `json:"owner"`
}

// Surroundings is what one robot senses around itself in a single sensing
// pass. It is rebuilt on every full refresh and never persisted.
type Surroundings struct {
	Round   int      `json:"round"`
	Robots  []Robot  `json:"robots"`
	Wells   []Well   `json:"wells"`
	Islands []Island `json:"islands"`
}

// RobotAt returns the sensed robot standing on t.
func (s Surroundings) RobotAt(t Tile) (Robot, bool) {
	for _, r := range s.Robots {
		if r.Loc == t {
			return r, true
		}
	}
	return Robot{}, false
}

// Count returns how many sensed robots of the team have the given type.
func (s Surroundings) Count(team Team, t RobotType) int {
	n := 0
	for _, r := range s.Robots {
		if r.Team == team && r.Type == t {
			n++
		}
	}
	return n
}
