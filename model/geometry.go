package model

import "fmt"

// Tile is a map coordinate. The shared channel stores each axis in 6 bits,
// so maps are at most 64x64.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (t Tile) String() string { return fmt.Sprintf("(%d,%d)", t.X, t.Y) }

// Add returns the tile one step away in direction d.
func (t Tile) Add(d Direction) Tile {
	return Tile{X: t.X + d.Dx(), Y: t.Y + d.Dy()}
}

// DistanceSquaredTo is the squared euclidean distance, the unit used for
// every radius in the game.
func (t Tile) DistanceSquaredTo(o Tile) int {
	dx := t.X - o.X
	dy := t.Y - o.Y
	return dx*dx + dy*dy
}

// IsAdjacentTo reports whether o is one of the 8 neighbours of t.
func (t Tile) IsAdjacentTo(o Tile) bool {
	d := t.DistanceSquaredTo(o)
	return d == 1 || d == 2
}

// DirectionTo returns the compass direction that best approximates the
// heading from t to o. Center is returned when the tiles are equal.
func (t Tile) DirectionTo(o Tile) Direction {
	dx := o.X - t.X
	dy := o.Y - t.Y
	if dx == 0 && dy == 0 {
		return Center
	}
	ax, ay := abs(dx), abs(dy)
	// tan(67.5°) ≈ 2.414; compare in integer space scaled by 1000.
	switch {
	case ax*1000 >= ay*2414:
		if dx > 0 {
			return East
		}
		return West
	case ay*1000 >= ax*2414:
		if dy > 0 {
			return North
		}
		return South
	case dx > 0 && dy > 0:
		return NorthEast
	case dx > 0:
		return SouthEast
	case dy > 0:
		return NorthWest
	default:
		return SouthWest
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is one of the 8 compass headings, or Center. North is +y.
type Direction int

const (
	Center Direction = iota
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var directionNames = [...]string{"CENTER", "NORTH", "NORTHEAST", "EAST", "SOUTHEAST", "SOUTH", "SOUTHWEST", "WEST", "NORTHWEST"}

var deltas = [...][2]int{
	{0, 0}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// Compass lists the 8 non-center directions clockwise from North.
var Compass = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

func (d Direction) String() string {
	if d < Center || d > NorthWest {
		return "UNKNOWN"
	}
	return directionNames[d]
}

func (d Direction) Dx() int {
	if d < Center || d > NorthWest {
		return 0
	}
	return deltas[d][0]
}

func (d Direction) Dy() int {
	if d < Center || d > NorthWest {
		return 0
	}
	return deltas[d][1]
}

// RotateRight turns 45° clockwise. Center is returned unchanged.
func (d Direction) RotateRight() Direction {
	if d == Center {
		return Center
	}
	return Direction(int(d)%8 + 1)
}

// RotateLeft turns 45° counter-clockwise. Center is returned unchanged.
func (d Direction) RotateLeft() Direction {
	if d == Center {
		return Center
	}
	return Direction((int(d)+6)%8 + 1)
}

func (d Direction) Opposite() Direction {
	if d == Center {
		return Center
	}
	return Direction((int(d)+3)%8 + 1)
}

// IsDiagonal reports whether both axes change when stepping in d.
func (d Direction) IsDiagonal() bool {
	return d.Dx() != 0 && d.Dy() != 0
}

// DirectionFromDelta maps a unit step back to its direction.
func DirectionFromDelta(dx, dy int) Direction {
	for i, v := range deltas {
		if v[0] == dx && v[1] == dy {
			return Direction(i)
		}
	}
	return Center
}
