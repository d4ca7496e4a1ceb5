package model

import "testing"

func TestDirectionRotation(t *testing.T) {
	for _, d := range Compass {
		if got := d.RotateRight().RotateLeft(); got != d {
			t.Errorf("%s right then left = %s", d, got)
		}
		if got := d.Opposite().Opposite(); got != d {
			t.Errorf("%s opposite twice = %s", d, got)
		}
		r := d
		for range 8 {
			r = r.RotateRight()
		}
		if r != d {
			t.Errorf("%s rotated 8 times = %s", d, r)
		}
	}
	if North.RotateRight() != NorthEast {
		t.Errorf("North.RotateRight() = %s, want NORTHEAST", North.RotateRight())
	}
	if North.RotateLeft() != NorthWest {
		t.Errorf("North.RotateLeft() = %s, want NORTHWEST", North.RotateLeft())
	}
	if SouthWest.Opposite() != NorthEast {
		t.Errorf("SouthWest.Opposite() = %s, want NORTHEAST", SouthWest.Opposite())
	}
	if Center.RotateLeft() != Center || Center.Opposite() != Center {
		t.Error("Center should be fixed under rotation")
	}
}

func TestDirectionTo(t *testing.T) {
	origin := Tile{10, 10}
	tests := []struct {
		to   Tile
		want Direction
	}{
		{Tile{10, 10}, Center},
		{Tile{10, 15}, North},
		{Tile{10, 2}, South},
		{Tile{20, 10}, East},
		{Tile{0, 10}, West},
		{Tile{13, 13}, NorthEast},
		{Tile{13, 7}, SouthEast},
		{Tile{7, 7}, SouthWest},
		{Tile{7, 13}, NorthWest},
		{Tile{20, 12}, East},  // shallow angle rounds to the axis
		{Tile{12, 14}, NorthEast},
	}
	for _, tc := range tests {
		if got := origin.DirectionTo(tc.to); got != tc.want {
			t.Errorf("DirectionTo(%v) = %s, want %s", tc.to, got, tc.want)
		}
	}
}

func TestTileAdjacency(t *testing.T) {
	a := Tile{5, 5}
	if !a.IsAdjacentTo(Tile{6, 6}) || !a.IsAdjacentTo(Tile{5, 4}) {
		t.Error("expected neighbours to be adjacent")
	}
	if a.IsAdjacentTo(a) {
		t.Error("a tile is not adjacent to itself")
	}
	if a.IsAdjacentTo(Tile{7, 5}) {
		t.Error("tiles two apart are not adjacent")
	}
	if got := a.Add(SouthWest); got != (Tile{4, 4}) {
		t.Errorf("Add(SouthWest) = %v, want (4,4)", got)
	}
}

func TestTeamOpponent(t *testing.T) {
	if TeamA.Opponent() != TeamB || TeamB.Opponent() != TeamA {
		t.Error("A and B should oppose each other")
	}
	if Neutral.Opponent() != Neutral {
		t.Error("neutral has no opponent")
	}
}

func TestParseRobotType(t *testing.T) {
	if rt, ok := ParseRobotType("Launcher"); !ok || rt != Launcher {
		t.Errorf("ParseRobotType(Launcher) = %q, %v", rt, ok)
	}
	if _, ok := ParseRobotType("tank"); ok {
		t.Error("ParseRobotType(tank) should fail")
	}
}
