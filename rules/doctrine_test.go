package rules

import (
	"testing"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-0.5, 0, 1, 0.0},
		{1.5, 0, 1, 1.0},
		{0.0, 0, 1, 0.0},
		{1.0, 0, 1, 1.0},
	}
	for _, tc := range tests {
		got := clamp(tc.v, tc.min, tc.max)
		if got != tc.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tc.v, tc.min, tc.max, got, tc.want)
		}
	}
}

func TestDefaultDoctrine(t *testing.T) {
	d := DefaultDoctrine()
	if len(d.Opening) != 7 {
		t.Fatalf("DefaultDoctrine().Opening has %d entries, want 7", len(d.Opening))
	}
	if d.Opening[3] != model.Amplifier {
		t.Errorf("DefaultDoctrine().Opening[3] = %s, want amplifier", d.Opening[3])
	}
	if d.Spawn.total() != 60 {
		t.Errorf("DefaultDoctrine().Spawn total = %d, want 60", d.Spawn.total())
	}
	if d.Seek.total() != 100 {
		t.Errorf("DefaultDoctrine().Seek total = %d, want 100", d.Seek.total())
	}
	if d.CarrierCapacity != 40 {
		t.Errorf("DefaultDoctrine().CarrierCapacity = %d, want 40", d.CarrierCapacity)
	}

	v := d
	v.Validate()
	if v.ManaBias != d.ManaBias || v.SwarmTolerance != d.SwarmTolerance || len(v.Opening) != len(d.Opening) {
		t.Errorf("Validate changed the default doctrine: %+v", v)
	}
}

func TestValidate(t *testing.T) {
	d := Doctrine{
		Opening:        []model.RobotType{"Launcher", "tank", model.Headquarters, model.Carrier},
		ManaBias:       1.5,
		WellPickChance: 0,
		SwarmTolerance: 40,
		ScoutGrid:      0,
		Seek:           SeekWeights{Defend: -3},
	}
	d.Validate()

	if len(d.Opening) != 2 || d.Opening[0] != model.Launcher || d.Opening[1] != model.Carrier {
		t.Errorf("Opening = %v, want [launcher carrier]", d.Opening)
	}
	if d.ManaBias != 1.0 {
		t.Errorf("ManaBias = %f, want 1.0 (clamped)", d.ManaBias)
	}
	if d.WellPickChance != 0.05 {
		t.Errorf("WellPickChance = %f, want 0.05 (clamped)", d.WellPickChance)
	}
	if d.SwarmTolerance != 10 {
		t.Errorf("SwarmTolerance = %d, want 10 (clamped)", d.SwarmTolerance)
	}
	if d.ScoutGrid != 1 {
		t.Errorf("ScoutGrid = %d, want 1 (clamped)", d.ScoutGrid)
	}
	if d.Seek != DefaultDoctrine().Seek {
		t.Errorf("Seek = %+v, want defaults when every weight is zero", d.Seek)
	}
	if d.Spawn != DefaultDoctrine().Spawn {
		t.Errorf("Spawn = %+v, want defaults when every weight is zero", d.Spawn)
	}
	if d.CarrierCapacity != 1 {
		t.Errorf("CarrierCapacity = %d, want 1 (clamped)", d.CarrierCapacity)
	}
}

func TestRushThresholds(t *testing.T) {
	d := DefaultDoctrine()
	tests := []struct {
		w, h           int
		robots, rounds int
	}{
		{20, 20, 50, 250},
		{30, 31, 76, 380},
		{60, 60, 150, 750},
	}
	for _, tc := range tests {
		robots, rounds := d.RushThresholds(tc.w, tc.h)
		if robots != tc.robots || rounds != tc.rounds {
			t.Errorf("RushThresholds(%d, %d) = %d, %d; want %d, %d", tc.w, tc.h, robots, rounds, tc.robots, tc.rounds)
		}
	}
}
