package channel

import "fmt"

// Partition is an inclusive slot range reserved for one record kind.
type Partition struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Len is the partition's capacity.
func (p Partition) Len() int { return p.End - p.Start + 1 }

// Contains reports whether slot index i belongs to p.
func (p Partition) Contains(i int) bool { return i >= p.Start && i <= p.End }

// Layout fixes which slot ranges hold which record kinds.
type Layout struct {
	Size       int       `yaml:"size" json:"size"`
	Bases      Partition `yaml:"bases" json:"bases"`
	EnemyBases Partition `yaml:"enemy_bases" json:"enemy_bases"`
	Wells      Partition `yaml:"wells" json:"wells"`
	Zones      Partition `yaml:"zones" json:"zones"`
	Symmetry   int       `yaml:"symmetry" json:"symmetry"`
}

// DefaultLayout: 4 own bases, 4 enemy bases, 6 wells, 35 zones, one symmetry slot.
func DefaultLayout() Layout {
	return Layout{
		Size:       64,
		Bases:      Partition{Start: 0, End: 3},
		EnemyBases: Partition{Start: 4, End: 7},
		Wells:      Partition{Start: 8, End: 13},
		Zones:      Partition{Start: 14, End: 48},
		Symmetry:   49,
	}
}

// Partition returns the slot range for a scanned record kind.
func (l Layout) Partition(k Kind) Partition {
	switch k {
	case KindBase:
		return l.Bases
	case KindEnemyBase:
		return l.EnemyBases
	case KindWell:
		return l.Wells
	case KindZone:
		return l.Zones
	case KindSymmetry:
		return Partition{Start: l.Symmetry, End: l.Symmetry}
	default:
		return Partition{Start: 0, End: -1}
	}
}

// ZoneSlot maps a zone's stable identifier to its fixed slot.
func (l Layout) ZoneSlot(index int) (int, bool) {
	slot := l.Zones.Start + index
	if index < 0 || !l.Zones.Contains(slot) {
		return 0, false
	}
	return slot, true
}

// Validate checks that every partition is non-empty, inside the array and
// disjoint from the others.
func (l Layout) Validate() error {
	parts := []struct {
		name string
		p    Partition
	}{
		{"bases", l.Bases},
		{"enemy_bases", l.EnemyBases},
		{"wells", l.Wells},
		{"zones", l.Zones},
		{"symmetry", Partition{Start: l.Symmetry, End: l.Symmetry}},
	}
	for i, a := range parts {
		if a.p.Len() <= 0 || a.p.Start < 0 || a.p.End >= l.Size {
			return fmt.Errorf("partition %s [%d,%d] outside array of %d", a.name, a.p.Start, a.p.End, l.Size)
		}
		for _, b := range parts[i+1:] {
			if a.p.Start <= b.p.End && b.p.Start <= a.p.End {
				return fmt.Errorf("partitions %s and %s overlap", a.name, b.name)
			}
		}
	}
	return nil
}
