// Package channel implements the wire format of the shared slot array and the
// optimistic claim/update discipline every writer follows.
//
// Bit layout, low to high:
//
//	base / enemy base   x:6 y:6 presence@12
//	resource site       x:6 y:6 kind:2@12  presence@14
//	contested zone      x:6 y:6 owner:2@12 presence@14
//	symmetry            raw enum value, no coordinates
//
// A zero slot is empty. The presence bit keeps a record at (0,0) distinct
// from zero.
package channel

import "github.com/nstehr/tidewatch/tidewatch-core/model"

const (
	coordBits = 6
	coordMask = 1<<coordBits - 1
	tagShift  = 2 * coordBits
	tagMask   = 0b11

	basePresence   = 1 << 12
	taggedPresence = 1 << 14
)

// MaxCoord is the largest coordinate a record can hold.
const MaxCoord = coordMask

// Kind is the record family a slot partition holds.
type Kind int

const (
	KindBase Kind = iota + 1
	KindEnemyBase
	KindWell
	KindZone
	KindSymmetry
)

func (k Kind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindEnemyBase:
		return "enemy_base"
	case KindWell:
		return "well"
	case KindZone:
		return "zone"
	case KindSymmetry:
		return "symmetry"
	default:
		return "unknown"
	}
}

// Record is one decoded slot. Only the fields relevant to Kind are set:
// Loc for every kind but symmetry, Resource for wells, Owner for zones and
// Symmetry for the symmetry slot.
type Record struct {
	Kind     Kind
	Loc      model.Tile
	Resource model.ResourceKind
	Owner    model.Team
	Symmetry model.Symmetry
}

func BaseRecord(loc model.Tile) Record { return Record{Kind: KindBase, Loc: loc} }

func EnemyBaseRecord(loc model.Tile) Record { return Record{Kind: KindEnemyBase, Loc: loc} }

func WellRecord(w model.Well) Record {
	return Record{Kind: KindWell, Loc: w.Loc, Resource: w.Kind}
}

func ZoneRecord(loc model.Tile, owner model.Team) Record {
	return Record{Kind: KindZone, Loc: loc, Owner: owner}
}

func SymmetryRecord(s model.Symmetry) Record { return Record{Kind: KindSymmetry, Symmetry: s} }

func packCoord(t model.Tile) int {
	return (t.Y&coordMask)<<coordBits | t.X&coordMask
}

func unpackCoord(v int) model.Tile {
	return model.Tile{X: v & coordMask, Y: (v >> coordBits) & coordMask}
}

// Encode packs r into its slot value. Every field is masked to its width, so
// the result always decodes.
func Encode(r Record) int {
	switch r.Kind {
	case KindBase, KindEnemyBase:
		return packCoord(r.Loc) | basePresence
	case KindWell:
		return packCoord(r.Loc) | (int(r.Resource)&tagMask)<<tagShift | taggedPresence
	case KindZone:
		return packCoord(r.Loc) | (int(r.Owner)&tagMask)<<tagShift | taggedPresence
	case KindSymmetry:
		return int(r.Symmetry) & tagMask
	default:
		return 0
	}
}

// Decode unpacks a slot value of the given kind. ok is false when the slot
// is empty. The symmetry slot is never empty: zero decodes to Unknown.
func Decode(k Kind, v int) (r Record, ok bool) {
	if k == KindSymmetry {
		return SymmetryRecord(model.Symmetry(v & tagMask)), true
	}
	if v == 0 {
		return Record{}, false
	}
	r = Record{Kind: k, Loc: unpackCoord(v)}
	switch k {
	case KindWell:
		r.Resource = model.ResourceKind((v >> tagShift) & tagMask)
	case KindZone:
		r.Owner = model.Team((v >> tagShift) & tagMask)
	}
	return r, true
}

// tag returns the mutable portion of a zone slot (owner and presence).
func tag(v int) int { return v >> tagShift }
