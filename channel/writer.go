package channel

import (
	"github.com/nstehr/tidewatch/tidewatch-core/model"
)

// Slots is the raw shared array as the host exposes it.
type Slots interface {
	ReadSlot(index int) int
	CompareAndSwapSlot(index, expected, value int) bool
}

// Board is a slot array plus the map bounds writers validate against.
type Board interface {
	Slots
	OnMap(t model.Tile) bool
}

// Outcome reports what a write attempt did. None of them is an error:
// conflicts and full partitions are expected under optimistic concurrency.
type Outcome int

const (
	Claimed   Outcome = iota + 1 // wrote into a previously empty slot
	Duplicate                    // an identical record is already present
	Updated                      // rewrote a zone owner or the symmetry value
	Unchanged                    // zone/symmetry already held this tag
	Full                         // partition exhausted, observation dropped
	Conflict                     // another agent changed the slot first
	OffMap                       // rejected before encoding
)

func (o Outcome) String() string {
	switch o {
	case Claimed:
		return "claimed"
	case Duplicate:
		return "duplicate"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case Full:
		return "full"
	case Conflict:
		return "conflict"
	case OffMap:
		return "off_map"
	default:
		return "unknown"
	}
}

// Wrote reports whether the outcome changed the channel.
func (o Outcome) Wrote() bool { return o == Claimed || o == Updated }

// Writer applies the claim/update protocol on top of a Board.
type Writer struct {
	board  Board
	layout Layout
}

func NewWriter(board Board, layout Layout) *Writer {
	return &Writer{board: board, layout: layout}
}

func (w *Writer) Layout() Layout { return w.layout }

// claim scans p from its start. A slot equal to d means the record is
// already known; the first empty slot is claimed with a compare-and-swap
// against the zero just read.
func (w *Writer) claim(p Partition, d int) Outcome {
	for i := p.Start; i <= p.End; i++ {
		v := w.board.ReadSlot(i)
		if v == d {
			return Duplicate
		}
		if v == 0 {
			if w.board.CompareAndSwapSlot(i, 0, d) {
				return Claimed
			}
			return Conflict
		}
	}
	return Full
}

// PublishBase records a base location in the own or enemy partition.
func (w *Writer) PublishBase(loc model.Tile, enemy bool) Outcome {
	if !w.board.OnMap(loc) {
		return OffMap
	}
	r := BaseRecord(loc)
	if enemy {
		r = EnemyBaseRecord(loc)
	}
	return w.claim(w.layout.Partition(r.Kind), Encode(r))
}

// PublishWell records a resource site.
func (w *Writer) PublishWell(well model.Well) Outcome {
	if !w.board.OnMap(well.Loc) {
		return OffMap
	}
	return w.claim(w.layout.Wells, Encode(WellRecord(well)))
}

// PublishZone writes the fixed slot of zone index. The coordinate written
// first is kept forever; only the owner tag may change afterwards.
func (w *Writer) PublishZone(index int, loc model.Tile, owner model.Team) Outcome {
	if !w.board.OnMap(loc) {
		return OffMap
	}
	slot, ok := w.layout.ZoneSlot(index)
	if !ok {
		return Full
	}
	cur := w.board.ReadSlot(slot)
	d := Encode(ZoneRecord(loc, owner))
	if cur != 0 {
		if tag(cur) == tag(d) {
			return Unchanged
		}
		d = cur&(1<<tagShift-1) | d&^(1<<tagShift-1)
	}
	if !w.board.CompareAndSwapSlot(slot, cur, d) {
		return Conflict
	}
	if cur == 0 {
		return Claimed
	}
	return Updated
}

// PublishSymmetry rewrites the symmetry slot when the hypothesis changed.
func (w *Writer) PublishSymmetry(s model.Symmetry) Outcome {
	slot := w.layout.Symmetry
	cur := w.board.ReadSlot(slot)
	d := Encode(SymmetryRecord(s))
	if cur == d {
		return Unchanged
	}
	if !w.board.CompareAndSwapSlot(slot, cur, d) {
		return Conflict
	}
	return Updated
}
