package channel

import (
	"sync/atomic"
)

// Array is an in-memory shared slot array. Slots are independent atomics, so
// agents may read and write it from any goroutine; there is no cross-slot
// atomicity, exactly like the host channel it stands in for.
type Array struct {
	slots []atomic.Int32
}

func NewArray(size int) *Array {
	return &Array{slots: make([]atomic.Int32, size)}
}

func (a *Array) Len() int { return len(a.slots) }

func (a *Array) inRange(i int) bool { return i >= 0 && i < len(a.slots) }

// ReadSlot returns 0 for out-of-range indexes.
func (a *Array) ReadSlot(i int) int {
	if !a.inRange(i) {
		return 0
	}
	return int(a.slots[i].Load())
}

func (a *Array) CompareAndSwapSlot(i, expected, value int) bool {
	if !a.inRange(i) {
		return false
	}
	return a.slots[i].CompareAndSwap(int32(expected), int32(value))
}

// Snapshot copies the current slot values.
func (a *Array) Snapshot() []int {
	out := make([]int, len(a.slots))
	for i := range a.slots {
		out[i] = int(a.slots[i].Load())
	}
	return out
}

// Occupied counts non-empty slots in p.
func Occupied(s Slots, p Partition) int {
	n := 0
	for i := p.Start; i <= p.End; i++ {
		if s.ReadSlot(i) != 0 {
			n++
		}
	}
	return n
}
