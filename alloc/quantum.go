package alloc

import "github.com/funny-falcon/bitheap/bitmap"

// quantum is a cache of fixed size slots. One bit per slot is all the state
// it needs: every live block has the same length.
type quantum struct {
	unit  int
	zone  *quantumZone
	free  *int64
	slots bitmap.Bits
}

func (q *quantum) count() int {
	return int(q.zone.end-q.zone.start) / q.unit
}

// alloc takes the lowest free slot and returns its arena offset. The
// caller checks *q.free > 0 first.
func (q *quantum) alloc() uint32 {
	i := q.slots.FirstZero(0, q.count())
	q.slots.Set(i)
	*q.free -= int64(q.unit)
	return q.zone.start + uint32(i*q.unit)
}

// dealloc releases the slot holding arena offset off. A slot that is
// already free is left alone.
func (q *quantum) dealloc(off uint32) {
	i := int(off-q.zone.start) / q.unit
	if q.slots.Unset(i) {
		*q.free += int64(q.unit)
	}
}
