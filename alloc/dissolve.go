package alloc

import (
	"log"

	"github.com/funny-falcon/bitheap/bitmap"
)

// dissolve hands both quantum zones over to the general allocator. Live
// slots become ordinary general blocks of their unit length, so every
// pointer handed out by a cache stays valid and is freed through the
// general path from now on. It runs at most once per arena.
func (h *Heap) dissolve() {
	hdr := h.hdr
	// The quantum-4 bitmap sits above the quantum-2 one; folding it first
	// keeps in-place writes away from slot bits not read yet.
	for i := len(h.quanta) - 1; i >= 0; i-- {
		q := &h.quanta[i]
		reencode(q.slots, h.occ, h.bound, int(q.zone.start-hdr.start), q.count(), q.unit)
		hdr.free[0] += *q.free
		*q.free = 0
		q.zone.start = q.zone.end
	}
	hdr.end = hdr.start + hdr.capacity
	hdr.dissolved = true
	h.bind()
	if h.Log != "" {
		log.Printf("%s: quantum caches dissolved, general zone %d bytes, %d free",
			h.Log, h.generalLen(), hdr.free[0])
	}
}

// reencode rewrites n slots of unit bytes as byte granular blocks: slot i
// covers bits [base+i*unit, base+(i+1)*unit) of occ, and a live slot gets
// all of them set plus its last bit set in bound. Slots are consumed from
// the highest index down and each slot bit is cleared before its bytes are
// marked, so slots may alias occ as long as base+i*unit never falls below
// the position of slot i's own bit.
func reencode(slots, occ, bound bitmap.Bits, base, n, unit int) {
	for i := n - 1; i >= 0; i-- {
		if !slots.Unset(i) {
			continue
		}
		first := base + i*unit
		occ.SetRange(first, first+unit)
		bound.Set(first + unit - 1)
	}
}
