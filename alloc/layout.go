package alloc

import (
	"fmt"
	"math"
	"unsafe"
)

// header is kept at offset 0 of the arena. It holds offsets only, never Go
// pointers, so it may live in memory the collector does not know about.
type header struct {
	free      [3]int64 // general, quantum-2, quantum-4
	capacity  uint32
	occ       uint32 // general occupancy bitmap
	bound     uint32 // general boundary bitmap
	start     uint32 // general data zone
	end       uint32
	quanta    [2]quantumZone
	dissolved bool
}

type quantumZone struct {
	bits  uint32 // slot occupancy bitmap
	start uint32
	end   uint32
}

var headerSize = int(unsafe.Sizeof(header{})+7) &^ 7

// Layout is the size arithmetic of an arena serving Capacity usable bytes.
//
// In memory order an arena holds the header, the general occupancy bitmap,
// the general boundary bitmap, then the general, quantum-2 and quantum-4
// data zones. Both bitmaps carry one bit per usable byte. The tail of the
// occupancy bitmap, which describes the quantum zones byte by byte, holds
// the slot bitmaps of the quantum caches until they are dissolved.
type Layout struct {
	Capacity int
	Header   int
	Service  int
	General  int
	Quantum2 int
	Quantum4 int
}

// NewLayout rounds capacity up to a multiple of 8 and splits it into pools.
func NewLayout(capacity int) Layout {
	c := (capacity + 7) &^ 7
	l := Layout{
		Capacity: c,
		Header:   headerSize,
		Service:  headerSize + c/4,
		Quantum2: 16 * (c / 128),
		Quantum4: 32 * (c / 256),
	}
	l.General = c - l.Quantum2 - l.Quantum4
	return l
}

// Size is the full span to reserve.
func (l Layout) Size() int {
	return l.Service + l.Capacity
}

func (l Layout) validate() error {
	if l.Capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrReserve, l.Capacity)
	}
	if uint64(l.Size()) > math.MaxUint32 {
		return fmt.Errorf("%w: arena of %d bytes exceeds 32-bit offsets", ErrReserve, l.Size())
	}
	return nil
}

// carve writes zone offsets and initial counters into a zeroed header.
func (l Layout) carve(hdr *header) {
	hdr.capacity = uint32(l.Capacity)
	hdr.free = [3]int64{int64(l.General), int64(l.Quantum2), int64(l.Quantum4)}
	hdr.occ = uint32(l.Header)
	hdr.bound = hdr.occ + uint32(l.Capacity/8)
	hdr.start = uint32(l.Service)
	hdr.end = hdr.start + uint32(l.General)

	q2bits := hdr.occ + uint32(l.General/8)
	hdr.quanta[0] = quantumZone{
		bits:  q2bits,
		start: hdr.end,
		end:   hdr.end + uint32(l.Quantum2),
	}
	hdr.quanta[1] = quantumZone{
		bits:  q2bits + uint32(l.Quantum2/16),
		start: hdr.quanta[0].end,
		end:   hdr.quanta[0].end + uint32(l.Quantum4),
	}
	hdr.dissolved = false
}
