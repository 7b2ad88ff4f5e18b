package alloc

import (
	"unsafe"

	"github.com/modern-go/reflect2"
)

type Pool uint8

const (
	Invalid Pool = iota
	General
	Quantum2
	Quantum4
)

var poolNames = [...]string{"invalid", "general", "quantum2", "quantum4"}

func (p Pool) String() string {
	if int(p) < len(poolNames) {
		return poolNames[p]
	}
	return "unknown"
}

// offsetOf returns the position of ptr relative to the arena base. It is
// negative for pointers below the arena.
func (h *Heap) offsetOf(ptr unsafe.Pointer) int {
	return int(uintptr(ptr)) - int(uintptr(unsafe.Pointer(&h.mem[0])))
}

// Classify reports which pool ptr belongs to. Pointers outside every data
// zone are Invalid.
func (h *Heap) Classify(ptr unsafe.Pointer) Pool {
	h.mustLive()
	return h.classify(h.offsetOf(ptr))
}

func (h *Heap) classify(off int) Pool {
	hdr := h.hdr
	switch {
	case off >= int(hdr.start) && off < int(hdr.end):
		return General
	case off >= int(hdr.quanta[0].start) && off < int(hdr.quanta[0].end):
		return Quantum2
	case off >= int(hdr.quanta[1].start) && off < int(hdr.quanta[1].end):
		return Quantum4
	}
	return Invalid
}

// ToOffset returns ptr relative to the start of the general zone. It is
// defined for any pointer, including ones outside the arena.
func (h *Heap) ToOffset(ptr unsafe.Pointer) int {
	h.mustLive()
	return h.offsetOf(ptr) - int(h.hdr.start)
}

func (h *Heap) Ref(ptr unsafe.Pointer) Ptr {
	return Ptr(h.ToOffset(ptr))
}

func (h *Heap) Addr(ref Ptr) unsafe.Pointer {
	h.mustLive()
	return unsafe.Pointer(&h.mem[int(h.hdr.start)+int(ref)])
}

// Get stores the address of ref into ptr, which must be a pointer to a
// pointer variable:
//
//	var v *uint64
//	h.Get(ref, &v)
func (h *Heap) Get(ref Ptr, ptr interface{}) {
	*(*unsafe.Pointer)(reflect2.PtrOf(ptr)) = h.Addr(ref)
}

// Bytes returns the n bytes at ptr as a slice. The caller keeps it within
// the block it owns.
func (h *Heap) Bytes(ptr unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(ptr), n)
}
