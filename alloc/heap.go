package alloc

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/funny-falcon/bitheap/bitmap"
)

// Heap is a fixed capacity allocator over one reserved arena.
//
// Requests of up to 2 or 4 bytes are served from two quantum caches of
// fixed size slots. Everything else, and small requests once a cache is
// empty, goes to a first-fit allocator tracking the general zone byte by
// byte. When that zone cannot fit a request for the first time, the
// caches are dissolved into it and the request is retried once.
//
// A Heap is not safe for concurrent use; the whole arena is the unit of
// locking.
type Heap struct {
	// Log labels trace output. Empty disables tracing.
	Log string

	mem    []byte
	hdr    *header
	occ    bitmap.Bits
	bound  bitmap.Bits
	quanta [2]quantum
}

var quantumUnits = [2]int{2, 4}

// New reserves an arena serving capacity usable bytes, rounded up to a
// multiple of 8.
func New(capacity int) (*Heap, error) {
	h := &Heap{}
	if err := h.init(capacity); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Heap) init(capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrReserve, capacity)
	}
	l := NewLayout(capacity)
	if err := l.validate(); err != nil {
		return err
	}
	mem, err := reserve(l.Size())
	if err != nil {
		return fmt.Errorf("%w: %d bytes: %v", ErrReserve, l.Size(), err)
	}
	h.mem = mem
	h.hdr = (*header)(unsafe.Pointer(&mem[0]))
	l.carve(h.hdr)
	h.bind()
	if h.Log != "" {
		log.Printf("%s: arena %d bytes, general %d, quantum2 %d, quantum4 %d",
			h.Log, l.Size(), l.General, l.Quantum2, l.Quantum4)
	}
	return nil
}

// bind rebuilds the bitmap views from the header offsets.
func (h *Heap) bind() {
	hdr := h.hdr
	n := int(hdr.capacity) / 8
	h.occ = bitmap.Bits(h.mem[hdr.occ : int(hdr.occ)+n])
	h.bound = bitmap.Bits(h.mem[hdr.bound : int(hdr.bound)+n])
	for i := range h.quanta {
		z := &hdr.quanta[i]
		q := quantum{unit: quantumUnits[i], zone: z, free: &hdr.free[i+1]}
		q.slots = bitmap.Bits(h.mem[z.bits : int(z.bits)+q.count()/8])
		h.quanta[i] = q
	}
}

func (h *Heap) mustLive() {
	if h.hdr == nil {
		panic("alloc: use after Release")
	}
}

// Release unmaps the arena. Every pointer it handed out becomes invalid,
// and so does the heap until Reinit.
func (h *Heap) Release() error {
	h.mustLive()
	mem := h.mem
	*h = Heap{Log: h.Log}
	return release(mem)
}

// Reinit discards the arena and reserves a fresh one of the same capacity.
func (h *Heap) Reinit() error {
	capacity := h.Capacity()
	if err := h.Release(); err != nil {
		return err
	}
	return h.init(capacity)
}

// TryAlloc returns the address of size fresh bytes.
func (h *Heap) TryAlloc(size int) (unsafe.Pointer, error) {
	h.mustLive()
	if size <= 0 {
		return nil, ErrZeroSize
	}
	hdr := h.hdr
	if int64(size) > hdr.free[0]+hdr.free[1]+hdr.free[2] {
		return nil, ErrOutOfCapacity
	}
	for i := range h.quanta {
		q := &h.quanta[i]
		if size <= q.unit && *q.free > 0 {
			return h.at(q.alloc()), nil
		}
	}
	for retry := 0; retry < 2; retry++ {
		if off, ok := h.allocGeneral(size); ok {
			return h.at(off), nil
		}
		if hdr.dissolved {
			break
		}
		h.dissolve()
	}
	return nil, ErrExhausted
}

// Alloc is TryAlloc without the reason: nil means the request was not met.
func (h *Heap) Alloc(size int) unsafe.Pointer {
	ptr, _ := h.TryAlloc(size)
	return ptr
}

// Dealloc frees a block returned by Alloc. Pointers outside the arena,
// and quantum slots that are already free, are ignored.
func (h *Heap) Dealloc(ptr unsafe.Pointer) {
	h.mustLive()
	off := h.offsetOf(ptr)
	switch h.classify(off) {
	case General:
		h.freeGeneral(off - int(h.hdr.start))
	case Quantum2:
		h.quanta[0].dealloc(uint32(off))
	case Quantum4:
		h.quanta[1].dealloc(uint32(off))
	}
}

func (h *Heap) at(off uint32) unsafe.Pointer {
	return unsafe.Pointer(&h.mem[off])
}
