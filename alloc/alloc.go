package alloc

import "unsafe"

// Ptr is a position inside a heap, counted from the start of its general
// data zone. It stays meaningful wherever the arena happens to be mapped.
type Ptr uint32

type Allocator interface {
	Alloc(ln int) unsafe.Pointer
	Dealloc(ptr unsafe.Pointer)
}

var _ Allocator = (*Heap)(nil)
