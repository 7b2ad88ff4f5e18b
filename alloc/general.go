package alloc

// The general zone is tracked byte by byte with two parallel bitmaps.
// Occupancy marks every byte in use. Boundary marks the last byte of each
// block, which is the only record of a block's length.

func (h *Heap) generalLen() int {
	return int(h.hdr.end - h.hdr.start)
}

// allocGeneral finds the lowest run of size free bytes and returns its
// arena offset.
func (h *Heap) allocGeneral(size int) (uint32, bool) {
	end := h.generalLen()
	i := 0
	for {
		i = h.occ.FirstZero(i, end)
		if i+size > end {
			return 0, false
		}
		if j := h.occ.NextSet(i, i+size); j < i+size {
			i = j
			continue
		}
		h.occ.SetRange(i, i+size)
		h.bound.Set(i + size - 1)
		h.hdr.free[0] -= int64(size)
		return h.hdr.start + uint32(i), true
	}
}

// freeGeneral releases the block starting at bit i. Nothing checks that i
// really starts a block: the run up to the next boundary bit is cleared
// whatever it holds. Without any boundary ahead the call does nothing.
func (h *Heap) freeGeneral(i int) {
	end := h.generalLen()
	last := h.bound.NextSet(i, end)
	if last == end {
		return
	}
	h.bound.Unset(last)
	n := h.occ.Count(i, last+1)
	h.occ.UnsetRange(i, last+1)
	h.hdr.free[0] += int64(n)
}
