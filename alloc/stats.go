package alloc

// Capacity is the usable capacity of the arena, after rounding.
func (h *Heap) Capacity() int {
	h.mustLive()
	return int(h.hdr.capacity)
}

// Free returns the free bytes counted for pool. Invalid sums all pools.
func (h *Heap) Free(pool Pool) int {
	h.mustLive()
	free := &h.hdr.free
	switch pool {
	case General, Quantum2, Quantum4:
		return int(free[pool-General])
	}
	return int(free[0] + free[1] + free[2])
}

func (h *Heap) Dissolved() bool {
	h.mustLive()
	return h.hdr.dissolved
}

// Stats returns a snapshot of arena statistics.
func (h *Heap) Stats() Stats {
	h.mustLive()
	hdr := h.hdr
	return Stats{
		Capacity:     int(hdr.capacity),
		Reserved:     len(h.mem),
		Free:         h.Free(Invalid),
		GeneralFree:  int(hdr.free[0]),
		Quantum2Free: int(hdr.free[1]),
		Quantum4Free: int(hdr.free[2]),
		GeneralSize:  h.generalLen(),
		Quantum2Size: int(hdr.quanta[0].end - hdr.quanta[0].start),
		Quantum4Size: int(hdr.quanta[1].end - hdr.quanta[1].start),
		Dissolved:    hdr.dissolved,
	}
}

// Stats contains counters of a heap at one moment.
type Stats struct {
	Capacity     int  `json:"capacity"`      // usable bytes
	Reserved     int  `json:"reserved"`      // usable bytes plus service zones
	Free         int  `json:"free"`          // free bytes over all pools
	GeneralFree  int  `json:"general_free"`  // free bytes in the general zone
	Quantum2Free int  `json:"quantum2_free"` // free bytes in 2-byte slots
	Quantum4Free int  `json:"quantum4_free"` // free bytes in 4-byte slots
	GeneralSize  int  `json:"general_size"`
	Quantum2Size int  `json:"quantum2_size"`
	Quantum4Size int  `json:"quantum4_size"`
	Dissolved    bool `json:"dissolved"`
}
