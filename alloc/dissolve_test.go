package alloc

import (
	"errors"
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/bitheap/bitmap"
)

func TestReencode(t *testing.T) {
	slots := bitmap.Bits{0x05}
	occ := make(bitmap.Bits, 2)
	bound := make(bitmap.Bits, 2)

	reencode(slots, occ, bound, 0, 8, 2)
	require.Equal(t, bitmap.Bits{0x33, 0x00}, occ)
	require.Equal(t, bitmap.Bits{0x22, 0x00}, bound)
	require.Equal(t, bitmap.Bits{0x00}, slots, "slots are consumed")
}

func TestReencodeInPlace(t *testing.T) {
	// 2-byte slots whose bitmap shares the first byte of the output
	buf := bitmap.Bits{0x81, 0x00}
	bound := make(bitmap.Bits, 2)
	reencode(buf[:1], buf, bound, 0, 8, 2)
	require.Equal(t, bitmap.Bits{0x03, 0xc0}, buf)
	require.Equal(t, bitmap.Bits{0x02, 0x80}, bound)

	// 4-byte slots kept at bit 8, folded into bits 16..47
	buf = bitmap.Bits{0x00, 0x03, 0x00, 0x00, 0x00, 0x00}
	bound = make(bitmap.Bits, 6)
	reencode(buf[1:2], buf, bound, 16, 8, 4)
	require.Equal(t, bitmap.Bits{0x00, 0x00, 0xff, 0x00, 0x00, 0x00}, buf)
	require.Equal(t, bitmap.Bits{0x00, 0x00, 0x88, 0x00, 0x00, 0x00}, bound)
}

func TestReencodeInPlaceMatchesCopy(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for k := 0; k < 200; k++ {
		h := newHeap(t, 1024)
		l := NewLayout(1024)
		g := l.General / 8
		occ := make(bitmap.Bits, len(h.occ))
		copy(occ, h.occ)
		rnd.Read(occ[:g])
		rnd.Read(occ[g : g+l.Quantum2/16+l.Quantum4/32])

		ref := make(bitmap.Bits, len(occ))
		refBound := make(bitmap.Bits, len(occ))
		copy(ref[:g], occ[:g])
		q2 := append(bitmap.Bits(nil), occ[g:g+l.Quantum2/16]...)
		q4 := append(bitmap.Bits(nil), occ[g+l.Quantum2/16:g+l.Quantum2/16+l.Quantum4/32]...)
		reencode(q4, ref, refBound, l.General+l.Quantum2, l.Quantum4/4, 4)
		reencode(q2, ref, refBound, l.General, l.Quantum2/2, 2)

		bound := make(bitmap.Bits, len(occ))
		reencode(occ[g+l.Quantum2/16:], occ, bound, l.General+l.Quantum2, l.Quantum4/4, 4)
		reencode(occ[g:], occ, bound, l.General, l.Quantum2/2, 2)

		require.Equal(t, ref, occ)
		require.Equal(t, refBound, bound)
	}
}

// fillQuanta takes every slot of both caches and returns their pointers.
func fillQuanta(t *testing.T, h *Heap) (q2, q4 []unsafe.Pointer) {
	for h.Free(Quantum2) > 0 {
		p := h.Alloc(1)
		require.Equal(t, Quantum2, h.Classify(p))
		q2 = append(q2, p)
	}
	for h.Free(Quantum4) > 0 {
		p := h.Alloc(3)
		require.Equal(t, Quantum4, h.Classify(p))
		q4 = append(q4, p)
	}
	return q2, q4
}

func TestDissolveForced(t *testing.T) {
	h := newHeap(t, 256)
	q2, q4 := fillQuanta(t, h)
	require.Len(t, q2, 16)
	require.Len(t, q4, 8)

	for i := 0; i < 192; i++ {
		p := h.Alloc(1)
		require.Equal(t, General, h.Classify(p))
		require.Equal(t, i, h.ToOffset(p))
	}
	require.Zero(t, h.Free(Invalid))
	require.Nil(t, h.Alloc(1))
	require.False(t, h.Dissolved(), "a full arena is out of capacity, not exhausted")

	// two neighbouring 4-byte slots make room for a 5 byte block once merged
	h.Dealloc(q4[2])
	h.Dealloc(q4[3])
	require.Equal(t, 8, h.Free(Quantum4))

	p := h.Alloc(5)
	require.NotNil(t, p)
	require.True(t, h.Dissolved())
	require.Equal(t, 232, h.ToOffset(p))
	require.Equal(t, General, h.Classify(p))
	require.Zero(t, h.Free(Quantum2))
	require.Zero(t, h.Free(Quantum4))
	require.Equal(t, 3, h.Free(General))

	st := h.Stats()
	require.Equal(t, 256, st.GeneralSize)
	require.Zero(t, st.Quantum2Size)
	require.Zero(t, st.Quantum4Size)

	// every former slot is now a general block of its unit length
	for i := 192; i < 232; i++ {
		require.True(t, h.occ.Has(i), "byte %d", i)
	}
	for i, q := range q2 {
		require.True(t, h.bound.Has(192+2*i+1))
		require.Equal(t, General, h.Classify(q))
	}
	for _, i := range []int{0, 1, 4, 5, 6, 7} {
		require.True(t, h.bound.Has(224+4*i+3))
	}
}

func TestDissolveKeepsPointers(t *testing.T) {
	h := newHeap(t, 256)
	q2, q4 := fillQuanta(t, h)
	for i, p := range q2 {
		h.Bytes(p, 2)[0] = byte(i)
	}
	for i, p := range q4 {
		copy(h.Bytes(p, 4), []byte{byte(i), 0xaa, 0xbb, 0xcc})
	}

	// leave holes of 10 and 2 bytes: 12 free, no run of 11
	a := h.Alloc(10)
	b := h.Alloc(180)
	require.Equal(t, 10, h.ToOffset(b))
	h.Dealloc(a)
	_, err := h.TryAlloc(11)
	require.Equal(t, ErrExhausted, err)
	require.True(t, h.Dissolved())
	require.Equal(t, 12, h.Free(General))

	for i, p := range q2 {
		require.Equal(t, byte(i), h.Bytes(p, 2)[0])
	}
	for i, p := range q4 {
		require.Equal(t, []byte{byte(i), 0xaa, 0xbb, 0xcc}, h.Bytes(p, 4))
	}

	c := h.Alloc(10)
	require.Equal(t, 0, h.ToOffset(c))
	d := h.Alloc(2)
	require.Equal(t, 190, h.ToOffset(d))
	require.Zero(t, h.Free(Invalid))

	// freeing former slots goes through the general path with identical effect
	h.Dealloc(q2[5])
	require.Equal(t, 2, h.Free(General))
	require.False(t, h.occ.Has(202))
	require.False(t, h.occ.Has(203))
	require.False(t, h.bound.Has(203))
	require.True(t, h.occ.Has(204))
	require.Equal(t, q2[5], h.Alloc(2))

	h.Dealloc(q4[7])
	require.Equal(t, 4, h.Free(General))
	require.Equal(t, q4[7], h.Alloc(4))

	for _, p := range q2 {
		h.Dealloc(p)
	}
	for _, p := range q4 {
		h.Dealloc(p)
	}
	h.Dealloc(b)
	h.Dealloc(c)
	h.Dealloc(d)
	require.Equal(t, 256, h.Free(General))
	require.Zero(t, h.occ.Count(0, 256))
	require.Zero(t, h.bound.Count(0, 256))
}

func TestDissolveOnce(t *testing.T) {
	h := newHeap(t, 256)
	require.False(t, h.Dissolved())

	a := h.Alloc(190)
	require.Equal(t, 0, h.ToOffset(a))
	b := h.Alloc(5)
	require.True(t, h.Dissolved())
	require.Equal(t, 190, h.ToOffset(b))

	require.Equal(t, 195, h.ToOffset(h.Alloc(30)))
	mid := h.Alloc(10)
	require.Equal(t, 225, h.ToOffset(mid))
	require.Equal(t, 235, h.ToOffset(h.Alloc(20)))
	h.Dealloc(mid)
	require.Equal(t, 11, h.Free(Invalid))

	before := h.Stats()
	occ := append(bitmap.Bits(nil), h.occ...)
	bound := append(bitmap.Bits(nil), h.bound...)

	_, err := h.TryAlloc(11)
	require.True(t, errors.Is(err, ErrExhausted))
	require.True(t, h.Dissolved())
	require.Equal(t, before, h.Stats())
	require.Equal(t, occ, h.occ)
	require.Equal(t, bound, h.bound)
}

func TestDissolveStillExhausted(t *testing.T) {
	h := newHeap(t, 256)
	q2, _ := fillQuanta(t, h)
	require.NotNil(t, h.Alloc(192))

	// scattered free slots add up to 6 bytes, none adjacent
	h.Dealloc(q2[1])
	h.Dealloc(q2[5])
	h.Dealloc(q2[9])
	_, err := h.TryAlloc(3)
	require.Equal(t, ErrExhausted, err)
	require.True(t, h.Dissolved())
	require.Equal(t, 6, h.Free(General))

	require.Equal(t, q2[1], h.Alloc(2))
}
