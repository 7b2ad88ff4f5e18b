package bitmap

import "math/bits"

// Bits is a bit vector laid over a byte slice. Bit i lives in byte i>>3,
// lowest bit first, so bit 0 of a byte comes before bit 7.
type Bits []byte

const full = byte(0xff)

func (b Bits) Len() int {
	return len(b) * 8
}

func (b Bits) Has(i int) bool {
	return b[i>>3]&(1<<uint(i&7)) != 0
}

// Set sets bit i and reports whether it was clear before.
func (b Bits) Set(i int) bool {
	r := b.Has(i)
	b[i>>3] |= 1 << uint(i&7)
	return !r
}

// Unset clears bit i and reports whether it was set before.
func (b Bits) Unset(i int) bool {
	r := b.Has(i)
	b[i>>3] &^= 1 << uint(i&7)
	return r
}

// FirstZero returns the index of the first clear bit in [from, to), or to
// if every bit in the range is set.
func (b Bits) FirstZero(from, to int) int {
	for from < to {
		v := ^b[from>>3] >> uint(from&7)
		if v != 0 {
			if i := from + bits.TrailingZeros8(v); i < to {
				return i
			}
			return to
		}
		from = from | 7 + 1
	}
	return to
}

// NextSet returns the index of the first set bit in [from, to), or to if
// the range is clear.
func (b Bits) NextSet(from, to int) int {
	for from < to {
		v := b[from>>3] >> uint(from&7)
		if v != 0 {
			if i := from + bits.TrailingZeros8(v); i < to {
				return i
			}
			return to
		}
		from = from | 7 + 1
	}
	return to
}

// SetRange sets every bit in [from, to).
func (b Bits) SetRange(from, to int) {
	for from < to {
		n := chunk(from, to)
		if n == 8 {
			b[from>>3] = full
		} else {
			b[from>>3] |= mask(from, n)
		}
		from += n
	}
}

// UnsetRange clears every bit in [from, to).
func (b Bits) UnsetRange(from, to int) {
	for from < to {
		n := chunk(from, to)
		if n == 8 {
			b[from>>3] = 0
		} else {
			b[from>>3] &^= mask(from, n)
		}
		from += n
	}
}

// Count returns the number of set bits in [from, to).
func (b Bits) Count(from, to int) int {
	c := 0
	for from < to {
		n := chunk(from, to)
		c += bits.OnesCount8(b[from>>3] & mask(from, n))
		from += n
	}
	return c
}

// chunk is the number of bits from `from` up to the end of its byte,
// capped by to.
func chunk(from, to int) int {
	n := 8 - from&7
	if n > to-from {
		n = to - from
	}
	return n
}

func mask(from, n int) byte {
	return byte((uint(1)<<uint(n) - 1) << uint(from&7))
}

// AppendByte renders v as eight '0'/'1' characters, lowest bit first.
func AppendByte(dst []byte, v byte) []byte {
	for i := uint(0); i < 8; i++ {
		if v&(1<<i) != 0 {
			dst = append(dst, '1')
		} else {
			dst = append(dst, '0')
		}
	}
	return dst
}
