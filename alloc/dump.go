package alloc

import (
	"io"

	"github.com/funny-falcon/bitheap/bitmap"
)

const bytesPerLine = 4

// Map writes the bitmaps as binary text, lowest bit of each byte first:
// the general occupancy and boundary bitmaps, then each quantum cache's
// slot bitmap. Before dissolution the general occupancy part stops where
// the slot bitmaps begin.
func (h *Heap) Map(w io.Writer) error {
	h.mustLive()
	gen := h.generalLen() / 8
	var buf []byte
	buf = appendSection(buf, "general occupancy", h.occ[:gen])
	buf = appendSection(buf, "general boundary", h.bound)
	buf = appendSection(buf, "quantum2 slots", h.quanta[0].slots)
	buf = appendSection(buf, "quantum4 slots", h.quanta[1].slots)
	buf = append(buf, "____\n"...)
	_, err := w.Write(buf)
	return err
}

// FullMap writes the whole occupancy and boundary bitmaps, ignoring where
// the quantum slot bitmaps live.
func (h *Heap) FullMap(w io.Writer) error {
	h.mustLive()
	var buf []byte
	buf = appendSection(buf, "occupancy", h.occ)
	buf = appendSection(buf, "boundary", h.bound)
	buf = append(buf, "____\n"...)
	_, err := w.Write(buf)
	return err
}

func appendSection(buf []byte, title string, b bitmap.Bits) []byte {
	buf = append(buf, title...)
	buf = append(buf, ":\n"...)
	for i, v := range b {
		buf = bitmap.AppendByte(buf, v)
		buf = append(buf, '\t')
		if (i+1)%bytesPerLine == 0 {
			buf = append(buf, '\n')
		}
	}
	if len(b)%bytesPerLine != 0 {
		buf = append(buf, '\n')
	}
	return buf
}
