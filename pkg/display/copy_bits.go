package display

import "github.com/quickemu-project/spice-go/pkg/wire"

// applyCopyBits performs an intra-surface blit (§4.5 COPY_BITS): the
// source rectangle has the same size as the destination box, offset by
// SrcPos, both on the same surface. Copies row-by-row in the direction
// that avoids overwriting source rows before they're read, the way a
// naive memmove must for overlapping regions.
func applyCopyBits(s *Surface, msg wire.CopyBits) wire.Rect {
	dst := s.clampToBounds(msg.Base.Box)
	if dst.Empty() {
		return dst
	}
	w := int(dst.Width())
	h := int(dst.Height())
	dx := int(msg.Base.Box.Left) - int(msg.SrcPos.X)
	dy := int(msg.Base.Box.Top) - int(msg.SrcPos.Y)

	rows := make([]int, h)
	for i := range rows {
		rows[i] = i
	}
	if dy > 0 {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	for _, ry := range rows {
		y := int(dst.Top) + ry
		sy := y - dy
		if sy < 0 || sy >= s.Height {
			continue
		}
		xs := makeRange(w, dx > 0)
		for _, rx := range xs {
			x := int(dst.Left) + rx
			sx := x - dx
			if sx < 0 || sx >= s.Width {
				continue
			}
			copy(s.At(x, y), s.At(sx, sy))
		}
	}
	return dst
}

func makeRange(n int, reversed bool) []int {
	out := make([]int, n)
	for i := range out {
		if reversed {
			out[i] = n - 1 - i
		} else {
			out[i] = i
		}
	}
	return out
}
