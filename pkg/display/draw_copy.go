package display

import (
	"github.com/quickemu-project/spice-go/pkg/display/codec"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// applyDrawCopy blits msg.Src's decoded SrcArea into msg.Base.Box, scaling
// by nearest-neighbour sampling (§4.5). msg.ScaleMode is not consulted:
// INTERPOLATE is sampled the same way as NEAREST. alphaBlend selects
// DRAW_ALPHA_BLEND semantics: composite using the source's own alpha channel
// instead of overwriting. msg.RopDescriptor is not consulted either: every
// rop is applied as a plain SRC-COPY, and no degradation is logged.
func applyDrawCopy(s *Surface, msg wire.DrawCopy, src *codec.ARGBImage, alphaBlend bool) wire.Rect {
	dst := s.clampToBounds(msg.Base.Box)
	if dst.Empty() {
		return dst
	}
	inClip := clipTest(msg.Base.Clip)

	dstW := int(dst.Width())
	dstH := int(dst.Height())
	srcW := int(msg.SrcArea.Width())
	srcH := int(msg.SrcArea.Height())
	if srcW <= 0 || srcH <= 0 {
		return dst
	}

	for dy := 0; dy < dstH; dy++ {
		y := int(dst.Top) + dy
		sy := int(msg.SrcArea.Top) + dy*srcH/dstH
		if sy < 0 || sy >= src.Height {
			continue
		}
		for dx := 0; dx < dstW; dx++ {
			x := int(dst.Left) + dx
			if !inClip(int32(x), int32(y)) {
				continue
			}
			sx := int(msg.SrcArea.Left) + dx*srcW/dstW
			if sx < 0 || sx >= src.Width {
				continue
			}
			px := src.At(sx, sy)
			if alphaBlend {
				blendPixel(s.At(x, y), px)
			} else {
				copy(s.At(x, y), px)
			}
		}
	}
	return dst
}

// blendPixel composites src over dst using src's alpha byte (index 3),
// honouring per-pixel alpha the way DRAW_ALPHA_BLEND requires (§4.5).
func blendPixel(dst, src []byte) {
	a := uint32(src[3])
	if a == 0xFF {
		copy(dst, src)
		return
	}
	if a == 0 {
		return
	}
	inv := 255 - a
	for i := 0; i < 3; i++ {
		dst[i] = byte((uint32(src[i])*a + uint32(dst[i])*inv) / 255)
	}
	dst[3] = byte((a*255 + uint32(dst[3])*inv) / 255)
}
