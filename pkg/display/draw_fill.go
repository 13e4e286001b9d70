package display

import "github.com/quickemu-project/spice-go/pkg/wire"

// clipTest returns a predicate reporting whether (x, y) is inside clip.
// NONE and PATH (treated as NONE; no warning is logged) always pass; RECTS
// passes inside the union of the listed rectangles (§4.5).
func clipTest(clip wire.Clip) func(x, y int32) bool {
	if clip.Type != wire.ClipTypeRects || len(clip.Rects) == 0 {
		return func(int32, int32) bool { return true }
	}
	rects := clip.Rects
	return func(x, y int32) bool {
		for _, r := range rects {
			if x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom {
				return true
			}
		}
		return false
	}
}

// applyDrawFill fills msg.Base.Box on surface with the brush's solid
// colour, respecting the clip, and returns the rect actually touched
// (clamped to the surface) for the frame-update record.
func applyDrawFill(s *Surface, msg wire.DrawFill) wire.Rect {
	box := s.clampToBounds(msg.Base.Box)
	if box.Empty() || msg.Brush.Type != wire.BrushTypeSolid {
		return box
	}
	inClip := clipTest(msg.Base.Clip)
	for y := box.Top; y < box.Bottom; y++ {
		for x := box.Left; x < box.Right; x++ {
			if inClip(x, y) {
				// Brush.Color already carries the surface's own pixel
				// layout (e.g. 0x00RRGGBB for 32-bit xRGB); write it as-is
				// rather than forcing a reserved/alpha byte.
				s.Set(int(x), int(y), msg.Brush.Color)
			}
		}
	}
	return box
}

// Set writes a little-endian packed pixel value at (x, y) on the surface.
func (s *Surface) Set(x, y int, argb uint32) {
	p := s.At(x, y)
	p[0] = byte(argb)
	p[1] = byte(argb >> 8)
	p[2] = byte(argb >> 16)
	p[3] = byte(argb >> 24)
}
