package display

import (
	"fmt"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

// SurfaceState is a surface's lifecycle stage (§4.5).
type SurfaceState int

const (
	SurfaceAbsent SurfaceState = iota
	SurfaceCreated
	SurfaceDrawable
	SurfaceDestroyed
)

// Surface is a pixel buffer identified by surface_id (§spec.md line 36):
// width, height, pixel format, stride, and raw pixel bytes, stored as
// packed 32-bit ARGB regardless of the format the server declared it in —
// every draw op composites in that one representation and the renderer
// learns the original format only for informational purposes
// (SurfaceCreated's format argument).
type Surface struct {
	ID            uint32
	Width, Height int
	Format        uint32
	State         SurfaceState
	Stride        int
	Pix           []byte
}

func newSurface(id uint32, width, height int, format uint32) *Surface {
	stride := width * 4
	return &Surface{
		ID:     id,
		Width:  width,
		Height: height,
		Format: format,
		State:  SurfaceCreated,
		Stride: stride,
		Pix:    make([]byte, stride*height),
	}
}

// At returns the 4-byte ARGB pixel at (x, y).
func (s *Surface) At(x, y int) []byte {
	off := y*s.Stride + x*4
	return s.Pix[off : off+4]
}

// clampToBounds intersects box with the surface's extent, returning an
// empty rect if there is no overlap.
func (s *Surface) clampToBounds(box wire.Rect) wire.Rect {
	r := box
	if r.Left < 0 {
		r.Left = 0
	}
	if r.Top < 0 {
		r.Top = 0
	}
	if r.Right > int32(s.Width) {
		r.Right = int32(s.Width)
	}
	if r.Bottom > int32(s.Height) {
		r.Bottom = int32(s.Height)
	}
	return r
}

// SurfaceTable is the arena keyed by surface_id (§9).
type SurfaceTable struct {
	surfaces map[uint32]*Surface
}

func newSurfaceTable() *SurfaceTable {
	return &SurfaceTable{surfaces: make(map[uint32]*Surface)}
}

// Create allocates a new surface, transitioning Absent -> Created.
func (t *SurfaceTable) Create(id uint32, width, height int, format, flags uint32) *Surface {
	s := newSurface(id, width, height, format)
	t.surfaces[id] = s
	return s
}

// Mark transitions a Created surface to Drawable (DISPLAY_MARK).
func (t *SurfaceTable) Mark(id uint32) error {
	s, ok := t.surfaces[id]
	if !ok {
		return fmt.Errorf("display: MARK on unknown surface %d", id)
	}
	if s.State == SurfaceCreated {
		s.State = SurfaceDrawable
	}
	return nil
}

// Destroy frees a surface's buffer; subsequent lookups report absent.
func (t *SurfaceTable) Destroy(id uint32) {
	if s, ok := t.surfaces[id]; ok {
		s.State = SurfaceDestroyed
	}
	delete(t.surfaces, id)
}

// Get returns the live surface for id, if any (only Created/Drawable
// surfaces are present in the table; destroyed ones are deleted outright).
func (t *SurfaceTable) Get(id uint32) (*Surface, bool) {
	s, ok := t.surfaces[id]
	return s, ok
}

// Drawable returns the surface for id only if it's in the Drawable state;
// draws against any other state are dropped with a warning, not fatal
// (§4.5 "no fatal error").
func (t *SurfaceTable) Drawable(id uint32) (*Surface, bool) {
	s, ok := t.surfaces[id]
	if !ok || s.State != SurfaceDrawable {
		return nil, false
	}
	return s, true
}
