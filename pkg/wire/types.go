package wire

// Rect is SpiceRect: an axis-aligned rectangle, all fields i32, little-endian
// on the wire, in that field order.
type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// Width returns Right-Left.
func (r Rect) Width() int32 { return r.Right - r.Left }

// Height returns Bottom-Top.
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Empty reports whether the rectangle encloses no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

// ReadRect decodes a SpiceRect.
func ReadRect(r *Reader) Rect {
	return Rect{
		Left:   r.I32(),
		Top:    r.I32(),
		Right:  r.I32(),
		Bottom: r.I32(),
	}
}

// Write encodes the rectangle.
func (r Rect) Write(w *Writer) {
	w.I32(r.Left).I32(r.Top).I32(r.Right).I32(r.Bottom)
}

// Point is SpicePoint: {x, y: i32}.
type Point struct {
	X int32
	Y int32
}

// ReadPoint decodes a SpicePoint.
func ReadPoint(r *Reader) Point {
	return Point{X: r.I32(), Y: r.I32()}
}

// Write encodes the point.
func (p Point) Write(w *Writer) {
	w.I32(p.X).I32(p.Y)
}
