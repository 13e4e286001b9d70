// Package sink defines the client-to-renderer interface (§6): the
// collaborator that receives decoded frames and cursor updates from the
// display and cursor channels.
package sink

import "github.com/quickemu-project/spice-go/pkg/wire"

// Sink receives display and cursor updates. Implementations must not block
// for long — the display channel's single read/dispatch task calls these
// synchronously and a slow sink stalls that channel.
type Sink interface {
	SurfaceCreated(id uint32, width, height int, format uint8)
	SurfaceDestroyed(id uint32)
	FrameUpdate(id uint32, rect wire.Rect, pixels []byte, stride int)
	CursorShape(shape CursorShape)
	CursorPosition(x, y int16)
	CursorHidden()
}

// CursorShape is the decoded cursor bitmap handed to Sink.CursorShape.
type CursorShape struct {
	Width, Height int
	HotX, HotY    int
	ARGB          []byte
}

// Recorder is a trivial in-memory Sink used by tests: it just appends every
// call it receives, in order, mirroring the teacher's callback-registration
// test doubles rather than asserting anything itself.
type Recorder struct {
	Created   []SurfaceCreatedEvent
	Destroyed []uint32
	Updates   []FrameUpdateEvent
	Shapes    []CursorShape
	Positions []CursorPositionEvent
	Hidden    int
}

// SurfaceCreatedEvent records one Sink.SurfaceCreated call.
type SurfaceCreatedEvent struct {
	ID            uint32
	Width, Height int
	Format        uint8
}

// FrameUpdateEvent records one Sink.FrameUpdate call. Pixels is copied so
// later surface mutation cannot change a previously recorded snapshot.
type FrameUpdateEvent struct {
	ID     uint32
	Rect   wire.Rect
	Pixels []byte
	Stride int
}

// CursorPositionEvent records one Sink.CursorPosition call.
type CursorPositionEvent struct {
	X, Y int16
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SurfaceCreated(id uint32, width, height int, format uint8) {
	r.Created = append(r.Created, SurfaceCreatedEvent{ID: id, Width: width, Height: height, Format: format})
}

func (r *Recorder) SurfaceDestroyed(id uint32) {
	r.Destroyed = append(r.Destroyed, id)
}

func (r *Recorder) FrameUpdate(id uint32, rect wire.Rect, pixels []byte, stride int) {
	cp := make([]byte, len(pixels))
	copy(cp, pixels)
	r.Updates = append(r.Updates, FrameUpdateEvent{ID: id, Rect: rect, Pixels: cp, Stride: stride})
}

func (r *Recorder) CursorShape(shape CursorShape) {
	r.Shapes = append(r.Shapes, shape)
}

func (r *Recorder) CursorPosition(x, y int16) {
	r.Positions = append(r.Positions, CursorPositionEvent{X: x, Y: y})
}

func (r *Recorder) CursorHidden() {
	r.Hidden++
}
