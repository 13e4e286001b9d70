package wire

import (
	"encoding/binary"
	"fmt"
)

// Clip is SpiceClip: a clip mask attached to a drawable. Only NONE is
// required; RECTS carries an inline rect list. For PATH only the type byte
// is read, and the display pipeline treats it as NONE (§4.5).
type Clip struct {
	Type  uint8
	Rects []Rect
}

func readClip(r *Reader) Clip {
	c := Clip{Type: r.U8()}
	if c.Type != ClipTypeRects {
		return c
	}
	n := r.U32()
	c.Rects = make([]Rect, 0, n)
	for i := uint32(0); i < n; i++ {
		c.Rects = append(c.Rects, ReadRect(r))
	}
	return c
}

// DrawBase is SpiceDrawable's common prefix, shared by every DRAW_* op and
// COPY_BITS (§4.5 "base = {surface_id, box:Rect, clip}").
type DrawBase struct {
	SurfaceID uint32
	Box       Rect
	Clip      Clip
}

func readDrawBase(r *Reader) DrawBase {
	return DrawBase{
		SurfaceID: r.U32(),
		Box:       ReadRect(r),
		Clip:      readClip(r),
	}
}

// Brush is SpiceBrush; only the solid-colour kind is required (§4.5).
type Brush struct {
	Type  uint8
	Color uint32 // valid when Type == BrushTypeSolid
}

// Brush type tags.
const (
	BrushTypeNone  uint8 = 0
	BrushTypeSolid uint8 = 1
)

func readBrush(r *Reader) Brush {
	b := Brush{Type: r.U8()}
	if b.Type == BrushTypeSolid {
		b.Color = r.U32()
	}
	return b
}

// DrawFill is SPICE_MSG_DISPLAY_DRAW_FILL.
type DrawFill struct {
	Base          DrawBase
	Brush         Brush
	RopDescriptor uint8
	// Mask is the optional secondary clip mask (qxl_mask); not decoded
	// beyond its presence bit since no required rop consumes it.
	HasMask bool
}

// DecodeDrawFill parses a DRAW_FILL body.
func DecodeDrawFill(buf []byte) (DrawFill, error) {
	r := NewReader(buf)
	m := DrawFill{Base: readDrawBase(r), Brush: readBrush(r), RopDescriptor: r.U8()}
	m.HasMask = r.U8() != 0
	if m.HasMask {
		readPoint := ReadPoint(r)
		_ = readPoint
		_ = readClip(r)
	}
	return m, r.Err()
}

// SpiceImage is the inline image header plus its decoded type-specific
// payload, still in encoded form (§4.5 "Image decoding").
type SpiceImage struct {
	ID     uint64
	Type   uint8
	Flags  uint8
	Width  int32
	Height int32
	// Payload is everything after the common header, still encoded; the
	// display pipeline's codec package interprets it per Type.
	Payload []byte
}

// imageBitmapHeaderSize is the BITMAP-specific header preceding raw row
// data: format(1) + flags(1) + x(4) + y(4) + stride(4) + palette_id(8).
const imageBitmapHeaderSize = 22

// readImage decodes a SpiceImage embedded inline in a draw message. Unlike
// every other structure in this package, a SpiceImage's payload length
// isn't carried by the surrounding message — it has to be derived from the
// type-specific header (BITMAP's stride*height, or an explicit u32 length
// prefix for every compressed format) so the reader stops in exactly the
// right place for whatever fields follow the image in the enclosing
// message (§4.5 "Image decoding").
func readImage(r *Reader) SpiceImage {
	img := SpiceImage{
		ID:     r.U64(),
		Type:   r.U8(),
		Flags:  r.U8(),
		Width:  r.I32(),
		Height: r.I32(),
	}
	if r.err != nil {
		return img
	}

	switch img.Type {
	case ImageTypeFromCache:
		// No payload: FROM_CACHE is a pure cache lookup (§4.5).

	case ImageTypeBitmap:
		if r.Remaining() < imageBitmapHeaderSize {
			r.err = fmt.Errorf("wire: short read: BITMAP header needs %d bytes, have %d", imageBitmapHeaderSize, r.Remaining())
			return img
		}
		stride := int(binary.LittleEndian.Uint32(r.buf[r.off+10 : r.off+14]))
		img.Payload = r.Bytes(imageBitmapHeaderSize + stride*int(img.Height))

	default:
		// QUIC, LZ_RGB, JPEG, ZLIB_GLZ, LZ4: all length-prefixed streams.
		if r.Remaining() < 4 {
			r.err = fmt.Errorf("wire: short read: image length prefix needs 4 bytes, have %d", r.Remaining())
			return img
		}
		n := int(binary.LittleEndian.Uint32(r.buf[r.off : r.off+4]))
		img.Payload = r.Bytes(4 + n)
	}
	return img
}

// DrawCopy is SPICE_MSG_DISPLAY_DRAW_COPY (and, structurally, DRAW_OPAQUE /
// DRAW_BLEND / DRAW_TRANSPARENT / DRAW_ALPHA_BLEND — §4.5 treats them as
// DRAW_COPY variants for the required rop set).
type DrawCopy struct {
	Base          DrawBase
	Src           SpiceImage
	SrcArea       Rect
	RopDescriptor uint8
	ScaleMode     uint8
}

// DecodeDrawCopy parses a DRAW_COPY body (also used for the OPAQUE/BLEND/
// TRANSPARENT/ALPHA_BLEND variants, whose wire layout is identical for the
// fields this client consumes).
func DecodeDrawCopy(buf []byte) (DrawCopy, error) {
	r := NewReader(buf)
	m := DrawCopy{Base: readDrawBase(r)}
	m.Src = readImage(r)
	m.SrcArea = ReadRect(r)
	m.RopDescriptor = r.U8()
	m.ScaleMode = r.U8()
	return m, r.Err()
}

// CopyBits is SPICE_MSG_DISPLAY_COPY_BITS: an intra-surface blit.
type CopyBits struct {
	Base   DrawBase
	SrcPos Point
}

// DecodeCopyBits parses a COPY_BITS body.
func DecodeCopyBits(buf []byte) (CopyBits, error) {
	r := NewReader(buf)
	m := CopyBits{Base: readDrawBase(r), SrcPos: ReadPoint(r)}
	return m, r.Err()
}

// SurfaceCreate is SPICE_MSG_DISPLAY_SURFACE_CREATE.
type SurfaceCreate struct {
	SurfaceID uint32
	Width     uint32
	Height    uint32
	Format    uint32
	Flags     uint32
}

// DecodeSurfaceCreate parses a SURFACE_CREATE body.
func DecodeSurfaceCreate(buf []byte) (SurfaceCreate, error) {
	r := NewReader(buf)
	m := SurfaceCreate{
		SurfaceID: r.U32(),
		Width:     r.U32(),
		Height:    r.U32(),
		Format:    r.U32(),
		Flags:     r.U32(),
	}
	return m, r.Err()
}

// SurfaceDestroy is SPICE_MSG_DISPLAY_SURFACE_DESTROY.
type SurfaceDestroy struct {
	SurfaceID uint32
}

// DecodeSurfaceDestroy parses a SURFACE_DESTROY body.
func DecodeSurfaceDestroy(buf []byte) (SurfaceDestroy, error) {
	r := NewReader(buf)
	return SurfaceDestroy{SurfaceID: r.U32()}, r.Err()
}

// InvalList is SPICE_MSG_DISPLAY_INVAL_LIST: a list of u64 image cache ids
// to evict.
type InvalList struct {
	IDs []uint64
}

// DecodeInvalList parses an INVAL_LIST body.
func DecodeInvalList(buf []byte) (InvalList, error) {
	r := NewReader(buf)
	n := r.U32()
	list := InvalList{IDs: make([]uint64, 0, n)}
	for i := uint32(0); i < n; i++ {
		list.IDs = append(list.IDs, r.U64())
	}
	return list, r.Err()
}

// StreamCreate is SPICE_MSG_DISPLAY_STREAM_CREATE.
type StreamCreate struct {
	StreamID  uint32
	SurfaceID uint32
	CodecType uint8
	DestRect  Rect
}

// Stream codec type ids (SpiceVideoCodecType), the subset this client cares
// about: MJPEG is decoded frame-by-frame; others are recognized enough to
// report as unsupported rather than silently corrupt the surface.
const (
	StreamCodecMJPEG uint8 = 1
	StreamCodecH264  uint8 = 4
)

// DecodeStreamCreate parses a STREAM_CREATE body (the fields this client
// consumes; upstream SpiceMsgDisplayStreamCreate carries additional
// capability/hint fields this client does not act on).
func DecodeStreamCreate(buf []byte) (StreamCreate, error) {
	r := NewReader(buf)
	m := StreamCreate{
		SurfaceID: r.U32(),
		// flags / additional hint fields skipped: not consumed by this client.
	}
	m.CodecType = r.U8()
	m.StreamID = r.U32()
	_ = r.U64() // src_width/src_height-ish reserved hint, unused
	m.DestRect = ReadRect(r)
	return m, r.Err()
}

// StreamData is SPICE_MSG_DISPLAY_STREAM_DATA: one frame's encoded bytes.
type StreamData struct {
	StreamID uint32
	Data     []byte
}

// DecodeStreamData parses a STREAM_DATA body.
func DecodeStreamData(buf []byte) (StreamData, error) {
	r := NewReader(buf)
	m := StreamData{StreamID: r.U32()}
	_ = r.U32() // multimedia timestamp, unused by the core
	n := r.U32()
	m.Data = r.Bytes(int(n))
	return m, r.Err()
}

// StreamClip is SPICE_MSG_DISPLAY_STREAM_CLIP.
type StreamClip struct {
	StreamID uint32
	Clip     Clip
}

// DecodeStreamClip parses a STREAM_CLIP body.
func DecodeStreamClip(buf []byte) (StreamClip, error) {
	r := NewReader(buf)
	m := StreamClip{StreamID: r.U32(), Clip: readClip(r)}
	return m, r.Err()
}

// StreamDestroy is SPICE_MSG_DISPLAY_STREAM_DESTROY.
type StreamDestroy struct {
	StreamID uint32
}

// DecodeStreamDestroy parses a STREAM_DESTROY body.
func DecodeStreamDestroy(buf []byte) (StreamDestroy, error) {
	r := NewReader(buf)
	return StreamDestroy{StreamID: r.U32()}, r.Err()
}
