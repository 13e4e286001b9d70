package wire

// CursorShapeMsg is the common header + pixel payload of SPICE_MSG_CURSOR_
// INIT/SET: a cursor bitmap plus its hotspot (§6 "CursorShape(shape)").
type CursorShapeMsg struct {
	Width, Height uint16
	HotX, HotY    uint16
	Type          uint8
	// ARGB is the decoded 32-bit-per-pixel cursor image, Width*Height
	// pixels, row-major, little-endian per pixel. Only the ARGB cursor
	// type is decoded directly; MONO cursors are expanded to ARGB
	// (opaque black/white, transparent elsewhere).
	ARGB []byte
}

func readCursorShape(r *Reader) CursorShapeMsg {
	m := CursorShapeMsg{
		Width:  r.U16(),
		Height: r.U16(),
		HotX:   r.U16(),
		HotY:   r.U16(),
		Type:   r.U8(),
	}
	n := int(m.Width) * int(m.Height)
	switch m.Type {
	case CursorTypeARGB:
		m.ARGB = r.Bytes(n * 4)
	case CursorTypeMono:
		rowBytes := (int(m.Width) + 7) / 8
		mono := r.Bytes(rowBytes * int(m.Height) * 2) // AND mask + XOR mask
		if r.Err() == nil {
			m.ARGB = expandMonoCursor(mono, int(m.Width), int(m.Height), rowBytes)
		}
	}
	return m
}

// expandMonoCursor turns a 1-bpp AND/XOR cursor mask pair into ARGB:
// AND=1,XOR=0 -> transparent; AND=0 -> opaque, colour from XOR (black/white).
func expandMonoCursor(mask []byte, width, height, rowBytes int) []byte {
	out := make([]byte, width*height*4)
	andPlane := mask[:rowBytes*height]
	xorPlane := mask[rowBytes*height:]
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			andBit := (andPlane[y*rowBytes+x/8] >> uint(7-x%8)) & 1
			xorBit := (xorPlane[y*rowBytes+x/8] >> uint(7-x%8)) & 1
			off := (y*width + x) * 4
			if andBit == 1 {
				continue // leaves the pixel zeroed: transparent
			}
			if xorBit == 1 {
				out[off], out[off+1], out[off+2], out[off+3] = 0xFF, 0xFF, 0xFF, 0xFF
			} else {
				out[off], out[off+1], out[off+2], out[off+3] = 0x00, 0x00, 0x00, 0xFF
			}
		}
	}
	return out
}

// DecodeCursorInit parses SPICE_MSG_CURSOR_INIT: position plus the initial
// shape.
type CursorInit struct {
	X, Y  int16
	Trail uint16
	Shape CursorShapeMsg
}

// DecodeCursorInit parses a CURSOR_INIT body.
func DecodeCursorInit(buf []byte) (CursorInit, error) {
	r := NewReader(buf)
	m := CursorInit{X: r.I16(), Y: r.I16(), Trail: r.U16()}
	_ = r.U16() // visible flag, not acted on independently of SET/HIDE
	m.Shape = readCursorShape(r)
	return m, r.Err()
}

// CursorSet is SPICE_MSG_CURSOR_SET: a new shape becomes current.
type CursorSet struct {
	X, Y  int16
	Shape CursorShapeMsg
}

// DecodeCursorSet parses a CURSOR_SET body.
func DecodeCursorSet(buf []byte) (CursorSet, error) {
	r := NewReader(buf)
	m := CursorSet{X: r.I16(), Y: r.I16()}
	_ = r.U8() // visible flag
	m.Shape = readCursorShape(r)
	return m, r.Err()
}

// CursorMove is SPICE_MSG_CURSOR_MOVE.
type CursorMove struct {
	X, Y int16
}

// DecodeCursorMove parses a CURSOR_MOVE body.
func DecodeCursorMove(buf []byte) (CursorMove, error) {
	r := NewReader(buf)
	return CursorMove{X: r.I16(), Y: r.I16()}, r.Err()
}
