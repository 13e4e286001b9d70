// Package codec decodes SpiceImage payloads (§4.5 "Image decoding") into a
// single normalized 32-bit ARGB representation every draw op composites
// from, regardless of which wire format or compression produced it.
package codec

import "fmt"

// ARGBImage is a decoded image normalized to 32-bit ARGB: each pixel is 4
// bytes, little-endian, laid out identically to a 32-bit xRGB/ARGB surface
// (byte order B, G, R, A) so it can be memcpy'd straight into a surface's
// pixel buffer.
type ARGBImage struct {
	Width, Height int
	Stride        int // bytes per row; Stride >= Width*4
	Pix           []byte
}

// NewARGBImage allocates a zeroed (transparent black) image.
func NewARGBImage(width, height int) *ARGBImage {
	stride := width * 4
	return &ARGBImage{Width: width, Height: height, Stride: stride, Pix: make([]byte, stride*height)}
}

// At returns the 4-byte pixel at (x, y).
func (img *ARGBImage) At(x, y int) []byte {
	off := y*img.Stride + x*4
	return img.Pix[off : off+4]
}

// Set writes a little-endian 0xAARRGGBB pixel at (x, y).
func (img *ARGBImage) Set(x, y int, argb uint32) {
	p := img.At(x, y)
	p[0] = byte(argb)
	p[1] = byte(argb >> 8)
	p[2] = byte(argb >> 16)
	p[3] = byte(argb >> 24)
}

// DecodeError is the DecodeError error kind (§7): an image decoder failed
// on a specific format. It is not fatal — callers fall back to a black fill
// for the affected region (§7 "Image decode failures").
type DecodeError struct {
	Format string
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %s: %s", e.Format, e.Detail)
}
