package codec

import (
	"bytes"
	"image/jpeg"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

// DecodeJPEG decodes a SpiceImage of type JPEG: a length-prefixed JPEG
// stream (§4.5). There is no third-party JPEG decoder anywhere in the
// example corpus, so this is the one codec that falls back to the standard
// library image/jpeg (documented as a stdlib exception in the design
// ledger, not a default).
func DecodeJPEG(width, height int, payload []byte) (*ARGBImage, error) {
	r := wire.NewReader(payload)
	n := r.U32()
	data := r.Bytes(int(n))
	if r.Err() != nil {
		return nil, &DecodeError{Format: "jpeg", Detail: r.Err().Error()}
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: "jpeg", Detail: err.Error()}
	}

	out := NewARGBImage(width, height)
	b := img.Bounds()
	for y := 0; y < height && y < b.Dy(); y++ {
		for x := 0; x < width && x < b.Dx(); x++ {
			r16, g16, b16, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Set(x, y, 0xFF000000|uint32(r16>>8)<<16|uint32(g16>>8)<<8|uint32(b16>>8))
		}
	}
	return out, nil
}
