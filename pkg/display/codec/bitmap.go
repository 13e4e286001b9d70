package codec

import (
	"fmt"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

// DecodeBitmap decodes a SpiceImage of type BITMAP: an uncompressed,
// possibly palette-indexed raster (§4.5 payload table). width/height come
// from the SpiceImage common header; the BITMAP-specific header supplies
// format, x, y, stride, and palette_id ahead of the raw row data.
func DecodeBitmap(width, height int, payload []byte) (*ARGBImage, error) {
	r := wire.NewReader(payload)
	format := r.U8()
	_ = r.U8() // bitmap-specific flags (e.g. top-down vs bottom-up); not acted on
	_ = r.U32() // x
	_ = r.U32() // y
	stride := int(r.U32())
	_ = r.U64() // palette_id; palette formats are not a required format here
	data := r.Bytes(stride * height)
	if r.Err() != nil {
		return nil, &DecodeError{Format: "bitmap", Detail: r.Err().Error()}
	}

	out := NewARGBImage(width, height)
	for y := 0; y < height; y++ {
		row := data[y*stride : y*stride+stride]
		if err := decodeBitmapRow(out, row, y, width, format); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeBitmapRow(out *ARGBImage, row []byte, y, width int, format uint8) error {
	switch format {
	case wire.BitmapFmt32ARGB:
		for x := 0; x < width; x++ {
			copy(out.At(x, y), row[x*4:x*4+4])
		}
	case wire.BitmapFmt32XRGB:
		for x := 0; x < width; x++ {
			px := row[x*4 : x*4+4]
			out.Set(x, y, 0xFF000000|uint32(px[0])|uint32(px[1])<<8|uint32(px[2])<<16)
		}
	case wire.BitmapFmt565:
		for x := 0; x < width; x++ {
			v := uint16(row[x*2]) | uint16(row[x*2+1])<<8
			r5 := (v >> 11) & 0x1F
			g6 := (v >> 5) & 0x3F
			b5 := v & 0x1F
			out.Set(x, y, 0xFF000000|expand5(r5)<<16|expand6(g6)<<8|expand5(b5))
		}
	case wire.BitmapFmt555:
		for x := 0; x < width; x++ {
			v := uint16(row[x*2]) | uint16(row[x*2+1])<<8
			r5 := (v >> 10) & 0x1F
			g5 := (v >> 5) & 0x1F
			b5 := v & 0x1F
			out.Set(x, y, 0xFF000000|expand5(r5)<<16|expand5(g5)<<8|expand5(b5))
		}
	case wire.BitmapFmt1A:
		for x := 0; x < width; x++ {
			bit := (row[x/8] >> uint(7-x%8)) & 1
			if bit != 0 {
				out.Set(x, y, 0xFFFFFFFF)
			} else {
				out.Set(x, y, 0xFF000000)
			}
		}
	default:
		return &DecodeError{Format: "bitmap", Detail: fmt.Sprintf("unsupported pixel format %d", format)}
	}
	return nil
}

func expand5(v uint16) uint32 {
	return uint32(v<<3 | v>>2)
}

func expand6(v uint16) uint32 {
	return uint32(v<<2 | v>>4)
}
