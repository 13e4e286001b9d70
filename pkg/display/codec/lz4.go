package codec

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

// DecodeLZ4 decodes a SpiceImage of type LZ4: a length-prefixed LZ4 stream
// (§4.5) that inflates to an uncompressed BITMAP payload.
func DecodeLZ4(width, height int, payload []byte) (*ARGBImage, error) {
	r := wire.NewReader(payload)
	n := r.U32()
	data := r.Bytes(int(n))
	if r.Err() != nil {
		return nil, &DecodeError{Format: "lz4", Detail: r.Err().Error()}
	}

	zr := lz4.NewReader(bytes.NewReader(data))
	inflated, err := io.ReadAll(zr)
	if err != nil {
		return nil, &DecodeError{Format: "lz4", Detail: err.Error()}
	}

	return DecodeBitmap(width, height, inflated)
}
