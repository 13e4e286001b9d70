package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickemu-project/spice-go/pkg/sink"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

func newTestHandler(t *testing.T) (*Handler, *sink.Recorder) {
	t.Helper()
	rec := sink.NewRecorder()
	h, err := NewHandler(rec, nil)
	require.NoError(t, err)
	return h, rec
}

func TestSurfaceCreateFillMarkEmitsOneFrameUpdate(t *testing.T) {
	// Scenario S5.
	h, rec := newTestHandler(t)

	create := wire.NewWriter().U32(0).U32(4).U32(4).U32(uint32(5)).U32(wire.SurfaceFlagPrimary).Bytes()
	require.NoError(t, h.HandleMessage(wire.MsgDisplaySurfaceCreate, create))
	require.Len(t, rec.Created, 1)

	require.NoError(t, h.HandleMessage(wire.MsgDisplayMark, nil))

	box := wire.Rect{Left: 0, Top: 0, Right: 4, Bottom: 4}
	fill := wire.NewWriter().
		U32(0).                  // surface_id
		I32(box.Left).I32(box.Top).I32(box.Right).I32(box.Bottom).
		U8(wire.ClipTypeNone).
		U8(wire.BrushTypeSolid).U32(0xFF0000). // brush
		U8(wire.RopSrcCopy).
		U8(0). // no mask
		Bytes()
	require.NoError(t, h.HandleMessage(wire.MsgDisplayDrawFill, fill))

	require.Len(t, rec.Updates, 1)
	update := rec.Updates[0]
	assert.Equal(t, uint32(0), update.ID)
	assert.Equal(t, box, update.Rect)

	expectedPixel := []byte{0x00, 0x00, 0xFF, 0x00}
	for i := 0; i < 16; i++ {
		got := update.Pixels[i*4 : i*4+4]
		assert.Equal(t, expectedPixel, got, "pixel %d", i)
	}
}

func TestCacheHitRendersSamePixels(t *testing.T) {
	// Scenario S6.
	h, _ := newTestHandler(t)

	create := wire.NewWriter().U32(0).U32(2).U32(2).U32(uint32(5)).U32(wire.SurfaceFlagPrimary).Bytes()
	require.NoError(t, h.HandleMessage(wire.MsgDisplaySurfaceCreate, create))
	require.NoError(t, h.HandleMessage(wire.MsgDisplayMark, nil))

	bitmapPayload := wire.NewWriter().
		U8(wire.BitmapFmt32ARGB).
		U8(0).    // bitmap flags
		U32(0).   // x
		U32(0).   // y
		U32(8).   // stride = 2 * 4
		U64(0).   // palette_id
		Raw([]byte{
			0x11, 0x22, 0x33, 0xFF, 0x44, 0x55, 0x66, 0xFF,
			0x77, 0x88, 0x99, 0xFF, 0xAA, 0xBB, 0xCC, 0xFF,
		}).
		Bytes()

	img := wire.NewWriter().
		U64(42).                       // id
		U8(wire.ImageTypeBitmap).      // type
		U8(wire.ImageFlagCacheMe).     // flags
		I32(2).I32(2).                 // width, height
		Raw(bitmapPayload).
		Bytes()

	drawCopy := func(src []byte) []byte {
		return wire.NewWriter().
			U32(0). // surface_id
			I32(0).I32(0).I32(2).I32(2). // box
			U8(wire.ClipTypeNone).
			Raw(src). // SpiceImage
			I32(0).I32(0).I32(2).I32(2). // src_area
			U8(wire.RopSrcCopy).
			U8(wire.ScaleNearest).
			Bytes()
	}

	require.NoError(t, h.HandleMessage(wire.MsgDisplayDrawCopy, drawCopy(img)))
	first, ok := h.surfaces.Get(0)
	require.True(t, ok)
	original := append([]byte(nil), first.Pix...)

	// Wipe and redraw from FROM_CACHE; result should be byte-identical.
	for i := range first.Pix {
		first.Pix[i] = 0
	}

	cacheImg := wire.NewWriter().
		U64(42).
		U8(wire.ImageTypeFromCache).
		U8(0).
		I32(2).I32(2).
		Bytes()

	require.NoError(t, h.HandleMessage(wire.MsgDisplayDrawCopy, drawCopy(cacheImg)))
	assert.Equal(t, original, first.Pix)
}
