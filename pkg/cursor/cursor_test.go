package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickemu-project/spice-go/pkg/sink"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

func TestCursorInitDispatchesPositionAndShape(t *testing.T) {
	rec := sink.NewRecorder()
	h := NewHandler(rec, nil)

	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8} // 2 ARGB pixels
	payload := wire.NewWriter().
		I16(10).I16(20).U16(0).U16(0). // CursorInit: x, y, trail, visible
		U16(2).U16(1).U16(0).U16(0).U8(wire.CursorTypeARGB).
		Raw(pix).
		Bytes()

	require.NoError(t, h.HandleMessage(wire.MsgCursorInit, payload))
	require.Len(t, rec.Positions, 1)
	assert.Equal(t, int16(10), rec.Positions[0].X)
	assert.Equal(t, int16(20), rec.Positions[0].Y)
	require.Len(t, rec.Shapes, 1)
	assert.Equal(t, 2, rec.Shapes[0].Width)
	assert.Equal(t, 1, rec.Shapes[0].Height)
	assert.Equal(t, pix, rec.Shapes[0].ARGB)
}

func TestCursorSetDispatchesShape(t *testing.T) {
	rec := sink.NewRecorder()
	h := NewHandler(rec, nil)

	pix := make([]byte, 1*1*4)
	payload := wire.NewWriter().
		I16(5).I16(6).U8(1). // CursorSet: x, y, visible(u8)
		U16(1).U16(1).U16(0).U16(0).U8(wire.CursorTypeARGB).
		Raw(pix).
		Bytes()

	require.NoError(t, h.HandleMessage(wire.MsgCursorSet, payload))
	require.Len(t, rec.Shapes, 1)
	require.Len(t, rec.Positions, 1)
	assert.Equal(t, int16(5), rec.Positions[0].X)
}

func TestCursorMoveUpdatesPositionOnly(t *testing.T) {
	rec := sink.NewRecorder()
	h := NewHandler(rec, nil)

	payload := wire.NewWriter().I16(42).I16(99).Bytes()
	require.NoError(t, h.HandleMessage(wire.MsgCursorMove, payload))
	require.Len(t, rec.Positions, 1)
	assert.Equal(t, int16(42), rec.Positions[0].X)
	assert.Equal(t, int16(99), rec.Positions[0].Y)
	assert.Empty(t, rec.Shapes)
}

func TestCursorHideAndReset(t *testing.T) {
	rec := sink.NewRecorder()
	h := NewHandler(rec, nil)

	require.NoError(t, h.HandleMessage(wire.MsgCursorHide, nil))
	require.NoError(t, h.HandleMessage(wire.MsgCursorReset, nil))
	assert.Equal(t, 2, rec.Hidden)
}

func TestCursorInvalMessagesAreNoOps(t *testing.T) {
	rec := sink.NewRecorder()
	h := NewHandler(rec, nil)

	require.NoError(t, h.HandleMessage(wire.MsgCursorInvalOne, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	require.NoError(t, h.HandleMessage(wire.MsgCursorInvalAll, nil))
	assert.Empty(t, rec.Shapes)
	assert.Empty(t, rec.Positions)
	assert.Equal(t, 0, rec.Hidden)
}

func TestMonoCursorExpandsToARGB(t *testing.T) {
	// 8x1 mono cursor: AND mask all zero (opaque everywhere), XOR mask
	// 0xF0 (left half white, right half black).
	and := []byte{0x00}
	xor := []byte{0xF0}
	mask := append(append([]byte{}, and...), xor...)

	payload := wire.NewWriter().
		I16(0).I16(0).U16(0).U16(0).
		U16(8).U16(1).U16(0).U16(0).U8(wire.CursorTypeMono).
		Raw(mask).
		Bytes()

	rec := sink.NewRecorder()
	h := NewHandler(rec, nil)
	require.NoError(t, h.HandleMessage(wire.MsgCursorInit, payload))
	require.Len(t, rec.Shapes, 1)
	shape := rec.Shapes[0]
	require.Len(t, shape.ARGB, 8*4)
	// First pixel: XOR bit 1 -> white, opaque.
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, shape.ARGB[0:4])
	// Fifth pixel: XOR bit 0 -> black, opaque.
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0xFF}, shape.ARGB[16:20])
}
