package inputevents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

type recordingSender struct {
	msgType uint16
	payload []byte
}

func (r *recordingSender) Send(_ context.Context, msgType uint16, payload []byte) error {
	r.msgType = msgType
	r.payload = payload
	return nil
}

func TestKeyDownExtendedScancode(t *testing.T) {
	rec := &recordingSender{}
	enc := NewEncoder(rec)

	require.NoError(t, enc.KeyDown(context.Background(), Scancode{Code: 0x4D, Extended: true}))
	assert.Equal(t, wire.MsgInputsKeyDown, rec.msgType)
	assert.Equal(t, []byte{0xE0, 0x4D}, rec.payload)
}

func TestKeyUpPlainScancode(t *testing.T) {
	rec := &recordingSender{}
	enc := NewEncoder(rec)

	require.NoError(t, enc.KeyUp(context.Background(), Scancode{Code: 0x1E}))
	assert.Equal(t, wire.MsgInputsKeyUp, rec.msgType)
	assert.Equal(t, []byte{0x1E}, rec.payload)
}

func TestMousePositionEncoding(t *testing.T) {
	rec := &recordingSender{}
	enc := NewEncoder(rec)

	require.NoError(t, enc.MousePosition(context.Background(), 100, 200, 0x01, 0))
	assert.Equal(t, wire.MsgInputsMousePosition, rec.msgType)

	r := wire.NewReader(rec.payload)
	assert.Equal(t, int32(100), r.I32())
	assert.Equal(t, int32(200), r.I32())
	assert.Equal(t, uint16(0x01), r.U16())
	assert.Equal(t, uint8(0), r.U8())
	require.NoError(t, r.Err())
}

func TestMousePressRelease(t *testing.T) {
	rec := &recordingSender{}
	enc := NewEncoder(rec)

	require.NoError(t, enc.MousePress(context.Background(), wire.MouseButtonLeft, 0x01))
	assert.Equal(t, wire.MsgInputsMousePress, rec.msgType)

	require.NoError(t, enc.MouseRelease(context.Background(), wire.MouseButtonLeft, 0))
	assert.Equal(t, wire.MsgInputsMouseRelease, rec.msgType)
	assert.Equal(t, []byte{wire.MouseButtonLeft, 0, 0}, rec.payload)
}
