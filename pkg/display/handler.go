// Package display implements the display channel pipeline (§4.5): surface
// lifecycle, image decoding and caching, draw ops, and video streams,
// emitting frame-update records to an external Sink.
package display

import (
	"fmt"
	"log/slog"

	"github.com/quickemu-project/spice-go/internal/imagecache"
	"github.com/quickemu-project/spice-go/pkg/sink"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// Handler implements channel.Handler for the Display channel. It owns its
// surfaces, image cache, and streams exclusively (§5 "Shared resources");
// nothing outside its own dispatch goroutine ever touches them.
type Handler struct {
	surfaces *SurfaceTable
	streams  *streamTable
	cache    *imagecache.Cache
	sink     sink.Sink
	logger   *slog.Logger
}

// NewHandler builds a display Handler delivering decoded frames to snk.
func NewHandler(snk sink.Sink, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := imagecache.New()
	if err != nil {
		return nil, fmt.Errorf("display: %w", err)
	}
	return &Handler{
		surfaces: newSurfaceTable(),
		streams:  newStreamTable(),
		cache:    cache,
		sink:     snk,
		logger:   logger,
	}, nil
}

// HandleMessage dispatches one Display-channel message (§4.5).
func (h *Handler) HandleMessage(msgType uint16, payload []byte) error {
	switch msgType {
	case wire.MsgDisplayMode:
		h.logger.Debug("legacy DISPLAY_MODE received, superseded by SURFACE_CREATE on modern servers")
		return nil

	case wire.MsgDisplayMark:
		// Legacy DISPLAY_MARK carries no surface_id; it always refers to
		// the primary surface (id 0).
		if err := h.surfaces.Mark(0); err != nil {
			h.logger.Warn("MARK on unknown primary surface", "err", err)
		}
		return nil

	case wire.MsgDisplaySurfaceCreate:
		return h.handleSurfaceCreate(payload)

	case wire.MsgDisplaySurfaceDestroy:
		return h.handleSurfaceDestroy(payload)

	case wire.MsgDisplayDrawFill:
		return h.handleDrawFill(payload)

	case wire.MsgDisplayDrawCopy, wire.MsgDisplayDrawOpaque, wire.MsgDisplayDrawBlend,
		wire.MsgDisplayDrawTransparent, wire.MsgDisplayDrawAlphaBlend:
		return h.handleDrawCopy(msgType, payload)

	case wire.MsgDisplayCopyBits:
		return h.handleCopyBits(payload)

	case wire.MsgDisplayStreamCreate:
		return h.handleStreamCreate(payload)

	case wire.MsgDisplayStreamData:
		return h.handleStreamData(payload)

	case wire.MsgDisplayStreamClip:
		return h.handleStreamClip(payload)

	case wire.MsgDisplayStreamDestroy:
		return h.handleStreamDestroy(payload)

	case wire.MsgDisplayInvalList:
		return h.handleInvalList(payload)

	case wire.MsgDisplayInvalAllPixmaps:
		h.cache.Clear()
		return nil

	case wire.MsgDisplayInvalPalette, wire.MsgDisplayInvalAllPalettes:
		// Palette-indexed bitmap formats aren't decoded by this client
		// (§4.5's required BITMAP formats are all direct-colour), so
		// palette cache invalidation has nothing to act on.
		return nil

	default:
		h.logger.Warn("unhandled display message", "type", msgType, "size", len(payload))
		return nil
	}
}

func (h *Handler) handleSurfaceCreate(payload []byte) error {
	m, err := wire.DecodeSurfaceCreate(payload)
	if err != nil {
		return fmt.Errorf("display: decode SURFACE_CREATE: %w", err)
	}
	s := h.surfaces.Create(m.SurfaceID, int(m.Width), int(m.Height), m.Format, m.Flags)
	h.sink.SurfaceCreated(s.ID, s.Width, s.Height, uint8(m.Format))
	return nil
}

func (h *Handler) handleSurfaceDestroy(payload []byte) error {
	m, err := wire.DecodeSurfaceDestroy(payload)
	if err != nil {
		return fmt.Errorf("display: decode SURFACE_DESTROY: %w", err)
	}
	h.surfaces.Destroy(m.SurfaceID)
	h.sink.SurfaceDestroyed(m.SurfaceID)
	return nil
}

func (h *Handler) handleDrawFill(payload []byte) error {
	m, err := wire.DecodeDrawFill(payload)
	if err != nil {
		return fmt.Errorf("display: decode DRAW_FILL: %w", err)
	}
	s, ok := h.surfaces.Drawable(m.Base.SurfaceID)
	if !ok {
		h.logger.Warn("DRAW_FILL on non-drawable surface", "surface_id", m.Base.SurfaceID)
		return nil
	}
	dirty := applyDrawFill(s, m)
	h.emitFrameUpdate(s, dirty)
	return nil
}

func (h *Handler) handleDrawCopy(msgType uint16, payload []byte) error {
	m, err := wire.DecodeDrawCopy(payload)
	if err != nil {
		return fmt.Errorf("display: decode draw-copy message %d: %w", msgType, err)
	}
	s, ok := h.surfaces.Drawable(m.Base.SurfaceID)
	if !ok {
		h.logger.Warn("draw-copy message on non-drawable surface", "surface_id", m.Base.SurfaceID, "type", msgType)
		return nil
	}

	src, err := decodeImage(m.Src, h.cache)
	if err != nil {
		if _, fatal := err.(*CacheMissError); fatal {
			return fmt.Errorf("display: %w", err)
		}
		h.logger.Warn("image decode failed, falling back to black fill", "image_id", m.Src.ID, "err", err)
		dirty := blackFill(s, m.Base.Box)
		h.emitFrameUpdate(s, dirty)
		return nil
	}

	alphaBlend := msgType == wire.MsgDisplayDrawAlphaBlend
	dirty := applyDrawCopy(s, m, src, alphaBlend)
	h.emitFrameUpdate(s, dirty)
	return nil
}

func (h *Handler) handleCopyBits(payload []byte) error {
	m, err := wire.DecodeCopyBits(payload)
	if err != nil {
		return fmt.Errorf("display: decode COPY_BITS: %w", err)
	}
	s, ok := h.surfaces.Drawable(m.Base.SurfaceID)
	if !ok {
		h.logger.Warn("COPY_BITS on non-drawable surface", "surface_id", m.Base.SurfaceID)
		return nil
	}
	dirty := applyCopyBits(s, m)
	h.emitFrameUpdate(s, dirty)
	return nil
}

func (h *Handler) handleStreamCreate(payload []byte) error {
	m, err := wire.DecodeStreamCreate(payload)
	if err != nil {
		return fmt.Errorf("display: decode STREAM_CREATE: %w", err)
	}
	h.streams.create(m)
	return nil
}

func (h *Handler) handleStreamData(payload []byte) error {
	m, err := wire.DecodeStreamData(payload)
	if err != nil {
		return fmt.Errorf("display: decode STREAM_DATA: %w", err)
	}
	st, ok := h.streams.get(m.StreamID)
	if !ok {
		h.logger.Warn("STREAM_DATA for unknown stream", "stream_id", m.StreamID)
		return nil
	}
	s, ok := h.surfaces.Drawable(st.surfaceID)
	if !ok {
		return nil
	}

	pix, stride, err := st.decodeFrame(m.Data)
	if err != nil {
		h.logger.Warn("stream frame decode failed, falling back to black fill", "stream_id", m.StreamID, "err", err)
		dirty := blackFill(s, st.dest)
		h.emitFrameUpdate(s, dirty)
		return nil
	}
	compositeStreamFrame(s, st.dest, pix, stride)
	h.emitFrameUpdate(s, s.clampToBounds(st.dest))
	return nil
}

func (h *Handler) handleStreamClip(payload []byte) error {
	m, err := wire.DecodeStreamClip(payload)
	if err != nil {
		return fmt.Errorf("display: decode STREAM_CLIP: %w", err)
	}
	h.streams.clip(m.StreamID, m.Clip)
	return nil
}

func (h *Handler) handleStreamDestroy(payload []byte) error {
	m, err := wire.DecodeStreamDestroy(payload)
	if err != nil {
		return fmt.Errorf("display: decode STREAM_DESTROY: %w", err)
	}
	h.streams.destroy(m.StreamID)
	return nil
}

func (h *Handler) handleInvalList(payload []byte) error {
	m, err := wire.DecodeInvalList(payload)
	if err != nil {
		return fmt.Errorf("display: decode INVAL_LIST: %w", err)
	}
	for _, id := range m.IDs {
		h.cache.Evict(id)
	}
	return nil
}

// emitFrameUpdate enqueues a frame-update record for dirty, unless it's
// empty (§4.5 "Emission"). Per-surface ordering is guaranteed by the
// display channel being single-threaded (§5).
func (h *Handler) emitFrameUpdate(s *Surface, dirty wire.Rect) {
	if dirty.Empty() {
		return
	}
	top := int(dirty.Top)
	left := int(dirty.Left)
	w := int(dirty.Width())
	rowBytes := w * 4
	pixels := make([]byte, 0, rowBytes*int(dirty.Height()))
	for y := top; y < int(dirty.Bottom); y++ {
		off := y*s.Stride + left*4
		pixels = append(pixels, s.Pix[off:off+rowBytes]...)
	}
	h.sink.FrameUpdate(s.ID, dirty, pixels, rowBytes)
}

// blackFill zeroes box on s and returns the clamped, actually-touched rect
// (§7 "Image decode failures fall back to a black fill").
func blackFill(s *Surface, box wire.Rect) wire.Rect {
	r := s.clampToBounds(box)
	for y := r.Top; y < r.Bottom; y++ {
		for x := r.Left; x < r.Right; x++ {
			s.Set(int(x), int(y), 0)
		}
	}
	return r
}

// compositeStreamFrame copies a decoded video frame's pixels onto surface s
// at dest, clamping to the surface's extent.
func compositeStreamFrame(s *Surface, dest wire.Rect, pix []byte, stride int) {
	r := s.clampToBounds(dest)
	w := int(r.Width())
	if w <= 0 {
		return
	}
	for y := 0; y < int(r.Height()); y++ {
		srcOff := y * stride
		srcRow := pix[srcOff : srcOff+w*4]
		dstOff := (int(r.Top)+y)*s.Stride + int(r.Left)*4
		copy(s.Pix[dstOff:dstOff+w*4], srcRow)
	}
}
