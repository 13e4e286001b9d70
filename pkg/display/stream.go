package display

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/Eyevinn/mp4ff/avc"

	"github.com/quickemu-project/spice-go/pkg/wire"
)

// stream is a persistent video stream (§4.5 STREAM_CREATE/DATA/CLIP/
// DESTROY): decoded frame-by-frame and composited onto its target surface.
// MJPEG is required; other codecs are recognized but not decoded (the
// affected region degrades to black fill, per the image-decode-failure
// policy in §7).
type stream struct {
	id        uint32
	surfaceID uint32
	codec     uint8
	dest      wire.Rect
	clip      wire.Clip
}

func newStream(msg wire.StreamCreate) *stream {
	return &stream{id: msg.StreamID, surfaceID: msg.SurfaceID, codec: msg.CodecType, dest: msg.DestRect}
}

// decodeFrame decodes one STREAM_DATA payload into the stream's dest rect
// worth of ARGB pixels. Returns (nil, err) for anything but MJPEG; the
// caller black-fills instead of compositing on error.
func (st *stream) decodeFrame(data []byte) ([]byte, int, error) {
	if st.codec == wire.StreamCodecH264 {
		return nil, 0, &unsupportedStreamCodecError{codec: st.codec, detail: describeH264SPS(data)}
	}
	if st.codec != wire.StreamCodecMJPEG {
		return nil, 0, &unsupportedStreamCodecError{codec: st.codec}
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	w := int(st.dest.Width())
	h := int(st.dest.Height())
	stride := w * 4
	out := make([]byte, stride*h)
	b := img.Bounds()
	for y := 0; y < h && y < b.Dy(); y++ {
		for x := 0; x < w && x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := y*stride + x*4
			out[off] = byte(bl >> 8)
			out[off+1] = byte(g >> 8)
			out[off+2] = byte(r >> 8)
			out[off+3] = 0xFF
		}
	}
	return out, stride, nil
}

type unsupportedStreamCodecError struct {
	codec  uint8
	detail string
}

func (e *unsupportedStreamCodecError) Error() string {
	switch e.codec {
	case wire.StreamCodecH264:
		return fmt.Sprintf("display: H.264 stream codec is not decoded, only recognized (%s)", e.detail)
	default:
		return "display: unsupported stream codec"
	}
}

// describeH264SPS scans an Annex-B H.264 access unit for a SPS NAL (type 7)
// and parses just enough of it to report the stream's resolution, so a
// STREAM_CREATE/DATA pair that negotiated H.264 at least logs something
// actionable before the affected region degrades to black fill — full
// frame decode is out of scope (§4.5 treats only MJPEG as required).
func describeH264SPS(data []byte) string {
	sps := findAnnexBNAL(data, 7)
	if sps == nil {
		return "no SPS NAL found in access unit"
	}
	parsed, err := avc.ParseSPSNALUnit(sps, true)
	if err != nil {
		return fmt.Sprintf("SPS parse failed: %v", err)
	}
	return fmt.Sprintf("resolution=%dx%d profile_idc=%d", parsed.Width, parsed.Height, parsed.Profile)
}

// findAnnexBNAL returns the first NAL unit of nalType in an Annex-B byte
// stream (NAL units separated by 0x000001 or 0x00000001 start codes), or
// nil if none is found.
func findAnnexBNAL(data []byte, nalType byte) []byte {
	starts := make([]int, 0, 4)
	for i := 0; i+3 <= len(data); i++ {
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			starts = append(starts, i+3)
		}
	}
	for i, start := range starts {
		if start >= len(data) {
			continue
		}
		if data[start]&0x1F != nalType {
			continue
		}
		end := len(data)
		if i+1 < len(starts) {
			end = starts[i+1] - 3
		}
		return data[start:end]
	}
	return nil
}

// streamTable tracks live streams by id, analogous to SurfaceTable.
type streamTable struct {
	streams map[uint32]*stream
}

func newStreamTable() *streamTable {
	return &streamTable{streams: make(map[uint32]*stream)}
}

func (t *streamTable) create(msg wire.StreamCreate) *stream {
	s := newStream(msg)
	t.streams[s.id] = s
	return s
}

func (t *streamTable) get(id uint32) (*stream, bool) {
	s, ok := t.streams[id]
	return s, ok
}

func (t *streamTable) clip(id uint32, clip wire.Clip) {
	if s, ok := t.streams[id]; ok {
		s.clip = clip
	}
}

func (t *streamTable) destroy(id uint32) {
	delete(t.streams, id)
}
