package display

import (
	"github.com/quickemu-project/spice-go/internal/imagecache"
	"github.com/quickemu-project/spice-go/pkg/display/codec"
	"github.com/quickemu-project/spice-go/pkg/wire"
)

// decodeImage resolves img to a normalized ARGB bitmap, decoding its
// type-specific payload and honouring the cache flags (§4.5): CACHE_ME
// stores the decoded result under img.ID; CACHE_REPLACE_ME additionally
// evicts whatever was previously there first. FROM_CACHE never decodes
// anything — it's a pure lookup, fatal on miss.
func decodeImage(img wire.SpiceImage, cache *imagecache.Cache) (*codec.ARGBImage, error) {
	if img.Type == wire.ImageTypeFromCache {
		out, ok := cache.Get(img.ID)
		if !ok {
			return nil, &CacheMissError{ID: img.ID}
		}
		return out, nil
	}

	width, height := int(img.Width), int(img.Height)
	var (
		out *codec.ARGBImage
		err error
	)
	switch img.Type {
	case wire.ImageTypeBitmap:
		out, err = codec.DecodeBitmap(width, height, img.Payload)
	case wire.ImageTypeQUIC:
		out, err = codec.DecodeQUIC(width, height, img.Payload)
	case wire.ImageTypeLZRGB:
		out, err = codec.DecodeLZRGB(width, height, img.Payload)
	case wire.ImageTypeJPEG:
		out, err = codec.DecodeJPEG(width, height, img.Payload)
	case wire.ImageTypeZlibGLZ:
		out, err = codec.DecodeZlibGLZ(width, height, img.Payload)
	case wire.ImageTypeLZ4:
		out, err = codec.DecodeLZ4(width, height, img.Payload)
	default:
		out, err = nil, &codec.DecodeError{Format: "unknown", Detail: "unrecognized SpiceImage type"}
	}
	if err != nil {
		return nil, err
	}

	if img.Flags&wire.ImageFlagCacheReplaceMe != 0 {
		cache.Evict(img.ID)
	}
	if img.Flags&(wire.ImageFlagCacheMe|wire.ImageFlagCacheReplaceMe) != 0 {
		cache.Put(img.ID, out, true)
	}
	return out, nil
}
