// Package imagecache implements the display channel's image cache (§4.5):
// decoded bitmaps kept under their SpiceImage id so a later FROM_CACHE
// image can be blitted without re-decoding.
package imagecache

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/quickemu-project/spice-go/pkg/display/codec"
)

// Cache holds decoded bitmaps keyed by the server's 64-bit image id. It is
// owned exclusively by one display channel (§5) and is not safe for
// concurrent use across channels.
//
// ristretto is a probabilistic cache: admission and eviction are governed
// by an access-frequency sketch, so Set does not guarantee a later Get hit.
// FROM_CACHE semantics require the opposite guarantee — every id the
// server marked CACHE_ME must still be resolvable, potentially much later
// (§4.5: "FROM_CACHE with a missing id is a fatal channel error"). A small
// side index of the ids the server told us to retain makes that guarantee:
// ristretto still does the cost-based bulk eviction for memory pressure,
// but pinned entries are also held in the side map, which Get consults
// first, so they stay resolvable until Evict or Clear regardless of what
// ristretto drops.
type Cache struct {
	store *ristretto.Cache[uint64, *codec.ARGBImage]

	mu     sync.Mutex
	pinned map[uint64]*codec.ARGBImage
}

// New builds an empty Cache.
func New() (*Cache, error) {
	store, err := ristretto.NewCache(&ristretto.Config[uint64, *codec.ARGBImage]{
		NumCounters: 1e5,
		MaxCost:     1 << 28, // 256MiB of decoded pixel data
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("imagecache: create cache: %w", err)
	}
	return &Cache{store: store, pinned: make(map[uint64]*codec.ARGBImage)}, nil
}

// Put stores img under id. pin keeps it resolvable regardless of
// ristretto's own eviction policy, for CACHE_ME/CACHE_REPLACE_ME ids.
func (c *Cache) Put(id uint64, img *codec.ARGBImage, pin bool) {
	cost := int64(len(img.Pix))
	c.store.Set(id, img, cost)
	if pin {
		c.mu.Lock()
		c.pinned[id] = img
		c.mu.Unlock()
	}
}

// Get resolves id, checking the pinned index first so a FROM_CACHE lookup
// never misses an id the server told us to retain.
func (c *Cache) Get(id uint64) (*codec.ARGBImage, bool) {
	c.mu.Lock()
	img, ok := c.pinned[id]
	c.mu.Unlock()
	if ok {
		return img, true
	}
	return c.store.Get(id)
}

// Evict removes id from both the bulk store and the pinned index
// (CACHE_REPLACE_ME's evict-then-replace, and INVAL_LIST).
func (c *Cache) Evict(id uint64) {
	c.store.Del(id)
	c.mu.Lock()
	delete(c.pinned, id)
	c.mu.Unlock()
}

// Clear empties the cache (INVAL_ALL_PIXMAPS, channel teardown).
func (c *Cache) Clear() {
	c.store.Clear()
	c.mu.Lock()
	c.pinned = make(map[uint64]*codec.ARGBImage)
	c.mu.Unlock()
}
