package display

import "fmt"

// CacheMissError is the fatal CacheMiss error kind (§7): a FROM_CACHE image
// referenced an id the cache has never seen.
type CacheMissError struct {
	ID uint64
}

func (e *CacheMissError) Error() string {
	return fmt.Sprintf("display: cache miss for image %d", e.ID)
}
