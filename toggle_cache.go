package unleash

import "sync"

// ToggleCache holds the last known-good toggle set. Implementations
// must be safe for concurrent use: the polling goroutine writes while
// any number of goroutines read.
type ToggleCache interface {
	// Read returns the cached toggle set, which may be empty.
	Read() ToggleSet
	// Write replaces the cached toggle set as a whole.
	Write(toggles ToggleSet)
}

type inMemoryToggleCache struct {
	mu      sync.RWMutex
	toggles ToggleSet
}

// NewInMemoryToggleCache creates an in-memory cache implementation used to store the fetched toggles.
func NewInMemoryToggleCache() ToggleCache {
	return &inMemoryToggleCache{}
}

// Read returns the cached toggle set.
func (cache *inMemoryToggleCache) Read() ToggleSet {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return cache.toggles
}

// Write replaces the cached toggle set.
func (cache *inMemoryToggleCache) Write(toggles ToggleSet) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.toggles = toggles
}
