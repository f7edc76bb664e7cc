// Package cache provides chunk result caching implementations. Keys are
// scoped to a single run, so a retried or resumed run reuses results while
// separate runs never observe each other's translations.
package cache

// ChunkCache is the interface for chunk result caching.
type ChunkCache interface {
	// Get retrieves a cached chunk result. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a chunk result in the cache.
	Set(key string, value string) error
}
