package cache

import (
	"time"
)

// CacheService is a small expiring key/value store. Crawlers use it to
// remember that a site rate limited them, so later runs back off.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
