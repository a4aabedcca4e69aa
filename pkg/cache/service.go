package cache

import "time"

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get returns the value and true when the key is present and not expired.
	Get(key string) (interface{}, bool)

	Set(key string, value interface{}, duration time.Duration)

	Delete(key string)

	// DeletePrefix drops every key starting with prefix (e.g. "products:").
	DeletePrefix(prefix string)

	// Flush removes all items
	Flush()
}
