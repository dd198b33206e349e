package clientcache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes values such as transports by key. Concurrent misses for
// the same key share a single factory call.
type Cache[T any] struct {
	entries sync.Map
	group   singleflight.Group
}

// NewCache creates an empty cache
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{}
}

// GetOrCreate returns the cached value for key or builds it with factory.
// Failed builds are not cached.
func (c *Cache[T]) GetOrCreate(key string, factory func() (T, error)) (T, error) {
	if cached, ok := c.entries.Load(key); ok {
		return cached.(T), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if cached, ok := c.entries.Load(key); ok {
			return cached.(T), nil
		}
		value, err := factory()
		if err != nil {
			return nil, err
		}
		c.entries.Store(key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Delete removes key from the cache
func (c *Cache[T]) Delete(key string) {
	c.entries.Delete(key)
}

// Len returns the number of cached values
func (c *Cache[T]) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
