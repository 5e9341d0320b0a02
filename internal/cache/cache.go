// Package cache memoizes read-model results between writes.
package cache

// Cache is the subset of LRUCache the services depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	// Purge drops every entry; called after each write.
	Purge()
}

// Noop never stores anything. It stands in when caching is disabled.
type Noop[T any] struct{}

func (Noop[T]) Get(string) (T, bool) {
	var zero T
	return zero, false
}

func (Noop[T]) Set(string, T) {}

func (Noop[T]) Purge() {}
