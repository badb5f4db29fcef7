package cache

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Loader fronts an LRUCache with a singleflight group so concurrent misses
// for the same key share one load.
type Loader[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group
}

func NewLoader[T any](c *LRUCache[T]) *Loader[T] {
	return &Loader[T]{cache: c}
}

// Get returns the cached value for key or calls load once for all waiting
// callers. Errors are returned to every waiter and never cached. The load
// outlives a cancelled caller so other waiters still get the result.
func (l *Loader[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}
	ch := l.group.DoChan(key, func() (interface{}, error) {
		v, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		l.cache.Set(key, v)
		return v, nil
	})
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

