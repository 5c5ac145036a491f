package cache

import (
	"github.com/codewandler/actr-go/core/sf"
)

// Loader produces the value for a key that is missing from the cache.
type Loader[T any] func(key string) (T, error)

// Loading wraps a Cache and fills misses through a Loader. Concurrent misses
// on the same key share a single load.
type Loading[T any] struct {
	typed  TypedCache[T]
	load   Loader[T]
	opts   []PutOption
	flight *sf.Group[T]
}

func NewLoading[T any](c Cache, load Loader[T], opts ...PutOption) *Loading[T] {
	return &Loading[T]{
		typed:  NewTyped[T](c),
		load:   load,
		opts:   opts,
		flight: sf.New[T](),
	}
}

func (l *Loading[T]) Get(key string) (T, error) {
	if v, ok := l.typed.Get(key); ok {
		return v, nil
	}

	v, _, err := l.flight.Do(key, func() (T, error) {
		if v, ok := l.typed.Get(key); ok {
			return v, nil
		}
		v, err := l.load(key)
		if err != nil {
			return v, err
		}
		l.typed.Put(key, v, l.opts...)
		return v, nil
	})
	return v, err
}

// Invalidate drops key so that the next Get reloads it.
func (l *Loading[T]) Invalidate(key string) {
	l.flight.Forget(key)
	l.typed.Delete(key)
}
