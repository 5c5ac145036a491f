package sf

import "golang.org/x/sync/singleflight"

// Group deduplicates concurrent calls that share a key. Only the first caller
// runs fn; the others block and receive its result.
type Group[T any] struct {
	group singleflight.Group
}

// Do executes fn for key unless a call for the same key is already in flight,
// in which case it waits for that call. shared reports whether the result was
// handed to more than one caller.
func (g *Group[T]) Do(key string, fn func() (T, error)) (v T, shared bool, err error) {
	res, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if err != nil {
		return v, shared, err
	}
	if res != nil {
		v = res.(T)
	}
	return v, shared, nil
}

// Forget drops an in-flight key so the next Do runs fn again.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}

// New creates a Group for results of type T.
func New[T any]() *Group[T] {
	return &Group[T]{}
}
