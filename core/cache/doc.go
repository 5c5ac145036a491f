// Package cache provides the key/value caches shared by the actors of a
// cluster.
//
// The package defines two interfaces:
//
//   - [Cache]: Untyped cache storing values as any
//   - [TypedCache]: Generic type-safe wrapper via [NewTyped]
//
// # Implementations
//
// [Delayed] is the default cluster cache. It is unbounded and reclaims entries
// in a background goroutine once their TTL has elapsed. Entries without a TTL
// live until they are deleted, overwritten or the cache is cleared.
//
//	c := cache.NewDelayed(cache.DelayedOpts{})
//	defer c.Close()
//
//	c.Put("session", data, cache.WithTTL(30*time.Minute))
//	c.Put("session", nil) // removes the key
//
// [LRU] is bounded and evicts the least recently used entry. Its state is
// owned by a single goroutine. Expired entries are evicted lazily on access.
//
// [Nop] stores nothing.
//
// # Loading
//
// [Loading] fills misses through a loader function and collapses concurrent
// misses on the same key into one load:
//
//	users := cache.NewLoading[*User](c, repo.Find, cache.WithTTL(time.Minute))
//	u, err := users.Get("user:123")
package cache
