package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayed_TTL(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	c.Put("k", "v", WithTTL(50*time.Millisecond))

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)

	time.Sleep(200 * time.Millisecond)

	_, ok = c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestDelayed_OverwriteKeepsReplacement(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	c.Put("k", "v1", WithTTL(10*time.Millisecond))
	c.Put("k", "v2", WithTTL(10*time.Second))

	time.Sleep(100 * time.Millisecond)

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v2", v)
}

func TestDelayed_OverwriteWithoutTTL(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	c.Put("k", 1, WithTTL(10*time.Millisecond))
	c.Put("k", 2)

	time.Sleep(60 * time.Millisecond)

	v, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestDelayed_NoTTL(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2, WithTTL(20*time.Millisecond))

	require.Eventually(t, func() bool {
		_, ok := c.Get("b")
		return !ok
	}, time.Second, 5*time.Millisecond)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestDelayed_EarlierDeadlineWakesReclaimer(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	c.Put("late", 1, WithTTL(time.Hour))
	c.Put("early", 2, WithTTL(20*time.Millisecond))

	require.Eventually(t, func() bool {
		_, ok := c.Get("early")
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, ok := c.Get("late")
	require.True(t, ok)
}

func TestDelayed_PutNilRemoves(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	c.Put("k", "v")
	c.Put("k", nil)

	_, ok := c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())
}

func TestDelayed_EmptyKeyIgnored(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	c.Put("", "v")
	require.Equal(t, 0, c.Len())
}

func TestDelayed_DeleteClearLen(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2, WithTTL(time.Minute))
	c.Put("c", 3)
	require.Equal(t, 3, c.Len())

	c.Delete("a")
	c.Delete("missing")
	require.Equal(t, 2, c.Len())

	c.Clear()
	require.Equal(t, 0, c.Len())

	_, ok := c.Get("b")
	require.False(t, ok)
}

func TestDelayed_Close(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	c.Put("a", 1, WithTTL(time.Minute))
	c.Close()
	c.Close()

	require.Equal(t, 0, c.Len())

	c.Put("b", 2)
	_, ok := c.Get("b")
	require.False(t, ok)
}

type countingMetrics struct {
	mu                    sync.Mutex
	hits, misses, expired int
	size                  int
}

func (m *countingMetrics) Hit()       { m.mu.Lock(); m.hits++; m.mu.Unlock() }
func (m *countingMetrics) Miss()      { m.mu.Lock(); m.misses++; m.mu.Unlock() }
func (m *countingMetrics) Expired()   { m.mu.Lock(); m.expired++; m.mu.Unlock() }
func (m *countingMetrics) Size(n int) { m.mu.Lock(); m.size = n; m.mu.Unlock() }

func (m *countingMetrics) snapshot() (hits, misses, expired, size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses, m.expired, m.size
}

func TestDelayed_Metrics(t *testing.T) {
	m := &countingMetrics{}
	c := NewDelayed(DelayedOpts{Metrics: m})
	defer c.Close()

	c.Put("a", 1, WithTTL(10*time.Millisecond))
	c.Get("a")
	c.Get("b")

	require.Eventually(t, func() bool {
		_, _, expired, _ := m.snapshot()
		return expired == 1
	}, time.Second, 5*time.Millisecond)

	hits, misses, _, size := m.snapshot()
	require.Equal(t, 1, hits)
	require.Equal(t, 1, misses)
	require.Equal(t, 0, size)
}

func TestDelayed_Concurrent(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprintf("k-%d", i%20)
				c.Put(key, i, WithTTL(time.Duration(i%5)*time.Millisecond))
				c.Get(key)
				if i%50 == 0 {
					c.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 20)
}
