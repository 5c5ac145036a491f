package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLRU_Eviction(t *testing.T) {
	l := NewLRU(LRUOpts{Size: 2})
	defer l.Close()

	l.Put("a", 1)
	l.Put("b", 2)

	// promote "a" so "b" becomes the eviction candidate
	v, ok := l.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	l.Put("c", 3)

	_, ok = l.Get("b")
	require.False(t, ok)

	v, ok = l.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
	require.Equal(t, 2, l.Len())
}

func TestLRU_Update(t *testing.T) {
	l := NewLRU(LRUOpts{Size: 2})
	defer l.Close()

	l.Put("a", 1)
	l.Put("a", 2)

	v, ok := l.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, 1, l.Len())
}

func TestLRU_DeleteClear(t *testing.T) {
	l := NewLRU(LRUOpts{Size: 4})
	defer l.Close()

	l.Put("a", 1)
	l.Put("b", 2)
	l.Put("c", 3)

	l.Delete("a")
	l.Delete("nonexistent")
	_, ok := l.Get("a")
	require.False(t, ok)
	require.Equal(t, 2, l.Len())

	l.Put("b", nil)
	_, ok = l.Get("b")
	require.False(t, ok)

	l.Clear()
	require.Equal(t, 0, l.Len())
}

func TestLRU_TTL(t *testing.T) {
	l := NewLRU(LRUOpts{Size: 2})
	defer l.Close()

	l.Put("a", 1, WithTTL(50*time.Millisecond))
	l.Put("b", 2)

	_, ok := l.Get("a")
	require.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	_, ok = l.Get("a")
	require.False(t, ok)

	v, ok := l.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestLRU_TTLRefresh(t *testing.T) {
	l := NewLRU(LRUOpts{Size: 2})
	defer l.Close()

	l.Put("a", 1, WithTTL(50*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	l.Put("a", 2, WithTTL(200*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	v, ok := l.Get("a")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestLRU_Close(t *testing.T) {
	l := NewLRU(LRUOpts{Size: 2})
	l.Put("a", 1)
	l.Close()
	l.Close()

	_, ok := l.Get("a")
	require.False(t, ok)

	l.Put("b", 2)
	l.Delete("a")
	require.Equal(t, 0, l.Len())
}

func TestLRU_DefaultSize(t *testing.T) {
	l := NewLRU(LRUOpts{})
	defer l.Close()

	for i := 0; i < 129; i++ {
		l.Put(fmt.Sprintf("k-%d", i), i)
	}

	require.Equal(t, 128, l.Len())
	_, ok := l.Get("k-0")
	require.False(t, ok)
}

func TestLRU_Concurrent(t *testing.T) {
	l := NewLRU(LRUOpts{Size: 100})
	defer l.Close()

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l.Put("key", j)
				l.Get("key")
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, l.Len())
}
