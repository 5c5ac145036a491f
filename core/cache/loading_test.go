package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoading_LoadsOnce(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	l := NewLoading[string](c, func(key string) (string, error) {
		calls.Add(1)
		<-release
		return "value-" + key, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get("a")
			assert.NoError(t, err)
			assert.Equal(t, "value-a", v)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "value-a", v)

	_, err := l.Get("a")
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())
}

func TestLoading_ErrorNotCached(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	boom := errors.New("boom")
	fail := true
	l := NewLoading[int](c, func(string) (int, error) {
		if fail {
			return 0, boom
		}
		return 42, nil
	})

	_, err := l.Get("x")
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, c.Len())

	fail = false
	v, err := l.Get("x")
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestLoading_Invalidate(t *testing.T) {
	c := NewDelayed(DelayedOpts{})
	defer c.Close()

	var n atomic.Int32
	l := NewLoading[int32](c, func(string) (int32, error) {
		return n.Add(1), nil
	})

	v, err := l.Get("x")
	require.NoError(t, err)
	require.EqualValues(t, 1, v)

	l.Invalidate("x")

	v, err = l.Get("x")
	require.NoError(t, err)
	require.EqualValues(t, 2, v)
}
