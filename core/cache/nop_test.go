package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNop(t *testing.T) {
	n := NewNop()
	n.Put("key", "val")
	n.Delete("key")
	n.Clear()

	v, ok := n.Get("key")
	require.False(t, ok)
	require.Nil(t, v)
	require.Equal(t, 0, n.Len())
}
