package nats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/actr-go/ports/kv"
)

func newTestKvStore(t *testing.T, connect Connector) *KvStore {
	t.Helper()
	store, err := NewKvStore(t.Context(), KvConfig{Bucket: "leftovers", Connect: connect})
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}

func TestKV(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	type leftover struct {
		Topic string `json:"topic"`
		Count int    `json:"count"`
	}

	store := newTestKvStore(t, NewTestContainer(t))

	_, err := kv.Get[leftover](t.Context(), store, "leftovers/c1/words")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, kv.Put(t.Context(), store, "leftovers/c1/words", leftover{Topic: "words", Count: 10}, kv.PutOptions{}))
	require.NoError(t, kv.Put(t.Context(), store, "leftovers/c1/lines", leftover{Topic: "lines", Count: 2}, kv.PutOptions{}))
	require.NoError(t, kv.Put(t.Context(), store, "leftovers/c2/words", leftover{Topic: "words"}, kv.PutOptions{}))

	v, err := kv.Get[leftover](t.Context(), store, "leftovers/c1/words")
	require.NoError(t, err)
	require.Equal(t, leftover{Topic: "words", Count: 10}, v)

	keys, err := store.Keys(t.Context(), "leftovers/c1/")
	require.NoError(t, err)
	require.Equal(t, []string{"leftovers/c1/lines", "leftovers/c1/words"}, keys)

	require.NoError(t, store.Delete(t.Context(), "leftovers/c1/words"))
	_, err = store.Get(t.Context(), "leftovers/c1/words")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.ErrorIs(t, store.Put(t.Context(), "", kv.Entry{}, kv.PutOptions{}), kv.ErrInvalidKey)
	require.ErrorIs(t, store.Put(t.Context(), "has space", kv.Entry{}, kv.PutOptions{}), kv.ErrInvalidKey)
}

func TestKV_Meta(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}

	store := newTestKvStore(t, NewTestContainer(t))

	require.NoError(t, store.Put(t.Context(), "k", kv.Entry{Data: []byte("raw"), Meta: map[string]any{"cluster": "c1"}}, kv.PutOptions{}))
	e, err := store.Get(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte("raw"), e.Data)
	require.Equal(t, "c1", e.Meta["cluster"])
}
