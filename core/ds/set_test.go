package ds

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet_Json(t *testing.T) {
	s := NewSet("hello", "world", "!")

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.Equal(t, `["hello","world","!"]`, string(data))

	var s2 Set[string]
	require.NoError(t, json.Unmarshal(data, &s2))
	require.Equal(t, []string{"hello", "world", "!"}, s2.Values())
}

func TestSet_AddRemove(t *testing.T) {
	s := NewSet[string]()
	require.True(t, s.IsEmpty())

	s.Add("hello")
	s.Add("hello")
	require.Equal(t, 1, s.Len())

	s.Remove("hello")
	require.True(t, s.IsEmpty())
}

func TestSet_Order(t *testing.T) {
	s := NewSet("c", "a", "b", "a")
	require.Equal(t, []string{"c", "a", "b"}, s.Values())

	s.Remove("a")
	require.Equal(t, []string{"c", "b"}, s.Values())

	var seen []string
	s.ForEach(func(v string) { seen = append(seen, v) })
	require.Equal(t, []string{"c", "b"}, seen)
}

func TestSet_Extend(t *testing.T) {
	s := NewSet(1, 2)
	require.Equal(t, 1, s.Extend(2, 3))
	require.Equal(t, []int{1, 2, 3}, s.Values())
	require.True(t, s.Contains(3))
	require.False(t, s.Contains(4))
}

func TestSet_FilterCopy(t *testing.T) {
	s := NewSet(1, 2, 3, 4)
	even := s.Filter(func(v int) bool { return v%2 == 0 })
	require.Equal(t, []int{2, 4}, even.Values())

	c := s.Copy()
	c.Remove(1)
	require.True(t, s.Contains(1))
	require.Equal(t, 3, c.Len())
}
