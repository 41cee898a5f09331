package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_ToggleAndClear(t *testing.T) {
	var s Selection
	s.Toggle("a", true)
	s.Toggle("b", true)
	s.Toggle("a", true)
	assert.Equal(t, []string{"a", "b"}, s.IDs())
	assert.True(t, s.Has("a"))

	s.Toggle("a", false)
	s.Toggle("zzz", false)
	assert.Equal(t, []string{"b"}, s.IDs())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has("b"))
}

func TestSelection_CumulativeAcrossPages(t *testing.T) {
	rows := catalogOf25()
	var s Selection
	s.SelectAll(ids(Paginate(rows, 1, 10)), true)
	s.SelectAll(ids(Paginate(rows, 2, 10)), true)
	assert.Equal(t, 20, s.Len())

	s.SelectAll(ids(Paginate(rows, 2, 10)), false)
	assert.Equal(t, ids(Paginate(rows, 1, 10)), s.IDs())
}

func TestSelection_JSON(t *testing.T) {
	s := NewSelection("x", "y", "x")
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["x","y"]`, string(b))

	var back Selection
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Has("y"))

	b, err = json.Marshal(Selection{})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}
