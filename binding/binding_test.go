package binding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var data any
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return data
}

func TestInterpolate(t *testing.T) {
	data := decode(t, `{"user": {"name": "Ada"}, "tags": ["a", "b"]}`)
	assert.Equal(t, "Hello, Ada!", Interpolate("Hello, ${user.name}!", data))
	assert.Equal(t, "tag b", Interpolate("tag ${ tags[1] }", data))
	assert.Equal(t, "keep ${user.age}", Interpolate("keep ${user.age}", data))
	assert.Equal(t, "raw ${x}", Interpolate("raw ${x}", nil))
}

func TestLookupDataPrefix(t *testing.T) {
	data := decode(t, `{"routes": [{"name": "r1"}]}`)
	v, ok := Lookup(data, "data.routes[0].name")
	require.True(t, ok)
	assert.Equal(t, "r1", v)

	v, ok = Lookup(data, "routes[0].name")
	require.True(t, ok)
	assert.Equal(t, "r1", v)

	_, ok = Lookup(data, "routes[3]")
	assert.False(t, ok)
}

func TestPoints(t *testing.T) {
	data := decode(t, `{
		"pairs": [[0, 0], [10.5, -2]],
		"objects": [{"x": 1, "y": 2}, {"x": "3", "y": 4}],
		"bad": [[1, 2, 3]],
		"scalar": 7
	}`)

	pts, err := Points(data, "data.pairs")
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{0, 0}, {10.5, -2}}, pts)

	pts, err = Points(data, "objects")
	require.NoError(t, err)
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, pts)

	_, err = Points(data, "bad")
	assert.Error(t, err)
	_, err = Points(data, "scalar")
	assert.Error(t, err)
	_, err = Points(data, "missing")
	assert.Error(t, err)
}
