package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok)
		require.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	require.False(t, ok)
}

func TestCodecsAgree(t *testing.T) {
	v := map[string]any{"vertexCount": 10000, "maxShDegree": 3}

	std := MustMarshal(JSON{}, v)
	goj := MustMarshal(GoJSON{}, v)
	require.JSONEq(t, string(std), string(goj))

	var out map[string]any
	require.NoError(t, GoJSON{}.Unmarshal(std, &out))
	require.EqualValues(t, 10000, out["vertexCount"])
}
