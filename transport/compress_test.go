package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompressorRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("splat vertex record "), 500)

	for _, sig := range []string{"none", "zstd", "zstd:19", "zlib", "zlib:1", "s2", "snappy"} {
		t.Run(sig, func(t *testing.T) {
			c, err := NewCompressor(sig)
			require.NoError(t, err)

			stored, err := c.Compress(payload)
			require.NoError(t, err)
			if sig != "none" {
				require.Less(t, len(stored), len(payload))
				require.NotEmpty(t, c.Ext())
			}

			restored, err := c.Decompress(stored)
			require.NoError(t, err)
			require.Equal(t, payload, restored)
		})
	}
}

func TestNewCompressorErrors(t *testing.T) {
	_, err := NewCompressor("lzma")
	require.ErrorContains(t, err, "unknown compressor")

	_, err = NewCompressor("zstd:fast")
	require.ErrorContains(t, err, "bad compression level")
}
