package sizing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerticesPerChunk(t *testing.T) {
	tests := []struct {
		name           string
		targetSize     int
		headerSize     int
		bytesPerVertex int
		want           int
	}{
		// 446 available / (32 * 0.9 * 4/3 = 38.4) = 11.61 -> 11
		{name: "memo budget", targetSize: 566, headerSize: 120, bytesPerVertex: 32, want: 11},
		// Barely above the header: degenerate but legal single-vertex chunks.
		{name: "degenerate", targetSize: 121, headerSize: 120, bytesPerVertex: 32, want: 1},
		{name: "large budget", targetSize: 1_000_000, headerSize: 200, bytesPerVertex: 100, want: 8331},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerticesPerChunk(tt.targetSize, tt.headerSize, tt.bytesPerVertex)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestVerticesPerChunkRejectsZeroWidth(t *testing.T) {
	// A header with no property lines parses to a zero record width; that
	// must fail here instead of dividing by zero.
	for _, width := range []int{0, -4} {
		_, err := VerticesPerChunk(566, 120, width)
		require.ErrorContains(t, err, "bytes per vertex", "width=%d", width)
	}
}

func TestVerticesPerChunkBudgetError(t *testing.T) {
	for _, target := range []int{0, 60, 119, 120} {
		_, err := VerticesPerChunk(target, 120, 32)

		var budget *BudgetError
		require.True(t, errors.As(err, &budget), "target=%d", target)
		require.Equal(t, target, budget.TargetSize)
		require.Equal(t, 120, budget.HeaderSize)
	}
}
