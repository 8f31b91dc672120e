package merge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartition(t *testing.T) {
	tests := []struct {
		name       string
		chunkCount int
		groupSize  int
		want       [][]int
	}{
		{name: "even", chunkCount: 6, groupSize: 2, want: [][]int{{0, 1}, {2, 3}, {4, 5}}},
		{name: "remainder", chunkCount: 5, groupSize: 2, want: [][]int{{0, 1}, {2, 3}, {4}}},
		{name: "oversized", chunkCount: 3, groupSize: 10, want: [][]int{{0, 1, 2}}},
		{name: "whole set", chunkCount: 4, groupSize: WholeSet, want: [][]int{{0, 1, 2, 3}}},
		{name: "singles", chunkCount: 3, groupSize: 1, want: [][]int{{0}, {1}, {2}}},
		{name: "empty", chunkCount: 0, groupSize: WholeSet, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Partition(tt.chunkCount, tt.groupSize)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// Every index appears exactly once and runs are contiguous ascending.
func TestPartitionCompleteness(t *testing.T) {
	for _, groupSize := range []int{WholeSet, 1, 3, 7, 910} {
		runs, err := Partition(910, groupSize)
		require.NoError(t, err)

		next := 0
		for _, run := range runs {
			require.NotEmpty(t, run)
			for _, idx := range run {
				require.Equal(t, next, idx, "groupSize=%d", groupSize)
				next++
			}
		}
		require.Equal(t, 910, next, "groupSize=%d", groupSize)
	}
}

func TestPartitionInvalidGroupSize(t *testing.T) {
	for _, size := range []int{0, -2, -100} {
		_, err := Partition(10, size)

		var invalid *InvalidGroupSizeError
		require.True(t, errors.As(err, &invalid), "size=%d", size)
		require.Equal(t, size, invalid.Size)
	}
}
