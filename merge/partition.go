// Package merge reassembles ordered runs of chunk files into larger group
// files and verifies each group independently.
//
// Group failures are isolated: one bad group is recorded and its siblings
// keep going, unlike the split side's all-or-nothing aggregate gate.
package merge

import "fmt"

// WholeSet is the groupSize value meaning "one group containing every chunk".
const WholeSet = -1

// InvalidGroupSizeError indicates a group size that is neither WholeSet
// nor a positive count.
type InvalidGroupSizeError struct {
	Size int
}

func (e *InvalidGroupSizeError) Error() string {
	return fmt.Sprintf("merge: group size must be -1 or >= 1, got %d", e.Size)
}

// Partition splits the ascending index sequence [0, chunkCount) into
// consecutive runs of groupSize; the last run may be shorter. groupSize
// WholeSet yields a single run holding every index. Every index appears in
// exactly one run and runs preserve ascending order.
func Partition(chunkCount, groupSize int) ([][]int, error) {
	if chunkCount == 0 {
		return nil, nil
	}
	if groupSize == WholeSet {
		groupSize = chunkCount
	}
	if groupSize < 1 {
		return nil, &InvalidGroupSizeError{Size: groupSize}
	}

	var runs [][]int
	for start := 0; start < chunkCount; start += groupSize {
		end := min(start+groupSize, chunkCount)
		run := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			run = append(run, i)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// EffectiveGroupSize resolves WholeSet against the chunk count.
func EffectiveGroupSize(chunkCount, groupSize int) int {
	if groupSize == WholeSet {
		return chunkCount
	}
	return groupSize
}
