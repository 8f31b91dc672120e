// Package sizing converts a per-message byte budget into a
// vertices-per-chunk figure.
//
// The figure is a heuristic, not a hard bound: chunk files leave this
// library unencoded, and the budget only approximately survives the
// downstream base64 transcode.
package sizing

import (
	"fmt"
	"math"
)

const (
	// base64Expansion is the classic 3-bytes-to-4-chars growth applied by
	// the downstream text transcode.
	base64Expansion = 4.0 / 3.0

	// payloadMargin reserves 10% of the nominal budget for wrapping
	// overhead around each message.
	payloadMargin = 0.9
)

// BudgetError indicates a target size too small to fit even the header.
type BudgetError struct {
	TargetSize int
	HeaderSize int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("sizing: target size %d cannot fit %d-byte header", e.TargetSize, e.HeaderSize)
}

// VerticesPerChunk returns how many vertex records fit a chunk under the
// given byte budget.
//
// The available payload is targetSize minus the header, discounted by the
// base64 expansion ratio and the wrapping margin. The result is never less
// than 1; budgets not exceeding headerSize fail with BudgetError, and a
// record width below one byte is rejected outright.
func VerticesPerChunk(targetSize, headerSize, bytesPerVertex int) (int, error) {
	if bytesPerVertex < 1 {
		return 0, fmt.Errorf("sizing: bytes per vertex must be >= 1, got %d", bytesPerVertex)
	}

	available := targetSize - headerSize
	if available <= 0 {
		return 0, &BudgetError{TargetSize: targetSize, HeaderSize: headerSize}
	}

	perVertex := float64(bytesPerVertex) * payloadMargin * base64Expansion
	n := int(math.Floor(float64(available) / perVertex))
	if n < 1 {
		n = 1
	}
	return n, nil
}
