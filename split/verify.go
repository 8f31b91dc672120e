package split

import (
	"context"

	"github.com/hupe1980/plyshard/internal/fs"
	"github.com/hupe1980/plyshard/ply"
)

// Verify re-parses every emitted chunk's declared vertex count and fills
// in ProcessedVertices and Failed on res.
//
// A chunk whose count cannot be read is recorded as failed and contributes
// nothing to the sum; it does not abort the pass. The pass itself fails
// only when the summed readable counts disagree with the source total,
// in which case the returned MismatchError carries the exact delta.
func (s *Splitter) Verify(ctx context.Context, res *Result) error {
	res.ProcessedVertices = 0
	res.Failed = nil

	for _, chunk := range res.Chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		count, err := s.readVertexCount(chunk.Filename)
		if err != nil {
			res.Failed = append(res.Failed, ChunkFailure{
				Index:    chunk.Index,
				Filename: chunk.Filename,
				Err:      err,
			})
			continue
		}
		res.ProcessedVertices += count
	}

	if res.ProcessedVertices != res.TotalVertices {
		return &MismatchError{Expected: res.TotalVertices, Summed: res.ProcessedVertices}
	}
	return nil
}

func (s *Splitter) readVertexCount(filename string) (int, error) {
	data, err := fs.ReadFile(s.fs, s.path(filename))
	if err != nil {
		return 0, err
	}
	h, _, err := ply.Parse(data)
	if err != nil {
		return 0, err
	}
	return h.VertexCount, nil
}
