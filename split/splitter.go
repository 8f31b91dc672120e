// Package split partitions a vertex payload into ordered, size-bounded
// chunk files and verifies the partition afterwards.
//
// Emission and verification are separate passes: emission writes every
// chunk, verification re-reads the declared counts and gates the run on
// the aggregate matching the source total. Per-chunk read failures are
// recorded, not fatal; only the aggregate mismatch is.
package split

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hupe1980/plyshard/internal/fs"
	"github.com/hupe1980/plyshard/ply"
)

// ChunkFileName returns the zero-padded filename of chunk index, chosen so
// lexical order equals index order.
func ChunkFileName(index int) string {
	return fmt.Sprintf("chunk_%05d.ply", index)
}

// Chunk describes one emitted chunk file: a contiguous vertex range
// [Start, End) of the original payload, in original order.
type Chunk struct {
	Index    int
	Filename string
	Vertices int

	// Start and End are byte offsets into the original vertex payload.
	Start int64
	End   int64
}

// ChunkFailure records a chunk whose verification read-back failed.
type ChunkFailure struct {
	Index    int
	Filename string
	Err      error
}

// PayloadSizeError indicates a payload that is not exactly
// vertexCount * recordWidth bytes long.
type PayloadSizeError struct {
	PayloadLen  int
	VertexCount int
	RecordWidth int
}

func (e *PayloadSizeError) Error() string {
	return fmt.Sprintf("split: payload is %d bytes, want %d (%d vertices x %d bytes)",
		e.PayloadLen, e.VertexCount*e.RecordWidth, e.VertexCount, e.RecordWidth)
}

// MismatchError is the fatal verification failure: the summed vertex count
// across all readable chunks disagrees with the source total.
type MismatchError struct {
	Expected int
	Summed   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("split: chunk vertex counts sum to %d, want %d (delta %+d)",
		e.Summed, e.Expected, e.Delta())
}

// Delta returns the exact disagreement (summed minus expected).
func (e *MismatchError) Delta() int { return e.Summed - e.Expected }

// Result reports an emission pass and, once verified, its outcome.
type Result struct {
	Chunks            []Chunk
	TotalVertices     int
	ProcessedVertices int
	Failed            []ChunkFailure
}

// NumChunks returns the number of emitted chunks.
func (r *Result) NumChunks() int { return len(r.Chunks) }

// Splitter writes chunk files into a single directory. It owns those files
// once written; later passes only read them.
type Splitter struct {
	fs  fs.FileSystem
	dir string
}

// New creates a Splitter writing to dir. A nil fsys uses the local
// filesystem.
func New(fsys fs.FileSystem, dir string) *Splitter {
	if fsys == nil {
		fsys = fs.Default
	}
	return &Splitter{fs: fsys, dir: dir}
}

// Dir returns the chunk directory.
func (s *Splitter) Dir() string { return s.dir }

// Split emits ceil(totalVertices / verticesPerChunk) chunk files. Chunk i
// covers vertices [i*v, min((i+1)*v, total)); the last chunk holds the
// remainder. Each file is the source header rewritten to the range size,
// followed by the raw bytes of that range. Existing files are plainly
// overwritten.
//
// ctx is checked between chunks; a canceled split leaves the files written
// so far behind.
func (s *Splitter) Split(ctx context.Context, h *ply.Header, payload []byte, verticesPerChunk int) (*Result, error) {
	if verticesPerChunk < 1 {
		return nil, fmt.Errorf("split: verticesPerChunk must be >= 1, got %d", verticesPerChunk)
	}

	width, err := h.Width()
	if err != nil {
		return nil, err
	}
	if len(payload) != h.VertexCount*width {
		return nil, &PayloadSizeError{PayloadLen: len(payload), VertexCount: h.VertexCount, RecordWidth: width}
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}

	res := &Result{TotalVertices: h.VertexCount}

	for start := 0; start < h.VertexCount; start += verticesPerChunk {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		end := min(start+verticesPerChunk, h.VertexCount)
		chunk := Chunk{
			Index:    len(res.Chunks),
			Filename: ChunkFileName(len(res.Chunks)),
			Vertices: end - start,
			Start:    int64(start) * int64(width),
			End:      int64(end) * int64(width),
		}

		header, err := ply.Rewrite(h.Text, chunk.Vertices)
		if err != nil {
			return res, err
		}

		data := make([]byte, 0, len(header)+int(chunk.End-chunk.Start))
		data = append(data, header...)
		data = append(data, payload[chunk.Start:chunk.End]...)

		if err := fs.WriteFile(s.fs, s.path(chunk.Filename), data, 0o644); err != nil {
			return res, fmt.Errorf("split: write %s: %w", chunk.Filename, err)
		}

		res.Chunks = append(res.Chunks, chunk)
	}

	return res, nil
}

func (s *Splitter) path(name string) string {
	return filepath.Join(s.dir, name)
}
