package merge

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/plyshard/internal/fs"
	"github.com/hupe1980/plyshard/metadata"
	"github.com/hupe1980/plyshard/ply"
	"github.com/hupe1980/plyshard/splat"
)

const (
	chunkFilePrefix = "chunk_"
	plyFileSuffix   = ".ply"
)

// GroupFileName returns the output filename of group id.
func GroupFileName(id int) string {
	return fmt.Sprintf("group_%04d.ply", id)
}

// Group is one merged output file.
type Group struct {
	ID          int
	Path        string
	VertexCount int
	Chunks      []metadata.ChunkRef
}

// Merger reads chunk files and produces group files. It never writes into
// the chunk directory.
type Merger struct {
	fs       fs.FileSystem
	chunkDir string
	groupDir string
	loader   splat.Loader
}

// New creates a Merger. A nil fsys uses the local filesystem; a nil loader
// falls back to the structural loader.
func New(fsys fs.FileSystem, chunkDir, groupDir string, loader splat.Loader) *Merger {
	if fsys == nil {
		fsys = fs.Default
	}
	if loader == nil {
		loader = splat.NewStructuralLoader()
	}
	return &Merger{fs: fsys, chunkDir: chunkDir, groupDir: groupDir, loader: loader}
}

// ListChunks returns the chunk filenames present in the chunk directory,
// sorted lexically. Zero-padded names make that index order.
func (m *Merger) ListChunks() ([]string, error) {
	entries, err := m.fs.ReadDir(m.chunkDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, chunkFilePrefix) || !strings.HasSuffix(name, plyFileSuffix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// MergeGroup concatenates the chunks named by indices (positions within
// filenames), in order, into one group file whose header declares the
// summed vertex count.
func (m *Merger) MergeGroup(ctx context.Context, id int, indices []int, filenames []string, originalHeader string) (*Group, error) {
	g := &Group{
		ID:   id,
		Path: filepath.Join(m.groupDir, GroupFileName(id)),
	}

	var payload []byte
	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filenames[idx]
		data, err := fs.ReadFile(m.fs, filepath.Join(m.chunkDir, name))
		if err != nil {
			return nil, fmt.Errorf("merge: read chunk %s: %w", name, err)
		}

		h, body, err := ply.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("merge: parse chunk %s: %w", name, err)
		}

		g.VertexCount += h.VertexCount
		payload = append(payload, body...)
		g.Chunks = append(g.Chunks, metadata.ChunkRef{Index: idx, Filename: name})
	}

	header, err := ply.Rewrite(originalHeader, g.VertexCount)
	if err != nil {
		return nil, err
	}

	if err := m.fs.MkdirAll(m.groupDir, 0o755); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(header)+len(payload))
	out = append(out, header...)
	out = append(out, payload...)
	if err := fs.WriteFile(m.fs, g.Path, out, 0o644); err != nil {
		return nil, fmt.Errorf("merge: write %s: %w", GroupFileName(id), err)
	}

	return g, nil
}

// VerifyGroup hands the merged file to the point-cloud loader to confirm
// it is structurally well-formed and declares the expected vertex count.
func (m *Merger) VerifyGroup(g *Group) error {
	data, err := fs.ReadFile(m.fs, g.Path)
	if err != nil {
		return err
	}
	return splat.VerifyVertexCount(m.loader, data, g.VertexCount)
}
