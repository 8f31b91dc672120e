package plyshard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/hupe1980/plyshard/merge"
	"github.com/hupe1980/plyshard/metadata"
	"github.com/hupe1980/plyshard/ply"
	"github.com/stretchr/testify/require"
)

// writeSplatFile writes a degree-1 gaussian-splat PLY file (9 f_rest_*
// properties, 22 float properties per vertex, 88-byte records) and returns
// its path and payload.
func writeSplatFile(t *testing.T, dir string, vertices int) (string, []byte) {
	t.Helper()

	var b strings.Builder
	b.WriteString("ply\n")
	b.WriteString("format binary_little_endian 1.0\n")
	b.WriteString("element vertex " + strconv.Itoa(vertices) + "\n")
	for _, name := range []string{"x", "y", "z", "f_dc_0", "f_dc_1", "f_dc_2"} {
		b.WriteString("property float " + name + "\n")
	}
	for i := 0; i < 9; i++ {
		b.WriteString("property float f_rest_" + strconv.Itoa(i) + "\n")
	}
	for _, name := range []string{"opacity", "scale_0", "scale_1", "scale_2", "rot_0", "rot_1", "rot_2"} {
		b.WriteString("property float " + name + "\n")
	}
	b.WriteString("end_header\n")

	payload := make([]byte, vertices*88)
	for i := range payload {
		payload[i] = byte(i * 7)
	}

	path := filepath.Join(dir, "scene.ply")
	require.NoError(t, os.WriteFile(path, append([]byte(b.String()), payload...), 0o644))
	return path, payload
}

func newTestPipeline(t *testing.T, vertices int) (*Pipeline, Config, []byte) {
	t.Helper()

	dir := t.TempDir()
	input, payload := writeSplatFile(t, dir, vertices)

	cfg := Config{
		InputPath: input,
		ChunkDir:  filepath.Join(dir, "chunks"),
		GroupDir:  filepath.Join(dir, "groups"),
	}
	p, err := New(cfg)
	require.NoError(t, err)
	return p, cfg, payload
}

func TestSplitThenWholeSetGroupRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, _, payload := newTestPipeline(t, 500)

	sres, err := p.Split(ctx, 4096)
	require.NoError(t, err)
	require.Greater(t, sres.NumChunks, 1)
	require.Equal(t, 500, sres.TotalVertices)
	require.Equal(t, 500, sres.ProcessedVertices)
	require.Empty(t, sres.FailedChunks)

	gres, err := p.CreateGroups(ctx, merge.WholeSet)
	require.NoError(t, err)
	require.Len(t, gres.Groups, 1)
	require.Equal(t, GroupStats{Attempted: 1, Succeeded: 1}, gres.Stats)
	require.Equal(t, 500, gres.Groups[0].VertexCount)
	require.Len(t, gres.Groups[0].Chunks, sres.NumChunks)

	// The single group reproduces the source payload byte for byte.
	data, err := os.ReadFile(gres.Groups[0].Path)
	require.NoError(t, err)
	h, body, err := ply.Parse(data)
	require.NoError(t, err)
	require.Equal(t, 500, h.VertexCount)
	require.Equal(t, payload, body)
}

func TestSplitChunkCountMatchesBudget(t *testing.T) {
	p, _, _ := newTestPipeline(t, 1000)

	sres, err := p.Split(context.Background(), 8192)
	require.NoError(t, err)

	want := (1000 + sres.VerticesPerChunk - 1) / sres.VerticesPerChunk
	require.Equal(t, want, sres.NumChunks)
}

func TestSplitWritesHeaderSidecar(t *testing.T) {
	p, cfg, _ := newTestPipeline(t, 50)

	_, err := p.Split(context.Background(), 4096)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(cfg.ChunkDir, metadata.HeaderInfoFileName))
	require.NoError(t, err)
	for _, key := range []string{`"originalHeader"`, `"vertexCount"`, `"propertyTypes"`, `"maxShDegree"`} {
		require.Contains(t, string(raw), key)
	}

	info, err := metadata.NewStore(nil, cfg.ChunkDir, nil).LoadHeaderInfo()
	require.NoError(t, err)
	require.Equal(t, 50, info.VertexCount)
	require.Equal(t, 1, info.MaxSHDegree)
	require.Len(t, info.PropertyTypes, 22)
}

func TestCreateGroupsFromSidecarInFreshProcess(t *testing.T) {
	ctx := context.Background()
	p, cfg, _ := newTestPipeline(t, 100)

	_, err := p.Split(ctx, 4096)
	require.NoError(t, err)

	// A new Pipeline has no in-memory header and must use the sidecar.
	fresh, err := New(cfg)
	require.NoError(t, err)

	gres, err := fresh.CreateGroups(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, gres.Stats.Attempted, gres.Stats.Succeeded)
	require.Greater(t, gres.Stats.Attempted, 1)

	m, err := metadata.NewStore(nil, cfg.ChunkDir, nil).LoadGroupManifest()
	require.NoError(t, err)
	require.Equal(t, 3, m.GroupSize)
	require.Equal(t, 3, m.NodesPerGroup)
	require.Equal(t, m.TotalGroups, m.SuccessfulGroups)
	require.Empty(t, m.FailedGroups)
}

func TestCreateGroupsWithoutSplitFails(t *testing.T) {
	p, err := New(Config{ChunkDir: t.TempDir()})
	require.NoError(t, err)

	_, err = p.CreateGroups(context.Background(), merge.WholeSet)
	require.ErrorIs(t, err, ErrMissingHeaderMetadata)
}

func TestCreateGroupsNoChunks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, metadata.NewStore(nil, dir, nil).SaveHeaderInfo(&metadata.HeaderInfo{
		OriginalHeader: "ply\nelement vertex 0\nend_header\n",
	}))

	p, err := New(Config{ChunkDir: dir})
	require.NoError(t, err)

	_, err = p.CreateGroups(context.Background(), merge.WholeSet)
	require.ErrorIs(t, err, ErrNoChunks)
}

func TestGroupFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	p, cfg, _ := newTestPipeline(t, 100)

	sres, err := p.Split(ctx, 4096)
	require.NoError(t, err)
	require.GreaterOrEqual(t, sres.NumChunks, 4)

	// Losing one chunk file sinks its group, not the run.
	require.NoError(t, os.Remove(filepath.Join(cfg.ChunkDir, "chunk_00000.ply")))

	gres, err := p.CreateGroups(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 1, gres.Stats.Failed)
	require.Equal(t, gres.Stats.Attempted-1, gres.Stats.Succeeded)
	require.Len(t, gres.Failed, 1)
	require.Contains(t, gres.Failed[0].Error, "chunk")
}

func TestSplitRejectsBadTargetSize(t *testing.T) {
	p, _, _ := newTestPipeline(t, 10)

	_, err := p.Split(context.Background(), 0)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "targetSizeBytes", cfgErr.Param)
}

func TestCreateGroupsRejectsBadGroupSize(t *testing.T) {
	p, _, _ := newTestPipeline(t, 10)

	for _, size := range []int{0, -2} {
		_, err := p.CreateGroups(context.Background(), size)

		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr), "size %d", size)
	}
}

func TestSplitRejectsUnresolvedSHDegree(t *testing.T) {
	dir := t.TempDir()

	// 5 f_rest_* properties match no known degree.
	var b strings.Builder
	b.WriteString("ply\nelement vertex 2\n")
	b.WriteString("property float x\n")
	for i := 0; i < 5; i++ {
		b.WriteString("property float f_rest_" + strconv.Itoa(i) + "\n")
	}
	b.WriteString("end_header\n")
	input := filepath.Join(dir, "odd.ply")
	require.NoError(t, os.WriteFile(input, append([]byte(b.String()), make([]byte, 2*24)...), 0o644))

	p, err := New(Config{InputPath: input, ChunkDir: filepath.Join(dir, "chunks")})
	require.NoError(t, err)

	_, err = p.Split(context.Background(), 4096)

	var shErr *ply.UnresolvedSHDegreeError
	require.True(t, errors.As(err, &shErr))
	require.Equal(t, 5, shErr.ExtraCount)
}

func TestMetricsCollectorSeesBothRuns(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	input, _ := writeSplatFile(t, dir, 60)

	collector := NewBasicMetricsCollector()
	p, err := New(Config{
		InputPath: input,
		ChunkDir:  filepath.Join(dir, "chunks"),
	}, WithMetricsCollector(collector))
	require.NoError(t, err)

	_, err = p.Split(ctx, 4096)
	require.NoError(t, err)
	_, err = p.CreateGroups(ctx, merge.WholeSet)
	require.NoError(t, err)

	stats := collector.Stats()
	require.Equal(t, int64(1), stats.SplitRuns)
	require.Equal(t, int64(0), stats.SplitErrors)
	require.Greater(t, stats.ChunksTotal, int64(0))
	require.Equal(t, int64(1), stats.GroupRuns)
	require.Equal(t, int64(1), stats.GroupsTotal)
	require.Equal(t, int64(0), stats.GroupsFailed)
}

func TestNewRequiresChunkDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
