package plyshard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/plyshard/internal/fs"
	"github.com/hupe1980/plyshard/merge"
	"github.com/hupe1980/plyshard/metadata"
	"github.com/hupe1980/plyshard/ply"
	"github.com/hupe1980/plyshard/sizing"
	"github.com/hupe1980/plyshard/split"
)

// Config locates the files a Pipeline works on.
type Config struct {
	// InputPath is the source PLY file. Only Split reads it.
	InputPath string

	// ChunkDir receives the chunk files and, unless MetaDir overrides it,
	// the JSON sidecars.
	ChunkDir string

	// GroupDir receives the merged group files. Defaults to ChunkDir.
	GroupDir string

	// MetaDir receives header_info.json and chunks_metadata.json.
	// Defaults to ChunkDir.
	MetaDir string
}

// phase tracks where a run currently is; transitions are debug-logged.
type phase int

const (
	phaseIdle phase = iota
	phaseHeaderKnown
	phaseSplitting
	phaseSplitVerifying
	phaseGrouping
	phaseGroupVerifying
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseHeaderKnown:
		return "header-known"
	case phaseSplitting:
		return "splitting"
	case phaseSplitVerifying:
		return "split-verifying"
	case phaseGrouping:
		return "grouping"
	case phaseGroupVerifying:
		return "group-verifying"
	case phaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Pipeline runs the two phases of the chunking workflow: Split and
// CreateGroups. The phases are independent; a Pipeline built in a fresh
// process can run CreateGroups against chunks and sidecars a previous
// process left behind.
//
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	cfg   Config
	opts  options
	meta  *metadata.Store
	phase phase

	// header is the in-memory carry-over from Split to CreateGroups within
	// one process; a fresh process falls back to the sidecar.
	header *metadata.HeaderInfo
}

// New creates a Pipeline for the given locations.
func New(cfg Config, optFns ...Option) (*Pipeline, error) {
	if cfg.ChunkDir == "" {
		return nil, errors.New("plyshard: ChunkDir is required")
	}
	if cfg.GroupDir == "" {
		cfg.GroupDir = cfg.ChunkDir
	}
	if cfg.MetaDir == "" {
		cfg.MetaDir = cfg.ChunkDir
	}

	opts := applyOptions(optFns...)

	return &Pipeline{
		cfg:  cfg,
		opts: opts,
		meta: metadata.NewStore(opts.fs, cfg.MetaDir, opts.codec),
	}, nil
}

func (p *Pipeline) advance(ctx context.Context, next phase) {
	p.opts.logger.DebugContext(ctx, "phase transition", "from", p.phase.String(), "to", next.String())
	p.phase = next
}

// SplitSummary reports a completed (or fatally interrupted) split run.
type SplitSummary struct {
	NumChunks         int
	VerticesPerChunk  int
	TotalVertices     int
	ProcessedVertices int
	FailedChunks      []split.ChunkFailure
}

// Split chunks the input file under the given per-message byte budget.
//
// The run parses the source header, derives vertices-per-chunk from the
// budget, emits the chunk files, re-reads them to verify the partition and
// persists header_info.json. Per-chunk verification failures land in
// FailedChunks without failing the run; an aggregate vertex-count mismatch
// is fatal. A non-nil summary accompanies verification errors so callers
// can inspect what was written.
func (p *Pipeline) Split(ctx context.Context, targetSizeBytes int) (*SplitSummary, error) {
	started := time.Now()

	summary, err := p.split(ctx, targetSizeBytes)

	chunks, failed := 0, 0
	if summary != nil {
		chunks, failed = summary.NumChunks, len(summary.FailedChunks)
	}
	p.opts.metrics.RecordSplit(chunks, failed, time.Since(started), err)
	p.opts.logger.LogSplit(ctx, chunks, failed, err)

	return summary, err
}

func (p *Pipeline) split(ctx context.Context, targetSizeBytes int) (*SplitSummary, error) {
	if targetSizeBytes < 1 {
		return nil, &ConfigError{Param: "targetSizeBytes", Value: targetSizeBytes, Reason: "must be >= 1"}
	}
	if p.cfg.InputPath == "" {
		return nil, errors.New("plyshard: InputPath is required for a split")
	}

	raw, err := fs.ReadFile(p.opts.fs, p.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("plyshard: read input: %w", err)
	}

	h, payload, err := ply.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !h.SH.Resolved {
		return nil, &ply.UnresolvedSHDegreeError{ExtraCount: h.SH.ExtraCount}
	}
	p.advance(ctx, phaseHeaderKnown)

	width, err := h.Width()
	if err != nil {
		return nil, err
	}

	vpc, err := sizing.VerticesPerChunk(targetSizeBytes, len(h.Text), width)
	if err != nil {
		return nil, err
	}
	if vpc == 1 {
		p.opts.logger.WarnContext(ctx, "budget fits a single vertex per chunk",
			"target_size", targetSizeBytes,
			"header_size", len(h.Text),
			"vertex_width", width,
		)
	}

	p.opts.logger.DebugContext(ctx, "splitting",
		"input", p.cfg.InputPath,
		"vertices", h.VertexCount,
		"vertices_per_chunk", vpc,
		"sh_degree", h.SH.Degree,
	)

	splitter := split.New(p.opts.fs, p.cfg.ChunkDir)

	p.advance(ctx, phaseSplitting)
	res, err := splitter.Split(ctx, h, payload, vpc)
	if err != nil {
		return nil, err
	}

	summary := &SplitSummary{
		NumChunks:        res.NumChunks(),
		VerticesPerChunk: vpc,
		TotalVertices:    res.TotalVertices,
	}

	p.advance(ctx, phaseSplitVerifying)
	verifyErr := splitter.Verify(ctx, res)
	summary.ProcessedVertices = res.ProcessedVertices
	summary.FailedChunks = res.Failed
	if verifyErr != nil {
		return summary, verifyErr
	}

	info := &metadata.HeaderInfo{
		OriginalHeader: h.Text,
		VertexCount:    h.VertexCount,
		PropertyTypes:  h.Schema.Pairs(),
		MaxSHDegree:    h.SH.Degree,
	}
	if err := p.meta.SaveHeaderInfo(info); err != nil {
		return summary, fmt.Errorf("plyshard: save header sidecar: %w", err)
	}
	p.header = info
	p.advance(ctx, phaseDone)

	return summary, nil
}

// GroupStats counts the outcome of a group run.
type GroupStats struct {
	Attempted int
	Succeeded int
	Failed    int
}

// GroupSummary reports a completed group run.
type GroupSummary struct {
	Groups       []metadata.GroupRecord
	Failed       []metadata.GroupFailure
	Stats        GroupStats
	MetadataPath string
}

// CreateGroups merges contiguous runs of groupSize chunks into group files.
// groupSize merge.WholeSet (-1) makes a single group of everything.
//
// Group failures are isolated: a group that fails to merge or verify is
// recorded in the manifest's failedGroups and its siblings continue. The
// run itself fails only on configuration errors, missing inputs, context
// cancellation or a manifest write failure; once group work has started,
// a non-nil summary accompanies any fatal error.
func (p *Pipeline) CreateGroups(ctx context.Context, groupSize int) (*GroupSummary, error) {
	started := time.Now()

	summary, err := p.createGroups(ctx, groupSize)

	attempted, failed := 0, 0
	if summary != nil {
		attempted, failed = summary.Stats.Attempted, summary.Stats.Failed
	}
	p.opts.metrics.RecordGroups(attempted, failed, time.Since(started), err)
	p.opts.logger.LogGroups(ctx, attempted, failed, err)

	return summary, err
}

func (p *Pipeline) createGroups(ctx context.Context, groupSize int) (*GroupSummary, error) {
	if groupSize != merge.WholeSet && groupSize < 1 {
		return nil, &ConfigError{Param: "groupSize", Value: groupSize, Reason: "must be -1 (whole set) or >= 1"}
	}

	info := p.header
	if info == nil {
		loaded, err := p.meta.LoadHeaderInfo()
		if err != nil {
			return nil, translateError(err)
		}
		info = loaded
		p.header = info
	}
	p.advance(ctx, phaseHeaderKnown)

	merger := merge.New(p.opts.fs, p.cfg.ChunkDir, p.cfg.GroupDir, p.opts.loader)

	filenames, err := merger.ListChunks()
	if err != nil {
		return nil, fmt.Errorf("plyshard: list chunks: %w", err)
	}
	if len(filenames) == 0 {
		return nil, ErrNoChunks
	}

	runs, err := merge.Partition(len(filenames), groupSize)
	if err != nil {
		return nil, err
	}

	manifest := &metadata.GroupManifest{
		OriginalNodeCount: len(filenames),
		TotalGroups:       len(runs),
		GroupSize:         groupSize,
		NodesPerGroup:     merge.EffectiveGroupSize(len(filenames), groupSize),
	}

	summarize := func() *GroupSummary {
		manifest.SuccessfulGroups = len(manifest.Groups)
		return &GroupSummary{
			Groups: manifest.Groups,
			Failed: manifest.FailedGroups,
			Stats: GroupStats{
				Attempted: len(runs),
				Succeeded: manifest.SuccessfulGroups,
				Failed:    len(manifest.FailedGroups),
			},
			MetadataPath: p.meta.GroupManifestPath(),
		}
	}

	p.advance(ctx, phaseGrouping)
	var merged []*merge.Group
	for id, indices := range runs {
		if err := ctx.Err(); err != nil {
			return summarize(), err
		}

		g, err := merger.MergeGroup(ctx, id, indices, filenames, info.OriginalHeader)
		if err != nil {
			if ctx.Err() != nil {
				return summarize(), err
			}
			p.opts.logger.WarnContext(ctx, "group merge failed", "group", id, "error", err)
			manifest.FailedGroups = append(manifest.FailedGroups, metadata.GroupFailure{GroupID: id, Error: err.Error()})
			continue
		}
		merged = append(merged, g)
	}

	p.advance(ctx, phaseGroupVerifying)
	for _, g := range merged {
		if err := ctx.Err(); err != nil {
			return summarize(), err
		}

		if err := merger.VerifyGroup(g); err != nil {
			p.opts.logger.WarnContext(ctx, "group verification failed", "group", g.ID, "error", err)
			manifest.FailedGroups = append(manifest.FailedGroups, metadata.GroupFailure{GroupID: g.ID, Error: err.Error()})
			continue
		}

		manifest.Groups = append(manifest.Groups, metadata.GroupRecord{
			GroupID:     g.ID,
			Path:        g.Path,
			VertexCount: g.VertexCount,
			Chunks:      g.Chunks,
		})
	}
	manifest.SuccessfulGroups = len(manifest.Groups)

	if err := p.meta.SaveGroupManifest(manifest); err != nil {
		return summarize(), fmt.Errorf("plyshard: save group manifest: %w", err)
	}
	p.advance(ctx, phaseDone)

	return summarize(), nil
}
