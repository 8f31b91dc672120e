package plyshard

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives one callback per pipeline run.
type MetricsCollector interface {
	// RecordSplit is called once per Split run with the number of chunks
	// emitted, the number that failed verification, the wall time and the
	// run's final error.
	RecordSplit(chunks, failed int, duration time.Duration, err error)

	// RecordGroups is called once per CreateGroups run with the number of
	// groups attempted, the number that failed, the wall time and the run's
	// final error.
	RecordGroups(groups, failed int, duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSplit(int, int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordGroups(int, int, time.Duration, error) {}

// BasicMetricsCollector counts runs and outcomes with atomic counters.
// Safe for concurrent use.
type BasicMetricsCollector struct {
	splitRuns    atomic.Int64
	splitErrors  atomic.Int64
	chunksTotal  atomic.Int64
	chunksFailed atomic.Int64

	groupRuns    atomic.Int64
	groupErrors  atomic.Int64
	groupsTotal  atomic.Int64
	groupsFailed atomic.Int64
}

// NewBasicMetricsCollector creates a zeroed collector.
func NewBasicMetricsCollector() *BasicMetricsCollector {
	return &BasicMetricsCollector{}
}

func (c *BasicMetricsCollector) RecordSplit(chunks, failed int, _ time.Duration, err error) {
	c.splitRuns.Add(1)
	c.chunksTotal.Add(int64(chunks))
	c.chunksFailed.Add(int64(failed))
	if err != nil {
		c.splitErrors.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordGroups(groups, failed int, _ time.Duration, err error) {
	c.groupRuns.Add(1)
	c.groupsTotal.Add(int64(groups))
	c.groupsFailed.Add(int64(failed))
	if err != nil {
		c.groupErrors.Add(1)
	}
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	SplitRuns    int64
	SplitErrors  int64
	ChunksTotal  int64
	ChunksFailed int64
	GroupRuns    int64
	GroupErrors  int64
	GroupsTotal  int64
	GroupsFailed int64
}

// Stats returns a snapshot of the counters.
func (c *BasicMetricsCollector) Stats() Snapshot {
	return Snapshot{
		SplitRuns:    c.splitRuns.Load(),
		SplitErrors:  c.splitErrors.Load(),
		ChunksTotal:  c.chunksTotal.Load(),
		ChunksFailed: c.chunksFailed.Load(),
		GroupRuns:    c.groupRuns.Load(),
		GroupErrors:  c.groupErrors.Load(),
		GroupsTotal:  c.groupsTotal.Load(),
		GroupsFailed: c.groupsFailed.Load(),
	}
}
