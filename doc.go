// Package plyshard partitions gaussian-splat PLY files into budget-sized
// chunk files and regroups them.
//
// A split run parses the source header, derives a vertices-per-chunk
// figure from a per-message byte budget, emits ordered chunk files,
// verifies the partition and persists the header facts:
//
//	pipe, _ := plyshard.New(plyshard.Config{
//	    InputPath: "scene.ply",
//	    ChunkDir:  "./chunks",
//	})
//	res, err := pipe.Split(ctx, 566)
//
// A group run — possibly in a different process — reassembles contiguous
// runs of chunks into larger files and records a manifest:
//
//	res, err := pipe.CreateGroups(ctx, -1) // -1: everything in one group
//
// Chunk sizing is a heuristic: it discounts the budget by the base64
// expansion the chunks will suffer downstream plus a wrapping margin, but
// the emitted files themselves are raw and carry no size guarantee.
//
// Split-side verification is all-or-nothing (the summed chunk counts must
// equal the source count exactly); group-side verification is per group,
// so one bad group never aborts its siblings.
package plyshard
