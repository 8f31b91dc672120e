// Command plyshard chunks gaussian-splat PLY files, regroups the chunks and
// moves them through a blob store.
//
// Usage:
//
//	plyshard split --in scene.ply --chunks ./chunks --target-size 566
//	plyshard group --chunks ./chunks --groups ./groups --size -1
//	plyshard upload --chunks ./chunks --store s3://bucket/prefix --compress zstd
//	plyshard download --session <id> --store s3://bucket/prefix --out ./chunks
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hupe1980/plyshard"
	"github.com/hupe1980/plyshard/codec"
	"github.com/hupe1980/plyshard/merge"
	"github.com/hupe1980/plyshard/transport"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "plyshard:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plyshard",
		Short:         "Chunk, regroup and ship gaussian-splat PLY files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newSplitCmd())
	cmd.AddCommand(newGroupCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newDownloadCmd())

	return cmd
}

func logLevel() slog.Level {
	if rootFlags.verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func sidecarCodec(name string) (codec.Codec, error) {
	c, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("unknown codec %q (want json or go-json)", name)
	}
	return c, nil
}

func newSplitCmd() *cobra.Command {
	var (
		in         string
		chunkDir   string
		targetSize int
		codecName  string
	)

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a PLY file into budget-sized chunk files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := sidecarCodec(codecName)
			if err != nil {
				return err
			}

			p, err := plyshard.New(plyshard.Config{
				InputPath: in,
				ChunkDir:  chunkDir,
			}, plyshard.WithLogLevel(logLevel()), plyshard.WithCodec(c))
			if err != nil {
				return err
			}

			res, err := p.Split(cmd.Context(), targetSize)
			if err != nil {
				return err
			}

			fmt.Printf("wrote %d chunks (%d vertices, %d per chunk) to %s\n",
				res.NumChunks, res.TotalVertices, res.VerticesPerChunk, chunkDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "input PLY file")
	cmd.Flags().StringVar(&chunkDir, "chunks", "", "chunk output directory")
	cmd.Flags().IntVar(&targetSize, "target-size", 0, "per-message byte budget")
	cmd.Flags().StringVar(&codecName, "codec", codec.Default.Name(), "sidecar codec: json or go-json")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("chunks")
	cmd.MarkFlagRequired("target-size")

	return cmd
}

func newGroupCmd() *cobra.Command {
	var (
		chunkDir  string
		groupDir  string
		size      int
		codecName string
	)

	cmd := &cobra.Command{
		Use:   "group",
		Short: "Merge chunk files into larger group files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := sidecarCodec(codecName)
			if err != nil {
				return err
			}

			p, err := plyshard.New(plyshard.Config{
				ChunkDir: chunkDir,
				GroupDir: groupDir,
			}, plyshard.WithLogLevel(logLevel()), plyshard.WithCodec(c))
			if err != nil {
				return err
			}

			res, err := p.CreateGroups(cmd.Context(), size)
			if err != nil {
				return err
			}

			fmt.Printf("merged %d/%d groups, manifest at %s\n",
				res.Stats.Succeeded, res.Stats.Attempted, res.MetadataPath)
			for _, f := range res.Failed {
				fmt.Printf("  group %d failed: %s\n", f.GroupID, f.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chunkDir, "chunks", "", "chunk input directory")
	cmd.Flags().StringVar(&groupDir, "groups", "", "group output directory (default: chunk directory)")
	cmd.Flags().IntVar(&size, "size", merge.WholeSet, "chunks per group, -1 for a single group")
	cmd.Flags().StringVar(&codecName, "codec", codec.Default.Name(), "sidecar codec: json or go-json")
	cmd.MarkFlagRequired("chunks")

	return cmd
}

func newUploadCmd() *cobra.Command {
	var (
		chunkDir string
		target   string
		compress string
		session  string
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a chunk directory to a blob store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := resolveStore(cmd.Context(), target)
			if err != nil {
				return err
			}

			comp, err := transport.NewCompressor(compress)
			if err != nil {
				return err
			}

			u, err := transport.NewUploader(store, func(o *transport.Options) {
				o.Compressor = comp
				o.Concurrency = workers
				o.Session = session
				o.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel()}))
			})
			if err != nil {
				return err
			}

			res, err := u.UploadDir(cmd.Context(), chunkDir)
			if err != nil {
				return err
			}

			fmt.Printf("session %s: %d objects, %d bytes raw, %d stored\n",
				res.Session, res.Objects, res.RawBytes, res.StoredBytes)
			return nil
		},
	}

	cmd.Flags().StringVar(&chunkDir, "chunks", "", "chunk directory to upload")
	cmd.Flags().StringVar(&target, "store", "", "store target (dir path, s3://bucket/prefix or minio://bucket/prefix)")
	cmd.Flags().StringVar(&compress, "compress", "none", "compressor: none, zstd[:level], zlib[:level], s2, snappy")
	cmd.Flags().StringVar(&session, "session", "", "session id (default: random)")
	cmd.Flags().IntVar(&workers, "workers", 8, "concurrent transfers")
	cmd.MarkFlagRequired("chunks")
	cmd.MarkFlagRequired("store")

	return cmd
}

func newDownloadCmd() *cobra.Command {
	var (
		out     string
		target  string
		session string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download an uploaded session back into a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := resolveStore(cmd.Context(), target)
			if err != nil {
				return err
			}

			u, err := transport.NewUploader(store, func(o *transport.Options) {
				o.Concurrency = workers
			})
			if err != nil {
				return err
			}

			res, err := u.DownloadSession(cmd.Context(), session, out)
			if err != nil {
				return err
			}

			fmt.Printf("restored %d objects (%d bytes) to %s\n", res.Objects, res.RawBytes, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "destination directory")
	cmd.Flags().StringVar(&target, "store", "", "store target (dir path, s3://bucket/prefix or minio://bucket/prefix)")
	cmd.Flags().StringVar(&session, "session", "", "session id to restore")
	cmd.Flags().IntVar(&workers, "workers", 8, "concurrent transfers")
	cmd.MarkFlagRequired("out")
	cmd.MarkFlagRequired("store")
	cmd.MarkFlagRequired("session")

	return cmd
}
