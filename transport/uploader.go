package transport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hupe1980/plyshard/blobstore"
	"github.com/hupe1980/plyshard/codec"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// manifestObject is the per-session upload manifest stored next to the
// chunk objects. The download side reads it to pick the decompressor.
const manifestObject = "upload_manifest.json"

// Manifest records what an upload session shipped.
type Manifest struct {
	Compressor string `json:"compressor"`
	Objects    int    `json:"objects"`
	RawBytes   int64  `json:"rawBytes"`
}

// Options configures an Uploader.
type Options struct {
	// Compressor applied to every object. Defaults to "none".
	Compressor *Compressor

	// Concurrency bounds the transfer fan-out. Defaults to 8.
	Concurrency int

	// Limiter throttles requests against the store. Nil means unlimited.
	Limiter *rate.Limiter

	// Session names the upload; it becomes the object key prefix.
	// Empty means a fresh UUID per UploadDir call.
	Session string

	// Logger receives per-object debug logs. Nil disables logging.
	Logger *slog.Logger
}

// Uploader ships the files of a local directory to a blob store and back.
type Uploader struct {
	store blobstore.BlobStore
	opts  Options
}

// NewUploader creates an Uploader for store.
func NewUploader(store blobstore.BlobStore, optFns ...func(*Options)) (*Uploader, error) {
	opts := Options{Concurrency: 8}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Compressor == nil {
		none, err := NewCompressor("none")
		if err != nil {
			return nil, err
		}
		opts.Compressor = none
	}
	if opts.Concurrency < 1 {
		return nil, fmt.Errorf("transport: concurrency must be >= 1, got %d", opts.Concurrency)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Uploader{store: store, opts: opts}, nil
}

// Summary reports a finished transfer.
type Summary struct {
	Session     string
	Objects     int
	RawBytes    int64
	StoredBytes int64
}

// UploadDir ships every .ply file in dir to the store under a session
// prefix and finishes with the session manifest. Object content is
// compressed; names keep lexical order so the remote listing mirrors the
// local one.
func (u *Uploader) UploadDir(ctx context.Context, dir string) (*Summary, error) {
	names, err := listPlyFiles(dir)
	if err != nil {
		return nil, err
	}

	session := u.opts.Session
	if session == "" {
		session = uuid.NewString()
	}

	var rawBytes, storedBytes atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)
	for _, name := range names {
		g.Go(func() error {
			if err := u.wait(ctx); err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				return err
			}

			stored, err := u.opts.Compressor.Compress(data)
			if err != nil {
				return fmt.Errorf("transport: compress %s: %w", name, err)
			}

			key := path.Join(session, name+u.opts.Compressor.Ext())
			if err := u.store.Put(ctx, key, stored); err != nil {
				return fmt.Errorf("transport: put %s: %w", key, err)
			}

			rawBytes.Add(int64(len(data)))
			storedBytes.Add(int64(len(stored)))
			u.opts.Logger.DebugContext(ctx, "object uploaded", "key", key, "raw", len(data), "stored", len(stored))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := Manifest{
		Compressor: u.opts.Compressor.Name(),
		Objects:    len(names),
		RawBytes:   rawBytes.Load(),
	}
	body, err := codec.Default.Marshal(manifest)
	if err != nil {
		return nil, err
	}
	if err := u.store.Put(ctx, path.Join(session, manifestObject), body); err != nil {
		return nil, err
	}

	return &Summary{
		Session:     session,
		Objects:     len(names),
		RawBytes:    rawBytes.Load(),
		StoredBytes: storedBytes.Load(),
	}, nil
}

// DownloadSession restores a session's files into dir, reversing the
// session's recorded compression.
func (u *Uploader) DownloadSession(ctx context.Context, session, dir string) (*Summary, error) {
	body, err := blobstore.ReadAll(ctx, u.store, path.Join(session, manifestObject))
	if err != nil {
		return nil, fmt.Errorf("transport: read session manifest: %w", err)
	}

	var manifest Manifest
	if err := codec.Default.Unmarshal(body, &manifest); err != nil {
		return nil, err
	}
	comp, err := NewCompressor(manifest.Compressor)
	if err != nil {
		return nil, err
	}

	keys, err := u.store.List(ctx, session+"/")
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var rawBytes, storedBytes atomic.Int64
	var objects atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(u.opts.Concurrency)
	for _, key := range keys {
		if path.Base(key) == manifestObject {
			continue
		}
		g.Go(func() error {
			if err := u.wait(ctx); err != nil {
				return err
			}

			stored, err := blobstore.ReadAll(ctx, u.store, key)
			if err != nil {
				return err
			}

			data, err := comp.Decompress(stored)
			if err != nil {
				return fmt.Errorf("transport: decompress %s: %w", key, err)
			}

			name := strings.TrimSuffix(path.Base(key), comp.Ext())
			if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
				return err
			}

			objects.Add(1)
			rawBytes.Add(int64(len(data)))
			storedBytes.Add(int64(len(stored)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Summary{
		Session:     session,
		Objects:     int(objects.Load()),
		RawBytes:    rawBytes.Load(),
		StoredBytes: storedBytes.Load(),
	}, nil
}

func (u *Uploader) wait(ctx context.Context) error {
	if u.opts.Limiter == nil {
		return ctx.Err()
	}
	return u.opts.Limiter.Wait(ctx)
}

func listPlyFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".ply") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
