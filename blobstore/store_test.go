package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Both store implementations must behave identically for the operations
// the transport layer uses.
func TestStoreConformance(t *testing.T) {
	stores := map[string]func(t *testing.T) BlobStore{
		"memory": func(t *testing.T) BlobStore { return NewMemoryStore() },
		"local":  func(t *testing.T) BlobStore { return NewLocalStore(t.TempDir()) },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			_, err := store.Open(ctx, "missing.ply")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Put(ctx, "run/chunk_00000.ply", []byte("alpha")))

			w, err := store.Create(ctx, "run/chunk_00001.ply")
			require.NoError(t, err)
			_, err = w.Write([]byte("beta"))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			blob, err := store.Open(ctx, "run/chunk_00000.ply")
			require.NoError(t, err)
			require.Equal(t, int64(5), blob.Size())
			require.NoError(t, blob.Close())

			data, err := ReadAll(ctx, store, "run/chunk_00001.ply")
			require.NoError(t, err)
			require.Equal(t, "beta", string(data))

			names, err := store.List(ctx, "run/")
			require.NoError(t, err)
			require.Equal(t, []string{"run/chunk_00000.ply", "run/chunk_00001.ply"}, names)

			require.NoError(t, store.Delete(ctx, "run/chunk_00000.ply"))
			require.NoError(t, store.Delete(ctx, "run/chunk_00000.ply"))

			names, err = store.List(ctx, "run/")
			require.NoError(t, err)
			require.Equal(t, []string{"run/chunk_00001.ply"}, names)
		})
	}
}

func TestLocalListSkipsCrashedTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir)

	require.NoError(t, store.Put(ctx, "run/chunk_00000.ply", []byte("alpha")))

	// A Create that died before Close leaves its temp file behind; it must
	// never be listed as an object.
	leftover := filepath.Join(dir, "run", "chunk_00001.ply.tmp1234")
	require.NoError(t, os.WriteFile(leftover, []byte("partial"), 0o644))

	names, err := store.List(ctx, "run/")
	require.NoError(t, err)
	require.Equal(t, []string{"run/chunk_00000.ply"}, names)
}
