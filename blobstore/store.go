package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when an object does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// BlobStore stores immutable chunk and group objects.
type BlobStore interface {
	// Open opens an existing object for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates an object for streaming writes. The object becomes
	// visible when the returned writer is closed without error.
	Create(ctx context.Context, name string) (io.WriteCloser, error)

	// Put writes a whole object in one call.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the object names under prefix, sorted lexically.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a stored object.
type Blob interface {
	io.Closer

	// Reader streams the object from the start.
	Reader(ctx context.Context) (io.ReadCloser, error)

	// Size returns the object size in bytes.
	Size() int64
}

// ReadAll reads a whole object.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	r, err := blob.Reader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
