// Package splat is the boundary to the external gaussian-splat codec.
//
// The codec that converts between the source PLY form and the compact
// transport form lives outside this repository; this package declares the
// contract the pipeline consumes and ships a structural loader good enough
// for post-merge verification.
package splat

import "fmt"

// Cloud is an opaque handle to a loaded point cloud, owned by the Codec
// that produced it.
type Cloud interface {
	// VertexCount returns the number of points in the cloud.
	VertexCount() int
}

// Codec converts between the source PLY form, an in-memory cloud, and the
// compact transport form.
type Codec interface {
	// Load parses source-format bytes into a cloud.
	Load(data []byte) (Cloud, error)

	// SerializeCompact encodes the cloud into the compact transport form.
	SerializeCompact(c Cloud) ([]byte, error)

	// DeserializeCompact decodes compact transport bytes into a cloud.
	DeserializeCompact(data []byte) (Cloud, error)

	// SerializeSource encodes the cloud back into the source PLY form.
	SerializeSource(c Cloud) ([]byte, error)
}

// Loader is the slice of Codec the merge verifier needs: prove that a
// merged file parses as a well-formed point cloud.
type Loader interface {
	Load(data []byte) (Cloud, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(data []byte) (Cloud, error)

// Load implements Loader.
func (f LoaderFunc) Load(data []byte) (Cloud, error) { return f(data) }

// VerifyVertexCount loads data and checks the declared count.
func VerifyVertexCount(l Loader, data []byte, want int) error {
	c, err := l.Load(data)
	if err != nil {
		return err
	}
	if got := c.VertexCount(); got != want {
		return fmt.Errorf("splat: loaded cloud has %d vertices, want %d", got, want)
	}
	return nil
}
