// Package transport ships chunk files to a blob store and back.
//
// Chunks exist to squeeze through a narrow per-message budget, so the
// transport side mirrors that: uploads run under a session prefix with
// optional compression, bounded concurrency and request throttling. The
// downstream message encoding itself stays outside this repository.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Compressor compresses and decompresses chunk objects. Instances are safe
// for concurrent use; every call builds its own coder state.
type Compressor struct {
	name       string
	ext        string
	compress   func([]byte) ([]byte, error)
	decompress func([]byte) ([]byte, error)
}

// Name returns the signature the compressor was built from.
func (c *Compressor) Name() string { return c.name }

// Ext returns the filename extension appended to stored objects,
// empty for the identity compressor.
func (c *Compressor) Ext() string { return c.ext }

// Compress returns the compressed form of data.
func (c *Compressor) Compress(data []byte) ([]byte, error) { return c.compress(data) }

// Decompress reverses Compress.
func (c *Compressor) Decompress(data []byte) ([]byte, error) { return c.decompress(data) }

// NewCompressor builds a compressor from a signature of the form "alg" or
// "alg:level". Supported algorithms: zstd, zlib, s2, snappy, none.
func NewCompressor(sig string) (*Compressor, error) {
	alg, level := sig, -1
	if i := strings.IndexByte(sig, ':'); i >= 0 {
		alg = sig[:i]
		n, err := strconv.Atoi(sig[i+1:])
		if err != nil {
			return nil, fmt.Errorf("transport: bad compression level in %q: %w", sig, err)
		}
		level = n
	}

	c := &Compressor{name: sig}
	switch alg {
	case "", "none":
		c.name = "none"
		c.compress = func(in []byte) ([]byte, error) { return in, nil }
		c.decompress = func(in []byte) ([]byte, error) { return in, nil }
	case "zstd":
		if level == -1 {
			level = 3
		}
		c.ext = ".zst"
		c.compress = func(in []byte) ([]byte, error) {
			var buf bytes.Buffer
			enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
			if err != nil {
				return nil, err
			}
			return writeAndClose(&buf, enc, in)
		}
		c.decompress = func(in []byte) ([]byte, error) {
			dec, err := zstd.NewReader(bytes.NewReader(in))
			if err != nil {
				return nil, err
			}
			defer dec.Close()
			return io.ReadAll(dec)
		}
	case "zlib":
		if level == -1 {
			level = 6
		}
		c.ext = ".zz"
		c.compress = func(in []byte) ([]byte, error) {
			var buf bytes.Buffer
			enc, err := zlib.NewWriterLevel(&buf, level)
			if err != nil {
				return nil, err
			}
			return writeAndClose(&buf, enc, in)
		}
		c.decompress = func(in []byte) ([]byte, error) {
			r, err := zlib.NewReader(bytes.NewReader(in))
			if err != nil {
				return nil, err
			}
			defer r.Close()
			return io.ReadAll(r)
		}
	case "s2":
		c.ext = ".s2"
		c.compress = func(in []byte) ([]byte, error) {
			var buf bytes.Buffer
			return writeAndClose(&buf, s2.NewWriter(&buf), in)
		}
		c.decompress = func(in []byte) ([]byte, error) {
			return io.ReadAll(s2.NewReader(bytes.NewReader(in)))
		}
	case "snappy":
		c.ext = ".sz"
		c.compress = func(in []byte) ([]byte, error) {
			var buf bytes.Buffer
			return writeAndClose(&buf, snappy.NewBufferedWriter(&buf), in)
		}
		c.decompress = func(in []byte) ([]byte, error) {
			return io.ReadAll(snappy.NewReader(bytes.NewReader(in)))
		}
	default:
		return nil, fmt.Errorf("transport: unknown compressor %q", alg)
	}

	return c, nil
}

func writeAndClose(buf *bytes.Buffer, enc io.WriteCloser, in []byte) ([]byte, error) {
	if _, err := enc.Write(in); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
