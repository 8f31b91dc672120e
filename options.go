package plyshard

import (
	"log/slog"

	"github.com/hupe1980/plyshard/codec"
	"github.com/hupe1980/plyshard/internal/fs"
	"github.com/hupe1980/plyshard/splat"
)

type options struct {
	fs      fs.FileSystem
	codec   codec.Codec
	loader  splat.Loader
	logger  *Logger
	metrics MetricsCollector
}

// Option customizes a Pipeline.
type Option func(*options)

func defaultOptions() options {
	return options{
		fs:      fs.Default,
		codec:   codec.Default,
		loader:  splat.NewStructuralLoader(),
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
}

func applyOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFileSystem replaces the filesystem used for all reads and writes.
// Useful for fault injection in tests.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithCodec replaces the JSON codec used for the metadata sidecars.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithLoader replaces the point-cloud loader that validates merged group
// files. The default loader checks structure only; a real renderer's loader
// can be plugged in here.
func WithLoader(l splat.Loader) Option {
	return func(o *options) {
		if l != nil {
			o.loader = l
		}
	}
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLogLevel installs a text logger to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the metrics sink. The default discards metrics.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c != nil {
			o.metrics = c
		}
	}
}
