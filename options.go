package starcache

import (
	"github.com/hupe1980/starcache/mesh"
	"github.com/hupe1980/starcache/starblock"
)

const (
	// DefaultCacheSize is the default soft capacity of the block pool.
	DefaultCacheSize = 1024
	// DefaultBlockSize is the default number of stars per block.
	DefaultBlockSize = 100
)

type options struct {
	logger         *Logger
	metrics        MetricsCollector
	precessor      mesh.Precessor
	cacheSize      int
	blockSize      int
	policy         starblock.OverflowPolicy
	memoryLimit    int64
	ioLimit        int64
	maxFetches     int64
	blockCache     int64
	cacheBlockSize int64
	readBatch      int
}

// Option configures Open.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics sink.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

// WithPrecessor sets the transform Draw applies to aperture centers to reach
// catalog coordinates.
func WithPrecessor(p mesh.Precessor) Option {
	return func(o *options) {
		o.precessor = p
	}
}

// WithCacheSize sets the soft capacity of the block pool, in blocks.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithBlockSize sets the number of stars per block.
func WithBlockSize(n int) Option {
	return func(o *options) {
		o.blockSize = n
	}
}

// WithOverflowPolicy selects what happens when every block is pinned.
// See starblock.OverflowSoft and starblock.OverflowReject.
func WithOverflowPolicy(p starblock.OverflowPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithMemoryLimit caps the bytes held by star blocks and the block cache
// together. Under OverflowSoft this bounds the overflow.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIOLimit caps catalog record reads, in bytes per second.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithMaxConcurrentFetches bounds parallel backend reads of the block cache.
func WithMaxConcurrentFetches(n int64) Option {
	return func(o *options) {
		o.maxFetches = n
	}
}

// WithBlockCache puts a byte-block cache of the given size in front of the
// store. Use it for remote catalogs.
func WithBlockCache(bytes int64) Option {
	return func(o *options) {
		o.blockCache = bytes
	}
}

// WithCacheBlockSize sets the block size of the byte-block cache.
// The default is blobstore.DefaultBlockSize.
func WithCacheBlockSize(bytes int64) Option {
	return func(o *options) {
		o.cacheBlockSize = bytes
	}
}

// WithReadBatch sets how many records are fetched per catalog read.
func WithReadBatch(n int) Option {
	return func(o *options) {
		o.readBatch = n
	}
}
