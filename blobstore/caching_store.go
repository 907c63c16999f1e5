package blobstore

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/starcache/internal/cache"
	"github.com/hupe1980/starcache/internal/resource"
	"golang.org/x/sync/errgroup"
)

// DefaultBlockSize is the cache block size used when none is given.
const DefaultBlockSize = 64 * 1024

// CachingStore wraps a BlobStore and adds block-level caching.
// It is meant for remote catalogs where every miss is a network round trip.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
	rc        *resource.Controller
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to DefaultBlockSize if <= 0. Backend reads are bounded
// by rc's fetch slots; a nil rc leaves them unbounded.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64, rc *resource.Controller) *CachingStore {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
		rc:        rc,
	}
}

// Open opens name through the inner store.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
		rc:        s.rc,
	}, nil
}

// Invalidate drops every cached block of name.
func (s *CachingStore) Invalidate(name string) {
	s.cache.Invalidate(func(key cache.CacheKey) bool {
		return key.Path == name
	})
}

// CachingBlob wraps a Blob and uses the block cache for reads.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
	rc        *resource.Controller
}

var _ Prefetcher = (*CachingBlob)(nil)

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) key(blk int64) cache.CacheKey {
	return cache.CacheKey{Path: b.name, Block: uint64(blk)}
}

// ReadAt serves p from cached blocks, fetching missing runs first.
func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	size := b.Size()
	if off < 0 || off >= size {
		return 0, io.EOF
	}

	end := min(off+int64(len(p)), size)
	startBlock := off / b.blockSize
	endBlock := (end - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize
		lo := max(blkStart, off)
		hi := min(blkStart+b.blockSize, end)

		data, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return total, err
		}
		src := lo - blkStart
		if src >= int64(len(data)) {
			break
		}
		total += copy(p[lo-off:hi-off], data[src:])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// Prefetch loads the blocks covering [off, off+n) into the cache.
func (b *CachingBlob) Prefetch(ctx context.Context, off, n int64) error {
	size := b.Size()
	if n <= 0 || off >= size {
		return nil
	}
	end := min(off+n, size)
	return b.fillCache(ctx, off/b.blockSize, (end-1)/b.blockSize)
}

type blockRun struct {
	start, count int64
}

// fillCache loads the missing blocks in [startBlock, endBlock], fetching each
// contiguous run of misses with a single backend read.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	var runs []blockRun
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.cache.Get(ctx, b.key(blk)); ok {
			continue
		}
		if n := len(runs); n > 0 && runs[n-1].start+runs[n-1].count == blk {
			runs[n-1].count++
			continue
		}
		runs = append(runs, blockRun{start: blk, count: 1})
	}
	if len(runs) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, run := range runs {
		if err := b.rc.AcquireFetch(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer b.rc.ReleaseFetch()
			return b.fetchRun(gctx, run)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (b *CachingBlob) fetchRun(ctx context.Context, run blockRun) error {
	byteStart := run.start * b.blockSize
	byteSize := min(run.count*b.blockSize, b.Size()-byteStart)
	if byteSize <= 0 {
		return nil
	}

	buf := make([]byte, byteSize)
	n, err := b.inner.ReadAt(ctx, buf, byteStart)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	valid := buf[:n]

	for i := int64(0); i < run.count; i++ {
		lo := i * b.blockSize
		if lo >= int64(len(valid)) {
			break
		}
		hi := min(lo+b.blockSize, int64(len(valid)))
		// Copy so a cached block does not pin the whole run.
		blk := make([]byte, hi-lo)
		copy(blk, valid[lo:hi])
		b.cache.Set(ctx, b.key(run.start+i), blk)
	}
	return nil
}

// fetchBlock returns one block, reading through when the cache evicted it
// between fillCache and the copy.
func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	if data, ok := b.cache.Get(ctx, b.key(blk)); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	data := buf[:n]
	if n > 0 {
		b.cache.Set(ctx, b.key(blk), data)
	}
	return data, nil
}
