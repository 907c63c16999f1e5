package cache

import "context"

// CacheKey identifies one block of one blob.
type CacheKey struct {
	// Path names the blob.
	Path string
	// Block is the block index within the blob.
	Block uint64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(ctx context.Context, key CacheKey) (b []byte, ok bool)
	// Set caches a block. Implementations may retain b; callers must not modify it.
	Set(ctx context.Context, key CacheKey, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key CacheKey) bool)
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
	// Size returns the cached bytes.
	Size() int64
}
