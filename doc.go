// Package starcache serves stars from catalogs too large to hold in memory.
//
// A catalog is split into trixels, the triangles of a hierarchical triangular
// mesh over the sky, and each trixel's records are sorted by magnitude. A
// Field pages the bright end of each trixel into a bounded pool of star blocks
// as draws and queries ask for it, and recycles the blocks of trixels that
// have not been touched recently.
//
// # Quick Start
//
//	ctx := context.Background()
//	field, err := starcache.Open(ctx, blobstore.NewLocalStore("./data"), "deepstars.dat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer field.Close()
//
//	center := mesh.Point{RA: 83.8, Dec: -5.4}
//	stats, err := field.Draw(ctx, center, 10, 12.5, func(t mesh.Trixel, s *catalog.Star) bool {
//	    plot(s)
//	    return true
//	})
//
// # Remote Catalogs
//
// Any blobstore.BlobStore works. For object storage put a block cache in
// front of it:
//
//	store, _ := s3.New(ctx, "sky", s3.WithPrefix("catalogs/"))
//	field, _ := starcache.Open(ctx, store, "deepstars.dat",
//	    starcache.WithBlockCache(64<<20),
//	    starcache.WithMaxConcurrentFetches(8),
//	)
//
// # Memory
//
// The pool holds WithCacheSize blocks of WithBlockSize stars. Blocks touched
// by the current draw are pinned; when every block is pinned the pool grows
// past its capacity (starblock.OverflowSoft) unless WithMemoryLimit refuses,
// or fails the load (starblock.OverflowReject). Failed loads are partial, not
// fatal: Draw shows what is in memory and the next pass retries.
//
// # Concurrency
//
// A Field is not safe for concurrent use. The transport underneath it
// (blobstore, the block cache) is.
package starcache
