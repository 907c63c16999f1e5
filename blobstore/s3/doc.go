// Package s3 provides a read-only S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("catalogs/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	field, err := starcache.Open(ctx, store, "deepstars.dat", starcache.WithBlockCache(64<<20))
//
// Each Blob.ReadAt is one ranged GET, so a CachingStore in front of the
// store is strongly recommended.
package s3
