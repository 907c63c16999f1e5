// Package minio provides a read-only BlobStore backed by the MinIO client.
//
// It serves star catalogs from MinIO or any S3-compatible storage (Ceph,
// SeaweedFS, Garage) through ranged GETs. Wrap it in a blobstore.CachingStore
// so paging a trixel does not cost a round trip per batch.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "sky", "catalogs/")
//	field, err := starcache.Open(ctx, store, "deepstars.dat", starcache.WithBlockCache(64<<20))
package minio
