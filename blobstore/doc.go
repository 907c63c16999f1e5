// Package blobstore provides read-only access to star catalog files.
//
// A BlobStore opens a Blob; a Blob serves positioned reads. Implementations
// must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local files, memory mapped
//   - MemoryStore: in-memory blobs for tests and generated catalogs
//   - CachingStore: block cache in front of any store, for remote catalogs
//   - minio.Store, s3.Store: range reads from S3-compatible object storage
//
// # Optional Interfaces
//
// Blobs may also implement Mappable (zero-copy access to the whole blob) and
// Prefetcher (warm a range, e.g. a catalog's directory, before reading it).
package blobstore
