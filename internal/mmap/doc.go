// Package mmap maps catalog files read-only into memory.
//
// Star records are read in small, scattered batches (one trixel at a time), so
// a mapping lets the page cache serve them without a syscall per batch.
// AdviseRange passes access hints for a byte range, for example to pre-fault
// the header and directory while the record bodies stay on demand.
//
// Unix uses mmap(2) and madvise(2). On Windows files are mapped with
// MapViewOfFile and advice is a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent; the slice
// returned by Bytes must not be used after Close.
package mmap
