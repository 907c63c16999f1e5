// Package starblock pages catalog stars into a bounded pool of fixed-size
// blocks.
//
// A Pool owns every Block in an arena addressed by BlockID and threads them
// through one recency list. Each trixel gets a Chain that pulls records from
// a catalog.Reader in magnitude order, appending them to blocks it obtains
// from the pool.
//
// Pinning is by generation: a block stamped with the current draw ID is hot
// and will not be recycled until the generation advances. When every block
// is hot the pool either overflows its soft capacity (OverflowSoft) or
// refuses (OverflowReject).
//
// Nothing in this package is safe for concurrent use.
package starblock
