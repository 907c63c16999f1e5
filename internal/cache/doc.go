// Package cache keeps recently read catalog bytes in memory.
//
// Remote catalogs are read in fixed-size blocks; the block cache holds those
// blocks so that re-paging a trixel evicted from the star block pool does not
// cost another round trip. LRUBlockCache is a single-lock LRU.
// ShardedLRUBlockCache spreads keys over 64 of them for catalogs shared by
// several concurrent consumers.
//
// Both report every cached byte to an optional resource.Controller and skip
// caching rather than exceed its memory ceiling.
package cache
