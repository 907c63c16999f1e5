// Package resource governs the memory, fetch concurrency and read bandwidth
// shared by everything that pages star data.
//
//	┌──────────────────────────────────────────────────────────┐
//	│                       Controller                         │
//	├──────────────────┬──────────────────┬────────────────────┤
//	│  Memory ceiling  │  Fetch slots     │  IO token bucket   │
//	│  (fail-fast)     │  (blocking sem)  │  (rate.Limiter)    │
//	├──────────────────┼──────────────────┼────────────────────┤
//	│  star blocks,    │  parallel range  │  catalog record    │
//	│  cached catalog  │  reads behind a  │  reads             │
//	│  bytes           │  caching blob    │                    │
//	└──────────────────┴──────────────────┴────────────────────┘
//
// Memory acquisition never blocks: a refused AcquireMemory is the signal a
// block pool uses to degrade instead of growing past the ceiling.
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20})
//	if err := rc.AcquireMemory(blockBytes); err != nil {
//	    // ErrMemoryLimitExceeded: reuse or give up, never wait
//	}
//	defer rc.ReleaseMemory(blockBytes)
//
// All methods are safe for concurrent use and are no-ops on a nil
// *Controller, so limits stay optional without nil checks at call sites.
package resource
