package starcache

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/starcache/starblock"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; see package promcollector.
type MetricsCollector interface {
	// RecordDraw is called after each draw pass.
	RecordDraw(stats DrawStats, duration time.Duration, err error)

	// RecordQuery is called after StarsInAperture and ObjectNearest.
	// op names the query, results is the number of stars returned.
	RecordQuery(op string, results int, duration time.Duration, err error)

	// RecordPool is called after each pass with the pool's live block count
	// and cumulative statistics.
	RecordPool(live int, stats starblock.PoolStats)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordDraw(DrawStats, time.Duration, error)    {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPool(int, starblock.PoolStats)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	DrawCount       atomic.Int64
	DrawErrors      atomic.Int64
	DrawTotalNanos  atomic.Int64
	DrawStars       atomic.Int64
	PartialTrixels  atomic.Int64
	QueryCount      atomic.Int64
	QueryErrors     atomic.Int64
	QueryTotalNanos atomic.Int64
	LiveBlocks      atomic.Int64
	Evictions       atomic.Int64
	Overflows       atomic.Int64
}

// RecordDraw implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDraw(stats DrawStats, duration time.Duration, err error) {
	b.DrawCount.Add(1)
	b.DrawTotalNanos.Add(duration.Nanoseconds())
	b.DrawStars.Add(int64(stats.Stars))
	b.PartialTrixels.Add(int64(stats.Partial))
	if err != nil {
		b.DrawErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, _ int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordPool implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPool(live int, stats starblock.PoolStats) {
	b.LiveBlocks.Store(int64(live))
	b.Evictions.Store(stats.Evictions)
	b.Overflows.Store(stats.Overflows)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		DrawCount:      b.DrawCount.Load(),
		DrawErrors:     b.DrawErrors.Load(),
		DrawAvgNanos:   avg(b.DrawTotalNanos.Load(), b.DrawCount.Load()),
		DrawStars:      b.DrawStars.Load(),
		PartialTrixels: b.PartialTrixels.Load(),
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		QueryAvgNanos:  avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
		LiveBlocks:     b.LiveBlocks.Load(),
		Evictions:      b.Evictions.Load(),
		Overflows:      b.Overflows.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	DrawCount      int64
	DrawErrors     int64
	DrawAvgNanos   int64
	DrawStars      int64
	PartialTrixels int64
	QueryCount     int64
	QueryErrors    int64
	QueryAvgNanos  int64
	LiveBlocks     int64
	Evictions      int64
	Overflows      int64
}
