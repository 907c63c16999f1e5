package promcollector

import (
	"sync"
	"time"

	"github.com/hupe1980/starcache"
	"github.com/hupe1980/starcache/starblock"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "starcache"

// Collector implements starcache.MetricsCollector with Prometheus metrics.
type Collector struct {
	latency    *prometheus.HistogramVec
	drawStars  prometheus.Counter
	partial    prometheus.Counter
	results    *prometheus.CounterVec
	liveBlocks prometheus.Gauge
	poolEvents *prometheus.CounterVec

	mu   sync.Mutex
	last starblock.PoolStats
}

var _ starcache.MetricsCollector = (*Collector)(nil)

// New creates a collector and registers its metrics with reg.
// A nil reg selects prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of draw passes and queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		drawStars: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_stars_total",
			Help:      "Stars passed to draw visitors",
		}),
		partial: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partial_trixels_total",
			Help:      "Trixels that could not be filled to the limit during a draw",
		}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_results_total",
			Help:      "Stars returned by queries",
		}, []string{"op"}),
		liveBlocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_live_blocks",
			Help:      "Star blocks currently allocated",
		}),
		poolEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_events_total",
			Help:      "Block pool allocations, evictions, overflows, rejections and frees",
		}, []string{"event"}),
	}
	reg.MustRegister(c.latency, c.drawStars, c.partial, c.results, c.liveBlocks, c.poolEvents)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordDraw implements starcache.MetricsCollector.
func (c *Collector) RecordDraw(stats starcache.DrawStats, d time.Duration, err error) {
	c.latency.WithLabelValues("draw", status(err)).Observe(d.Seconds())
	c.drawStars.Add(float64(stats.Stars))
	c.partial.Add(float64(stats.Partial))
}

// RecordQuery implements starcache.MetricsCollector.
func (c *Collector) RecordQuery(op string, results int, d time.Duration, err error) {
	c.latency.WithLabelValues(op, status(err)).Observe(d.Seconds())
	c.results.WithLabelValues(op).Add(float64(results))
}

// RecordPool implements starcache.MetricsCollector. Pool statistics are
// cumulative; only the change since the previous call is added.
func (c *Collector) RecordPool(live int, stats starblock.PoolStats) {
	c.liveBlocks.Set(float64(live))

	c.mu.Lock()
	prev := c.last
	c.last = stats
	c.mu.Unlock()

	c.addDelta("allocation", stats.Allocations, prev.Allocations)
	c.addDelta("eviction", stats.Evictions, prev.Evictions)
	c.addDelta("overflow", stats.Overflows, prev.Overflows)
	c.addDelta("rejection", stats.Rejections, prev.Rejections)
	c.addDelta("free", stats.Freed, prev.Freed)
}

func (c *Collector) addDelta(event string, cur, prev int64) {
	if cur > prev {
		c.poolEvents.WithLabelValues(event).Add(float64(cur - prev))
	}
}
