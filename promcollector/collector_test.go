package promcollector

import (
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/starcache"
	"github.com/hupe1980/starcache/starblock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Draw(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordDraw(starcache.DrawStats{Trixels: 3, Stars: 40, Partial: 1}, 2*time.Millisecond, nil)
	c.RecordDraw(starcache.DrawStats{Stars: 2}, time.Millisecond, errors.New("boom"))

	assert.InDelta(t, 42, testutil.ToFloat64(c.drawStars), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.partial), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(c.latency))
}

func TestCollector_Query(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordQuery("stars_in_aperture", 7, time.Millisecond, nil)
	c.RecordQuery("stars_in_aperture", 3, time.Millisecond, nil)
	c.RecordQuery("object_nearest", 1, time.Millisecond, nil)

	assert.InDelta(t, 10, testutil.ToFloat64(c.results.WithLabelValues("stars_in_aperture")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.results.WithLabelValues("object_nearest")), 0)
}

func TestCollector_PoolDeltas(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordPool(4, starblock.PoolStats{Allocations: 4, Evictions: 1})
	c.RecordPool(5, starblock.PoolStats{Allocations: 5, Evictions: 3, Overflows: 1})
	c.RecordPool(5, starblock.PoolStats{Allocations: 5, Evictions: 3, Overflows: 1})

	assert.InDelta(t, 5, testutil.ToFloat64(c.liveBlocks), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(c.poolEvents.WithLabelValues("allocation")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(c.poolEvents.WithLabelValues("eviction")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.poolEvents.WithLabelValues("overflow")), 0)

	n, err := testutil.GatherAndCount(reg, "starcache_pool_live_blocks")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
