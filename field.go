package starcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/hupe1980/starcache/blobstore"
	"github.com/hupe1980/starcache/catalog"
	"github.com/hupe1980/starcache/internal/cache"
	"github.com/hupe1980/starcache/internal/resource"
	"github.com/hupe1980/starcache/mesh"
	"github.com/hupe1980/starcache/starblock"
)

// catalogFaint, passed as a magnitude limit, selects the catalog's own faint
// magnitude.
const catalogFaint = -28

// DrawStats summarizes one draw pass.
type DrawStats struct {
	// DrawID is the generation the pass ran in.
	DrawID uint64
	// Trixels is the number of trixels the aperture yielded.
	Trixels int
	// Partial is the number of trixels that could not be filled to the
	// limit this pass.
	Partial int
	// Stars is the number of stars passed to the visitor.
	Stars int
}

// FieldStats is a snapshot of a Field's memory state.
type FieldStats struct {
	Pool          starblock.PoolStats
	LiveBlocks    int
	LoadedTrixels uint
	MemoryUsage   int64
	// MemoryLimit is the ceiling set by WithMemoryLimit, 0 if unlimited.
	MemoryLimit int64
}

// Field serves the stars of one catalog, paging trixels in on demand.
// It is not safe for concurrent use.
type Field struct {
	mesh    *mesh.Mesh
	pool    *starblock.Pool
	reader  *catalog.BlobReader
	chains  []*starblock.Chain
	loaded  *bitset.BitSet
	rc      *resource.Controller
	metrics MetricsCollector
	logger  *Logger
	closed  bool
}

// Open opens the catalog name in store.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Field, error) {
	opts := options{
		logger:    NoopLogger(),
		metrics:   NoopMetricsCollector{},
		cacheSize: DefaultCacheSize,
		blockSize: DefaultBlockSize,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := opts.logger.WithCatalog(name)

	f, err := open(ctx, store, name, opts, logger)
	if err != nil {
		logger.LogOpen(ctx, 0, 0, 0, err)
		return nil, err
	}
	h := f.reader.Header()
	logger.LogOpen(ctx, int(h.Level), f.mesh.Size(), h.FaintMag, nil)
	return f, nil
}

func open(ctx context.Context, store blobstore.BlobStore, name string, opts options, logger *Logger) (*Field, error) {
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:     opts.memoryLimit,
		MaxConcurrentFetches: opts.maxFetches,
		IOLimitBytesPerSec:   opts.ioLimit,
	})

	if opts.blockCache > 0 {
		bc := cache.NewShardedLRUBlockCache(opts.blockCache, rc)
		store = blobstore.NewCachingStore(store, bc, opts.cacheBlockSize, rc)
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	r, err := catalog.Open(ctx, blob, catalog.WithIOLimiter(rc), catalog.WithLogger(logger.Logger))
	if err != nil {
		_ = blob.Close()
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	h := r.Header()
	m, err := mesh.New(int(h.Level), mesh.WithPrecessor(opts.precessor), mesh.WithLogger(logger.Logger))
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	poolOpts := []starblock.Option{
		starblock.WithOverflowPolicy(opts.policy),
		starblock.WithResourceController(rc),
		starblock.WithLogger(logger.Logger),
	}
	if opts.readBatch > 0 {
		poolOpts = append(poolOpts, starblock.WithReadBatch(opts.readBatch))
	}
	pool, err := starblock.NewPool(m, opts.cacheSize, opts.blockSize, poolOpts...)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	return &Field{
		mesh:    m,
		pool:    pool,
		reader:  r,
		chains:  make([]*starblock.Chain, m.Size()),
		loaded:  bitset.New(uint(m.Size())),
		rc:      rc,
		metrics: opts.metrics,
		logger:  logger,
	}, nil
}

// Mesh returns the field's mesh.
func (f *Field) Mesh() *mesh.Mesh { return f.mesh }

// Pool returns the field's block pool.
func (f *Field) Pool() *starblock.Pool { return f.pool }

// Header returns the catalog header.
func (f *Field) Header() catalog.Header { return f.reader.Header() }

// FaintMag returns the faintest magnitude in the catalog.
func (f *Field) FaintMag() float32 { return float32(f.reader.Header().FaintMag) }

// Chain returns the chain of trixel t, creating it on first use.
func (f *Field) Chain(t mesh.Trixel) *starblock.Chain {
	if int(t) >= len(f.chains) {
		return nil
	}
	c := f.chains[t]
	if c == nil {
		c = f.pool.NewChain(uint32(t), f.reader)
		f.chains[t] = c
	}
	return c
}

// Draw visits every loaded star down to maglim within radius degrees of
// center, trixel by trixel, brightest first within each trixel. It pins the
// blocks it touches for this generation, loads what is missing, and stops
// early when visit returns false.
//
// Trixels that cannot be filled this pass are visited with what is in memory
// and counted in DrawStats.Partial.
func (f *Field) Draw(ctx context.Context, center mesh.Point, radius float64, maglim float32, visit func(mesh.Trixel, *catalog.Star) bool) (DrawStats, error) {
	start := time.Now()
	stats, err := f.draw(ctx, center, radius, maglim, visit)
	f.logger.LogDraw(ctx, stats.DrawID, stats, err)
	f.metrics.RecordDraw(stats, time.Since(start), err)
	f.metrics.RecordPool(f.pool.Len(), f.pool.Stats())
	return stats, err
}

func (f *Field) draw(ctx context.Context, center mesh.Point, radius float64, maglim float32, visit func(mesh.Trixel, *catalog.Star) bool) (DrawStats, error) {
	var stats DrawStats
	if f.closed {
		return stats, ErrClosed
	}
	if f.mesh.InDraw() {
		return stats, ErrDrawInProgress
	}
	f.mesh.SetInDraw(true)
	defer f.mesh.SetInDraw(false)

	radius = min(radius, 90)
	if !f.mesh.Aperture(center, radius, mesh.DrawBuf) {
		return stats, ErrDrawInProgress
	}
	stats.DrawID = f.mesh.DrawID()

	it := mesh.NewIterator(f.mesh, mesh.DrawBuf)
	stats.Trixels = it.Size()

	// Pin first so this pass's loads recycle other trixels' blocks.
	for it.HasNext() {
		if c := f.chains[it.Next()]; c != nil {
			c.Pin(maglim)
		}
	}
	it.Reset()

	for it.HasNext() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		t := it.Next()
		c := f.Chain(t)
		if !c.FillToMag(ctx, maglim) {
			stats.Partial++
		}
		f.track(t, c)

		for s := range c.All(maglim) {
			stats.Stars++
			if !visit(t, s) {
				return stats, nil
			}
		}
	}
	return stats, nil
}

// StarsInAperture loads and returns copies of the stars down to maglim
// within radius degrees of center. center is in catalog coordinates; no
// precession or margin is applied. A maglim below -28 selects the catalog's
// faint magnitude.
func (f *Field) StarsInAperture(ctx context.Context, center mesh.Point, radius float64, maglim float32) ([]catalog.Star, error) {
	start := time.Now()
	stars, err := f.starsInAperture(ctx, center, radius, maglim)
	f.metrics.RecordQuery("stars_in_aperture", len(stars), time.Since(start), err)
	return stars, err
}

func (f *Field) starsInAperture(ctx context.Context, center mesh.Point, radius float64, maglim float32) ([]catalog.Star, error) {
	if f.closed {
		return nil, ErrClosed
	}
	if maglim < catalogFaint {
		maglim = f.FaintMag()
	}

	f.mesh.IndexCircle(center, radius, mesh.ObjNearestBuf)
	var out []catalog.Star
	for it := mesh.NewIterator(f.mesh, mesh.ObjNearestBuf); it.HasNext(); {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		t := it.Next()
		c := f.Chain(t)
		if !c.FillToMag(ctx, maglim) {
			f.logger.Debug("partial trixel in aperture query", "trixel", t)
		}
		f.track(t, c)

		for s := range c.All(maglim) {
			if starPoint(s).AngleTo(center) <= radius {
				out = append(out, *s)
			}
		}
	}
	return out, nil
}

// ObjectNearest returns the loaded star closest to p within maxrad degrees
// and no fainter than maglim. It never loads from the catalog: only stars a
// previous draw or query brought in are candidates.
func (f *Field) ObjectNearest(p mesh.Point, maxrad float64, maglim float32) (catalog.Star, float64, bool) {
	start := time.Now()
	best, dist, ok := f.objectNearest(p, maxrad, maglim)
	n := 0
	if ok {
		n = 1
	}
	f.metrics.RecordQuery("object_nearest", n, time.Since(start), nil)
	return best, dist, ok
}

func (f *Field) objectNearest(p mesh.Point, maxrad float64, maglim float32) (catalog.Star, float64, bool) {
	var (
		best  catalog.Star
		found bool
	)
	if f.closed {
		return best, 0, false
	}

	f.mesh.IndexCircle(p, maxrad+mesh.ApertureMargin, mesh.ObjNearestBuf)
	for it := mesh.NewIterator(f.mesh, mesh.ObjNearestBuf); it.HasNext(); {
		c := f.chains[it.Next()]
		if c == nil {
			continue
		}
		for s := range c.All(maglim) {
			if r := starPoint(s).AngleTo(p); r < maxrad {
				best, maxrad, found = *s, r, true
			}
		}
	}
	return best, maxrad, found
}

// MarkVisible runs the aperture for center and radius and pins the blocks
// already loaded for it down to maglim, without loading anything. It keeps
// a view's stars resident while draws are suspended, e.g. while slewing.
// It returns the number of trixels touched.
func (f *Field) MarkVisible(center mesh.Point, radius float64, maglim float32) (int, error) {
	if f.closed {
		return 0, ErrClosed
	}
	if f.mesh.InDraw() {
		return 0, ErrDrawInProgress
	}
	if !f.mesh.Aperture(center, min(radius, 90), mesh.DrawBuf) {
		return 0, ErrDrawInProgress
	}
	n := 0
	for it := mesh.NewIterator(f.mesh, mesh.DrawBuf); it.HasNext(); {
		if c := f.chains[it.Next()]; c != nil && c.BlockCount() > 0 {
			c.Pin(maglim)
			n++
		}
	}
	return n, nil
}

// VerifyIntegrity checks every loaded chain: blocks must be magnitude
// ordered and owned by their chain, and blocks a chain pinned in the
// current generation must be adjacent in the pool's recency list. Problems are logged and returned
// joined; each matches ErrIntegrity.
func (f *Field) VerifyIntegrity() error {
	if f.closed {
		return ErrClosed
	}
	f.refreshLoaded()

	var errs []error
	report := func(t uint32, i int, reason string) {
		f.logger.Warn("integrity violation", "trixel", t, "block", i, "reason", reason)
		errs = append(errs, &IntegrityError{Trixel: t, Block: i, Reason: reason})
	}

	for t, ok := f.loaded.NextSet(0); ok; t, ok = f.loaded.NextSet(t + 1) {
		c := f.chains[t]
		var prev *starblock.Block
		for i := range c.BlockCount() {
			b := c.Block(i)
			if b.Owner() != c {
				report(uint32(t), i, "block not owned by its chain")
			}
			if prev != nil {
				if b.BrightMag() < prev.FaintMag() {
					report(uint32(t), i, fmt.Sprintf("bright mag %.2f below previous faint mag %.2f", b.BrightMag(), prev.FaintMag()))
				}
				if cur := f.mesh.DrawID(); cur != 0 && prev.DrawID() == cur && b.DrawID() == cur && b.Prev() != prev.ID() {
					report(uint32(t), i, "pinned blocks not adjacent in recency list")
				}
			}
			prev = b
		}
	}
	return errors.Join(errs...)
}

// FreeUnused deletes every block not pinned by the current generation.
func (f *Field) FreeUnused() int {
	start := time.Now()
	n := f.pool.FreeUnused()
	f.refreshLoaded()
	f.logger.LogReclaim(context.Background(), "free_unused", n, time.Since(start))
	f.metrics.RecordPool(f.pool.Len(), f.pool.Stats())
	return n
}

// FreeAll deletes every block.
func (f *Field) FreeAll() int {
	start := time.Now()
	n := f.pool.FreeAll()
	f.loaded.ClearAll()
	f.logger.LogReclaim(context.Background(), "free_all", n, time.Since(start))
	f.metrics.RecordPool(f.pool.Len(), f.pool.Stats())
	return n
}

// Stats returns a snapshot of the field's memory state.
func (f *Field) Stats() FieldStats {
	f.refreshLoaded()
	return FieldStats{
		Pool:          f.pool.Stats(),
		LiveBlocks:    f.pool.Len(),
		LoadedTrixels: f.loaded.Count(),
		MemoryUsage:   f.rc.MemoryUsage(),
		MemoryLimit:   f.rc.MemoryLimit(),
	}
}

// Close frees all blocks and closes the catalog. It is idempotent.
func (f *Field) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	f.pool.FreeAll()
	f.loaded.ClearAll()
	return f.reader.Close()
}

func (f *Field) track(t mesh.Trixel, c *starblock.Chain) {
	if c.BlockCount() > 0 {
		f.loaded.Set(uint(t))
	}
}

// refreshLoaded drops trixels whose blocks were all recycled.
func (f *Field) refreshLoaded() {
	for t, ok := f.loaded.NextSet(0); ok; t, ok = f.loaded.NextSet(t + 1) {
		if f.chains[t].BlockCount() == 0 {
			f.loaded.Clear(t)
		}
	}
}

func starPoint(s *catalog.Star) mesh.Point {
	return mesh.Point{RA: s.RA, Dec: s.Dec}
}
