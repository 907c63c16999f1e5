package starblock

import (
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/hupe1980/starcache/catalog"
)

// Chain holds the loaded prefix of one trixel's records, brightest first,
// spread over blocks from the pool.
type Chain struct {
	trixel uint32
	pool   *Pool
	reader catalog.Reader

	blocks   []BlockID
	nStars   uint32
	faintMag float32

	// readOffset is where the next record is read from. It always equals
	// offset + nStars*recordSize once resolved.
	readOffset  int64
	recordCount uint32
	resolved    bool
	failed      bool
}

func (c *Chain) Trixel() uint32 { return c.trixel }

// StarCount returns the number of loaded stars.
func (c *Chain) StarCount() uint32 { return c.nStars }

// FaintMag returns the magnitude of the faintest loaded star, or -5 when the
// chain is empty.
func (c *Chain) FaintMag() float32 { return c.faintMag }

// ReadOffset returns the catalog offset of the next unread record.
func (c *Chain) ReadOffset() int64 { return c.readOffset }

// BlockCount returns the number of blocks in the chain.
func (c *Chain) BlockCount() int { return len(c.blocks) }

// Block returns the i-th block, brightest first.
func (c *Chain) Block(i int) *Block {
	if i < 0 || i >= len(c.blocks) {
		return nil
	}
	return c.pool.Block(c.blocks[i])
}

// Blocks returns the chain's block ids, brightest first.
func (c *Chain) Blocks() []BlockID { return slices.Clone(c.blocks) }

// Exhausted reports whether no further records will be loaded: every record
// of the trixel is in memory, or a catalog error stopped the chain.
func (c *Chain) Exhausted() bool {
	return c.failed || (c.resolved && c.nStars >= c.recordCount)
}

// Failed reports whether a catalog error stopped the chain.
func (c *Chain) Failed() bool { return c.failed }

// All yields the loaded stars up to and including limit, brightest first.
func (c *Chain) All(limit float32) iter.Seq[*catalog.Star] {
	return func(yield func(*catalog.Star) bool) {
		for _, id := range c.blocks {
			b := c.pool.Block(id)
			for i := range b.stars {
				s := &b.stars[i]
				if s.Mag > limit {
					return
				}
				if !yield(s) {
					return
				}
			}
		}
	}
}

// FillToMag loads records until the faintest loaded star is fainter than
// limit or the trixel is exhausted; both count as success. Every record at
// exactly limit is therefore loaded. It returns false when the pool cannot
// supply a block, the read is throttled or the context ends; the caller
// retries on a later pass.
//
// A catalog error is logged and stops the chain for the rest of the session:
// that call returns false and later calls return true without I/O.
func (c *Chain) FillToMag(ctx context.Context, limit float32) bool {
	if c.faintMag > limit || c.Exhausted() {
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	if !c.resolved {
		off, err := c.reader.Offset(c.trixel)
		if err == nil {
			c.recordCount, err = c.reader.RecordCount(c.trixel)
		}
		if err != nil {
			c.fail(err)
			return false
		}
		c.readOffset = off
		c.resolved = true
	}

	var cur *catalog.Cursor
	for limit >= c.faintMag && c.nStars < c.recordCount {
		tail := c.tail()
		if tail == nil || tail.IsFull() {
			var ok bool
			if tail, ok = c.grow(); !ok {
				return false
			}
		}

		if cur == nil || cur.Offset() != c.readOffset {
			cur = catalog.NewCursor(c.reader, c.readOffset, c.recordCount-c.nStars, c.pool.batch)
		}
		s, err := cur.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, catalog.ErrThrottled) {
				c.pool.logger.Debug("catalog read deferred", "trixel", c.trixel, "error", err)
				return false
			}
			c.fail(err)
			return false
		}

		tail.AddStar(s)
		c.nStars++
		c.readOffset = cur.Offset()
		c.faintMag = s.Mag
	}
	return true
}

// Pin stamps the chain's blocks with the current generation, brightest
// first, up to the first block fainter than limit. The pinned blocks are
// kept adjacent in recency order so eviction takes whole cold trixels.
func (c *Chain) Pin(limit float32) {
	for i, id := range c.blocks {
		var ok bool
		if i == 0 {
			ok = c.pool.MarkFirst(id)
		} else {
			ok = c.pool.MarkNext(c.blocks[i-1], id)
		}
		if !ok {
			c.pool.logger.Warn("pin failed", "trixel", c.trixel, "index", i)
		}
		if c.pool.Block(id).FaintMag() > limit {
			return
		}
	}
}

func (c *Chain) tail() *Block {
	if len(c.blocks) == 0 {
		return nil
	}
	return c.pool.Block(c.blocks[len(c.blocks)-1])
}

// grow appends a fresh block and pins it behind the previous tail.
func (c *Chain) grow() (*Block, bool) {
	before := c.nStars
	id, err := c.pool.GetBlock()
	if err != nil {
		c.pool.logger.Debug("no block for trixel", "trixel", c.trixel, "error", err)
		return nil, false
	}
	if c.nStars < before {
		// The pool recycled one of our own blocks; the pool is too small to
		// hold this trixel at this limit.
		c.pool.logger.Warn("pool recycled a block of the chain it was growing",
			"trixel", c.trixel, "capacity", c.pool.nCache)
		return nil, false
	}

	b := c.pool.Block(id)
	b.owner = c
	c.blocks = append(c.blocks, id)
	if n := len(c.blocks); n == 1 {
		c.pool.MarkFirst(id)
	} else {
		c.pool.MarkNext(c.blocks[n-2], id)
	}
	return b, true
}

func (c *Chain) fail(err error) {
	c.failed = true
	level := c.pool.logger.Error
	if errors.Is(err, catalog.ErrUnknownTrixel) {
		level = c.pool.logger.Warn
	}
	level("catalog read failed, trixel exhausted",
		"trixel", c.trixel, "faint_mag", c.faintMag, "error", err)
}

// releaseBlock drops id and every block after it. Dropping later blocks too
// keeps the chain a gap-free prefix of the trixel's records. The later
// blocks stay live but empty; they move to the cold end unstamped so they
// are recycled next.
func (c *Chain) releaseBlock(id BlockID) {
	i := slices.Index(c.blocks, id)
	if i < 0 {
		c.pool.logger.Warn("release of block not in chain", "trixel", c.trixel, "block", id)
		return
	}
	if i != len(c.blocks)-1 {
		c.pool.logger.Debug("releasing inner block, truncating chain",
			"trixel", c.trixel, "index", i, "blocks", len(c.blocks))
	}

	var released uint32
	for j := i; j < len(c.blocks); j++ {
		b := c.pool.Block(c.blocks[j])
		released += uint32(b.Len())
		if j > i {
			b.clear()
			b.drawID = 0
			c.pool.unlink(b)
			c.pool.pushBack(b)
		}
	}
	c.blocks = c.blocks[:i]
	c.nStars -= released
	c.readOffset -= int64(released) * int64(c.reader.RecordSize())

	if t := c.tail(); t != nil {
		c.faintMag = t.FaintMag()
	} else {
		c.faintMag = faintSentinel
	}
}
