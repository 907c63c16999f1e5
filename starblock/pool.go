package starblock

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/hupe1980/starcache/catalog"
	"github.com/hupe1980/starcache/internal/resource"
)

// Generation supplies the current draw ID. *mesh.Mesh implements it.
type Generation interface {
	DrawID() uint64
}

// PoolStats counts pool activity since creation.
type PoolStats struct {
	// Allocations is the number of blocks created.
	Allocations int64
	// Evictions is the number of cold blocks recycled by GetBlock.
	Evictions int64
	// Overflows is the number of allocations past the soft capacity.
	Overflows int64
	// Rejections is the number of GetBlock calls that failed.
	Rejections int64
	// Freed is the number of blocks deleted by the reclaim calls.
	Freed int64
}

// Pool is a bounded LRU of star blocks.
//
// Every live block sits in one recency list, hottest first. GetBlock recycles
// from the cold end.
type Pool struct {
	arena     []*Block
	free      []BlockID
	first     BlockID
	last      BlockID
	live      int
	nCache    int
	blockSize int
	memPer    int64

	gen    Generation
	policy OverflowPolicy
	rc     *resource.Controller
	batch  int
	stats  PoolStats
	logger *slog.Logger
}

// NewPool creates a pool of at most nCache blocks of blockSize stars each,
// pinned by the generations gen reports.
func NewPool(gen Generation, nCache, blockSize int, optFns ...Option) (*Pool, error) {
	if nCache <= 0 || blockSize <= 0 {
		return nil, fmt.Errorf("%w: nCache=%d blockSize=%d", ErrInvalidCapacity, nCache, blockSize)
	}
	opts := options{
		batch:  catalog.DefaultBatch,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Pool{
		first:     NoBlock,
		last:      NoBlock,
		nCache:    nCache,
		blockSize: blockSize,
		memPer:    int64(blockSize) * int64(unsafe.Sizeof(catalog.Star{})),
		gen:       gen,
		policy:    opts.policy,
		rc:        opts.rc,
		batch:     opts.batch,
		logger:    opts.logger,
	}, nil
}

// NewChain returns an empty chain for trixel t reading from r.
func (p *Pool) NewChain(t uint32, r catalog.Reader) *Chain {
	return &Chain{
		trixel:   t,
		pool:     p,
		reader:   r,
		faintMag: faintSentinel,
	}
}

// Block returns the block with the given id, or nil.
func (p *Pool) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(p.arena) {
		return nil
	}
	return p.arena[id]
}

// Len returns the number of live blocks.
func (p *Pool) Len() int { return p.live }

// Capacity returns the soft capacity.
func (p *Pool) Capacity() int { return p.nCache }

// BlockSize returns the number of stars per block.
func (p *Pool) BlockSize() int { return p.blockSize }

// First returns the hottest block.
func (p *Pool) First() BlockID { return p.first }

// Last returns the coldest block.
func (p *Pool) Last() BlockID { return p.last }

func (p *Pool) Stats() PoolStats { return p.stats }

func (p *Pool) isCold(b *Block) bool {
	cur := p.gen.DrawID()
	return cur == 0 || b.drawID != cur
}

// GetBlock returns an empty, unowned block. Below capacity it allocates;
// at capacity it recycles the coldest block if that block is not pinned by
// the current generation. Otherwise the overflow policy applies.
//
// The returned block is linked at the cold end; callers pin it with
// MarkFirst or MarkNext.
func (p *Pool) GetBlock() (BlockID, error) {
	if p.live < p.nCache {
		return p.allocate()
	}

	if b := p.Block(p.last); b != nil && p.isCold(b) {
		b.Reset()
		p.stats.Evictions++
		return b.id, nil
	}

	if p.policy == OverflowReject {
		p.stats.Rejections++
		return NoBlock, fmt.Errorf("%w: %d blocks hot", ErrPoolExhausted, p.live)
	}

	id, err := p.allocate()
	if err != nil {
		return NoBlock, err
	}
	p.stats.Overflows++
	p.logger.Debug("pool soft overflow", "live", p.live, "capacity", p.nCache)
	return id, nil
}

func (p *Pool) allocate() (BlockID, error) {
	if err := p.rc.AcquireMemory(p.memPer); err != nil {
		p.stats.Rejections++
		return NoBlock, fmt.Errorf("%w: %w", ErrPoolExhausted, err)
	}

	var id BlockID
	if n := len(p.free); n > 0 {
		id = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		id = BlockID(len(p.arena))
		p.arena = append(p.arena, nil)
	}
	b := newBlock(id, p.blockSize)
	p.arena[id] = b
	p.pushBack(b)
	p.live++
	p.stats.Allocations++
	return id, nil
}

// MarkFirst moves id to the hot end and stamps it with the current
// generation.
func (p *Pool) MarkFirst(id BlockID) bool {
	b := p.Block(id)
	if b == nil {
		p.logger.Warn("markFirst on unknown block", "block", id)
		return false
	}
	if p.first != id {
		p.unlink(b)
		p.pushFront(b)
	}
	b.drawID = p.gen.DrawID()
	return true
}

// MarkNext moves id directly behind after and stamps it, keeping the blocks
// of one chain adjacent in recency order.
func (p *Pool) MarkNext(after, id BlockID) bool {
	a, b := p.Block(after), p.Block(id)
	if a == nil || b == nil || a == b {
		p.logger.Warn("markNext on invalid pair", "after", after, "block", id)
		return false
	}
	if a.next != id {
		p.unlink(b)
		p.insertAfter(a, b)
	}
	b.drawID = p.gen.DrawID()
	return true
}

// FreeUnused deletes every cold block and returns how many were freed.
//
// Deleting a block truncates its chain, which can move later blocks of that
// chain to the cold end, so the list is walked again until no cold block is
// left.
func (p *Pool) FreeUnused() int {
	n := 0
	var cold []BlockID
	for {
		cold = cold[:0]
		for id := p.first; id != NoBlock; id = p.arena[id].next {
			if p.isCold(p.arena[id]) {
				cold = append(cold, id)
			}
		}
		if len(cold) == 0 {
			return n
		}
		for _, id := range cold {
			if b := p.arena[id]; b != nil && p.isCold(b) {
				p.delete(b)
				n++
			}
		}
	}
}

// FreeAll deletes every block, hot or not.
func (p *Pool) FreeAll() int {
	n := 0
	for p.last != NoBlock {
		p.delete(p.arena[p.last])
		n++
	}
	return n
}

// DeleteBlocks deletes up to n cold blocks from the cold end. It stops at
// the first hot block.
func (p *Pool) DeleteBlocks(n int) int {
	deleted := 0
	for deleted < n {
		b := p.Block(p.last)
		if b == nil || !p.isCold(b) {
			break
		}
		p.delete(b)
		deleted++
	}
	return deleted
}

func (p *Pool) delete(b *Block) {
	b.Reset()
	p.unlink(b)
	p.arena[b.id] = nil
	p.free = append(p.free, b.id)
	p.live--
	p.stats.Freed++
	p.rc.ReleaseMemory(p.memPer)
}

func (p *Pool) unlink(b *Block) {
	if b.prev != NoBlock {
		p.arena[b.prev].next = b.next
	} else if p.first == b.id {
		p.first = b.next
	}
	if b.next != NoBlock {
		p.arena[b.next].prev = b.prev
	} else if p.last == b.id {
		p.last = b.prev
	}
	b.prev, b.next = NoBlock, NoBlock
}

func (p *Pool) pushFront(b *Block) {
	b.prev = NoBlock
	b.next = p.first
	if p.first != NoBlock {
		p.arena[p.first].prev = b.id
	}
	p.first = b.id
	if p.last == NoBlock {
		p.last = b.id
	}
}

func (p *Pool) pushBack(b *Block) {
	b.next = NoBlock
	b.prev = p.last
	if p.last != NoBlock {
		p.arena[p.last].next = b.id
	}
	p.last = b.id
	if p.first == NoBlock {
		p.first = b.id
	}
}

func (p *Pool) insertAfter(a, b *Block) {
	b.prev = a.id
	b.next = a.next
	if a.next != NoBlock {
		p.arena[a.next].prev = b.id
	} else {
		p.last = b.id
	}
	a.next = b.id
}
