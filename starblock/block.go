package starblock

import "github.com/hupe1980/starcache/catalog"

// BlockID addresses a block in its pool's arena.
type BlockID int32

// NoBlock is the nil BlockID.
const NoBlock BlockID = -1

// Envelope sentinels of an empty block. Any real magnitude is brighter than
// brightSentinel and fainter than faintSentinel, so the first star sets both.
const (
	brightSentinel float32 = 30
	faintSentinel  float32 = -5
)

// Block is a fixed-capacity run of stars, all from one trixel.
type Block struct {
	id     BlockID
	stars  []catalog.Star
	bright float32
	faint  float32

	// recency list links
	prev, next BlockID

	owner  *Chain
	drawID uint64
}

func newBlock(id BlockID, capacity int) *Block {
	return &Block{
		id:     id,
		stars:  make([]catalog.Star, 0, capacity),
		bright: brightSentinel,
		faint:  faintSentinel,
		prev:   NoBlock,
		next:   NoBlock,
	}
}

// ID returns the block's handle.
func (b *Block) ID() BlockID { return b.id }

// AddStar appends s and widens the magnitude envelope. It returns the slot
// index, or false if the block is full.
func (b *Block) AddStar(s catalog.Star) (int, bool) {
	if len(b.stars) == cap(b.stars) {
		return -1, false
	}
	b.stars = append(b.stars, s)
	b.bright = min(b.bright, s.Mag)
	b.faint = max(b.faint, s.Mag)
	return len(b.stars) - 1, true
}

// Star returns the star in slot i.
func (b *Block) Star(i int) (*catalog.Star, bool) {
	if i < 0 || i >= len(b.stars) {
		return nil, false
	}
	return &b.stars[i], true
}

// Stars returns the filled slots. The slice is invalidated by Reset.
func (b *Block) Stars() []catalog.Star { return b.stars }

// Reset detaches the block from its owner, which forgets it, and empties it.
func (b *Block) Reset() {
	if b.owner != nil {
		b.owner.releaseBlock(b.id)
	}
	b.clear()
}

func (b *Block) clear() {
	b.owner = nil
	b.stars = b.stars[:0]
	b.bright = brightSentinel
	b.faint = faintSentinel
}

func (b *Block) Len() int           { return len(b.stars) }
func (b *Block) Cap() int           { return cap(b.stars) }
func (b *Block) IsFull() bool       { return len(b.stars) == cap(b.stars) }
func (b *Block) BrightMag() float32 { return b.bright }
func (b *Block) FaintMag() float32  { return b.faint }
func (b *Block) DrawID() uint64     { return b.drawID }
func (b *Block) Owner() *Chain      { return b.owner }

// Prev returns the next hotter block in the recency list.
func (b *Block) Prev() BlockID { return b.prev }

// Next returns the next colder block in the recency list.
func (b *Block) Next() BlockID { return b.next }
