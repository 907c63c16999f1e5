package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultBatch is the number of records a Cursor fetches per read.
const DefaultBatch = 64

// Cursor streams the records of one trixel in catalog order.
// It never reads past the records it was created for.
type Cursor struct {
	r         Reader
	size      int
	next      int64 // offset of the record Next returns
	remaining uint32
	buf       []byte
	pos       int
	end       int
}

// NewCursor returns a cursor over count records starting at off.
// batch <= 0 selects DefaultBatch.
func NewCursor(r Reader, off int64, count uint32, batch int) *Cursor {
	if batch <= 0 {
		batch = DefaultBatch
	}
	size := r.RecordSize()
	return &Cursor{
		r:         r,
		size:      size,
		next:      off,
		remaining: count,
		buf:       make([]byte, batch*size),
	}
}

// Offset returns the byte offset of the next record.
func (c *Cursor) Offset() int64 { return c.next }

// Remaining returns how many records are left.
func (c *Cursor) Remaining() uint32 { return c.remaining }

// Next decodes the next record. It returns io.EOF once all records are consumed.
func (c *Cursor) Next(ctx context.Context) (Star, error) {
	if c.remaining == 0 {
		return Star{}, io.EOF
	}
	if c.pos == c.end {
		if err := c.fill(ctx); err != nil {
			return Star{}, err
		}
	}
	s := c.r.Decode(c.buf[c.pos : c.pos+c.size])
	c.pos += c.size
	c.next += int64(c.size)
	c.remaining--
	return s, nil
}

func (c *Cursor) fill(ctx context.Context) error {
	want := min(len(c.buf)/c.size, int(c.remaining)) * c.size
	n, err := c.r.ReadAt(ctx, c.buf[:want], c.next)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read records at %d: %w", c.next, err)
	}
	if n < c.size {
		return &FormatError{Offset: c.next, cause: ErrTruncated}
	}
	c.pos = 0
	c.end = n - n%c.size
	return nil
}
