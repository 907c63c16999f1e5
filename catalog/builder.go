package catalog

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

// DefaultMagScale is the magnitude scale Builder writes.
const DefaultMagScale = 100

type builderOptions struct {
	codec    Codec
	order    byteOrder
	preamble string
}

// BuilderOption configures a Builder.
type BuilderOption func(*builderOptions)

// WithCodec selects the record codec. The default is ShallowCodec.
func WithCodec(c Codec) BuilderOption {
	return func(o *builderOptions) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithBigEndian writes the file in big-endian byte order.
func WithBigEndian() BuilderOption {
	return func(o *builderOptions) {
		o.order = binary.BigEndian
	}
}

// WithPreamble sets the text preamble, truncated to 124 bytes.
func WithPreamble(s string) BuilderOption {
	return func(o *builderOptions) {
		o.preamble = s
	}
}

// Builder assembles a catalog in memory and writes it out in one pass.
type Builder struct {
	level   uint8
	opts    builderOptions
	regions [][]Star
}

// NewBuilder returns a builder for a catalog indexed at level.
func NewBuilder(level int, optFns ...BuilderOption) (*Builder, error) {
	if level < 0 || level > 14 {
		return nil, fmt.Errorf("catalog: level %d out of range", level)
	}
	opts := builderOptions{
		codec: ShallowCodec{},
		order: binary.LittleEndian,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Builder{
		level:   uint8(level),
		opts:    opts,
		regions: make([][]Star, trixelCount(uint8(level))),
	}, nil
}

// Add queues s under trixel t.
func (b *Builder) Add(t uint32, s Star) error {
	if int(t) >= len(b.regions) {
		return fmt.Errorf("%w: %d", ErrUnknownTrixel, t)
	}
	b.regions[t] = append(b.regions[t], s)
	return nil
}

// Len returns the number of queued stars.
func (b *Builder) Len() int {
	n := 0
	for _, r := range b.regions {
		n += len(r)
	}
	return n
}

// WriteTo writes the catalog. Stars are sorted by magnitude within each
// trixel; stars of equal magnitude keep their insertion order.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	faint := math.Inf(-1)
	for _, r := range b.regions {
		slices.SortStableFunc(r, func(x, y Star) int { return cmp.Compare(x.Mag, y.Mag) })
		if len(r) > 0 {
			faint = max(faint, float64(r[len(r)-1].Mag))
		}
	}
	if math.IsInf(faint, -1) {
		faint = 0
	}

	h := Header{
		Preamble:    b.opts.preamble,
		Version:     Version,
		RecordSize:  uint8(b.opts.codec.Size()),
		Level:       b.level,
		FaintMag:    faint,
		MagScale:    DefaultMagScale,
		TrixelCount: trixelCount(b.level),
	}

	out := appendHeader(make([]byte, 0, h.BodyOffset()), b.opts.order, h)
	off := uint64(h.BodyOffset())
	for i, r := range b.regions {
		out = appendEntry(out, b.opts.order, Entry{ID: uint32(i), Offset: off, Count: uint32(len(r))})
		off += uint64(len(r) * b.opts.codec.Size())
	}

	rec := make([]byte, b.opts.codec.Size())
	for _, r := range b.regions {
		for _, s := range r {
			b.opts.codec.Encode(b.opts.order, rec, s)
			out = append(out, rec...)
		}
	}

	n, err := w.Write(out)
	return int64(n), err
}
