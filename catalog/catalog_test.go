package catalog

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/hupe1980/starcache/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func buildCatalog(t *testing.T, level int, stars map[uint32][]Star, opts ...BuilderOption) []byte {
	t.Helper()
	b, err := NewBuilder(level, opts...)
	require.NoError(t, err)
	for id, ss := range stars {
		for _, s := range ss {
			require.NoError(t, b.Add(id, s))
		}
	}
	var buf bytes.Buffer
	_, err = b.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func openBytes(t *testing.T, data []byte, opts ...ReaderOption) (*BlobReader, error) {
	t.Helper()
	store := blobstore.NewMemoryStore()
	store.Put("cat.dat", data)
	blob, err := store.Open(t.Context(), "cat.dat")
	require.NoError(t, err)
	return Open(t.Context(), blob, opts...)
}

func drain(t *testing.T, c *Cursor) []Star {
	t.Helper()
	var out []Star
	for {
		s, err := c.Next(t.Context())
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, s)
	}
}

var sample = map[uint32][]Star{
	3: {
		{RA: 123.456, Dec: -45.5, Mag: 6.5, BV: 0.65, HD: 1234, SpType: [2]byte{'G', '2'}, PMRA: 12.3, PMDec: -4.5, Parallax: 7.7},
		{RA: 124.0, Dec: -44.0, Mag: 1.25, BV: -0.1, HD: 99},
		{RA: 125.5, Dec: -46.25, Mag: 3.0, Flags: 2},
	},
	7: {
		{RA: 200.0, Dec: 10.0, Mag: 8.75},
	},
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		opts    []BuilderOption
		order   binary.ByteOrder
		swapped bool
	}{
		{"LittleEndian", nil, binary.LittleEndian, false},
		{"BigEndian", []BuilderOption{WithBigEndian()}, binary.BigEndian, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]BuilderOption{WithPreamble("test catalog")}, tt.opts...)
			r, err := openBytes(t, buildCatalog(t, 1, sample, opts...))
			require.NoError(t, err)
			defer r.Close()

			h := r.Header()
			assert.Equal(t, "test catalog", h.Preamble)
			assert.Equal(t, uint8(Version), h.Version)
			assert.Equal(t, uint8(ShallowRecordSize), h.RecordSize)
			assert.Equal(t, uint8(1), h.Level)
			assert.Equal(t, uint32(32), h.TrixelCount)
			assert.InDelta(t, 8.75, h.FaintMag, 1e-9)
			assert.Equal(t, tt.order, r.Order())
			assert.Equal(t, tt.swapped, h.Swapped)

			n, err := r.RecordCount(3)
			require.NoError(t, err)
			assert.Equal(t, uint32(3), n)

			off, err := r.Offset(3)
			require.NoError(t, err)
			assert.Equal(t, h.BodyOffset(), off, "trixels 0..2 are empty")

			stars := drain(t, NewCursor(r, off, n, 0))
			require.Len(t, stars, 3)

			// Sorted bright to faint.
			assert.InDelta(t, 1.25, stars[0].Mag, 1e-3)
			assert.InDelta(t, 3.0, stars[1].Mag, 1e-3)
			assert.InDelta(t, 6.5, stars[2].Mag, 1e-3)

			s := stars[2]
			assert.InDelta(t, 123.456, s.RA, 1e-4)
			assert.InDelta(t, -45.5, s.Dec, 1e-5)
			assert.InDelta(t, 0.65, s.BV, 1e-3)
			assert.InDelta(t, 12.3, s.PMRA, 1e-9)
			assert.InDelta(t, -4.5, s.PMDec, 1e-9)
			assert.InDelta(t, 7.7, s.Parallax, 1e-9)
			assert.Equal(t, uint32(1234), s.HD)
			assert.Equal(t, [2]byte{'G', '2'}, s.SpType)
			assert.Equal(t, uint8(2), stars[1].Flags)

			off7, err := r.Offset(7)
			require.NoError(t, err)
			assert.Equal(t, off+3*ShallowRecordSize, off7)
		})
	}
}

func TestRoundTrip_DeepCodec(t *testing.T) {
	r, err := openBytes(t, buildCatalog(t, 0, map[uint32][]Star{
		5: {{RA: 10, Dec: 20, Mag: 14.5, BV: 0.8, PMRA: -3.2, PMDec: 1.1}},
	}, WithCodec(DeepCodec{})))
	require.NoError(t, err)

	assert.Equal(t, DeepRecordSize, r.RecordSize())
	off, err := r.Offset(5)
	require.NoError(t, err)
	stars := drain(t, NewCursor(r, off, 1, 0))
	require.Len(t, stars, 1)
	assert.InDelta(t, 14.5, stars[0].Mag, 1e-3)
	assert.InDelta(t, 0.8, stars[0].BV, 1e-3)
	assert.InDelta(t, -3.2, stars[0].PMRA, 1e-9)
	assert.InDelta(t, 10, stars[0].RA, 1e-4)
}

func TestDeepCodec_MissingV(t *testing.T) {
	raw := make([]byte, DeepRecordSize)
	binary.LittleEndian.PutUint16(raw[12:], 12345)
	binary.LittleEndian.PutUint16(raw[14:], noMag)

	s := DeepCodec{}.Decode(binary.LittleEndian, raw)
	assert.InDelta(t, 12.345, s.Mag, 1e-4)
	assert.Zero(t, s.BV)
}

func TestCodecFor(t *testing.T) {
	c, err := CodecFor(32)
	require.NoError(t, err)
	assert.IsType(t, ShallowCodec{}, c)

	c, err = CodecFor(16)
	require.NoError(t, err)
	assert.IsType(t, DeepCodec{}, c)

	_, err = CodecFor(20)
	assert.ErrorIs(t, err, ErrUnsupportedRecordSize)
}

func TestEmptyCatalog(t *testing.T) {
	r, err := openBytes(t, buildCatalog(t, 0, nil))
	require.NoError(t, err)
	assert.Zero(t, r.Header().FaintMag)
	for id := range uint32(8) {
		n, err := r.RecordCount(id)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
}

func TestOpen_Errors(t *testing.T) {
	good := buildCatalog(t, 1, sample)
	entry := func(i int) int { return headerSize + i*entrySize }

	tests := []struct {
		name    string
		corrupt func([]byte) []byte
		want    error
	}{
		{"BadMagic", func(b []byte) []byte { b[124], b[125] = 0, 0; return b }, ErrBadMagic},
		{"TruncatedHeader", func(b []byte) []byte { return b[:50] }, ErrTruncated},
		{"TruncatedDirectory", func(b []byte) []byte { return b[:headerSize+20] }, ErrTruncated},
		{"Version", func(b []byte) []byte { b[126] = 2; return b }, ErrUnsupportedVersion},
		{"RecordSize", func(b []byte) []byte { b[127] = 20; return b }, ErrUnsupportedRecordSize},
		{"TrixelCount", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[133:], 31); return b }, ErrIDMismatch},
		{"IDMismatch", func(b []byte) []byte { binary.LittleEndian.PutUint32(b[entry(4):], 9); return b }, ErrIDMismatch},
		{"OffsetBeforeBody", func(b []byte) []byte { binary.LittleEndian.PutUint64(b[entry(3)+4:], 0); return b }, ErrBadOffset},
		{"OffsetPastEnd", func(b []byte) []byte { binary.LittleEndian.PutUint64(b[entry(7)+4:], uint64(len(b))); return b }, ErrBadOffset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.corrupt(bytes.Clone(good))
			_, err := openBytes(t, data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpen_FormatErrorCarriesTrixel(t *testing.T) {
	data := buildCatalog(t, 1, sample)
	binary.LittleEndian.PutUint32(data[headerSize+5*entrySize:], 77)

	_, err := openBytes(t, data)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, uint32(5), fe.Trixel)
	assert.Equal(t, int64(headerSize+5*entrySize), fe.Offset)
}

func TestReader_UnknownTrixel(t *testing.T) {
	r, err := openBytes(t, buildCatalog(t, 0, nil))
	require.NoError(t, err)

	_, err = r.Offset(8)
	assert.ErrorIs(t, err, ErrUnknownTrixel)
	_, err = r.RecordCount(1 << 20)
	assert.ErrorIs(t, err, ErrUnknownTrixel)

	b, err := NewBuilder(0)
	require.NoError(t, err)
	assert.ErrorIs(t, b.Add(8, Star{}), ErrUnknownTrixel)
}

type countingReader struct {
	Reader
	reads []int
}

func (c *countingReader) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	c.reads = append(c.reads, len(p))
	return c.Reader.ReadAt(ctx, p, off)
}

func TestCursor_Batching(t *testing.T) {
	var stars []Star
	for i := range 10 {
		stars = append(stars, Star{Mag: float32(i)})
	}
	r, err := openBytes(t, buildCatalog(t, 0, map[uint32][]Star{2: stars}))
	require.NoError(t, err)

	off, err := r.Offset(2)
	require.NoError(t, err)

	cr := &countingReader{Reader: r}
	c := NewCursor(cr, off, 10, 4)
	assert.Equal(t, off, c.Offset())

	first, err := c.Next(t.Context())
	require.NoError(t, err)
	assert.Zero(t, first.Mag)
	assert.Equal(t, off+ShallowRecordSize, c.Offset())
	assert.Equal(t, uint32(9), c.Remaining())

	rest := drain(t, c)
	assert.Len(t, rest, 9)
	assert.Equal(t, []int{4 * 32, 4 * 32, 2 * 32}, cr.reads)
	assert.Equal(t, off+10*ShallowRecordSize, c.Offset())

	_, err = c.Next(t.Context())
	assert.ErrorIs(t, err, io.EOF)
}

type shortReader struct {
	Reader
}

func (shortReader) ReadAt(context.Context, []byte, int64) (int, error) { return 0, io.EOF }

func TestCursor_Truncated(t *testing.T) {
	r, err := openBytes(t, buildCatalog(t, 0, sample0()))
	require.NoError(t, err)

	c := NewCursor(shortReader{Reader: r}, r.Header().BodyOffset(), 1, 0)
	_, err = c.Next(t.Context())
	assert.ErrorIs(t, err, ErrTruncated)
}

func sample0() map[uint32][]Star {
	return map[uint32][]Star{0: {{Mag: 1}}}
}

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) AcquireIO(ctx context.Context, n int) error {
	return m.Called(ctx, n).Error(0)
}

func TestReader_IOLimiter(t *testing.T) {
	lim := new(mockLimiter)
	lim.On("AcquireIO", mock.Anything, 3*ShallowRecordSize).Return(nil).Once()

	r, err := openBytes(t, buildCatalog(t, 1, sample), WithIOLimiter(lim))
	require.NoError(t, err)

	off, err := r.Offset(3)
	require.NoError(t, err)
	assert.Len(t, drain(t, NewCursor(r, off, 3, 0)), 3)
	lim.AssertExpectations(t)

	denied := errors.New("rate limited")
	lim.On("AcquireIO", mock.Anything, mock.Anything).Return(denied)
	_, err = NewCursor(r, off, 3, 0).Next(t.Context())
	assert.ErrorIs(t, err, denied)
	assert.ErrorIs(t, err, ErrThrottled)
}
