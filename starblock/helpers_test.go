package starblock

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/starcache/blobstore"
	"github.com/hupe1980/starcache/catalog"
	"github.com/stretchr/testify/require"
)

type counter struct{ id uint64 }

func (g *counter) DrawID() uint64 { return g.id }

// newCatalog builds a level-0 catalog where trixel t holds stars with the
// given magnitudes.
func newCatalog(t *testing.T, mags map[uint32][]float32) *catalog.BlobReader {
	t.Helper()
	b, err := catalog.NewBuilder(0)
	require.NoError(t, err)
	for id, ms := range mags {
		for i, m := range ms {
			require.NoError(t, b.Add(id, catalog.Star{RA: float64(i), Mag: m}))
		}
	}
	var buf bytes.Buffer
	_, err = b.WriteTo(&buf)
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	store.Put("stars.dat", buf.Bytes())
	blob, err := store.Open(t.Context(), "stars.dat")
	require.NoError(t, err)
	r, err := catalog.Open(t.Context(), blob)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// countingReader counts record reads.
type countingReader struct {
	catalog.Reader
	reads int
	err   error
}

func (c *countingReader) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	c.reads++
	if c.err != nil {
		return 0, c.err
	}
	return c.Reader.ReadAt(ctx, p, off)
}

func mags(c *Chain) []float32 {
	var out []float32
	for s := range c.All(99) {
		out = append(out, s.Mag)
	}
	return out
}

// assertMonotonic checks that no block is brighter than its predecessor.
func assertMonotonic(t *testing.T, c *Chain) {
	t.Helper()
	for i := 1; i < c.BlockCount(); i++ {
		require.LessOrEqual(t, c.Block(i-1).FaintMag(), c.Block(i).BrightMag(), "block %d of trixel %d", i, c.Trixel())
	}
}
