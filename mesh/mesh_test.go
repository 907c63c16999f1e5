package mesh

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/bits-and-blooms/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMesh(t *testing.T, level int, opts ...Option) *Mesh {
	t.Helper()
	m, err := New(level, opts...)
	require.NoError(t, err)
	return m
}

func drain(m *Mesh, buf Buffer) []Trixel {
	var out []Trixel
	it := NewIterator(m, buf)
	for it.HasNext() {
		out = append(out, it.Next())
	}
	return out
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(-1)
	assert.Error(t, err)
	_, err = New(20)
	assert.Error(t, err)
}

func TestIndexAndVertices(t *testing.T) {
	m := newMesh(t, 3)
	assert.Equal(t, 512, m.Size())
	assert.Equal(t, 3, m.Level())

	p := Point{RA: 45, Dec: -45}
	tr := m.Index(p)
	assert.Equal(t, "S0", m.Name(tr)[:2])

	vs := m.Vertices(tr)
	for _, v := range vs {
		assert.Less(t, p.AngleTo(v), 20.0)
	}
}

func TestPointFromHours(t *testing.T) {
	p := PointFromHours(6, 10)
	assert.InDelta(t, 90, p.RA, 1e-12)
	assert.InDelta(t, 10, p.Dec, 1e-12)
}

func TestApertureAppliesMargin(t *testing.T) {
	m := newMesh(t, 4)
	center := Point{RA: 120, Dec: 30}

	require.True(t, m.Aperture(center, 2, DrawBuf))
	m.IndexCircle(center, 2+ApertureMargin, ObjNearestBuf)

	assert.Equal(t, drain(m, ObjNearestBuf), drain(m, DrawBuf))
	assert.Equal(t, uint64(1), m.DrawID())
}

func TestApertureUsesPrecessor(t *testing.T) {
	shift := PrecessorFunc(func(p Point) Point { return Point{RA: p.RA + 90, Dec: p.Dec} })
	m := newMesh(t, 4, WithPrecessor(shift))

	require.True(t, m.Aperture(Point{RA: 10, Dec: 5}, 3, DrawBuf))
	m.IndexCircle(Point{RA: 100, Dec: 5}, 3+ApertureMargin, NoPrecessBuf)
	assert.Equal(t, drain(m, NoPrecessBuf), drain(m, DrawBuf))

	// Plain indexing ignores the precessor.
	m.IndexCircle(Point{RA: 10, Dec: 5}, 0, InConstellBuf)
	assert.Equal(t, []Trixel{m.Index(Point{RA: 10, Dec: 5})}, drain(m, InConstellBuf))
}

func TestApertureReentrancyIgnored(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	var m *Mesh
	var inner bool
	reenter := PrecessorFunc(func(p Point) Point {
		inner = m.Aperture(p, 5, ObjNearestBuf)
		return p
	})
	m = newMesh(t, 2, WithPrecessor(reenter), WithLogger(logger))

	assert.True(t, m.Aperture(Point{RA: 0, Dec: 0}, 5, DrawBuf))
	assert.False(t, inner)
	assert.Equal(t, 0, m.Len(ObjNearestBuf))
	assert.Equal(t, uint64(1), m.DrawID())
	assert.Contains(t, logs.String(), "reentrant aperture")

	// Not busy any more.
	assert.True(t, m.Aperture(Point{RA: 0, Dec: 0}, 5, DrawBuf))
	assert.Equal(t, uint64(2), m.DrawID())
}

func TestBuffersAreIndependent(t *testing.T) {
	m := newMesh(t, 3)

	require.True(t, m.Aperture(Point{RA: 45, Dec: 45}, 5, DrawBuf))
	before := drain(m, DrawBuf)
	require.NotEmpty(t, before)

	m.IndexCircle(Point{RA: 225, Dec: -45}, 5, ObjNearestBuf)
	assert.Equal(t, before, drain(m, DrawBuf))
	assert.NotEqual(t, before, drain(m, ObjNearestBuf))

	// A new query into a buffer replaces its contents.
	m.IndexCircle(Point{RA: 225, Dec: -45}, 5, DrawBuf)
	assert.Equal(t, drain(m, ObjNearestBuf), drain(m, DrawBuf))
}

func TestIteratorReset(t *testing.T) {
	m := newMesh(t, 3)
	m.IndexCircle(Point{RA: 300, Dec: 60}, 10, DrawBuf)

	it := NewIterator(m, DrawBuf)
	n := it.Size()
	require.Positive(t, n)

	first := it.Next()
	for it.HasNext() {
		it.Next()
	}
	assert.False(t, it.HasNext())
	assert.Equal(t, n, it.Size())

	it.Reset()
	require.True(t, it.HasNext())
	assert.Equal(t, first, it.Next())
}

func TestInvalidBuffer(t *testing.T) {
	m := newMesh(t, 1)
	assert.False(t, m.Aperture(Point{}, 1, NumBuffers))
	assert.Equal(t, uint64(0), m.DrawID())
	assert.Equal(t, 0, NewIterator(m, Buffer(-1)).Size())
	assert.Equal(t, "obj-nearest", ObjNearestBuf.String())
}

func TestDrawIDAndInDraw(t *testing.T) {
	m := newMesh(t, 1)
	assert.Equal(t, uint64(1), m.IncDrawID())
	assert.Equal(t, uint64(1), m.DrawID())

	assert.False(t, m.InDraw())
	m.SetInDraw(true)
	assert.True(t, m.InDraw())
}

func TestIndexLineAndShapes(t *testing.T) {
	m := newMesh(t, 4)
	a, b := Point{RA: 10, Dec: 10}, Point{RA: 40, Dec: 20}

	m.IndexLine(a, b, DrawBuf)
	line := drain(m, DrawBuf)
	assert.Contains(t, line, m.Index(a))
	assert.Contains(t, line, m.Index(b))

	m.IndexTriangle(a, b, Point{RA: 20, Dec: 40}, DrawBuf)
	tri := drain(m, DrawBuf)
	assert.Contains(t, tri, m.Index(Point{RA: 23, Dec: 23}))
	assert.GreaterOrEqual(t, len(tri), len(line))

	m.IndexQuad(Point{RA: 10, Dec: 10}, Point{RA: 30, Dec: 10}, Point{RA: 30, Dec: 30}, Point{RA: 10, Dec: 30}, DrawBuf)
	assert.Contains(t, drain(m, DrawBuf), m.Index(Point{RA: 20, Dec: 20}))

	// Collinear corners fall back to the outline.
	m.IndexTriangle(Point{RA: 0, Dec: 0}, Point{RA: 10, Dec: 0}, Point{RA: 20, Dec: 0}, DrawBuf)
	flat := drain(m, DrawBuf)
	assert.Contains(t, flat, m.Index(Point{RA: 5, Dec: 0.0001}))
}

func TestIndexPolygon(t *testing.T) {
	m := newMesh(t, 4)

	poly := []Point{
		{RA: 100, Dec: -10},
		{RA: 110, Dec: -12},
		{RA: 120, Dec: -10},
		{RA: 122, Dec: 0},
		{RA: 120, Dec: 10},
		{RA: 100, Dec: 10},
	}
	bm := m.IndexPolygon(poly)
	for _, p := range []Point{{RA: 105, Dec: 0}, {RA: 115, Dec: -5}, {RA: 118, Dec: 8}} {
		assert.True(t, bm.Contains(uint32(m.Index(p))), "missing %v", p)
	}
	assert.False(t, bm.Contains(uint32(m.Index(Point{RA: 280, Dec: 0}))))

	assert.True(t, m.IndexPolygon(poly[:2]).IsEmpty())
}

func TestSkyRegion(t *testing.T) {
	m := newMesh(t, 4)
	bm := m.SkyRegion(Point{RA: 200, Dec: 20}, Point{RA: 215, Dec: 35})
	assert.True(t, bm.Contains(uint32(m.Index(Point{RA: 207, Dec: 27}))))
	assert.False(t, bm.Contains(uint32(m.Index(Point{RA: 20, Dec: -27}))))
}

func TestIndexPolylineSkip(t *testing.T) {
	m := newMesh(t, 4)
	pts := []Point{{RA: 10, Dec: 5}, {RA: 40, Dec: 5}, {RA: 70, Dec: 5}}

	all := m.IndexPolyline(pts, nil)
	assert.True(t, all.Contains(uint32(m.Index(Point{RA: 60, Dec: 5}))))

	skip := bitset.New(4).Set(2)
	part := m.IndexPolyline(pts, skip)
	assert.Less(t, part.GetCardinality(), all.GetCardinality())
	assert.True(t, part.Contains(uint32(m.Index(pts[0]))))
	assert.False(t, part.Contains(uint32(m.Index(Point{RA: 60, Dec: 5}))))
}

func TestIndexPolygonWarnsOnHugePiece(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	m := newMesh(t, 1, WithLogger(logger))

	bm := m.IndexPolygon([]Point{{RA: 0, Dec: -60}, {RA: 100, Dec: -60}, {RA: 100, Dec: 60}, {RA: 0, Dec: 60}})
	assert.Greater(t, int(bm.GetCardinality()), m.Size()/4)
	assert.Contains(t, logs.String(), "too many trixels")
}
