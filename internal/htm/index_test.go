package htm

import (
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPoint(r *rand.Rand) Vector {
	ra := r.Float64() * 360
	dec := math.Asin(2*r.Float64()-1) * 180 / math.Pi
	return FromRADec(ra, dec)
}

func TestNew(t *testing.T) {
	x, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, x.Level())
	assert.Equal(t, uint32(8*64), x.Size())

	_, err = New(-1)
	assert.Error(t, err)
	_, err = New(MaxLevel + 1)
	assert.Error(t, err)
}

func TestLookupRoots(t *testing.T) {
	x, err := New(0)
	require.NoError(t, err)

	assert.Equal(t, uint32(0), x.Lookup(FromRADec(45, -45)))
	assert.Equal(t, uint32(1), x.Lookup(FromRADec(135, -45)))
	assert.Equal(t, uint32(2), x.Lookup(FromRADec(225, -45)))
	assert.Equal(t, uint32(3), x.Lookup(FromRADec(315, -45)))
	assert.Equal(t, uint32(4), x.Lookup(FromRADec(315, 45)))
	assert.Equal(t, uint32(7), x.Lookup(FromRADec(45, 45)))
	assert.Equal(t, "N3", x.Name(7))
}

func TestLookupContainsPoint(t *testing.T) {
	x, err := New(4)
	require.NoError(t, err)
	r := rand.New(rand.NewPCG(1, 2))

	for range 2000 {
		p := randomPoint(r)
		id := x.Lookup(p)
		require.Less(t, id, x.Size())
		assert.True(t, x.Triangle(id).Contains(p), "trixel %s does not contain %v", x.Name(id), p)
	}
}

func TestNameEncodesPath(t *testing.T) {
	x, err := New(2)
	require.NoError(t, err)
	// root N3 (7), path 1 then 2.
	id := uint32(7<<4 | 1<<2 | 2)
	assert.Equal(t, "N312", x.Name(id))
}

func TestChildrenCoverParent(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for _, root := range rootTriangles {
		kids := root.Children()
		for range 200 {
			p := randomPoint(r)
			if !root.Contains(p) {
				continue
			}
			found := false
			for _, k := range kids {
				if k.Contains(p) {
					found = true
					break
				}
			}
			assert.True(t, found)
		}
	}
}

// samples returns points spread over t: its corners, edge midpoints and centroid.
func samples(t Triangle) []Vector {
	return []Vector{
		t[0], t[1], t[2],
		t[0].Midpoint(t[1]), t[1].Midpoint(t[2]), t[2].Midpoint(t[0]),
		t.Center(),
	}
}

func TestCircleCompleteness(t *testing.T) {
	x, err := New(3)
	require.NoError(t, err)
	r := rand.New(rand.NewPCG(5, 6))

	for range 40 {
		center := randomPoint(r)
		radius := 1 + r.Float64()*40
		c := NewCap(center, radius)
		got := x.Collect(c)
		require.True(t, slices.IsSorted(got))

		for id := range x.Size() {
			_, hit := slices.BinarySearch(got, id)
			tri := x.Triangle(id)
			for _, s := range samples(tri) {
				if c.Contains(s) {
					assert.True(t, hit, "trixel %s has a point inside the circle", x.Name(id))
					break
				}
			}
			if hit {
				continue
			}
			assert.Greater(t, center.AngleTo(tri.Center()), radius)
		}
		// The trixel containing the centre is always reported.
		_, hit := slices.BinarySearch(got, x.Lookup(center))
		assert.True(t, hit)
	}
}

func TestCircleExcludesFarTrixels(t *testing.T) {
	x, err := New(2)
	require.NoError(t, err)

	c := NewCap(FromRADec(45, -45), 5)
	got := x.Collect(c)
	require.NotEmpty(t, got)
	for _, id := range got {
		// Everything reported lies in root S0.
		assert.Equal(t, uint32(0), id>>4)
	}
}

func TestCircleWholeSphere(t *testing.T) {
	x, err := New(4)
	require.NoError(t, err)
	assert.Len(t, x.Collect(NewCap(FromRADec(10, 10), 180)), int(x.Size()))
	// Wider than a hemisphere: everything but the trixels around the antipode.
	got := x.Collect(NewCap(FromRADec(45, 45), 160))
	assert.Less(t, len(got), int(x.Size()))
	assert.Contains(t, got, x.Lookup(FromRADec(45, 45)))
	assert.NotContains(t, got, x.Lookup(FromRADec(225, -45)))
}

func TestCircleInsideEmitsRanges(t *testing.T) {
	x, err := New(3)
	require.NoError(t, err)

	var ranges int
	x.Intersect(NewCap(FromRADec(45, 45), 80), func(lo, hi uint32) {
		ranges++
		assert.LessOrEqual(t, lo, hi)
	})
	assert.Less(t, ranges, len(x.Collect(NewCap(FromRADec(45, 45), 80))))
}

func TestArcCoversSamples(t *testing.T) {
	x, err := New(4)
	require.NoError(t, err)
	r := rand.New(rand.NewPCG(7, 8))

	for range 20 {
		a := randomPoint(r)
		b := randomPoint(r)
		if a.AngleTo(b) > 120 {
			continue
		}
		got := x.Collect(NewArc(a, b))
		for i := 0; i <= 100; i++ {
			f := float64(i) / 100
			p := a.Scale(1 - f).Add(b.Scale(f)).Normalize()
			assert.Contains(t, got, x.Lookup(p))
		}
	}
}

func TestArcDegenerate(t *testing.T) {
	x, err := New(2)
	require.NoError(t, err)
	p := FromRADec(100, 20)
	assert.Equal(t, []uint32{x.Lookup(p)}, x.Collect(NewArc(p, p)))
}

func TestConvex(t *testing.T) {
	x, err := New(4)
	require.NoError(t, err)

	corners := []Vector{
		FromRADec(10, 10),
		FromRADec(30, 10),
		FromRADec(30, 30),
		FromRADec(10, 30),
	}
	// Order must not matter.
	cv, ok := NewConvex(corners[2], corners[0], corners[3], corners[1])
	require.True(t, ok)
	assert.True(t, cv.Contains(FromRADec(20, 20)))
	assert.False(t, cv.Contains(FromRADec(50, 20)))

	got := x.Collect(cv)
	for ra := 11.0; ra < 30; ra += 1.5 {
		for dec := 11.0; dec < 30; dec += 1.5 {
			assert.Contains(t, got, x.Lookup(FromRADec(ra, dec)))
		}
	}
	assert.NotContains(t, got, x.Lookup(FromRADec(200, -40)))
}

func TestConvexDegenerate(t *testing.T) {
	_, ok := NewConvex(FromRADec(0, 0), FromRADec(10, 0))
	assert.False(t, ok)
	_, ok = NewConvex(FromRADec(0, 0), FromRADec(10, 0), FromRADec(20, 0))
	assert.False(t, ok)
}

func TestAngleAndRADec(t *testing.T) {
	v := FromRADec(123.5, -33.25)
	ra, dec := v.RADec()
	assert.InDelta(t, 123.5, ra, 1e-9)
	assert.InDelta(t, -33.25, dec, 1e-9)
	assert.InDelta(t, 90, FromRADec(0, 0).AngleTo(FromRADec(90, 0)), 1e-9)
	assert.InDelta(t, 180, FromRADec(0, 90).AngleTo(FromRADec(0, -90)), 1e-9)
}
