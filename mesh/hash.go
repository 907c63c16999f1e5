package mesh

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/starcache/internal/htm"
)

// The methods in this file build a deduplicated trixel set for shapes made of
// many pieces (constellation lines, milky way outlines). They do not touch the
// named buffers or the draw generation.

// IndexPolyline returns the trixels crossed by the segments of an open
// polyline. Segment i joins points[i-1] and points[i]; it is left out when
// skip has bit i set. skip may be nil.
func (m *Mesh) IndexPolyline(points []Point, skip *bitset.BitSet) *roaring.Bitmap {
	out := roaring.New()
	for i := 1; i < len(points); i++ {
		if skip != nil && skip.Test(uint(i)) {
			continue
		}
		n := m.collect(out, htm.NewArc(points[i-1].vector(), points[i].vector()))
		if n > m.errLimit {
			m.logger.Warn("line segment spans too many trixels",
				"trixels", n, "from", points[i-1], "to", points[i])
		}
	}
	return out
}

// IndexPolygon returns the trixels covering a polygon. The polygon is cut into
// quadrilaterals (and a final triangle) fanned out from its first vertex, so
// it may be concave as long as every fan piece is convex.
func (m *Mesh) IndexPolygon(points []Point) *roaring.Bitmap {
	out := roaring.New()
	if len(points) < 3 {
		return out
	}

	start := points[0].vector()
	end := len(points) - 2
	for p := 1; p <= end; p += 2 {
		piece := []htm.Vector{start, points[p].vector(), points[p+1].vector()}
		if p != end {
			piece = append(piece, points[p+2].vector())
		}
		var n int
		if cv, ok := htm.NewConvex(piece...); ok {
			n = m.collect(out, cv)
		} else {
			for i := range piece {
				n += m.collect(out, htm.NewArc(piece[i], piece[(i+1)%len(piece)]))
			}
		}
		if n > m.errLimit {
			m.logger.Warn("polygon piece spans too many trixels",
				"trixels", n, "first", points[0], "vertex", p)
		}
	}
	return out
}

// SkyRegion returns the trixels covering the RA/Dec rectangle with opposite
// corners p1 and p2.
func (m *Mesh) SkyRegion(p1, p2 Point) *roaring.Bitmap {
	return m.IndexPolygon([]Point{
		p1,
		p2,
		{RA: p1.RA, Dec: p2.Dec},
		{RA: p2.RA, Dec: p1.Dec},
	})
}

// collect adds the trixels of s to out and returns how many s produced.
func (m *Mesh) collect(out *roaring.Bitmap, s htm.Shape) int {
	n := 0
	m.idx.Intersect(s, func(lo, hi uint32) {
		out.AddRange(uint64(lo), uint64(hi)+1)
		n += int(hi-lo) + 1
	})
	return n
}
