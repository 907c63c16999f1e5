package htm

import "math"

// Cap is a spherical circle: all points within Radius degrees of Center.
type Cap struct {
	Center Vector
	Radius float64

	cosR    float64
	cosComp float64
}

// NewCap returns the cap around center with the given radius in degrees.
func NewCap(center Vector, radius float64) Cap {
	r := math.Max(radius, 0) * math.Pi / 180
	return Cap{
		Center:  center.Normalize(),
		Radius:  radius,
		cosR:    math.Cos(r),
		cosComp: math.Cos(math.Pi - r),
	}
}

// Contains reports whether v lies in the cap.
func (c Cap) Contains(v Vector) bool {
	return c.Center.Dot(v) >= c.cosR-Epsilon
}

// Classify implements Shape.
func (c Cap) Classify(t Triangle) Class {
	if c.Radius >= 180 {
		return Inside
	}
	in := 0
	for _, v := range t {
		if c.Contains(v) {
			in++
		}
	}
	if in == 3 {
		if c.Radius < 90 {
			return Inside
		}
		// A cap wider than a hemisphere is the complement of a small open cap
		// around the antipode; the triangle is covered unless it touches that.
		anti := c.Center.Neg()
		if t.Contains(anti) {
			return Partial
		}
		for _, e := range t.edges() {
			if arcMaxCos(e[0], e[1], anti) > c.cosComp+Epsilon {
				return Partial
			}
		}
		return Inside
	}
	if in > 0 || t.Contains(c.Center) {
		return Partial
	}
	for _, e := range t.edges() {
		if arcMaxCos(e[0], e[1], c.Center) >= c.cosR-Epsilon {
			return Partial
		}
	}
	return Outside
}

// Arc is the minor great-circle arc between two points.
type Arc struct {
	A, B Vector
}

// NewArc returns the arc from a to b.
func NewArc(a, b Vector) Arc {
	return Arc{A: a.Normalize(), B: b.Normalize()}
}

// Classify implements Shape. An arc has no area, so triangles are at most
// Partial.
func (a Arc) Classify(t Triangle) Class {
	if t.Contains(a.A) || t.Contains(a.B) {
		return Partial
	}
	for _, e := range t.edges() {
		if arcsIntersect(a.A, a.B, e[0], e[1]) {
			return Partial
		}
	}
	return Outside
}

// Convex is a convex spherical polygon described by its corners and the
// inward normals of its edges.
type Convex struct {
	corners []Vector
	normals []Vector
	edges   [][2]Vector
}

// NewConvex builds the convex hull constraints for corners, which may be given
// in any order. It reports false when the corners do not span an area (fewer
// than three distinct, non-collinear points).
//
// Every pair of corners is tested: the great circle through ci and cj bounds
// the polygon when all other corners lie on one side of it.
func NewConvex(corners ...Vector) (Convex, bool) {
	cs := make([]Vector, 0, len(corners))
	for _, c := range corners {
		c = c.Normalize()
		dup := false
		for _, o := range cs {
			if o.Sub(c).Length() < 1e-9 {
				dup = true
				break
			}
		}
		if !dup {
			cs = append(cs, c)
		}
	}
	cv := Convex{corners: cs}
	for i := 0; i < len(cs); i++ {
		for j := i + 1; j < len(cs); j++ {
			d := cs[i].Cross(cs[j])
			if d.Length() < Epsilon {
				continue
			}
			d = d.Normalize()
			pos, neg := 0, 0
			for k := range cs {
				if k == i || k == j {
					continue
				}
				s := d.Dot(cs[k])
				switch {
				case s > Epsilon:
					pos++
				case s < -Epsilon:
					neg++
				}
			}
			if pos > 0 && neg > 0 {
				continue
			}
			if pos == 0 && neg == 0 {
				// Collinear with every other corner.
				continue
			}
			if neg > 0 {
				d = d.Neg()
			}
			cv.normals = append(cv.normals, d)
			cv.edges = append(cv.edges, [2]Vector{cs[i], cs[j]})
		}
	}
	if len(cv.normals) < 3 {
		return Convex{}, false
	}
	return cv, true
}

// Contains reports whether v lies inside the polygon or on its boundary.
func (cv Convex) Contains(v Vector) bool {
	for _, n := range cv.normals {
		if n.Dot(v) < -Epsilon {
			return false
		}
	}
	return true
}

// Classify implements Shape.
func (cv Convex) Classify(t Triangle) Class {
	in := 0
	for _, v := range t {
		if cv.Contains(v) {
			in++
		}
	}
	switch {
	case in == 3:
		return Inside
	case in > 0:
		return Partial
	}
	for _, c := range cv.corners {
		if t.Contains(c) {
			return Partial
		}
	}
	for _, e := range cv.edges {
		for _, te := range t.edges() {
			if arcsIntersect(e[0], e[1], te[0], te[1]) {
				return Partial
			}
		}
	}
	return Outside
}
