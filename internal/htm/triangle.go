package htm

// Triangle is a spherical triangle with counter-clockwise vertices.
type Triangle [3]Vector

// Contains reports whether v lies inside t or on its boundary.
func (t Triangle) Contains(v Vector) bool {
	if t[0].Cross(t[1]).Dot(v) < -Epsilon {
		return false
	}
	if t[1].Cross(t[2]).Dot(v) < -Epsilon {
		return false
	}
	if t[2].Cross(t[0]).Dot(v) < -Epsilon {
		return false
	}
	return true
}

// Children subdivides t. With w0, w1, w2 the midpoints opposite v0, v1, v2:
//
//	0: (v0, w2, w1)  1: (v1, w0, w2)  2: (v2, w1, w0)  3: (w0, w1, w2)
func (t Triangle) Children() [4]Triangle {
	w0 := t[1].Midpoint(t[2])
	w1 := t[0].Midpoint(t[2])
	w2 := t[0].Midpoint(t[1])
	return [4]Triangle{
		{t[0], w2, w1},
		{t[1], w0, w2},
		{t[2], w1, w0},
		{w0, w1, w2},
	}
}

// Center returns the normalized centroid of t.
func (t Triangle) Center() Vector {
	return t[0].Add(t[1]).Add(t[2]).Normalize()
}

// edges returns the three boundary arcs of t.
func (t Triangle) edges() [3][2]Vector {
	return [3][2]Vector{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
}

// onArc reports whether p, a point on the great circle through a and b,
// lies on the minor arc between them.
func onArc(a, b, p Vector) bool {
	n := a.Cross(b)
	if n.Length() < Epsilon {
		// Degenerate arc: a and b coincide.
		return p.Sub(a).Length() < 1e-9
	}
	n = n.Normalize()
	return a.Cross(p).Dot(n) >= -Epsilon && p.Cross(b).Dot(n) >= -Epsilon
}

// arcsIntersect reports whether the minor arcs ab and cd share a point.
func arcsIntersect(a, b, c, d Vector) bool {
	n1 := a.Cross(b)
	n2 := c.Cross(d)
	x := n1.Cross(n2)
	if x.Length() < Epsilon {
		// Same great circle (or a degenerate arc): overlap iff an endpoint of one
		// arc lies on the other.
		if n1.Length() >= Epsilon && n2.Length() >= Epsilon && n1.Normalize().Cross(n2.Normalize()).Length() < 1e-9 {
			return onArc(a, b, c) || onArc(a, b, d) || onArc(c, d, a) || onArc(c, d, b)
		}
		return false
	}
	x = x.Normalize()
	for _, p := range [2]Vector{x, x.Neg()} {
		if onArc(a, b, p) && onArc(c, d, p) {
			return true
		}
	}
	return false
}

// arcMaxCos returns the cosine of the smallest angular distance between c and
// any point of the minor arc ab.
func arcMaxCos(a, b, c Vector) float64 {
	best := max(a.Dot(c), b.Dot(c))
	n := a.Cross(b)
	if n.Length() < Epsilon {
		return best
	}
	n = n.Normalize()
	proj := c.Sub(n.Scale(c.Dot(n)))
	if proj.Length() < Epsilon {
		// c is a pole of the arc's great circle: every point is 90° away.
		return max(best, 0)
	}
	proj = proj.Normalize()
	if onArc(a, b, proj) {
		best = max(best, proj.Dot(c))
	}
	return best
}
