package htm

import (
	"fmt"
	"math"
)

// MaxLevel is the deepest supported subdivision. Trixel ids at this level
// still fit in a uint32.
const MaxLevel = 14

// Octahedron vertices.
var octa = [6]Vector{
	{0, 0, 1},
	{1, 0, 0},
	{0, 1, 0},
	{-1, 0, 0},
	{0, -1, 0},
	{0, 0, -1},
}

// rootTriangles are S0..S3 then N0..N3, each listed counter-clockwise.
var rootTriangles = [8]Triangle{
	{octa[1], octa[5], octa[2]},
	{octa[2], octa[5], octa[3]},
	{octa[3], octa[5], octa[4]},
	{octa[4], octa[5], octa[1]},
	{octa[1], octa[0], octa[4]},
	{octa[4], octa[0], octa[3]},
	{octa[3], octa[0], octa[2]},
	{octa[2], octa[0], octa[1]},
}

var rootNames = [8]string{"S0", "S1", "S2", "S3", "N0", "N1", "N2", "N3"}

// Class is the relation of a triangle to a query shape.
type Class int

const (
	Outside Class = iota
	Partial
	Inside
)

// Shape classifies mesh triangles against a query region.
type Shape interface {
	Classify(t Triangle) Class
}

// Index is a fixed-depth mesh. It is immutable and safe for concurrent use.
type Index struct {
	level int
}

// New returns an index subdivided to level.
func New(level int) (*Index, error) {
	if level < 0 || level > MaxLevel {
		return nil, fmt.Errorf("htm: level %d out of range [0, %d]", level, MaxLevel)
	}
	return &Index{level: level}, nil
}

// Level returns the subdivision depth.
func (x *Index) Level() int { return x.level }

// Size returns the number of trixels, 8·4^level.
func (x *Index) Size() uint32 { return 8 << (2 * uint(x.level)) }

// Name returns the conventional HTM name of a trixel, e.g. "N3012".
func (x *Index) Name(id uint32) string {
	b := []byte(rootNames[id>>(2*uint(x.level))])
	for d := x.level - 1; d >= 0; d-- {
		b = append(b, byte('0'+(id>>(2*uint(d)))&3))
	}
	return string(b)
}

// Triangle returns the vertices of trixel id.
func (x *Index) Triangle(id uint32) Triangle {
	shift := 2 * uint(x.level)
	t := rootTriangles[(id>>shift)&7]
	for d := x.level - 1; d >= 0; d-- {
		t = t.Children()[(id>>(2*uint(d)))&3]
	}
	return t
}

// Lookup returns the trixel containing v. Points on a shared boundary resolve
// to the lowest-numbered candidate.
func (x *Index) Lookup(v Vector) uint32 {
	v = v.Normalize()
	root := bestOf(rootTriangles[:], v)
	id := uint32(root)
	t := rootTriangles[root]
	for d := 0; d < x.level; d++ {
		kids := t.Children()
		c := bestOf(kids[:], v)
		id = id<<2 | uint32(c)
		t = kids[c]
	}
	return id
}

// bestOf returns the first triangle containing v, or failing that (rounding
// at a boundary) the one v is least outside of.
func bestOf(ts []Triangle, v Vector) int {
	best, bestScore := 0, math.Inf(-1)
	for i, t := range ts {
		if t.Contains(v) {
			return i
		}
		s := min(t[0].Cross(t[1]).Dot(v), t[1].Cross(t[2]).Dot(v), t[2].Cross(t[0]).Dot(v))
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// Intersect walks the mesh and calls emit with every inclusive trixel range
// [lo, hi] that intersects s. Ranges are emitted in ascending order and never
// overlap. Subtrees classified Inside are emitted whole.
func (x *Index) Intersect(s Shape, emit func(lo, hi uint32)) {
	for r := range rootTriangles {
		x.walk(s, rootTriangles[r], uint32(r), 0, emit)
	}
}

func (x *Index) walk(s Shape, t Triangle, id uint32, depth int, emit func(lo, hi uint32)) {
	switch s.Classify(t) {
	case Outside:
		return
	case Inside:
		shift := 2 * uint(x.level-depth)
		emit(id<<shift, (id+1)<<shift-1)
		return
	}
	if depth == x.level {
		emit(id, id)
		return
	}
	for i, c := range t.Children() {
		x.walk(s, c, id<<2|uint32(i), depth+1, emit)
	}
}

// Collect returns the trixels intersecting s in ascending order.
func (x *Index) Collect(s Shape) []uint32 {
	var out []uint32
	x.Intersect(s, func(lo, hi uint32) {
		for id := lo; ; id++ {
			out = append(out, id)
			if id == hi {
				break
			}
		}
	})
	return out
}
