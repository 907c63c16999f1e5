package mesh

import (
	"fmt"
	"log/slog"

	"github.com/hupe1980/starcache/internal/htm"
)

// Trixel identifies one triangle of the mesh, 0 … Size()-1.
type Trixel uint32

// Buffer names one of the mesh's independent result buffers.
type Buffer int

const (
	// DrawBuf receives draw-time aperture queries.
	DrawBuf Buffer = iota
	// NoPrecessBuf receives queries whose center is already in catalog coordinates.
	NoPrecessBuf
	// ObjNearestBuf receives nearest-object and in-aperture queries.
	ObjNearestBuf
	// InConstellBuf receives containment queries.
	InConstellBuf

	// NumBuffers is the number of result buffers.
	NumBuffers
)

func (b Buffer) String() string {
	switch b {
	case DrawBuf:
		return "draw"
	case NoPrecessBuf:
		return "no-precess"
	case ObjNearestBuf:
		return "obj-nearest"
	case InConstellBuf:
		return "in-constell"
	default:
		return fmt.Sprintf("buffer(%d)", int(b))
	}
}

// DefaultLevel is the subdivision used when none is configured (512 trixels).
const DefaultLevel = 3

// ApertureMargin is added to every Aperture radius, in degrees. It covers
// proper motion and refraction so stars near the edge are not missed.
const ApertureMargin = 1.0

// Mesh is a fixed-level trixel index with named result buffers and a draw
// generation counter.
type Mesh struct {
	idx       *htm.Index
	buffers   [NumBuffers][]Trixel
	drawID    uint64
	inDraw    bool
	busy      bool
	errLimit  int
	precessor Precessor
	logger    *slog.Logger
}

// New creates a mesh subdivided to level.
func New(level int, optFns ...Option) (*Mesh, error) {
	idx, err := htm.New(level)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}

	opts := options{
		precessor: identity{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Mesh{
		idx:       idx,
		errLimit:  int(idx.Size() / 4),
		precessor: opts.precessor,
		logger:    opts.logger,
	}, nil
}

// Level returns the subdivision depth.
func (m *Mesh) Level() int { return m.idx.Level() }

// Size returns the number of trixels.
func (m *Mesh) Size() int { return int(m.idx.Size()) }

// Name returns the HTM name of t, e.g. "S0123".
func (m *Mesh) Name(t Trixel) string { return m.idx.Name(uint32(t)) }

// Index returns the trixel containing p. No precession is applied, so points
// given in catalog coordinates stay in the trixel their catalog places them.
func (m *Mesh) Index(p Point) Trixel {
	return Trixel(m.idx.Lookup(p.vector()))
}

// Vertices returns the corners of t.
func (m *Mesh) Vertices(t Trixel) [3]Point {
	tri := m.idx.Triangle(uint32(t))
	return [3]Point{pointOf(tri[0]), pointOf(tri[1]), pointOf(tri[2])}
}

// DrawID returns the current draw generation.
func (m *Mesh) DrawID() uint64 { return m.drawID }

// IncDrawID advances the draw generation and returns the new value.
func (m *Mesh) IncDrawID() uint64 {
	m.drawID++
	return m.drawID
}

// InDraw reports whether a consumer has marked a draw pass in progress.
func (m *Mesh) InDraw() bool { return m.inDraw }

// SetInDraw marks the start or end of a consumer draw pass.
func (m *Mesh) SetInDraw(v bool) { m.inDraw = v }

// Len returns the number of trixels currently held by buf.
func (m *Mesh) Len(buf Buffer) int {
	if !m.validBuffer(buf) {
		return 0
	}
	return len(m.buffers[buf])
}

// Aperture fills buf with every trixel intersecting the circle around
// center, widened by ApertureMargin, and advances the draw generation.
// The center is first mapped to catalog coordinates by the mesh's Precessor.
//
// A call made while another Aperture is still running is logged and ignored:
// it returns false and leaves buf and DrawID untouched.
func (m *Mesh) Aperture(center Point, radius float64, buf Buffer) bool {
	if m.busy {
		m.logger.Error("reentrant aperture ignored", "center", center, "radius", radius, "buffer", buf)
		return false
	}
	if !m.validBuffer(buf) {
		return false
	}
	m.busy = true
	defer func() { m.busy = false }()

	c := m.precessor.CatalogCoord(center)
	m.fill(buf, htm.NewCap(c.vector(), radius+ApertureMargin))
	m.drawID++
	return true
}

// IndexCircle fills buf with the trixels intersecting the circle around
// center. Unlike Aperture it applies neither precession nor margin, and does
// not advance the draw generation.
func (m *Mesh) IndexCircle(center Point, radius float64, buf Buffer) {
	if !m.validBuffer(buf) {
		return
	}
	m.fill(buf, htm.NewCap(center.vector(), radius))
}

// IndexLine fills buf with the trixels crossed by the great-circle segment p1-p2.
func (m *Mesh) IndexLine(p1, p2 Point, buf Buffer) {
	if !m.validBuffer(buf) {
		return
	}
	m.fill(buf, htm.NewArc(p1.vector(), p2.vector()))
}

// IndexTriangle fills buf with the trixels intersecting the triangle p1 p2 p3.
func (m *Mesh) IndexTriangle(p1, p2, p3 Point, buf Buffer) {
	m.indexConvex(buf, p1, p2, p3)
}

// IndexQuad fills buf with the trixels intersecting the convex quadrilateral
// p1 p2 p3 p4.
func (m *Mesh) IndexQuad(p1, p2, p3, p4 Point, buf Buffer) {
	m.indexConvex(buf, p1, p2, p3, p4)
}

func (m *Mesh) indexConvex(buf Buffer, pts ...Point) {
	if !m.validBuffer(buf) {
		return
	}
	vs := make([]htm.Vector, len(pts))
	for i, p := range pts {
		vs[i] = p.vector()
	}
	if cv, ok := htm.NewConvex(vs...); ok {
		m.fill(buf, cv)
		return
	}

	// No area: index the outline instead.
	m.buffers[buf] = m.buffers[buf][:0]
	seen := make(map[Trixel]struct{})
	for i := range vs {
		a, b := vs[i], vs[(i+1)%len(vs)]
		m.idx.Intersect(htm.NewArc(a, b), func(lo, hi uint32) {
			for id := lo; ; id++ {
				if _, dup := seen[Trixel(id)]; !dup {
					seen[Trixel(id)] = struct{}{}
					m.buffers[buf] = append(m.buffers[buf], Trixel(id))
				}
				if id == hi {
					break
				}
			}
		})
	}
}

func (m *Mesh) fill(buf Buffer, s htm.Shape) {
	out := m.buffers[buf][:0]
	m.idx.Intersect(s, func(lo, hi uint32) {
		for id := lo; ; id++ {
			out = append(out, Trixel(id))
			if id == hi {
				break
			}
		}
	})
	m.buffers[buf] = out
}

func (m *Mesh) validBuffer(buf Buffer) bool {
	if buf < 0 || buf >= NumBuffers {
		m.logger.Error("unknown mesh buffer", "buffer", buf)
		return false
	}
	return true
}
