package mesh

import (
	"fmt"

	"github.com/hupe1980/starcache/internal/htm"
)

// Point is a position on the sky in degrees.
type Point struct {
	RA  float64
	Dec float64
}

// PointFromHours builds a Point from right ascension in hours.
func PointFromHours(raHours, dec float64) Point {
	return Point{RA: raHours * 15, Dec: dec}
}

// AngleTo returns the angular distance to q in degrees.
func (p Point) AngleTo(q Point) float64 {
	return p.vector().AngleTo(q.vector())
}

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %+.4f)", p.RA, p.Dec)
}

func (p Point) vector() htm.Vector {
	return htm.FromRADec(p.RA, p.Dec)
}

func pointOf(v htm.Vector) Point {
	ra, dec := v.RADec()
	return Point{RA: ra, Dec: dec}
}

// Precessor maps a current-epoch position to catalog coordinates.
type Precessor interface {
	CatalogCoord(p Point) Point
}

// PrecessorFunc adapts a function to Precessor.
type PrecessorFunc func(Point) Point

// CatalogCoord implements Precessor.
func (f PrecessorFunc) CatalogCoord(p Point) Point { return f(p) }

type identity struct{}

func (identity) CatalogCoord(p Point) Point { return p }
