package htm

import "math"

// Epsilon is the tolerance used by the side-of-great-circle tests.
const Epsilon = 1e-12

// Vector is a 3D cartesian vector. Mesh vertices and query points are unit vectors.
type Vector struct {
	X, Y, Z float64
}

// FromRADec converts right ascension and declination (degrees) to a unit vector.
func FromRADec(ra, dec float64) Vector {
	r := ra * math.Pi / 180
	d := dec * math.Pi / 180
	cd := math.Cos(d)
	return Vector{
		X: cd * math.Cos(r),
		Y: cd * math.Sin(r),
		Z: math.Sin(d),
	}
}

// RADec returns right ascension in [0, 360) and declination in [-90, 90] degrees.
func (v Vector) RADec() (ra, dec float64) {
	n := v.Normalize()
	dec = math.Asin(clamp(n.Z, -1, 1)) * 180 / math.Pi
	ra = math.Atan2(n.Y, n.X) * 180 / math.Pi
	if ra < 0 {
		ra += 360
	}
	return ra, dec
}

func (v Vector) Add(w Vector) Vector { return Vector{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

func (v Vector) Sub(w Vector) Vector { return Vector{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s, v.Z * s} }

func (v Vector) Neg() Vector { return Vector{-v.X, -v.Y, -v.Z} }

func (v Vector) Dot(w Vector) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns v × w.
func (v Vector) Cross(w Vector) Vector {
	return Vector{
		X: v.Y*w.Z - v.Z*w.Y,
		Y: v.Z*w.X - v.X*w.Z,
		Z: v.X*w.Y - v.Y*w.X,
	}
}

func (v Vector) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Midpoint returns the normalized midpoint of the great-circle arc between v and w.
func (v Vector) Midpoint(w Vector) Vector {
	return v.Add(w).Normalize()
}

// AngleTo returns the angular distance between two unit vectors in degrees.
func (v Vector) AngleTo(w Vector) float64 {
	// atan2 of |v×w| and v·w stays accurate for tiny and near-antipodal angles.
	return math.Atan2(v.Cross(w).Length(), v.Dot(w)) * 180 / math.Pi
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
