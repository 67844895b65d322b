package grid

import "math"

// Direction is an angular direction in degrees, following the SOFA
// spherical coordinate convention: azimuth counterclockwise from the front
// in [0, 360), elevation up from the horizontal plane in [-90, 90].
type Direction struct {
	Azimuth   float64
	Elevation float64
}

// Vector is a direction expressed as a unit vector.
type Vector struct {
	X, Y, Z float64
}

// Direction converts the vector to angles in degrees using the measurement
// convention θ = -atan2(x, y) wrapped to [0, 360), φ = asin(z).
func (v Vector) Direction() Direction {
	// Mod also folds the negative zero that -atan2 produces for the
	// zenith and front vectors into +0.
	az := -math.Atan2(v.X, v.Y) * 180 / math.Pi
	az = math.Mod(az+360, 360)

	el := math.Asin(clamp(v.Z, -1, 1)) * 180 / math.Pi

	return Direction{Azimuth: az, Elevation: el}
}

// Vector converts the direction to a unit vector (the inverse of
// [Vector.Direction]).
func (d Direction) Vector() Vector {
	theta := d.Azimuth * math.Pi / 180
	phi := d.Elevation * math.Pi / 180

	return Vector{
		X: -math.Sin(theta) * math.Cos(phi),
		Y: math.Cos(theta) * math.Cos(phi),
		Z: math.Sin(phi),
	}
}

// AngleTo returns the great-circle angle between two directions in degrees.
func (d Direction) AngleTo(o Direction) float64 {
	return d.Vector().AngleTo(o.Vector())
}

// Dot returns the scalar product of two vectors.
func (v Vector) Dot(o Vector) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Add returns the componentwise sum of two vectors.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Norm returns the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalized returns the vector scaled to unit length.
// The zero vector is returned unchanged.
func (v Vector) Normalized() Vector {
	n := v.Norm()
	if n == 0 {
		return v
	}

	return Vector{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// AngleTo returns the angle between two unit vectors in degrees.
func (v Vector) AngleTo(o Vector) float64 {
	return math.Acos(clamp(v.Dot(o), -1, 1)) * 180 / math.Pi
}

// Tetrahedron returns the four unit vectors of a regular tetrahedron with
// one vertex at the zenith. The first three vertices sit below the
// horizontal plane at elevation asin(-1/3); the order is fixed and flows
// unchanged through downstream matrices and index arrays.
func Tetrahedron() []Vector {
	return []Vector{
		{X: -math.Sqrt(2.0 / 3.0), Y: math.Sqrt(2.0 / 9.0), Z: -1.0 / 3.0},
		{X: math.Sqrt(2.0 / 3.0), Y: math.Sqrt(2.0 / 9.0), Z: -1.0 / 3.0},
		{X: 0, Y: -math.Sqrt(8.0 / 9.0), Z: -1.0 / 3.0},
		{X: 0, Y: 0, Z: 1},
	}
}

// Cube returns eight directions derived from cube vertices: each of the
// four diagonal azimuths {45°, 135°, 225°, 315°} at elevations -30° and
// +30°, lower ring entry first per azimuth.
func Cube() []Direction {
	azimuths := [...]float64{45, 135, 225, 315}

	dirs := make([]Direction, 0, 2*len(azimuths))
	for _, az := range azimuths {
		dirs = append(dirs,
			Direction{Azimuth: az, Elevation: -30},
			Direction{Azimuth: az, Elevation: 30},
		)
	}

	return dirs
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
