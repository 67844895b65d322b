// Package bformat builds first-order ambisonic encode matrices and derives
// the matching decode matrices.
//
// An encode matrix C is N×4: row i holds the projection of a unit-amplitude
// plane wave arriving from direction i onto the channels W, X, Y, Z. The
// decode matrix CI is 4×N and maps the N sampled directions back onto the
// four channels; two derivations are available behind the [Solver]
// interface, a plain transpose for orthogonal layouts and a least-squares
// pseudo-inverse for the general case.
package bformat

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-ambisonic/grid"
)

// Channels is the number of first-order ambisonic channels (W, X, Y, Z).
const Channels = 4

// Errors reported by matrix construction and decoding.
var (
	ErrNoDirections = errors.New("bformat: no directions")
	ErrNotEncode    = errors.New("bformat: matrix is not an N×4 encode matrix")
)

// EncodeDirections builds the N×4 encode matrix for angular directions.
// Row i is
//
//	[1/√2, cosθᵢ·cosφᵢ, sinθᵢ·cosφᵢ, sinφᵢ]
//
// with θ the azimuth and φ the elevation in radians.
func EncodeDirections(dirs []grid.Direction) (*mat.Dense, error) {
	if len(dirs) == 0 {
		return nil, ErrNoDirections
	}

	c := mat.NewDense(len(dirs), Channels, nil)

	for i, d := range dirs {
		theta := d.Azimuth * math.Pi / 180
		phi := d.Elevation * math.Pi / 180

		c.Set(i, 0, 1/math.Sqrt2)
		c.Set(i, 1, math.Cos(theta)*math.Cos(phi))
		c.Set(i, 2, math.Sin(theta)*math.Cos(phi))
		c.Set(i, 3, math.Sin(phi))
	}

	return c, nil
}

// EncodeVectors builds the N×4 encode matrix for unit-vector directions.
// Row i is [1/√2, xᵢ, yᵢ, zᵢ].
func EncodeVectors(vs []grid.Vector) (*mat.Dense, error) {
	if len(vs) == 0 {
		return nil, ErrNoDirections
	}

	c := mat.NewDense(len(vs), Channels, nil)

	for i, v := range vs {
		c.Set(i, 0, 1/math.Sqrt2)
		c.Set(i, 1, v.X)
		c.Set(i, 2, v.Y)
		c.Set(i, 3, v.Z)
	}

	return c, nil
}

// Solver derives a 4×N decode matrix from an N×4 encode matrix.
type Solver interface {
	Decode(c *mat.Dense) (*mat.Dense, error)
}

// TransposeSolver decodes with CI = Cᵗ. For layouts whose directions are
// mutually equidistant, such as the regular tetrahedron, the encode columns
// are orthogonal and the transpose is an adequate unnormalized inverse.
type TransposeSolver struct{}

// Decode returns the transpose of c.
func (TransposeSolver) Decode(c *mat.Dense) (*mat.Dense, error) {
	if _, cols := c.Dims(); cols != Channels {
		return nil, ErrNotEncode
	}

	var ci mat.Dense
	ci.CloneFrom(c.T())

	return &ci, nil
}

// LeastSquaresSolver decodes with the Moore–Penrose pseudo-inverse,
// obtained by solving C·X = I in the least-squares sense. The resulting
// CI yields the four channel signals that best reproduce the N sampled
// directions for an over-determined layout.
type LeastSquaresSolver struct{}

// Decode returns the pseudo-inverse of c. A rank-deficient encode matrix
// is reported as an error by the underlying least-squares solve instead of
// silently producing an ill-conditioned result.
func (LeastSquaresSolver) Decode(c *mat.Dense) (*mat.Dense, error) {
	n, cols := c.Dims()
	if cols != Channels {
		return nil, ErrNotEncode
	}

	if n < Channels {
		return nil, fmt.Errorf("%w: need at least %d directions, got %d", ErrNoDirections, Channels, n)
	}

	eye := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		eye.Set(i, i, 1)
	}

	var ci mat.Dense
	if err := ci.Solve(c, eye); err != nil {
		return nil, fmt.Errorf("bformat: pseudo-inverse: %w", err)
	}

	return &ci, nil
}
