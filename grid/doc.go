// Package grid defines the fixed virtual-speaker layouts used as targets
// for first-order ambisonic encoding and decoding, together with the
// angle/vector conversions shared by the matching and encoding stages.
//
// Two layouts are provided:
//
//   - Tetrahedron: four mutually equidistant unit vectors, one at the
//     zenith. Its encode matrix is orthogonal enough that the plain
//     transpose serves as a decode matrix.
//   - Cube: eight directions at the diagonal azimuths and ±30° elevation,
//     decoded via a least-squares pseudo-inverse.
//
// Angles follow the SOFA source-position convention (degrees, azimuth
// counterclockwise from the front), so grid directions compare directly
// against measured positions.
package grid
