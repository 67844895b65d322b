// Package match selects measured HRIR positions for target grid directions.
//
// Three lookups are provided: plain nearest-neighbour matching on the
// (azimuth, elevation) plane, a tolerance-checked angular lookup that fails
// explicitly when no measurement is close enough, and a midpoint-pair
// search for target directions the measurement rig never covered directly.
package match

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-ambisonic/grid"
	"github.com/cwbudde/algo-ambisonic/hrir"
)

// Errors reported by position lookups.
var (
	ErrNoPositions = errors.New("match: no measured positions")
	ErrNoMatch     = errors.New("match: no measured position within tolerance")
	ErrNoPair      = errors.New("match: no interpolation pair within tolerance")
)

// Nearest returns, for every target direction, the index of the measured
// position with the smallest squared Euclidean distance in the
// (azimuth, elevation) plane. Ties resolve to the first index attaining
// the minimum, so the result is stable for a given input order.
func Nearest(positions []hrir.Position, targets []grid.Direction) ([]int, error) {
	if len(positions) == 0 {
		return nil, ErrNoPositions
	}

	indices := make([]int, len(targets))

	for t, target := range targets {
		best := math.Inf(1)
		bestIdx := 0

		for i, p := range positions {
			da := p.Azimuth - target.Azimuth
			de := p.Elevation - target.Elevation

			if d := da*da + de*de; d < best {
				best = d
				bestIdx = i
			}
		}

		indices[t] = bestIdx
	}

	return indices, nil
}

// Lookup returns the index of the measured position nearest to target by
// great-circle angular distance, failing with [ErrNoMatch] when even the
// best candidate is more than tolDeg degrees away.
func Lookup(positions []hrir.Position, target grid.Direction, tolDeg float64) (int, error) {
	if len(positions) == 0 {
		return 0, ErrNoPositions
	}

	best := math.Inf(1)
	bestIdx := 0

	for i, p := range positions {
		if a := p.Direction().AngleTo(target); a < best {
			best = a
			bestIdx = i
		}
	}

	if best > tolDeg {
		return 0, fmt.Errorf("%w: target (%.1f°, %.1f°), nearest is %.1f° away (tolerance %.1f°)",
			ErrNoMatch, target.Azimuth, target.Elevation, best, tolDeg)
	}

	return bestIdx, nil
}

// InterpolationPair finds two measured positions whose spherical midpoint
// (the normalized vector sum) lies within tolDeg degrees of target,
// minimizing that angular error. Near-antipodal pairs are skipped since
// their midpoint is undefined. It fails with [ErrNoPair] when no pair
// qualifies.
//
// This covers grid directions the measurement rig cannot reach directly,
// such as the zenith of the tetrahedral layout.
func InterpolationPair(positions []hrir.Position, target grid.Direction, tolDeg float64) (int, int, error) {
	if len(positions) < 2 {
		return 0, 0, ErrNoPositions
	}

	vectors := make([]grid.Vector, len(positions))
	for i, p := range positions {
		vectors[i] = p.Direction().Vector()
	}

	tv := target.Vector()
	best := math.Inf(1)
	bi, bj := -1, -1

	for i := range vectors {
		for j := i + 1; j < len(vectors); j++ {
			sum := vectors[i].Add(vectors[j])
			if sum.Norm() < 1e-9 {
				continue
			}

			if a := sum.Normalized().AngleTo(tv); a < best {
				best = a
				bi, bj = i, j
			}
		}
	}

	if bi < 0 || best > tolDeg {
		return 0, 0, fmt.Errorf("%w: target (%.1f°, %.1f°), best midpoint is %.1f° away (tolerance %.1f°)",
			ErrNoPair, target.Azimuth, target.Elevation, best, tolDeg)
	}

	return bi, bj, nil
}
