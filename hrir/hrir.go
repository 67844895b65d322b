// Package hrir models a measured head-related impulse response dataset:
// an ordered set of source positions, the stereo impulse response recorded
// at each position, and the shared sampling rate.
//
// Positions and impulse responses are index aligned; [Dataset.Validate]
// checks the invariants every downstream stage relies on.
package hrir

import (
	"errors"

	"github.com/cwbudde/algo-ambisonic/grid"
)

// Errors reported by dataset validation.
var (
	ErrEmpty             = errors.New("hrir: dataset is empty")
	ErrLengthMismatch    = errors.New("hrir: position and impulse response counts differ")
	ErrRaggedIR          = errors.New("hrir: impulse responses do not share one sample count")
	ErrInvalidSampleRate = errors.New("hrir: sample rate must be positive")
)

// Position is a measured source position. Azimuth and elevation are in
// degrees and carry the matching contract; Distance is kept for
// completeness but never used for matching.
type Position struct {
	Azimuth   float64
	Elevation float64
	Distance  float64
}

// Direction returns the angular part of the position.
func (p Position) Direction() grid.Direction {
	return grid.Direction{Azimuth: p.Azimuth, Elevation: p.Elevation}
}

// StereoIR is the impulse response pair recorded at one position.
type StereoIR struct {
	Left  []float64
	Right []float64
}

// Dataset is one complete HRIR measurement set. Positions and IRs are
// index aligned and all impulse responses share SampleCount samples per ear
// at SampleRate Hz.
type Dataset struct {
	Positions  []Position
	IRs        []StereoIR
	SampleRate float64
}

// SampleCount returns the per-ear sample count, or 0 for an empty dataset.
func (d *Dataset) SampleCount() int {
	if len(d.IRs) == 0 {
		return 0
	}

	return len(d.IRs[0].Left)
}

// Validate checks the dataset invariants: non-empty, index aligned,
// a single sample count across all measurements and both ears, and a
// positive sampling rate.
func (d *Dataset) Validate() error {
	if len(d.Positions) == 0 || len(d.IRs) == 0 {
		return ErrEmpty
	}

	if len(d.Positions) != len(d.IRs) {
		return ErrLengthMismatch
	}

	if d.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}

	n := len(d.IRs[0].Left)
	for _, ir := range d.IRs {
		if len(ir.Left) != n || len(ir.Right) != n {
			return ErrRaggedIR
		}
	}

	return nil
}
