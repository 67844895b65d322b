// Package assemble combines matched impulse responses through encode or
// decode matrices into the coefficient arrays written to the output file.
//
// Two modes cover the two virtual-speaker layouts:
//
//   - [Channels] folds the matched impulse responses through a 4×N decode
//     matrix into one full-length coefficient array per ambisonic channel
//     and ear side.
//   - [Feeds] pairs each virtual speaker's encode-matrix row with its
//     (possibly interpolated) impulse response, deferring the decode step
//     to the consuming renderer.
//
// Both modes apply a uniform gain compensation to the raw samples before
// combination; see [DefaultGain].
package assemble

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-ambisonic/bformat"
	"github.com/cwbudde/algo-ambisonic/grid"
	"github.com/cwbudde/algo-ambisonic/hrir"
	"github.com/cwbudde/algo-ambisonic/match"
)

// Errors reported by coefficient assembly.
var (
	ErrIndexRange  = errors.New("assemble: matched index outside dataset range")
	ErrNoSources   = errors.New("assemble: no sources")
	ErrSourceArity = errors.New("assemble: source must name one or two measurement indices")
	ErrShape       = errors.New("assemble: matrix shape does not fit the matched indices")
)

// ChannelSet holds one full-length coefficient array per ambisonic channel
// (W, X, Y, Z order) and ear side.
type ChannelSet struct {
	SampleRate float64
	Left       [bformat.Channels][]float64
	Right      [bformat.Channels][]float64
}

// SampleCount returns the per-channel sample count.
func (cs *ChannelSet) SampleCount() int {
	return len(cs.Left[0])
}

// Channels combines the matched impulse responses through a 4×N decode
// matrix:
//
//	out[j][side][t] = Σᵢ decode[j,i] · gain · ir[indices[i]][side][t]
//
// producing one ambisonic-channel impulse response per channel and ear.
func Channels(decode *mat.Dense, ds *hrir.Dataset, indices []int, opts ...Option) (*ChannelSet, error) {
	cfg := ApplyOptions(opts...)

	if err := ds.Validate(); err != nil {
		return nil, err
	}

	rows, cols := decode.Dims()
	if rows != bformat.Channels {
		return nil, fmt.Errorf("%w: decode matrix has %d rows, want %d", ErrShape, rows, bformat.Channels)
	}

	if cols != len(indices) {
		return nil, fmt.Errorf("%w: decode matrix has %d columns for %d indices", ErrShape, cols, len(indices))
	}

	n := ds.SampleCount()

	cs := &ChannelSet{SampleRate: ds.SampleRate}
	for j := range cs.Left {
		cs.Left[j] = make([]float64, n)
		cs.Right[j] = make([]float64, n)
	}

	scaled := make([]float64, n)

	for i, idx := range indices {
		if idx < 0 || idx >= len(ds.IRs) {
			return nil, fmt.Errorf("%w: index %d, dataset size %d", ErrIndexRange, idx, len(ds.IRs))
		}

		ir := ds.IRs[idx]

		for j := 0; j < bformat.Channels; j++ {
			w := decode.At(j, i) * cfg.Gain

			vecmath.ScaleBlock(scaled, ir.Left, w)
			vecmath.AddBlockInPlace(cs.Left[j], scaled)

			vecmath.ScaleBlock(scaled, ir.Right, w)
			vecmath.AddBlockInPlace(cs.Right[j], scaled)
		}
	}

	return cs, nil
}

// Source names the measurement indices backing one virtual speaker feed.
// One index uses that measurement directly; two indices average the pair
// elementwise, the midpoint interpolation used for grid directions without
// a direct measurement.
type Source struct {
	Indices []int
}

// Feed pairs a virtual speaker's channel weights (its encode-matrix row)
// with the gained impulse response that feeds it.
type Feed struct {
	Weights [bformat.Channels]float64
	Left    []float64
	Right   []float64
}

// Feeds builds one virtual-speaker feed per source, row i of the N×4
// encode matrix paired with the gained (possibly averaged) impulse
// response of source i.
func Feeds(encode *mat.Dense, ds *hrir.Dataset, sources []Source, opts ...Option) ([]Feed, error) {
	cfg := ApplyOptions(opts...)

	if err := ds.Validate(); err != nil {
		return nil, err
	}

	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	rows, cols := encode.Dims()
	if cols != bformat.Channels {
		return nil, fmt.Errorf("%w: encode matrix has %d columns, want %d", ErrShape, cols, bformat.Channels)
	}

	if rows != len(sources) {
		return nil, fmt.Errorf("%w: encode matrix has %d rows for %d sources", ErrShape, rows, len(sources))
	}

	n := ds.SampleCount()
	scaled := make([]float64, n)
	feeds := make([]Feed, len(sources))

	for i, src := range sources {
		if len(src.Indices) < 1 || len(src.Indices) > 2 {
			return nil, fmt.Errorf("%w: got %d", ErrSourceArity, len(src.Indices))
		}

		left := make([]float64, n)
		right := make([]float64, n)

		// Averaging two measurements splits the gain evenly.
		share := cfg.Gain / float64(len(src.Indices))

		for _, idx := range src.Indices {
			if idx < 0 || idx >= len(ds.IRs) {
				return nil, fmt.Errorf("%w: index %d, dataset size %d", ErrIndexRange, idx, len(ds.IRs))
			}

			vecmath.ScaleBlock(scaled, ds.IRs[idx].Left, share)
			vecmath.AddBlockInPlace(left, scaled)

			vecmath.ScaleBlock(scaled, ds.IRs[idx].Right, share)
			vecmath.AddBlockInPlace(right, scaled)
		}

		feed := Feed{Left: left, Right: right}
		for j := range feed.Weights {
			feed.Weights[j] = encode.At(i, j)
		}

		feeds[i] = feed
	}

	return feeds, nil
}

// ResolveSources maps each target vector to the measurement backing it:
// a direct measurement within tolDeg degrees when one exists, otherwise a
// midpoint interpolation pair. Directions that resolve neither way fail
// explicitly instead of silently assuming a layout.
func ResolveSources(positions []hrir.Position, targets []grid.Vector, tolDeg float64) ([]Source, error) {
	sources := make([]Source, len(targets))

	for i, v := range targets {
		dir := v.Direction()

		idx, err := match.Lookup(positions, dir, tolDeg)
		if err == nil {
			sources[i] = Source{Indices: []int{idx}}
			continue
		}

		if !errors.Is(err, match.ErrNoMatch) {
			return nil, err
		}

		a, b, err := match.InterpolationPair(positions, dir, tolDeg)
		if err != nil {
			return nil, fmt.Errorf("direction (%.1f°, %.1f°): %w", dir.Azimuth, dir.Elevation, err)
		}

		sources[i] = Source{Indices: []int{a, b}}
	}

	return sources, nil
}
