// Package sofa reads HRIR measurement sets from SOFA containers.
//
// SOFA files are netCDF/HDF5 containers. Only the three variables this
// pipeline needs are read:
//
//   - SourcePosition: [measurement × coordinate], azimuth and elevation in
//     degrees in the first two coordinates
//   - Data.IR: [measurement × receiver(2) × sample]
//   - Data.SamplingRate: scalar, Hz
//
// Everything else in the container is ignored. The container library is
// treated as an external collaborator; its failures are wrapped and
// propagated unrecovered.
package sofa

import (
	"errors"
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"

	"github.com/cwbudde/algo-ambisonic/hrir"
)

// Errors reported for malformed container variables.
var (
	ErrBadPositions  = errors.New("sofa: SourcePosition must be a 2-D numeric array with at least 2 coordinates")
	ErrBadIR         = errors.New("sofa: Data.IR must be a 3-D numeric array with at least 2 receivers")
	ErrBadSampleRate = errors.New("sofa: Data.SamplingRate must be a numeric scalar")
)

// Open reads the measurement set from the SOFA container at path.
func Open(path string) (*hrir.Dataset, error) {
	group, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sofa: open %s: %w", path, err)
	}
	defer group.Close()

	posVar, err := group.GetVariable("SourcePosition")
	if err != nil {
		return nil, fmt.Errorf("sofa: SourcePosition: %w", err)
	}

	positions, err := toPositions(posVar.Values)
	if err != nil {
		return nil, err
	}

	irVar, err := group.GetVariable("Data.IR")
	if err != nil {
		return nil, fmt.Errorf("sofa: Data.IR: %w", err)
	}

	irs, err := toStereoIRs(irVar.Values)
	if err != nil {
		return nil, err
	}

	rateVar, err := group.GetVariable("Data.SamplingRate")
	if err != nil {
		return nil, fmt.Errorf("sofa: Data.SamplingRate: %w", err)
	}

	rate, err := toScalar(rateVar.Values)
	if err != nil {
		return nil, err
	}

	ds := &hrir.Dataset{Positions: positions, IRs: irs, SampleRate: rate}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	return ds, nil
}

// toPositions converts the SourcePosition payload. SOFA files store either
// float64 or float32 depending on the authoring tool.
func toPositions(values any) ([]hrir.Position, error) {
	switch rows := values.(type) {
	case [][]float64:
		return positionRows(rows)
	case [][]float32:
		converted := make([][]float64, len(rows))
		for i, row := range rows {
			converted[i] = widen(row)
		}

		return positionRows(converted)
	default:
		return nil, ErrBadPositions
	}
}

func positionRows(rows [][]float64) ([]hrir.Position, error) {
	positions := make([]hrir.Position, len(rows))

	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: row %d has %d coordinates", ErrBadPositions, i, len(row))
		}

		positions[i] = hrir.Position{Azimuth: row[0], Elevation: row[1]}
		if len(row) > 2 {
			positions[i].Distance = row[2]
		}
	}

	return positions, nil
}

// toStereoIRs converts the Data.IR payload, keeping the first two receivers
// (left, right) of every measurement.
func toStereoIRs(values any) ([]hrir.StereoIR, error) {
	switch cube := values.(type) {
	case [][][]float64:
		return irRows(cube)
	case [][][]float32:
		converted := make([][][]float64, len(cube))
		for i, receivers := range cube {
			converted[i] = make([][]float64, len(receivers))
			for r, row := range receivers {
				converted[i][r] = widen(row)
			}
		}

		return irRows(converted)
	default:
		return nil, ErrBadIR
	}
}

func irRows(cube [][][]float64) ([]hrir.StereoIR, error) {
	irs := make([]hrir.StereoIR, len(cube))

	for i, receivers := range cube {
		if len(receivers) < 2 {
			return nil, fmt.Errorf("%w: measurement %d has %d receivers", ErrBadIR, i, len(receivers))
		}

		irs[i] = hrir.StereoIR{
			Left:  receivers[0],
			Right: receivers[1],
		}
	}

	return irs, nil
}

// toScalar converts the Data.SamplingRate payload; some containers store it
// as a 1-element vector rather than a true scalar.
func toScalar(values any) (float64, error) {
	switch v := values.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case []float64:
		if len(v) == 0 {
			return 0, ErrBadSampleRate
		}

		return v[0], nil
	case []float32:
		if len(v) == 0 {
			return 0, ErrBadSampleRate
		}

		return float64(v[0]), nil
	case []int32:
		if len(v) == 0 {
			return 0, ErrBadSampleRate
		}

		return float64(v[0]), nil
	default:
		return 0, ErrBadSampleRate
	}
}

func widen(row []float32) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = float64(v)
	}

	return out
}
