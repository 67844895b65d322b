package hrir

import (
	"errors"
	"testing"
)

func validDataset() *Dataset {
	return &Dataset{
		Positions: []Position{
			{Azimuth: 0, Elevation: 0, Distance: 1.2},
			{Azimuth: 90, Elevation: -30, Distance: 1.2},
		},
		IRs: []StereoIR{
			{Left: []float64{1, 0}, Right: []float64{0, 1}},
			{Left: []float64{0.5, 0.5}, Right: []float64{0.25, 0.75}},
		},
		SampleRate: 48000,
	}
}

func TestValidate(t *testing.T) {
	if err := validDataset().Validate(); err != nil {
		t.Fatalf("valid dataset: %v", err)
	}
}

func TestValidateEmpty(t *testing.T) {
	if err := (&Dataset{SampleRate: 48000}).Validate(); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}

func TestValidateLengthMismatch(t *testing.T) {
	ds := validDataset()
	ds.Positions = ds.Positions[:1]

	if err := ds.Validate(); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
}

func TestValidateRaggedIR(t *testing.T) {
	ds := validDataset()
	ds.IRs[1].Right = ds.IRs[1].Right[:1]

	if err := ds.Validate(); !errors.Is(err, ErrRaggedIR) {
		t.Fatalf("err = %v, want ErrRaggedIR", err)
	}
}

func TestValidateSampleRate(t *testing.T) {
	ds := validDataset()
	ds.SampleRate = 0

	if err := ds.Validate(); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("err = %v, want ErrInvalidSampleRate", err)
	}
}

func TestSampleCount(t *testing.T) {
	if got := validDataset().SampleCount(); got != 2 {
		t.Fatalf("SampleCount = %d, want 2", got)
	}

	if got := (&Dataset{}).SampleCount(); got != 0 {
		t.Fatalf("empty SampleCount = %d, want 0", got)
	}
}

func TestPositionDirection(t *testing.T) {
	p := Position{Azimuth: 45, Elevation: -30, Distance: 1.5}

	d := p.Direction()
	if d.Azimuth != 45 || d.Elevation != -30 {
		t.Fatalf("direction = %+v, want (45, -30)", d)
	}
}
