package assemble

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ambisonic/bformat"
	"github.com/cwbudde/algo-ambisonic/grid"
	"github.com/cwbudde/algo-ambisonic/hrir"
)

const tolerance = 1e-9

func testDataset(count, samples int) *hrir.Dataset {
	ds := &hrir.Dataset{SampleRate: 48000}

	for i := 0; i < count; i++ {
		ds.Positions = append(ds.Positions, hrir.Position{
			Azimuth:   float64(i%36) * 10,
			Elevation: float64(i%17)*10 - 80,
			Distance:  1.2,
		})

		left := make([]float64, samples)
		right := make([]float64, samples)
		for t := range left {
			left[t] = float64(i) + float64(t)*0.25
			right[t] = -float64(i) + float64(t)*0.5
		}

		ds.IRs = append(ds.IRs, hrir.StereoIR{Left: left, Right: right})
	}

	return ds
}

func TestChannelsWeightedSum(t *testing.T) {
	ds := testDataset(16, 3)
	indices := []int{2, 5, 7, 11}

	c, err := bformat.EncodeDirections(grid.Cube()[:4])
	if err != nil {
		t.Fatalf("EncodeDirections: %v", err)
	}

	decode, err := bformat.TransposeSolver{}.Decode(c)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	gain := 2.5

	cs, err := Channels(decode, ds, indices, WithGain(gain))
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}

	if cs.SampleRate != 48000 {
		t.Fatalf("SampleRate = %v, want 48000", cs.SampleRate)
	}

	if cs.SampleCount() != 3 {
		t.Fatalf("SampleCount = %d, want 3", cs.SampleCount())
	}

	// Independently accumulate the weighted sums.
	for j := 0; j < bformat.Channels; j++ {
		for s := 0; s < 3; s++ {
			var wantL, wantR float64
			for i, idx := range indices {
				wantL += decode.At(j, i) * gain * ds.IRs[idx].Left[s]
				wantR += decode.At(j, i) * gain * ds.IRs[idx].Right[s]
			}

			if got := cs.Left[j][s]; math.Abs(got-wantL) > tolerance {
				t.Fatalf("Left[%d][%d] = %v, want %v", j, s, got, wantL)
			}

			if got := cs.Right[j][s]; math.Abs(got-wantR) > tolerance {
				t.Fatalf("Right[%d][%d] = %v, want %v", j, s, got, wantR)
			}
		}
	}
}

func TestChannelsIndexRange(t *testing.T) {
	ds := testDataset(4, 2)

	c, _ := bformat.EncodeDirections(grid.Cube()[:4])
	decode, _ := bformat.TransposeSolver{}.Decode(c)

	if _, err := Channels(decode, ds, []int{0, 1, 2, 99}); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("err = %v, want ErrIndexRange", err)
	}
}

func TestChannelsShapeMismatch(t *testing.T) {
	ds := testDataset(4, 2)

	c, _ := bformat.EncodeDirections(grid.Cube()[:4])
	decode, _ := bformat.TransposeSolver{}.Decode(c)

	if _, err := Channels(decode, ds, []int{0, 1}); !errors.Is(err, ErrShape) {
		t.Fatalf("column mismatch err = %v, want ErrShape", err)
	}

	// An 8×4 encode matrix passed where the 4×N decode belongs.
	c8, _ := bformat.EncodeDirections(grid.Cube())
	if _, err := Channels(c8, ds, []int{0, 1, 2, 3}); !errors.Is(err, ErrShape) {
		t.Fatalf("row mismatch err = %v, want ErrShape", err)
	}
}

func TestFeedsDirectAndAveraged(t *testing.T) {
	ds := testDataset(8, 2)

	enc, err := bformat.EncodeVectors(grid.Tetrahedron())
	if err != nil {
		t.Fatalf("EncodeVectors: %v", err)
	}

	sources := []Source{
		{Indices: []int{1}},
		{Indices: []int{3}},
		{Indices: []int{5}},
		{Indices: []int{2, 6}},
	}

	feeds, err := Feeds(enc, ds, sources, WithGain(1))
	if err != nil {
		t.Fatalf("Feeds: %v", err)
	}

	if len(feeds) != 4 {
		t.Fatalf("len = %d, want 4", len(feeds))
	}

	for i, f := range feeds {
		for j := range f.Weights {
			if f.Weights[j] != enc.At(i, j) {
				t.Fatalf("feed %d weight %d = %v, want %v", i, j, f.Weights[j], enc.At(i, j))
			}
		}
	}

	// Direct feed copies the measurement.
	for s := 0; s < 2; s++ {
		if got, want := feeds[0].Left[s], ds.IRs[1].Left[s]; math.Abs(got-want) > tolerance {
			t.Fatalf("feed 0 Left[%d] = %v, want %v", s, got, want)
		}
	}

	// Averaged feed is the elementwise midpoint of the pair.
	for s := 0; s < 2; s++ {
		wantL := (ds.IRs[2].Left[s] + ds.IRs[6].Left[s]) / 2
		wantR := (ds.IRs[2].Right[s] + ds.IRs[6].Right[s]) / 2

		if got := feeds[3].Left[s]; math.Abs(got-wantL) > tolerance {
			t.Fatalf("feed 3 Left[%d] = %v, want %v", s, got, wantL)
		}

		if got := feeds[3].Right[s]; math.Abs(got-wantR) > tolerance {
			t.Fatalf("feed 3 Right[%d] = %v, want %v", s, got, wantR)
		}
	}
}

func TestFeedsGain(t *testing.T) {
	ds := testDataset(4, 2)

	enc, _ := bformat.EncodeVectors(grid.Tetrahedron())

	sources := []Source{
		{Indices: []int{0}},
		{Indices: []int{1}},
		{Indices: []int{2}},
		{Indices: []int{3}},
	}

	feeds, err := Feeds(enc, ds, sources) // default gain
	if err != nil {
		t.Fatalf("Feeds: %v", err)
	}

	for s := 0; s < 2; s++ {
		want := DefaultGain * ds.IRs[1].Left[s]
		if got := feeds[1].Left[s]; math.Abs(got-want) > tolerance {
			t.Fatalf("Left[%d] = %v, want %v", s, got, want)
		}
	}
}

func TestFeedsErrors(t *testing.T) {
	ds := testDataset(4, 2)
	enc, _ := bformat.EncodeVectors(grid.Tetrahedron())

	if _, err := Feeds(enc, ds, nil); !errors.Is(err, ErrNoSources) {
		t.Fatalf("err = %v, want ErrNoSources", err)
	}

	bad := []Source{
		{Indices: []int{0}},
		{Indices: []int{1}},
		{Indices: []int{2}},
		{Indices: []int{0, 1, 2}},
	}
	if _, err := Feeds(enc, ds, bad); !errors.Is(err, ErrSourceArity) {
		t.Fatalf("err = %v, want ErrSourceArity", err)
	}

	out := []Source{
		{Indices: []int{0}},
		{Indices: []int{1}},
		{Indices: []int{2}},
		{Indices: []int{42}},
	}
	if _, err := Feeds(enc, ds, out); !errors.Is(err, ErrIndexRange) {
		t.Fatalf("err = %v, want ErrIndexRange", err)
	}
}

func TestResolveSources(t *testing.T) {
	// Direct matches for the three lower tetrahedron vertices, an
	// interpolation pair straddling the zenith for the fourth.
	lower := math.Asin(-1.0/3.0) * 180 / math.Pi

	ds := &hrir.Dataset{
		Positions: []hrir.Position{
			{Azimuth: 60, Elevation: lower},
			{Azimuth: 300, Elevation: lower},
			{Azimuth: 180, Elevation: lower},
			{Azimuth: 0, Elevation: 80},
			{Azimuth: 180, Elevation: 80},
		},
	}

	sources, err := ResolveSources(ds.Positions, grid.Tetrahedron(), 5)
	if err != nil {
		t.Fatalf("ResolveSources: %v", err)
	}

	want := []Source{
		{Indices: []int{0}},
		{Indices: []int{1}},
		{Indices: []int{2}},
		{Indices: []int{3, 4}},
	}

	for i := range want {
		if len(sources[i].Indices) != len(want[i].Indices) {
			t.Fatalf("source %d = %v, want %v", i, sources[i].Indices, want[i].Indices)
		}

		for k := range want[i].Indices {
			if sources[i].Indices[k] != want[i].Indices[k] {
				t.Fatalf("source %d = %v, want %v", i, sources[i].Indices, want[i].Indices)
			}
		}
	}
}

func TestResolveSourcesNoCoverage(t *testing.T) {
	positions := []hrir.Position{
		{Azimuth: 0, Elevation: 0},
		{Azimuth: 90, Elevation: 0},
	}

	if _, err := ResolveSources(positions, grid.Tetrahedron(), 5); err == nil {
		t.Fatal("ResolveSources accepted a rig with no zenith coverage")
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions()
	if cfg.Gain != DefaultGain {
		t.Fatalf("default gain = %v, want %v", cfg.Gain, DefaultGain)
	}

	cfg = ApplyOptions(WithGain(3), nil)
	if cfg.Gain != 3 {
		t.Fatalf("gain = %v, want 3", cfg.Gain)
	}

	cfg = ApplyOptions(WithGain(-1))
	if cfg.Gain != DefaultGain {
		t.Fatalf("gain = %v, want default for non-positive input", cfg.Gain)
	}
}
