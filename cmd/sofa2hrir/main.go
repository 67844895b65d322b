// Command sofa2hrir converts a SOFA HRIR measurement set into the compact
// .hrir coefficient format consumed by the spatial renderer.
//
// Usage:
//
//	sofa2hrir [flags] <input.sofa> <output.hrir>
//
// Examples:
//
//	sofa2hrir subject_003.sofa subject_003.hrir
//	sofa2hrir -layout cube -gain 8 ~/hrtf/kemar.sofa kemar.hrir
//	sofa2hrir -layout cube -decode transpose in.sofa out.hrir
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-ambisonic/assemble"
	"github.com/cwbudde/algo-ambisonic/bformat"
	"github.com/cwbudde/algo-ambisonic/grid"
	"github.com/cwbudde/algo-ambisonic/hrir"
	"github.com/cwbudde/algo-ambisonic/hrirfile"
	"github.com/cwbudde/algo-ambisonic/match"
	"github.com/cwbudde/algo-ambisonic/sofa"
)

func main() {
	layout := flag.String("layout", "tetra", `virtual speaker layout: "tetra" or "cube"`)
	decode := flag.String("decode", "pinv", `decode strategy for -layout cube: "pinv" or "transpose"`)
	gain := flag.Float64("gain", assemble.DefaultGain, "loudness correction applied to impulse responses")
	tolerance := flag.Float64("tolerance", 5, "maximum angular matching error in degrees (tetra layout)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: sofa2hrir [flags] <input.sofa> <output.hrir>")
		os.Exit(1)
	}

	solver, err := solverFor(*decode)
	if err != nil {
		fatal(err)
	}

	if *layout != "tetra" && *layout != "cube" {
		fatal(fmt.Errorf("unknown layout %q", *layout))
	}

	inPath, err := expandHome(flag.Arg(0))
	if err != nil {
		fatal(err)
	}

	outPath, err := expandHome(flag.Arg(1))
	if err != nil {
		fatal(err)
	}

	ds, err := sofa.Open(inPath)
	if err != nil {
		fatal(err)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fatal(err)
	}

	switch *layout {
	case "tetra":
		err = writeTetra(out, ds, *gain, *tolerance)
	case "cube":
		err = writeCube(out, ds, solver, *gain)
	}

	if cerr := out.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		fatal(err)
	}
}

// writeTetra resolves each tetrahedron vertex to a measurement (direct or
// midpoint-interpolated) and writes one virtual-speaker feed per vertex.
func writeTetra(w io.Writer, ds *hrir.Dataset, gain, tolDeg float64) error {
	vectors := grid.Tetrahedron()

	enc, err := bformat.EncodeVectors(vectors)
	if err != nil {
		return err
	}

	sources, err := assemble.ResolveSources(ds.Positions, vectors, tolDeg)
	if err != nil {
		return err
	}

	feeds, err := assemble.Feeds(enc, ds, sources, assemble.WithGain(gain))
	if err != nil {
		return err
	}

	return hrirfile.WriteFeeds(w, ds.SampleRate, feeds)
}

// writeCube decodes the 8-direction layout down to the four ambisonic
// channels and writes one coefficient group per ear.
func writeCube(w io.Writer, ds *hrir.Dataset, solver bformat.Solver, gain float64) error {
	dirs := grid.Cube()

	enc, err := bformat.EncodeDirections(dirs)
	if err != nil {
		return err
	}

	dec, err := solver.Decode(enc)
	if err != nil {
		return err
	}

	indices, err := match.Nearest(ds.Positions, dirs)
	if err != nil {
		return err
	}

	cs, err := assemble.Channels(dec, ds, indices, assemble.WithGain(gain))
	if err != nil {
		return err
	}

	return hrirfile.WriteChannels(w, cs)
}

func solverFor(name string) (bformat.Solver, error) {
	switch name {
	case "pinv":
		return bformat.LeastSquaresSolver{}, nil
	case "transpose":
		return bformat.TransposeSolver{}, nil
	default:
		return nil, fmt.Errorf("unknown decode strategy %q", name)
	}
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: sofa2hrir [flags] <input.sofa> <output.hrir>\n\n")
	fmt.Fprintf(os.Stderr, "Converts a SOFA HRIR measurement set into the .hrir coefficient format.\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  sofa2hrir subject_003.sofa subject_003.hrir\n")
	fmt.Fprintf(os.Stderr, "  sofa2hrir -layout cube -gain 8 ~/hrtf/kemar.sofa kemar.hrir\n")
}
