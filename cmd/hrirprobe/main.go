// Command hrirprobe inspects .hrir coefficient files produced by sofa2hrir
// (channel layout).
//
// Usage:
//
//	hrirprobe [flags] <file.hrir>
//
// It prints the sample rate, sample count and per-channel peak amplitude.
// With -wav it additionally writes each ear group as a 4-channel 16-bit
// WAV file for auditioning; with -spectrum it prints the dominant FFT bin
// per channel.
//
// Examples:
//
//	hrirprobe kemar.hrir
//	hrirprobe -spectrum kemar.hrir
//	hrirprobe -wav kemar kemar.hrir
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-ambisonic/assemble"
	"github.com/cwbudde/algo-ambisonic/bformat"
	"github.com/cwbudde/algo-ambisonic/hrirfile"
)

var channelNames = [bformat.Channels]string{"W", "X", "Y", "Z"}

func main() {
	wavPrefix := flag.String("wav", "", "write ear groups as <prefix>_left.wav and <prefix>_right.wav")
	spectrum := flag.Bool("spectrum", false, "print the dominant FFT bin per channel")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: hrirprobe [flags] <file.hrir>")
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fatal(err)
	}

	cs, err := hrirfile.ReadChannels(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		fatal(err)
	}

	printSummary(cs)

	if *spectrum {
		if err := printSpectrum(cs); err != nil {
			fatal(err)
		}
	}

	if *wavPrefix != "" {
		if err := writeWAV(*wavPrefix+"_left.wav", cs.SampleRate, &cs.Left); err != nil {
			fatal(err)
		}

		if err := writeWAV(*wavPrefix+"_right.wav", cs.SampleRate, &cs.Right); err != nil {
			fatal(err)
		}
	}
}

func printSummary(cs *assemble.ChannelSet) {
	fmt.Printf("sample rate: %g Hz\n", cs.SampleRate)
	fmt.Printf("samples:     %d per channel\n", cs.SampleCount())

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tPeak L\tPeak R\n")

	for j := 0; j < bformat.Channels; j++ {
		fmt.Fprintf(tw, "%s\t%.6f\t%.6f\n",
			channelNames[j],
			vecmath.MaxAbs(cs.Left[j]),
			vecmath.MaxAbs(cs.Right[j]),
		)
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

// printSpectrum reports the strongest magnitude bin per channel and side.
func printSpectrum(cs *assemble.ChannelSet) error {
	n := cs.SampleCount()

	fftSize := nextPowerOf2(n)
	if fftSize < 2 {
		fftSize = 2
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tSide\tPeak bin\tFrequency [Hz]\tMagnitude\n")

	for j := 0; j < bformat.Channels; j++ {
		sides := [2]struct {
			name    string
			samples []float64
		}{
			{"L", cs.Left[j]},
			{"R", cs.Right[j]},
		}

		for _, side := range sides {
			bin, magnitude, err := peakBin(plan, side.samples, fftSize)
			if err != nil {
				return err
			}

			freq := float64(bin) * cs.SampleRate / float64(fftSize)
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%.6f\n", channelNames[j], side.name, bin, freq, magnitude)
		}
	}

	return tw.Flush()
}

// forwardPlan is the slice of the FFT plan API the probe needs.
type forwardPlan interface {
	Forward(dst, src []complex128) error
}

// peakBin returns the strongest non-negative-frequency bin of the signal.
func peakBin(plan forwardPlan, samples []float64, fftSize int) (int, float64, error) {
	in := make([]complex128, fftSize)
	for i, v := range samples {
		in[i] = complex(v, 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return 0, 0, err
	}

	half := fftSize/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)

	for i := 0; i < half; i++ {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	magnitudes := make([]float64, half)
	vecmath.Magnitude(magnitudes, re, im)

	bin := 0
	peak := magnitudes[0]

	for i, m := range magnitudes {
		if m > peak {
			peak = m
			bin = i
		}
	}

	return bin, peak, nil
}

// writeWAV exports the four channel arrays as an interleaved 16-bit WAV.
func writeWAV(path string, sampleRate float64, channels *[bformat.Channels][]float64) error {
	n := len(channels[0])

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: bformat.Channels,
			SampleRate:  int(sampleRate),
		},
		Data:           make([]int, 0, bformat.Channels*n),
		SourceBitDepth: 16,
	}

	for t := 0; t < n; t++ {
		for j := 0; j < bformat.Channels; j++ {
			buf.Data = append(buf.Data, toPCM16(channels[j][t]))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, int(sampleRate), 16, bformat.Channels, 1)

	err = enc.Write(buf)
	if cerr := enc.Close(); err == nil {
		err = cerr
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	return err
}

// toPCM16 clips to [-1, 1] and scales to the 16-bit integer range.
func toPCM16(v float64) int {
	if v > 1 {
		v = 1
	}

	if v < -1 {
		v = -1
	}

	return int(math.Round(v * 32767))
}

func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}

	return size
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: hrirprobe [flags] <file.hrir>\n\n")
	fmt.Fprintf(os.Stderr, "Inspects .hrir coefficient files (channel layout).\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  hrirprobe kemar.hrir\n")
	fmt.Fprintf(os.Stderr, "  hrirprobe -wav kemar kemar.hrir\n")
}
