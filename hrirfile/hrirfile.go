// Package hrirfile reads and writes the plain-text coefficient format
// consumed by the spatial renderer.
//
// The layout is a sampling-rate line, a blank line, then groups of
// comma-space-joined values, each group terminated by a blank line:
//
//	<sampling_rate>
//
//	<group 1 rows>
//
//	<group 2 rows>
//	...
//
// Channel files carry two groups (left ear, right ear) with one
// four-coefficient row per output sample. Feed files carry one group per
// virtual speaker, each with three rows: channel weights, left-ear samples,
// right-ear samples. Values are written at full precision; this exact
// layout is the contract the downstream renderer parses.
package hrirfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-ambisonic/assemble"
	"github.com/cwbudde/algo-ambisonic/bformat"
)

// Errors reported by reading and writing.
var (
	ErrNilChannelSet = errors.New("hrirfile: nil channel set")
	ErrNoFeeds       = errors.New("hrirfile: no feeds")
	ErrRagged        = errors.New("hrirfile: channel arrays do not share one sample count")
	ErrFormat        = errors.New("hrirfile: malformed file")
)

const separator = ", "

// WriteChannels writes a channel set as two groups, left ear first. Each
// group holds one row per output sample with the four channel coefficients
// W, X, Y, Z.
func WriteChannels(w io.Writer, cs *assemble.ChannelSet) error {
	if cs == nil {
		return ErrNilChannelSet
	}

	n := cs.SampleCount()
	for _, side := range [2]*[bformat.Channels][]float64{&cs.Left, &cs.Right} {
		for _, channel := range side {
			if len(channel) != n {
				return ErrRagged
			}
		}
	}

	bw := bufio.NewWriter(w)

	writeHeader(bw, cs.SampleRate)

	row := make([]float64, bformat.Channels)

	for _, side := range [2]*[bformat.Channels][]float64{&cs.Left, &cs.Right} {
		for t := 0; t < n; t++ {
			for j := range row {
				row[j] = side[j][t]
			}

			writeRow(bw, row)
		}

		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// WriteFeeds writes one group per virtual-speaker feed: the four channel
// weights, the left-ear samples, then the right-ear samples.
func WriteFeeds(w io.Writer, sampleRate float64, feeds []assemble.Feed) error {
	if len(feeds) == 0 {
		return ErrNoFeeds
	}

	bw := bufio.NewWriter(w)

	writeHeader(bw, sampleRate)

	for _, f := range feeds {
		writeRow(bw, f.Weights[:])
		writeRow(bw, f.Left)
		writeRow(bw, f.Right)
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// ReadChannels parses a channel-layout file back into a channel set,
// mirroring what the downstream renderer does: the sampling-rate line, a
// blank line, then one four-coefficient row per sample for each ear group.
func ReadChannels(r io.Reader) (*assemble.ChannelSet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	line, err := nextLine(sc)
	if err != nil {
		return nil, fmt.Errorf("%w: missing sampling rate: %v", ErrFormat, err)
	}

	rate, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: sampling rate %q", ErrFormat, line)
	}

	if blank, err := nextLine(sc); err != nil || blank != "" {
		return nil, fmt.Errorf("%w: expected blank line after sampling rate", ErrFormat)
	}

	cs := &assemble.ChannelSet{SampleRate: rate}

	for _, side := range [2]*[bformat.Channels][]float64{&cs.Left, &cs.Right} {
		for {
			line, err := nextLine(sc)
			if err != nil {
				return nil, fmt.Errorf("%w: unexpected end of file", ErrFormat)
			}

			if line == "" {
				break
			}

			fields := strings.Split(line, separator)
			if len(fields) != bformat.Channels {
				return nil, fmt.Errorf("%w: row has %d values, want %d", ErrFormat, len(fields), bformat.Channels)
			}

			for j, field := range fields {
				v, err := strconv.ParseFloat(field, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: value %q", ErrFormat, field)
				}

				side[j] = append(side[j], v)
			}
		}
	}

	if len(cs.Left[0]) == 0 || len(cs.Right[0]) == 0 {
		return nil, fmt.Errorf("%w: empty coefficient group", ErrFormat)
	}

	if len(cs.Left[0]) != len(cs.Right[0]) {
		return nil, fmt.Errorf("%w: ear groups differ in length", ErrFormat)
	}

	return cs, nil
}

// formatValue writes a float at full precision, matching the layout the
// renderer parses (no rounding).
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeHeader(bw *bufio.Writer, sampleRate float64) {
	bw.WriteString(formatValue(sampleRate))
	bw.WriteString("\n\n")
}

func writeRow(bw *bufio.Writer, values []float64) {
	for i, v := range values {
		if i > 0 {
			bw.WriteString(separator)
		}

		bw.WriteString(formatValue(v))
	}

	bw.WriteByte('\n')
}

func nextLine(sc *bufio.Scanner) (string, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return sc.Text(), nil
}
