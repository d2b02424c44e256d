package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column headers written by the benchmark executables, compared after
// trimming surrounding whitespace.
const (
	TimeColumn       = "time in microseconds"
	ThroughputColumn = "throughput (GB/s)"
)

// ErrMissingColumn is returned when a header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Sample is one benchmark repeat.
type Sample struct {
	TimeUs        float64
	ThroughputGBs float64
}

// Series is the ordered samples of one result file.
type Series []Sample

// Times returns the time column.
func (s Series) Times() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v.TimeUs
	}

	return out
}

// Throughputs returns the throughput column in GB/s.
func (s Series) Throughputs() []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = v.ThroughputGBs
	}

	return out
}

// ReadSeries parses a result CSV. Extra columns such as the leading run
// index are ignored.
func ReadSeries(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	timeIdx, tputIdx := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case TimeColumn:
			timeIdx = i
		case ThroughputColumn:
			tputIdx = i
		}
	}

	if timeIdx < 0 {
		return nil, fmt.Errorf("%q: %w", TimeColumn, ErrMissingColumn)
	}
	if tputIdx < 0 {
		return nil, fmt.Errorf("%q: %w", ThroughputColumn, ErrMissingColumn)
	}

	need := max(timeIdx, tputIdx) + 1

	var series Series

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(series)+1, err)
		}

		if len(record) < need {
			return nil, fmt.Errorf("row %d: truncated, %d of %d fields",
				len(series)+1, len(record), need)
		}

		t, err := strconv.ParseFloat(strings.TrimSpace(record[timeIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: time: %w", len(series)+1, err)
		}

		tput, err := strconv.ParseFloat(strings.TrimSpace(record[tputIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: throughput: %w", len(series)+1, err)
		}

		series = append(series, Sample{TimeUs: t, ThroughputGBs: tput})
	}

	return series, nil
}

// WriteSeries writes s in the format produced by the benchmark executables.
func WriteSeries(w io.Writer, s Series) error {
	if _, err := fmt.Fprintf(w, "run, %s, %s\n", TimeColumn, ThroughputColumn); err != nil {
		return err
	}

	for i, v := range s {
		_, err := fmt.Fprintf(w, "%d, %s, %s\n", i,
			strconv.FormatFloat(v.TimeUs, 'f', 6, 64),
			strconv.FormatFloat(v.ThroughputGBs, 'f', 6, 64),
		)
		if err != nil {
			return err
		}
	}

	return nil
}
