package report

import (
	"errors"
	"fmt"
	"slices"

	"github.com/weiihann/aeadbench/results"
)

// FixedAxis names the sweep dimension held constant along a series.
type FixedAxis int

const (
	// FixedNum holds msgNum constant and varies msgSize.
	FixedNum FixedAxis = iota
	// FixedSize holds msgSize constant and varies msgNum.
	FixedSize
)

// String returns the file-name fragment of the axis.
func (a FixedAxis) String() string {
	if a == FixedSize {
		return "fixed_size"
	}

	return "fixed_num"
}

// MarshalText encodes the axis by name.
func (a FixedAxis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// VaryingLabel names the axis that varies along the series.
func (a FixedAxis) VaryingLabel() string {
	if a == FixedSize {
		return "Message count"
	}

	return "Message size (bytes)"
}

// Metric is a reported quantity of a cell.
type Metric int

const (
	Throughput Metric = iota
	MessageRate
)

// String returns the directory and file-name fragment of the metric.
func (m Metric) String() string {
	if m == MessageRate {
		return "message_rate"
	}

	return "throughput"
}

// Unit is the axis label of the metric.
func (m Metric) Unit() string {
	if m == MessageRate {
		return "Messages/s"
	}

	return "MB/s"
}

// Value extracts the metric from c.
func (m Metric) Value(c results.Cell) float64 {
	if m == MessageRate {
		return float64(c.MeanMessageRate)
	}

	return c.MeanThroughputMBs
}

// Metrics lists every reported metric.
func Metrics() []Metric {
	return []Metric{Throughput, MessageRate}
}

// ErrUndefinedFactor marks a factor that cannot be computed.
var ErrUndefinedFactor = errors.New("undefined factor")

// Reasons a factor is undefined.
const (
	ReasonSoftwareAbsent = "no software data"
	ReasonHardwareAbsent = "no hardware data"
	ReasonHardwareZero   = "hardware value is zero"
)

// Factor is software/hardware for one metric at one point. An undefined
// factor has a zero Value and a Reason; it is never Inf or NaN.
type Factor struct {
	Value   float64 `json:"value,omitempty"`
	Defined bool    `json:"defined"`
	Reason  string  `json:"reason,omitempty"`
}

// Err returns nil for a defined factor and ErrUndefinedFactor otherwise.
func (f Factor) Err() error {
	if f.Defined {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrUndefinedFactor, f.Reason)
}

// NewFactor computes the software/hardware ratio of m.
func NewFactor(software, hardware results.Cell, m Metric) Factor {
	switch {
	case !software.Present:
		return Factor{Reason: ReasonSoftwareAbsent}
	case !hardware.Present:
		return Factor{Reason: ReasonHardwareAbsent}
	}

	denom := m.Value(hardware)
	if denom == 0 {
		return Factor{Reason: ReasonHardwareZero}
	}

	return Factor{Value: m.Value(software) / denom, Defined: true}
}

// Point is one position along a series.
type Point struct {
	// X is the value of the varying axis.
	X                 int          `json:"x"`
	Software          results.Cell `json:"software"`
	Hardware          results.Cell `json:"hardware"`
	ThroughputFactor  Factor       `json:"throughput_factor"`
	MessageRateFactor Factor       `json:"message_rate_factor"`
}

// Factor returns the factor of m at the point.
func (p Point) Factor(m Metric) Factor {
	if m == MessageRate {
		return p.MessageRateFactor
	}

	return p.ThroughputFactor
}

// Series is the ordered sequence of points of one algorithm with one axis
// held at Value.
type Series struct {
	Algorithm string    `json:"algorithm"`
	Fixed     FixedAxis `json:"fixed"`
	Value     int       `json:"value"`
	Points    []Point   `json:"points"`
}

// Name is the file-name stem shared by every chart of the series.
func (s Series) Name() string {
	return fmt.Sprintf("%s_%d_%s", s.Algorithm, s.Value, s.Fixed)
}

// BuildSeries extracts the series of cmp with fixed held at value. Points
// are ordered along the varying axis as configured.
func BuildSeries(cmp *results.Comparison, fixed FixedAxis, value int) (Series, error) {
	sw, hw := cmp.Software, cmp.Hardware

	var (
		xs           []int
		swRow, hwRow []results.Cell
	)

	switch fixed {
	case FixedNum:
		if !slices.Contains(sw.Nums, value) {
			return Series{}, fmt.Errorf("msgNum %d is not on the sweep axis", value)
		}
		xs, swRow, hwRow = sw.Sizes, sw.Row(value), hw.Row(value)
	case FixedSize:
		if !slices.Contains(sw.Sizes, value) {
			return Series{}, fmt.Errorf("msgSize %d is not on the sweep axis", value)
		}
		xs, swRow, hwRow = sw.Nums, sw.Column(value), hw.Column(value)
	default:
		return Series{}, fmt.Errorf("unknown fixed axis %d", fixed)
	}

	s := Series{
		Algorithm: cmp.Algorithm,
		Fixed:     fixed,
		Value:     value,
		Points:    make([]Point, len(xs)),
	}

	for i, x := range xs {
		s.Points[i] = Point{
			X:                 x,
			Software:          swRow[i],
			Hardware:          hwRow[i],
			ThroughputFactor:  NewFactor(swRow[i], hwRow[i], Throughput),
			MessageRateFactor: NewFactor(swRow[i], hwRow[i], MessageRate),
		}
	}

	return s, nil
}

// AllSeries returns every fixed-num series followed by every fixed-size
// series of cmp.
func AllSeries(cmp *results.Comparison) []Series {
	out := make([]Series, 0, len(cmp.Software.Nums)+len(cmp.Software.Sizes))

	for _, num := range cmp.Software.Nums {
		s, _ := BuildSeries(cmp, FixedNum, num)
		out = append(out, s)
	}

	for _, size := range cmp.Software.Sizes {
		s, _ := BuildSeries(cmp, FixedSize, size)
		out = append(out, s)
	}

	return out
}
