package results

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/weiihann/aeadbench/sweep"
)

// MBPerGB rescales the GB/s reported by the executables to MB/s.
const MBPerGB = 1000

// Cell is the aggregate of one (msgNum, msgSize) point. An absent cell has
// Present unset and all numeric fields zero.
type Cell struct {
	Present           bool    `json:"present"`
	Samples           int     `json:"samples,omitempty"`
	MeanTimeUs        float64 `json:"mean_time_us"`
	MeanThroughputMBs float64 `json:"mean_throughput_mbs"`
	MeanMessageRate   int64   `json:"mean_message_rate"`
}

// ComputeCell derives the aggregate of a series measured at msgNum messages.
//
// The message rate is averaged per run: each sample's own rate
// msgNum/(time/1e6) is computed first, then the rates are averaged.
func ComputeCell(s Series, msgNum int) (Cell, error) {
	if len(s) == 0 {
		return Cell{}, errors.New("no samples")
	}

	times := s.Times()
	rates := make([]float64, len(times))

	for i, t := range times {
		if !(t > 0) || math.IsInf(t, 0) {
			return Cell{}, fmt.Errorf("sample %d: invalid time %v", i, t)
		}

		rates[i] = float64(msgNum) / (t / 1e6)
	}

	return Cell{
		Present:           true,
		Samples:           len(s),
		MeanTimeUs:        stat.Mean(times, nil),
		MeanThroughputMBs: stat.Mean(s.Throughputs(), nil) * MBPerGB,
		MeanMessageRate:   int64(stat.Mean(rates, nil)),
	}, nil
}

// Matrix maps msgNum -> msgSize -> Cell for one backend of one algorithm.
// It always holds a cell for every point of its axes.
type Matrix struct {
	Algorithm string               `json:"algorithm"`
	Backend   string               `json:"backend"`
	Nums      []int                `json:"msg_nums"`
	Sizes     []int                `json:"msg_sizes"`
	Cells     map[int]map[int]Cell `json:"cells"`
}

// NewMatrix returns a matrix with an absent cell at every axis point.
func NewMatrix(algorithm string, backend sweep.Backend, axes sweep.Axes) *Matrix {
	m := &Matrix{
		Algorithm: algorithm,
		Backend:   backend.String(),
		Nums:      slices.Clone(axes.Nums),
		Sizes:     slices.Clone(axes.Sizes),
		Cells:     make(map[int]map[int]Cell, len(axes.Nums)),
	}

	for _, num := range axes.Nums {
		row := make(map[int]Cell, len(axes.Sizes))
		for _, size := range axes.Sizes {
			row[size] = Cell{}
		}
		m.Cells[num] = row
	}

	return m
}

// Cell returns the cell at (num, size); points outside the axes are absent.
func (m *Matrix) Cell(num, size int) Cell {
	return m.Cells[num][size]
}

// Contains reports whether (num, size) lies on the matrix axes.
func (m *Matrix) Contains(num, size int) bool {
	_, ok := m.Cells[num][size]

	return ok
}

// Set overwrites the cell at (num, size). It returns false when the point
// is outside the axes.
func (m *Matrix) Set(num, size int, c Cell) bool {
	if !m.Contains(num, size) {
		return false
	}

	m.Cells[num][size] = c

	return true
}

// Row returns the cells at a fixed msgNum, ordered by msgSize.
func (m *Matrix) Row(num int) []Cell {
	out := make([]Cell, len(m.Sizes))
	for i, size := range m.Sizes {
		out[i] = m.Cell(num, size)
	}

	return out
}

// Column returns the cells at a fixed msgSize, ordered by msgNum.
func (m *Matrix) Column(size int) []Cell {
	out := make([]Cell, len(m.Nums))
	for i, num := range m.Nums {
		out[i] = m.Cell(num, size)
	}

	return out
}

// Present counts the measured cells.
func (m *Matrix) Present() int {
	n := 0
	for _, row := range m.Cells {
		for _, c := range row {
			if c.Present {
				n++
			}
		}
	}

	return n
}

// Skip records a series that was not placed into a matrix.
type Skip struct {
	Backend sweep.Backend
	Key     Key
	Reason  string
}

// Comparison is the pair of backend matrices for one algorithm.
type Comparison struct {
	Algorithm string
	Software  *Matrix
	Hardware  *Matrix
	Skipped   []Skip
}

// Matrix returns the matrix of a backend.
func (c *Comparison) Matrix(b sweep.Backend) *Matrix {
	if b == sweep.Hardware {
		return c.Hardware
	}

	return c.Software
}

// Aggregate folds the series of algorithm from both collections into a
// Comparison over axes. Either collection may be nil. The input is never
// modified and equal inputs give equal outputs.
func Aggregate(algorithm string, axes sweep.Axes, software, hardware *Collection) *Comparison {
	out := &Comparison{
		Algorithm: algorithm,
		Software:  NewMatrix(algorithm, sweep.Software, axes),
		Hardware:  NewMatrix(algorithm, sweep.Hardware, axes),
	}

	out.fold(sweep.Software, software)
	out.fold(sweep.Hardware, hardware)

	return out
}

func (c *Comparison) fold(backend sweep.Backend, col *Collection) {
	if col == nil {
		return
	}

	keys := make([]Key, 0, len(col.Series))
	for k := range col.Series {
		if k.Algorithm == c.Algorithm {
			keys = append(keys, k)
		}
	}

	slices.SortFunc(keys, compareKeys)

	m := c.Matrix(backend)

	for _, k := range keys {
		if !m.Contains(k.MsgNum, k.MsgSize) {
			c.Skipped = append(c.Skipped, Skip{
				Backend: backend, Key: k, Reason: "outside sweep axes",
			})

			continue
		}

		cell, err := ComputeCell(col.Series[k], k.MsgNum)
		if err != nil {
			c.Skipped = append(c.Skipped, Skip{
				Backend: backend, Key: k, Reason: err.Error(),
			})

			continue
		}

		m.Set(k.MsgNum, k.MsgSize, cell)
	}
}

func compareKeys(a, b Key) int {
	return cmp.Or(
		cmp.Compare(a.MsgNum, b.MsgNum),
		cmp.Compare(a.MsgSize, b.MsgSize),
	)
}
