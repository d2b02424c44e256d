// Package report turns collected benchmark results into software versus
// hardware comparison tables and charts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/weiihann/aeadbench/config"
	"github.com/weiihann/aeadbench/results"
	"github.com/weiihann/aeadbench/sweep"
)

// Input holds the collected result directories of both backends.
type Input struct {
	Software *results.Collection
	Hardware *results.Collection
}

// Load collects both backend result directories of cfg.
func Load(c *results.Collector, cfg config.Config) (*Input, error) {
	sw, err := c.Collect(cfg.ResultDir(sweep.Software), sweep.Software)
	if err != nil {
		return nil, err
	}

	hw, err := c.Collect(cfg.ResultDir(sweep.Hardware), sweep.Hardware)
	if err != nil {
		return nil, err
	}

	return &Input{Software: sw, Hardware: hw}, nil
}

// Collection returns the collection of a backend.
func (in *Input) Collection(b sweep.Backend) *results.Collection {
	if b == sweep.Hardware {
		return in.Hardware
	}

	return in.Software
}

// Algorithms returns the sorted union of algorithms in both collections.
// A non-empty filter replaces the discovered set.
func (in *Input) Algorithms(filter []string) []string {
	if len(filter) > 0 {
		out := slices.Clone(filter)
		slices.Sort(out)

		return slices.Compact(out)
	}

	out := append(in.Software.Algorithms(), in.Hardware.Algorithms()...)
	slices.Sort(out)

	return slices.Compact(out)
}

// Compare aggregates every algorithm over axes.
func (in *Input) Compare(axes sweep.Axes, algorithms []string) []*results.Comparison {
	out := make([]*results.Comparison, len(algorithms))
	for i, alg := range algorithms {
		out[i] = results.Aggregate(alg, axes, in.Software, in.Hardware)
	}

	return out
}

// Diagnostics returns the files skipped during collection.
func (in *Input) Diagnostics() []results.Diagnostic {
	return append(slices.Clone(in.Software.Diagnostics), in.Hardware.Diagnostics...)
}

// Generate writes a markdown comparison table per algorithm.
func Generate(w io.Writer, cmps []*results.Comparison) error {
	if len(cmps) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "# Software vs Hardware")

	for _, cmp := range cmps {
		fmt.Fprintln(w)
		generateAlgorithm(w, cmp)
	}

	return nil
}

func generateAlgorithm(w io.Writer, cmp *results.Comparison) {
	sw, hw := cmp.Software, cmp.Hardware
	total := len(sw.Nums) * len(sw.Sizes)

	fmt.Fprintf(w, "## %s\n", cmp.Algorithm)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Coverage: software %d/%d, hardware %d/%d\n",
		sw.Present(), total, hw.Present(), total)

	if peak, ok := findPeak(cmp); ok {
		fmt.Fprintf(w, "Peak throughput factor: **%s** at num=%d, size=%d\n",
			formatFactor(peak.factor), peak.num, peak.size)
	}

	fmt.Fprintln(w)

	if sw.Present() == 0 && hw.Present() == 0 {
		fmt.Fprintln(w, "No data.")
	} else {
		fmt.Fprintln(w, "| Num | Size | SW Throughput | HW Throughput | Factor "+
			"| SW Rate | HW Rate | Factor |")
		fmt.Fprintln(w, "|-----|------|---------------|---------------|--------"+
			"|---------|---------|--------|")

		for _, num := range sw.Nums {
			for _, size := range sw.Sizes {
				s, h := sw.Cell(num, size), hw.Cell(num, size)
				if !s.Present && !h.Present {
					continue
				}

				fmt.Fprintf(w, "| %d | %d | %s | %s | %s | %s | %s | %s |\n",
					num, size,
					formatThroughput(s),
					formatThroughput(h),
					formatFactor(NewFactor(s, h, Throughput)),
					formatRate(s),
					formatRate(h),
					formatFactor(NewFactor(s, h, MessageRate)),
				)
			}
		}
	}

	if len(cmp.Skipped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Skipped:")

		for _, s := range cmp.Skipped {
			fmt.Fprintf(w, "  - %s %s: %s\n", s.Backend, s.Key.Filename(), s.Reason)
		}
	}
}

type jsonSkip struct {
	Backend string `json:"backend"`
	File    string `json:"file"`
	Reason  string `json:"reason"`
}

type jsonComparison struct {
	Algorithm string          `json:"algorithm"`
	Software  *results.Matrix `json:"software"`
	Hardware  *results.Matrix `json:"hardware"`
	Series    []Series        `json:"series"`
	Skipped   []jsonSkip      `json:"skipped,omitempty"`
}

// GenerateJSON writes the matrices and series of cmps as JSON to w.
func GenerateJSON(w io.Writer, cmps []*results.Comparison) error {
	out := make([]jsonComparison, len(cmps))

	for i, cmp := range cmps {
		jc := jsonComparison{
			Algorithm: cmp.Algorithm,
			Software:  cmp.Software,
			Hardware:  cmp.Hardware,
			Series:    AllSeries(cmp),
		}

		for _, s := range cmp.Skipped {
			jc.Skipped = append(jc.Skipped, jsonSkip{
				Backend: s.Backend.String(),
				File:    s.Key.Filename(),
				Reason:  s.Reason,
			})
		}

		out[i] = jc
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

type peak struct {
	factor    Factor
	num, size int
}

func findPeak(cmp *results.Comparison) (peak, bool) {
	var (
		best  peak
		found bool
	)

	for _, num := range cmp.Software.Nums {
		for _, size := range cmp.Software.Sizes {
			f := NewFactor(cmp.Software.Cell(num, size), cmp.Hardware.Cell(num, size), Throughput)
			if !f.Defined {
				continue
			}

			if !found || f.Value > best.factor.Value {
				best = peak{factor: f, num: num, size: size}
				found = true
			}
		}
	}

	return best, found
}

func formatFactor(f Factor) string {
	if !f.Defined {
		return "undefined"
	}

	return fmt.Sprintf("%.2fx", f.Value)
}

func formatThroughput(c results.Cell) string {
	if !c.Present {
		return "-"
	}

	if c.MeanThroughputMBs >= results.MBPerGB {
		return fmt.Sprintf("%.2f GB/s", c.MeanThroughputMBs/results.MBPerGB)
	}

	return fmt.Sprintf("%.1f MB/s", c.MeanThroughputMBs)
}

func formatRate(c results.Cell) string {
	if !c.Present {
		return "-"
	}

	units := []string{"", "K", "M", "G"}
	size := float64(c.MeanMessageRate)
	unit := 0

	for size >= 1000 && unit < len(units)-1 {
		size /= 1000
		unit++
	}

	formatted := fmt.Sprintf("%.1f", size)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimRight(formatted, ".")

	return formatted + units[unit] + " msg/s"
}
