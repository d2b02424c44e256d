// Package sweep enumerates the benchmark configuration space: the cartesian
// product of message sizes and message counts, crossed with the backends and
// benchmark targets being measured.
package sweep

import (
	"fmt"
	"strings"
)

// Backend is the implementation variant being measured.
type Backend int

const (
	// Software is the CPU implementation.
	Software Backend = iota
	// Hardware is the FPGA-accelerated implementation.
	Hardware
)

// String returns the backend name used in directory and file names.
func (b Backend) String() string {
	switch b {
	case Software:
		return "software"
	case Hardware:
		return "hardware"
	default:
		return fmt.Sprintf("backend(%d)", int(b))
	}
}

// ParseBackend maps a backend name back to its value.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(s) {
	case "software", "sw":
		return Software, nil
	case "hardware", "hw":
		return Hardware, nil
	default:
		return 0, fmt.Errorf("unknown backend %q", s)
	}
}

// Backends returns both backends in reporting order.
func Backends() []Backend {
	return []Backend{Software, Hardware}
}

// DefaultAxis is the discrete domain shared by both sweep axes.
var DefaultAxis = []int{64, 128, 256, 512, 1024, 2048, 4096, 8192}

// Axes holds the two sweep dimensions.
type Axes struct {
	Sizes []int
	Nums  []int
}

// DefaultAxes returns fresh copies of the default axes.
func DefaultAxes() Axes {
	return Axes{
		Sizes: append([]int(nil), DefaultAxis...),
		Nums:  append([]int(nil), DefaultAxis...),
	}
}

// Len returns the number of points in the axis product.
func (a Axes) Len() int {
	return len(a.Sizes) * len(a.Nums)
}

// Pair is one point of the sweep.
type Pair struct {
	Size int
	Num  int
}

// Generate returns the cartesian product of sizes and nums, outer loop over
// sizes, inner loop over nums. The order is stable for a given input so a
// partially completed sweep can be resumed.
func Generate(sizes, nums []int) []Pair {
	pairs := make([]Pair, 0, len(sizes)*len(nums))

	for _, size := range sizes {
		for _, num := range nums {
			pairs = append(pairs, Pair{Size: size, Num: num})
		}
	}

	return pairs
}

// Pairs is Generate over the receiver's axes.
func (a Axes) Pairs() []Pair {
	return Generate(a.Sizes, a.Nums)
}

// Config fully determines one external benchmark invocation.
//
// Target selects the benchmark program. For the hardware backend it is the
// benchmark directory name (e.g. "aes256GcmEncrypt"); the software binary
// covers every algorithm in one run and leaves Target empty.
type Config struct {
	Target  string
	Backend Backend
	MsgSize int
	MsgNum  int
	Runs    int
}

// String returns a compact identifier for logs.
func (c Config) String() string {
	target := c.Target
	if target == "" {
		target = "all"
	}

	return fmt.Sprintf("%s/%s len=%d num=%d runs=%d",
		c.Backend, target, c.MsgSize, c.MsgNum, c.Runs)
}

// Expand crosses the targets with every pair, targets outermost.
func Expand(backend Backend, targets []string, pairs []Pair, runs int) []Config {
	if len(targets) == 0 {
		targets = []string{""}
	}

	configs := make([]Config, 0, len(targets)*len(pairs))

	for _, target := range targets {
		for _, p := range pairs {
			configs = append(configs, Config{
				Target:  target,
				Backend: backend,
				MsgSize: p.Size,
				MsgNum:  p.Num,
				Runs:    runs,
			})
		}
	}

	return configs
}
