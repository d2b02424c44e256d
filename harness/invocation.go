package harness

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/weiihann/aeadbench/config"
	"github.com/weiihann/aeadbench/sweep"
)

// Kind classifies an external invocation.
type Kind int

const (
	// KindBenchmark is a measured benchmark run.
	KindBenchmark Kind = iota
	// KindReset is a device reset.
	KindReset
	// KindBuild is a make invocation.
	KindBuild
)

func (k Kind) String() string {
	switch k {
	case KindBenchmark:
		return "benchmark"
	case KindReset:
		return "reset"
	case KindBuild:
		return "build"
	default:
		return "unknown"
	}
}

// Invocation is one materialized external command. Relative paths are
// resolved against Dir.
type Invocation struct {
	Kind    Kind
	Backend sweep.Backend
	Path    string
	Args    []string
	Dir     string
}

// String renders the command line for logs.
func (inv Invocation) String() string {
	return strings.Join(append([]string{inv.Path}, inv.Args...), " ")
}

// BenchmarkInvocation builds the command for one sweep configuration.
//
// Both executables take -len, -num, -runs and -data_path; hardware hosts
// additionally take the kernel binary via -xclbin. The executables append
// the result file name to -data_path verbatim, so it always ends with a
// separator.
func BenchmarkInvocation(cfg config.Config, c sweep.Config) Invocation {
	inv := Invocation{
		Kind:    KindBenchmark,
		Backend: c.Backend,
	}

	var args []string

	switch c.Backend {
	case sweep.Hardware:
		inv.Dir = cfg.HardwareRunDir(c.Target)
		inv.Path = "./" + c.Target + "Benchmark.exe"
		args = append(args, "-xclbin", "./"+c.Target+"Kernel.xclbin")
	default:
		inv.Dir = cfg.SoftwareSrcDir
		inv.Path = cfg.SoftwareBinary
	}

	inv.Args = append(args,
		"-len", strconv.Itoa(c.MsgSize),
		"-num", strconv.Itoa(c.MsgNum),
		"-runs", strconv.Itoa(c.Runs),
		"-data_path", withTrailingSeparator(cfg.ResultDir(c.Backend)),
	)

	return inv
}

// ResetInvocation builds the device reset command, run from dir.
func ResetInvocation(cfg config.Config, dir string) Invocation {
	return Invocation{
		Kind:    KindReset,
		Backend: sweep.Hardware,
		Path:    cfg.ResetTool,
		Args:    []string{"reset", "--device", cfg.Device, "--force"},
		Dir:     dir,
	}
}

func withTrailingSeparator(dir string) string {
	dir = filepath.Clean(dir)
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir
	}

	return dir + string(filepath.Separator)
}
