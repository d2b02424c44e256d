// Package config holds the paths, axes, device identity and policies shared
// by the sweep driver and the report pipeline.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/weiihann/aeadbench/sweep"
)

// Failure policies for the sweep driver.
const (
	PolicyFailFast = "fail-fast"
	PolicyContinue = "continue"
)

// DefaultRun is the single configuration used by the default run modes.
type DefaultRun struct {
	MsgSize int `yaml:"msg_size" validate:"gt=0"`
	MsgNum  int `yaml:"msg_num" validate:"gt=0"`
	Runs    int `yaml:"runs" validate:"gte=1"`
}

// Config is the full set of recognized options. Empty path fields are
// derived from RepoDir by Resolve.
type Config struct {
	RepoDir string `yaml:"repo_dir" validate:"required"`
	DataDir string `yaml:"data_dir"`
	PlotDir string `yaml:"plot_dir"`

	SoftwareSrcDir string `yaml:"software_src_dir"`
	SoftwareBinary string `yaml:"software_binary" validate:"required"`

	HardwareSrcDir     string   `yaml:"hardware_src_dir"`
	HardwareBuildDir   string   `yaml:"hardware_build_dir" validate:"required"`
	HardwareBenchmarks []string `yaml:"hardware_benchmarks" validate:"dive,required"`
	Platform           string   `yaml:"platform"`

	Device    string `yaml:"device" validate:"required"`
	ResetTool string `yaml:"reset_tool" validate:"required"`

	Runs       int        `yaml:"runs" validate:"gte=1"`
	DefaultRun DefaultRun `yaml:"default_run"`
	MsgSizes   []int      `yaml:"msg_sizes" validate:"min=1,dive,gt=0"`
	MsgNums    []int      `yaml:"msg_nums" validate:"min=1,dive,gt=0"`

	// Algorithms restricts the report; empty means every algorithm found.
	Algorithms []string `yaml:"algorithms" validate:"dive,required"`

	// Timeout bounds each benchmark and reset invocation. BuildTimeout
	// bounds each make invocation; hardware builds take hours, so it is
	// disabled by default. Zero disables either.
	Timeout       time.Duration `yaml:"timeout" validate:"gte=0"`
	BuildTimeout  time.Duration `yaml:"build_timeout" validate:"gte=0"`
	FailurePolicy string        `yaml:"failure_policy" validate:"oneof=fail-fast continue"`
	MetricsFile   string        `yaml:"metrics_file"`
	ReportWorkers int           `yaml:"report_workers" validate:"gte=1"`
}

// Default returns the configuration of the reference lab setup.
func Default() Config {
	return Config{
		RepoDir:          ".",
		SoftwareBinary:   "./main",
		HardwareBuildDir: "build_dir.hw.xilinx_u250_gen3x16_xdma_4_1_202210_1",
		HardwareBenchmarks: []string{
			"aes256GcmEncrypt",
			"aes256GcmDecrypt",
			"aes128GcmEncrypt_2",
			"aes128GcmDecrypt",
			"aes128Ccm8Encrypt",
			"aes128Ccm8Decrypt",
			"aes128Ccm12Encrypt",
			"aes128Ccm12Decrypt",
			"aes128Ccm16Encrypt",
			"aes128Ccm16Decrypt",
			"chacha20poly1305Encrypt",
		},
		Platform: "/opt/xilinx/platforms/xilinx_u250_gen3x16_xdma_4_1_202210_1/" +
			"xilinx_u250_gen3x16_xdma_4_1_202210_1.xpfm",
		Device:    "0000:06:00.1",
		ResetTool: "xbutil",
		Runs:      100,
		DefaultRun: DefaultRun{
			MsgSize: 1024,
			MsgNum:  1000,
			Runs:    10,
		},
		MsgSizes:      append([]int(nil), sweep.DefaultAxis...),
		MsgNums:       append([]int(nil), sweep.DefaultAxis...),
		Timeout:       30 * time.Minute,
		FailurePolicy: PolicyFailFast,
		MetricsFile:   "sweep.prom",
		ReportWorkers: 4,
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Resolve fills derived paths from RepoDir and validates the result.
func (c Config) Resolve() (Config, error) {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(c.RepoDir, "data")
	}
	if c.PlotDir == "" {
		c.PlotDir = filepath.Join(c.RepoDir, "plots")
	}
	if c.SoftwareSrcDir == "" {
		c.SoftwareSrcDir = filepath.Join(c.RepoDir, "src")
	}
	if c.HardwareSrcDir == "" {
		c.HardwareSrcDir = filepath.Join(
			c.RepoDir, "Vitis_Libraries", "security", "L1", "benchmarks",
		)
	}
	if c.MetricsFile != "" && !filepath.IsAbs(c.MetricsFile) {
		c.MetricsFile = filepath.Join(c.DataDir, c.MetricsFile)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Axes returns the configured sweep axes.
func (c Config) Axes() sweep.Axes {
	return sweep.Axes{Sizes: c.MsgSizes, Nums: c.MsgNums}
}

// ResultDir returns the flat result directory of a backend.
func (c Config) ResultDir(b sweep.Backend) string {
	return filepath.Join(c.DataDir, b.String())
}

// HardwareRunDir returns the working directory of a hardware benchmark.
func (c Config) HardwareRunDir(bench string) string {
	return filepath.Join(c.HardwareSrcDir, bench, c.HardwareBuildDir)
}

// Abs makes every directory absolute. Benchmarks run from their own
// working directories, so relative result paths would land in the wrong
// place.
func (c Config) Abs() (Config, error) {
	for _, p := range []*string{
		&c.RepoDir, &c.DataDir, &c.PlotDir,
		&c.SoftwareSrcDir, &c.HardwareSrcDir, &c.MetricsFile,
	} {
		if *p == "" {
			continue
		}

		abs, err := filepath.Abs(*p)
		if err != nil {
			return Config{}, fmt.Errorf("resolve %s: %w", *p, err)
		}

		*p = abs
	}

	return c, nil
}
