package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/weiihann/aeadbench/config"
	"github.com/weiihann/aeadbench/harness"
	"github.com/weiihann/aeadbench/sweep"
)

// app carries the state shared by every command after flag parsing.
type app struct {
	configPath    string
	repoDir       string
	timeout       time.Duration
	buildTimeout  time.Duration
	failurePolicy string
	logFormat     string
	verbose       bool

	cfg    config.Config
	logger *slog.Logger
}

func (a *app) bindGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVar(&a.configPath, "config", "",
		"Path to a YAML config file")
	flags.StringVar(&a.repoDir, "repo-dir", "",
		"Repository root holding src/, data/ and Vitis_Libraries/")
	flags.DurationVar(&a.timeout, "timeout", 0,
		"Per-invocation timeout, 0 disables it (default from config)")
	flags.DurationVar(&a.buildTimeout, "build-timeout", 0,
		"Per-make timeout, 0 disables it (default from config)")
	flags.StringVar(&a.failurePolicy, "failure-policy", "",
		"Run failure policy: fail-fast or continue")
	flags.StringVar(&a.logFormat, "log-format", "auto",
		"Log format: auto, text or json")
	flags.BoolVarP(&a.verbose, "verbose", "v", false,
		"Enable debug logging")
}

// init builds the logger and the resolved configuration.
func (a *app) init(cmd *cobra.Command) error {
	logger, err := newLogger(os.Stderr, a.logFormat, a.verbose)
	if err != nil {
		return newUsageError(cmd, "%v", err)
	}
	a.logger = logger

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("repo-dir") {
		cfg.RepoDir = a.repoDir
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("build-timeout") {
		cfg.BuildTimeout = a.buildTimeout
	}
	if flags.Changed("failure-policy") {
		cfg.FailurePolicy = a.failurePolicy
	}

	cfg, err = cfg.Resolve()
	if err != nil {
		return err
	}

	a.cfg, err = cfg.Abs()
	if err != nil {
		return err
	}

	a.logger.Debug("configuration loaded",
		slog.String("repo_dir", a.cfg.RepoDir),
		slog.String("data_dir", a.cfg.DataDir),
		slog.Duration("timeout", a.cfg.Timeout),
		slog.Duration("build_timeout", a.cfg.BuildTimeout),
		slog.String("failure_policy", a.cfg.FailurePolicy),
	)

	return nil
}

// newLogger returns a slog logger writing to w. The auto format picks text
// for terminals and JSON otherwise.
func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	if format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok &&
			(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			format = "text"
		}
	}

	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// runner runs benchmarks and resets. Child output goes to stderr so stdout
// stays reserved for reports.
func (a *app) runner() *harness.ExecRunner {
	return harness.NewExecRunner(a.cfg.Timeout, os.Stderr, os.Stderr, a.logger)
}

// buildRunner runs make, bounded by the build timeout only.
func (a *app) buildRunner() *harness.ExecRunner {
	return harness.NewExecRunner(a.cfg.BuildTimeout, os.Stderr, os.Stderr, a.logger)
}

func (a *app) builder() *harness.Builder {
	return harness.NewBuilder(a.cfg, a.buildRunner(), a.logger)
}

func (a *app) sweep(ctx context.Context, backend sweep.Backend, m harness.Mode) error {
	metrics := harness.NewMetrics()
	runner := harness.NewDeviceRunner(a.runner(), a.cfg, a.logger, metrics)

	driver, err := harness.NewDriver(a.cfg, runner, a.logger, metrics)
	if err != nil {
		return err
	}

	summary, err := driver.RunAll(ctx, backend, m)

	a.logger.InfoContext(ctx, "sweep summary",
		slog.String("sweep_id", summary.SweepID),
		slog.String("backend", backend.String()),
		slog.String("mode", m.String()),
		slog.Int("planned", summary.Planned),
		slog.Int("completed", summary.Completed),
		slog.Int("failed", len(summary.Failures)),
		slog.Duration("elapsed", summary.Elapsed),
	)

	return err
}
