package harness

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/weiihann/aeadbench/config"
	"github.com/weiihann/aeadbench/sweep"
)

// Mode selects the configuration set of a sweep.
type Mode int

const (
	// ModeDefault runs the single default configuration.
	ModeDefault Mode = iota
	// ModeExtended runs the full axis product.
	ModeExtended
)

func (m Mode) String() string {
	if m == ModeExtended {
		return "extended"
	}

	return "default"
}

// Policy decides what happens after a failed run.
type Policy int

const (
	// FailFast aborts the remaining sweep on the first failure.
	FailFast Policy = iota
	// Continue records the failure and moves on.
	Continue
)

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case config.PolicyFailFast, "":
		return FailFast, nil
	case config.PolicyContinue:
		return Continue, nil
	default:
		return 0, fmt.Errorf("unknown failure policy %q", s)
	}
}

// Driver runs sweeps. Benchmarks never overlap: each invocation returns
// before the next one starts.
type Driver struct {
	cfg     config.Config
	runner  ProcessRunner
	policy  Policy
	logger  *slog.Logger
	metrics *Metrics
	now     func() time.Time
}

// NewDriver creates a Driver. The runner is expected to already handle
// device resets (see DeviceRunner).
func NewDriver(
	cfg config.Config,
	runner ProcessRunner,
	logger *slog.Logger,
	metrics *Metrics,
) (*Driver, error) {
	policy, err := ParsePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, err
	}

	return &Driver{
		cfg:     cfg,
		runner:  runner,
		policy:  policy,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// Configs returns the configurations of a sweep in execution order.
func (d *Driver) Configs(backend sweep.Backend, mode Mode) []sweep.Config {
	var targets []string
	if backend == sweep.Hardware {
		targets = d.cfg.HardwareBenchmarks
	}

	if mode == ModeDefault {
		def := d.cfg.DefaultRun
		pairs := []sweep.Pair{{Size: def.MsgSize, Num: def.MsgNum}}

		return sweep.Expand(backend, targets, pairs, def.Runs)
	}

	return sweep.Expand(backend, targets, d.cfg.Axes().Pairs(), d.cfg.Runs)
}

// RunAll runs every configuration of the sweep for backend and mode.
func (d *Driver) RunAll(ctx context.Context, backend sweep.Backend, mode Mode) (*Summary, error) {
	return d.Run(ctx, backend, mode, d.Configs(backend, mode))
}

// Run executes configs in order. Under FailFast the first failure stops the
// sweep and is returned; under Continue all configs are attempted and a
// *SweepError lists the failures. Cancellation of ctx always stops the
// sweep.
func (d *Driver) Run(
	ctx context.Context,
	backend sweep.Backend,
	mode Mode,
	configs []sweep.Config,
) (*Summary, error) {
	summary := &Summary{
		SweepID: uuid.NewString(),
		Backend: backend,
		Mode:    mode,
		Planned: len(configs),
	}

	logger := d.logger.With(
		slog.String("sweep_id", summary.SweepID),
		slog.String("backend", backend.String()),
		slog.String("mode", mode.String()),
	)

	resultDir := d.cfg.ResultDir(backend)
	if err := os.MkdirAll(resultDir, 0o755); err != nil {
		return summary, fmt.Errorf("create result dir %s: %w", resultDir, err)
	}

	logger.InfoContext(ctx, "starting sweep",
		slog.Int("configs", len(configs)),
		slog.String("result_dir", resultDir),
	)

	start := d.now()
	defer func() {
		summary.Elapsed = d.now().Sub(start)
		d.writeMetrics(logger)
	}()

	for i, c := range configs {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("sweep interrupted after %d of %d runs: %w",
				summary.Completed, summary.Planned, err)
		}

		inv := BenchmarkInvocation(d.cfg, c)

		logger.InfoContext(ctx, "running benchmark",
			slog.Int("step", i+1),
			slog.Int("of", len(configs)),
			slog.String("target", c.Target),
			slog.Int("msg_size", c.MsgSize),
			slog.Int("msg_num", c.MsgNum),
			slog.Int("runs", c.Runs),
		)

		runStart := d.now()
		err := d.runner.Run(ctx, inv)
		d.metrics.observeRun(backend.String(), d.now().Sub(runStart), err)

		if err == nil {
			summary.Completed++

			continue
		}

		summary.Failures = append(summary.Failures, Failure{Config: c, Err: err})

		logger.ErrorContext(ctx, "benchmark failed",
			slog.String("config", c.String()),
			slog.String("error", err.Error()),
		)

		if d.policy == FailFast {
			return summary, fmt.Errorf("run %s: %w", c, err)
		}
	}

	d.metrics.observeSweepDone(backend.String(), d.now())

	logger.InfoContext(ctx, "sweep finished",
		slog.Int("completed", summary.Completed),
		slog.Int("failed", len(summary.Failures)),
	)

	if len(summary.Failures) > 0 {
		return summary, &SweepError{Planned: summary.Planned, Failures: summary.Failures}
	}

	return summary, nil
}

func (d *Driver) writeMetrics(logger *slog.Logger) {
	if err := d.metrics.WriteTextfile(d.cfg.MetricsFile); err != nil {
		logger.Warn("failed to write metrics", slog.String("error", err.Error()))
	}
}
