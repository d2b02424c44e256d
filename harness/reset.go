package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/weiihann/aeadbench/config"
	"github.com/weiihann/aeadbench/sweep"
)

// DeviceRunner wraps a ProcessRunner and brackets every hardware benchmark
// with a device reset before and after it. The accelerator keeps queue
// state between runs, so a run is only trusted after a completed reset.
// Other invocations pass straight through.
type DeviceRunner struct {
	Runner  ProcessRunner
	Config  config.Config
	Logger  *slog.Logger
	Metrics *Metrics
}

// NewDeviceRunner creates a DeviceRunner.
func NewDeviceRunner(
	runner ProcessRunner,
	cfg config.Config,
	logger *slog.Logger,
	metrics *Metrics,
) *DeviceRunner {
	return &DeviceRunner{
		Runner:  runner,
		Config:  cfg,
		Logger:  logger.With(slog.String("device", cfg.Device)),
		Metrics: metrics,
	}
}

// Run executes inv, resetting the device around hardware benchmarks. If the
// reset before fails the benchmark is not started. The reset after always
// runs, even when the benchmark failed or ctx was cancelled.
func (d *DeviceRunner) Run(ctx context.Context, inv Invocation) error {
	if inv.Kind != KindBenchmark || inv.Backend != sweep.Hardware {
		return d.Runner.Run(ctx, inv)
	}

	reset := ResetInvocation(d.Config, inv.Dir)

	if err := d.reset(ctx, reset, "before"); err != nil {
		return fmt.Errorf("reset before benchmark: %w", err)
	}

	runErr := d.Runner.Run(ctx, inv)

	var resetErr error
	if err := d.reset(context.WithoutCancel(ctx), reset, "after"); err != nil {
		resetErr = fmt.Errorf("reset after benchmark: %w", err)
	}

	return errors.Join(runErr, resetErr)
}

func (d *DeviceRunner) reset(ctx context.Context, inv Invocation, when string) error {
	d.Logger.DebugContext(ctx, "resetting device", slog.String("when", when))

	err := d.Runner.Run(ctx, inv)
	d.Metrics.observeReset(err)

	if err != nil {
		d.Logger.ErrorContext(ctx, "device reset failed",
			slog.String("when", when),
			slog.String("error", err.Error()),
		)
	}

	return err
}
