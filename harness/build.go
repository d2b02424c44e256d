package harness

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/weiihann/aeadbench/config"
	"github.com/weiihann/aeadbench/sweep"
)

// Target is a Vitis build target.
type Target string

// Build targets accepted by the hardware makefiles.
const (
	TargetSoftwareEmulation Target = "sw_emu"
	TargetHardwareEmulation Target = "hw_emu"
	TargetHardware          Target = "hw"
)

// Builder wraps the make-based build and cleanup of both benchmark trees.
// Every step is a one-shot invocation; the first failure stops the step.
type Builder struct {
	cfg    config.Config
	runner ProcessRunner
	logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(cfg config.Config, runner ProcessRunner, logger *slog.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		runner: runner,
		logger: logger.With(slog.String("component", "build")),
	}
}

// CleanAll cleans both benchmark trees.
func (b *Builder) CleanAll(ctx context.Context) error {
	if err := b.CleanSoftware(ctx); err != nil {
		return err
	}

	return b.CleanHardware(ctx)
}

// CleanSoftware runs make clean in the software tree.
func (b *Builder) CleanSoftware(ctx context.Context) error {
	b.logger.InfoContext(ctx, "cleaning software benchmark")

	return b.make(ctx, sweep.Software, b.cfg.SoftwareSrcDir, "clean")
}

// CleanHardware runs make cleanall in every hardware benchmark directory.
func (b *Builder) CleanHardware(ctx context.Context) error {
	b.logger.InfoContext(ctx, "cleaning hardware benchmarks")

	for _, bench := range b.cfg.HardwareBenchmarks {
		dir := filepath.Join(b.cfg.HardwareSrcDir, bench)
		if err := b.make(ctx, sweep.Hardware, dir, "cleanall"); err != nil {
			return err
		}
	}

	return nil
}

// CompileSoftware builds the software benchmark.
func (b *Builder) CompileSoftware(ctx context.Context) error {
	b.logger.InfoContext(ctx, "compiling software benchmark",
		slog.String("dir", b.cfg.SoftwareSrcDir),
	)

	return b.make(ctx, sweep.Software, b.cfg.SoftwareSrcDir)
}

// CompileHardware builds and runs every hardware benchmark for target.
func (b *Builder) CompileHardware(ctx context.Context, target Target) error {
	switch target {
	case TargetSoftwareEmulation, TargetHardwareEmulation, TargetHardware:
	default:
		return fmt.Errorf("unknown build target %q", target)
	}

	b.logger.InfoContext(ctx, "compiling hardware benchmarks",
		slog.String("target", string(target)),
		slog.String("platform", b.cfg.Platform),
	)

	for _, bench := range b.cfg.HardwareBenchmarks {
		dir := filepath.Join(b.cfg.HardwareSrcDir, bench)

		err := b.make(ctx, sweep.Hardware, dir,
			"run", "TARGET="+string(target), "PLATFORM="+b.cfg.Platform,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (b *Builder) make(ctx context.Context, backend sweep.Backend, dir string, args ...string) error {
	inv := Invocation{
		Kind:    KindBuild,
		Backend: backend,
		Path:    "make",
		Args:    args,
		Dir:     dir,
	}

	if err := b.runner.Run(ctx, inv); err != nil {
		return fmt.Errorf("build in %s: %w", dir, err)
	}

	return nil
}
