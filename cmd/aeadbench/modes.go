package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weiihann/aeadbench/harness"
	"github.com/weiihann/aeadbench/sweep"
)

// mode is one of the mutually exclusive driver actions.
type mode struct {
	flag  string
	usage string
	run   func(ctx context.Context, a *app) error
}

var modes = []mode{
	{
		flag:  "clean-all",
		usage: "Clean the software and hardware builds",
		run: func(ctx context.Context, a *app) error {
			return a.builder().CleanAll(ctx)
		},
	},
	{
		flag:  "clean-software",
		usage: "Clean the software build",
		run: func(ctx context.Context, a *app) error {
			return a.builder().CleanSoftware(ctx)
		},
	},
	{
		flag:  "clean-hardware",
		usage: "Clean every hardware benchmark build",
		run: func(ctx context.Context, a *app) error {
			return a.builder().CleanHardware(ctx)
		},
	},
	{
		flag:  "compile-software",
		usage: "Compile the software benchmark",
		run: func(ctx context.Context, a *app) error {
			return a.builder().CompileSoftware(ctx)
		},
	},
	{
		flag:  "compile-hardware-sw",
		usage: "Build the hardware benchmarks for software emulation",
		run:   compileHardware(harness.TargetSoftwareEmulation),
	},
	{
		flag:  "compile-hardware-hw",
		usage: "Build the hardware benchmarks for the device",
		run:   compileHardware(harness.TargetHardware),
	},
	{
		flag:  "compile-hardware-hw-emu",
		usage: "Build the hardware benchmarks for hardware emulation",
		run:   compileHardware(harness.TargetHardwareEmulation),
	},
	{
		flag:  "run-software-default",
		usage: "Compile and run the software benchmark with the default configuration",
		run:   runSweep(sweep.Software, harness.ModeDefault),
	},
	{
		flag:  "run-software-extended",
		usage: "Compile and run the software benchmark over the full sweep",
		run:   runSweep(sweep.Software, harness.ModeExtended),
	},
	{
		flag:  "run-hardware-default",
		usage: "Run every hardware benchmark with the default configuration",
		run:   runSweep(sweep.Hardware, harness.ModeDefault),
	},
	{
		flag:  "run-hardware-extended",
		usage: "Run every hardware benchmark over the full sweep",
		run:   runSweep(sweep.Hardware, harness.ModeExtended),
	},
}

// helpMode prints the help text. It needs no configuration.
var helpMode = mode{flag: "help", usage: "Show help for aeadbench"}

func compileHardware(target harness.Target) func(context.Context, *app) error {
	return func(ctx context.Context, a *app) error {
		return a.builder().CompileHardware(ctx, target)
	}
}

func runSweep(backend sweep.Backend, m harness.Mode) func(context.Context, *app) error {
	return func(ctx context.Context, a *app) error {
		if backend == sweep.Software {
			if err := a.builder().CompileSoftware(ctx); err != nil {
				return err
			}
		}

		return a.sweep(ctx, backend, m)
	}
}

// selectMode returns the single mode flag set on cmd.
func selectMode(cmd *cobra.Command) (mode, error) {
	var selected []mode

	if f := cmd.Flags().Lookup(helpMode.flag); f != nil {
		if h, ok := f.Value.(*helpFlag); ok && h.requested {
			selected = append(selected, helpMode)
		}
	}

	for _, m := range modes {
		set, err := cmd.Flags().GetBool(m.flag)
		if err != nil {
			return mode{}, fmt.Errorf("read flag --%s: %w", m.flag, err)
		}
		if set {
			selected = append(selected, m)
		}
	}

	switch len(selected) {
	case 1:
		return selected[0], nil
	case 0:
		return mode{}, newUsageError(cmd, "exactly one mode flag is required")
	default:
		names := make([]string, len(selected))
		for i, m := range selected {
			names[i] = "--" + m.flag
		}

		return mode{}, newUsageError(cmd, "mode flags are mutually exclusive, got %s",
			strings.Join(names, ", "))
	}
}
