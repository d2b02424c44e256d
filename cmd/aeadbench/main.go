// Package main provides the CLI entry point for aeadbench, a software versus
// FPGA benchmarking driver for AEAD ciphers.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		uerr.cmd.SetOut(os.Stderr)
		_ = uerr.cmd.Help()
		stop()
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	stop()
	os.Exit(1)
}

// usageError is a malformed command line. It is reported together with the
// help text and never launches an external process.
type usageError struct {
	cmd *cobra.Command
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

func newUsageError(cmd *cobra.Command, format string, args ...any) error {
	return &usageError{cmd: cmd, err: fmt.Errorf(format, args...)}
}

// helpFlag stands in for cobra's help flag on the root command. It always
// reads as false to cobra, so --help reaches selectMode and obeys the same
// exclusivity rule as the other mode flags.
type helpFlag struct {
	requested bool
}

func (h *helpFlag) String() string { return "false" }

func (h *helpFlag) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	h.requested = v

	return nil
}

func (h *helpFlag) Type() string { return "bool" }

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "aeadbench",
		Short: "Software vs FPGA AEAD benchmark driver",
		Long: `Aeadbench sweeps message size and message count over the software and
FPGA-accelerated AEAD benchmarks, collects their CSV results and compares
throughput and message rate between the two backends.

Exactly one mode flag selects what the driver does.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return newUsageError(cmd, "unexpected arguments %q", args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := selectMode(cmd)
			if err != nil {
				return err
			}
			if m.flag == helpMode.flag {
				return cmd.Help()
			}

			if err := a.init(cmd); err != nil {
				return err
			}

			a.logger.InfoContext(cmd.Context(), "selected mode", slog.String("mode", m.flag))

			return m.run(cmd.Context(), a)
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{cmd: cmd, err: err}
	})

	a.bindGlobalFlags(root.PersistentFlags())

	flags := root.Flags()
	flags.VarPF(&helpFlag{}, helpMode.flag, "h", helpMode.usage).NoOptDefVal = "true"
	for _, m := range modes {
		flags.Bool(m.flag, false, m.usage)
	}

	root.AddCommand(newReportCmd(a))

	return root
}
