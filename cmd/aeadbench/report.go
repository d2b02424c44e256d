package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/weiihann/aeadbench/report"
	"github.com/weiihann/aeadbench/results"
	"github.com/weiihann/aeadbench/sweep"
)

type reportOptions struct {
	algorithms []string
	outputJSON bool
	charts     bool
	watch      bool
}

func newReportCmd(a *app) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compare collected software and hardware results",
		Long: `Collect the CSV results of both backends, aggregate them over the sweep
axes and print a comparison per algorithm. With --charts the throughput,
message rate, factor and histogram charts are written below the plot
directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.init(cmd); err != nil {
				return err
			}

			return runReport(cmd.Context(), a, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.algorithms, "algorithms", nil,
		"Algorithms to report (default: every algorithm found)")
	flags.BoolVar(&opts.outputJSON, "json", false,
		"Output results as JSON instead of tables")
	flags.BoolVar(&opts.charts, "charts", false,
		"Render PNG charts into the plot directory")
	flags.BoolVar(&opts.watch, "watch", false,
		"Regenerate whenever result files change")

	return cmd
}

func runReport(ctx context.Context, a *app, opts reportOptions) error {
	filter := opts.algorithms
	if len(filter) == 0 {
		filter = a.cfg.Algorithms
	}

	collector := results.NewCollector(a.logger)

	refresh := func(ctx context.Context) error {
		in, err := report.Load(collector, a.cfg)
		if err != nil {
			return err
		}

		cmps := in.Compare(a.cfg.Axes(), in.Algorithms(filter))

		if opts.outputJSON {
			if err := report.GenerateJSON(os.Stdout, cmps); err != nil {
				return fmt.Errorf("generate JSON report: %w", err)
			}
		} else if err := report.Generate(os.Stdout, cmps); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}

		if opts.charts {
			renderer := report.NewRenderer(a.cfg.PlotDir, a.cfg.ReportWorkers, a.logger)

			n, err := renderer.Render(ctx, in, cmps)
			if err != nil {
				return fmt.Errorf("render charts: %w", err)
			}

			a.logger.InfoContext(ctx, "charts rendered",
				slog.String("dir", a.cfg.PlotDir),
				slog.Int("files", n),
			)
		}

		if diags := in.Diagnostics(); len(diags) > 0 {
			a.logger.WarnContext(ctx, "skipped result files", slog.Int("count", len(diags)))
		}

		return nil
	}

	if !opts.watch {
		return refresh(ctx)
	}

	dirs := []string{a.cfg.ResultDir(sweep.Software), a.cfg.ResultDir(sweep.Hardware)}

	return report.NewWatcher(dirs, a.logger).Run(ctx, refresh)
}
