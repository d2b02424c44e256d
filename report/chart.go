package report

import (
	"cmp"
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/weiihann/aeadbench/results"
	"github.com/weiihann/aeadbench/sweep"
)

const (
	histogramBins = 40
	histogramDir  = "histograms"
)

var (
	softwareColor = color.RGBA{0, 114, 178, 255}   // blue
	hardwareColor = color.RGBA{230, 159, 0, 255}   // orange
	factorColor   = color.RGBA{102, 194, 165, 255} // green
)

// Renderer draws comparison charts into one directory per algorithm, each
// holding histograms/, throughput/ and message_rate/.
type Renderer struct {
	Dir     string
	Workers int
	Width   vg.Length
	Height  vg.Length
	Logger  *slog.Logger
}

// NewRenderer creates a Renderer writing below dir with at most workers
// algorithms rendered concurrently.
func NewRenderer(dir string, workers int, logger *slog.Logger) *Renderer {
	return &Renderer{
		Dir:     dir,
		Workers: max(workers, 1),
		Width:   8 * vg.Inch,
		Height:  4 * vg.Inch,
		Logger:  logger.With(slog.String("component", "charts")),
	}
}

// Render draws every comparison and returns the number of files written.
// Rendering only reads the collected data, so algorithms are drawn
// concurrently.
func (r *Renderer) Render(ctx context.Context, in *Input, cmps []*results.Comparison) (int, error) {
	counts := make([]int, len(cmps))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Workers)

	for i, c := range cmps {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			n, err := r.RenderComparison(in, c)
			counts[i] = n

			return err
		})
	}

	err := g.Wait()

	total := 0
	for _, n := range counts {
		total += n
	}

	return total, err
}

// RenderComparison draws the charts of one algorithm. Series without any
// data are skipped rather than drawn empty.
func (r *Renderer) RenderComparison(in *Input, c *results.Comparison) (int, error) {
	base := filepath.Join(r.Dir, c.Algorithm)

	for _, sub := range []string{histogramDir, Throughput.String(), MessageRate.String()} {
		if err := os.MkdirAll(filepath.Join(base, sub), 0o755); err != nil {
			return 0, fmt.Errorf("create chart dir: %w", err)
		}
	}

	written := 0

	for _, s := range AllSeries(c) {
		for _, m := range Metrics() {
			stem := filepath.Join(base, m.String(), s.Name()+"_"+m.String())

			ok, err := r.metricChart(s, m, stem+".png")
			if err != nil {
				return written, err
			}
			if ok {
				written++
			}

			ok, err = r.factorChart(s, m, stem+"_factor.png")
			if err != nil {
				return written, err
			}
			if ok {
				written++
			}
		}
	}

	n, err := r.histograms(in, c.Algorithm, filepath.Join(base, histogramDir))
	written += n

	r.Logger.Debug("rendered algorithm",
		slog.String("algorithm", c.Algorithm),
		slog.Int("files", written),
	)

	return written, err
}

func (r *Renderer) newPlot(title string, s Series, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = s.Fixed.VaryingLabel()
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	p.Legend.Left = true

	// The sweep axes are powers of two; tick exactly at each measured value.
	p.X.Scale = plot.LogScale{}
	ticks := make([]plot.Tick, len(s.Points))
	for i, pt := range s.Points {
		ticks[i] = plot.Tick{Value: float64(pt.X), Label: strconv.Itoa(pt.X)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	return p
}

func (r *Renderer) metricChart(s Series, m Metric, path string) (bool, error) {
	var swPts, hwPts plotter.XYs

	for _, pt := range s.Points {
		if pt.Software.Present {
			swPts = append(swPts, plotter.XY{X: float64(pt.X), Y: m.Value(pt.Software)})
		}
		if pt.Hardware.Present {
			hwPts = append(hwPts, plotter.XY{X: float64(pt.X), Y: m.Value(pt.Hardware)})
		}
	}

	if len(swPts) == 0 && len(hwPts) == 0 {
		return false, nil
	}

	p := r.newPlot(fmt.Sprintf("%s %s (%s = %d)", s.Algorithm, m, fixedLabel(s.Fixed), s.Value), s, m.Unit())
	p.Y.Min = 0

	for _, l := range []struct {
		name  string
		pts   plotter.XYs
		color color.Color
	}{
		{"software", swPts, softwareColor},
		{"hardware", hwPts, hardwareColor},
	} {
		if len(l.pts) == 0 {
			continue
		}

		line, points, err := plotter.NewLinePoints(l.pts)
		if err != nil {
			return false, fmt.Errorf("%s %s line: %w", s.Name(), l.name, err)
		}

		line.Color = l.color
		line.Width = vg.Points(2)
		points.Color = l.color

		p.Add(line, points)
		p.Legend.Add(l.name, line, points)
	}

	return true, r.save(p, path)
}

func (r *Renderer) factorChart(s Series, m Metric, path string) (bool, error) {
	var pts plotter.XYs

	for _, pt := range s.Points {
		if f := pt.Factor(m); f.Defined {
			pts = append(pts, plotter.XY{X: float64(pt.X), Y: f.Value})
		}
	}

	if len(pts) == 0 {
		return false, nil
	}

	p := r.newPlot(
		fmt.Sprintf("%s %s factor (%s = %d)", s.Algorithm, m, fixedLabel(s.Fixed), s.Value),
		s, "Software / Hardware",
	)
	p.Y.Min = 0

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return false, fmt.Errorf("%s factor line: %w", s.Name(), err)
	}

	line.Color = factorColor
	line.Width = vg.Points(2)
	points.Color = factorColor

	p.Add(line, points)

	return true, r.save(p, path)
}

// histograms draws the time distribution of every raw sample file of alg.
func (r *Renderer) histograms(in *Input, alg, dir string) (int, error) {
	written := 0

	for _, b := range sweep.Backends() {
		col := in.Collection(b)
		if col == nil {
			continue
		}

		var keys []results.Key
		for k := range col.Series {
			if k.Algorithm == alg {
				keys = append(keys, k)
			}
		}
		slices.SortFunc(keys, func(x, y results.Key) int {
			return cmp.Or(
				cmp.Compare(x.MsgNum, y.MsgNum),
				cmp.Compare(x.MsgSize, y.MsgSize),
			)
		})

		for _, k := range keys {
			s := col.Series[k]
			if len(s) == 0 {
				continue
			}

			path := filepath.Join(dir, b.String()+"_"+k.Stem()+".png")
			if err := r.histogram(s, k, b, path); err != nil {
				return written, err
			}
			written++
		}
	}

	return written, nil
}

func (r *Renderer) histogram(s results.Series, k results.Key, b sweep.Backend, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s (num = %d, size = %d)", k.Algorithm, b, k.MsgNum, k.MsgSize)
	p.X.Label.Text = "Time (µs)"
	p.Y.Label.Text = "Runs"

	h, err := plotter.NewHist(plotter.Values(s.Times()), histogramBins)
	if err != nil {
		return fmt.Errorf("histogram %s: %w", k.Filename(), err)
	}

	h.FillColor = softwareColor
	if b == sweep.Hardware {
		h.FillColor = hardwareColor
	}

	p.Add(h)

	return r.save(p, path)
}

func (r *Renderer) save(p *plot.Plot, path string) error {
	if err := p.Save(r.Width, r.Height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}

	return nil
}

func fixedLabel(a FixedAxis) string {
	if a == FixedSize {
		return "size"
	}

	return "num"
}
