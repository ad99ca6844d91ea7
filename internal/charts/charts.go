// Package charts draws the time-difference statistics of a match run and
// saves them for LaTeX inclusion.
//
// A chart is saved without a title, since the enclosing document captions
// it, then titled and handed to the Displayer for on-screen review.
package charts

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/fire-match-viz/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgtex"
)

const (
	figWidth  = 10 * vg.Inch
	figHeight = 6 * vg.Inch

	histogramBins = 30
)

var (
	histFill      = color.NRGBA{R: 0, G: 0, B: 255, A: 153}
	zeroLineColor = color.NRGBA{R: 255, G: 0, B: 0, A: 128}
	scatterColor  = color.NRGBA{R: 31, G: 119, B: 180, A: 128}
)

// HistogramFile is the file name of the histogram for a dataset label.
func HistogramFile(label, ext string) string {
	return "histogram_" + domain.FileLabel(label) + "." + ext
}

// TimeDistanceFile is the file name of the scatter chart for a dataset label.
func TimeDistanceFile(label, ext string) string {
	return "time_distance_" + domain.FileLabel(label) + "." + ext
}

// Plotter renders charts into dir using the given format extension.
type Plotter struct {
	dir     string
	format  string
	display domain.Displayer
	logger  *slog.Logger
}

// NewPlotter creates a Plotter. The directory is not created; saving into a
// missing directory fails. A nil display skips showing.
func NewPlotter(dir, format string, display domain.Displayer, logger *slog.Logger) *Plotter {
	return &Plotter{
		dir:     dir,
		format:  format,
		display: display,
		logger:  logger,
	}
}

// Histogram bins the time differences into 30 bins with a dashed marker at
// zero and returns the saved path.
func (p *Plotter) Histogram(ctx context.Context, pairs []domain.MatchedPair, label string) (string, error) {
	if len(pairs) == 0 {
		return "", domain.ErrNoMatches
	}

	pl, err := histogramPlot(pairs, label)
	if err != nil {
		return "", err
	}

	path := filepath.Join(p.dir, HistogramFile(label, p.format))
	if err := p.save(pl, path); err != nil {
		return "", err
	}

	pl.Title.Text = histogramTitle(label)
	return path, p.show(ctx, pl, path)
}

// TimeDistance scatters time difference against distance and returns the
// saved path.
func (p *Plotter) TimeDistance(ctx context.Context, pairs []domain.MatchedPair, label string) (string, error) {
	if len(pairs) == 0 {
		return "", domain.ErrNoMatches
	}

	pl, err := timeDistancePlot(pairs)
	if err != nil {
		return "", err
	}

	path := filepath.Join(p.dir, TimeDistanceFile(label, p.format))
	if err := p.save(pl, path); err != nil {
		return "", err
	}

	pl.Title.Text = timeDistanceTitle(label)
	return path, p.show(ctx, pl, path)
}

func histogramTitle(label string) string {
	return fmt.Sprintf("Distribution of Detection Time Differences (%s vs. VIIRS)", label)
}

func timeDistanceTitle(label string) string {
	return fmt.Sprintf("Time Difference vs. Spatial Distance (%s vs. VIIRS)", label)
}

// histogramPlot builds the untitled histogram.
func histogramPlot(pairs []domain.MatchedPair, label string) (*plot.Plot, error) {
	values := make(plotter.Values, len(pairs))
	for i, m := range pairs {
		values[i] = m.TimeDiffMinutes
	}

	pl := plot.New()
	pl.X.Label.Text = fmt.Sprintf("Time Difference (minutes)\nNegative = %s Earlier, Positive = VIIRS Earlier", label)
	pl.Y.Label.Text = "Count"

	hist, err := plotter.NewHist(values, histogramBins)
	if err != nil {
		return nil, fmt.Errorf("histogram bins: %w", err)
	}
	hist.FillColor = histFill
	hist.LineStyle.Color = color.White
	pl.Add(hist)

	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: pl.Y.Min}, {X: 0, Y: pl.Y.Max}})
	if err != nil {
		return nil, fmt.Errorf("zero line: %w", err)
	}
	zero.LineStyle.Color = zeroLineColor
	zero.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	pl.Add(zero)

	return pl, nil
}

// timeDistancePlot builds the untitled scatter chart.
func timeDistancePlot(pairs []domain.MatchedPair) (*plot.Plot, error) {
	xys := make(plotter.XYs, len(pairs))
	for i, m := range pairs {
		xys[i].X = m.DistanceKm
		xys[i].Y = m.TimeDiffMinutes
	}

	pl := plot.New()
	pl.X.Label.Text = "Distance between detections (km)"
	pl.Y.Label.Text = "Time Difference (minutes)"

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("scatter points: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = scatterColor
	scatter.GlyphStyle.Radius = vg.Points(3)
	pl.Add(scatter)

	return pl, nil
}

func (p *Plotter) save(pl *plot.Plot, path string) error {
	var wt io.WriterTo
	if p.format == "pgf" {
		// A bare pgfpicture, \input-able from a LaTeX document.
		c := vgtex.New(figWidth, figHeight)
		pl.Draw(draw.New(c))
		wt = c
	} else {
		var err error
		wt, err = pl.WriterTo(figWidth, figHeight, p.format)
		if err != nil {
			return fmt.Errorf("chart format %q: %w", p.format, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart: %w", err)
	}

	p.logger.Info("chart saved", "path", path)
	return nil
}

func (p *Plotter) show(ctx context.Context, pl *plot.Plot, path string) error {
	if p.display == nil {
		return nil
	}
	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]
	if err := p.display.Show(ctx, name, render(pl)); err != nil {
		return fmt.Errorf("show chart: %w", err)
	}
	return nil
}

func render(pl *plot.Plot) image.Image {
	c := vgimg.New(figWidth, figHeight)
	pl.Draw(draw.New(c))
	return c.Image()
}
