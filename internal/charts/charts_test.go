package charts

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/fire-match-viz/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
)

type captureDisplay struct {
	names  []string
	images []image.Image
	err    error
}

func (d *captureDisplay) Show(_ context.Context, name string, img image.Image) error {
	d.names = append(d.names, name)
	d.images = append(d.images, img)
	return d.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPairs() []domain.MatchedPair {
	t0 := time.Date(2023, 8, 14, 10, 30, 0, 0, time.UTC)
	diffs := []float64{-42, -17.5, -3, 0, 4, 9.5, 12, 25, 31, 58}
	pairs := make([]domain.MatchedPair, len(diffs))
	for i, d := range diffs {
		pairs[i] = domain.MatchedPair{
			ModisLat: 38 + float64(i)*0.01, ModisLon: -120,
			ViirsLat: 38 + float64(i)*0.01, ViirsLon: -120.01,
			ModisTime: t0, ViirsTime: t0.Add(time.Duration(-d) * time.Minute),
			TimeDiffMinutes: d,
			DistanceKm:      0.3 * float64(i+1),
		}
	}
	return pairs
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "histogram_modis_comparison.pgf", HistogramFile("MODIS Comparison", "pgf"))
	assert.Equal(t, "time_distance_modis_comparison.pgf", TimeDistanceFile("MODIS Comparison", "pgf"))
	assert.Equal(t, "histogram_goes.svg", HistogramFile("GOES", "svg"))
}

func TestHistogram_SavesUntitledPGF(t *testing.T) {
	dir := t.TempDir()
	display := &captureDisplay{}
	p := NewPlotter(dir, "pgf", display, discardLogger())

	path, err := p.Histogram(context.Background(), testPairs(), "MODIS Comparison")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "histogram_modis_comparison.pgf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `\begin{pgfpicture}`)
	assert.Contains(t, out, "Count")
	assert.NotContains(t, out, "Distribution of Detection Time Differences")

	require.Len(t, display.names, 1)
	assert.Equal(t, "histogram_modis_comparison", display.names[0])
	b := display.images[0].Bounds()
	assert.Positive(t, b.Dx())
	assert.Positive(t, b.Dy())
}

func TestTimeDistance_SavesUntitledPGF(t *testing.T) {
	dir := t.TempDir()
	display := &captureDisplay{}
	p := NewPlotter(dir, "pgf", display, discardLogger())

	path, err := p.TimeDistance(context.Background(), testPairs(), "MODIS Comparison")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "time_distance_modis_comparison.pgf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Distance between detections (km)")
	assert.NotContains(t, string(data), "Time Difference vs. Spatial Distance")

	assert.Equal(t, []string{"time_distance_modis_comparison"}, display.names)
}

func TestHistogram_OtherFormats(t *testing.T) {
	for _, format := range []string{"svg", "png", "pdf", "eps", "tex"} {
		t.Run(format, func(t *testing.T) {
			dir := t.TempDir()
			p := NewPlotter(dir, format, nil, discardLogger())

			path, err := p.Histogram(context.Background(), testPairs(), "GOES")
			require.NoError(t, err)
			assert.Equal(t, "histogram_goes."+format, filepath.Base(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestCharts_MissingDirFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "latex_plots")
	display := &captureDisplay{}
	p := NewPlotter(dir, "pgf", display, discardLogger())

	_, err := p.Histogram(context.Background(), testPairs(), "MODIS")
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = p.TimeDistance(context.Background(), testPairs(), "MODIS")
	require.ErrorIs(t, err, os.ErrNotExist)

	assert.Empty(t, display.names, "nothing shown when saving fails")
	assert.NoDirExists(t, dir)
}

func TestCharts_EmptyInput(t *testing.T) {
	dir := t.TempDir()
	p := NewPlotter(dir, "pgf", nil, discardLogger())

	_, err := p.Histogram(context.Background(), nil, "MODIS")
	require.ErrorIs(t, err, domain.ErrNoMatches)
	_, err = p.TimeDistance(context.Background(), nil, "MODIS")
	require.ErrorIs(t, err, domain.ErrNoMatches)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCharts_DisplayErrorKeepsFile(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("preview unavailable")
	p := NewPlotter(dir, "pgf", &captureDisplay{err: boom}, discardLogger())

	path, err := p.Histogram(context.Background(), testPairs(), "MODIS")
	require.ErrorIs(t, err, boom)
	assert.FileExists(t, path)
}

// topBandDiff counts differing pixels in the top rows of two images.
func topBandDiff(t *testing.T, a, b image.Image, rows int) int {
	t.Helper()
	require.Equal(t, a.Bounds(), b.Bounds())

	n := 0
	r := a.Bounds()
	for y := r.Min.Y; y < r.Min.Y+rows; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			ar, ag, ab, aa := a.At(x, y).RGBA()
			br, bg, bb, ba := b.At(x, y).RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				n++
			}
		}
	}
	return n
}

func TestCharts_DisplayedFigureIsTitled(t *testing.T) {
	const band = 40
	pairs := testPairs()

	tests := []struct {
		name  string
		plot  func() (*plot.Plot, error)
		title string
		run   func(*Plotter) (string, error)
	}{
		{
			name:  "histogram",
			plot:  func() (*plot.Plot, error) { return histogramPlot(pairs, "MODIS") },
			title: histogramTitle("MODIS"),
			run: func(p *Plotter) (string, error) {
				return p.Histogram(context.Background(), pairs, "MODIS")
			},
		},
		{
			name:  "time distance",
			plot:  func() (*plot.Plot, error) { return timeDistancePlot(pairs) },
			title: timeDistanceTitle("MODIS"),
			run: func(p *Plotter) (string, error) {
				return p.TimeDistance(context.Background(), pairs, "MODIS")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display := &captureDisplay{}
			_, err := tt.run(NewPlotter(t.TempDir(), "png", display, discardLogger()))
			require.NoError(t, err)
			require.Len(t, display.images, 1)
			shown := display.images[0]

			untitled, err := tt.plot()
			require.NoError(t, err)
			titled, err := tt.plot()
			require.NoError(t, err)
			titled.Title.Text = tt.title

			assert.Positive(t, topBandDiff(t, shown, render(untitled), band), "shown figure matches the untitled chart")
			assert.Zero(t, topBandDiff(t, shown, render(titled), band), "shown figure carries the chart title")
		})
	}
}
