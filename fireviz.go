// Package fireviz renders visual diagnostics for matched MODIS/VIIRS fire
// detections: interactive Leaflet maps, fixed-size map screenshots,
// time-difference charts and side-by-side screenshot comparisons.
//
// Every operation is synchronous and driven only by its arguments; the
// matched pairs are read, never retained.
package fireviz

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/couchcryptid/fire-match-viz/internal/adapter/arrowtable"
	"github.com/couchcryptid/fire-match-viz/internal/adapter/browser"
	"github.com/couchcryptid/fire-match-viz/internal/adapter/preview"
	"github.com/couchcryptid/fire-match-viz/internal/adapter/tiles"
	"github.com/couchcryptid/fire-match-viz/internal/charts"
	"github.com/couchcryptid/fire-match-viz/internal/compare"
	"github.com/couchcryptid/fire-match-viz/internal/config"
	"github.com/couchcryptid/fire-match-viz/internal/domain"
	"github.com/couchcryptid/fire-match-viz/internal/observability"
	"github.com/couchcryptid/fire-match-viz/internal/screenshot"
	"github.com/couchcryptid/fire-match-viz/internal/webmap"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
)

type (
	// MatchedPair is one MODIS detection associated with one VIIRS detection.
	MatchedPair = domain.MatchedPair
	// Map is a built Leaflet map.
	Map = webmap.Map
	// ScreenshotRequest fixes center, zoom, pixel size and output of a screenshot.
	ScreenshotRequest = screenshot.Request
	// Browser captures a page as PNG; the default drives headless Chrome.
	Browser = screenshot.Browser
	// Displayer shows a rendered figure; the default writes previews to disk.
	Displayer = domain.Displayer
)

var (
	ErrMissingColumn = domain.ErrMissingColumn
	ErrNoMatches     = domain.ErrNoMatches
)

// NewScreenshotRequest returns the default request centered on (lat, lon).
func NewScreenshotRequest(lat, lon float64) ScreenshotRequest {
	return screenshot.NewRequest(lat, lon)
}

// MapCenter returns the midpoint of the mean MODIS and mean VIIRS
// coordinates, the default screenshot center.
func MapCenter(pairs []MatchedPair) (lat, lon float64, err error) {
	return domain.MeanCenter(pairs)
}

// tileProbeCacheSize bounds the number of tiles remembered as reachable.
const tileProbeCacheSize = 256

// Visualizer runs the rendering operations with one configuration, logger
// and metrics registry.
type Visualizer struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	clock    clockwork.Clock

	mapOpts     webmap.Options
	screenshots *screenshot.Generator
	plotter     *charts.Plotter
	viewer      *compare.Viewer
}

type settings struct {
	logger  *slog.Logger
	clock   clockwork.Clock
	browser Browser
	display Displayer
}

// Option overrides a collaborator of the Visualizer.
type Option func(*settings)

// WithLogger replaces the configured logger.
func WithLogger(l *slog.Logger) Option { return func(s *settings) { s.logger = l } }

// WithClock replaces the real clock.
func WithClock(c clockwork.Clock) Option { return func(s *settings) { s.clock = c } }

// WithBrowser replaces headless Chrome.
func WithBrowser(b Browser) Option { return func(s *settings) { s.browser = b } }

// WithDisplayer replaces the preview directory writer.
func WithDisplayer(d Displayer) Option { return func(s *settings) { s.display = d } }

// New builds a Visualizer from environment variables.
func New(opts ...Option) (*Visualizer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newVisualizer(cfg, opts...), nil
}

// NewFromEnv loads the given .env files (".env" when none are named) into
// the environment, without overriding variables already set, then calls New.
func NewFromEnv(files []string, opts ...Option) (*Visualizer, error) {
	if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	return New(opts...)
}

func newVisualizer(cfg *config.Config, opts ...Option) *Visualizer {
	s := settings{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = observability.NewLogger(cfg)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	if s.browser == nil {
		s.browser = browser.NewChrome(browser.Options{
			ExecPath:    cfg.ChromePath,
			TileTimeout: cfg.TileTimeout,
			SettleDelay: cfg.SettleDelay,
		}, s.clock, metrics, s.logger)
	}
	if s.display == nil {
		s.display = preview.NewWriter(cfg.PreviewDir, s.logger)
	}

	mapOpts := webmap.Options{
		Tiles:     tiles.Select(cfg.MapboxToken, cfg.MapboxStyle),
		Centering: domain.Centering(cfg.MapCentering),
	}

	var prober screenshot.TileProber
	if cfg.TileProbe {
		client := tiles.NewClient(cfg.TileProbeTimeout, metrics, s.logger)
		prober = tiles.NewCachedProber(client, tileProbeCacheSize)
	}

	s.logger.Info("visualizer ready",
		"tiles", mapOpts.Tiles.Name,
		"centering", cfg.MapCentering,
		"chart_dir", cfg.ChartDir,
		"chart_format", cfg.ChartFormat,
		"tile_probe", cfg.TileProbe,
	)

	return &Visualizer{
		cfg:         cfg,
		logger:      s.logger,
		registry:    registry,
		metrics:     metrics,
		clock:       s.clock,
		mapOpts:     mapOpts,
		screenshots: screenshot.NewGenerator(s.browser, prober, mapOpts, cfg.ScreenshotTempDir, s.logger),
		plotter:     charts.NewPlotter(cfg.ChartDir, cfg.ChartFormat, s.display, s.logger),
		viewer:      compare.NewViewer(s.display, s.logger),
	}
}

// Registry exposes the Visualizer's metrics.
func (v *Visualizer) Registry() *prometheus.Registry {
	return v.registry
}

// Close flushes metrics to METRICS_TEXTFILE when configured.
func (v *Visualizer) Close() error {
	if v.cfg.MetricsTextfile == "" {
		return nil
	}
	if err := observability.WriteTextfile(v.cfg.MetricsTextfile, v.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// observe records the outcome and duration of one render.
func (v *Visualizer) observe(kind string, start time.Time, err error) {
	elapsed := v.clock.Since(start)
	v.metrics.Renders.WithLabelValues(kind, observability.Outcome(err)).Inc()
	v.metrics.RenderDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err != nil {
		v.logger.Error("render failed", "kind", kind, "error", err, "duration", elapsed)
		return
	}
	v.logger.Info("render complete", "kind", kind, "duration", elapsed)
}

// PlotMatchesInteractiveMap builds the layered map of pairs, saving it as a
// self-contained HTML document when saveHTML is non-empty.
func (v *Visualizer) PlotMatchesInteractiveMap(pairs []MatchedPair, showLines bool, saveHTML string) (m *Map, err error) {
	start := v.clock.Now()
	defer func() { v.observe(observability.KindInteractiveMap, start, err) }()

	m, err = webmap.BuildInteractive(pairs, showLines, v.mapOpts)
	if err != nil {
		return nil, err
	}
	v.metrics.MarkersDrawn.Add(float64(m.MarkerCount()))
	v.metrics.ConnectorsDrawn.Add(float64(m.LineCount()))

	if saveHTML != "" {
		if err = m.Save(saveHTML); err != nil {
			return nil, err
		}
		v.logger.Info("interactive map saved", "path", saveHTML, "pairs", len(pairs))
	}
	return m, nil
}

// CreateMapScreenshot renders pairs headlessly at the exact center, zoom and
// pixel size of req and writes the PNG to req.OutputFile.
func (v *Visualizer) CreateMapScreenshot(ctx context.Context, pairs []MatchedPair, req ScreenshotRequest) (err error) {
	start := v.clock.Now()
	defer func() { v.observe(observability.KindScreenshot, start, err) }()

	if err = v.screenshots.Capture(ctx, pairs, req); err != nil {
		return err
	}
	v.metrics.MarkersDrawn.Add(float64(2 * len(pairs)))
	if req.ShowLines {
		v.metrics.ConnectorsDrawn.Add(float64(len(pairs)))
	}
	v.logger.Info("screenshot saved", "path", req.OutputFile, "width", req.Width, "height", req.Height)
	return nil
}

// PlotHistogram saves the time-difference histogram for label and displays
// the titled version. It returns the saved path.
func (v *Visualizer) PlotHistogram(ctx context.Context, pairs []MatchedPair, label string) (path string, err error) {
	start := v.clock.Now()
	defer func() { v.observe(observability.KindHistogram, start, err) }()

	return v.plotter.Histogram(ctx, pairs, label)
}

// PlotTimeDistance saves the time-difference vs distance scatter for label
// and displays the titled version. It returns the saved path.
func (v *Visualizer) PlotTimeDistance(ctx context.Context, pairs []MatchedPair, label string) (path string, err error) {
	start := v.clock.Now()
	defer func() { v.observe(observability.KindTimeDistance, start, err) }()

	return v.plotter.TimeDistance(ctx, pairs, label)
}

// ShowScreenshots displays two saved screenshots side by side under their
// titles and returns the composed figure.
func (v *Visualizer) ShowScreenshots(ctx context.Context, path1, path2, title1, title2 string) (fig image.Image, err error) {
	start := v.clock.Now()
	defer func() { v.observe(observability.KindComparison, start, err) }()

	return v.viewer.Show(ctx, path1, path2, title1, title2)
}

// MatchesFromArrow decodes an Arrow record of matched pairs.
func MatchesFromArrow(rec arrow.Record) ([]MatchedPair, error) {
	return arrowtable.Decode(rec)
}

// LoadMatches reads a fixture file: Arrow IPC for .arrow, .feather and
// .ipc files, a JSON array of row objects otherwise.
func LoadMatches(path string) ([]MatchedPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matches: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".arrow", ".feather", ".ipc":
		return readArrowFile(f)
	default:
		return MatchesFromJSON(f)
	}
}

func readArrowFile(f *os.File) ([]MatchedPair, error) {
	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("open arrow file: %w", err)
	}
	defer r.Close()

	var pairs []MatchedPair
	for i := range r.NumRecords() {
		rec, err := r.Record(i)
		if err != nil {
			return nil, fmt.Errorf("read arrow record %d: %w", i, err)
		}
		batch, err := arrowtable.Decode(rec)
		if err != nil {
			return nil, fmt.Errorf("arrow record %d: %w", i, err)
		}
		pairs = append(pairs, batch...)
	}
	return pairs, nil
}

// MatchesFromJSON decodes a JSON array of row objects.
func MatchesFromJSON(r io.Reader) ([]MatchedPair, error) {
	var pairs []MatchedPair
	if err := json.NewDecoder(r).Decode(&pairs); err != nil {
		return nil, fmt.Errorf("decode matched pairs: %w", err)
	}
	return pairs, nil
}
