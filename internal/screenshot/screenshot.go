// Package screenshot renders matched detections to a fixed-size PNG by
// loading a static Leaflet page in a headless browser.
package screenshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/couchcryptid/fire-match-viz/internal/adapter/tiles"
	"github.com/couchcryptid/fire-match-viz/internal/domain"
	"github.com/couchcryptid/fire-match-viz/internal/webmap"
	"github.com/paulmach/orb"
)

// Browser loads a page and captures its viewport as PNG bytes.
type Browser interface {
	Capture(ctx context.Context, pageURL string, width, height int) ([]byte, error)
}

// TileProber checks that the tile provider answers before a capture.
type TileProber interface {
	Probe(ctx context.Context, src tiles.Source, lat, lon float64, zoom int) error
}

// Request describes one screenshot. Center, zoom and pixel size are taken
// as given; nothing is fitted to the data.
type Request struct {
	Center     orb.Point // lon, lat
	Zoom       int
	Width      int
	Height     int
	OutputFile string
	ShowLines  bool
}

// NewRequest returns a request centered on (lat, lon) with the defaults:
// zoom 13, 800×600 px, map_screenshot.png, connectors shown.
func NewRequest(lat, lon float64) Request {
	return Request{
		Center:     orb.Point{lon, lat},
		Zoom:       13,
		Width:      800,
		Height:     600,
		OutputFile: "map_screenshot.png",
		ShowLines:  true,
	}
}

func (r Request) validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("invalid screenshot size %dx%d", r.Width, r.Height)
	}
	if r.OutputFile == "" {
		return errors.New("screenshot output file is required")
	}
	return nil
}

// Generator composes the static page, hands it to the browser and stores
// the result.
type Generator struct {
	browser Browser
	prober  TileProber
	opts    webmap.Options
	tempDir string
	logger  *slog.Logger
}

// NewGenerator creates a Generator. A nil prober skips the tile check; an
// empty tempDir uses the OS default.
func NewGenerator(browser Browser, prober TileProber, opts webmap.Options, tempDir string, logger *slog.Logger) *Generator {
	return &Generator{
		browser: browser,
		prober:  prober,
		opts:    opts,
		tempDir: tempDir,
		logger:  logger,
	}
}

// Capture renders pairs as seen through req and writes the PNG to
// req.OutputFile. The temporary page is removed on every path.
func (g *Generator) Capture(ctx context.Context, pairs []domain.MatchedPair, req Request) error {
	if err := req.validate(); err != nil {
		return err
	}

	m := webmap.BuildStatic(pairs, webmap.StaticView{
		Center: req.Center,
		Zoom:   req.Zoom,
		Width:  req.Width,
		Height: req.Height,
	}, req.ShowLines, g.opts)

	if g.prober != nil {
		if err := g.prober.Probe(ctx, m.Tiles, req.Center.Lat(), req.Center.Lon(), req.Zoom); err != nil {
			return fmt.Errorf("tile source unavailable: %w", err)
		}
	}

	pagePath, err := g.writePage(m)
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(pagePath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			g.logger.Warn("remove temp page failed", "path", pagePath, "error", rmErr)
		}
	}()

	g.logger.Debug("capturing map", "page", pagePath, "width", req.Width, "height", req.Height, "markers", m.MarkerCount())

	data, err := g.browser.Capture(ctx, fileURL(pagePath), req.Width, req.Height)
	if err != nil {
		return fmt.Errorf("capture screenshot: %w", err)
	}
	if err := checkSize(data, req.Width, req.Height); err != nil {
		return err
	}

	if err := os.WriteFile(req.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("write screenshot: %w", err)
	}
	return nil
}

// writePage renders the map into a uniquely named temp file so concurrent
// captures never share a page.
func (g *Generator) writePage(m *webmap.Map) (string, error) {
	f, err := os.CreateTemp(g.tempDir, "map-*.html")
	if err != nil {
		return "", fmt.Errorf("create temp page: %w", err)
	}
	path := f.Name()

	if err := m.Render(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("render temp page: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp page: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("resolve temp page: %w", err)
	}
	return abs, nil
}

func fileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func checkSize(data []byte, width, height int) error {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode screenshot: %w", err)
	}
	if cfg.Width != width || cfg.Height != height {
		return fmt.Errorf("screenshot is %dx%d, want %dx%d", cfg.Width, cfg.Height, width, height)
	}
	return nil
}
