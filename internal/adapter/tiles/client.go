package tiles

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/fire-match-viz/internal/observability"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Client checks that a tile provider serves imagery before a headless
// render starts waiting on it.
type Client struct {
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a tile probe client.
func NewClient(timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Probe fetches the tile covering (lat, lon) at zoom and fails unless the
// provider answers 200 with an image payload.
func (c *Client) Probe(ctx context.Context, src Source, lat, lon float64, zoom int) error {
	tile := maptile.At(orb.Point{lon, lat}, maptile.Zoom(clampZoom(zoom, src.MaxZoom)))
	u := src.TileURL(int(tile.Z), int(tile.X), int(tile.Y))

	err := c.doRequest(ctx, u)
	c.metrics.TileProbes.WithLabelValues(observability.Outcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("probe %s: %w", src.Name, err)
	}
	c.logger.Debug("tile probe ok", "source", src.Name, "z", tile.Z, "x", tile.X, "y", tile.Y)
	return nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tile server error: status %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("tile server returned %q, want image/*", ct)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func clampZoom(z, maxZoom int) int {
	if z < 0 {
		return 0
	}
	if maxZoom > 0 && z > maxZoom {
		return maxZoom
	}
	return z
}
