package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMapboxToken = "pk.test-token"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "latex_plots", cfg.ChartDir)
	assert.Equal(t, "pgf", cfg.ChartFormat)
	assert.Equal(t, filepath.Join(os.TempDir(), "fire-match-viz"), cfg.PreviewDir)
	assert.Empty(t, cfg.ChromePath)
	assert.Equal(t, 15*time.Second, cfg.TileTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.SettleDelay)
	assert.Empty(t, cfg.ScreenshotTempDir)
	assert.Equal(t, "mean", cfg.MapCentering)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, "mapbox/light-v11", cfg.MapboxStyle)
	assert.False(t, cfg.TileProbe)
	assert.Equal(t, 5*time.Second, cfg.TileProbeTimeout)
	assert.Empty(t, cfg.MetricsTextfile)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("CHART_DIR", "out/charts")
	t.Setenv("CHART_FORMAT", "SVG")
	t.Setenv("PREVIEW_DIR", "out/preview")
	t.Setenv("CHROME_PATH", "/usr/bin/chromium")
	t.Setenv("TILE_TIMEOUT", "30s")
	t.Setenv("SETTLE_DELAY", "0s")
	t.Setenv("SCREENSHOT_TEMP_DIR", "/var/tmp")
	t.Setenv("MAP_CENTERING", "geodesic")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_STYLE", "mapbox/satellite-v9")
	t.Setenv("TILE_PROBE", "true")
	t.Setenv("TILE_PROBE_TIMEOUT", "2s")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/fireviz.prom")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "out/charts", cfg.ChartDir)
	assert.Equal(t, "svg", cfg.ChartFormat)
	assert.Equal(t, "out/preview", cfg.PreviewDir)
	assert.Equal(t, "/usr/bin/chromium", cfg.ChromePath)
	assert.Equal(t, 30*time.Second, cfg.TileTimeout)
	assert.Equal(t, time.Duration(0), cfg.SettleDelay)
	assert.Equal(t, "/var/tmp", cfg.ScreenshotTempDir)
	assert.Equal(t, "geodesic", cfg.MapCentering)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, "mapbox/satellite-v9", cfg.MapboxStyle)
	assert.True(t, cfg.TileProbe)
	assert.Equal(t, 2*time.Second, cfg.TileProbeTimeout)
	assert.Equal(t, "/var/lib/node_exporter/fireviz.prom", cfg.MetricsTextfile)
}

func TestLoad_InvalidTileTimeout(t *testing.T) {
	t.Setenv("TILE_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TILE_TIMEOUT")
}

func TestLoad_NegativeTileTimeout(t *testing.T) {
	t.Setenv("TILE_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TILE_TIMEOUT")
}

func TestLoad_InvalidSettleDelay(t *testing.T) {
	t.Setenv("SETTLE_DELAY", "-5ms")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SETTLE_DELAY")
}

func TestLoad_InvalidProbeTimeout(t *testing.T) {
	t.Setenv("TILE_PROBE_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TILE_PROBE_TIMEOUT")
}

func TestLoad_UnsupportedChartFormat(t *testing.T) {
	t.Setenv("CHART_FORMAT", "gif")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHART_FORMAT")
}

func TestLoad_InvalidCentering(t *testing.T) {
	t.Setenv("MAP_CENTERING", "median")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAP_CENTERING")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}
