package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all rendering settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	// Chart output.
	ChartDir    string
	ChartFormat string
	PreviewDir  string

	// Headless browser screenshots.
	ChromePath        string
	TileTimeout       time.Duration
	SettleDelay       time.Duration
	ScreenshotTempDir string

	// Map rendering.
	MapCentering     string
	MapboxToken      string
	MapboxStyle      string
	TileProbe        bool
	TileProbeTimeout time.Duration

	MetricsTextfile string
}

var chartFormats = map[string]bool{
	"pgf": true,
	"tex": true,
	"svg": true,
	"pdf": true,
	"eps": true,
	"png": true,
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	tileTimeout, err := parsePositiveDuration("TILE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	settleDelay, err := time.ParseDuration(sharedcfg.EnvOrDefault("SETTLE_DELAY", "250ms"))
	if err != nil || settleDelay < 0 {
		return nil, errors.New("invalid SETTLE_DELAY")
	}

	probeTimeout, err := parsePositiveDuration("TILE_PROBE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ChartDir:          sharedcfg.EnvOrDefault("CHART_DIR", "latex_plots"),
		ChartFormat:       strings.ToLower(sharedcfg.EnvOrDefault("CHART_FORMAT", "pgf")),
		PreviewDir:        sharedcfg.EnvOrDefault("PREVIEW_DIR", filepath.Join(os.TempDir(), "fire-match-viz")),
		ChromePath:        os.Getenv("CHROME_PATH"),
		TileTimeout:       tileTimeout,
		SettleDelay:       settleDelay,
		ScreenshotTempDir: os.Getenv("SCREENSHOT_TEMP_DIR"),
		MapCentering:      sharedcfg.EnvOrDefault("MAP_CENTERING", "mean"),
		MapboxToken:       os.Getenv("MAPBOX_TOKEN"),
		MapboxStyle:       sharedcfg.EnvOrDefault("MAPBOX_STYLE", "mapbox/light-v11"),
		TileProbe:         os.Getenv("TILE_PROBE") == "true",
		TileProbeTimeout:  probeTimeout,
		MetricsTextfile:   os.Getenv("METRICS_TEXTFILE"),
	}

	if !chartFormats[cfg.ChartFormat] {
		return nil, fmt.Errorf("unsupported CHART_FORMAT %q", cfg.ChartFormat)
	}
	if cfg.MapCentering != "mean" && cfg.MapCentering != "geodesic" {
		return nil, fmt.Errorf("invalid MAP_CENTERING %q: want mean or geodesic", cfg.MapCentering)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q: want json or text", cfg.LogFormat)
	}
	if cfg.ChartDir == "" {
		return nil, errors.New("CHART_DIR is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}
