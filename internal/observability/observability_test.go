package observability

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/fire-match-viz/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level, format string
		debug, warn   bool
	}{
		{"debug", "text", true, true},
		{"info", "json", false, true},
		{"error", "json", false, false},
		{"", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})
			require.NotNil(t, logger)

			ctx := context.Background()
			assert.Equal(t, tt.debug, logger.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.warn, logger.Enabled(ctx, slog.LevelWarn))
			assert.Same(t, logger, slog.Default(), "installed as the slog default")
		})
	}
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Renders.WithLabelValues(KindHistogram, Outcome(nil)).Inc()
	m.Renders.WithLabelValues(KindHistogram, Outcome(errors.New("boom"))).Inc()
	m.MarkersDrawn.Add(6)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues(KindHistogram, "success")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.Renders.WithLabelValues(KindHistogram, "error")), 0)
	assert.InDelta(t, 6.0, testutil.ToFloat64(m.MarkersDrawn), 0)

	assert.Panics(t, func() { NewMetrics(reg) }, "second registration on the same registry")
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ConnectorsDrawn.Add(3)

	path := filepath.Join(t.TempDir(), "fire_viz.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fire_viz_connectors_drawn_total 3")
}
