package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Render kinds used as the "kind" label.
const (
	KindInteractiveMap = "interactive_map"
	KindScreenshot     = "screenshot"
	KindHistogram      = "histogram"
	KindTimeDistance   = "time_distance"
	KindComparison     = "comparison"
)

// Metrics holds the Prometheus counters and histograms for rendering.
type Metrics struct {
	Renders        *prometheus.CounterVec   // labels: kind, outcome={success,error}
	RenderDuration *prometheus.HistogramVec // labels: kind

	MarkersDrawn    prometheus.Counter
	ConnectorsDrawn prometheus.Counter

	// Screenshot metrics.
	TileWaitDuration prometheus.Histogram
	TileProbes       *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates all rendering metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := NewMetricsForTesting()
	reg.MustRegister(
		m.Renders,
		m.RenderDuration,
		m.MarkersDrawn,
		m.ConnectorsDrawn,
		m.TileWaitDuration,
		m.TileProbes,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_viz",
			Name:      "renders_total",
			Help:      "Rendered artifacts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fire_viz",
			Name:      "render_duration_seconds",
			Help:      "Wall time of one render call.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		MarkersDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_viz",
			Name:      "markers_drawn_total",
			Help:      "Detection markers placed on maps.",
		}),
		ConnectorsDrawn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fire_viz",
			Name:      "connectors_drawn_total",
			Help:      "Match connector lines placed on maps.",
		}),
		TileWaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fire_viz",
			Name:      "tile_wait_duration_seconds",
			Help:      "Time from navigation until the tile layer reported loaded.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15},
		}),
		TileProbes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fire_viz",
			Name:      "tile_probes_total",
			Help:      "Tile server reachability probes by outcome.",
		}, []string{"outcome"}),
	}
}

// Outcome maps an error to the outcome label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// WriteTextfile dumps everything in g in the text exposition format, for
// pickup by a node_exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
