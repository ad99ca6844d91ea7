package webmap

import (
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/couchcryptid/fire-match-viz/internal/adapter/tiles"
	"github.com/couchcryptid/fire-match-viz/internal/domain"
	"github.com/paulmach/orb"
)

// Layer names of the interactive map.
const (
	LayerModis   = "MODIS Detections"
	LayerViirs   = "VIIRS Detections"
	LayerMatches = "Matches"
)

const interactiveZoom = 6

var (
	modisStyle     = CircleStyle{Radius: 6, Color: "red", Weight: 2}
	viirsStyle     = CircleStyle{Radius: 6, Color: "blue", Weight: 2}
	connectorStyle = LineStyle{Color: "gray", Weight: 1, Opacity: 0.5}
)

// Options configures the background and centering shared by all maps.
type Options struct {
	Tiles     tiles.Source
	Centering domain.Centering
}

func (o Options) source() tiles.Source {
	if o.Tiles.URL == "" {
		return tiles.CartoPositron()
	}
	return o.Tiles
}

// BuildInteractive lays out every pair as a MODIS and a VIIRS marker in
// their own toggleable layers, optionally joined by a connector, centered on
// the pairs and topped with a title/legend box.
func BuildInteractive(pairs []domain.MatchedPair, showLines bool, opts Options) (*Map, error) {
	lat, lon, err := domain.Center(pairs, opts.Centering)
	if err != nil {
		return nil, fmt.Errorf("map center: %w", err)
	}

	m := newMap(orb.Point{lon, lat}, interactiveZoom, opts.source())
	modis := m.AddLayer(LayerModis)
	viirs := m.AddLayer(LayerViirs)
	var lines *Layer
	if showLines {
		lines = m.AddLayer(LayerMatches)
	}

	for _, p := range pairs {
		modis.AddCircle(p.ModisPoint(), modisStyle, modisPopup(p))
		viirs.AddCircle(p.ViirsPoint(), viirsStyle, viirsPopup(p))
		if lines != nil {
			lines.AddLine(orb.LineString{p.ModisPoint(), p.ViirsPoint()}, connectorStyle)
		}
	}

	m.LayerControl = true
	m.Overlays = append(m.Overlays, titleOverlay)
	return m, nil
}

// StaticView fixes the viewport of a screenshot map.
type StaticView struct {
	Center orb.Point
	Zoom   int
	Width  int
	Height int
}

// BuildStatic lays out the pairs like BuildInteractive but in a single
// untoggled layer, pinned to the view's pixel size with controls hidden and
// a static legend.
func BuildStatic(pairs []domain.MatchedPair, view StaticView, showLines bool, opts Options) *Map {
	m := newMap(view.Center, view.Zoom, opts.source())
	all := m.AddLayer("")

	for _, p := range pairs {
		all.AddCircle(p.ModisPoint(), modisStyle, "MODIS: "+p.ModisTime.Format(staticTimeLayout))
		all.AddCircle(p.ViirsPoint(), viirsStyle, "VIIRS: "+p.ViirsTime.Format(staticTimeLayout))
		if showLines {
			all.AddLine(orb.LineString{p.ModisPoint(), p.ViirsPoint()}, connectorStyle)
		}
	}

	m.Overlays = append(m.Overlays, staticLegend)
	m.Canvas = &Canvas{Width: view.Width, Height: view.Height, HideControls: true}
	return m
}

const (
	popupTimeLayout  = "2006-01-02 15:04:05"
	staticTimeLayout = "2006-01-02 15:04"
)

func modisPopup(p domain.MatchedPair) string {
	return fmt.Sprintf("MODIS Detection<br>Time: %s<br>Confidence: %s<br>Brightness: %s<br>Time Difference: %.1f min",
		formatTime(p.ModisTime),
		optional(p.ModisConfidence),
		optional(p.ModisBrightness),
		p.TimeDiffMinutes,
	)
}

func viirsPopup(p domain.MatchedPair) string {
	return fmt.Sprintf("VIIRS Detection<br>Time: %s<br>Distance: %.1f km",
		formatTime(p.ViirsTime),
		p.DistanceKm,
	)
}

func formatTime(t time.Time) string {
	return t.Format(popupTimeLayout)
}

func optional(v *float64) string {
	if v == nil {
		return domain.Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

var titleOverlay = template.HTML(`<div style="position: fixed;
            top: 10px; left: 50px; width: 300px; z-index: 9999;
            background-color: white; padding: 10px; border-radius: 5px;">
        <h4>Fire Detections: MODIS vs VIIRS</h4>
        <p style="font-size: 12px;">
            Red: MODIS detections<br>
            Blue: VIIRS detections<br>
            Gray lines: Matched pairs
        </p>
    </div>`)

var staticLegend = template.HTML(`<div style="position: absolute;
            bottom: 10px; left: 10px; z-index: 1000;
            background-color: white; padding: 6px; border-radius: 4px;
            font-size: 12px; line-height: 1.5;">
        <div><span style="color: red;">&#9679;</span> MODIS detections</div>
        <div><span style="color: blue;">&#9679;</span> VIIRS detections</div>
        <div><span style="color: gray;">&#8213;</span> Matched pairs</div>
    </div>`)
