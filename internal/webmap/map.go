// Package webmap builds Leaflet maps of matched detections and renders them
// as self-contained HTML documents.
package webmap

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/fire-match-viz/internal/adapter/tiles"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

//go:embed map.html.tmpl
var pageTemplate string

var page = template.Must(template.New("map").Parse(pageTemplate))

// Map is an in-memory Leaflet map: a tile background plus GeoJSON layers
// of circle markers and connector lines.
type Map struct {
	ID     string
	Center orb.Point
	Zoom   int
	Tiles  tiles.Source
	Layers []*Layer

	// LayerControl adds a toggle for every named layer.
	LayerControl bool
	// Overlays are fixed HTML fragments placed over the map (title, legend).
	Overlays []template.HTML
	// Canvas pins the map element to an exact pixel size; nil fills the window.
	Canvas *Canvas
}

// Canvas forces the map element to Width×Height pixels.
type Canvas struct {
	Width        int
	Height       int
	HideControls bool
}

// Layer is one toggleable group of features. Unnamed layers are drawn but
// not listed in the layer control.
type Layer struct {
	Name     string
	Features *geojson.FeatureCollection
}

func newMap(center orb.Point, zoom int, src tiles.Source) *Map {
	return &Map{
		ID:     "map_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Center: center,
		Zoom:   zoom,
		Tiles:  src,
	}
}

// AddLayer appends an empty layer and returns it.
func (m *Map) AddLayer(name string) *Layer {
	l := &Layer{Name: name, Features: geojson.NewFeatureCollection()}
	m.Layers = append(m.Layers, l)
	return l
}

// Layer returns the layer with the given name, or nil.
func (m *Map) Layer(name string) *Layer {
	for _, l := range m.Layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// MarkerCount is the number of circle markers across all layers.
func (m *Map) MarkerCount() int {
	n := 0
	for _, l := range m.Layers {
		n += l.count(featureMarker)
	}
	return n
}

// LineCount is the number of connector lines across all layers.
func (m *Map) LineCount() int {
	n := 0
	for _, l := range m.Layers {
		n += l.count(featureLine)
	}
	return n
}

// Render writes the map as a standalone HTML document.
func (m *Map) Render(w io.Writer) error {
	layers := make([]layerJSON, 0, len(m.Layers))
	for _, l := range m.Layers {
		layers = append(layers, layerJSON{Name: l.Name, Data: l.Features})
	}
	data, err := json.Marshal(layers)
	if err != nil {
		return fmt.Errorf("encode layers: %w", err)
	}

	return page.Execute(w, struct {
		*Map
		LayersJSON template.JS
	}{m, template.JS(data)}) //nolint:gosec // JSON produced by encoding/json
}

// Save renders the map to path.
func (m *Map) Save(path string) error {
	var buf bytes.Buffer
	if err := m.Render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write map html: %w", err)
	}
	return nil
}

type layerJSON struct {
	Name string                     `json:"name"`
	Data *geojson.FeatureCollection `json:"data"`
}

const (
	featureMarker = "marker"
	featureLine   = "line"
)

// CircleStyle is the look of a fixed-radius circle marker.
type CircleStyle struct {
	Radius float64
	Color  string
	Weight float64
}

// LineStyle is the look of a connector polyline.
type LineStyle struct {
	Color   string
	Weight  float64
	Opacity float64
}

// AddCircle adds a filled circle marker with an optional popup.
func (l *Layer) AddCircle(p orb.Point, style CircleStyle, popup string) {
	f := geojson.NewFeature(p)
	f.Properties["kind"] = featureMarker
	f.Properties["radius"] = style.Radius
	f.Properties["color"] = style.Color
	f.Properties["weight"] = style.Weight
	f.Properties["opacity"] = 1.0
	f.Properties["fill"] = true
	f.Properties["fillOpacity"] = 0.2
	if popup != "" {
		f.Properties["popup"] = popup
	}
	l.Features.Append(f)
}

// AddLine adds a polyline through the given points.
func (l *Layer) AddLine(path orb.LineString, style LineStyle) {
	f := geojson.NewFeature(path)
	f.Properties["kind"] = featureLine
	f.Properties["color"] = style.Color
	f.Properties["weight"] = style.Weight
	f.Properties["opacity"] = style.Opacity
	f.Properties["fill"] = false
	l.Features.Append(f)
}

// Markers is the number of circle markers in the layer.
func (l *Layer) Markers() int { return l.count(featureMarker) }

// Lines is the number of connector lines in the layer.
func (l *Layer) Lines() int { return l.count(featureLine) }

func (l *Layer) count(kind string) int {
	n := 0
	for _, f := range l.Features.Features {
		if f.Properties.MustString("kind", "") == kind {
			n++
		}
	}
	return n
}
