package tiles

import (
	"net/url"
	"strconv"
	"strings"
)

// Source describes a slippy-map raster tile provider in Leaflet URL-template form.
type Source struct {
	Name        string
	URL         string // {s}, {z}, {x}, {y}, {r} placeholders
	Attribution string
	Subdomains  string
	MaxZoom     int
}

// CartoPositron is the light CartoDB basemap, the default background.
func CartoPositron() Source {
	return Source{
		Name:        "CartoDB positron",
		URL:         "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
		Subdomains:  "abcd",
		MaxZoom:     20,
	}
}

// Mapbox returns a Mapbox Styles API raster source, e.g. style "mapbox/light-v11".
func Mapbox(token, style string) Source {
	return Source{
		Name:        "Mapbox " + style,
		URL:         "https://api.mapbox.com/styles/v1/" + style + "/tiles/256/{z}/{x}/{y}@2x?access_token=" + url.QueryEscape(token),
		Attribution: `&copy; <a href="https://www.mapbox.com/about/maps/">Mapbox</a> &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a>`,
		MaxZoom:     22,
	}
}

// Select picks Mapbox when a token is configured and CartoDB positron otherwise.
func Select(mapboxToken, mapboxStyle string) Source {
	if mapboxToken != "" {
		return Mapbox(mapboxToken, mapboxStyle)
	}
	return CartoPositron()
}

// TileURL expands the template for one tile. The first subdomain is used
// and the retina suffix {r} is dropped.
func (s Source) TileURL(z, x, y int) string {
	sub := ""
	if s.Subdomains != "" {
		sub = s.Subdomains[:1]
	}
	r := strings.NewReplacer(
		"{s}", sub,
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{r}", "",
	)
	return r.Replace(s.URL)
}
